package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/collabcore-dev/collabcore/db"
	"github.com/collabcore-dev/collabcore/internal/auth"
	"github.com/collabcore-dev/collabcore/internal/router"
	"github.com/collabcore-dev/collabcore/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupServer wires a full router against a fresh in-memory database.
func setupServer(t *testing.T) *gin.Engine {
	t.Helper()

	t.Setenv("ACCESS_TOKEN_SECRET", "test-access-secret")
	t.Setenv("REFRESH_TOKEN_SECRET", "test-refresh-secret")
	t.Setenv("ACCESS_TOKEN_EXPIRY", "15m")
	t.Setenv("REFRESH_TOKEN_EXPIRY", "168h")
	require.NoError(t, auth.InitTokenSecrets())

	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	db.DB = database
	require.NoError(t, db.MigrateDatabase())

	return router.NewRouter()
}

func doRequest(t *testing.T, r *gin.Engine, method, path string, body interface{}, accessToken string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader

	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) types.APIResponse {
	t.Helper()

	var resp types.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	return resp
}

func dataMap(t *testing.T, resp types.APIResponse) map[string]interface{} {
	t.Helper()

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok, "expected object data, got %T", resp.Data)

	return data
}

func registerUser(t *testing.T, r *gin.Engine, username, email, password string) {
	t.Helper()

	w := doRequest(t, r, http.MethodPost, "/api/v1/auth/register", gin.H{
		"username": username,
		"email":    email,
		"password": password,
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, "register failed: %s", w.Body.String())
}

// loginUser returns the access and refresh tokens from the login response.
func loginUser(t *testing.T, r *gin.Engine, identifier, password string) (string, string) {
	t.Helper()

	body := gin.H{"password": password}

	if strings.Contains(identifier, "@") {
		body["email"] = identifier
	} else {
		body["username"] = identifier
	}

	w := doRequest(t, r, http.MethodPost, "/api/v1/auth/login", body, "")
	require.Equal(t, http.StatusOK, w.Code, "login failed: %s", w.Body.String())

	data := dataMap(t, decodeEnvelope(t, w))

	accessToken, _ := data["accessToken"].(string)
	refreshToken, _ := data["refreshToken"].(string)
	require.NotEmpty(t, accessToken)
	require.NotEmpty(t, refreshToken)

	return accessToken, refreshToken
}

func registerAndLogin(t *testing.T, r *gin.Engine, username, email, password string) string {
	t.Helper()

	registerUser(t, r, username, email, password)
	accessToken, _ := loginUser(t, r, email, password)

	return accessToken
}

// createProject returns the new project's id.
func createProject(t *testing.T, r *gin.Engine, accessToken, name string) uint {
	t.Helper()

	w := doRequest(t, r, http.MethodPost, "/api/v1/projects", gin.H{
		"name":        name,
		"description": "test project",
	}, accessToken)
	require.Equal(t, http.StatusCreated, w.Code, "create project failed: %s", w.Body.String())

	data := dataMap(t, decodeEnvelope(t, w))
	id, ok := data["id"].(float64)
	require.True(t, ok)

	return uint(id)
}

func addProjectMember(t *testing.T, r *gin.Engine, adminToken string, projectID uint, email, role string) {
	t.Helper()

	w := doRequest(t, r, http.MethodPost, fmt.Sprintf("/api/v1/projects/%d/members", projectID), gin.H{
		"email": email,
		"role":  role,
	}, adminToken)
	require.Equal(t, http.StatusCreated, w.Code, "add member failed: %s", w.Body.String())
}
