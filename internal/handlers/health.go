package handlers

import (
	"net/http"
	"time"

	"github.com/collabcore-dev/collabcore/internal/utils"
	"github.com/gin-gonic/gin"
)

func HealthCheck(c *gin.Context) {
	utils.Respond(c, http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	}, "CollabCore is running")
}
