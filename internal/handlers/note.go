package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/collabcore-dev/collabcore/db"
	"github.com/collabcore-dev/collabcore/internal/models"
	"github.com/collabcore-dev/collabcore/internal/types"
	"github.com/collabcore-dev/collabcore/internal/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type NoteRequest struct {
	Content string `json:"content" binding:"required"`
}

func toNoteResponse(note models.Note) types.NoteResponse {
	return types.NoteResponse{
		ID:          note.ID,
		ProjectID:   note.ProjectID,
		Content:     note.Content,
		CreatedByID: note.CreatedByID,
		CreatedAt:   note.CreatedAt,
		UpdatedAt:   note.UpdatedAt,
	}
}

func ListNotes(ctx *gin.Context) {
	projectID, ok := parseIDParam(ctx, "project_id")

	if !ok {
		utils.RespondError(ctx, http.StatusBadRequest, "Invalid project ID")
		return
	}

	var notes []models.Note

	err := db.DB.Where("project_id = ?", projectID).Find(&notes).Error

	if err != nil {
		log.Printf("Failed to list notes: %v", err)
		utils.RespondError(ctx, http.StatusInternalServerError, "Failed to retrieve notes")
		return
	}

	response := make([]types.NoteResponse, 0, len(notes))

	for _, note := range notes {
		response = append(response, toNoteResponse(note))
	}

	utils.Respond(ctx, http.StatusOK, response, "Notes fetched successfully")
}

func CreateNote(ctx *gin.Context) {
	projectID, ok := parseIDParam(ctx, "project_id")

	if !ok {
		utils.RespondError(ctx, http.StatusBadRequest, "Invalid project ID")
		return
	}

	var body NoteRequest

	if err := ctx.BindJSON(&body); err != nil {
		utils.RespondBindingError(ctx, err)
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		utils.RespondError(ctx, http.StatusUnauthorized, "User not authenticated")
		return
	}

	note := models.Note{
		ProjectID:   projectID,
		Content:     body.Content,
		CreatedByID: userID,
	}

	if err := db.DB.Create(&note).Error; err != nil {
		log.Printf("Failed to create note: %v", err)
		utils.RespondError(ctx, http.StatusInternalServerError, "Failed to create note")
		return
	}

	utils.Respond(ctx, http.StatusCreated, toNoteResponse(note), "Note created successfully")
}

// findProjectNote loads a note and enforces that it belongs to the project
// addressed by the route.
func findProjectNote(ctx *gin.Context) (models.Note, bool) {
	projectID, ok := parseIDParam(ctx, "project_id")

	if !ok {
		utils.RespondError(ctx, http.StatusBadRequest, "Invalid project ID")
		return models.Note{}, false
	}

	noteID, ok := parseIDParam(ctx, "note_id")

	if !ok {
		utils.RespondError(ctx, http.StatusBadRequest, "Invalid note ID")
		return models.Note{}, false
	}

	var note models.Note

	if err := db.DB.First(&note, noteID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(ctx, http.StatusNotFound, "Note not found")
		} else {
			utils.RespondError(ctx, http.StatusInternalServerError, "Failed to retrieve note")
		}
		return models.Note{}, false
	}

	if note.ProjectID != projectID {
		utils.RespondError(ctx, http.StatusBadRequest, "Note does not belong to this project")
		return models.Note{}, false
	}

	return note, true
}

func GetNote(ctx *gin.Context) {
	note, ok := findProjectNote(ctx)

	if !ok {
		return
	}

	utils.Respond(ctx, http.StatusOK, toNoteResponse(note), "Note found successfully")
}

func UpdateNote(ctx *gin.Context) {
	var body NoteRequest

	if err := ctx.BindJSON(&body); err != nil {
		utils.RespondBindingError(ctx, err)
		return
	}

	note, ok := findProjectNote(ctx)

	if !ok {
		return
	}

	note.Content = body.Content

	if err := db.DB.Save(&note).Error; err != nil {
		log.Printf("Failed to update note: %v", err)
		utils.RespondError(ctx, http.StatusInternalServerError, "Failed to update note")
		return
	}

	utils.Respond(ctx, http.StatusOK, toNoteResponse(note), "Note updated successfully")
}

func DeleteNote(ctx *gin.Context) {
	note, ok := findProjectNote(ctx)

	if !ok {
		return
	}

	if err := db.DB.Delete(&note).Error; err != nil {
		log.Printf("Failed to delete note: %v", err)
		utils.RespondError(ctx, http.StatusInternalServerError, "Failed to delete note")
		return
	}

	utils.Respond(ctx, http.StatusOK, toNoteResponse(note), "Note deleted successfully")
}
