package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/thereayou/teamdesk/internal/handlers/dto"
	"github.com/thereayou/teamdesk/internal/middleware"
	"github.com/thereayou/teamdesk/internal/services"
)

type NoteHandler struct {
	notes    *services.NoteService
	projects *services.ProjectService
}

func NewNoteHandler(notes *services.NoteService, projects *services.ProjectService) *NoteHandler {
	return &NoteHandler{notes: notes, projects: projects}
}

func (h *NoteHandler) CreateNote(c *gin.Context) {
	var req dto.CreateNoteRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}

	projectID, err := parseUUID(req.ProjectID, "projectId")
	if err != nil {
		fail(c, err)
		return
	}
	if _, err := h.projects.InTeam(c.Request.Context(), projectID, middleware.CurrentTeamID(c)); err != nil {
		fail(c, err)
		return
	}

	creatorID := middleware.CurrentUserID(c)
	note, err := h.notes.Create(c.Request.Context(), services.CreateNoteInput{
		ProjectID: projectID,
		Content:   req.Content,
		CreatorID: &creatorID,
		Comment:   req.Comment,
	})
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusCreated, "Note created", note)
}

// UpdateNote сохраняет новую версию заметки
func (h *NoteHandler) UpdateNote(c *gin.Context) {
	noteID, ok := h.noteInTeam(c)
	if !ok {
		return
	}

	var req dto.UpdateNoteRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}

	note, err := h.notes.Update(c.Request.Context(), noteID, req.Content, middleware.CurrentUserID(c), req.Comment)
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, "Note updated", note)
}

func (h *NoteHandler) GetNoteHistory(c *gin.Context) {
	noteID, ok := h.noteInTeam(c)
	if !ok {
		return
	}

	history, err := h.notes.GetHistory(c.Request.Context(), noteID)
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, "Note history fetched", history)
}

func (h *NoteHandler) DeleteNote(c *gin.Context) {
	noteID, ok := h.noteInTeam(c)
	if !ok {
		return
	}

	if err := h.notes.Delete(c.Request.Context(), noteID); err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, "Note deleted", nil)
}

func (h *NoteHandler) GetProjectNotes(c *gin.Context) {
	projectID, err := uuidParam(c, "projectId")
	if err != nil {
		fail(c, err)
		return
	}
	if _, err := h.projects.InTeam(c.Request.Context(), projectID, middleware.CurrentTeamID(c)); err != nil {
		fail(c, err)
		return
	}

	notes, err := h.notes.GetProjectNotes(c.Request.Context(), projectID)
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, "Notes fetched", notes)
}

func (h *NoteHandler) noteInTeam(c *gin.Context) (uuid.UUID, bool) {
	noteID, err := uuidParam(c, "noteId")
	if err != nil {
		fail(c, err)
		return uuid.Nil, false
	}

	if _, err := h.projects.NoteInTeam(c.Request.Context(), noteID, middleware.CurrentTeamID(c)); err != nil {
		fail(c, err)
		return uuid.Nil, false
	}
	return noteID, true
}
