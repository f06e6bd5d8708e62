package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/thereayou/teamdesk/internal/apperror"
	"github.com/thereayou/teamdesk/internal/database"
	"github.com/thereayou/teamdesk/internal/models"
)

// previousVersionComment подставляется в историю, если у прежней версии не было комментария
const previousVersionComment = "Previous version"

type NoteService struct {
	db *database.Database
}

func NewNoteService(db *database.Database) *NoteService {
	return &NoteService{db: db}
}

type CreateNoteInput struct {
	ProjectID uuid.UUID
	Content   string
	CreatorID *uuid.UUID
	Comment   *string
}

type NoteHistoryResult struct {
	Current *models.Note         `json:"current"`
	History []models.NoteHistory `json:"history"`
}

// Create создаёт заметку с версией 1
func (s *NoteService) Create(ctx context.Context, in CreateNoteInput) (*models.Note, error) {
	if strings.TrimSpace(in.Content) == "" {
		return nil, apperror.BadRequest("Note content is required")
	}

	if _, err := s.db.GetProject(ctx, in.ProjectID); err != nil {
		return nil, lookupError(err, "Project not found")
	}

	note := models.Note{
		ProjectID:   in.ProjectID,
		Content:     in.Content,
		Version:     1,
		CreatedByID: in.CreatorID,
		Comment:     in.Comment,
	}
	if err := s.db.CreateNote(ctx, &note); err != nil {
		return nil, internal(err)
	}

	return s.Get(ctx, note.ID)
}

func (s *NoteService) Get(ctx context.Context, noteID uuid.UUID) (*models.Note, error) {
	note, err := s.db.GetNote(ctx, noteID)
	if err != nil {
		return nil, lookupError(err, "Note not found")
	}
	return note, nil
}

// Update архивирует текущую версию в NoteHistory и поднимает версию заметки на 1.
// Если заметку изменили параллельно, возвращается Conflict и ничего не пишется.
func (s *NoteService) Update(ctx context.Context, noteID uuid.UUID, content string, editorID uuid.UUID, comment *string) (*models.Note, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apperror.BadRequest("Note content is required")
	}

	var updated *models.Note
	err := s.db.Transaction(ctx, func(tx *database.Database) error {
		note, err := tx.GetNote(ctx, noteID)
		if err != nil {
			return lookupError(err, "Note not found")
		}

		// условный UPDATE блокирует строку, поэтому гонка заканчивается здесь, а не на уникальном индексе истории
		ok, err := tx.BumpNoteVersion(ctx, note.ID, note.Version, content, comment, &editorID)
		if err != nil {
			return internal(err)
		}
		if !ok {
			return apperror.Conflict("Note was modified concurrently, reload and try again")
		}

		archived := previousVersionComment
		if note.Comment != nil && *note.Comment != "" {
			archived = *note.Comment
		}

		if err := tx.CreateNoteHistory(ctx, &models.NoteHistory{
			NoteID:      note.ID,
			Content:     note.Content,
			Version:     note.Version,
			CreatedByID: note.CreatedByID,
			UpdatedByID: note.UpdatedByID,
			Comment:     archived,
		}); err != nil {
			return internal(err)
		}

		updated, err = tx.GetNote(ctx, note.ID)
		return internal(err)
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// GetHistory возвращает текущую версию и архив по убыванию версии
func (s *NoteService) GetHistory(ctx context.Context, noteID uuid.UUID) (*NoteHistoryResult, error) {
	note, err := s.Get(ctx, noteID)
	if err != nil {
		return nil, err
	}

	history, err := s.db.GetNoteHistory(ctx, noteID)
	if err != nil {
		return nil, internal(err)
	}

	return &NoteHistoryResult{Current: note, History: history}, nil
}

// Delete удаляет заметку вместе со всей историей
func (s *NoteService) Delete(ctx context.Context, noteID uuid.UUID) error {
	return lookupError(s.db.DeleteNote(ctx, noteID), "Note not found")
}

func (s *NoteService) GetProjectNotes(ctx context.Context, projectID uuid.UUID) ([]models.Note, error) {
	notes, err := s.db.GetProjectNotes(ctx, projectID)
	if err != nil {
		return nil, internal(err)
	}
	return notes, nil
}
