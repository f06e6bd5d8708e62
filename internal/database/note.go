package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/teamdesk/internal/models"
	"gorm.io/gorm"
)

func (d *Database) CreateNote(ctx context.Context, note *models.Note) error {
	return d.db.WithContext(ctx).Omit("CreatedBy", "UpdatedBy").Create(note).Error
}

func (d *Database) GetNote(ctx context.Context, id uuid.UUID) (*models.Note, error) {
	var note models.Note
	if err := d.db.WithContext(ctx).Preload("CreatedBy").Preload("UpdatedBy").First(&note, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &note, nil
}

// GetProjectNotes возвращает заметки проекта, последние изменённые первыми
func (d *Database) GetProjectNotes(ctx context.Context, projectID uuid.UUID) ([]models.Note, error) {
	var notes []models.Note
	err := d.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Preload("CreatedBy").Preload("UpdatedBy").
		Order("updated_at DESC").
		Find(&notes).Error
	return notes, err
}

func (d *Database) CreateNoteHistory(ctx context.Context, entry *models.NoteHistory) error {
	return d.db.WithContext(ctx).Omit("CreatedBy", "UpdatedBy").Create(entry).Error
}

// BumpNoteVersion обновляет заметку только если её версия всё ещё expectedVersion.
// Возвращает false, если заметку успели изменить.
func (d *Database) BumpNoteVersion(ctx context.Context, id uuid.UUID, expectedVersion int, content string, comment *string, editorID *uuid.UUID) (bool, error) {
	res := d.db.WithContext(ctx).
		Model(&models.Note{}).
		Where("id = ? AND version = ?", id, expectedVersion).
		Updates(map[string]interface{}{
			"content":       content,
			"version":       expectedVersion + 1,
			"comment":       comment,
			"updated_by_id": editorID,
			"updated_at":    time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// GetNoteHistory возвращает архивные версии заметки по убыванию версии
func (d *Database) GetNoteHistory(ctx context.Context, noteID uuid.UUID) ([]models.NoteHistory, error) {
	var history []models.NoteHistory
	err := d.db.WithContext(ctx).
		Where("note_id = ?", noteID).
		Preload("CreatedBy").Preload("UpdatedBy").
		Order("version DESC").
		Find(&history).Error
	return history, err
}

// DeleteNote удаляет историю и саму заметку в одной транзакции
func (d *Database) DeleteNote(ctx context.Context, id uuid.UUID) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.NoteHistory{}, "note_id = ?", id).Error; err != nil {
			return err
		}

		res := tx.Delete(&models.Note{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
