package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/thereayou/teamdesk/internal/models"
	"gorm.io/gorm/clause"
)

func (d *Database) SaveMessage(ctx context.Context, message *models.Message) error {
	return d.db.WithContext(ctx).Omit("Sender", "SeenBy").Create(message).Error
}

func (d *Database) GetMessage(ctx context.Context, id uuid.UUID) (*models.Message, error) {
	var message models.Message
	err := d.db.WithContext(ctx).
		Preload("Sender").
		Preload("SeenBy").
		First(&message, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &message, nil
}

// GetRoomMessages получает сообщения комнаты с пагинацией, новые первыми
func (d *Database) GetRoomMessages(ctx context.Context, roomID uuid.UUID, limit int, beforeID *uuid.UUID) ([]models.Message, error) {
	var messages []models.Message

	query := d.db.WithContext(ctx).Where("chat_room_id = ?", roomID)

	// Курсор должен быть сообщением этой же комнаты, иначе ErrRecordNotFound.
	// Сравнение по паре (created_at, id), чтобы сообщения с одинаковым временем не терялись между страницами.
	if beforeID != nil {
		var cursor models.Message
		err := d.db.WithContext(ctx).
			Select("id", "created_at").
			First(&cursor, "id = ? AND chat_room_id = ?", *beforeID, roomID).Error
		if err != nil {
			return nil, err
		}
		query = query.Where("(created_at < ? OR (created_at = ? AND id < ?))", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	err := query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Preload("Sender").
		Preload("SeenBy").
		Preload("SeenBy.User").
		Find(&messages).Error

	return messages, err
}

// GetLastMessage возвращает последнее сообщение комнаты или nil
func (d *Database) GetLastMessage(ctx context.Context, roomID uuid.UUID) (*models.Message, error) {
	messages, err := d.GetRoomMessages(ctx, roomID, 1, nil)
	if err != nil || len(messages) == 0 {
		return nil, err
	}
	return &messages[0], nil
}

// MarkMessageSeen вставляет отметку о прочтении; false, если она уже существовала
func (d *Database) MarkMessageSeen(ctx context.Context, seen *models.MessageSeen) (bool, error) {
	res := d.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Omit("User", "Message").
		Create(seen)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (d *Database) GetMessageSeen(ctx context.Context, messageID, userID uuid.UUID) (*models.MessageSeen, error) {
	var seen models.MessageSeen
	err := d.db.WithContext(ctx).
		Preload("User").
		Where("message_id = ? AND user_id = ?", messageID, userID).
		First(&seen).Error
	if err != nil {
		return nil, err
	}
	return &seen, nil
}
