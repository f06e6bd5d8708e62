package database

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/thereayou/teamdesk/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (d *Database) CreateChatRoom(ctx context.Context, room *models.ChatRoom) error {
	return d.db.WithContext(ctx).Omit("Members", "Messages").Create(room).Error
}

// GetChatRoom загружает комнату вместе с участниками
func (d *Database) GetChatRoom(ctx context.Context, id uuid.UUID) (*models.ChatRoom, error) {
	var room models.ChatRoom
	err := d.db.WithContext(ctx).
		Preload("Members", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Members.User").
		First(&room, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// GetTeamChatRooms возвращает комнаты команды с участниками
func (d *Database) GetTeamChatRooms(ctx context.Context, teamID uuid.UUID) ([]models.ChatRoom, error) {
	var rooms []models.ChatRoom
	err := d.db.WithContext(ctx).
		Where("team_id = ?", teamID).
		Preload("Members", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Members.User").
		Order("created_at DESC").
		Find(&rooms).Error
	return rooms, err
}

// AddChatRoomMember вставляет участника; false, если он уже был в комнате
func (d *Database) AddChatRoomMember(ctx context.Context, member *models.ChatRoomMember) (bool, error) {
	res := d.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Omit("User", "ChatRoom").
		Create(member)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (d *Database) GetChatRoomMember(ctx context.Context, roomID, userID uuid.UUID) (*models.ChatRoomMember, error) {
	var member models.ChatRoomMember
	err := d.db.WithContext(ctx).
		Preload("User").
		Where("chat_room_id = ? AND user_id = ?", roomID, userID).
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (d *Database) IsChatRoomMember(ctx context.Context, roomID, userID uuid.UUID) (bool, error) {
	_, err := d.GetChatRoomMember(ctx, roomID, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
