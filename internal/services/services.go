package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/thereayou/teamdesk/internal/apperror"
	"github.com/thereayou/teamdesk/internal/websocket"
	"github.com/thereayou/teamdesk/pkg/storage"
	"gorm.io/gorm"
)

// Broadcaster доставляет события подписчикам канала команды или комнаты
type Broadcaster interface {
	BroadcastToTeam(teamID uuid.UUID, msgType websocket.MessageType, data interface{}) error
	BroadcastToRoom(roomID uuid.UUID, msgType websocket.MessageType, data interface{}) error
}

// Uploader сохраняет файлы в объектное хранилище
type Uploader interface {
	Upload(ctx context.Context, data []byte, fileName, folder string) (*storage.UploadResult, error)
	Delete(ctx context.Context, key string) error
}

// lookupError превращает отсутствие записи в NotFound, остальное в Internal
func lookupError(err error, notFound string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NotFound(notFound)
	}
	if _, ok := apperror.As(err); ok {
		return err
	}
	return apperror.Internal("database error", err)
}

func internal(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apperror.As(err); ok {
		return err
	}
	return apperror.Internal("database error", err)
}
