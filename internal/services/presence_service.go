package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/teamdesk/internal/database"
	"github.com/thereayou/teamdesk/internal/websocket"
	"go.uber.org/zap"
)

// PresenceService держит User.isOnline/lastSeen в соответствии с живыми соединениями
type PresenceService struct {
	db          *database.Database
	broadcaster Broadcaster
	log         *zap.Logger
	now         func() time.Time
}

func NewPresenceService(db *database.Database, broadcaster Broadcaster, log *zap.Logger) *PresenceService {
	return &PresenceService{
		db:          db,
		broadcaster: broadcaster,
		log:         log.Named("presence"),
		now:         time.Now,
	}
}

type UserStatusChange struct {
	UserID   uuid.UUID `json:"userId"`
	IsOnline bool      `json:"isOnline"`
	LastSeen time.Time `json:"lastSeen"`
}

func (s *PresenceService) UserConnected(ctx context.Context, userID, teamID uuid.UUID) {
	s.setPresence(ctx, userID, teamID, true)
}

func (s *PresenceService) UserDisconnected(ctx context.Context, userID, teamID uuid.UUID) {
	s.setPresence(ctx, userID, teamID, false)
}

// ResetAll отмечает offline всех, кто остался online после аварийной остановки.
// Вызывается при старте, до того как hub принимает соединения.
func (s *PresenceService) ResetAll(ctx context.Context) error {
	n, err := s.db.ResetPresence(ctx, s.now())
	if err != nil {
		return err
	}
	if n > 0 {
		s.log.Info("stale presence reset", zap.Int64("users", n))
	}
	return nil
}

// setPresence сначала пишет в базу; при ошибке записи событие не рассылается
func (s *PresenceService) setPresence(ctx context.Context, userID, teamID uuid.UUID, online bool) {
	now := s.now()

	if err := s.db.SetUserPresence(ctx, userID, online, now); err != nil {
		s.log.Error("failed to update presence",
			zap.Stringer("user_id", userID),
			zap.Bool("online", online),
			zap.Error(err),
		)
		return
	}

	event := UserStatusChange{UserID: userID, IsOnline: online, LastSeen: now}
	if err := s.broadcaster.BroadcastToTeam(teamID, websocket.TypeUserStatusChange, event); err != nil {
		s.log.Error("presence broadcast failed", zap.Stringer("user_id", userID), zap.Error(err))
	}
}
