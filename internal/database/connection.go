package database

import (
	"errors"
	"time"

	"github.com/thereayou/teamdesk/internal/logger"
	"github.com/thereayou/teamdesk/internal/models"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const slowQueryThreshold = 200 * time.Millisecond

// Models перечисляет все таблицы, которые создаёт AutoMigrate
func Models() []interface{} {
	return []interface{}{
		&models.Team{},
		&models.Department{},
		&models.User{},
		&models.Project{},
		&models.ProjectAssignment{},
		&models.ProjectPhaseStatus{},
		&models.ProjectStatusHistory{},
		&models.Note{},
		&models.NoteHistory{},
		&models.ChatRoom{},
		&models.ChatRoomMember{},
		&models.Message{},
		&models.MessageSeen{},
		&models.Notification{},
	}
}

// Connect открывает Postgres по dsn и мигрирует схему
func Connect(dsn string, log *zap.Logger) (*Database, error) {
	if dsn == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.NewGormLogger(log, gormlogger.Warn, slowQueryThreshold, true),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := db.AutoMigrate(Models()...); err != nil {
		return nil, err
	}

	log.Info("database connected", zap.Int("tables", len(Models())))

	return NewDatabase(db), nil
}
