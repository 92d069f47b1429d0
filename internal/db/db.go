package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"drivebotsync/internal/model"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB opens (or creates) the SQLite file and auto-migrates the schema.
func InitDB(databasePath string, applicationLogger *slog.Logger) (*gorm.DB, error) {
	applicationLogger.Info("Initializing SQLite DB", "path", databasePath)

	gormLogger := &slogGormLogger{logger: applicationLogger}
	database, openError := gorm.Open(sqlite.Open(databasePath), &gorm.Config{
		Logger: gormLogger,
	})
	if openError != nil {
		return nil, fmt.Errorf("open sqlite failed: %w", openError)
	}

	if migrateError := database.AutoMigrate(&model.UploadRecord{}); migrateError != nil {
		return nil, fmt.Errorf("migration failed: %w", migrateError)
	}

	return database, nil
}

// slogGormLogger adapts slog to GORM's logger.Interface.
type slogGormLogger struct {
	logger *slog.Logger
}

var _ logger.Interface = (*slogGormLogger)(nil)

func (l *slogGormLogger) LogMode(level logger.LogLevel) logger.Interface {
	return l
}

func (l *slogGormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	l.logger.Info(msg, data...)
}

func (l *slogGormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	l.logger.Warn(msg, data...)
}

func (l *slogGormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	l.logger.Error(msg, data...)
}

func (l *slogGormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if err == nil || errors.Is(err, gorm.ErrRecordNotFound) {
		return
	}
	sql, rows := fc()
	l.logger.Error("Trace",
		"error", err,
		"sql", sql,
		"rows", rows,
		"elapsed", time.Since(begin),
	)
}
