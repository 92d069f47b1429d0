package service

import (
	"context"

	"drivebotsync/internal/model"
	"gorm.io/gorm"
	"log/slog"
)

// UploadDirectory exposes the persisted upload records for the admin API.
type UploadDirectory interface {
	ListUploads(ctx context.Context, filters model.UploadListFilters) ([]model.UploadRecordResponse, error)
}

type uploadDirectoryImpl struct {
	database *gorm.DB
	logger   *slog.Logger
}

func NewUploadDirectory(database *gorm.DB, logger *slog.Logger) UploadDirectory {
	return &uploadDirectoryImpl{database: database, logger: logger}
}

func (directory *uploadDirectoryImpl) ListUploads(ctx context.Context, filters model.UploadListFilters) ([]model.UploadRecordResponse, error) {
	records, listError := model.ListUploadRecords(ctx, directory.database, filters)
	if listError != nil {
		directory.logger.Error("upload_list_failed", "error", listError)
		return nil, listError
	}
	responses := make([]model.UploadRecordResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, model.NewUploadRecordResponse(record))
	}
	return responses, nil
}
