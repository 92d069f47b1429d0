package storage

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"

	"drivebotsync/internal/config"
)

const shareLinkTemplate = "https://drive.google.com/file/d/%s/view?usp=sharing"

// UploadResult identifies the created Drive object and its shareable link.
type UploadResult struct {
	FileID    string `json:"file_id"`
	ShareLink string `json:"share_link"`
}

// UploaderConfig carries the destination folder settings.
type UploaderConfig struct {
	// FolderID, when set, skips name-based resolution entirely.
	FolderID             string
	FolderName           string
	ShareMode            string
	PersonalAccountEmail string
}

// Uploader places byte payloads into the destination folder. The resolved
// folder identifier is cached for the process lifetime behind a mutex, so only
// the first upload pays the resolution round trip.
type Uploader struct {
	client      Client
	provisioner *Provisioner
	cfg         UploaderConfig
	logger      *slog.Logger

	folderMutex sync.Mutex
	folderID    string
	sharingDone bool
}

func NewUploader(client Client, provisioner *Provisioner, cfg UploaderConfig, logger *slog.Logger) *Uploader {
	return &Uploader{
		client:      client,
		provisioner: provisioner,
		cfg:         cfg,
		logger:      logger,
		folderID:    cfg.FolderID,
	}
}

// Upload stores the payload under the destination folder and returns the new
// object identifier with its share link. A failure at any step aborts the
// whole call; partially created state is not compensated.
func (uploader *Uploader) Upload(ctx context.Context, data []byte, fileName string, contentType string) (UploadResult, error) {
	folderID, resolveError := uploader.resolveFolder(ctx)
	if resolveError != nil {
		return UploadResult{}, resolveError
	}

	if sharingError := uploader.assertSharing(ctx, folderID); sharingError != nil {
		return UploadResult{}, sharingError
	}

	fileID, createError := uploader.client.CreateFile(ctx, fileName, contentType, folderID, bytes.NewReader(data))
	if createError != nil {
		return UploadResult{}, createError
	}

	uploader.logger.Info("drive_upload_completed", "file_name", fileName, "file_id", fileID, "size_bytes", len(data))
	return UploadResult{
		FileID:    fileID,
		ShareLink: fmt.Sprintf(shareLinkTemplate, fileID),
	}, nil
}

func (uploader *Uploader) resolveFolder(ctx context.Context) (string, error) {
	uploader.folderMutex.Lock()
	defer uploader.folderMutex.Unlock()

	if uploader.folderID != "" {
		return uploader.folderID, nil
	}

	resolvedID, ensureError := uploader.provisioner.EnsureFolder(ctx, uploader.cfg.FolderName)
	if ensureError != nil {
		return "", ensureError
	}
	if resolvedID == "" {
		return "", fmt.Errorf("storage: folder %q could not be resolved or created in Drive", uploader.cfg.FolderName)
	}
	uploader.folderID = resolvedID
	return resolvedID, nil
}

// assertSharing applies the folder grants. In every-upload mode the grants are
// reissued on each call; in once mode they are applied a single time per
// process lifetime.
func (uploader *Uploader) assertSharing(ctx context.Context, folderID string) error {
	if uploader.cfg.ShareMode == config.ShareModeOnce {
		uploader.folderMutex.Lock()
		alreadyShared := uploader.sharingDone
		uploader.folderMutex.Unlock()
		if alreadyShared {
			return nil
		}
	}

	if shareError := uploader.provisioner.SharePublic(ctx, folderID); shareError != nil {
		return shareError
	}
	if uploader.cfg.PersonalAccountEmail != "" {
		if shareError := uploader.provisioner.ShareWithAccount(ctx, folderID, uploader.cfg.PersonalAccountEmail); shareError != nil {
			return shareError
		}
	}

	if uploader.cfg.ShareMode == config.ShareModeOnce {
		uploader.folderMutex.Lock()
		uploader.sharingDone = true
		uploader.folderMutex.Unlock()
	}
	return nil
}
