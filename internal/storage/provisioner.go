package storage

import (
	"context"
	"errors"
	"log/slog"
	"strings"
)

// Provisioner resolves the destination folder and manages its sharing grants.
// EnsureFolder is a read-then-create: concurrent first-time resolution across
// processes can still create duplicate folders on the provider side.
type Provisioner struct {
	client Client
	logger *slog.Logger
}

func NewProvisioner(client Client, logger *slog.Logger) *Provisioner {
	return &Provisioner{client: client, logger: logger}
}

// EnsureFolder returns the identifier of the folder with the given display
// name, creating the folder when no match exists.
func (provisioner *Provisioner) EnsureFolder(ctx context.Context, displayName string) (string, error) {
	if strings.TrimSpace(displayName) == "" {
		return "", errors.New("storage: folder name is required")
	}

	folderID, findError := provisioner.client.FindFolder(ctx, displayName)
	if findError != nil {
		return "", findError
	}
	if folderID != "" {
		provisioner.logger.Info("drive_folder_found", "folder_name", displayName, "folder_id", folderID)
		return folderID, nil
	}

	provisioner.logger.Info("drive_folder_creating", "folder_name", displayName)
	createdID, createError := provisioner.client.CreateFolder(ctx, displayName)
	if createError != nil {
		return "", createError
	}
	provisioner.logger.Info("drive_folder_created", "folder_name", displayName, "folder_id", createdID)
	return createdID, nil
}

// SharePublic grants read access to anyone with the link. The provider treats
// a repeated grant as idempotent.
func (provisioner *Provisioner) SharePublic(ctx context.Context, folderID string) error {
	return provisioner.client.CreatePermission(ctx, folderID, Permission{
		Role: "reader",
		Type: "anyone",
	})
}

// ShareWithAccount grants write access to a specific Google account.
func (provisioner *Provisioner) ShareWithAccount(ctx context.Context, folderID string, emailAddress string) error {
	return provisioner.client.CreatePermission(ctx, folderID, Permission{
		Role:         "writer",
		Type:         "user",
		EmailAddress: emailAddress,
	})
}
