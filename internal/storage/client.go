// Package storage talks to Google Drive: folder provisioning, permission
// grants, and file uploads into the configured destination folder.
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const folderContentType = "application/vnd.google-apps.folder"

// Permission is a single grant applied to a Drive object.
type Permission struct {
	Role         string
	Type         string
	EmailAddress string
}

// Client is the subset of Drive operations the relay depends on.
type Client interface {
	// FindFolder returns the identifier of the first folder matching the
	// display name, or "" when no folder matches.
	FindFolder(ctx context.Context, displayName string) (string, error)
	CreateFolder(ctx context.Context, displayName string) (string, error)
	CreateFile(ctx context.Context, fileName string, contentType string, parentFolderID string, content io.Reader) (string, error)
	CreatePermission(ctx context.Context, objectID string, permission Permission) error
}

type driveClient struct {
	service *drive.Service
	logger  *slog.Logger
}

// NewDriveClient builds a Drive-backed Client authenticated with the
// service-account credentials file, scoped to files the relay creates.
func NewDriveClient(ctx context.Context, credentialsFile string, logger *slog.Logger) (Client, error) {
	service, err := drive.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(drive.DriveFileScope),
	)
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}
	return &driveClient{service: service, logger: logger}, nil
}

func (client *driveClient) FindFolder(ctx context.Context, displayName string) (string, error) {
	query := fmt.Sprintf("name='%s' and mimeType='%s'", escapeQueryValue(displayName), folderContentType)
	fileList, listError := client.service.Files.List().Q(query).Fields("files(id, name)").Context(ctx).Do()
	if listError != nil {
		return "", fmt.Errorf("list folders: %w", listError)
	}
	if len(fileList.Files) == 0 {
		return "", nil
	}
	return fileList.Files[0].Id, nil
}

func (client *driveClient) CreateFolder(ctx context.Context, displayName string) (string, error) {
	folderMetadata := &drive.File{
		Name:     displayName,
		MimeType: folderContentType,
	}
	created, createError := client.service.Files.Create(folderMetadata).Fields("id").Context(ctx).Do()
	if createError != nil {
		return "", fmt.Errorf("create folder: %w", createError)
	}
	return created.Id, nil
}

func (client *driveClient) CreateFile(ctx context.Context, fileName string, contentType string, parentFolderID string, content io.Reader) (string, error) {
	fileMetadata := &drive.File{
		Name:     fileName,
		MimeType: contentType,
		Parents:  []string{parentFolderID},
	}
	created, createError := client.service.Files.Create(fileMetadata).
		Fields("id").
		Context(ctx).
		Media(content, googleapi.ContentType(contentType)).
		Do()
	if createError != nil {
		return "", fmt.Errorf("create file: %w", createError)
	}
	client.logger.Debug("drive_file_created", "file_name", fileName, "file_id", created.Id)
	return created.Id, nil
}

func (client *driveClient) CreatePermission(ctx context.Context, objectID string, permission Permission) error {
	grant := &drive.Permission{
		Role:         permission.Role,
		Type:         permission.Type,
		EmailAddress: permission.EmailAddress,
	}
	if _, createError := client.service.Permissions.Create(objectID, grant).Context(ctx).Do(); createError != nil {
		return fmt.Errorf("create permission: %w", createError)
	}
	return nil
}

// escapeQueryValue escapes a display name for embedding in a Drive list query.
func escapeQueryValue(value string) string {
	return strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(value)
}
