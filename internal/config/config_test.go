package config

import (
	"strings"
	"testing"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("LINE_CHANNEL_TOKEN", "channel-token")
	t.Setenv("LINE_CHANNEL_SECRET", "channel-secret")
	t.Setenv("GOOGLE_CREDENTIALS_FILE", "credentials.json")
	t.Setenv("DRIVE_FOLDER_NAME", "DriveBotSync")
	t.Setenv("DATABASE_PATH", "relay.db")
	t.Setenv("LOG_LEVEL", "INFO")
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Helper()
	setRequiredEnv(t)
	t.Setenv("DRIVE_FOLDER_ID", "")
	t.Setenv("FOLDER_SHARE_MODE", "")
	t.Setenv("HTTP_LISTEN_ADDR", "")
	t.Setenv("API_AUTH_TOKEN", "")
	t.Setenv("HTTP_ALLOWED_ORIGINS", "")

	configuration, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if configuration.HTTPListenAddr != ":8001" {
		t.Fatalf("unexpected listen addr %q", configuration.HTTPListenAddr)
	}
	if configuration.FolderShareMode != ShareModeEveryUpload {
		t.Fatalf("unexpected share mode %q", configuration.FolderShareMode)
	}
	if configuration.APIEnabled() {
		t.Fatalf("expected API to be disabled without a token")
	}
	if configuration.DriveFolderID != "" {
		t.Fatalf("expected empty folder id")
	}
}

func TestLoadConfigMissingRequired(t *testing.T) {
	t.Helper()
	setRequiredEnv(t)
	t.Setenv("LINE_CHANNEL_TOKEN", "")

	_, err := LoadConfig()
	if err == nil {
		t.Fatalf("expected error for missing LINE_CHANNEL_TOKEN")
	}
	if !strings.Contains(err.Error(), "LINE_CHANNEL_TOKEN") {
		t.Fatalf("expected error to name the missing variable, got %v", err)
	}
}

func TestLoadConfigInvalidShareMode(t *testing.T) {
	t.Helper()
	setRequiredEnv(t)
	t.Setenv("FOLDER_SHARE_MODE", "sometimes")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error for invalid share mode")
	}
}

func TestLoadConfigOptionalValues(t *testing.T) {
	t.Helper()
	setRequiredEnv(t)
	t.Setenv("DRIVE_FOLDER_ID", "folder-123")
	t.Setenv("FOLDER_SHARE_MODE", ShareModeOnce)
	t.Setenv("PERSONAL_GOOGLE_ACCOUNT", "person@example.com")
	t.Setenv("API_AUTH_TOKEN", "secret-token")
	t.Setenv("HTTP_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com ,")

	configuration, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if configuration.DriveFolderID != "folder-123" {
		t.Fatalf("unexpected folder id %q", configuration.DriveFolderID)
	}
	if configuration.FolderShareMode != ShareModeOnce {
		t.Fatalf("unexpected share mode %q", configuration.FolderShareMode)
	}
	if !configuration.APIEnabled() {
		t.Fatalf("expected API to be enabled")
	}
	if len(configuration.HTTPAllowedOrigins) != 2 {
		t.Fatalf("unexpected origins %v", configuration.HTTPAllowedOrigins)
	}
}
