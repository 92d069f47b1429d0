package config

import (
	"fmt"
	"os"
	"strings"
	"sync"
)

const (
	defaultHTTPListenAddr = ":8001"

	// ShareModeEveryUpload reasserts the public-read grant on the destination
	// folder before every upload; ShareModeOnce asserts it only the first time
	// the folder identifier is resolved.
	ShareModeEveryUpload = "every-upload"
	ShareModeOnce        = "once"
)

type Config struct {
	LineChannelToken  string
	LineChannelSecret string

	GoogleCredentialsFile string
	DriveFolderID         string
	DriveFolderName       string
	FolderShareMode       string
	PersonalAccountEmail  string

	DatabasePath string
	LogLevel     string

	HTTPListenAddr     string
	HTTPAllowedOrigins []string
	APIAuthToken       string
}

// LoadConfig retrieves all required environment variables concurrently.
func LoadConfig() (Config, error) {
	var configuration Config
	var waitGroup sync.WaitGroup

	taskFunctions := []func() error{
		loadEnvString("LINE_CHANNEL_TOKEN", &configuration.LineChannelToken),
		loadEnvString("LINE_CHANNEL_SECRET", &configuration.LineChannelSecret),
		loadEnvString("GOOGLE_CREDENTIALS_FILE", &configuration.GoogleCredentialsFile),
		loadEnvString("DRIVE_FOLDER_NAME", &configuration.DriveFolderName),
		loadEnvString("DATABASE_PATH", &configuration.DatabasePath),
		loadEnvString("LOG_LEVEL", &configuration.LogLevel),
	}

	errorChannel := make(chan error, len(taskFunctions))
	for _, taskFunction := range taskFunctions {
		waitGroup.Add(1)
		go func(task func() error) {
			defer waitGroup.Done()
			if taskError := task(); taskError != nil {
				errorChannel <- taskError
			}
		}(taskFunction)
	}

	waitGroup.Wait()
	close(errorChannel)

	var errorMessages []string
	for errorValue := range errorChannel {
		errorMessages = append(errorMessages, errorValue.Error())
	}
	if len(errorMessages) > 0 {
		return Config{}, fmt.Errorf("configuration errors: %s", strings.Join(errorMessages, ", "))
	}

	configuration.DriveFolderID = strings.TrimSpace(os.Getenv("DRIVE_FOLDER_ID"))
	configuration.PersonalAccountEmail = strings.TrimSpace(os.Getenv("PERSONAL_GOOGLE_ACCOUNT"))
	configuration.APIAuthToken = strings.TrimSpace(os.Getenv("API_AUTH_TOKEN"))
	configuration.HTTPAllowedOrigins = parseCSV(os.Getenv("HTTP_ALLOWED_ORIGINS"))

	configuration.HTTPListenAddr = strings.TrimSpace(os.Getenv("HTTP_LISTEN_ADDR"))
	if configuration.HTTPListenAddr == "" {
		configuration.HTTPListenAddr = defaultHTTPListenAddr
	}

	shareMode := strings.TrimSpace(os.Getenv("FOLDER_SHARE_MODE"))
	switch shareMode {
	case "":
		configuration.FolderShareMode = ShareModeEveryUpload
	case ShareModeEveryUpload, ShareModeOnce:
		configuration.FolderShareMode = shareMode
	default:
		return Config{}, fmt.Errorf("invalid FOLDER_SHARE_MODE %q: must be %q or %q", shareMode, ShareModeEveryUpload, ShareModeOnce)
	}

	return configuration, nil
}

func loadEnvString(environmentKey string, destination *string) func() error {
	const missingEnvFormat = "missing environment variable %s"
	return func() error {
		environmentValue := strings.TrimSpace(os.Getenv(environmentKey))
		if environmentValue == "" {
			return fmt.Errorf(missingEnvFormat, environmentKey)
		}
		*destination = environmentValue
		return nil
	}
}

func parseCSV(value string) []string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	rawParts := strings.Split(trimmed, ",")
	var normalized []string
	for _, part := range rawParts {
		candidate := strings.TrimSpace(part)
		if candidate == "" {
			continue
		}
		normalized = append(normalized, candidate)
	}
	return normalized
}

// APIEnabled reports whether the authenticated upload listing API is exposed.
func (configuration Config) APIEnabled() bool {
	return configuration.APIAuthToken != ""
}
