package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"drivebotsync/internal/config"
	"drivebotsync/internal/db"
	"drivebotsync/internal/httpapi"
	"drivebotsync/internal/messaging"
	"drivebotsync/internal/service"
	"drivebotsync/internal/storage"
	"drivebotsync/pkg/logging"
)

func main() {
	configuration, configErr := config.LoadConfig()
	if configErr != nil {
		fallbackLogger := logging.NewLogger("INFO")
		for _, errMsg := range strings.Split(configErr.Error(), ", ") {
			fallbackLogger.Error("Configuration error", "detail", errMsg)
		}
		os.Exit(1)
	}

	mainLogger := logging.NewLogger(configuration.LogLevel)
	mainLogger.Info("Starting Drive upload relay", "listen_addr", configuration.HTTPListenAddr)

	databaseInstance, dbErr := db.InitDB(configuration.DatabasePath, mainLogger)
	if dbErr != nil {
		mainLogger.Error("Failed to initialize DB", "error", dbErr)
		os.Exit(1)
	}

	driveClient, driveErr := storage.NewDriveClient(context.Background(), configuration.GoogleCredentialsFile, mainLogger)
	if driveErr != nil {
		mainLogger.Error("Failed to initialize Drive client", "error", driveErr)
		os.Exit(1)
	}
	provisioner := storage.NewProvisioner(driveClient, mainLogger)
	uploader := storage.NewUploader(driveClient, provisioner, storage.UploaderConfig{
		FolderID:             configuration.DriveFolderID,
		FolderName:           configuration.DriveFolderName,
		ShareMode:            configuration.FolderShareMode,
		PersonalAccountEmail: configuration.PersonalAccountEmail,
	}, mainLogger)

	lineClient, lineErr := messaging.NewLineClient(configuration.LineChannelToken, mainLogger)
	if lineErr != nil {
		mainLogger.Error("Failed to initialize LINE client", "error", lineErr)
		os.Exit(1)
	}

	dispatcher := service.NewDispatcher(databaseInstance, lineClient, uploader, mainLogger)

	serverConfig := httpapi.Config{
		ListenAddr:     configuration.HTTPListenAddr,
		ChannelSecret:  configuration.LineChannelSecret,
		Dispatcher:     dispatcher,
		AllowedOrigins: configuration.HTTPAllowedOrigins,
		Logger:         mainLogger,
	}
	if configuration.APIEnabled() {
		serverConfig.APIAuthToken = configuration.APIAuthToken
		serverConfig.Uploads = service.NewUploadDirectory(databaseInstance, mainLogger)
	}

	server, serverErr := httpapi.NewServer(serverConfig)
	if serverErr != nil {
		mainLogger.Error("Failed to construct HTTP server", "error", serverErr)
		os.Exit(1)
	}

	signalCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErrors := make(chan error, 1)
	go func() {
		serveErrors <- server.Start()
	}()
	mainLogger.Info("HTTP server listening", "addr", configuration.HTTPListenAddr)

	select {
	case <-signalCtx.Done():
		mainLogger.Info("Shutdown signal received")
	case serveError := <-serveErrors:
		if serveError != nil {
			mainLogger.Error("HTTP server crashed", "error", serveError)
			os.Exit(1)
		}
		return
	}

	if shutdownError := server.Shutdown(context.Background()); shutdownError != nil {
		mainLogger.Error("HTTP shutdown error", "error", shutdownError)
		os.Exit(1)
	}
	mainLogger.Info("Server stopped")
}
