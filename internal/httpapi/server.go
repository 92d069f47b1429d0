package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"drivebotsync/internal/model"
	"drivebotsync/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"
	"log/slog"
)

const (
	basePath       = "/DriveBotSync"
	defaultTimeout = 5 * time.Second
)

// Config captures all inputs required to construct the HTTP server.
type Config struct {
	ListenAddr           string
	ChannelSecret        string
	Dispatcher           service.Dispatcher
	Uploads              service.UploadDirectory
	APIAuthToken         string
	AllowedOrigins       []string
	Logger               *slog.Logger
	ReadHeaderTimeout    time.Duration
	ShutdownGraceTimeout time.Duration
}

// Server hosts the webhook receiver, the health routes, and the optional
// authenticated upload listing.
type Server struct {
	config     Config
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer wires Gin, middleware, and handlers for the HTTP boundary.
func NewServer(cfg Config) (*Server, error) {
	if strings.TrimSpace(cfg.ListenAddr) == "" {
		return nil, errors.New("httpapi: listen address is required")
	}
	if strings.TrimSpace(cfg.ChannelSecret) == "" {
		return nil, errors.New("httpapi: channel secret is required")
	}
	if cfg.Dispatcher == nil {
		return nil, errors.New("httpapi: dispatcher is required")
	}
	if cfg.Logger == nil {
		return nil, errors.New("httpapi: logger is required")
	}
	if cfg.APIAuthToken != "" && cfg.Uploads == nil {
		return nil, errors.New("httpapi: upload directory is required when the API token is set")
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger(cfg.Logger))

	engine.GET("/healthz", func(contextGin *gin.Context) {
		contextGin.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	handler := newRelayHandler(cfg.ChannelSecret, cfg.Dispatcher, cfg.Uploads, cfg.Logger)
	engine.GET(basePath, func(contextGin *gin.Context) {
		contextGin.String(http.StatusOK, "HELLO USER!")
	})
	engine.GET(basePath+"/testwebhook", func(contextGin *gin.Context) {
		contextGin.String(http.StatusOK, "TEST WEBHOOK RESPONSE")
	})
	engine.POST(basePath+"/webhook", handler.receiveWebhook)

	if cfg.APIAuthToken != "" {
		engine.Use(buildCORS(cfg.AllowedOrigins))
		protected := engine.Group("/api")
		protected.Use(bearerAuthMiddleware(cfg.APIAuthToken))
		protected.GET("/uploads", handler.listUploads)
	}

	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           engine,
		ReadHeaderTimeout: pickDuration(cfg.ReadHeaderTimeout, defaultTimeout),
	}

	return &Server{
		config:     cfg,
		httpServer: httpServer,
		logger:     cfg.Logger,
	}, nil
}

// Start begins serving HTTP traffic.
func (server *Server) Start() error {
	err := server.httpServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully terminates the HTTP server.
func (server *Server) Shutdown(ctx context.Context) error {
	timeout := pickDuration(server.config.ShutdownGraceTimeout, defaultTimeout)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return server.httpServer.Shutdown(ctx)
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(contextGin *gin.Context) {
		started := time.Now()
		contextGin.Next()
		logger.Info(
			"http_request_completed",
			"method", contextGin.Request.Method,
			"path", contextGin.Request.URL.Path,
			"status", contextGin.Writer.Status(),
			"duration_ms", time.Since(started).Milliseconds(),
		)
	}
}

func buildCORS(allowedOrigins []string) gin.HandlerFunc {
	if len(allowedOrigins) == 0 {
		return cors.New(cors.Config{
			AllowAllOrigins: true,
			AllowHeaders:    []string{"Content-Type", "Authorization"},
			AllowMethods:    []string{http.MethodGet, http.MethodOptions},
		})
	}
	return cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowMethods:     []string{http.MethodGet, http.MethodOptions},
		AllowCredentials: true,
	})
}

func bearerAuthMiddleware(requiredToken string) gin.HandlerFunc {
	return func(contextGin *gin.Context) {
		authorizationHeader := contextGin.GetHeader("Authorization")
		if !strings.HasPrefix(authorizationHeader, "Bearer ") {
			contextGin.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		token := strings.TrimPrefix(authorizationHeader, "Bearer ")
		if token != requiredToken {
			contextGin.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		contextGin.Next()
	}
}

type relayHandler struct {
	channelSecret string
	dispatcher    service.Dispatcher
	uploads       service.UploadDirectory
	logger        *slog.Logger
}

func newRelayHandler(channelSecret string, dispatcher service.Dispatcher, uploads service.UploadDirectory, logger *slog.Logger) *relayHandler {
	return &relayHandler{
		channelSecret: channelSecret,
		dispatcher:    dispatcher,
		uploads:       uploads,
		logger:        logger,
	}
}

// receiveWebhook verifies the delivery signature, hands the batch to the
// dispatcher, and answers with one result entry per event.
func (handler *relayHandler) receiveWebhook(contextGin *gin.Context) {
	callback, parseError := webhook.ParseRequest(handler.channelSecret, contextGin.Request)
	if parseError != nil {
		if errors.Is(parseError, webhook.ErrInvalidSignature) {
			handler.logger.Warn("webhook_signature_rejected")
			contextGin.AbortWithStatus(http.StatusBadRequest)
			return
		}
		handler.logger.Error("webhook_parse_failed", "error", parseError)
		contextGin.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	handler.logger.Info("webhook_received", "event_count", len(callback.Events))
	results, dispatchError := handler.dispatcher.HandleEvents(contextGin.Request.Context(), callback.Events)
	if dispatchError != nil {
		handler.logger.Error("webhook_batch_failed", "error", dispatchError)
		contextGin.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	contextGin.JSON(http.StatusOK, results)
}

func (handler *relayHandler) listUploads(contextGin *gin.Context) {
	filters := model.UploadListFilters{
		Statuses: parseStatusFilters(contextGin.QueryArray("status")),
	}
	responses, listError := handler.uploads.ListUploads(contextGin.Request.Context(), filters)
	if listError != nil {
		handler.logger.Error("http_handler_error", "error", listError)
		contextGin.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	contextGin.JSON(http.StatusOK, gin.H{"uploads": responses})
}

func parseStatusFilters(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	unique := make(map[string]struct{}, len(values))
	var statuses []string
	for _, raw := range values {
		trimmed := strings.ToLower(strings.TrimSpace(raw))
		if trimmed == "" {
			continue
		}
		if _, exists := unique[trimmed]; exists {
			continue
		}
		unique[trimmed] = struct{}{}
		statuses = append(statuses, trimmed)
	}
	return statuses
}

func pickDuration(candidate time.Duration, fallback time.Duration) time.Duration {
	if candidate <= 0 {
		return fallback
	}
	return candidate
}
