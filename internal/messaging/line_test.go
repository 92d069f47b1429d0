package messaging

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"log/slog"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestGetMessageContentReadsBody(t *testing.T) {
	t.Helper()
	var requestedPath string
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		requestedPath = request.URL.Path
		writer.Header().Set("Content-Type", "application/octet-stream")
		_, _ = writer.Write([]byte("binary-payload"))
	}))
	defer server.Close()

	blobAPI, err := messaging_api.NewMessagingApiBlobAPI("token", messaging_api.WithBlobEndpoint(server.URL))
	if err != nil {
		t.Fatalf("blob api error: %v", err)
	}
	client := NewLineClientWithAPIs(nil, blobAPI, newDiscardLogger())

	payload, err := client.GetMessageContent(context.Background(), "message-1")
	if err != nil {
		t.Fatalf("GetMessageContent error: %v", err)
	}
	if string(payload) != "binary-payload" {
		t.Fatalf("unexpected payload %q", payload)
	}
	if !strings.Contains(requestedPath, "message-1") {
		t.Fatalf("expected message id in path, got %q", requestedPath)
	}
}

func TestReplyTextPostsReplyToken(t *testing.T) {
	t.Helper()
	var captured struct {
		path string
		body map[string]any
	}
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		captured.path = request.URL.Path
		_ = json.NewDecoder(request.Body).Decode(&captured.body)
		writer.Header().Set("Content-Type", "application/json")
		_, _ = writer.Write([]byte("{}"))
	}))
	defer server.Close()

	messagingAPI, err := messaging_api.NewMessagingApiAPI("token", messaging_api.WithEndpoint(server.URL))
	if err != nil {
		t.Fatalf("messaging api error: %v", err)
	}
	client := NewLineClientWithAPIs(messagingAPI, nil, newDiscardLogger())

	if err := client.ReplyText(context.Background(), "reply-token-1", "hello"); err != nil {
		t.Fatalf("ReplyText error: %v", err)
	}
	if !strings.Contains(captured.path, "reply") {
		t.Fatalf("expected reply path, got %q", captured.path)
	}
	if captured.body["replyToken"] != "reply-token-1" {
		t.Fatalf("unexpected reply token %v", captured.body["replyToken"])
	}
}

func TestReplyTextPropagatesAPIError(t *testing.T) {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusBadRequest)
		_, _ = writer.Write([]byte(`{"message":"Invalid reply token"}`))
	}))
	defer server.Close()

	messagingAPI, err := messaging_api.NewMessagingApiAPI("token", messaging_api.WithEndpoint(server.URL))
	if err != nil {
		t.Fatalf("messaging api error: %v", err)
	}
	client := NewLineClientWithAPIs(messagingAPI, nil, newDiscardLogger())

	if err := client.ReplyText(context.Background(), "used-token", "hello"); err == nil {
		t.Fatalf("expected error for rejected reply")
	}
}
