// Package messaging wraps the LINE Messaging API behind the small surface the
// relay needs: fetching attachment bytes and sending a single text reply.
package messaging

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
)

// Client is the messaging capability the dispatcher depends on.
type Client interface {
	// GetMessageContent fetches the binary content attached to a message.
	GetMessageContent(ctx context.Context, messageID string) ([]byte, error)
	// ReplyText sends one text message through the event's one-time reply token.
	ReplyText(ctx context.Context, replyToken string, text string) error
}

type lineClient struct {
	messagingAPI *messaging_api.MessagingApiAPI
	blobAPI      *messaging_api.MessagingApiBlobAPI
	logger       *slog.Logger
}

// NewLineClient builds a Client backed by the LINE Messaging API using the
// channel access token.
func NewLineClient(channelToken string, logger *slog.Logger) (Client, error) {
	messagingAPI, apiError := messaging_api.NewMessagingApiAPI(channelToken)
	if apiError != nil {
		return nil, fmt.Errorf("create messaging api client: %w", apiError)
	}
	blobAPI, blobError := messaging_api.NewMessagingApiBlobAPI(channelToken)
	if blobError != nil {
		return nil, fmt.Errorf("create messaging blob client: %w", blobError)
	}
	return &lineClient{messagingAPI: messagingAPI, blobAPI: blobAPI, logger: logger}, nil
}

// NewLineClientWithAPIs wires a Client from already constructed SDK clients.
func NewLineClientWithAPIs(messagingAPI *messaging_api.MessagingApiAPI, blobAPI *messaging_api.MessagingApiBlobAPI, logger *slog.Logger) Client {
	return &lineClient{messagingAPI: messagingAPI, blobAPI: blobAPI, logger: logger}
}

func (client *lineClient) GetMessageContent(ctx context.Context, messageID string) ([]byte, error) {
	response, fetchError := client.blobAPI.GetMessageContent(messageID)
	if fetchError != nil {
		return nil, fmt.Errorf("fetch message content %s: %w", messageID, fetchError)
	}
	defer response.Body.Close()

	payload, readError := io.ReadAll(response.Body)
	if readError != nil {
		return nil, fmt.Errorf("read message content %s: %w", messageID, readError)
	}
	client.logger.Debug("message_content_fetched", "message_id", messageID, "size_bytes", len(payload))
	return payload, nil
}

func (client *lineClient) ReplyText(ctx context.Context, replyToken string, text string) error {
	_, replyError := client.messagingAPI.ReplyMessage(&messaging_api.ReplyMessageRequest{
		ReplyToken: replyToken,
		Messages: []messaging_api.MessageInterface{
			messaging_api.TextMessage{Text: text},
		},
	})
	if replyError != nil {
		return fmt.Errorf("send reply: %w", replyError)
	}
	return nil
}
