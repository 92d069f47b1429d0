package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"drivebotsync/internal/messaging"
	"drivebotsync/internal/model"
	"drivebotsync/internal/storage"
	"github.com/google/uuid"
	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"
	"gorm.io/gorm"
	"log/slog"
)

const (
	successReplyFormat = "File uploaded successfully: %s\nAccess it here: %s"
	// failureNoticeText is the only failure detail a sender ever sees; the
	// underlying cause stays in the logs and the audit record.
	failureNoticeText = "Failed to upload the file. Please try again later."
)

// Uploader places a byte payload into the destination folder.
type Uploader interface {
	Upload(ctx context.Context, data []byte, fileName string, contentType string) (storage.UploadResult, error)
}

// EventResult summarizes the handling of one webhook event. A nil result
// means the event required no action (non-message event or unsupported kind).
type EventResult struct {
	UploadID  string               `json:"upload_id"`
	Kind      model.AttachmentKind `json:"kind"`
	FileName  string               `json:"file_name"`
	ShareLink string               `json:"share_link,omitempty"`
	Status    string               `json:"status"`
}

// Dispatcher processes inbound webhook event batches.
type Dispatcher interface {
	// HandleEvents processes all events of a delivery concurrently and waits
	// for every one to settle. The returned slice has one entry per input
	// event, in input order. A non-nil error reports a panic that escaped an
	// event handler; results for the other events are still populated.
	HandleEvents(ctx context.Context, events []webhook.EventInterface) ([]*EventResult, error)
}

type dispatcherImpl struct {
	database  *gorm.DB
	messenger messaging.Client
	uploader  Uploader
	logger    *slog.Logger
}

func NewDispatcher(database *gorm.DB, messenger messaging.Client, uploader Uploader, logger *slog.Logger) Dispatcher {
	return &dispatcherImpl{
		database:  database,
		messenger: messenger,
		uploader:  uploader,
		logger:    logger,
	}
}

func (dispatcher *dispatcherImpl) HandleEvents(ctx context.Context, events []webhook.EventInterface) ([]*EventResult, error) {
	results := make([]*EventResult, len(events))
	panicChannel := make(chan error, len(events))

	var waitGroup sync.WaitGroup
	for index, event := range events {
		waitGroup.Add(1)
		go func(index int, event webhook.EventInterface) {
			defer waitGroup.Done()
			defer func() {
				if recovered := recover(); recovered != nil {
					dispatcher.logger.Error("event_handler_panicked", "event_index", index, "panic", recovered)
					panicChannel <- fmt.Errorf("event %d: panic: %v", index, recovered)
				}
			}()
			results[index] = dispatcher.handleEvent(ctx, event)
		}(index, event)
	}
	waitGroup.Wait()
	close(panicChannel)

	if panicError := <-panicChannel; panicError != nil {
		return results, panicError
	}
	return results, nil
}

func (dispatcher *dispatcherImpl) handleEvent(ctx context.Context, event webhook.EventInterface) *EventResult {
	messageEvent, isMessageEvent := event.(webhook.MessageEvent)
	if !isMessageEvent {
		dispatcher.logger.Info("event_skipped", "reason", "non_message_event")
		return nil
	}

	attachment := classifyMessage(messageEvent.Message, time.Now().UTC())
	if !attachment.Kind.Uploadable() {
		dispatcher.logger.Info("event_skipped", "reason", "unsupported_message_kind", "kind", attachment.Kind)
		return nil
	}

	dispatcher.logger.Info("attachment_received", "kind", attachment.Kind, "message_id", attachment.MessageID, "file_name", attachment.FileName)

	payload, fetchError := dispatcher.messenger.GetMessageContent(ctx, attachment.MessageID)
	if fetchError != nil {
		return dispatcher.reportFailure(ctx, messageEvent.ReplyToken, attachment, 0, fetchError)
	}

	uploadResult, uploadError := dispatcher.uploader.Upload(ctx, payload, attachment.FileName, attachment.ContentType)
	if uploadError != nil {
		return dispatcher.reportFailure(ctx, messageEvent.ReplyToken, attachment, int64(len(payload)), uploadError)
	}

	result := dispatcher.recordUpload(ctx, attachment, int64(len(payload)), uploadResult)

	replyText := fmt.Sprintf(successReplyFormat, attachment.FileName, uploadResult.ShareLink)
	if replyError := dispatcher.messenger.ReplyText(ctx, messageEvent.ReplyToken, replyText); replyError != nil {
		dispatcher.logger.Error("success_reply_failed", "message_id", attachment.MessageID, "error", replyError)
		dispatcher.sendFailureNotice(ctx, messageEvent.ReplyToken)
	}
	return result
}

func (dispatcher *dispatcherImpl) recordUpload(ctx context.Context, attachment model.Attachment, sizeBytes int64, uploadResult storage.UploadResult) *EventResult {
	record := model.UploadRecord{
		UploadID:    uuid.New().String(),
		MessageID:   attachment.MessageID,
		Kind:        attachment.Kind,
		FileName:    attachment.FileName,
		ContentType: attachment.ContentType,
		SizeBytes:   sizeBytes,
		DriveFileID: uploadResult.FileID,
		ShareLink:   uploadResult.ShareLink,
		Status:      model.StatusUploaded,
	}
	if recordError := model.CreateUploadRecord(ctx, dispatcher.database, &record); recordError != nil {
		dispatcher.logger.Error("upload_record_write_failed", "upload_id", record.UploadID, "error", recordError)
	}
	dispatcher.logger.Info(
		"upload_recorded",
		"upload_id", record.UploadID,
		"file_name", record.FileName,
		"drive_file_id", record.DriveFileID,
		"status", record.Status,
	)
	return &EventResult{
		UploadID:  record.UploadID,
		Kind:      record.Kind,
		FileName:  record.FileName,
		ShareLink: record.ShareLink,
		Status:    record.Status,
	}
}

func (dispatcher *dispatcherImpl) reportFailure(ctx context.Context, replyToken string, attachment model.Attachment, sizeBytes int64, cause error) *EventResult {
	dispatcher.logger.Error("event_processing_failed", "message_id", attachment.MessageID, "kind", attachment.Kind, "error", cause)

	record := model.UploadRecord{
		UploadID:    uuid.New().String(),
		MessageID:   attachment.MessageID,
		Kind:        attachment.Kind,
		FileName:    attachment.FileName,
		ContentType: attachment.ContentType,
		SizeBytes:   sizeBytes,
		Status:      model.StatusFailed,
		Detail:      cause.Error(),
	}
	if recordError := model.CreateUploadRecord(ctx, dispatcher.database, &record); recordError != nil {
		dispatcher.logger.Error("upload_record_write_failed", "upload_id", record.UploadID, "error", recordError)
	}

	dispatcher.sendFailureNotice(ctx, replyToken)
	return &EventResult{
		UploadID: record.UploadID,
		Kind:     record.Kind,
		FileName: record.FileName,
		Status:   record.Status,
	}
}

func (dispatcher *dispatcherImpl) sendFailureNotice(ctx context.Context, replyToken string) {
	if noticeError := dispatcher.messenger.ReplyText(ctx, replyToken, failureNoticeText); noticeError != nil {
		dispatcher.logger.Error("failure_notice_send_failed", "error", noticeError)
	}
}
