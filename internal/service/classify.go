package service

import (
	"fmt"
	"time"

	"drivebotsync/internal/model"
	"drivebotsync/pkg/mimetype"
	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"
)

// classifyMessage decides the attachment variant once, at ingestion. Documents
// keep the sender-supplied file name and get their content type from the
// extension; image, video, and audio content arrives unnamed, so those get a
// kind-prefixed timestamp name and a fixed content type.
func classifyMessage(content webhook.MessageContentInterface, now time.Time) model.Attachment {
	switch message := content.(type) {
	case webhook.FileMessageContent:
		return model.Attachment{
			Kind:        model.KindDocument,
			MessageID:   message.Id,
			FileName:    message.FileName,
			ContentType: mimetype.Resolve(message.FileName),
		}
	case webhook.ImageMessageContent:
		return model.Attachment{
			Kind:        model.KindImage,
			MessageID:   message.Id,
			FileName:    fmt.Sprintf("image_%d.jpg", now.UnixMilli()),
			ContentType: "image/jpeg",
		}
	case webhook.VideoMessageContent:
		return model.Attachment{
			Kind:        model.KindVideo,
			MessageID:   message.Id,
			FileName:    fmt.Sprintf("video_%d.mp4", now.UnixMilli()),
			ContentType: "video/mp4",
		}
	case webhook.AudioMessageContent:
		return model.Attachment{
			Kind:        model.KindAudio,
			MessageID:   message.Id,
			FileName:    fmt.Sprintf("audio_%d.mp3", now.UnixMilli()),
			ContentType: "audio/mpeg",
		}
	case webhook.TextMessageContent:
		return model.Attachment{Kind: model.KindText}
	default:
		return model.Attachment{Kind: model.KindOther}
	}
}
