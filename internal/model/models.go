package model

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// AttachmentKind enumerates the message content variants the relay understands.
// Classification happens once at ingestion; everything downstream switches on
// the kind instead of re-inspecting the provider payload.
type AttachmentKind string

const (
	KindDocument AttachmentKind = "document"
	KindImage    AttachmentKind = "image"
	KindVideo    AttachmentKind = "video"
	KindAudio    AttachmentKind = "audio"
	KindText     AttachmentKind = "text"
	KindOther    AttachmentKind = "other"
)

// Uploadable reports whether content of this kind is fetched and uploaded.
func (kind AttachmentKind) Uploadable() bool {
	switch kind {
	case KindDocument, KindImage, KindVideo, KindAudio:
		return true
	default:
		return false
	}
}

// Attachment describes one inbound attachment for the duration of a single
// event's processing. The byte payload is fetched separately and never stored
// on this struct.
type Attachment struct {
	Kind        AttachmentKind
	MessageID   string
	FileName    string
	ContentType string
}

// Status constants used for the UploadRecord model.
const (
	StatusUploaded = "uploaded"
	StatusFailed   = "failed"
)

var ErrUploadRecordNotFound = errors.New("upload record not found")

// UploadRecord is the audit row persisted for every upload attempt.
type UploadRecord struct {
	ID          uint           `json:"-" gorm:"primaryKey"`
	UploadID    string         `json:"upload_id" gorm:"uniqueIndex"`
	MessageID   string         `json:"message_id"`
	Kind        AttachmentKind `json:"kind"`
	FileName    string         `json:"file_name"`
	ContentType string         `json:"content_type"`
	SizeBytes   int64          `json:"size_bytes"`
	DriveFileID string         `json:"drive_file_id"`
	ShareLink   string         `json:"share_link"`
	Status      string         `json:"status"`
	Detail      string         `json:"detail,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// UploadRecordResponse is the shape returned by the HTTP listing endpoint.
type UploadRecordResponse struct {
	UploadID    string         `json:"upload_id"`
	MessageID   string         `json:"message_id"`
	Kind        AttachmentKind `json:"kind"`
	FileName    string         `json:"file_name"`
	ContentType string         `json:"content_type"`
	SizeBytes   int64          `json:"size_bytes"`
	DriveFileID string         `json:"drive_file_id,omitempty"`
	ShareLink   string         `json:"share_link,omitempty"`
	Status      string         `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
}

// NewUploadRecordResponse translates a DB UploadRecord to the response shape.
// Operator-facing failure detail stays in the record and in the logs.
func NewUploadRecordResponse(record UploadRecord) UploadRecordResponse {
	return UploadRecordResponse{
		UploadID:    record.UploadID,
		MessageID:   record.MessageID,
		Kind:        record.Kind,
		FileName:    record.FileName,
		ContentType: record.ContentType,
		SizeBytes:   record.SizeBytes,
		DriveFileID: record.DriveFileID,
		ShareLink:   record.ShareLink,
		Status:      record.Status,
		CreatedAt:   record.CreatedAt,
	}
}

// UploadListFilters narrows the listing query.
type UploadListFilters struct {
	Statuses []string
}

// ====================== DB CRUD METHODS ====================== //

func CreateUploadRecord(ctx context.Context, db *gorm.DB, record *UploadRecord) error {
	return db.WithContext(ctx).Create(record).Error
}

func GetUploadRecordByID(ctx context.Context, db *gorm.DB, uploadID string) (*UploadRecord, error) {
	var record UploadRecord
	err := db.WithContext(ctx).Where("upload_id = ?", uploadID).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUploadRecordNotFound
		}
		return nil, err
	}
	return &record, nil
}

func ListUploadRecords(ctx context.Context, db *gorm.DB, filters UploadListFilters) ([]UploadRecord, error) {
	query := db.WithContext(ctx).Model(&UploadRecord{})
	if len(filters.Statuses) > 0 {
		query = query.Where("status IN ?", filters.Statuses)
	}
	var records []UploadRecord
	if err := query.Order("created_at DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
