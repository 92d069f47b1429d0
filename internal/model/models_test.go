package model

import (
	"context"
	"errors"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDatabase(t *testing.T) *gorm.DB {
	t.Helper()
	database, openError := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	if openError != nil {
		t.Fatalf("sqlite open error: %v", openError)
	}
	if migrateError := database.AutoMigrate(&UploadRecord{}); migrateError != nil {
		t.Fatalf("migrate error: %v", migrateError)
	}
	return database
}

func TestAttachmentKindUploadable(t *testing.T) {
	t.Helper()
	uploadable := []AttachmentKind{KindDocument, KindImage, KindVideo, KindAudio}
	for _, kind := range uploadable {
		if !kind.Uploadable() {
			t.Fatalf("expected %s to be uploadable", kind)
		}
	}
	for _, kind := range []AttachmentKind{KindText, KindOther, AttachmentKind("sticker")} {
		if kind.Uploadable() {
			t.Fatalf("expected %s not to be uploadable", kind)
		}
	}
}

func TestCreateAndGetUploadRecord(t *testing.T) {
	t.Helper()
	database := newTestDatabase(t)
	ctx := context.Background()

	record := UploadRecord{
		UploadID:    "upload-1",
		MessageID:   "msg-1",
		Kind:        KindDocument,
		FileName:    "report.pdf",
		ContentType: "application/pdf",
		SizeBytes:   42,
		DriveFileID: "drive-file-1",
		ShareLink:   "https://drive.google.com/file/d/drive-file-1/view?usp=sharing",
		Status:      StatusUploaded,
	}
	if err := CreateUploadRecord(ctx, database, &record); err != nil {
		t.Fatalf("create error: %v", err)
	}

	fetched, err := GetUploadRecordByID(ctx, database, "upload-1")
	if err != nil {
		t.Fatalf("get error: %v", err)
	}
	if fetched.FileName != "report.pdf" || fetched.Status != StatusUploaded {
		t.Fatalf("unexpected record %+v", fetched)
	}

	if _, err := GetUploadRecordByID(ctx, database, "missing"); !errors.Is(err, ErrUploadRecordNotFound) {
		t.Fatalf("expected ErrUploadRecordNotFound, got %v", err)
	}
}

func TestListUploadRecordsFiltersByStatus(t *testing.T) {
	t.Helper()
	database := newTestDatabase(t)
	ctx := context.Background()

	records := []UploadRecord{
		{UploadID: "u1", Kind: KindImage, FileName: "image_1.jpg", Status: StatusUploaded},
		{UploadID: "u2", Kind: KindVideo, FileName: "video_1.mp4", Status: StatusFailed, Detail: "drive unavailable"},
		{UploadID: "u3", Kind: KindAudio, FileName: "audio_1.mp3", Status: StatusUploaded},
	}
	for index := range records {
		if err := CreateUploadRecord(ctx, database, &records[index]); err != nil {
			t.Fatalf("create error: %v", err)
		}
	}

	failed, err := ListUploadRecords(ctx, database, UploadListFilters{Statuses: []string{StatusFailed}})
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	if len(failed) != 1 || failed[0].UploadID != "u2" {
		t.Fatalf("unexpected filtered records %+v", failed)
	}

	all, err := ListUploadRecords(ctx, database, UploadListFilters{})
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 records, got %d", len(all))
	}
}

func TestNewUploadRecordResponseOmitsDetail(t *testing.T) {
	t.Helper()
	record := UploadRecord{
		UploadID: "u1",
		Kind:     KindDocument,
		FileName: "x.csv",
		Status:   StatusFailed,
		Detail:   "provider error detail",
	}
	response := NewUploadRecordResponse(record)
	if response.UploadID != "u1" || response.Status != StatusFailed {
		t.Fatalf("unexpected response %+v", response)
	}
}
