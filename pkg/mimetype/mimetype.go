// Package mimetype maps file-name extensions to content types with a fixed
// lookup table, so upload metadata stays stable regardless of the host's
// mime.types configuration.
package mimetype

import (
	"path/filepath"
	"strings"
)

// DefaultContentType is returned for unknown or missing extensions.
const DefaultContentType = "application/octet-stream"

var contentTypesByExtension = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".svg":  "image/svg+xml",
	".tiff": "image/tiff",
	".webp": "image/webp",
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".xls":  "application/vnd.ms-excel",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".ppt":  "application/vnd.ms-powerpoint",
	".pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	".txt":  "text/plain",
	".csv":  "text/csv",
	".mp4":  "video/mp4",
	".hevc": "video/mp4",
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".zip":  "application/zip",
	".rar":  "application/x-rar-compressed",
}

// Resolve returns the content type for the given file name. The extension is
// matched case-insensitively; unrecognized and extension-less names resolve to
// DefaultContentType.
func Resolve(fileName string) string {
	extension := strings.ToLower(filepath.Ext(fileName))
	if contentType, known := contentTypesByExtension[extension]; known {
		return contentType
	}
	return DefaultContentType
}
