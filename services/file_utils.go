package services

import (
	"path/filepath"
	"strings"
)

var extensionTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".webp": "image/webp",
	".svg":  "image/svg+xml",
	".pdf":  "application/pdf",
	".txt":  "text/plain",
	".mp4":  "video/mp4",
	".mp3":  "audio/mpeg",
	".zip":  "application/zip",
}

// resolveContentType prefers the declared type, then the extension, and
// finally "image" for unknown uploads.
func resolveContentType(declared, fileName string) string {
	declared = strings.TrimSpace(declared)
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	if mt, ok := extensionTypes[strings.ToLower(filepath.Ext(fileName))]; ok {
		return mt
	}
	if declared != "" {
		return declared
	}
	return "image"
}
