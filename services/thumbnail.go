package services

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/disintegration/imaging"
)

const thumbFolder = "thumbs"

type thumbnailOptions struct {
	Width   int
	Height  int
	Quality int
}

func isImageContentType(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "image/")
}

// generateThumbnail fits the image into the configured box and re-encodes it as JPEG.
func generateThumbnail(data []byte, opts thumbnailOptions) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	thumb := imaging.Fit(img, opts.Width, opts.Height, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(opts.Quality)); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

func thumbnailName(objectName string) string {
	base := objectName
	if i := strings.LastIndex(base, "."); i > 0 {
		base = base[:i]
	}
	return "thumb-" + base + ".jpg"
}
