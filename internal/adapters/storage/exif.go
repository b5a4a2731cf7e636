package storage

import (
	"bytes"
	"time"

	"github.com/rwcarlsen/goexif/exif"
)

// ExtractCaptureTime reads the EXIF DateTimeOriginal from image bytes.
// Returns nil when the image has no usable EXIF data; evidence photos from
// messaging apps often come stripped.
func ExtractCaptureTime(data []byte) *time.Time {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return nil
	}

	taken, err := x.DateTime()
	if err != nil {
		return nil
	}
	return &taken
}
