package models

import (
	"time"

	"photo-restorer/internal/opencv/safe"
)

// ImageData is a decoded raster together with what the loader learned about it.
type ImageData struct {
	Mat      *safe.Mat
	Width    int
	Height   int
	Channels int
	Format   string
	Source   string
	FileSize int64
	LoadTime time.Time
}

// NewImageData describes mat; the returned value owns mat.
func NewImageData(mat *safe.Mat, format, source string, fileSize int64) *ImageData {
	return &ImageData{
		Mat:      mat,
		Width:    mat.Cols(),
		Height:   mat.Rows(),
		Channels: mat.Channels(),
		Format:   format,
		Source:   source,
		FileSize: fileSize,
		LoadTime: time.Now(),
	}
}

// Release closes the underlying Mat.
func (d *ImageData) Release() {
	if d == nil {
		return
	}
	d.Mat.Close()
}
