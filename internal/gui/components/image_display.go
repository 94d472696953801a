package components

import (
	"image"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
	"github.com/nfnt/resize"
)

const (
	ImageAreaWidth  = 640
	ImageAreaHeight = 480
)

// ImageDisplay shows the original and the latest result next to each other.
// Display copies are downscaled to fit the pane; the full buffers stay with
// the session.
type ImageDisplay struct {
	container     *fyne.Container
	originalImage *canvas.Image
	previewImage  *canvas.Image
	previewLabel  *widget.Label
}

func NewImageDisplay() *ImageDisplay {
	originalImage := canvas.NewImageFromImage(nil)
	originalImage.FillMode = canvas.ImageFillContain
	originalImage.SetMinSize(fyne.NewSize(ImageAreaWidth, ImageAreaHeight))

	previewImage := canvas.NewImageFromImage(nil)
	previewImage.FillMode = canvas.ImageFillContain
	previewImage.SetMinSize(fyne.NewSize(ImageAreaWidth, ImageAreaHeight))

	previewLabel := widget.NewLabelWithStyle("Result", fyne.TextAlignLeading, fyne.TextStyle{Bold: true})

	originalContainer := container.NewVBox(
		widget.NewLabelWithStyle("Original", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		originalImage,
	)
	previewContainer := container.NewVBox(previewLabel, previewImage)

	return &ImageDisplay{
		container:     container.New(layout.NewHBoxLayout(), originalContainer, previewContainer),
		originalImage: originalImage,
		previewImage:  previewImage,
		previewLabel:  previewLabel,
	}
}

func (id *ImageDisplay) GetContainer() *fyne.Container {
	return id.container
}

func (id *ImageDisplay) SetOriginalImage(img image.Image) {
	if img == nil {
		return
	}
	id.originalImage.Image = FitForDisplay(img, ImageAreaWidth, ImageAreaHeight)
	id.originalImage.Refresh()
}

// SetPreviewImage shows img under title.
func (id *ImageDisplay) SetPreviewImage(title string, img image.Image) {
	if img == nil {
		return
	}
	id.previewLabel.SetText(title)
	id.previewImage.Image = FitForDisplay(img, ImageAreaWidth, ImageAreaHeight)
	id.previewImage.Refresh()
}

// ClearPreview empties the result pane.
func (id *ImageDisplay) ClearPreview() {
	id.previewLabel.SetText("Result")
	id.previewImage.Image = nil
	id.previewImage.Refresh()
}

// FitForDisplay downscales img to fit maxWidth x maxHeight keeping its aspect
// ratio. Images that already fit are returned as is.
func FitForDisplay(img image.Image, maxWidth, maxHeight uint) image.Image {
	b := img.Bounds()
	if uint(b.Dx()) <= maxWidth && uint(b.Dy()) <= maxHeight {
		return img
	}
	return resize.Thumbnail(maxWidth, maxHeight, img, resize.Lanczos3)
}
