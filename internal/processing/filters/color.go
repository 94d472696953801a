package filters

import (
	"fmt"
	"sync"

	"photo-restorer/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// whiteBalancer is the subset of OpenCV's xphoto balancers we use.
type whiteBalancer interface {
	BalanceWhite(src gocv.Mat, dst *gocv.Mat) error
	Close() error
}

// newWhiteBalancer is set by builds that link OpenCV contrib (tag "contrib").
var newWhiteBalancer func() whiteBalancer

// Capability describes the optional color-correction support of this process.
type Capability struct {
	WhiteBalance bool
	Backend      string
}

var probeCapabilities = sync.OnceValue(func() Capability {
	if newWhiteBalancer == nil {
		return Capability{}
	}

	wb := newWhiteBalancer()
	if wb == nil {
		return Capability{}
	}
	wb.Close()

	return Capability{WhiteBalance: true, Backend: "xphoto.GrayworldWB"}
})

// Capabilities is resolved once per process and read-only afterwards.
func Capabilities() Capability {
	return probeCapabilities()
}

// ColorCorrector applies automatic white balance when the capability is present.
type ColorCorrector struct {
	capability Capability
	factory    func() whiteBalancer
}

func NewColorCorrector(capability Capability) *ColorCorrector {
	return &ColorCorrector{
		capability: capability,
		factory:    newWhiteBalancer,
	}
}

func (c *ColorCorrector) Available() bool {
	return c.capability.WhiteBalance && c.factory != nil
}

// Apply returns a white-balanced copy, or an unchanged copy when white
// balance is unavailable. Unavailability is never an error.
func (c *ColorCorrector) Apply(src *safe.Mat) (*safe.Mat, error) {
	if err := safe.ValidateColorImage(src, "correct color"); err != nil {
		return nil, err
	}

	if !c.Available() {
		return src.Clone()
	}

	wb := c.factory()
	defer wb.Close()

	dst := gocv.NewMat()
	if err := wb.BalanceWhite(src.GetMat(), &dst); err != nil {
		dst.Close()
		return nil, fmt.Errorf("white balance failed: %w", err)
	}

	return safe.Adopt(dst, "color_correct")
}

// CorrectColor uses the process-wide capability.
func CorrectColor(src *safe.Mat) (*safe.Mat, error) {
	return NewColorCorrector(Capabilities()).Apply(src)
}
