package graphics

import (
	"math"

	"github.com/jakebf/layershell/core"
)

// Viewport pairs the physical size of a surface with its scale factor.
type Viewport struct {
	physical core.PhysicalSize
	scale    float64
	logical  core.Size
}

// NewViewport returns the viewport of a physical size at scale. A scale that
// is not positive is treated as 1.
func NewViewport(physical core.PhysicalSize, scale float64) Viewport {
	if scale <= 0 || math.IsNaN(scale) {
		scale = 1
	}
	return Viewport{
		physical: physical,
		scale:    scale,
		logical: core.Size{
			Width:  float32(float64(physical.Width) / scale),
			Height: float32(float64(physical.Height) / scale),
		},
	}
}

// ViewportFromLogical returns the viewport of a logical size at scale.
func ViewportFromLogical(logical core.Size, scale float64) Viewport {
	if scale <= 0 || math.IsNaN(scale) {
		scale = 1
	}
	return NewViewport(core.PhysicalSize{
		Width:  uint32(math.Round(float64(logical.Width) * scale)),
		Height: uint32(math.Round(float64(logical.Height) * scale)),
	}, scale)
}

func (v Viewport) PhysicalSize() core.PhysicalSize { return v.physical }
func (v Viewport) LogicalSize() core.Size          { return v.logical }
func (v Viewport) ScaleFactor() float64            { return v.scale }
