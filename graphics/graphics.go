// Package graphics is the boundary to the rendering backend. The shell only
// creates surfaces and renderers through a Compositor and asks it to present;
// drawing primitives are the renderer's business.
package graphics

import (
	"context"
	"errors"
	"time"

	"github.com/jakebf/layershell/core"
)

var (
	// ErrOutOfMemory is fatal: the shell terminates when present returns it.
	ErrOutOfMemory = errors.New("graphics: out of memory")
	ErrSurfaceLost = errors.New("graphics: surface lost")
	// ErrSurfaceOutdated means the surface must be reconfigured before use.
	ErrSurfaceOutdated = errors.New("graphics: surface outdated")
	ErrSurfaceTimeout  = errors.New("graphics: timed out acquiring a frame")
)

// Antialiasing selects the multisampling level of a renderer.
type Antialiasing uint8

const (
	AntialiasingNone Antialiasing = iota
	AntialiasingMSAAx2
	AntialiasingMSAAx4
	AntialiasingMSAAx8
)

// ParseAntialiasing maps "none", "msaa2", "msaa4" and "msaa8".
func ParseAntialiasing(s string) Antialiasing {
	switch s {
	case "msaa2", "msaax2":
		return AntialiasingMSAAx2
	case "msaa4", "msaax4":
		return AntialiasingMSAAx4
	case "msaa8", "msaax8":
		return AntialiasingMSAAx8
	}
	return AntialiasingNone
}

// Settings configure a compositor.
type Settings struct {
	// Fonts are loaded once the compositor exists.
	Fonts           [][]byte
	DefaultTextSize float32
	Antialiasing    Antialiasing
	// CompositorTimeout bounds compositor construction, the one blocking
	// wait on the reactor goroutine.
	CompositorTimeout time.Duration
}

// DefaultSettings returns the settings used when none are given.
func DefaultSettings() Settings {
	return Settings{
		DefaultTextSize:   16,
		CompositorTimeout: 5 * time.Second,
	}
}

// Information describes the compositor for system information queries.
type Information struct {
	Adapter string
	Backend string
}

// Surface is a backend-owned render target.
type Surface any

// RawWindow is the native handle of the first window, handed to a Factory.
type RawWindow any

// Renderer records drawing commands for one surface.
type Renderer interface {
	FillQuad(bounds core.Rectangle, background core.Color)
	FillText(text Text)
	// WithLayer draws f clipped to bounds, above what was drawn before.
	WithLayer(bounds core.Rectangle, f func())
	MeasureText(content string, size float32) core.Size
	DefaultTextSize() float32
}

// Text is a run of text to paint.
type Text struct {
	Content   string
	Bounds    core.Rectangle
	Color     core.Color
	Size      float32
	Underline bool
}

// Compositor creates surfaces and renderers and presents frames.
type Compositor interface {
	CreateSurface(window RawWindow, width, height uint32) (Surface, error)
	CreateRenderer() Renderer
	ConfigureSurface(surface Surface, width, height uint32)
	Present(renderer Renderer, surface Surface, viewport Viewport, background core.Color) error
	LoadFont(font []byte) error
	FetchInformation() Information
}

// Factory builds a compositor. It is called once, with the first window.
type Factory func(ctx context.Context, settings Settings, window RawWindow) (Compositor, error)
