package core

import "strings"

// Layer is the stacking layer of a layer-shell surface.
type Layer uint8

const (
	LayerBackground Layer = iota
	LayerBottom
	LayerTop
	LayerOverlay
)

var layerNames = [...]string{"background", "bottom", "top", "overlay"}

func (l Layer) String() string {
	if int(l) < len(layerNames) {
		return layerNames[l]
	}
	return "top"
}

// ParseLayer parses a layer name, falling back to LayerTop.
func ParseLayer(s string) Layer {
	for i, name := range layerNames {
		if strings.EqualFold(s, name) {
			return Layer(i)
		}
	}
	return LayerTop
}

// Anchor is a set of edges a layer surface is anchored to.
type Anchor uint8

const (
	AnchorTop Anchor = 1 << iota
	AnchorBottom
	AnchorLeft
	AnchorRight
)

// ParseAnchor parses a "top|left" style list. Unknown names are ignored.
func ParseAnchor(s string) Anchor {
	var a Anchor
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == '|' || r == ',' || r == ' ' }) {
		switch strings.ToLower(part) {
		case "top":
			a |= AnchorTop
		case "bottom":
			a |= AnchorBottom
		case "left":
			a |= AnchorLeft
		case "right":
			a |= AnchorRight
		}
	}
	return a
}

// KeyboardInteractivity controls whether a layer surface takes keyboard focus.
type KeyboardInteractivity uint8

const (
	KeyboardNone KeyboardInteractivity = iota
	KeyboardExclusive
	KeyboardOnDemand
)

// ParseKeyboardInteractivity parses "none", "exclusive" or "on-demand".
func ParseKeyboardInteractivity(s string) KeyboardInteractivity {
	switch strings.ToLower(strings.ReplaceAll(s, "_", "-")) {
	case "none":
		return KeyboardNone
	case "exclusive":
		return KeyboardExclusive
	default:
		return KeyboardOnDemand
	}
}

// Margin is the distance from the anchored edges, in surface-local units.
type Margin struct {
	Top, Right, Bottom, Left int32
}

// LayerSettings describes a layer-shell window to open.
type LayerSettings struct {
	Layer                 Layer
	Namespace             string
	Size                  PhysicalSize
	Anchor                Anchor
	ExclusiveZone         int32
	Margin                Margin
	KeyboardInteractivity KeyboardInteractivity
	// Output names the output to place the surface on. Empty lets the
	// compositor choose.
	Output string
}

// DefaultLayerSettings returns the settings used for the initial window.
func DefaultLayerSettings() LayerSettings {
	return LayerSettings{
		Layer:                 LayerTop,
		Size:                  PhysicalSize{Width: 400, Height: 400},
		Anchor:                AnchorTop,
		Margin:                Margin{Top: 200},
		KeyboardInteractivity: KeyboardOnDemand,
	}
}
