package texpatch

import "fmt"

// NamingConventionError is returned when an image file name cannot be split
// into a logical name and an optional frame index.
type NamingConventionError struct {
	Path string
}

func (e *NamingConventionError) Error() string {
	return fmt.Sprintf("%s doesn't follow the graphics naming convention <name>[_<frame>].png", e.Path)
}

// OversizedTextureError is returned when a texture is larger than the configured page
// and therefore cannot be placed on any atlas page.
type OversizedTextureError struct {
	Name          string
	Frame         int
	Width, Height int
	PageW, PageH  int
}

func (e *OversizedTextureError) Error() string {
	return fmt.Sprintf("texture %s (frame %d) has size %dx%d and does not fit a %dx%d page",
		e.Name, e.Frame, e.Width, e.Height, e.PageW, e.PageH)
}

// UnknownClassificationError guards the switch statements over Classification.
type UnknownClassificationError struct {
	Class Classification
}

func (e *UnknownClassificationError) Error() string {
	return fmt.Sprintf("unknown graphics classification: %d", int(e.Class))
}
