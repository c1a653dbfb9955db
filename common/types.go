// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

// TextureStagingData holds RGBA pixel data for a texture pending GPU upload.
// Materials carry it until the renderer creates (or replaces) the GPU texture.
type TextureStagingData struct {
	// Pixels is the byte slice representing the actual pixel data for the texture. It should be in RGBA format, with 4 bytes per pixel.
	Pixels []byte
	// Width is the width of the texture in pixels.
	Width uint32
	// Height is the height of the texture in pixels.
	Height uint32
	// Source identifies where the pixels came from (an asset URL or "default"), used for logging and change detection.
	Source string
}

// Valid reports whether the staging data describes a non-empty RGBA image whose pixel buffer
// matches its dimensions.
//
// Returns:
//   - bool: true if the data can be uploaded
func (t *TextureStagingData) Valid() bool {
	if t == nil || t.Width == 0 || t.Height == 0 {
		return false
	}
	return len(t.Pixels) == int(t.Width)*int(t.Height)*4
}

// WhiteTexture returns a 1x1 opaque white texture, used as the neutral map for untextured materials.
//
// Returns:
//   - TextureStagingData: the staging data for a single white texel
func WhiteTexture() TextureStagingData {
	return TextureStagingData{
		Pixels: []byte{255, 255, 255, 255},
		Width:  1,
		Height: 1,
		Source: "default",
	}
}

// Viewport describes the drawable area reported by the windowing system.
type Viewport struct {
	// Width is the logical width in window units.
	Width int
	// Height is the logical height in window units.
	Height int
	// DevicePixelRatio is the ratio of physical pixels to logical units (1 on standard displays, 2 on most high-density ones).
	DevicePixelRatio float32
}
