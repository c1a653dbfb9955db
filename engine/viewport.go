package engine

import (
	"github.com/Carmen-Shannon/oxy-stage/common"
	"github.com/Carmen-Shannon/oxy-stage/engine/camera"
)

// DefaultMaxPixelRatio caps the drawing buffer density on high-DPI displays.
const DefaultMaxPixelRatio float32 = 2

// ViewportTarget is the part of a renderer that follows the window size.
type ViewportTarget interface {
	SetSize(width, height int)
	SetPixelRatio(ratio float32)
}

// SyncViewport matches the camera aspect and the renderer size to a new viewport.
// Viewports with a non-positive width or height (a minimised window) are ignored.
//
// Parameters:
//   - cam: the camera whose aspect follows the viewport
//   - r: the renderer whose size follows the viewport
//   - vp: the new viewport in window units
//   - maxPixelRatio: upper bound for the renderer pixel ratio; <= 0 uses DefaultMaxPixelRatio
//
// Returns:
//   - bool: false if the viewport was ignored
func SyncViewport(cam camera.Camera, r ViewportTarget, vp common.Viewport, maxPixelRatio float32) bool {
	if vp.Width <= 0 || vp.Height <= 0 {
		return false
	}
	if maxPixelRatio <= 0 {
		maxPixelRatio = DefaultMaxPixelRatio
	}
	ratio := vp.DevicePixelRatio
	if ratio <= 0 {
		ratio = 1
	}

	cam.SetAspect(float32(vp.Width) / float32(vp.Height))
	cam.UpdateProjectionMatrix()
	r.SetSize(vp.Width, vp.Height)
	r.SetPixelRatio(min(ratio, maxPixelRatio))
	return true
}
