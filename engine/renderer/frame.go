package renderer

import (
	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/camera"
	"github.com/Carmen-Shannon/oxy-viewer/engine/scene"
)

// Frame describes one frame to submit to a Renderer. Passes of a Composer fill it in order;
// RenderFrame builds one directly.
type Frame struct {
	// Scene is the scene to draw. A frame without a scene only clears.
	Scene scene.Scene

	// Camera is the camera the scene is drawn through.
	Camera camera.Camera

	// Clear is the color the target is cleared to, in the output space of the frame.
	Clear common.Color

	// Exposure is the tone-mapping exposure applied by the output stage, 0 when no output stage ran.
	Exposure float32

	// Samples is the sample count requested for the frame's intermediate target.
	Samples int

	// Passes lists the names of the passes that contributed to the frame, in order.
	Passes []string
}

// RenderInfo holds running statistics about submitted frames.
type RenderInfo struct {
	Frames uint64
	Meshes int
	Nodes  int
}
