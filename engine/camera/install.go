package camera

import (
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-viewer/common"
)

var (
	installOnce sync.Once
	installed   atomic.Bool
)

// Install registers the orbit-controls capability for the whole process. It must run before NewOrbitControls or
// NewCameraFrame are called; the viewer calls it during initialization. Repeated calls are no-ops.
func Install() {
	installOnce.Do(func() {
		installed.Store(true)
		common.Logger().Debug("orbit controls installed")
	})
}

// Installed reports whether Install has run.
func Installed() bool {
	return installed.Load()
}
