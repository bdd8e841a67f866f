// Package surface holds the display elements the viewer renders into, independent of any platform window.
package surface

import "sync"

// Container is a display element the viewer renders into. Its size is sampled once per tick.
type Container interface {
	// Size returns the drawable size in pixels.
	//
	// Returns:
	//   - int: width in pixels
	//   - int: height in pixels
	Size() (width, height int)
}

type fixedContainer struct {
	mu     *sync.Mutex
	width  int
	height int
}

// FixedContainer is a Container without a platform window, sized explicitly. It serves offscreen
// rendering and tests.
type FixedContainer interface {
	Container

	// SetSize changes the reported size.
	//
	// Parameters:
	//   - width: width in pixels
	//   - height: height in pixels
	SetSize(width, height int)
}

var _ FixedContainer = &fixedContainer{}

// NewFixedContainer creates a FixedContainer reporting the given size.
//
// Parameters:
//   - width: width in pixels
//   - height: height in pixels
//
// Returns:
//   - FixedContainer: the container
func NewFixedContainer(width, height int) FixedContainer {
	return &fixedContainer{mu: &sync.Mutex{}, width: width, height: height}
}

func (c *fixedContainer) Size() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.width, c.height
}

func (c *fixedContainer) SetSize(width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.width, c.height = width, height
}
