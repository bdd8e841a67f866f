package scene

import "sync"

// Mapping describes how a texture is sampled when used by the scene.
type Mapping int

const (
	// MappingUV samples the texture with mesh UV coordinates.
	MappingUV Mapping = iota
	// MappingEquirectangularReflection samples the texture as a latitude/longitude environment for reflections.
	MappingEquirectangularReflection
)

// String returns the mapping's name.
func (m Mapping) String() string {
	switch m {
	case MappingUV:
		return "uv"
	case MappingEquirectangularReflection:
		return "equirectangular-reflection"
	default:
		return "unknown"
	}
}

// TextureFormat identifies the pixel layout of a Texture.
type TextureFormat int

const (
	// FormatRGBA8 is 8 bits per channel, stored in Pixels8.
	FormatRGBA8 TextureFormat = iota
	// FormatRGBA32F is linear float32 per channel, stored in Pixels32. High dynamic range images use this format.
	FormatRGBA32F
)

type texture struct {
	mu       *sync.Mutex
	name     string
	width    int
	height   int
	format   TextureFormat
	pixels8  []uint8
	pixels32 []float32
	mapping  Mapping
}

// Texture is a decoded image together with its sampling mapping.
// Thread-safe for concurrent access. Pixel slices are shared, not copied; callers must not modify them.
type Texture interface {
	// Name returns the texture's name, usually its source location.
	Name() string

	// Size returns the width and height in pixels.
	//
	// Returns:
	//   - w, h: the texture dimensions
	Size() (w, h int)

	// Format returns the pixel layout.
	Format() TextureFormat

	// Pixels8 returns RGBA8 pixel data, or nil for float textures.
	Pixels8() []uint8

	// Pixels32 returns RGBA32F pixel data, or nil for 8-bit textures.
	Pixels32() []float32

	// Mapping returns how the texture is sampled.
	Mapping() Mapping

	// SetMapping sets how the texture is sampled.
	//
	// Parameters:
	//   - m: the new mapping
	SetMapping(m Mapping)
}

var _ Texture = &texture{}

// NewTexture creates a new Texture.
//
// Parameters:
//   - options: variadic list of TextureBuilderOption functions to configure the texture
//
// Returns:
//   - Texture: the newly created texture
func NewTexture(options ...TextureBuilderOption) Texture {
	t := &texture{
		mu: &sync.Mutex{},
	}
	for _, opt := range options {
		opt(t)
	}
	return t
}

func (t *texture) Name() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.name
}

func (t *texture) Size() (int, int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.width, t.height
}

func (t *texture) Format() TextureFormat {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.format
}

func (t *texture) Pixels8() []uint8 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pixels8
}

func (t *texture) Pixels32() []float32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pixels32
}

func (t *texture) Mapping() Mapping {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.mapping
}

func (t *texture) SetMapping(m Mapping) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.mapping = m
}
