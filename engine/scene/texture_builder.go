package scene

// TextureBuilderOption is a functional option for configuring a Texture.
type TextureBuilderOption func(t *texture)

// WithTextureName sets the texture's name.
func WithTextureName(name string) TextureBuilderOption {
	return func(t *texture) {
		t.name = name
	}
}

// WithRGBA8 sets 8-bit RGBA pixel data. len(pix) must be w*h*4.
func WithRGBA8(w, h int, pix []uint8) TextureBuilderOption {
	return func(t *texture) {
		t.width, t.height = w, h
		t.format = FormatRGBA8
		t.pixels8 = pix
		t.pixels32 = nil
	}
}

// WithRGBA32F sets linear float RGBA pixel data. len(pix) must be w*h*4.
func WithRGBA32F(w, h int, pix []float32) TextureBuilderOption {
	return func(t *texture) {
		t.width, t.height = w, h
		t.format = FormatRGBA32F
		t.pixels32 = pix
		t.pixels8 = nil
	}
}

// WithMapping sets the texture's initial mapping. Defaults to MappingUV.
func WithMapping(m Mapping) TextureBuilderOption {
	return func(t *texture) {
		t.mapping = m
	}
}
