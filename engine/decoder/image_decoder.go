package decoder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"log/slog"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/scene"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"
)

// ErrUnknownImageFormat is returned when neither the content nor the extension identifies a supported format.
var ErrUnknownImageFormat = errors.New("decoder: unknown image format")

// imageFormat pairs a format's magic prefix with its decoder. A '?' in magic matches any byte.
type imageFormat struct {
	name   string
	magic  string
	decode func(io.Reader) (image.Image, error)
}

// imageFormats are sniffed in order. TGA has no signature and is chosen by extension only.
var imageFormats = []imageFormat{
	{"png", "\x89PNG\r\n\x1a\n", png.Decode},
	{"jpeg", "\xff\xd8", jpeg.Decode},
	{"gif", "GIF8", gif.Decode},
	{"bmp", "BM", bmp.Decode},
	{"tiff", "II*\x00", tiff.Decode},
	{"tiff", "MM\x00*", tiff.Decode},
	{"webp", "RIFF????WEBP", webp.Decode},
}

func sniffImageFormat(data []byte, ext string) (imageFormat, bool) {
	for _, f := range imageFormats {
		if matchMagic(data, f.magic) {
			return f, true
		}
	}
	if ext == ".tga" {
		return imageFormat{name: "tga", decode: tga.Decode}, true
	}
	return imageFormat{}, false
}

func matchMagic(data []byte, magic string) bool {
	if len(data) < len(magic) {
		return false
	}
	for i := 0; i < len(magic); i++ {
		if magic[i] != '?' && magic[i] != data[i] {
			return false
		}
	}
	return true
}

type imageDecoder struct {
	fetcher Fetcher
	logger  *slog.Logger
}

// ImageDecoder decodes images into textures. Radiance HDR (.hdr, .pic) becomes linear float RGBA; PNG, JPEG,
// GIF, BMP, TIFF, WebP and TGA become 8-bit non-premultiplied RGBA. Rows run top to bottom.
type ImageDecoder interface {
	// DecodeImage fetches and decodes the image at location.
	//
	// Parameters:
	//   - ctx: cancels fetching the image
	//   - location: URL or path of the image
	//
	// Returns:
	//   - scene.Texture: the decoded texture with UV mapping, named after the file
	//   - error: error if fetching or decoding fails
	DecodeImage(ctx context.Context, location string) (scene.Texture, error)
}

var _ ImageDecoder = &imageDecoder{}

// NewImageDecoder creates an ImageDecoder. Without WithImageFetcher it reads through NewFetcher().
//
// Parameters:
//   - options: functional options to configure the decoder
//
// Returns:
//   - ImageDecoder: the newly created decoder
func NewImageDecoder(options ...ImageDecoderBuilderOption) ImageDecoder {
	d := &imageDecoder{
		logger: common.Logger(),
	}
	for _, option := range options {
		option(d)
	}
	if d.fetcher == nil {
		d.fetcher = NewFetcher(WithFetcherLogger(d.logger))
	}
	return d
}

func (d *imageDecoder) DecodeImage(ctx context.Context, location string) (scene.Texture, error) {
	data, err := d.fetcher.Fetch(ctx, location)
	if err != nil {
		return nil, err
	}

	name := baseName(location)
	ext := extension(location)

	if ext == ".hdr" || ext == ".pic" || isRGBE(data) {
		img, err := decodeRGBE(data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", location, err)
		}
		d.logger.Debug("decoded HDR image",
			slog.String("location", location),
			slog.Int("width", img.width),
			slog.Int("height", img.height),
		)
		return scene.NewTexture(
			scene.WithTextureName(name),
			scene.WithRGBA32F(img.width, img.height, img.pix),
		), nil
	}

	format, ok := sniffImageFormat(data, ext)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownImageFormat, location)
	}
	img, err := format.decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", location, err)
	}

	nrgba := toNRGBA(img)
	b := nrgba.Bounds()
	d.logger.Debug("decoded image",
		slog.String("location", location),
		slog.String("format", format.name),
		slog.Int("width", b.Dx()),
		slog.Int("height", b.Dy()),
	)
	return scene.NewTexture(
		scene.WithTextureName(name),
		scene.WithRGBA8(b.Dx(), b.Dy(), nrgba.Pix),
	), nil
}

// toNRGBA returns img as a tightly packed *image.NRGBA anchored at the origin.
func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) && n.Stride == n.Rect.Dx()*4 {
		return n
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}
