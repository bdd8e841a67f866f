package decoder

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
)

var (
	errNotRGBE           = errors.New("not a Radiance HDR image")
	errUnsupportedFormat = errors.New("unsupported Radiance HDR pixel format")
	errBadScanline       = errors.New("malformed Radiance HDR scanline")
)

// rgbeMaxDimension is the largest width or height accepted, the limit of the run-length scanline header.
const rgbeMaxDimension = 0x7fff

// rgbeImage holds a decoded Radiance HDR image as linear float RGBA, rows top to bottom.
type rgbeImage struct {
	width, height int
	pix           []float32
}

// isRGBE reports whether data starts with the Radiance signature.
func isRGBE(data []byte) bool {
	return bytes.HasPrefix(data, []byte("#?"))
}

// decodeRGBE decodes a Radiance .hdr image in the standard "-Y height +X width" orientation. Scanlines may be
// flat or new-style run-length encoded.
func decodeRGBE(data []byte) (*rgbeImage, error) {
	src := bytes.NewReader(data)
	r := bufio.NewReader(src)

	magic, err := readHeaderLine(r)
	if err != nil || !strings.HasPrefix(magic, "#?") {
		return nil, errNotRGBE
	}

	for {
		line, err := readHeaderLine(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read header: %w", err)
		}
		if line == "" {
			break
		}
		if format, ok := strings.CutPrefix(line, "FORMAT="); ok && format != "32-bit_rle_rgbe" {
			return nil, fmt.Errorf("%w: %s", errUnsupportedFormat, format)
		}
	}

	resolution, err := readHeaderLine(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read resolution: %w", err)
	}
	var width, height int
	if _, err := fmt.Sscanf(resolution, "-Y %d +X %d", &height, &width); err != nil {
		return nil, fmt.Errorf("%w: resolution %q", errUnsupportedFormat, resolution)
	}
	if width <= 0 || height <= 0 || width > rgbeMaxDimension || height > rgbeMaxDimension {
		return nil, fmt.Errorf("%w: resolution %q", errUnsupportedFormat, resolution)
	}
	if remaining := r.Buffered() + src.Len(); height*minScanlineSize(width) > remaining {
		return nil, fmt.Errorf("%w: resolution %q needs more than the %d bytes left", errUnsupportedFormat, resolution, remaining)
	}

	img := &rgbeImage{width: width, height: height, pix: make([]float32, width*height*4)}
	scanline := make([]byte, width*4)
	for y := 0; y < height; y++ {
		if err := readScanline(r, scanline, width); err != nil {
			return nil, fmt.Errorf("scanline %d: %w", y, err)
		}
		row := img.pix[y*width*4 : (y+1)*width*4]
		for x := 0; x < width; x++ {
			rgbeToFloat(scanline[x*4:x*4+4], row[x*4:x*4+4])
		}
	}
	return img, nil
}

// minScanlineSize returns the fewest bytes a scanline of width pixels can be encoded in.
func minScanlineSize(width int) int {
	if width < 8 || width > rgbeMaxDimension {
		return width * 4
	}
	// run-length header plus, per channel, one two-byte run for every 127 pixels
	return 4 + 4*2*((width+126)/127)
}

func readHeaderLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// readScanline reads one scanline of width pixels into dst as interleaved RGBE bytes.
func readScanline(r *bufio.Reader, dst []byte, width int) error {
	head, err := r.Peek(4)
	if err != nil {
		return fmt.Errorf("%w: %w", errBadScanline, err)
	}

	// new-style RLE: 2 2 followed by the big-endian width, then each channel run-length encoded in turn
	if width < 8 || width > rgbeMaxDimension || head[0] != 2 || head[1] != 2 || head[2]&0x80 != 0 {
		if _, err := io.ReadFull(r, dst); err != nil {
			return fmt.Errorf("%w: %w", errBadScanline, err)
		}
		return nil
	}
	if int(head[2])<<8|int(head[3]) != width {
		return fmt.Errorf("%w: encoded width %d, want %d", errBadScanline, int(head[2])<<8|int(head[3]), width)
	}
	if _, err := r.Discard(4); err != nil {
		return err
	}

	for channel := 0; channel < 4; channel++ {
		for x := 0; x < width; {
			count, err := r.ReadByte()
			if err != nil {
				return fmt.Errorf("%w: %w", errBadScanline, err)
			}
			if count > 128 {
				n := int(count) - 128
				if x+n > width {
					return errBadScanline
				}
				v, err := r.ReadByte()
				if err != nil {
					return fmt.Errorf("%w: %w", errBadScanline, err)
				}
				for ; n > 0; n-- {
					dst[x*4+channel] = v
					x++
				}
				continue
			}
			n := int(count)
			if n == 0 || x+n > width {
				return errBadScanline
			}
			for ; n > 0; n-- {
				v, err := r.ReadByte()
				if err != nil {
					return fmt.Errorf("%w: %w", errBadScanline, err)
				}
				dst[x*4+channel] = v
				x++
			}
		}
	}
	return nil
}

// rgbeToFloat converts one shared-exponent pixel to linear float RGBA with alpha 1.
func rgbeToFloat(src []byte, dst []float32) {
	if src[3] == 0 {
		dst[0], dst[1], dst[2] = 0, 0, 0
	} else {
		scale := float32(math.Ldexp(1, int(src[3])-128) / 255)
		dst[0] = float32(src[0]) * scale
		dst[1] = float32(src[1]) * scale
		dst[2] = float32(src[2]) * scale
	}
	dst[3] = 1
}
