// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// TextureStagingData holds RGBA pixel data for a texture binding pending GPU upload.
// Layered textures (cube maps, 2D arrays) store their layers back to back in Pixels.
type TextureStagingData struct {
	// Pixels is the byte slice representing the actual pixel data for the texture. It should be in RGBA format, with 4 bytes per pixel.
	Pixels []byte
	// Width is the width of the texture in pixels.
	Width uint32
	// Height is the height of the texture in pixels.
	Height uint32
	// Layers is the number of array layers held in Pixels. Zero is treated as one.
	Layers uint32
}

// LayerCount returns the number of layers described by the staging data, never less than one.
//
// Returns:
//   - uint32: the layer count
func (t TextureStagingData) LayerCount() uint32 {
	return max(t.Layers, 1)
}

// Validate checks that the pixel buffer holds exactly Width*Height*4 bytes per layer.
//
// Returns:
//   - error: an error describing the mismatch, or nil
func (t TextureStagingData) Validate() error {
	if t.Width == 0 || t.Height == 0 {
		return fmt.Errorf("texture extent %dx%d is empty", t.Width, t.Height)
	}
	want := uint64(t.Width) * uint64(t.Height) * 4 * uint64(t.LayerCount())
	if uint64(len(t.Pixels)) != want {
		return fmt.Errorf("texture %dx%dx%d expects %d bytes of RGBA data, got %d", t.Width, t.Height, t.LayerCount(), want, len(t.Pixels))
	}
	return nil
}

// DecodeImage decodes an encoded image from either raw bytes or a file on disk.
// PNG, JPEG, BMP, TIFF and WebP are supported.
//
// Parameters:
//   - data: the encoded image bytes, takes precedence over path when non-empty
//   - path: the file path to read when data is empty
//
// Returns:
//   - image.Image: the decoded image
//   - error: error if decoding fails
func DecodeImage(data []byte, path string) (image.Image, error) {
	if len(data) > 0 {
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to decode embedded image: %w", err)
		}
		return img, nil
	}
	if path == "" {
		return nil, fmt.Errorf("image has neither data nor path")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image file %s: %w", path, err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image file %s: %w", path, err)
	}
	return img, nil
}

// ToRGBA converts any image into tightly packed RGBA pixels.
//
// Parameters:
//   - img: the source image
//
// Returns:
//   - []byte: raw RGBA pixel data (4 bytes per pixel, row-major order)
//   - uint32: width in pixels
//   - uint32: height in pixels
func ToRGBA(img image.Image) ([]byte, uint32, uint32) {
	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	return rgba.Pix, uint32(bounds.Dx()), uint32(bounds.Dy())
}
