package writable

import (
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/Carmen-Shannon/oxy-bind/common"
	"github.com/Carmen-Shannon/oxy-bind/engine/reflection"
	"github.com/Carmen-Shannon/oxy-bind/engine/reflection/layout"
	"github.com/Carmen-Shannon/oxy-bind/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-bind/engine/renderer/binding_resources"
)

// Texture uploads RGBA8 pixels into the texture bound at the cursor's coordinate. The texture
// and its view are created on the first write and replaced whenever the extent changes; every
// write uploads the whole image.
type Texture struct {
	common.TextureStagingData
}

// NewTexture2D converts an image into a single-layer texture value.
//
// Parameters:
//   - img: the source image
//
// Returns:
//   - Texture: the texture value
func NewTexture2D(img image.Image) Texture {
	pixels, w, h := common.ToRGBA(img)
	return Texture{common.TextureStagingData{Pixels: pixels, Width: w, Height: h, Layers: 1}}
}

// LoadTexture2D decodes an image file into a single-layer texture value.
//
// Parameters:
//   - path: the image file
//
// Returns:
//   - Texture: the texture value
//   - error: the decode error
func LoadTexture2D(path string) (Texture, error) {
	img, err := common.DecodeImage(nil, path)
	if err != nil {
		return Texture{}, err
	}
	return NewTexture2D(img), nil
}

// NewCubeTexture packs six faces into a cube texture value, in +X, -X, +Y, -Y, +Z, -Z order.
// Every face is resized to the edge length of the first face.
//
// Parameters:
//   - faces: the six face images
//
// Returns:
//   - Texture: the six-layer texture value
func NewCubeTexture(faces [6]image.Image) Texture {
	edge := faces[0].Bounds().Dx()
	var pixels []byte
	for _, face := range faces {
		if b := face.Bounds(); b.Dx() != edge || b.Dy() != edge {
			face = imaging.Resize(face, edge, edge, imaging.Lanczos)
		}
		p, _, _ := common.ToRGBA(face)
		pixels = append(pixels, p...)
	}
	return Texture{common.TextureStagingData{Pixels: pixels, Width: uint32(edge), Height: uint32(edge), Layers: 6}}
}

// LoadCubeTexture decodes six face files into a cube texture value.
//
// Parameters:
//   - paths: the face files in +X, -X, +Y, -Y, +Z, -Z order
//
// Returns:
//   - Texture: the six-layer texture value
//   - error: the first decode error
func LoadCubeTexture(paths [6]string) (Texture, error) {
	var faces [6]image.Image
	for i, p := range paths {
		img, err := common.DecodeImage(nil, p)
		if err != nil {
			return Texture{}, err
		}
		faces[i] = img
	}
	return NewCubeTexture(faces), nil
}

func (t Texture) WriteAt(c reflection.Cursor, ctx *UploadContext) error {
	n := c.Node()
	if n.Kind() != layout.KindResource || !n.Shape().IsTexture() {
		return fmt.Errorf("%w: texture written at %q, a %s %s", ErrTypeMismatch, c.Path(), n.Kind(), n.Shape())
	}
	if err := t.Validate(); err != nil {
		return fmt.Errorf("writing %q: %w", c.Path(), err)
	}
	dim := n.Shape().ViewDimension()
	if err := checkLayers(dim, t.LayerCount()); err != nil {
		return fmt.Errorf("%w: %q: %w", ErrTypeMismatch, c.Path(), err)
	}

	off := c.Offset()
	extent := backend.Extent{Width: t.Width, Height: t.Height, Layers: t.LayerCount()}
	tex, err := ctx.Resources.Texture(off.Set, off.Slot)
	switch {
	case errors.Is(err, binding_resources.ErrMissingResource):
		tex, err = createTexture(c, ctx, extent, dim)
	case err != nil:
	case tex.Extent() != extent:
		ctx.Stats.CountReallocation()
		tex, err = createTexture(c, ctx, extent, dim)
	}
	if err != nil {
		return err
	}

	if err := ctx.Device.WriteTexture(tex, t.TextureStagingData); err != nil {
		return fmt.Errorf("writing %q: %w", c.Path(), err)
	}
	ctx.Stats.CountWrite(len(t.Pixels))
	return nil
}

func createTexture(c reflection.Cursor, ctx *UploadContext, extent backend.Extent, dim layout.ViewDimension) (backend.Texture, error) {
	tex, err := ctx.Device.CreateTexture(backend.TextureDescriptor{
		Label:     resourceLabel(ctx, c),
		Extent:    extent,
		Dimension: dim,
	})
	if err != nil {
		return nil, fmt.Errorf("allocating %q: %w", c.Path(), err)
	}
	view, err := ctx.Device.CreateTextureView(tex, dim)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("allocating %q: %w", c.Path(), err)
	}
	off := c.Offset()
	// The old view goes before the texture it references.
	ctx.Resources.SetTextureView(off.Set, off.Slot, view)
	ctx.Resources.SetTexture(off.Set, off.Slot, tex)
	return tex, nil
}

func checkLayers(dim layout.ViewDimension, layers uint32) error {
	switch dim {
	case layout.ViewDimension1D, layout.ViewDimension2D, layout.ViewDimensionCube:
		if layers != dim.Layers() {
			return fmt.Errorf("a %s texture needs %d layers, got %d", dim, dim.Layers(), layers)
		}
	case layout.ViewDimensionCubeArray:
		if layers%6 != 0 {
			return fmt.Errorf("a %s texture needs a multiple of 6 layers, got %d", dim, layers)
		}
	}
	return nil
}
