package reflection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-bind/engine/reflection/layout"
)

type coordinate struct{ set, slot, uniform int }

func coordinateAt(t *testing.T, root *layout.Node, path string) coordinate {
	t.Helper()
	c, err := Navigate(Fresh(root), path)
	require.NoError(t, err, path)
	off := c.Offset()
	return coordinate{off.Set, off.Slot, off.Uniform}
}

func TestCursorCoordinates(t *testing.T) {
	tests := []struct {
		fixture string
		path    string
		want    coordinate
	}{
		{"graphics", "camera", coordinate{0, 0, 0}},
		{"graphics", "camera.$.width", coordinate{0, 0, 0}},
		{"graphics", "camera.$.height", coordinate{0, 0, 4}},
		{"graphics", "camera.$.frame", coordinate{0, 0, 16}},
		{"graphics", "camera.$.frame_inv", coordinate{0, 0, 64}},
		{"graphics", "camera.$.centre", coordinate{0, 0, 112}},
		{"graphics", "camera.$.yfov", coordinate{0, 0, 124}},
		{"graphics", "surface.$.support", coordinate{0, 1, 0}},
		{"graphics", "surface.$.point_count", coordinate{0, 1, 4}},
		{"graphics", "surface.$.point_data", coordinate{0, 2, 0}},
		{"graphics", "surface.$.point_data[3].normal", coordinate{0, 2, 112}},
		{"graphics", "background.$.faces", coordinate{0, 3, 0}},
		{"graphics", "background_sampler", coordinate{0, 4, 0}},

		{"loose", "$.scale", coordinate{0, 0, 0}},
		{"loose", "$.basis", coordinate{0, 0, 16}},
		{"loose", "$.pairs", coordinate{0, 1, 0}},
		{"loose", "$.pairs[2].b", coordinate{0, 1, 40}},

		{"blocks", "$.time", coordinate{0, 0, 0}},
		{"blocks", "$.material", coordinate{1, 0, 0}},
		{"blocks", "$.material.$.color", coordinate{1, 0, 0}},
		{"blocks", "$.material.$.albedo", coordinate{1, 1, 0}},
		{"blocks", "$.material.$.detail.$.scale", coordinate{2, 0, 0}},
		{"blocks", "$.shadow", coordinate{0, 1, 0}},
		{"blocks", "$.lights[0].$.power", coordinate{0, 2, 12}},
		{"blocks", "$.lights[1].$.pos", coordinate{0, 3, 0}},

		{"resource", "frame.$.pairs[0].color", coordinate{0, 0, 0}},
		{"resource", "frame.$.pairs[2].sampler", coordinate{0, 5, 0}},
		{"resource", "frame.$.volume", coordinate{0, 6, 0}},
		{"resource", "frame.$.counters[9]", coordinate{0, 7, 36}},
		{"resource", "frames[0].$.volume", coordinate{1, 6, 0}},
		{"resource", "frames[1].$.pairs[1].color", coordinate{2, 2, 0}},
		{"resource", "particles.$.buffer.$.data[2]", coordinate{3, 0, 48}},
	}
	fixtures := allFixtures()
	for _, tt := range tests {
		t.Run(tt.fixture+"/"+tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, coordinateAt(t, fixtures[tt.fixture], tt.path))
		})
	}
}

func TestMatrixFollowsScalarWithPadding(t *testing.T) {
	root := looseGlobal()
	scale := coordinateAt(t, root, "$.scale")
	basis := coordinateAt(t, root, "$.basis")
	assert.Equal(t, 0, scale.uniform)
	assert.Equal(t, 16, basis.uniform)
	assert.Equal(t, scale.slot, basis.slot)

	pairs, err := Navigate(Fresh(root), "$.pairs")
	require.NoError(t, err)
	assert.Equal(t, 16, pairs.Node().Stride(layout.CategoryUniform))
	assert.NotEqual(t, scale.slot, pairs.Offset().Slot)
	assert.Equal(t, scale.set, pairs.Offset().Set)
}

func TestNavigationFailures(t *testing.T) {
	root := graphicsGlobal()
	fresh := Fresh(root)

	width, err := Navigate(fresh, "camera.$.width")
	require.NoError(t, err)

	_, err = width.NavigateField(0)
	assert.ErrorIs(t, err, ErrNoSuchPath)

	_, err = width.NavigateChild()
	assert.ErrorIs(t, err, ErrNoSuchPath)

	_, err = fresh.NavigateChild()
	assert.ErrorIs(t, err, ErrNoSuchPath, "a struct root has no container child")

	_, err = fresh.NavigateField(4)
	assert.ErrorIs(t, err, ErrNoSuchPath)

	_, err = fresh.NavigateFieldByName("missing")
	assert.ErrorIs(t, err, ErrNoSuchPath)

	background, err := Navigate(fresh, "background.$.faces")
	require.NoError(t, err)
	_, err = background.NavigateIndex(0)
	assert.ErrorIs(t, err, ErrNoSuchPath, "textures are not indexable")

	arr := layout.Global(field("v", layout.Array(vec3(), 3)))
	v, err := Navigate(Fresh(arr), "$.v")
	require.NoError(t, err)
	_, err = v.NavigateIndex(5)
	assert.ErrorIs(t, err, ErrNoSuchPath, "index 5 of a 3-element array must not clamp")
	_, err = v.NavigateIndex(-1)
	assert.ErrorIs(t, err, ErrNoSuchPath)
	last, err := v.NavigateIndex(2)
	require.NoError(t, err)
	assert.Equal(t, 32, last.Offset().Uniform)
}

func TestNavigatePathSyntax(t *testing.T) {
	root := resourceGlobal()
	for _, bad := range []string{"frame..volume", "frame.$.pairs[1", "frame.$.pairs[x]", "frame.$.pairs[1]x"} {
		_, err := Navigate(Fresh(root), bad)
		assert.Error(t, err, bad)
	}

	arrayRoot := layout.Array(layout.ConstantBuffer(layout.Struct("S", field("x", f32()))), 4)
	c, err := Navigate(Fresh(arrayRoot), "[3].$.x")
	require.NoError(t, err)
	assert.Equal(t, "[3].$.x", c.Path())
	assert.Equal(t, 3, c.Offset().Slot)
}

func TestNavigationIsIdempotent(t *testing.T) {
	for name, root := range allFixtures() {
		t.Run(name, func(t *testing.T) {
			err := Walk(Fresh(root), func(c Cursor) error {
				again, err := Navigate(Fresh(root), c.Path())
				require.NoError(t, err, c.Path())
				assert.Equal(t, c.Offset(), again.Offset(), c.Path())
				assert.Same(t, c.Node(), again.Node(), c.Path())
				return nil
			})
			require.NoError(t, err)
		})
	}
}

func TestOffsetInvariants(t *testing.T) {
	for name, root := range allFixtures() {
		t.Run(name, func(t *testing.T) {
			visited := 0
			err := Walk(Fresh(root), func(c Cursor) error {
				visited++
				off := c.Offset()
				assert.GreaterOrEqual(t, off.SetAccum, off.Set, c.Path())
				assert.GreaterOrEqual(t, off.SlotAccum, off.Slot, c.Path())
				assert.GreaterOrEqual(t, off.Uniform, 0, c.Path())

				if opensSet(c.Node()) {
					assert.Zero(t, off.Slot, "%s opens a set at a non-zero slot", c.Path())
					assert.Zero(t, off.Uniform, "%s opens a set at a non-zero byte offset", c.Path())
				}
				return nil
			})
			require.NoError(t, err)
			assert.Greater(t, visited, 1)
		})
	}
}

func TestSiblingSetsResetSlotAndUniform(t *testing.T) {
	root := blockGlobal()
	parent, err := Navigate(Fresh(root), "$")
	require.NoError(t, err)

	for i := range parent.Node().Fields() {
		c, err := parent.NavigateField(i)
		require.NoError(t, err)
		if c.Offset().Set != parent.Offset().Set {
			assert.Zero(t, c.Offset().Slot, c.Path())
			assert.Zero(t, c.Offset().Uniform, c.Path())
		}
	}
}

func TestCursorString(t *testing.T) {
	c := Fresh(looseGlobal())
	assert.Contains(t, c.String(), "<root>")
	child, err := c.NavigateChild()
	require.NoError(t, err)
	assert.Equal(t, "$", child.Path())
	assert.Contains(t, child.String(), "slot_accum=1")
}
