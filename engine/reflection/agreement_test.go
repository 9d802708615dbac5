package reflection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-bind/engine/reflection/layout"
)

func TestCheckAgreementFixtures(t *testing.T) {
	for name, root := range allFixtures() {
		t.Run(name, func(t *testing.T) {
			table, err := BuildBindingLayout(root)
			require.NoError(t, err)

			disagreements, err := CheckAgreement(root, table)
			require.NoError(t, err)
			assert.Empty(t, disagreements)
		})
	}
}

func TestCheckAgreementLooseUniformWithoutContainer(t *testing.T) {
	// A plain struct root does not gather its loose uniform into a buffer, so the cursor points
	// it at slot 0 while the builder has nothing there but the texture.
	root := layout.Struct("scope",
		field("exposure", f32()),
		field("albedo", layout.Texture(layout.ShapeTexture2D)),
	)
	table, err := BuildBindingLayout(root)
	require.NoError(t, err)

	disagreements, err := CheckAgreement(root, table)
	require.NoError(t, err)
	require.NotEmpty(t, disagreements)
	assert.Equal(t, "exposure", disagreements[0].Path)
	assert.Contains(t, disagreements[0].String(), "exposure [set 0, slot 0, uniform 0]")
}

func TestCheckAgreementDetectsTamperedTable(t *testing.T) {
	root := graphicsGlobal()
	table, err := BuildBindingLayout(root)
	require.NoError(t, err)

	table[0][3].ViewDimension = layout.ViewDimension2D
	table[0][0].Capacity = 64
	table[0] = append(table[0], BindingDescriptor{Slot: 5, Kind: BindingSampler, Name: "extra"})

	disagreements, err := CheckAgreement(root, table)
	require.NoError(t, err)

	var reasons []string
	for _, d := range disagreements {
		reasons = append(reasons, d.Path+": "+d.Reason)
	}
	assert.Contains(t, reasons, "background.$.faces: texture shape texture_cube needs a cube view, descriptor declares 2d")
	assert.Contains(t, reasons, "extra: sampler descriptor is never addressed by a cursor")

	overflow := 0
	for _, d := range disagreements {
		if d.Offset.Set == 0 && d.Offset.Slot == 0 && d.Path != "camera" {
			overflow++
		}
	}
	assert.Positive(t, overflow, "camera fields past byte 64 must overflow the shrunken buffer")
}

func TestCheckAgreementWrongKind(t *testing.T) {
	root := looseGlobal()
	table, err := BuildBindingLayout(root)
	require.NoError(t, err)
	table[0][1].Kind = BindingTexture

	disagreements, err := CheckAgreement(root, table)
	require.NoError(t, err)
	require.NotEmpty(t, disagreements)
	assert.Equal(t, "$.pairs", disagreements[0].Path)
}
