package assets

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"SchematicVision/shared/mapdata"
	"SchematicVision/shared/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestBlockTextureNameCandidates(t *testing.T) {
	root := t.TempDir()
	red := color.NRGBA{255, 0, 0, 255}
	writeTexture(t, root, "", "log_top", 16, red)
	writeTexture(t, root, "", "log", 16, red)
	writeTexture(t, root, "", "furnace_side", 16, red)
	writeTexture(t, root, "", "dirt_all", 16, red)
	writeTexture(t, root, "", "grass_up", 16, red)

	s := NewTextureSampler(root, 16, false)

	tests := []struct {
		block string
		face  CubeFace
		want  string
		ok    bool
	}{
		{"minecraft:log", FaceTop, "log_top", true},
		{"minecraft:log", FaceSide, "log", true},
		{"minecraft:log", FaceBottom, "log", true},
		{"minecraft:furnace", FaceSide, "furnace_side", true},
		{"minecraft:dirt", FaceSide, "dirt_all", true},
		{"minecraft:grass", FaceTop, "grass_up", true},
		{"minecraft:nothing", FaceTop, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.block+"_"+tt.face.String(), func(t *testing.T) {
			got, ok := s.BlockTextureName(tt.block, tt.face)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTextureResizeAndDefault(t *testing.T) {
	root := t.TempDir()
	writeTexture(t, root, "", "big", 32, color.NRGBA{10, 20, 30, 255})

	s := NewTextureSampler(root, 16, false)
	img := s.Texture("big")
	assert.Equal(t, image.Rect(0, 0, 16, 16), img.Bounds())
	assert.Equal(t, color.NRGBA{10, 20, 30, 255}, img.NRGBAAt(7, 7))

	missing := s.Texture("missing")
	assert.Equal(t, image.Rect(0, 0, 16, 16), missing.Bounds())
	assert.Equal(t, color.NRGBA{128, 128, 128, 255}, missing.NRGBAAt(0, 0))

	native := NewTextureSampler(root, 16, true)
	assert.Equal(t, image.Rect(0, 0, 32, 32), native.Texture("big").Bounds())
	assert.Equal(t, 32, native.NativeTextureSize())
	assert.Equal(t, 16, s.NativeTextureSize())
}

func TestResourcePackSelection(t *testing.T) {
	root := t.TempDir()
	writeTexture(t, root, "faithful", "stone", 32, color.NRGBA{1, 1, 1, 255})
	writeTexture(t, root, "vanilla", "stone", 16, color.NRGBA{2, 2, 2, 255})
	writeTexture(t, root, "vanilla", "dirt", 16, color.NRGBA{3, 3, 3, 255})
	require.NoError(t, os.WriteFile(filepath.Join(root, "resourcepack.json"), []byte(`{
		"selected_pack": "faithful",
		"available_packs": ["vanilla", "faithful"],
		"texture_size": {"faithful": 32}
	}`), 0644))
	// Arquivo com extensão PNG que não é imagem
	require.NoError(t, os.WriteFile(filepath.Join(root, "textures", "block", "vanilla", "fake.png"), []byte("not an image"), 0644))

	s := NewTextureSampler(root, 0, false)
	assert.Equal(t, 32, s.TextureSize())
	assert.Equal(t, color.NRGBA{1, 1, 1, 255}, s.Texture("stone").NRGBAAt(0, 0))
	assert.True(t, s.Has("dirt"))
	assert.False(t, s.Has("fake"))
}

func TestTintRamp(t *testing.T) {
	props := func(p string) mapdata.Properties { return mapdata.Properties{"power": p} }

	assert.Nil(t, TintFor("minecraft:redstone_wire", props("15"), nil))
	assert.Nil(t, TintFor("minecraft:stone", props("15"), intPtr(0)))

	low := TintFor("minecraft:redstone_wire", props("0"), intPtr(0))
	high := TintFor("minecraft:redstone_wire", props("15"), intPtr(0))
	require.NotNil(t, low)
	require.NotNil(t, high)
	assert.Equal(t, util.RGB{R: 102}, *low)
	assert.Equal(t, uint8(255), high.R)
	assert.NotEqual(t, *low, *high)

	prev := uint8(0)
	for p := 0; p <= 15; p++ {
		c := TintFor("redstone_wire", mapdata.Properties{"power": strconv.Itoa(p)}, intPtr(0))
		require.NotNil(t, c)
		assert.GreaterOrEqual(t, c.R, prev)
		prev = c.R
		if p <= 10 {
			assert.Zero(t, c.G, "power %d", p)
		}
	}

	bogus := TintFor("redstone_wire", props("abc"), intPtr(0))
	assert.Equal(t, *low, *bogus)
	clamped := TintFor("redstone_wire", props("99"), intPtr(0))
	assert.Equal(t, *high, *clamped)
}

func TestApplyTint(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	src.SetNRGBA(0, 0, color.NRGBA{255, 200, 100, 77})

	out := ApplyTint(src, util.RGB{R: 255, G: 0, B: 51})
	assert.Equal(t, color.NRGBA{255, 0, 20, 77}, out.NRGBAAt(0, 0))
}

func TestAverageColor(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, color.NRGBA{255, 0, 0, 255})
	img.SetNRGBA(1, 0, color.NRGBA{0, 0, 255, 0})
	assert.Equal(t, util.RGB{R: 255}, AverageColor(img))

	img.SetNRGBA(1, 0, color.NRGBA{0, 0, 255, 255})
	assert.Equal(t, util.RGB{R: 127, B: 127}, AverageColor(img))

	clear := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	assert.Equal(t, util.NeutralGray, AverageColor(clear))
}

func TestFaceColorCropsAndTints(t *testing.T) {
	root := t.TempDir()
	// Metade esquerda branca, metade direita preta
	dir := filepath.Join(root, "textures", "block")
	require.NoError(t, os.MkdirAll(dir, 0755))
	img := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			if x < 8 {
				img.SetNRGBA(x, y, color.NRGBA{255, 255, 255, 255})
			} else {
				img.SetNRGBA(x, y, color.NRGBA{0, 0, 0, 255})
			}
		}
	}
	writePNG(t, filepath.Join(dir, "dust.png"), img)

	s := NewTextureSampler(root, 16, false)
	def := &ModelDefinition{Textures: map[string]string{"line": "block/dust"}}

	left := Face{Texture: "#line", UV: &[4]float32{0, 0, 8, 16}}
	assert.Equal(t, util.RGB{255, 255, 255}, s.FaceColor(def, left, "minecraft:stone", nil))

	right := Face{Texture: "#line", UV: &[4]float32{16, 0, 8, 16}}
	assert.Equal(t, util.RGB{0, 0, 0}, s.FaceColor(def, right, "minecraft:stone", nil))

	tinted := Face{Texture: "#line", UV: &[4]float32{0, 0, 8, 16}, TintIndex: intPtr(0)}
	got := s.FaceColor(def, tinted, "minecraft:redstone_wire", mapdata.Properties{"power": "0"})
	assert.Equal(t, util.RGB{R: 102}, got)

	missing := Face{Texture: "#nothing"}
	assert.Equal(t, util.NeutralGray, s.FaceColor(def, missing, "minecraft:mystery", nil))
	assert.Equal(t, util.RGB{128, 128, 128}, s.FaceColor(def, missing, "minecraft:stone", nil))
}

func TestBlockFaceColorFallbacks(t *testing.T) {
	root := t.TempDir()
	writeTexture(t, root, "", "gold_block", 16, color.NRGBA{250, 200, 50, 255})
	s := NewTextureSampler(root, 16, false)

	assert.Equal(t, util.RGB{250, 200, 50}, s.BlockFaceColor("minecraft:gold_block", FaceTop))
	assert.Equal(t, util.RGB{160, 160, 160}, s.BlockFaceColor("minecraft:light_gray_wool", FaceSide))
	assert.Equal(t, util.RGB{128, 128, 128}, s.BlockFaceColor("minecraft:mystery", FaceSide))
}

func TestLookupKnownColor(t *testing.T) {
	c, ok := LookupKnownColor("minecraft:dark_oak_planks")
	assert.True(t, ok)
	assert.Equal(t, util.RGB{86, 67, 41}, c)

	c, ok = LookupKnownColor("minecraft:redstone_wire")
	assert.True(t, ok)
	assert.Equal(t, util.RGB{220, 0, 0}, c)

	_, ok = LookupKnownColor("minecraft:mystery")
	assert.False(t, ok)
}
