package meshing

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"SchematicVision/renderizador/internal/assets"
	"SchematicVision/shared/mapdata"
	"SchematicVision/shared/util"

	"github.com/stretchr/testify/require"
)

type fakeModels map[string]*assets.ModelDefinition

func (f fakeModels) Load(name string) *assets.ModelDefinition { return f[name] }

func buildModel(t *testing.T, blocks ...mapdata.RawBlock) *mapdata.VoxelModel {
	t.Helper()
	m, err := mapdata.BuildVoxelModel(mapdata.Records(blocks))
	require.NoError(t, err)
	return m
}

func block(x, y, z int32, id string) mapdata.RawBlock {
	return mapdata.RawBlock{Pos: util.NewBlockPos(x, y, z), ID: id}
}

// emptySampler é um TextureSampler sem nenhuma textura disponível.
func emptySampler(t *testing.T) *assets.TextureSampler {
	t.Helper()
	return assets.NewTextureSampler(t.TempDir(), 16, false)
}

func samplerAt(root string) *assets.TextureSampler {
	return assets.NewTextureSampler(root, 16, false)
}

// writeSolidTexture grava um PNG 16x16 em <root>/textures/block/<name>.png
func writeSolidTexture(t *testing.T, root, name string) {
	t.Helper()
	dir := filepath.Join(root, "textures", "block")
	require.NoError(t, os.MkdirAll(dir, 0755))

	img := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.SetNRGBA(x, y, color.NRGBA{90, 90, 90, 255})
		}
	}
	f, err := os.Create(filepath.Join(dir, name+".png"))
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

// quadBounds retorna os limites mínimo e máximo de um quad.
func quadBounds(s Surface) (lo, hi [3]float32) {
	lo, hi = s.Vertices[0], s.Vertices[0]
	for _, v := range s.Vertices[1:] {
		for a := 0; a < 3; a++ {
			lo[a] = min(lo[a], v[a])
			hi[a] = max(hi[a], v[a])
		}
	}
	return lo, hi
}

// quadArea retorna a área de um quad alinhado aos eixos.
func quadArea(s Surface) float32 {
	lo, hi := quadBounds(s)
	area := float32(1)
	for a := 0; a < 3; a++ {
		if d := hi[a] - lo[a]; d > 1e-6 {
			area *= d
		}
	}
	return area
}

func countByNormal(surfaces []Surface) map[util.Direction]int {
	out := make(map[util.Direction]int)
	for _, s := range surfaces {
		out[s.Normal]++
	}
	return out
}
