package assets

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeModel grava um modelo em <root>/models/block/<name>.json
func writeModel(t *testing.T, root, name, body string) {
	t.Helper()
	dir := filepath.Join(root, "models", "block")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".json"), []byte(body), 0644))
}

// writeTexture grava um PNG de cor sólida em <root>/textures/block/<sub>/<name>.png
func writeTexture(t *testing.T, root, sub, name string, size int, c color.NRGBA) {
	t.Helper()
	dir := filepath.Join(root, "textures", "block", sub)
	require.NoError(t, os.MkdirAll(dir, 0755))

	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	f, err := os.Create(filepath.Join(dir, name+".png"))
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}
