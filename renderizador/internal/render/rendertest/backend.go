// Package rendertest fornece um Backend em memória para testes do pipeline.
package rendertest

import (
	"errors"
	"image"
	"image/color"
	"sync"

	"SchematicVision/renderizador/internal/camera"
	"SchematicVision/renderizador/internal/render"
	"SchematicVision/shared/util"
)

// ErrDraw é devolvido pelo Draw configurado para falhar.
var ErrDraw = errors.New("falha simulada de desenho")

// Backend desenha frames sólidos na cor de fundo, com um quadrado central cuja
// cor depende do azimute, e registra cada chamada.
type Backend struct {
	mu sync.Mutex

	// FailDrawAt faz o Draw de número N (1 = primeiro) falhar; 0 desativa.
	FailDrawAt int
	// OpenErr é devolvido por Open quando não nulo.
	OpenErr error

	Opens   int
	Uploads int
	Draws   int
	Closes  int
	Batches []render.Batch
	Poses   []camera.Pose

	size       image.Point
	background util.RGB
	isOpen     bool
}

// Open implementa render.Backend.
func (b *Backend) Open(size image.Point, background util.RGB, _ float32) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.OpenErr != nil {
		return b.OpenErr
	}
	b.Opens++
	b.size, b.background, b.isOpen = size, background, true
	return nil
}

// Upload implementa render.Backend.
func (b *Backend) Upload(batches []render.Batch) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.isOpen {
		return errors.New("upload sem contexto aberto")
	}
	b.Uploads++
	b.Batches = batches
	return nil
}

// Draw implementa render.Backend.
func (b *Backend) Draw(pose camera.Pose) (image.Image, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.isOpen {
		return nil, errors.New("draw sem contexto aberto")
	}
	b.Draws++
	if b.FailDrawAt > 0 && b.Draws == b.FailDrawAt {
		return nil, ErrDraw
	}
	b.Poses = append(b.Poses, pose)

	img := image.NewNRGBA(image.Rectangle{Max: b.size})
	bg := b.background.NRGBA()
	for y := 0; y < b.size.Y; y++ {
		for x := 0; x < b.size.X; x++ {
			img.SetNRGBA(x, y, bg)
		}
	}

	shade := uint8(int(pose.Azimuth) % 256)
	mark := color.NRGBA{R: shade, G: 255 - shade, B: 80, A: 255}
	for y := b.size.Y / 4; y < 3*b.size.Y/4; y++ {
		for x := b.size.X / 4; x < 3*b.size.X/4; x++ {
			img.SetNRGBA(x, y, mark)
		}
	}
	return img, nil
}

// Close implementa render.Backend.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Closes++
	b.isOpen = false
	return nil
}

// IsOpen indica se há um contexto aberto no momento.
func (b *Backend) IsOpen() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.isOpen
}
