// Package raylibgl implementa o render.Backend com raylib: janela oculta,
// render texture offscreen e leitura dos pixels de volta para image.Image.
package raylibgl

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"log"
	"unsafe"

	"SchematicVision/renderizador/internal/camera"
	"SchematicVision/renderizador/internal/render"
	"SchematicVision/shared/util"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"
)

// Índices de shader.Locs (SHADER_LOC_COLOR_DIFFUSE e SHADER_LOC_MAP_DIFFUSE).
const (
	locColorDiffuse = 12
	locMapDiffuse   = 15
	locCount        = 32
)

// Backend desenha os lotes com raylib. Todas as chamadas devem vir da mesma
// thread do SO; o worker do app trava a goroutine na thread.
type Backend struct {
	fovy       float32
	background color.RGBA
	size       image.Point

	target   rl.RenderTexture2D
	shader   rl.Shader
	models   []rl.Model
	textures []rl.Texture2D
	open     bool
}

var _ render.Backend = (*Backend)(nil)

// New cria um backend fechado; o contexto nasce no primeiro Open.
func New() *Backend {
	return &Backend{}
}

// Open cria a janela oculta e a render texture do tamanho pedido.
func (b *Backend) Open(size image.Point, background util.RGB, fovy float32) error {
	if b.open {
		return errors.New("contexto já aberto")
	}

	rl.SetTraceLogLevel(rl.LogWarning)
	rl.SetConfigFlags(rl.FlagWindowHidden)
	rl.InitWindow(int32(min(size.X, 640)), int32(min(size.Y, 480)), "SchematicVision")
	if !rl.IsWindowReady() {
		return errors.New("janela OpenGL não inicializada")
	}

	b.target = rl.LoadRenderTexture(int32(size.X), int32(size.Y))
	if b.target.ID == 0 {
		rl.CloseWindow()
		return fmt.Errorf("render texture %dx%d não criada", size.X, size.Y)
	}

	b.shader = rl.LoadShaderFromMemory(surfaceVertexShader, surfaceFragmentShader)
	if b.shader.ID != 0 {
		locs := unsafe.Slice(b.shader.Locs, locCount)
		locs[locMapDiffuse] = rl.GetShaderLocation(b.shader, "texture0")
		locs[locColorDiffuse] = rl.GetShaderLocation(b.shader, "colDiffuse")
	} else {
		log.Printf("[Render] AVISO: shader de repetição não compilou, usando o padrão")
	}

	b.size = size
	b.fovy = fovy
	b.background = color.RGBA{R: background.R, G: background.G, B: background.B, A: 255}
	b.open = true
	log.Printf("[Render] Contexto raylib aberto (%dx%d)", size.X, size.Y)
	return nil
}

// Upload converte cada lote em um modelo na GPU, com a textura do lote.
func (b *Backend) Upload(batches []render.Batch) error {
	if !b.open {
		return errors.New("upload sem contexto aberto")
	}
	b.unloadModels()

	for _, batch := range batches {
		if batch.Geometry.VertexCount() == 0 {
			continue
		}
		mesh := geometryToMesh(batch.Geometry)
		rl.UploadMesh(&mesh, false)
		model := rl.LoadModelFromMesh(mesh)
		if model.MaterialCount > 0 {
			materials := unsafe.Slice(model.Materials, model.MaterialCount)
			if b.shader.ID != 0 {
				materials[0].Shader = b.shader
			}
			if !batch.Flat() && batch.Image != nil {
				tex := b.loadTexture(batch.Image)
				rl.SetMaterialTexture(&materials[0], rl.MapDiffuse, tex)
			}
		}
		b.models = append(b.models, model)
	}

	log.Printf("[Render] %d modelos e %d texturas na GPU", len(b.models), len(b.textures))
	return nil
}

func (b *Backend) loadTexture(img *image.NRGBA) rl.Texture2D {
	rlImg := rl.NewImageFromImage(img)
	tex := rl.LoadTextureFromImage(rlImg)
	rl.UnloadImage(rlImg)

	// Pixel art: sem filtro; a repetição é feita no shader
	rl.SetTextureFilter(tex, rl.FilterPoint)
	rl.SetTextureWrap(tex, rl.WrapClamp)
	b.textures = append(b.textures, tex)
	return tex
}

func vec(v mgl32.Vec3) rl.Vector3 {
	return rl.Vector3{X: v.X(), Y: v.Y(), Z: v.Z()}
}

// Draw desenha uma pose na render texture e devolve os pixels.
func (b *Backend) Draw(pose camera.Pose) (image.Image, error) {
	if !b.open {
		return nil, errors.New("draw sem contexto aberto")
	}

	cam := rl.Camera3D{
		Position:   vec(pose.Eye),
		Target:     vec(pose.Target),
		Up:         vec(pose.Up),
		Fovy:       b.fovy,
		Projection: rl.CameraPerspective,
	}
	// O plano distante padrão (1000) corta estruturas grandes
	rl.SetClipPlanes(0.05, float64(max(pose.Radius*4, 1000)))

	rl.BeginTextureMode(b.target)
	rl.ClearBackground(b.background)
	rl.BeginMode3D(cam)
	// Faces de elementos finos ficam visíveis dos dois lados
	rl.DisableBackfaceCulling()
	for _, m := range b.models {
		rl.DrawModel(m, rl.Vector3{}, 1.0, rl.White)
	}
	rl.EnableBackfaceCulling()
	rl.EndMode3D()
	rl.EndTextureMode()

	return b.readPixels()
}

// readPixels copia a render texture para uma imagem Go, desvirando o eixo Y do OpenGL.
func (b *Backend) readPixels() (image.Image, error) {
	rlImg := rl.LoadImageFromTexture(b.target.Texture)
	if rlImg == nil || rlImg.Width == 0 {
		return nil, errors.New("leitura da render texture falhou")
	}
	defer rl.UnloadImage(rlImg)
	rl.ImageFlipVertical(rlImg)

	colors := rl.LoadImageColors(rlImg)
	defer rl.UnloadImageColors(colors)

	w, h := int(rlImg.Width), int(rlImg.Height)
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i, c := range colors[:w*h] {
		out.Pix[i*4+0] = c.R
		out.Pix[i*4+1] = c.G
		out.Pix[i*4+2] = c.B
		out.Pix[i*4+3] = 255
	}
	return out, nil
}

func (b *Backend) unloadModels() {
	for _, m := range b.models {
		rl.UnloadModel(m)
	}
	for _, t := range b.textures {
		rl.UnloadTexture(t)
	}
	b.models = b.models[:0]
	b.textures = b.textures[:0]
}

// Close libera GPU e janela.
func (b *Backend) Close() error {
	if !b.open {
		return nil
	}
	b.unloadModels()
	if b.shader.ID != 0 {
		rl.UnloadShader(b.shader)
	}
	rl.UnloadRenderTexture(b.target)
	rl.CloseWindow()
	b.open = false
	log.Printf("[Render] Contexto raylib fechado")
	return nil
}
