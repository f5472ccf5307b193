package render

import (
	"fmt"
	"image"
	"log"

	"SchematicVision/renderizador/internal/camera"
	"SchematicVision/renderizador/internal/meshing"
	"SchematicVision/shared/mapdata"
	"SchematicVision/shared/util"

	"github.com/go-gl/mathgl/mgl32"
)

// Backend é o renderizador 3D externo: um contexto offscreen de tamanho fixo
// que recebe os lotes uma vez e desenha quantos frames forem pedidos.
type Backend interface {
	Open(size image.Point, background util.RGB, fovy float32) error
	Upload(batches []Batch) error
	Draw(pose camera.Pose) (image.Image, error)
	Close() error
}

// contextKey identifica um contexto aberto; mudar qualquer campo exige reabrir.
type contextKey struct {
	size       image.Point
	background util.RGB
}

// SceneRenderer desenha a malha de um job a partir de poses de câmera,
// reaproveitando o contexto e os lotes enviados enquanto a chave não mudar.
type SceneRenderer struct {
	backend Backend
	batches []Batch
	center  mgl32.Vec3
	maxDim  float32
	fovy    float32

	open     bool
	uploaded bool
	key      contextKey
	frames   int
}

// NewSceneRenderer prepara os lotes de GPU a partir dos quads do job.
func NewSceneRenderer(backend Backend, surfaces []meshing.Surface, bounds mapdata.Bounds, textures TextureSource, fovy float32) *SceneRenderer {
	c := bounds.Center()
	batches := BuildBatches(surfaces, textures)

	log.Printf("[Render] %d quads em %d lotes", len(surfaces), len(batches))
	return &SceneRenderer{
		backend: backend,
		batches: batches,
		// Centro geométrico: cada bloco ocupa [p, p+1)
		center: mgl32.Vec3{c[0] + 0.5, c[1] + 0.5, c[2] + 0.5},
		maxDim: float32(bounds.MaxDimension()),
		fovy:   fovy,
	}
}

// Center retorna o centro geométrico do modelo.
func (r *SceneRenderer) Center() mgl32.Vec3 { return r.center }

// MaxDimension retorna a maior dimensão do modelo em blocos.
func (r *SceneRenderer) MaxDimension() float32 { return r.maxDim }

// Batches retorna os lotes montados para o backend.
func (r *SceneRenderer) Batches() []Batch { return r.batches }

// FramesRendered retorna quantos frames já foram desenhados.
func (r *SceneRenderer) FramesRendered() int { return r.frames }

// IsometricPose retorna a pose padrão de still.
func (r *SceneRenderer) IsometricPose(distanceFactor float32) camera.Pose {
	return camera.Isometric(r.center, r.maxDim, distanceFactor)
}

// RenderFrame desenha uma pose. O contexto é aberto na primeira chamada e
// reaberto apenas quando tamanho ou fundo mudam; os lotes sobem uma vez por contexto.
func (r *SceneRenderer) RenderFrame(pose camera.Pose, size image.Point, background util.RGB) (image.Image, error) {
	if size.X <= 0 || size.Y <= 0 {
		return nil, fmt.Errorf("tamanho de frame inválido %dx%d", size.X, size.Y)
	}

	key := contextKey{size: size, background: background}
	if r.open && key != r.key {
		log.Printf("[Render] Reabrindo contexto: %v → %v", r.key.size, size)
		if err := r.closeBackend(); err != nil {
			return nil, err
		}
	}

	if !r.open {
		if err := r.backend.Open(size, background, r.fovy); err != nil {
			return nil, fmt.Errorf("abrindo contexto %dx%d: %w", size.X, size.Y, err)
		}
		r.open, r.key, r.uploaded = true, key, false
	}

	if !r.uploaded {
		if err := r.backend.Upload(r.batches); err != nil {
			return nil, fmt.Errorf("enviando %d lotes: %w", len(r.batches), err)
		}
		r.uploaded = true
	}

	img, err := r.backend.Draw(pose)
	if err != nil {
		return nil, fmt.Errorf("desenhando pose az=%.1f el=%.1f: %w", pose.Azimuth, pose.Elevation, err)
	}
	r.frames++
	return img, nil
}

// Close libera o contexto do backend. Pode ser chamado mais de uma vez.
func (r *SceneRenderer) Close() error {
	if !r.open {
		return nil
	}
	return r.closeBackend()
}

func (r *SceneRenderer) closeBackend() error {
	r.open, r.uploaded = false, false
	if err := r.backend.Close(); err != nil {
		return fmt.Errorf("fechando contexto: %w", err)
	}
	return nil
}
