package app

import (
	"context"
	"image"
	"iter"
	"log"
	"os"
	"path/filepath"
	"time"

	"SchematicVision/renderizador/internal/animation"
	"SchematicVision/renderizador/internal/assets"
	"SchematicVision/renderizador/internal/camera"
	"SchematicVision/renderizador/internal/export"
	"SchematicVision/renderizador/internal/meshing"
	"SchematicVision/renderizador/internal/render"
	"SchematicVision/shared/config"
	"SchematicVision/shared/jobstore"
	"SchematicVision/shared/mapdata"
	"SchematicVision/shared/renderr"
	"SchematicVision/shared/util"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// BackendFactory cria um backend novo por job; contextos não são compartilhados entre jobs.
type BackendFactory func() render.Backend

// Pipeline executa jobs completos: voxels → quads → frames → arquivo.
type Pipeline struct {
	cfg        *config.Config
	newBackend BackendFactory
	jobs       *jobstore.Store // Opcional
}

// NewPipeline cria o pipeline. jobs pode ser nil para não manter histórico.
func NewPipeline(cfg *config.Config, newBackend BackendFactory, jobs *jobstore.Store) *Pipeline {
	return &Pipeline{cfg: cfg, newBackend: newBackend, jobs: jobs}
}

// scene reúne os artefatos locais de um job até o renderizador.
type scene struct {
	model    *mapdata.VoxelModel
	textures *assets.TextureSampler
	surfaces []meshing.Surface
	renderer *render.SceneRenderer
}

func (p *Pipeline) buildScene(blocks iter.Seq[mapdata.RawBlock], native bool) (*scene, error) {
	model, err := mapdata.BuildVoxelModel(blocks)
	if err != nil {
		return nil, renderr.Wrap(renderr.KindModelBuild, err, "construindo modelo")
	}

	models, err := assets.NewModelResolver(p.cfg.ResourceDir)
	if err != nil {
		return nil, renderr.Wrap(renderr.KindUnknown, err, "carregando modelos de bloco")
	}
	textures := assets.NewTextureSampler(p.cfg.ResourceDir, p.cfg.TextureSize, native)

	surfaces, err := meshing.NewSurfaceBuilder(model, models, textures).Build()
	if err != nil {
		return nil, renderr.Wrap(renderr.KindMeshConstruction, err, "extraindo superfícies")
	}

	renderer := render.NewSceneRenderer(p.newBackend(), surfaces, model.Bounds(), textures, p.cfg.FOV)
	return &scene{model: model, textures: textures, surfaces: surfaces, renderer: renderer}, nil
}

// windowSize resolve o tamanho de janela pedido.
func (p *Pipeline) windowSize(res Resolution, sc *scene) image.Point {
	switch {
	case res.Explicit():
		return image.Pt(int(res.Width), int(res.Height))
	case res.Native:
		maxW, maxH := p.cfg.NativeMaxWidth, p.cfg.NativeMaxHeight
		if res.MaxWidth > 0 {
			maxW, maxH = res.MaxWidth, res.MaxHeight
		}
		w, h := NativeWindowSize(sc.model.Bounds(), sc.textures.NativeTextureSize(), maxW, maxH)
		return image.Pt(int(w), int(h))
	}
	return image.Pt(int(p.cfg.WindowWidth), int(p.cfg.WindowHeight))
}

func (p *Pipeline) background() util.RGB {
	bg := p.cfg.BackgroundColor
	return util.RGB{R: bg[0], G: bg[1], B: bg[2]}
}

func (p *Pipeline) outputPath(requested, id, ext string) string {
	if requested != "" {
		return requested
	}
	dir := p.cfg.OutputDir
	if dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "schematicvision-"+id+ext)
}

// begin registra o job no histórico, se houver; o id serve também para o nome do arquivo.
func (p *Pipeline) begin(kind string, params any) string {
	if p.jobs != nil {
		id, err := p.jobs.Begin(kind, params)
		if err == nil {
			return id
		}
		log.Printf("[Job] AVISO: histórico indisponível: %v", err)
	}
	return uuid.NewString()
}

func (p *Pipeline) finish(id string, sc *scene, res export.Result, start time.Time, err error) {
	elapsed := time.Since(start)
	if err != nil {
		log.Printf("[Job] %s falhou após %v: %v", id, elapsed.Round(time.Millisecond), err)
	} else {
		log.Printf("[Job] %s concluído em %v: %s", id, elapsed.Round(time.Millisecond), res.Path)
	}
	if p.jobs == nil {
		return
	}

	out := jobstore.Outcome{
		Frames:      res.Frames,
		Width:       res.Width,
		Height:      res.Height,
		OutputPath:  res.Path,
		OutputBytes: res.Bytes,
		ErrorCode:   renderr.CodeOf(err),
		Err:         err,
		Elapsed:     elapsed,
	}
	if sc != nil {
		out.Voxels = sc.model.Count()
		out.Quads = len(sc.surfaces)
	}
	if ferr := p.jobs.Finish(id, out); ferr != nil {
		log.Printf("[Job] AVISO: falha ao registrar %s: %v", id, ferr)
	}
}

func closeRenderer(sc *scene) {
	if sc == nil {
		return
	}
	if err := sc.renderer.Close(); err != nil {
		log.Printf("[Render] AVISO: %v", err)
	}
}

// RenderAnimation executa um job de animação e devolve o GIF gerado.
// Parâmetros inválidos são rejeitados antes de qualquer trabalho.
func (p *Pipeline) RenderAnimation(ctx context.Context, blocks iter.Seq[mapdata.RawBlock], req Request) (res export.Result, err error) {
	if err := req.Validate(); err != nil {
		return export.Result{}, err
	}
	mode, _ := animation.ParseMode(req.Animation)

	start := time.Now()
	id := p.begin("animation", req)
	var sc *scene
	defer func() {
		closeRenderer(sc)
		p.finish(id, sc, res, start, err)
	}()

	log.Printf("[Job] %s: animação %s, %d frames de %dms", id, mode, req.Frames, req.DurationMs)

	sc, err = p.buildScene(blocks, req.Resolution.Native)
	if err != nil {
		return export.Result{}, err
	}

	size := p.windowSize(req.Resolution, sc)
	if req.Optimize && req.MaxOutputBytes > 0 {
		// Renderizar já no tamanho final sai mais barato que reduzir depois
		if w, h, resize := export.EstimateScaledSize(size.X, size.Y, req.Frames, p.cfg.BytesPerPixel, req.MaxOutputBytes); resize {
			log.Printf("[Job] Janela %dx%d excede o orçamento, renderizando em %dx%d", size.X, size.Y, w, h)
			size = image.Pt(max(w, MinWindow), max(h, MinWindow))
		}
	}

	params := animation.Params{
		Frames:         req.Frames,
		Elevation:      req.Elevation,
		DistanceFactor: p.cfg.DistanceFactor,
		StartElevation: p.cfg.OrbitStartElevation,
		EndElevation:   p.cfg.OrbitEndElevation,
		StartFactor:    p.cfg.ZoomStartFactor,
		EndFactor:      p.cfg.ZoomEndFactor,
	}
	bg := p.background()
	renderer := sc.renderer
	frames := func() iter.Seq2[image.Image, error] {
		path := animation.NewPath(mode, renderer.Center(), renderer.MaxDimension(), params)
		return animation.Frames(path, func(pose camera.Pose) (image.Image, error) {
			return renderer.RenderFrame(pose, size, bg)
		})
	}

	exporter := export.NewExporter(export.Options{
		DelayMs:       req.DurationMs,
		Loop:          p.cfg.Loop,
		Quality:       p.cfg.Quality,
		Optimize:      req.Optimize,
		MaxBytes:      req.MaxOutputBytes,
		BytesPerPixel: p.cfg.BytesPerPixel,
		Encoder:       p.cfg.ExternalEncoder,
	})
	res, err = exporter.Export(ctx, frames, req.Frames, p.outputPath(req.OutputPath, id, ".gif"))
	if err != nil {
		return export.Result{}, renderr.Wrap(renderr.KindExport, err, "exportando animação")
	}
	return res, nil
}

// RenderStill renderiza uma única imagem PNG, pela pose isométrica ou por um olho explícito.
func (p *Pipeline) RenderStill(ctx context.Context, blocks iter.Seq[mapdata.RawBlock], req StillRequest) (res export.Result, err error) {
	if err := req.Validate(); err != nil {
		return export.Result{}, err
	}

	start := time.Now()
	id := p.begin("still", req)
	var sc *scene
	defer func() {
		closeRenderer(sc)
		p.finish(id, sc, res, start, err)
	}()

	sc, err = p.buildScene(blocks, req.Resolution.Native)
	if err != nil {
		return export.Result{}, err
	}

	pose := sc.renderer.IsometricPose(p.cfg.DistanceFactor)
	if req.Eye != nil {
		pose = camera.LookAt(mgl32.Vec3(*req.Eye), sc.renderer.Center())
	}

	img, err := sc.renderer.RenderFrame(pose, p.windowSize(req.Resolution, sc), p.background())
	if err != nil {
		return export.Result{}, renderr.Wrap(renderr.KindStillRender, err, "renderizando imagem")
	}
	if err := ctx.Err(); err != nil {
		return export.Result{}, renderr.Wrap(renderr.KindUnknown, err, "job cancelado")
	}
	return export.WritePNG(img, p.outputPath(req.OutputPath, id, ".png"))
}
