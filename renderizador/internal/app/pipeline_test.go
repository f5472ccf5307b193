package app

import (
	"context"
	"image/gif"
	"image/png"
	"iter"
	"os"
	"path/filepath"
	"testing"

	"SchematicVision/renderizador/internal/render"
	"SchematicVision/renderizador/internal/render/rendertest"
	"SchematicVision/shared/config"
	"SchematicVision/shared/jobstore"
	"SchematicVision/shared/mapdata"
	"SchematicVision/shared/renderr"
	"SchematicVision/shared/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pipelineFixture struct {
	cfg      *config.Config
	backend  *rendertest.Backend
	created  int
	pipeline *Pipeline
}

func newFixture(t *testing.T, jobs *jobstore.Store) *pipelineFixture {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.ResourceDir = t.TempDir()
	cfg.OutputDir = t.TempDir()
	cfg.ExternalEncoder = ""

	f := &pipelineFixture{cfg: cfg, backend: &rendertest.Backend{}}
	f.pipeline = NewPipeline(cfg, func() render.Backend {
		f.created++
		return f.backend
	}, jobs)
	return f
}

func (f *pipelineFixture) request(frames int) Request {
	req := DefaultRequest(f.cfg)
	req.Frames = frames
	req.Resolution = Resolution{Width: 64, Height: 48}
	return req
}

func smallStructure() iter.Seq[mapdata.RawBlock] {
	return mapdata.Records([]mapdata.RawBlock{
		{Pos: util.NewBlockPos(0, 0, 0), ID: "minecraft:stone"},
		{Pos: util.NewBlockPos(1, 0, 0), ID: "minecraft:stone"},
		{Pos: util.NewBlockPos(0, 1, 0), ID: "minecraft:dirt"},
	})
}

func outputFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestRenderAnimationWritesGIF(t *testing.T) {
	f := newFixture(t, nil)
	req := f.request(4)
	req.DurationMs = 80

	res, err := f.pipeline.RenderAnimation(context.Background(), smallStructure(), req)
	require.NoError(t, err)
	assert.Equal(t, 4, res.Frames)
	assert.Equal(t, 64, res.Width)
	assert.Equal(t, 48, res.Height)
	assert.Equal(t, f.cfg.OutputDir, filepath.Dir(res.Path))
	assert.Equal(t, ".gif", filepath.Ext(res.Path))

	file, err := os.Open(res.Path)
	require.NoError(t, err)
	defer file.Close()
	anim, err := gif.DecodeAll(file)
	require.NoError(t, err)
	require.Len(t, anim.Image, 4)
	for _, d := range anim.Delay {
		assert.Equal(t, 8, d)
	}

	assert.Equal(t, 1, f.created)
	assert.Equal(t, 4, f.backend.Draws)
	assert.Equal(t, 1, f.backend.Uploads)
	assert.False(t, f.backend.IsOpen())
}

func TestRenderAnimationRejectsBeforeWork(t *testing.T) {
	f := newFixture(t, nil)
	for _, edit := range []func(*Request){
		func(r *Request) { r.Frames = 0 },
		func(r *Request) { r.Frames = 200 },
		func(r *Request) { r.Elevation = 120 },
	} {
		req := f.request(4)
		edit(&req)
		_, err := f.pipeline.RenderAnimation(context.Background(), smallStructure(), req)
		require.Error(t, err)
		assert.Equal(t, 6002, renderr.CodeOf(err))
	}
	assert.Zero(t, f.created)
	assert.Zero(t, f.backend.Opens)
	assert.Empty(t, outputFiles(t, f.cfg.OutputDir))
}

func TestRenderAnimationEmptyModel(t *testing.T) {
	f := newFixture(t, nil)
	air := mapdata.Records([]mapdata.RawBlock{{Pos: util.NewBlockPos(0, 0, 0), ID: "minecraft:air"}})

	_, err := f.pipeline.RenderAnimation(context.Background(), air, f.request(4))
	require.Error(t, err)
	assert.Equal(t, 2001, renderr.CodeOf(err))
	assert.Zero(t, f.backend.Opens)
}

func TestRenderAnimationFrameFailure(t *testing.T) {
	f := newFixture(t, nil)
	f.backend.FailDrawAt = 3

	_, err := f.pipeline.RenderAnimation(context.Background(), smallStructure(), f.request(6))
	require.Error(t, err)
	assert.Equal(t, 2003, renderr.CodeOf(err))
	assert.ErrorIs(t, err, rendertest.ErrDraw)
	assert.False(t, f.backend.IsOpen())
	assert.Empty(t, outputFiles(t, f.cfg.OutputDir))
}

func TestRenderAnimationFitsBudget(t *testing.T) {
	f := newFixture(t, nil)
	req := f.request(4)
	req.Resolution = Resolution{Width: 256, Height: 256}
	req.Optimize = true
	// 256·256·0.5·4 = 131072 bytes estimados; o orçamento pede metade das dimensões
	req.MaxOutputBytes = 32768

	res, err := f.pipeline.RenderAnimation(context.Background(), smallStructure(), req)
	require.NoError(t, err)
	assert.Equal(t, 128, res.Width)
	assert.Equal(t, 128, res.Height)
}

func TestRenderAnimationModes(t *testing.T) {
	for _, mode := range []string{"rotation", "orbit", "zoom"} {
		t.Run(mode, func(t *testing.T) {
			f := newFixture(t, nil)
			req := f.request(3)
			req.Animation = mode
			res, err := f.pipeline.RenderAnimation(context.Background(), smallStructure(), req)
			require.NoError(t, err)
			assert.Equal(t, 3, res.Frames)
			require.Len(t, f.backend.Poses, 3)
		})
	}
}

func TestRenderStillWritesPNG(t *testing.T) {
	f := newFixture(t, nil)
	out := filepath.Join(f.cfg.OutputDir, "nested", "still.png")

	res, err := f.pipeline.RenderStill(context.Background(), smallStructure(), StillRequest{
		Resolution: Resolution{Width: 80, Height: 64},
		OutputPath: out,
	})
	require.NoError(t, err)
	assert.Equal(t, out, res.Path)
	assert.Equal(t, 1, res.Frames)

	file, err := os.Open(out)
	require.NoError(t, err)
	defer file.Close()
	img, err := png.Decode(file)
	require.NoError(t, err)
	assert.Equal(t, 80, img.Bounds().Dx())
	assert.Equal(t, 64, img.Bounds().Dy())

	require.Len(t, f.backend.Poses, 1)
	assert.InDelta(t, 45, f.backend.Poses[0].Azimuth, 1e-3)
}

func TestRenderStillExplicitEye(t *testing.T) {
	f := newFixture(t, nil)
	eye := [3]float32{1.5, 1, 10}

	_, err := f.pipeline.RenderStill(context.Background(), smallStructure(), StillRequest{
		Resolution: Resolution{Width: 64, Height: 64},
		Eye:        &eye,
	})
	require.NoError(t, err)
	require.Len(t, f.backend.Poses, 1)
	assert.InDelta(t, eye[0], f.backend.Poses[0].Eye.X(), 1e-4)
	assert.InDelta(t, eye[2], f.backend.Poses[0].Eye.Z(), 1e-4)
}

func TestRenderStillFailure(t *testing.T) {
	f := newFixture(t, nil)
	f.backend.FailDrawAt = 1

	_, err := f.pipeline.RenderStill(context.Background(), smallStructure(), StillRequest{
		Resolution: Resolution{Width: 64, Height: 64},
	})
	require.Error(t, err)
	assert.Equal(t, 2005, renderr.CodeOf(err))
	assert.Empty(t, outputFiles(t, f.cfg.OutputDir))
}

func TestPipelineRecordsJobs(t *testing.T) {
	store, err := jobstore.Open(filepath.Join(t.TempDir(), "jobs.db"))
	require.NoError(t, err)
	defer store.Close()

	f := newFixture(t, store)
	res, err := f.pipeline.RenderAnimation(context.Background(), smallStructure(), f.request(2))
	require.NoError(t, err)

	f.backend.FailDrawAt = f.backend.Draws + 1
	_, err = f.pipeline.RenderAnimation(context.Background(), smallStructure(), f.request(2))
	require.Error(t, err)

	jobs, err := store.Recent(10)
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	byStatus := map[string]jobstore.JobModel{}
	for _, j := range jobs {
		byStatus[j.Status] = j
	}
	done := byStatus[jobstore.StatusDone]
	assert.Equal(t, res.Path, done.OutputPath)
	assert.Equal(t, 2, done.Frames)
	assert.Equal(t, 3, done.Voxels)
	assert.Positive(t, done.Quads)
	assert.Zero(t, done.ErrorCode)

	failed := byStatus[jobstore.StatusFailed]
	assert.Equal(t, 2003, failed.ErrorCode)
	assert.NotEmpty(t, failed.ErrorText)
}
