package jobstore

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "db", "jobs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestBeginFinishSuccess(t *testing.T) {
	s := openTemp(t)

	id, err := s.Begin("animation", map[string]any{"frames": 12, "mode": "rotation"})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	job, err := s.Get(id)
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, job.Status)
	assert.JSONEq(t, `{"frames":12,"mode":"rotation"}`, job.Params)

	require.NoError(t, s.Finish(id, Outcome{Voxels: 8, Quads: 6, Frames: 12, Width: 320, Height: 240, OutputBytes: 4096, Elapsed: 1500 * time.Millisecond}))

	job, err = s.Get(id)
	require.NoError(t, err)
	assert.Equal(t, StatusDone, job.Status)
	assert.Equal(t, 6, job.Quads)
	assert.Equal(t, int64(1500), job.ElapsedMs)
	assert.Zero(t, job.ErrorCode)
}

func TestFinishFailure(t *testing.T) {
	s := openTemp(t)

	id, err := s.Begin("still", nil)
	require.NoError(t, err)
	require.NoError(t, s.Finish(id, Outcome{ErrorCode: 2002, Err: errors.New("sem quads")}))

	jobs, err := s.Recent(10)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, StatusFailed, jobs[0].Status)
	assert.Equal(t, 2002, jobs[0].ErrorCode)
	assert.Equal(t, "sem quads", jobs[0].ErrorText)
}

func TestFinishUnknownJob(t *testing.T) {
	s := openTemp(t)
	assert.Error(t, s.Finish("nao-existe", Outcome{}))
}
