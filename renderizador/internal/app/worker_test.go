package app

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"SchematicVision/renderizador/internal/export"
	"SchematicVision/shared/renderr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitResult(t *testing.T, ch <-chan JobResult) JobResult {
	t.Helper()
	select {
	case res := <-ch:
		return res
	case <-time.After(5 * time.Second):
		t.Fatal("job não terminou")
		return JobResult{}
	}
}

func TestWorkerRunsJobsSequentially(t *testing.T) {
	w := NewRenderWorker(8)
	defer w.Stop()

	var running, overlap atomic.Int32
	job := func(path string) JobFunc {
		return func(context.Context) (export.Result, error) {
			if running.Add(1) > 1 {
				overlap.Add(1)
			}
			time.Sleep(5 * time.Millisecond)
			running.Add(-1)
			return export.Result{Path: path}, nil
		}
	}

	var replies []<-chan JobResult
	for _, key := range []string{"a", "b", "c"} {
		ch, ok := w.Submit(context.Background(), key, job(key+".gif"))
		require.True(t, ok)
		replies = append(replies, ch)
	}
	for i, key := range []string{"a", "b", "c"} {
		res := waitResult(t, replies[i])
		require.NoError(t, res.Err)
		assert.Equal(t, key, res.Key)
		assert.Equal(t, key+".gif", res.Result.Path)
	}
	assert.Zero(t, overlap.Load())
}

func TestWorkerRejectsDuplicateKey(t *testing.T) {
	w := NewRenderWorker(4)
	defer w.Stop()

	release := make(chan struct{})
	first, ok := w.Submit(context.Background(), "out.gif", func(context.Context) (export.Result, error) {
		<-release
		return export.Result{}, nil
	})
	require.True(t, ok)

	_, ok = w.Submit(context.Background(), "out.gif", func(context.Context) (export.Result, error) {
		return export.Result{}, nil
	})
	assert.False(t, ok)

	close(release)
	waitResult(t, first)

	// Depois de concluído, a chave pode ser usada de novo
	again, ok := w.Submit(context.Background(), "out.gif", func(context.Context) (export.Result, error) {
		return export.Result{}, nil
	})
	require.True(t, ok)
	waitResult(t, again)
}

func TestWorkerRecoversFromPanic(t *testing.T) {
	w := NewRenderWorker(4)
	defer w.Stop()

	ch, ok := w.Submit(context.Background(), "boom", func(context.Context) (export.Result, error) {
		panic("contexto gráfico perdido")
	})
	require.True(t, ok)
	res := waitResult(t, ch)
	require.Error(t, res.Err)
	assert.Equal(t, renderr.KindUnknown, renderr.KindOf(res.Err))

	// O worker continua vivo
	ch, ok = w.Submit(context.Background(), "next", func(context.Context) (export.Result, error) {
		return export.Result{Frames: 1}, nil
	})
	require.True(t, ok)
	assert.Equal(t, 1, waitResult(t, ch).Result.Frames)
}

func TestWorkerSkipsCancelledJob(t *testing.T) {
	w := NewRenderWorker(4)
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var called atomic.Bool
	ch, ok := w.Submit(ctx, "cancelled", func(context.Context) (export.Result, error) {
		called.Store(true)
		return export.Result{}, nil
	})
	require.True(t, ok)
	res := waitResult(t, ch)
	assert.ErrorIs(t, res.Err, context.Canceled)
	assert.False(t, called.Load())
}

func TestWorkerStop(t *testing.T) {
	w := NewRenderWorker(1)
	w.Stop()
	w.Stop()

	_, ok := w.Submit(context.Background(), "late", func(context.Context) (export.Result, error) {
		return export.Result{}, nil
	})
	assert.False(t, ok)
}

func TestWorkerStopAnswersQueuedJobs(t *testing.T) {
	w := NewRenderWorker(4)

	started := make(chan struct{})
	release := make(chan struct{})
	first, ok := w.Submit(context.Background(), "a", func(context.Context) (export.Result, error) {
		close(started)
		<-release
		return export.Result{Frames: 1}, nil
	})
	require.True(t, ok)
	<-started

	var ran atomic.Bool
	queued, ok := w.Submit(context.Background(), "b", func(context.Context) (export.Result, error) {
		ran.Store(true)
		return export.Result{}, nil
	})
	require.True(t, ok)

	stopped := make(chan struct{})
	go func() {
		w.Stop()
		close(stopped)
	}()
	// Stop precisa ter fechado a parada antes de o job em andamento terminar
	require.Eventually(t, func() bool {
		select {
		case <-w.stop:
			return true
		default:
			return false
		}
	}, time.Second, time.Millisecond)
	_, ok = w.Submit(context.Background(), "c", func(context.Context) (export.Result, error) {
		return export.Result{}, nil
	})
	assert.False(t, ok)
	close(release)

	assert.Equal(t, 1, waitResult(t, first).Result.Frames)

	res := waitResult(t, queued)
	require.Error(t, res.Err)
	assert.Equal(t, "b", res.Key)
	assert.Equal(t, 2000, renderr.CodeOf(res.Err))
	assert.False(t, ran.Load())

	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop não retornou")
	}
}
