package app

import (
	"context"
	"fmt"
	"log"
	"runtime"
	"sync"

	"SchematicVision/renderizador/internal/export"
	"SchematicVision/shared/renderr"
)

// JobFunc é um job de renderização executado pelo worker.
type JobFunc func(ctx context.Context) (export.Result, error)

// JobResult é a resposta de um job.
type JobResult struct {
	Key    string
	Result export.Result
	Err    error
}

type job struct {
	key   string
	ctx   context.Context
	fn    JobFunc
	reply chan JobResult
}

// RenderWorker executa jobs um por vez numa única thread do SO.
// O contexto gráfico pertence à thread que o abriu, por isso não há paralelismo aqui.
type RenderWorker struct {
	requests chan job
	stop     chan struct{}
	done     chan struct{}

	// mu protege pending e stopped; envios para requests só acontecem com mu travado
	mu      sync.Mutex
	pending map[string]bool
	stopped bool
}

// NewRenderWorker cria e inicia o worker com uma fila de queueSize jobs.
func NewRenderWorker(queueSize int) *RenderWorker {
	w := &RenderWorker{
		requests: make(chan job, max(queueSize, 1)),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
		pending:  make(map[string]bool),
	}
	go w.loop()
	return w
}

// Submit enfileira fn. Retorna false se já houver um job com a mesma chave
// pendente, se a fila estiver cheia ou se o worker já parou.
func (w *RenderWorker) Submit(ctx context.Context, key string, fn JobFunc) (<-chan JobResult, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped || w.pending[key] {
		return nil, false
	}

	reply := make(chan JobResult, 1)
	select {
	case w.requests <- job{key: key, ctx: ctx, fn: fn, reply: reply}:
		w.pending[key] = true
		return reply, true
	default:
		return nil, false
	}
}

// Stop encerra o worker depois do job em andamento. Jobs ainda na fila recebem
// um erro de worker encerrado; nenhum canal de resposta fica sem valor.
func (w *RenderWorker) Stop() {
	w.mu.Lock()
	if !w.stopped {
		w.stopped = true
		close(w.stop)
	}
	w.mu.Unlock()
	<-w.done
}

func (w *RenderWorker) release(key string) {
	w.mu.Lock()
	delete(w.pending, key)
	w.mu.Unlock()
}

func (w *RenderWorker) loop() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(w.done)

	for {
		// Parada tem prioridade sobre a fila
		select {
		case <-w.stop:
			w.drain()
			return
		default:
		}

		select {
		case j := <-w.requests:
			res := w.run(j)
			w.release(j.key)
			j.reply <- res
		case <-w.stop:
			w.drain()
			return
		}
	}
}

// drain responde os jobs que ficaram na fila. Depois de stopped nenhum Submit
// envia mais, então a fila só diminui aqui.
func (w *RenderWorker) drain() {
	for {
		select {
		case j := <-w.requests:
			w.release(j.key)
			j.reply <- JobResult{Key: j.key, Err: renderr.New(renderr.KindUnknown, "worker encerrado antes do job %s", j.key)}
		default:
			return
		}
	}
}

func (w *RenderWorker) run(j job) (out JobResult) {
	out.Key = j.key
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[PANIC] Erro no worker de renderização (%s): %v", j.key, r)
			out.Err = renderr.Wrap(renderr.KindUnknown, fmt.Errorf("%v", r), "panic no job %s", j.key)
		}
	}()

	if err := j.ctx.Err(); err != nil {
		out.Err = renderr.Wrap(renderr.KindUnknown, err, "job %s cancelado antes de iniciar", j.key)
		return out
	}
	out.Result, out.Err = j.fn(j.ctx)
	return out
}
