package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"SchematicVision/renderizador/internal/app"
	"SchematicVision/renderizador/internal/export"
	"SchematicVision/renderizador/internal/render"
	"SchematicVision/renderizador/internal/render/raylibgl"
	"SchematicVision/shared/config"
	"SchematicVision/shared/jobstore"
	"SchematicVision/shared/mapdata"
	"SchematicVision/shared/renderr"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", config.DefaultPath(), "Arquivo de configuração (JSON ou YAML)")
	logPath := flag.String("log", "", "Arquivo de log adicional")
	var anim animationFlags
	anim.register(flag.CommandLine)
	resolution := flag.String("resolution", "native", "native, native@LxA, default ou LxA")
	output := flag.String("output", "", "Arquivo de saída")
	still := flag.Bool("still", false, "Gerar um PNG único em vez de animação")
	eye := flag.String("eye", "", "Posição da câmera do still: x,y,z")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Uso: %s [flags] estrutura.json\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	log.SetFlags(log.Ltime | log.Lshortfile)
	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
		if err == nil {
			defer f.Close()
			log.SetOutput(io.MultiWriter(os.Stderr, f))
			log.Println("--- INICIANDO SCHEMATICVISION ---")
		}
	}

	if flag.NArg() != 1 {
		flag.Usage()
		return 2
	}

	cfg := config.Load(*configPath)

	blocks, err := readDump(flag.Arg(0))
	if err != nil {
		return fail(renderr.Wrap(renderr.KindModelBuild, err, "lendo estrutura"))
	}

	res, err := app.ParseResolution(*resolution)
	if err != nil {
		return fail(err)
	}

	var jobs *jobstore.Store
	if cfg.JobsDB != "" {
		jobs, err = jobstore.Open(cfg.JobsDB)
		if err != nil {
			log.Printf("[Main] AVISO: histórico desativado: %v", err)
		} else {
			defer jobs.Close()
		}
	}

	pipeline := app.NewPipeline(cfg, func() render.Backend { return raylibgl.New() }, jobs)
	worker := app.NewRenderWorker(1)
	defer worker.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var job app.JobFunc
	if *still {
		req := app.StillRequest{Resolution: res, OutputPath: *output}
		if *eye != "" {
			pos, err := parseEye(*eye)
			if err != nil {
				return fail(err)
			}
			req.Eye = &pos
		}
		job = func(ctx context.Context) (export.Result, error) {
			return pipeline.RenderStill(ctx, mapdata.Records(blocks), req)
		}
	} else {
		req := anim.request(cfg, setFlags(flag.CommandLine))
		req.Resolution = res
		req.OutputPath = *output
		if err := req.Validate(); err != nil {
			return fail(err)
		}
		job = func(ctx context.Context) (export.Result, error) {
			return pipeline.RenderAnimation(ctx, mapdata.Records(blocks), req)
		}
	}

	reply, ok := worker.Submit(ctx, flag.Arg(0), job)
	if !ok {
		return fail(renderr.New(renderr.KindUnknown, "worker indisponível"))
	}
	out := <-reply
	if out.Err != nil {
		return fail(out.Err)
	}
	fmt.Println(out.Result.Path)
	return 0
}

// animationFlags guarda as flags da animação antes de virarem um pedido.
type animationFlags struct {
	mode       string
	frames     int
	durationMs int
	elevation  float64
	maxBytes   int64
}

func (a *animationFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&a.mode, "mode", "rotation", "Animação: rotation, orbit ou zoom")
	fs.IntVar(&a.frames, "frames", 0, "Número de frames (padrão da config)")
	fs.IntVar(&a.durationMs, "duration", 0, "Duração de cada frame em ms (padrão da config)")
	fs.Float64Var(&a.elevation, "elevation", 0, "Elevação da câmera em graus (padrão da config)")
	fs.Int64Var(&a.maxBytes, "max-bytes", 0, "Orçamento do GIF em bytes (0 desativa; padrão da config)")
}

// setFlags retorna os nomes das flags passadas explicitamente.
func setFlags(fs *flag.FlagSet) map[string]bool {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

// request parte dos padrões da config e aplica só as flags passadas, mesmo fora dos
// limites, para que Validate as rejeite em vez de trocá-las pelo padrão.
func (a animationFlags) request(cfg *config.Config, set map[string]bool) app.Request {
	req := app.DefaultRequest(cfg)
	req.Animation = a.mode
	if set["frames"] {
		req.Frames = a.frames
	}
	if set["duration"] {
		req.DurationMs = a.durationMs
	}
	if set["elevation"] {
		req.Elevation = float32(a.elevation)
	}
	if set["max-bytes"] {
		req.MaxOutputBytes = a.maxBytes
	}
	return req
}

func readDump(path string) ([]mapdata.RawBlock, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return mapdata.DecodeDump(f)
}

func parseEye(s string) ([3]float32, error) {
	var pos [3]float32
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return pos, renderr.New(renderr.KindInvalidArgument, "eye deve ser x,y,z, recebido %q", s)
	}
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return pos, renderr.New(renderr.KindInvalidArgument, "eye: coordenada %q inválida", p)
		}
		pos[i] = float32(v)
	}
	return pos, nil
}

// fail imprime o erro com seu código e devolve o status de saída.
func fail(err error) int {
	log.Printf("[Main] Falha (código %d): %v", renderr.CodeOf(err), err)
	return 1
}
