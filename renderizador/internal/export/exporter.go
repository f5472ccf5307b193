package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"image/png"
	"io"
	"iter"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"SchematicVision/shared/renderr"

	"github.com/anthonynsimon/bild/transform"
	"github.com/dustin/go-humanize"
)

// Options controla a codificação do GIF.
type Options struct {
	DelayMs       int
	Loop          int // 0 = infinito
	Quality       int // >= 90 ativa dithering Floyd-Steinberg no fallback
	Optimize      bool
	MaxBytes      int64
	BytesPerPixel float64
	Encoder       string // Codificador externo; vazio desativa o streaming
}

// FrameSource produz uma sequência nova de frames a cada chamada.
// O fallback chama de novo quando o streaming falha no meio.
type FrameSource func() iter.Seq2[image.Image, error]

// Result descreve o arquivo gerado.
type Result struct {
	Path    string
	Bytes   int64
	Frames  int
	Width   int
	Height  int
	Encoder string
}

// Nomes dos caminhos de codificação, usados em logs e no histórico.
const (
	EncoderStream   = "stream"
	EncoderFallback = "image/gif"
)

// errFrame marca falhas que vieram da produção de frames (não do codificador).
type errFrame struct{ err error }

func (e errFrame) Error() string { return e.err.Error() }
func (e errFrame) Unwrap() error { return e.err }

// Exporter grava animações e stills sem nunca deixar arquivo parcial no destino.
type Exporter struct {
	opts     Options
	lookPath func(string) (string, error)
}

// NewExporter cria o exportador.
func NewExporter(opts Options) *Exporter {
	if opts.DelayMs <= 0 {
		opts.DelayMs = 100
	}
	return &Exporter{opts: opts, lookPath: exec.LookPath}
}

// Export codifica os total frames em outPath. Tenta o codificador externo em streaming;
// se ele faltar ou falhar, gera os frames de novo e usa image/gif.
// Falhas de frame abortam com erro de frame e não são repetidas.
func (e *Exporter) Export(ctx context.Context, frames FrameSource, total int, outPath string) (Result, error) {
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return Result{}, renderr.Wrap(renderr.KindExport, err, "criando diretório de saída")
	}

	var streamErr error
	if encoder, ok := e.encoderPath(); ok {
		res, err := e.exportStream(ctx, encoder, frames(), total, outPath)
		if err == nil {
			e.logResult(res)
			return res, nil
		}
		var fe errFrame
		if errors.As(err, &fe) {
			return Result{}, renderr.Wrap(renderr.KindFrameRender, fe.err, "gerando frames")
		}
		streamErr = err
		log.Printf("[Export] Streaming falhou, usando fallback: %v", err)
	}

	res, err := e.exportFallback(frames(), outPath)
	if err != nil {
		var fe errFrame
		if errors.As(err, &fe) {
			return Result{}, renderr.Wrap(renderr.KindFrameRender, fe.err, "gerando frames")
		}
		if streamErr != nil {
			err = errors.Join(streamErr, err)
		}
		return Result{}, renderr.Wrap(renderr.KindExport, err, "nenhum caminho de codificação funcionou")
	}
	e.logResult(res)
	return res, nil
}

func (e *Exporter) logResult(res Result) {
	log.Printf("[Export] %s: %d frames %dx%d, %s (%s)",
		filepath.Base(res.Path), res.Frames, res.Width, res.Height, humanize.Bytes(uint64(res.Bytes)), res.Encoder)
}

func (e *Exporter) encoderPath() (string, bool) {
	if e.opts.Encoder == "" {
		return "", false
	}
	path, err := e.lookPath(e.opts.Encoder)
	if err != nil {
		log.Printf("[Export] Codificador %q indisponível: %v", e.opts.Encoder, err)
		return "", false
	}
	return path, true
}

// targetSize decide o tamanho de saída a partir do primeiro frame.
func (e *Exporter) targetSize(first image.Image, frames int) (int, int, bool) {
	b := first.Bounds()
	if !e.opts.Optimize {
		return b.Dx(), b.Dy(), false
	}
	return EstimateScaledSize(b.Dx(), b.Dy(), frames, e.opts.BytesPerPixel, e.opts.MaxBytes)
}

func fit(img image.Image, w, h int) image.Image {
	b := img.Bounds()
	if b.Dx() == w && b.Dy() == h {
		return img
	}
	return transform.Resize(img, w, h, transform.Linear)
}

// exportStream envia cada frame como PNG para o codificador externo assim que é gerado.
func (e *Exporter) exportStream(ctx context.Context, encoder string, frames iter.Seq2[image.Image, error], total int, outPath string) (res Result, err error) {
	tmp, err := tempPath(outPath)
	if err != nil {
		return Result{}, err
	}
	defer func() {
		if err != nil {
			os.Remove(tmp)
		}
	}()

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, encoder,
		"-y", "-loglevel", "error",
		"-f", "image2pipe", "-c:v", "png",
		"-framerate", "1000/"+strconv.Itoa(e.opts.DelayMs),
		"-i", "-",
		"-filter_complex", "[0:v]split[a][b];[a]palettegen[p];[b][p]paletteuse",
		"-loop", strconv.Itoa(e.opts.Loop),
		"-f", "gif", tmp,
	)
	cmd.Stderr = &stderr
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return Result{}, err
	}
	if err := cmd.Start(); err != nil {
		return Result{}, fmt.Errorf("iniciando %s: %w", filepath.Base(encoder), err)
	}

	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	count, w, h := 0, 0, 0
	var writeErr error
	for img, ferr := range frames {
		if ferr != nil {
			stdin.Close()
			_ = cmd.Process.Kill()
			_ = cmd.Wait()
			return Result{}, errFrame{ferr}
		}
		if count == 0 {
			w, h, _ = e.targetSize(img, max(total, 1))
		}
		count++
		if writeErr == nil {
			writeErr = enc.Encode(stdin, fit(img, w, h))
		}
		if writeErr != nil {
			break
		}
	}
	stdin.Close()
	waitErr := cmd.Wait()

	if writeErr != nil || waitErr != nil {
		return Result{}, fmt.Errorf("%s: %w (%s)", filepath.Base(encoder), errors.Join(writeErr, waitErr), bytes.TrimSpace(stderr.Bytes()))
	}
	if count == 0 {
		return Result{}, errors.New("nenhum frame para codificar")
	}

	size, err := commit(tmp, outPath)
	if err != nil {
		return Result{}, err
	}
	return Result{Path: outPath, Bytes: size, Frames: count, Width: w, Height: h, Encoder: EncoderStream}, nil
}

// exportFallback guarda todos os frames, quantiza e grava com gif.EncodeAll.
func (e *Exporter) exportFallback(frames iter.Seq2[image.Image, error], outPath string) (res Result, err error) {
	var images []image.Image
	for img, ferr := range frames {
		if ferr != nil {
			return Result{}, errFrame{ferr}
		}
		images = append(images, img)
	}
	if len(images) == 0 {
		return Result{}, errors.New("nenhum frame para codificar")
	}

	w, h, resized := e.targetSize(images[0], len(images))
	if resized {
		log.Printf("[Export] Reduzindo frames para %dx%d para caber em %s", w, h, humanize.Bytes(uint64(e.opts.MaxBytes)))
	}

	anim := &gif.GIF{LoopCount: gifLoopCount(e.opts.Loop)}
	delay := max(1, e.opts.DelayMs/10)
	for _, img := range images {
		anim.Image = append(anim.Image, e.quantize(fit(img, w, h)))
		anim.Delay = append(anim.Delay, delay)
		anim.Disposal = append(anim.Disposal, gif.DisposalBackground)
	}

	tmp, err := tempPath(outPath)
	if err != nil {
		return Result{}, err
	}
	defer func() {
		if err != nil {
			os.Remove(tmp)
		}
	}()

	if err := writeFile(tmp, func(w io.Writer) error { return gif.EncodeAll(w, anim) }); err != nil {
		return Result{}, fmt.Errorf("gif.EncodeAll: %w", err)
	}
	size, err := commit(tmp, outPath)
	if err != nil {
		return Result{}, err
	}
	return Result{Path: outPath, Bytes: size, Frames: len(images), Width: w, Height: h, Encoder: EncoderFallback}, nil
}

func (e *Exporter) quantize(img image.Image) *image.Paletted {
	b := img.Bounds()
	out := image.NewPaletted(image.Rect(0, 0, b.Dx(), b.Dy()), palette.Plan9)
	var drawer draw.Drawer = draw.Src
	if e.opts.Quality >= 90 {
		drawer = draw.FloydSteinberg
	}
	drawer.Draw(out, out.Bounds(), img, b.Min)
	return out
}

// gifLoopCount converte a convenção de repetição (0 = infinito) para image/gif,
// onde 0 também é infinito e -1 toca uma vez.
func gifLoopCount(loop int) int {
	if loop < 0 {
		return -1
	}
	return loop
}
