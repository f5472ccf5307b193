package app

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"SchematicVision/renderizador/internal/animation"
	"SchematicVision/shared/config"
	"SchematicVision/shared/mapdata"
	"SchematicVision/shared/renderr"
)

// Limites validados antes de qualquer trabalho.
const (
	MinFrames     = 1
	MaxFrames     = 120
	MinDurationMs = 50
	MaxDurationMs = 500
	MinElevation  = 0
	MaxElevation  = 90
	MinWindow     = config.MinWindow
	MaxWindow     = config.MaxWindow
)

// Resolution descreve o tamanho da janela pedido.
// Native calcula o tamanho pela pegada isométrica com texturas em resolução nativa;
// Width/Height > 0 sem Native é um tamanho explícito; zerado usa o padrão da config.
type Resolution struct {
	Native    bool  `json:"native"`
	Width     int32 `json:"width,omitempty"`
	Height    int32 `json:"height,omitempty"`
	MaxWidth  int32 `json:"max_width,omitempty"`
	MaxHeight int32 `json:"max_height,omitempty"`
}

// Explicit indica um tamanho WxH fixo.
func (r Resolution) Explicit() bool { return !r.Native && r.Width > 0 && r.Height > 0 }

var (
	nativePattern = regexp.MustCompile(`^(native|auto)(?:[@:](\d+)(?:\s*[x×*_,]\s*(\d+))?)?$`)
	sizePattern   = regexp.MustCompile(`^(\d+)\s*[x×*_,]\s*(\d+)$`)
)

// ParseResolution interpreta "native", "native@W", "native@WxH", "default" ou "WxH".
// Vazio equivale a "native".
func ParseResolution(s string) (Resolution, error) {
	value := strings.ToLower(strings.TrimSpace(s))
	if value == "" {
		return Resolution{Native: true}, nil
	}

	if m := nativePattern.FindStringSubmatch(value); m != nil {
		res := Resolution{Native: true}
		if m[2] == "" {
			return res, nil
		}
		w, _ := strconv.Atoi(m[2])
		h := w
		if m[3] != "" {
			h, _ = strconv.Atoi(m[3])
		}
		if !windowInRange(w, h) {
			return Resolution{}, renderr.New(renderr.KindInvalidArgument,
				"limite nativo deve ficar entre %dx%d e %dx%d", MinWindow, MinWindow, MaxWindow, MaxWindow)
		}
		res.MaxWidth, res.MaxHeight = int32(w), int32(h)
		return res, nil
	}

	if value == "default" {
		return Resolution{}, nil
	}

	m := sizePattern.FindStringSubmatch(value)
	if m == nil {
		return Resolution{}, renderr.New(renderr.KindInvalidArgument,
			"resolução %q inválida; use native, default, native@limite ou LxA (ex: 1024x768)", s)
	}
	w, _ := strconv.Atoi(m[1])
	h, _ := strconv.Atoi(m[2])
	if !windowInRange(w, h) {
		return Resolution{}, renderr.New(renderr.KindInvalidArgument,
			"resolução deve ficar entre %dx%d e %dx%d", MinWindow, MinWindow, MaxWindow, MaxWindow)
	}
	return Resolution{Width: int32(w), Height: int32(h)}, nil
}

func windowInRange(w, h int) bool {
	return w >= MinWindow && h >= MinWindow && w <= MaxWindow && h <= MaxWindow
}

// Request é um pedido de animação.
type Request struct {
	Animation      string     `json:"animation"`
	Frames         int        `json:"frames"`
	DurationMs     int        `json:"duration_ms"`
	Elevation      float32    `json:"elevation"`
	Resolution     Resolution `json:"resolution"`
	MaxOutputBytes int64      `json:"max_output_bytes"`
	Optimize       bool       `json:"optimize"`
	OutputPath     string     `json:"output_path,omitempty"`
}

// DefaultRequest preenche um pedido com os padrões da config.
func DefaultRequest(cfg *config.Config) Request {
	return Request{
		Animation:      animation.ModeRotation.String(),
		Frames:         cfg.DefaultFrames,
		DurationMs:     cfg.DefaultDurationMs,
		Elevation:      cfg.DefaultElevation,
		Resolution:     Resolution{Native: true},
		MaxOutputBytes: cfg.MaxOutputBytes,
		Optimize:       cfg.Optimize,
	}
}

// Validate rejeita parâmetros fora dos limites antes de qualquer renderização.
func (r Request) Validate() error {
	if _, err := animation.ParseMode(r.Animation); err != nil {
		return err
	}
	if r.Frames < MinFrames || r.Frames > MaxFrames {
		return renderr.New(renderr.KindInvalidArgument, "frames deve ficar entre %d e %d, recebido %d", MinFrames, MaxFrames, r.Frames)
	}
	if r.DurationMs < MinDurationMs || r.DurationMs > MaxDurationMs {
		return renderr.New(renderr.KindInvalidArgument, "duração deve ficar entre %d e %d ms, recebido %d", MinDurationMs, MaxDurationMs, r.DurationMs)
	}
	// Forma negada para que NaN também seja rejeitado
	if !(r.Elevation >= MinElevation && r.Elevation <= MaxElevation) {
		return renderr.New(renderr.KindInvalidArgument, "elevação deve ficar entre %d e %d graus, recebido %g", MinElevation, MaxElevation, r.Elevation)
	}
	return r.Resolution.validate()
}

func (r Resolution) validate() error {
	if r.Explicit() && !windowInRange(int(r.Width), int(r.Height)) {
		return renderr.New(renderr.KindInvalidArgument, "janela %dx%d fora dos limites", r.Width, r.Height)
	}
	if r.MaxWidth != 0 || r.MaxHeight != 0 {
		if !windowInRange(int(r.MaxWidth), int(r.MaxHeight)) {
			return renderr.New(renderr.KindInvalidArgument, "limite nativo %dx%d fora dos limites", r.MaxWidth, r.MaxHeight)
		}
	}
	return nil
}

// StillRequest é um pedido de imagem única.
type StillRequest struct {
	Resolution Resolution `json:"resolution"`
	// Eye posiciona a câmera explicitamente; nil usa a pose isométrica.
	Eye        *[3]float32 `json:"eye,omitempty"`
	OutputPath string      `json:"output_path,omitempty"`
}

// Validate rejeita tamanhos de janela fora dos limites e olhos não finitos.
func (r StillRequest) Validate() error {
	if r.Eye != nil {
		for _, v := range r.Eye {
			if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
				return renderr.New(renderr.KindInvalidArgument, "posição da câmera %v não é finita", *r.Eye)
			}
		}
	}
	return r.Resolution.validate()
}

// Constantes empíricas da pegada isométrica.
const (
	isoCos30      = 0.866
	windowPadding = 1.2
)

// NativeWindowSize estima a janela que mostra o modelo com cada texel de textura
// ocupando cerca de um pixel. É uma aproximação da projeção isométrica, não a
// projeção real da câmera.
func NativeWindowSize(bounds mapdata.Bounds, textureSize int, maxW, maxH int32) (int32, int32) {
	sx, sy, sz := bounds.Size()
	tex := float64(textureSize)
	w := float64(sx+sz) * isoCos30 * tex
	h := (float64(sy) + 0.5*float64(sx+sz)) * tex

	w *= windowPadding
	h *= windowPadding
	return clampWindow(int32(w), maxW), clampWindow(int32(h), maxH)
}

func clampWindow(v, hi int32) int32 {
	return max(MinWindow, min(v, max(hi, MinWindow)))
}
