package animation

import (
	"image"
	"iter"
	"strings"

	"SchematicVision/renderizador/internal/camera"
	"SchematicVision/shared/renderr"
	"SchematicVision/shared/util"

	"github.com/go-gl/mathgl/mgl32"
)

// Mode é o tipo de animação.
type Mode uint8

const (
	ModeRotation Mode = iota
	ModeOrbit
	ModeZoom
)

func (m Mode) String() string {
	switch m {
	case ModeRotation:
		return "rotation"
	case ModeOrbit:
		return "orbit"
	case ModeZoom:
		return "zoom"
	}
	return "unknown"
}

// ParseMode converte o nome do tipo de animação.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rotation", "rotate", "":
		return ModeRotation, nil
	case "orbit":
		return ModeOrbit, nil
	case "zoom":
		return ModeZoom, nil
	}
	return 0, renderr.New(renderr.KindInvalidArgument, "tipo de animação desconhecido %q", s)
}

// Ângulos fixos do modo zoom.
const (
	zoomAzimuth   = 45
	zoomElevation = 30
)

// Params reúne os parâmetros de todos os modos; cada modo lê apenas os seus.
type Params struct {
	Frames         int
	Elevation      float32 // rotation
	DistanceFactor float32 // rotation e orbit
	StartElevation float32 // orbit
	EndElevation   float32
	StartFactor    float32 // zoom
	EndFactor      float32
}

// Path é uma sequência finita de poses, consumida uma única vez.
type Path struct {
	mode   Mode
	center mgl32.Vec3
	maxDim float32
	params Params
	next   int
}

// NewPath cria o caminho de câmera ao redor de center.
func NewPath(mode Mode, center mgl32.Vec3, maxDim float32, params Params) *Path {
	return &Path{mode: mode, center: center, maxDim: maxDim, params: params}
}

// Mode retorna o modo do caminho.
func (p *Path) Mode() Mode { return p.mode }

// Len retorna o total de poses do caminho.
func (p *Path) Len() int { return max(p.params.Frames, 0) }

// Remaining retorna quantas poses ainda não foram produzidas.
func (p *Path) Remaining() int { return p.Len() - p.next }

// Next produz a próxima pose; false quando o caminho acabou.
func (p *Path) Next() (camera.Pose, bool) {
	if p.next >= p.Len() {
		return camera.Pose{}, false
	}
	i := p.next
	p.next++
	return p.pose(i), true
}

func (p *Path) pose(i int) camera.Pose {
	n := float32(p.Len())
	t := float32(i) / n
	prm := p.params

	switch p.mode {
	case ModeOrbit:
		elev := util.Lerp(prm.StartElevation, prm.EndElevation, t)
		return camera.Spherical(p.center, p.maxDim*prm.DistanceFactor, t*360, elev)
	case ModeZoom:
		factor := util.Lerp(prm.StartFactor, prm.EndFactor, t)
		return camera.Spherical(p.center, p.maxDim*factor, zoomAzimuth, zoomElevation)
	}
	return camera.Spherical(p.center, p.maxDim*prm.DistanceFactor, t*360, prm.Elevation)
}

// RenderFunc desenha uma pose.
type RenderFunc func(camera.Pose) (image.Image, error)

// Frames desenha cada pose assim que ela é produzida, antes de pedir a próxima.
// A sequência para no primeiro erro, já classificado como erro de frame.
func Frames(path *Path, render RenderFunc) iter.Seq2[image.Image, error] {
	return func(yield func(image.Image, error) bool) {
		for i := 0; ; i++ {
			pose, ok := path.Next()
			if !ok {
				return
			}
			img, err := render(pose)
			if err != nil {
				yield(nil, renderr.Wrap(renderr.KindFrameRender, err, "frame %d de %s (az=%.1f el=%.1f)", i, path.Mode(), pose.Azimuth, pose.Elevation))
				return
			}
			if !yield(img, nil) {
				return
			}
		}
	}
}
