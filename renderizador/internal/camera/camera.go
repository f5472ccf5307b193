package camera

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Pose é uma posição de câmera pronta para o renderizador.
// Azimute e elevação em graus; o azimute 0 olha a partir de +Z.
type Pose struct {
	Eye    mgl32.Vec3
	Target mgl32.Vec3
	Up     mgl32.Vec3

	Azimuth   float32
	Elevation float32
	Radius    float32
}

// degenerateCos é o limiar abaixo do qual a câmera está praticamente no zênite.
const degenerateCos = 1e-4

// Spherical converte azimute/elevação/raio em posição cartesiana ao redor do alvo.
//
//	X = r * cos(elev) * sin(azim)
//	Y = r * sin(elev)
//	Z = r * cos(elev) * cos(azim)
func Spherical(target mgl32.Vec3, radius, azimuth, elevation float32) Pose {
	az := mgl32.DegToRad(azimuth)
	el := mgl32.DegToRad(elevation)
	cosEl, sinEl := math32.Cos(el), math32.Sin(el)
	sinAz, cosAz := math32.Sin(az), math32.Cos(az)

	offset := mgl32.Vec3{radius * cosEl * sinAz, radius * sinEl, radius * cosEl * cosAz}

	up := mgl32.Vec3{0, 1, 0}
	if math32.Abs(cosEl) < degenerateCos {
		// Olhando reto para baixo: o "para cima" da tela aponta para longe da câmera
		up = mgl32.Vec3{-sinAz, 0, -cosAz}
	}

	return Pose{
		Eye:       target.Add(offset),
		Target:    target,
		Up:        up,
		Azimuth:   azimuth,
		Elevation: elevation,
		Radius:    radius,
	}
}

// Isometric posiciona a câmera em center + (r, r, r), com r = maxDim * distanceFactor.
func Isometric(center mgl32.Vec3, maxDim, distanceFactor float32) Pose {
	r := maxDim * distanceFactor
	offset := mgl32.Vec3{r, r, r}
	return Pose{
		Eye:       center.Add(offset),
		Target:    center,
		Up:        mgl32.Vec3{0, 1, 0},
		Azimuth:   45,
		Elevation: mgl32.RadToDeg(math32.Atan2(r, math32.Hypot(r, r))),
		Radius:    offset.Len(),
	}
}

// LookAt monta a pose de um olho explícito mirando o alvo.
func LookAt(eye, target mgl32.Vec3) Pose {
	off := eye.Sub(target)
	r := off.Len()
	if r == 0 {
		return Pose{Eye: eye, Target: target, Up: mgl32.Vec3{0, 1, 0}}
	}
	az := mgl32.RadToDeg(math32.Atan2(off.X(), off.Z()))
	el := mgl32.RadToDeg(math32.Asin(mgl32.Clamp(off.Y()/r, -1, 1)))

	p := Spherical(target, r, az, el)
	p.Eye = eye
	return p
}
