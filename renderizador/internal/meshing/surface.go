package meshing

import (
	"SchematicVision/shared/util"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Surface é um quad plano pronto para o renderizador.
// Quads texturizados têm Texture != ""; os demais usam Color.
type Surface struct {
	Vertices [4][3]float32
	Normal   util.Direction
	BlockID  string

	Texture string
	UVs     [4][2]float32 // Sempre em [0,1]
	Repeat  [2]float32    // Quantas vezes a textura se repete em U e V
	Tint    *util.RGB

	Color util.RGB
}

// Textured indica se o quad usa textura.
func (s Surface) Textured() bool { return s.Texture != "" }

// faceShade é o multiplicador cosmético de brilho por direção.
func faceShade(dir util.Direction) float64 {
	switch dir {
	case util.DirUp:
		return 1.2
	case util.DirDown:
		return 0.7
	case util.DirNorth, util.DirSouth:
		return 0.9
	}
	return 0.8
}

// ShadeColor aplica o sombreamento da direção a uma cor plana.
func ShadeColor(c util.RGB, dir util.Direction) util.RGB {
	return c.Scale(faceShade(dir))
}

// TextureShade é a cor de vértice dos quads texturizados: branco escurecido pela
// direção, com a face de cima em brilho total.
func TextureShade(dir util.Direction) util.RGB {
	return util.RGB{R: 255, G: 255, B: 255}.Scale(faceShade(dir) / faceShade(util.DirUp))
}

// faceVertices retorna os 4 cantos da face de um cuboide from/to.
func faceVertices(dir util.Direction, from, to [3]float32) [4][3]float32 {
	x1, y1, z1 := from[0], from[1], from[2]
	x2, y2, z2 := to[0], to[1], to[2]

	switch dir {
	case util.DirSouth:
		return [4][3]float32{{x1, y1, z2}, {x1, y2, z2}, {x2, y2, z2}, {x2, y1, z2}}
	case util.DirEast:
		return [4][3]float32{{x2, y1, z1}, {x2, y1, z2}, {x2, y2, z2}, {x2, y2, z1}}
	case util.DirWest:
		return [4][3]float32{{x1, y1, z1}, {x1, y2, z1}, {x1, y2, z2}, {x1, y1, z2}}
	case util.DirUp:
		return [4][3]float32{{x1, y2, z1}, {x2, y2, z1}, {x2, y2, z2}, {x1, y2, z2}}
	case util.DirDown:
		return [4][3]float32{{x1, y1, z1}, {x1, y1, z2}, {x2, y1, z2}, {x2, y1, z1}}
	}
	// Norte
	return [4][3]float32{{x1, y1, z1}, {x2, y1, z1}, {x2, y2, z1}, {x1, y2, z1}}
}

// defaultUVRect deriva o retângulo UV (unidades 0-16) a partir dos limites do elemento.
func defaultUVRect(dir util.Direction, from, to [3]float32) [4]float32 {
	x1, y1, z1 := from[0], from[1], from[2]
	x2, y2, z2 := to[0], to[1], to[2]

	switch dir {
	case util.DirNorth, util.DirSouth:
		return [4]float32{x1, 16 - y2, x2, 16 - y1}
	case util.DirEast, util.DirWest:
		return [4]float32{z1, 16 - y2, z2, 16 - y1}
	case util.DirUp:
		return [4]float32{x1, z1, x2, z2}
	case util.DirDown:
		return [4]float32{x1, 16 - z2, x2, 16 - z1}
	}
	return [4]float32{0, 0, 16, 16}
}

func ratio(num, den float32) float32 {
	if den == 0 {
		return 0
	}
	return num / den
}

// vertexUVs interpola cada vértice dentro do retângulo UV pelos dois eixos do plano da face.
func vertexUVs(dir util.Direction, verts [4][3]float32, from, to [3]float32, rect [4]float32) [4][2]float32 {
	x1, y1, z1 := from[0], from[1], from[2]
	x2, y2, z2 := to[0], to[1], to[2]
	dx, dy, dz := x2-x1, y2-y1, z2-z1
	u1, v1, u2, v2 := rect[0], rect[1], rect[2], rect[3]

	var out [4][2]float32
	for i, v := range verts {
		var fu, fv float32
		switch dir {
		case util.DirSouth:
			fu, fv = ratio(x2-v[0], dx), ratio(y2-v[1], dy)
		case util.DirEast:
			fu, fv = ratio(v[2]-z1, dz), ratio(y2-v[1], dy)
		case util.DirWest:
			fu, fv = ratio(z2-v[2], dz), ratio(y2-v[1], dy)
		case util.DirUp:
			fu, fv = ratio(v[0]-x1, dx), ratio(v[2]-z1, dz)
		case util.DirDown:
			fu, fv = ratio(v[0]-x1, dx), ratio(z2-v[2], dz)
		default:
			fu, fv = ratio(v[0]-x1, dx), ratio(y2-v[1], dy)
		}
		out[i] = [2]float32{u1 + fu*(u2-u1), v1 + fv*(v2-v1)}
	}
	return out
}

// rotateUVs gira as coordenadas em múltiplos de 90° em torno do próprio retângulo.
func rotateUVs(uvs [4][2]float32, rect [4]float32, rotation int) [4][2]float32 {
	rotation = ((rotation % 360) + 360) % 360
	width, height := rect[2]-rect[0], rect[3]-rect[1]
	if rotation == 0 || width == 0 || height == 0 {
		return uvs
	}

	var out [4][2]float32
	for i, uv := range uvs {
		s := (uv[0] - rect[0]) / width
		t := (uv[1] - rect[1]) / height
		switch rotation {
		case 90:
			s, t = t, 1-s
		case 180:
			s, t = 1-s, 1-t
		case 270:
			s, t = 1-t, s
		}
		out[i] = [2]float32{rect[0] + s*width, rect[1] + t*height}
	}
	return out
}

// normalizeUVs converte unidades 0-16 para [0,1], saturando fora do intervalo.
func normalizeUVs(uvs [4][2]float32) [4][2]float32 {
	var out [4][2]float32
	for i, uv := range uvs {
		out[i] = [2]float32{util.Clamp(uv[0]/16, 0, 1), util.Clamp(uv[1]/16, 0, 1)}
	}
	return out
}

// rotationMatrix compõe a rotação de instância (X, depois Y, depois Z).
// O eixo Y gira no sentido horário visto de cima, para que a tabela de facing
// leve um modelo voltado ao norte para a direção nomeada.
func rotationMatrix(r util.Rotation) mgl32.Mat3 {
	m := mgl32.Ident3()
	if r.X != 0 {
		m = mgl32.Rotate3DX(mgl32.DegToRad(r.X)).Mul3(m)
	}
	if r.Y != 0 {
		m = mgl32.Rotate3DY(mgl32.DegToRad(-r.Y)).Mul3(m)
	}
	if r.Z != 0 {
		m = mgl32.Rotate3DZ(mgl32.DegToRad(r.Z)).Mul3(m)
	}
	return m
}

// rotateAboutCenter gira um ponto (espaço 0-1 do bloco) em torno de (0.5, 0.5, 0.5).
func rotateAboutCenter(m mgl32.Mat3, p [3]float32) [3]float32 {
	c := mgl32.Vec3{0.5, 0.5, 0.5}
	v := m.Mul3x1(mgl32.Vec3(p).Sub(c)).Add(c)
	return [3]float32{snapCoord(v[0]), snapCoord(v[1]), snapCoord(v[2])}
}

// snapCoord descarta o ruído de ponto flutuante das rotações de 90°.
func snapCoord(f float32) float32 {
	return math32.Round(f*1e4) / 1e4
}

// snapDirection retorna a direção de eixo mais próxima de um vetor.
func snapDirection(v mgl32.Vec3) util.Direction {
	best, bestDot := util.DirUp, float32(-2)
	for _, d := range util.AllDirections {
		n := d.Normal()
		if dot := v.Dot(mgl32.Vec3(n)); dot > bestDot {
			best, bestDot = d, dot
		}
	}
	return best
}
