package render

import (
	"cmp"
	"fmt"
	"image"
	"slices"

	"SchematicVision/renderizador/internal/meshing"
	"SchematicVision/shared/util"
)

// GeometryData contém os buffers de vértices de uma malha (dois triângulos por quad).
type GeometryData struct {
	Vertices []float32
	Normals  []float32
	Colors   []uint8
	UVs      []float32
	Repeats  []float32 // Repetição da textura por eixo, aplicada no fragment shader
}

// VertexCount retorna o número de vértices da malha.
func (g GeometryData) VertexCount() int { return len(g.Vertices) / 3 }

// TriangleCount retorna o número de triângulos da malha.
func (g GeometryData) TriangleCount() int { return g.VertexCount() / 3 }

// MeshBuffer auxilia na construção de malhas.
type MeshBuffer struct {
	Geometry GeometryData
}

// AddFaceUV adiciona um quad texturizado ao buffer.
func (b *MeshBuffer) AddFaceUV(v [4][3]float32, uv [4][2]float32, rep [2]float32, n [3]float32, c [4]uint8) {
	// Triângulo 1 (v1, v2, v3)
	b.addVertexUV(v[0], uv[0], rep, n, c)
	b.addVertexUV(v[1], uv[1], rep, n, c)
	b.addVertexUV(v[2], uv[2], rep, n, c)

	// Triângulo 2 (v1, v3, v4)
	b.addVertexUV(v[0], uv[0], rep, n, c)
	b.addVertexUV(v[2], uv[2], rep, n, c)
	b.addVertexUV(v[3], uv[3], rep, n, c)
}

// AddFace adiciona um quad de cor plana ao buffer.
func (b *MeshBuffer) AddFace(v [4][3]float32, n [3]float32, c [4]uint8) {
	b.AddFaceUV(v, [4][2]float32{}, [2]float32{1, 1}, n, c)
}

func (b *MeshBuffer) addVertexUV(v [3]float32, uv [2]float32, rep [2]float32, n [3]float32, c [4]uint8) {
	b.Geometry.Vertices = append(b.Geometry.Vertices, v[0], v[1], v[2])
	b.Geometry.Normals = append(b.Geometry.Normals, n[0], n[1], n[2])
	b.Geometry.Colors = append(b.Geometry.Colors, c[0], c[1], c[2], c[3])
	b.Geometry.UVs = append(b.Geometry.UVs, uv[0], uv[1])
	b.Geometry.Repeats = append(b.Geometry.Repeats, rep[0], rep[1])
}

// Batch é um lote de quads que compartilham o mesmo material.
// Lotes texturizados carregam a imagem já tingida; o lote plano usa só cores de vértice.
type Batch struct {
	Texture  string
	Tint     *util.RGB
	Image    *image.NRGBA
	Geometry GeometryData
}

// Flat indica o lote de cor plana.
func (b Batch) Flat() bool { return b.Texture == "" }

// Key identifica o material do lote em logs e caches de GPU.
func (b Batch) Key() string {
	if b.Flat() {
		return "<flat>"
	}
	if b.Tint == nil {
		return b.Texture
	}
	return fmt.Sprintf("%s#%02x%02x%02x", b.Texture, b.Tint.R, b.Tint.G, b.Tint.B)
}

// TextureSource entrega a imagem de uma textura com tint opcional.
type TextureSource interface {
	TintedTexture(name string, tint *util.RGB) *image.NRGBA
}

type batchKey struct {
	texture string
	tinted  bool
	tint    util.RGB
}

func rgba(c util.RGB) [4]uint8 { return [4]uint8{c.R, c.G, c.B, 255} }

// BuildBatches agrupa os quads em um lote por (textura, tint) e um lote plano.
// A ordem é determinística: lotes texturizados por chave e o plano por último.
func BuildBatches(surfaces []meshing.Surface, textures TextureSource) []Batch {
	buffers := make(map[batchKey]*MeshBuffer)
	tints := make(map[batchKey]*util.RGB)
	var flat MeshBuffer

	for _, s := range surfaces {
		n := s.Normal.Normal()
		if !s.Textured() {
			flat.AddFace(s.Vertices, n, rgba(s.Color))
			continue
		}

		k := batchKey{texture: s.Texture}
		if s.Tint != nil {
			k.tinted, k.tint = true, *s.Tint
		}
		buf, ok := buffers[k]
		if !ok {
			buf = &MeshBuffer{}
			buffers[k] = buf
			tints[k] = s.Tint
		}
		buf.AddFaceUV(s.Vertices, s.UVs, s.Repeat, n, rgba(meshing.TextureShade(s.Normal)))
	}

	keys := make([]batchKey, 0, len(buffers))
	for k := range buffers {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b batchKey) int {
		return cmp.Or(
			cmp.Compare(a.texture, b.texture),
			compareBool(a.tinted, b.tinted),
			cmp.Compare(a.tint.R, b.tint.R),
			cmp.Compare(a.tint.G, b.tint.G),
			cmp.Compare(a.tint.B, b.tint.B),
		)
	})

	out := make([]Batch, 0, len(keys)+1)
	for _, k := range keys {
		b := Batch{Texture: k.texture, Tint: tints[k], Geometry: buffers[k].Geometry}
		if textures != nil {
			b.Image = textures.TintedTexture(k.texture, b.Tint)
		}
		out = append(out, b)
	}
	if flat.Geometry.VertexCount() > 0 {
		out = append(out, Batch{Geometry: flat.Geometry})
	}
	return out
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	}
	return 1
}
