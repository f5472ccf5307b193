package meshing

import (
	"log"
	"strings"

	"SchematicVision/renderizador/internal/assets"
	"SchematicVision/shared/mapdata"
	"SchematicVision/shared/renderr"
	"SchematicVision/shared/util"

	"github.com/go-gl/mathgl/mgl32"
)

// SurfaceBuilder converte um VoxelModel na lista de quads visíveis.
// Cubos comuns passam pelo greedy mesher; blocos especiais emitem os elementos do modelo.
type SurfaceBuilder struct {
	model    *mapdata.VoxelModel
	textures *assets.TextureSampler
	selector *SpecialSelector

	faceKeys map[faceKeyCacheKey]materialKey
}

type faceKeyCacheKey struct {
	blockID string
	dir     util.Direction
}

// NewSurfaceBuilder cria o builder para um único job.
func NewSurfaceBuilder(model *mapdata.VoxelModel, models ModelSource, textures *assets.TextureSampler) *SurfaceBuilder {
	return &SurfaceBuilder{
		model:    model,
		textures: textures,
		selector: NewSpecialSelector(models),
		faceKeys: make(map[faceKeyCacheKey]materialKey),
	}
}

// Build percorre o modelo uma vez e retorna todos os quads.
// Falha com erro de construção de malha se nenhum quad for gerado.
func (b *SurfaceBuilder) Build() ([]Surface, error) {
	var (
		surfaces []Surface
		cubes    []*mapdata.Voxel
		special  int
	)

	for _, v := range b.model.Voxels() {
		instances := b.selector.Select(v)
		if len(instances) == 0 {
			cubes = append(cubes, v)
			continue
		}
		special++
		for _, inst := range instances {
			surfaces = b.appendModelSurfaces(surfaces, v, inst)
		}
	}
	modelQuads := len(surfaces)

	surfaces = append(surfaces, b.greedyCubes(cubes)...)

	if len(surfaces) == 0 {
		return nil, renderr.New(renderr.KindMeshConstruction, "nenhuma face visível em %d voxels", b.model.Count())
	}

	log.Printf("[Meshing] %d quads: %d de %d cubos (greedy), %d de %d blocos especiais",
		len(surfaces), len(surfaces)-modelQuads, len(cubes), modelQuads, special)
	return surfaces, nil
}

// appendModelSurfaces emite as faces de cada elemento de uma instância de modelo.
func (b *SurfaceBuilder) appendModelSurfaces(out []Surface, v *mapdata.Voxel, inst ModelInstance) []Surface {
	def := inst.Model
	if def == nil || !def.HasElements {
		return out
	}

	rotated := !inst.Rotation.IsZero()
	rot := rotationMatrix(inst.Rotation)
	isWire := ClassifyBlock(v.ID) == SpecialRedstoneWire
	origin := [3]float32{float32(v.Pos.X), float32(v.Pos.Y), float32(v.Pos.Z)}

	turn := func(d util.Direction) util.Direction {
		if !rotated {
			return d
		}
		return snapDirection(rot.Mul3x1(mgl32.Vec3(d.Normal())))
	}

	for _, el := range def.Elements {
		for _, face := range el.Faces {
			if face.CullFace != nil && b.model.Has(v.Pos.AddDir(turn(*face.CullFace))) {
				continue
			}

			texName, resolved := def.ResolveTextureRef(face.Texture)
			if isWire && resolved && strings.Contains(texName, "overlay") {
				continue
			}

			local := faceVertices(face.Dir, el.From, el.To)
			rect := defaultUVRect(face.Dir, el.From, el.To)
			if face.UV != nil {
				rect = *face.UV
			}
			uvs := vertexUVs(face.Dir, local, el.From, el.To, rect)
			uvs = normalizeUVs(rotateUVs(uvs, rect, face.Rotation))

			var verts [4][3]float32
			for i, lv := range local {
				p := [3]float32{lv[0] / 16, lv[1] / 16, lv[2] / 16}
				if rotated {
					p = rotateAboutCenter(rot, p)
				}
				verts[i] = [3]float32{p[0] + origin[0], p[1] + origin[1], p[2] + origin[2]}
			}

			s := Surface{Vertices: verts, Normal: turn(face.Dir), BlockID: v.ID}
			if resolved && b.textures.Has(texName) {
				s.Texture = texName
				s.UVs = uvs
				s.Repeat = [2]float32{1, 1}
				s.Tint = assets.TintFor(v.ID, v.Properties, face.TintIndex)
			} else {
				s.Color = ShadeColor(b.textures.FaceColor(def, face, v.ID, v.Properties), s.Normal)
			}
			out = append(out, s)
		}
	}
	return out
}

// faceKey retorna a chave de material de uma face de cubo, com cache por (bloco, direção).
func (b *SurfaceBuilder) faceKey(blockID string, dir util.Direction) materialKey {
	ck := faceKeyCacheKey{blockID: blockID, dir: dir}
	if k, ok := b.faceKeys[ck]; ok {
		return k
	}

	face := assets.CubeFaceFor(dir)
	var k materialKey
	if name, ok := b.textures.BlockTextureName(blockID, face); ok {
		k = materialKey{texture: name}
	} else {
		k = materialKey{color: ShadeColor(b.textures.BlockFaceColor(blockID, face), dir)}
	}
	b.faceKeys[ck] = k
	return k
}
