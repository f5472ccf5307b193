package mapdata

import (
	"iter"
	"log"
	"sort"
	"strings"

	"SchematicVision/shared/renderr"
	"SchematicVision/shared/util"
)

// Properties são as propriedades de estado de um bloco (ex: facing=north, power=7).
type Properties map[string]string

// Get retorna o valor da propriedade ou "" se ausente.
func (p Properties) Get(key string) string {
	if p == nil {
		return ""
	}
	return p[key]
}

// RawBlock é um registro produzido pelo decodificador de estruturas.
type RawBlock struct {
	Pos        util.BlockPos
	ID         string
	Properties Properties
}

// Voxel é uma instância de bloco numa posição inteira.
type Voxel struct {
	Pos        util.BlockPos
	ID         string
	Properties Properties
}

// Name retorna o id sem namespace (ex: "minecraft:stone" → "stone").
func (v *Voxel) Name() string {
	return BlockName(v.ID)
}

// BlockName remove o namespace de um id de bloco.
func BlockName(id string) string {
	if i := strings.IndexByte(id, ':'); i >= 0 {
		return id[i+1:]
	}
	return id
}

// IsAir indica se o id representa um bloco vazio.
func IsAir(id string) bool {
	switch BlockName(id) {
	case "air", "cave_air", "void_air", "":
		return true
	}
	return false
}

// Bounds é a caixa alinhada aos eixos que contém todos os voxels (inclusiva).
type Bounds struct {
	Min, Max util.BlockPos
}

// Size retorna a dimensão da caixa em blocos por eixo.
func (b Bounds) Size() (x, y, z int32) {
	return b.Max.X - b.Min.X + 1, b.Max.Y - b.Min.Y + 1, b.Max.Z - b.Min.Z + 1
}

// MaxDimension retorna a maior dimensão da caixa.
func (b Bounds) MaxDimension() int32 {
	x, y, z := b.Size()
	return util.Max(x, util.Max(y, z))
}

// Center retorna o ponto médio da caixa, no espaço de blocos.
func (b Bounds) Center() [3]float32 {
	return [3]float32{
		float32(b.Min.X+b.Max.X) / 2,
		float32(b.Min.Y+b.Max.Y) / 2,
		float32(b.Min.Z+b.Max.Z) / 2,
	}
}

// VoxelModel é o mapa esparso posição→voxel de uma estrutura.
// Construído uma vez por job e imutável depois disso.
type VoxelModel struct {
	voxels map[util.BlockPos]*Voxel
	bounds Bounds
}

// Has indica se existe voxel na posição.
func (m *VoxelModel) Has(pos util.BlockPos) bool {
	_, ok := m.voxels[pos]
	return ok
}

// Count retorna o número de voxels.
func (m *VoxelModel) Count() int { return len(m.voxels) }

// Bounds retorna a caixa envolvente.
func (m *VoxelModel) Bounds() Bounds { return m.bounds }

// Voxels retorna os voxels ordenados por Y, Z, X para iteração determinística.
func (m *VoxelModel) Voxels() []*Voxel {
	out := make([]*Voxel, 0, len(m.voxels))
	for _, v := range m.voxels {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Pos, out[j].Pos
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		if a.Z != b.Z {
			return a.Z < b.Z
		}
		return a.X < b.X
	})
	return out
}

// BuildVoxelModel materializa o mapa de voxels a partir dos registros do decodificador.
// Blocos de ar são descartados; registros repetidos numa posição substituem os anteriores.
func BuildVoxelModel(blocks iter.Seq[RawBlock]) (*VoxelModel, error) {
	m := &VoxelModel{voxels: make(map[util.BlockPos]*Voxel)}
	skipped := 0

	for b := range blocks {
		if IsAir(b.ID) {
			skipped++
			continue
		}
		if len(m.voxels) == 0 {
			m.bounds = Bounds{Min: b.Pos, Max: b.Pos}
		} else {
			m.bounds.Min = util.BlockPos{
				X: util.Min(m.bounds.Min.X, b.Pos.X),
				Y: util.Min(m.bounds.Min.Y, b.Pos.Y),
				Z: util.Min(m.bounds.Min.Z, b.Pos.Z),
			}
			m.bounds.Max = util.BlockPos{
				X: util.Max(m.bounds.Max.X, b.Pos.X),
				Y: util.Max(m.bounds.Max.Y, b.Pos.Y),
				Z: util.Max(m.bounds.Max.Z, b.Pos.Z),
			}
		}
		m.voxels[b.Pos] = &Voxel{Pos: b.Pos, ID: b.ID, Properties: b.Properties}
	}

	if len(m.voxels) == 0 {
		return nil, renderr.New(renderr.KindModelBuild, "estrutura sem blocos visíveis (%d blocos de ar ignorados)", skipped)
	}

	x, y, z := m.bounds.Size()
	log.Printf("[Modelo] %d voxels, caixa %dx%dx%d (%d blocos de ar ignorados)", len(m.voxels), x, y, z, skipped)
	return m, nil
}
