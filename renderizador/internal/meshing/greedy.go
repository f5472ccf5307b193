package meshing

import (
	"slices"

	"SchematicVision/shared/mapdata"
	"SchematicVision/shared/util"
)

// materialKey identifica o material de uma face: textura ou cor plana já sombreada.
type materialKey struct {
	texture string
	color   util.RGB
}

type cell struct {
	key     materialKey
	blockID string
	filled  bool
}

type planeCell struct {
	u, v int32
}

// planeCoords retorna o plano (coordenada ao longo da normal) e a célula (u, v) de uma posição.
func planeCoords(dir util.Direction, p util.BlockPos) (int32, planeCell) {
	switch dir {
	case util.DirUp, util.DirDown:
		return p.Y, planeCell{p.X, p.Z}
	case util.DirNorth, util.DirSouth:
		return p.Z, planeCell{p.X, p.Y}
	}
	return p.X, planeCell{p.Z, p.Y}
}

// greedyCubes funde as faces visíveis dos cubos, uma passada por direção.
func (b *SurfaceBuilder) greedyCubes(cubes []*mapdata.Voxel) []Surface {
	var out []Surface
	for _, dir := range util.AllDirections {
		planes := make(map[int32]map[planeCell]cell)
		for _, v := range cubes {
			if b.model.Has(v.Pos.AddDir(dir)) {
				continue
			}
			plane, pc := planeCoords(dir, v.Pos)
			cells, ok := planes[plane]
			if !ok {
				cells = make(map[planeCell]cell)
				planes[plane] = cells
			}
			cells[pc] = cell{key: b.faceKey(v.ID, dir), blockID: v.ID, filled: true}
		}

		keys := make([]int32, 0, len(planes))
		for k := range planes {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, plane := range keys {
			out = mergePlane(out, dir, plane, planes[plane])
		}
	}
	return out
}

// mergePlane cobre as células de um plano com retângulos gulosos, linha a linha:
// cresce a largura primeiro e depois a altura sob a largura inteira.
func mergePlane(out []Surface, dir util.Direction, plane int32, cells map[planeCell]cell) []Surface {
	first := true
	var uMin, uMax, vMin, vMax int32
	for pc := range cells {
		if first {
			uMin, uMax, vMin, vMax = pc.u, pc.u, pc.v, pc.v
			first = false
			continue
		}
		uMin, uMax = util.Min(uMin, pc.u), util.Max(uMax, pc.u)
		vMin, vMax = util.Min(vMin, pc.v), util.Max(vMax, pc.v)
	}

	cols := int(uMax - uMin + 1)
	rows := int(vMax - vMin + 1)
	mask := make([]cell, rows*cols)
	for pc, c := range cells {
		mask[int(pc.v-vMin)*cols+int(pc.u-uMin)] = c
	}
	visited := make([]bool, rows*cols)

	open := func(row, col int, key materialKey) bool {
		i := row*cols + col
		return mask[i].filled && !visited[i] && mask[i].key == key
	}

	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			i := row*cols + col
			if !mask[i].filled || visited[i] {
				continue
			}
			current := mask[i]

			// Largura máxima (W)
			w := 1
			for col+w < cols && open(row, col+w, current.key) {
				w++
			}

			// Altura máxima (H) para essa largura
			h := 1
		loopH:
			for row+h < rows {
				for k := 0; k < w; k++ {
					if !open(row+h, col+k, current.key) {
						break loopH
					}
				}
				h++
			}

			// Marcar a área processada
			for jh := 0; jh < h; jh++ {
				for jw := 0; jw < w; jw++ {
					visited[(row+jh)*cols+col+jw] = true
				}
			}

			u0 := uMin + int32(col)
			v0 := vMin + int32(row)
			out = append(out, mergedSurface(dir, plane, u0, v0, int32(w), int32(h), current))
		}
	}
	return out
}

// mergedSurface gera o quad que cobre um retângulo w×h de células do plano.
func mergedSurface(dir util.Direction, plane, u0, v0, w, h int32, c cell) Surface {
	var origin [3]float32
	var size [3]float32
	switch dir {
	case util.DirUp, util.DirDown:
		origin = [3]float32{float32(u0), float32(plane), float32(v0)}
		size = [3]float32{float32(w), 1, float32(h)}
	case util.DirNorth, util.DirSouth:
		origin = [3]float32{float32(u0), float32(v0), float32(plane)}
		size = [3]float32{float32(w), float32(h), 1}
	default:
		origin = [3]float32{float32(plane), float32(v0), float32(u0)}
		size = [3]float32{1, float32(h), float32(w)}
	}

	local := faceVertices(dir, [3]float32{}, size)
	s := Surface{Normal: dir, BlockID: c.blockID}
	for i, lv := range local {
		s.Vertices[i] = [3]float32{lv[0] + origin[0], lv[1] + origin[1], lv[2] + origin[2]}
	}

	if c.key.texture != "" {
		s.Texture = c.key.texture
		s.UVs = normalizeUVs(vertexUVs(dir, local, [3]float32{}, size, [4]float32{0, 0, 16, 16}))
		s.Repeat = [2]float32{float32(w), float32(h)}
	} else {
		s.Color = c.key.color
	}
	return s
}
