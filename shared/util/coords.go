package util

import "fmt"

// BlockPos representa a posição inteira de um bloco na estrutura.
// X = leste/oeste, Y = vertical, Z = norte/sul (sul positivo)
type BlockPos struct {
	X, Y, Z int32
}

// NewBlockPos cria uma nova posição de bloco.
func NewBlockPos(x, y, z int32) BlockPos {
	return BlockPos{X: x, Y: y, Z: z}
}

// Add soma duas posições.
func (p BlockPos) Add(other BlockPos) BlockPos {
	return BlockPos{
		X: p.X + other.X,
		Y: p.Y + other.Y,
		Z: p.Z + other.Z,
	}
}

// Sub subtrai duas posições.
func (p BlockPos) Sub(other BlockPos) BlockPos {
	return BlockPos{
		X: p.X - other.X,
		Y: p.Y - other.Y,
		Z: p.Z - other.Z,
	}
}

// String retorna a representação em string da posição.
func (p BlockPos) String() string {
	return fmt.Sprintf("(%d, %d, %d)", p.X, p.Y, p.Z)
}

// Direction é uma das seis direções de face de um cubo.
type Direction uint8

const (
	DirUp Direction = iota
	DirDown
	DirNorth
	DirSouth
	DirEast
	DirWest
)

// AllDirections lista as direções na ordem usada pelo meshing.
var AllDirections = [6]Direction{DirUp, DirDown, DirNorth, DirSouth, DirEast, DirWest}

// LateralDirections lista as direções horizontais no sentido horário a partir do norte.
var LateralDirections = [4]Direction{DirNorth, DirEast, DirSouth, DirWest}

// Offset retorna o deslocamento unitário da direção.
func (d Direction) Offset() BlockPos {
	switch d {
	case DirUp:
		return BlockPos{Y: 1}
	case DirDown:
		return BlockPos{Y: -1}
	case DirNorth:
		return BlockPos{Z: -1}
	case DirSouth:
		return BlockPos{Z: 1}
	case DirEast:
		return BlockPos{X: 1}
	case DirWest:
		return BlockPos{X: -1}
	}
	return BlockPos{}
}

// Normal retorna o vetor normal da direção.
func (d Direction) Normal() [3]float32 {
	o := d.Offset()
	return [3]float32{float32(o.X), float32(o.Y), float32(o.Z)}
}

// String retorna o nome da direção como aparece nos modelos de bloco.
func (d Direction) String() string {
	switch d {
	case DirUp:
		return "up"
	case DirDown:
		return "down"
	case DirNorth:
		return "north"
	case DirSouth:
		return "south"
	case DirEast:
		return "east"
	case DirWest:
		return "west"
	}
	return "unknown"
}

// ParseDirection converte o nome de uma face ("up", "north", ...) em Direction.
// "top" e "bottom" são aceitos como sinônimos de up e down.
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "up", "top":
		return DirUp, true
	case "down", "bottom":
		return DirDown, true
	case "north":
		return DirNorth, true
	case "south":
		return DirSouth, true
	case "east":
		return DirEast, true
	case "west":
		return DirWest, true
	}
	return DirUp, false
}

// AddDir retorna uma nova posição deslocada na direção especificada.
func (p BlockPos) AddDir(dir Direction) BlockPos {
	return p.Add(dir.Offset())
}

// Rotation é uma rotação em graus aplicada em ordem X, Y, Z.
type Rotation struct {
	X, Y, Z float32
}

// IsZero indica se a rotação é a identidade.
func (r Rotation) IsZero() bool {
	return r.X == 0 && r.Y == 0 && r.Z == 0
}

// FacingRotation retorna a rotação que leva um modelo voltado para o norte
// a ficar voltado para a direção dada.
func FacingRotation(d Direction) Rotation {
	switch d {
	case DirEast:
		return Rotation{Y: 90}
	case DirSouth:
		return Rotation{Y: 180}
	case DirWest:
		return Rotation{Y: 270}
	case DirUp:
		return Rotation{X: 90}
	case DirDown:
		return Rotation{X: 270}
	}
	return Rotation{}
}
