package meshing

import (
	"strings"

	"SchematicVision/renderizador/internal/assets"
	"SchematicVision/shared/mapdata"
	"SchematicVision/shared/util"
)

// SpecialKind classifica blocos cuja geometria depende de estado ou conexões.
type SpecialKind uint8

const (
	SpecialNone SpecialKind = iota
	SpecialRedstoneWire
	SpecialHopper
	SpecialPiston
	SpecialPistonHead
	SpecialGlassPane
)

// ClassifyBlock retorna a categoria especial de um bloco pelo nome.
func ClassifyBlock(blockID string) SpecialKind {
	name := mapdata.BlockName(blockID)
	switch {
	case name == "redstone_wire":
		return SpecialRedstoneWire
	case name == "hopper":
		return SpecialHopper
	case name == "piston", name == "sticky_piston":
		return SpecialPiston
	case name == "piston_head":
		return SpecialPistonHead
	case strings.HasSuffix(name, "glass_pane"):
		return SpecialGlassPane
	}
	return SpecialNone
}

// ModelInstance é um modelo resolvido posicionado com uma rotação.
type ModelInstance struct {
	Model    *assets.ModelDefinition
	Rotation util.Rotation
}

// ModelSource fornece modelos de bloco resolvidos (nil = sem modelo).
type ModelSource interface {
	Load(name string) *assets.ModelDefinition
}

// SpecialSelector escolhe as instâncias de modelo dos blocos especiais.
type SpecialSelector struct {
	models ModelSource
}

// NewSpecialSelector cria o seletor sobre uma fonte de modelos.
func NewSpecialSelector(models ModelSource) *SpecialSelector {
	return &SpecialSelector{models: models}
}

// Select retorna as instâncias para o voxel. Uma lista vazia significa que o bloco
// é tratado como cubo comum.
func (s *SpecialSelector) Select(v *mapdata.Voxel) []ModelInstance {
	switch ClassifyBlock(v.ID) {
	case SpecialRedstoneWire:
		return s.redstone(v.Properties)
	case SpecialHopper:
		return s.hopper(v.Properties)
	case SpecialPiston:
		return s.single(v.Name(), facingRotation(v.Properties, util.DirNorth))
	case SpecialPistonHead:
		return s.pistonHead(v.Properties)
	case SpecialGlassPane:
		return s.glassPane(v.Name(), v.Properties)
	case SpecialNone:
	}
	return nil
}

func (s *SpecialSelector) single(name string, rot util.Rotation) []ModelInstance {
	if m := s.models.Load(name); m != nil {
		return []ModelInstance{{Model: m, Rotation: rot}}
	}
	return nil
}

// facingRotation lê a propriedade "facing"; valores desconhecidos usam def.
func facingRotation(props mapdata.Properties, def util.Direction) util.Rotation {
	dir, ok := util.ParseDirection(props.Get("facing"))
	if !ok {
		dir = def
	}
	return util.FacingRotation(dir)
}

func (s *SpecialSelector) redstone(props mapdata.Properties) []ModelInstance {
	connected := false
	for _, dir := range util.LateralDirections {
		if wireState(props, dir) != "none" {
			connected = true
			break
		}
	}
	if !connected {
		return s.single("redstone_dust_dot", util.Rotation{})
	}

	side := s.models.Load("redstone_dust_side0")
	if side == nil {
		return nil
	}
	up := s.models.Load("redstone_dust_up")

	var out []ModelInstance
	for _, dir := range util.LateralDirections {
		state := wireState(props, dir)
		if state == "none" {
			continue
		}
		rot := util.FacingRotation(dir)
		out = append(out, ModelInstance{Model: side, Rotation: rot})
		if state == "up" && up != nil {
			out = append(out, ModelInstance{Model: up, Rotation: rot})
		}
	}
	return out
}

func wireState(props mapdata.Properties, dir util.Direction) string {
	if v := props.Get(dir.String()); v != "" {
		return v
	}
	return "none"
}

func (s *SpecialSelector) hopper(props mapdata.Properties) []ModelInstance {
	facing, ok := util.ParseDirection(props.Get("facing"))
	if !ok || facing == util.DirDown {
		return s.single("hopper", util.Rotation{})
	}
	return s.single("hopper_side", util.FacingRotation(facing))
}

func (s *SpecialSelector) pistonHead(props mapdata.Properties) []ModelInstance {
	sticky := props.Get("type") == "sticky"
	short := isTrue(props.Get("short"))

	name := "piston_head"
	if short {
		name += "_short"
	}
	if sticky {
		name += "_sticky"
	}
	return s.single(name, facingRotation(props, util.DirNorth))
}

func (s *SpecialSelector) glassPane(base string, props mapdata.Properties) []ModelInstance {
	var out []ModelInstance
	if post := s.models.Load(base + "_post"); post != nil {
		out = append(out, ModelInstance{Model: post})
	}

	var connected []util.Direction
	for _, dir := range util.LateralDirections {
		if isTrue(props.Get(dir.String())) {
			connected = append(connected, dir)
		}
	}

	if len(connected) == 0 {
		for _, variant := range []string{"_noside", "_noside_alt"} {
			if m := s.models.Load(base + variant); m != nil {
				out = append(out, ModelInstance{Model: m})
			}
		}
		return out
	}

	side := s.models.Load(base + "_side")
	if side == nil {
		return out
	}
	for _, dir := range connected {
		out = append(out, ModelInstance{Model: side, Rotation: util.FacingRotation(dir)})
	}
	return out
}

func isTrue(v string) bool {
	return strings.EqualFold(v, "true")
}
