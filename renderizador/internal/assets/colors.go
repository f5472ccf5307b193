package assets

import (
	"sort"
	"strings"

	"SchematicVision/shared/util"
)

// KnownColor associa um bloco (ou fragmento de nome) a uma cor representativa.
type KnownColor struct {
	Token   string
	R, G, B uint8
}

// knownBlockColors são cores de blocos comuns, usadas quando nenhuma textura resolve.
var knownBlockColors = []KnownColor{
	{"stone", 128, 128, 128},
	{"dirt", 134, 96, 67},
	{"grass_block", 120, 172, 84},
	{"cobblestone", 136, 136, 136},
	{"glass", 210, 239, 243},
	{"sand", 226, 219, 171},
	{"water", 39, 85, 233},
	{"lava", 252, 102, 37},
	{"coal_ore", 57, 57, 57},
	{"iron_ore", 214, 190, 168},
	{"gold_ore", 246, 209, 63},
	{"diamond_ore", 99, 219, 213},
	{"emerald_ore", 63, 205, 119},
	{"redstone_ore", 170, 44, 43},
	{"lapis_ore", 39, 67, 138},
	{"bookshelf", 180, 144, 90},
	{"torch", 245, 220, 50},
	{"crafting_table", 162, 119, 79},
	{"furnace", 168, 168, 168},
	{"chest", 184, 146, 90},
	{"redstone_wire", 220, 0, 0},
	{"lever", 130, 130, 130},
	{"redstone_torch", 220, 70, 43},
	{"piston", 180, 180, 180},
	{"vine", 85, 130, 65},
	{"wet_sponge", 171, 167, 83},
	{"water_cauldron", 52, 79, 132},
}

// knownPatternColors casam por fragmento do nome; o fragmento mais longo vence.
var knownPatternColors = []KnownColor{
	{"white_", 240, 240, 240},
	{"orange_", 230, 120, 48},
	{"magenta_", 200, 80, 200},
	{"light_blue_", 120, 180, 225},
	{"yellow_", 255, 230, 74},
	{"lime_", 120, 200, 80},
	{"pink_", 230, 150, 165},
	{"gray_", 85, 85, 85},
	{"light_gray_", 160, 160, 160},
	{"cyan_", 40, 140, 165},
	{"purple_", 130, 60, 190},
	{"blue_", 50, 60, 170},
	{"brown_", 115, 75, 40},
	{"green_", 55, 120, 30},
	{"red_", 180, 60, 60},
	{"black_", 40, 40, 40},
	{"oak_", 186, 151, 96},
	{"spruce_", 114, 84, 48},
	{"birch_", 231, 221, 171},
	{"jungle_", 160, 115, 80},
	{"acacia_", 169, 92, 51},
	{"dark_oak_", 86, 67, 41},
	{"warped_", 43, 104, 99},
	{"crimson_", 148, 52, 58},
	{"stone_", 128, 128, 128},
	{"brick", 154, 89, 74},
	{"sandstone", 226, 219, 171},
	{"nether_brick", 48, 24, 27},
	{"quartz", 237, 232, 226},
	{"prismarine", 100, 171, 158},
	{"tuff", 109, 106, 97},
	{"log", 114, 84, 48},
	{"planks", 160, 115, 80},
	{"leaves", 65, 102, 48},
	{"glass", 210, 239, 243},
}

// knownColorMap é indexado pelo nome exato para lookup rápido.
var knownColorMap map[string]KnownColor

func init() {
	knownColorMap = make(map[string]KnownColor, len(knownBlockColors))
	for _, c := range knownBlockColors {
		knownColorMap[c.Token] = c
	}
	// Fragmentos mais específicos primeiro
	sort.SliceStable(knownPatternColors, func(i, j int) bool {
		return len(knownPatternColors[i].Token) > len(knownPatternColors[j].Token)
	})
}

// LookupKnownColor retorna a cor conhecida de um bloco pelo nome exato ou por fragmento.
// Ex: LookupKnownColor("minecraft:light_gray_wool") → {160, 160, 160}
func LookupKnownColor(blockID string) (util.RGB, bool) {
	name := NormalizeModelName(blockID)
	if c, ok := knownColorMap[name]; ok {
		return util.RGB{R: c.R, G: c.G, B: c.B}, true
	}
	for _, c := range knownPatternColors {
		if strings.Contains(name, c.Token) {
			return util.RGB{R: c.R, G: c.G, B: c.B}, true
		}
	}
	return util.RGB{}, false
}
