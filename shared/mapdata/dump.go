package mapdata

import (
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"slices"

	"SchematicVision/shared/util"
)

// dumpFile é o formato JSON emitido pelo decodificador de estruturas.
type dumpFile struct {
	Regions []dumpRegion `json:"regions"`
}

type dumpRegion struct {
	Name   string      `json:"name"`
	Blocks []dumpBlock `json:"blocks"`
}

type dumpBlock struct {
	Pos        [3]int32          `json:"pos"`
	ID         string            `json:"id"`
	Properties map[string]string `json:"properties,omitempty"`
}

// DecodeDump lê um dump de estrutura e achata todas as regiões numa única lista.
func DecodeDump(r io.Reader) ([]RawBlock, error) {
	var f dumpFile
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("dump de estrutura: %w", err)
	}

	var out []RawBlock
	for _, region := range f.Regions {
		for _, b := range region.Blocks {
			out = append(out, RawBlock{
				Pos:        util.NewBlockPos(b.Pos[0], b.Pos[1], b.Pos[2]),
				ID:         b.ID,
				Properties: Properties(b.Properties),
			})
		}
	}
	return out, nil
}

// Records adapta uma lista de registros para BuildVoxelModel.
func Records(blocks []RawBlock) iter.Seq[RawBlock] {
	return slices.Values(blocks)
}
