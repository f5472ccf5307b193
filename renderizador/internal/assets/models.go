package assets

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"SchematicVision/shared/util"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/block_model.schema.json
var blockModelSchema []byte

const blockModelSchemaURL = "https://schematicvision.local/schemas/block_model.schema.json"

// --- Estruturas JSON ---

type rawFace struct {
	Texture   string    `json:"texture"`
	UV        []float32 `json:"uv,omitempty"`
	Rotation  int       `json:"rotation,omitempty"`
	CullFace  string    `json:"cullface,omitempty"`
	TintIndex *int      `json:"tintindex,omitempty"`
}

type rawElement struct {
	From  [3]float32         `json:"from"`
	To    [3]float32         `json:"to"`
	Faces map[string]rawFace `json:"faces"`
}

type rawModel struct {
	Parent   string            `json:"parent,omitempty"`
	Textures map[string]string `json:"textures,omitempty"`
	Elements *[]rawElement     `json:"elements,omitempty"`
}

// --- Definições resolvidas ---

// Face é uma face declarada de um elemento de modelo.
type Face struct {
	Dir       util.Direction
	Texture   string          // Referência de textura, normalmente "#variavel"
	UV        *[4]float32     // Retângulo UV em unidades 0-16; nil = derivado do elemento
	Rotation  int             // 0, 90, 180 ou 270
	CullFace  *util.Direction // Face some se houver vizinho nessa direção
	TintIndex *int
}

// Element é um cuboide do modelo em coordenadas 0-16.
type Element struct {
	From  [3]float32
	To    [3]float32
	Faces []Face // Ordenadas como util.AllDirections
}

// ModelDefinition é um modelo de bloco com a herança já resolvida.
type ModelDefinition struct {
	Name     string
	Textures map[string]string
	Elements []Element
	// HasElements indica se algum nível da cadeia declarou "elements".
	HasElements bool
}

// NormalizeModelName remove namespace e prefixo de caminho de um id de bloco ou modelo.
// Ex: "minecraft:block/stone" → "stone"
func NormalizeModelName(name string) string {
	if i := strings.IndexByte(name, ':'); i >= 0 {
		name = name[i+1:]
	}
	return strings.TrimPrefix(name, "block/")
}

// --- Resolver ---

// ModelResolver carrega modelos de <recursos>/models/block/<nome>.json, com cache.
type ModelResolver struct {
	modelsDir string
	schema    *jsonschema.Schema
	cache     map[string]*ModelDefinition
}

// NewModelResolver cria o resolver a partir do diretório de recursos.
func NewModelResolver(resourceDir string) (*ModelResolver, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(blockModelSchemaURL, bytes.NewReader(blockModelSchema)); err != nil {
		return nil, fmt.Errorf("falha ao registrar schema de modelos: %w", err)
	}
	schema, err := compiler.Compile(blockModelSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("falha ao compilar schema de modelos: %w", err)
	}

	return &ModelResolver{
		modelsDir: filepath.Join(resourceDir, "models", "block"),
		schema:    schema,
		cache:     make(map[string]*ModelDefinition),
	}, nil
}

// Load retorna o modelo resolvido ou nil se não houver definição utilizável.
// A ausência de modelo não é um erro: o chamador usa a textura de cubo.
func (r *ModelResolver) Load(name string) *ModelDefinition {
	name = NormalizeModelName(name)
	if def, ok := r.cache[name]; ok {
		return def
	}

	def := r.resolve(name, map[string]bool{})
	r.cache[name] = def
	return def
}

func (r *ModelResolver) resolve(name string, chain map[string]bool) *ModelDefinition {
	raw := r.readRaw(name)
	if raw == nil {
		return nil
	}
	chain[name] = true

	def := &ModelDefinition{Name: name, Textures: make(map[string]string)}

	if raw.Parent != "" {
		parentName := NormalizeModelName(raw.Parent)
		if chain[parentName] {
			log.Printf("[Modelos] Ciclo de herança em %s → %s, cadeia interrompida", name, parentName)
		} else if parent := r.resolve(parentName, chain); parent != nil {
			for k, v := range parent.Textures {
				def.Textures[k] = v
			}
			def.Elements = parent.Elements
			def.HasElements = parent.HasElements
		}
	}

	// Texturas do filho sobrescrevem as do pai
	for k, v := range raw.Textures {
		def.Textures[k] = v
	}

	// Elementos do filho substituem os do pai por inteiro
	if raw.Elements != nil {
		def.Elements = convertElements(*raw.Elements)
		def.HasElements = true
	}

	return def
}

func (r *ModelResolver) readRaw(name string) *rawModel {
	path := filepath.Join(r.modelsDir, name+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("[Modelos] Falha ao ler %s: %v", path, err)
		}
		return nil
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		log.Printf("[Modelos] JSON inválido em %s: %v", path, err)
		return nil
	}
	if err := r.schema.Validate(doc); err != nil {
		log.Printf("[Modelos] %s não segue o formato de modelo: %v", path, err)
		return nil
	}

	var raw rawModel
	if err := json.Unmarshal(data, &raw); err != nil {
		log.Printf("[Modelos] Falha ao decodificar %s: %v", path, err)
		return nil
	}
	return &raw
}

func convertElements(raw []rawElement) []Element {
	out := make([]Element, 0, len(raw))
	for _, re := range raw {
		el := Element{From: re.From, To: re.To}
		for _, dir := range util.AllDirections {
			rf, ok := re.Faces[dir.String()]
			if !ok {
				continue
			}
			face := Face{
				Dir:       dir,
				Texture:   rf.Texture,
				Rotation:  rf.Rotation,
				TintIndex: rf.TintIndex,
			}
			if len(rf.UV) == 4 {
				uv := [4]float32{rf.UV[0], rf.UV[1], rf.UV[2], rf.UV[3]}
				face.UV = &uv
			}
			if rf.CullFace != "" {
				if cull, ok := util.ParseDirection(rf.CullFace); ok {
					face.CullFace = &cull
				}
			}
			el.Faces = append(el.Faces, face)
		}
		out = append(out, el)
	}
	return out
}

// ResolveTextureRef segue a indireção "#variavel" até um nome de textura.
// Retorna false se a variável não existir ou a cadeia for longa demais.
func (d *ModelDefinition) ResolveTextureRef(ref string) (string, bool) {
	for range 8 {
		if !strings.HasPrefix(ref, "#") {
			return TextureName(ref), ref != ""
		}
		next, ok := d.Textures[ref[1:]]
		if !ok {
			return "", false
		}
		ref = next
	}
	return "", false
}

// TextureName remove namespace e prefixo "block/" de uma referência de textura.
func TextureName(ref string) string {
	return NormalizeModelName(ref)
}
