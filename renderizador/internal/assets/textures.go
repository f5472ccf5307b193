package assets

import (
	"encoding/json"
	"image"
	"image/color"
	_ "image/png"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"SchematicVision/shared/mapdata"
	"SchematicVision/shared/util"

	"github.com/h2non/filetype"
	xdraw "golang.org/x/image/draw"
)

// defaultTextureGray é a cor da textura usada quando nenhuma imagem é encontrada.
const defaultTextureGray = 128

// CubeFace é a categoria de face usada para procurar texturas de cubo.
type CubeFace uint8

const (
	FaceSide CubeFace = iota
	FaceTop
	FaceBottom
)

// CubeFaceFor converte uma direção na categoria de face de cubo.
func CubeFaceFor(dir util.Direction) CubeFace {
	switch dir {
	case util.DirUp:
		return FaceTop
	case util.DirDown:
		return FaceBottom
	}
	return FaceSide
}

func (f CubeFace) String() string {
	switch f {
	case FaceTop:
		return "top"
	case FaceBottom:
		return "bottom"
	}
	return "side"
}

// resourcePackConfig é o root do resourcepack.json
type resourcePackConfig struct {
	SelectedPack   string         `json:"selected_pack"`
	AvailablePacks []string       `json:"available_packs"`
	TextureSize    map[string]int `json:"texture_size"`
}

type tintKey struct {
	name    string
	tint    util.RGB
	hasTint bool
}

type colorKey struct {
	texture string
	uv      [4]float32
	tint    util.RGB
	hasTint bool
}

type blockFaceKey struct {
	block string
	face  CubeFace
}

// TextureSampler resolve nomes de textura em imagens, aplica tint e calcula cores médias.
// Pertence a um único job; os caches não são compartilhados.
type TextureSampler struct {
	available   map[string]string // nome → caminho do PNG
	textureSize int
	native      bool
	nativeSize  int

	defaultTex *image.NRGBA
	images     map[string]*image.NRGBA
	tinted     map[tintKey]*image.NRGBA
	colors     map[colorKey]util.RGB
	blockColor map[blockFaceKey]util.RGB
}

// NewTextureSampler indexa as texturas de <recursos>/textures/block.
// textureSize <= 0 usa o tamanho declarado no resourcepack.json (ou 16).
func NewTextureSampler(resourceDir string, textureSize int, native bool) *TextureSampler {
	pack := loadResourcePack(resourceDir)
	blockDir := filepath.Join(resourceDir, "textures", "block")

	var dirs []string
	if pack.SelectedPack != "" {
		dirs = append(dirs, filepath.Join(blockDir, pack.SelectedPack))
		for _, p := range pack.AvailablePacks {
			if p != pack.SelectedPack {
				dirs = append(dirs, filepath.Join(blockDir, p))
			}
		}
	} else {
		dirs = append(dirs, blockDir)
	}

	if textureSize <= 0 {
		textureSize = 16
		if size, ok := pack.TextureSize[pack.SelectedPack]; ok && size > 0 {
			textureSize = size
		}
	}

	s := &TextureSampler{
		available:   scanTextures(dirs),
		textureSize: textureSize,
		native:      native,
		images:      make(map[string]*image.NRGBA),
		tinted:      make(map[tintKey]*image.NRGBA),
		colors:      make(map[colorKey]util.RGB),
		blockColor:  make(map[blockFaceKey]util.RGB),
	}
	s.defaultTex = solidImage(textureSize, textureSize, color.NRGBA{defaultTextureGray, defaultTextureGray, defaultTextureGray, 255})

	log.Printf("[Texturas] %d texturas indexadas (tamanho %dpx, nativo=%v)", len(s.available), textureSize, native)
	return s
}

func loadResourcePack(resourceDir string) resourcePackConfig {
	var cfg resourcePackConfig
	data, err := os.ReadFile(filepath.Join(resourceDir, "resourcepack.json"))
	if err != nil {
		return cfg
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		log.Printf("[Texturas] resourcepack.json inválido, ignorando: %v", err)
		return resourcePackConfig{}
	}
	return cfg
}

// scanTextures lista os PNGs de cada diretório; o primeiro diretório com um nome vence.
func scanTextures(dirs []string) map[string]string {
	available := make(map[string]string)
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ".png") {
				continue
			}
			name := strings.TrimSuffix(e.Name(), ".png")
			if _, seen := available[name]; seen {
				continue
			}
			path := filepath.Join(dir, e.Name())
			if !isImageFile(path) {
				log.Printf("[Texturas] %s não é uma imagem, ignorando", path)
				continue
			}
			available[name] = path
		}
	}
	return available
}

func isImageFile(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	head := make([]byte, 262)
	n, _ := f.Read(head)
	return filetype.IsImage(head[:n])
}

func solidImage(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
	}
	return img
}

// TextureSize retorna o tamanho em pixels de uma textura de bloco fora do modo nativo.
func (s *TextureSampler) TextureSize() int { return s.textureSize }

// Has indica se existe uma textura com o nome dado.
func (s *TextureSampler) Has(name string) bool {
	_, ok := s.available[name]
	return ok
}

// Texture retorna a imagem da textura, redimensionada para o tamanho de bloco
// (exceto no modo nativo). Texturas ausentes ou ilegíveis viram a textura cinza padrão.
func (s *TextureSampler) Texture(name string) *image.NRGBA {
	if img, ok := s.images[name]; ok {
		return img
	}

	img := s.load(name)
	if img == nil {
		img = s.defaultTex
	} else if !s.native && (img.Bounds().Dx() != s.textureSize || img.Bounds().Dy() != s.textureSize) {
		img = resizeNearest(img, s.textureSize, s.textureSize)
	}
	s.images[name] = img
	return img
}

func (s *TextureSampler) load(name string) *image.NRGBA {
	path, ok := s.available[name]
	if !ok {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		log.Printf("[Texturas] Falha ao abrir %s: %v", path, err)
		return nil
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		log.Printf("[Texturas] Falha ao decodificar %s: %v", path, err)
		return nil
	}
	return toNRGBA(src)
}

func toNRGBA(src image.Image) *image.NRGBA {
	if img, ok := src.(*image.NRGBA); ok && img.Bounds().Min == (image.Point{}) {
		return img
	}
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(dst, dst.Bounds(), src, b.Min, xdraw.Src)
	return dst
}

func resizeNearest(src image.Image, w, h int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}

// TintedTexture retorna a textura com o tint multiplicativo aplicado (nil = sem tint).
func (s *TextureSampler) TintedTexture(name string, tint *util.RGB) *image.NRGBA {
	key := tintKey{name: name}
	if tint != nil {
		key.tint, key.hasTint = *tint, true
	}
	if img, ok := s.tinted[key]; ok {
		return img
	}

	img := s.Texture(name)
	if tint != nil {
		img = ApplyTint(img, *tint)
	}
	s.tinted[key] = img
	return img
}

// BlockTextureName procura a textura de uma face de cubo pelos nomes candidatos:
// {nome}_{face}, variantes da face e por fim {nome}.
func (s *TextureSampler) BlockTextureName(blockID string, face CubeFace) (string, bool) {
	name := mapdata.BlockName(blockID)

	candidates := []string{name + "_" + face.String()}
	switch face {
	case FaceSide:
		candidates = append(candidates, name+"_all")
	case FaceTop:
		candidates = append(candidates, name+"_top", name+"_up")
	case FaceBottom:
		candidates = append(candidates, name+"_bottom", name+"_down")
	}
	candidates = append(candidates, name)

	for _, c := range candidates {
		if s.Has(c) {
			return c, true
		}
	}
	return "", false
}

// BlockFaceColor retorna a cor plana de uma face de cubo: média da textura,
// ou cor conhecida do bloco, ou a média da textura padrão.
func (s *TextureSampler) BlockFaceColor(blockID string, face CubeFace) util.RGB {
	key := blockFaceKey{block: blockID, face: face}
	if c, ok := s.blockColor[key]; ok {
		return c
	}

	var c util.RGB
	if name, ok := s.BlockTextureName(blockID, face); ok {
		c = AverageColor(s.Texture(name))
	} else if known, ok := LookupKnownColor(blockID); ok {
		c = known
	} else {
		c = AverageColor(s.defaultTex)
	}
	s.blockColor[key] = c
	return c
}

// FaceColor retorna a cor média da região UV de uma face de modelo, com tint.
func (s *TextureSampler) FaceColor(def *ModelDefinition, face Face, blockID string, props mapdata.Properties) util.RGB {
	name, ok := def.ResolveTextureRef(face.Texture)
	if !ok || !s.Has(name) {
		if known, found := LookupKnownColor(blockID); found {
			return known
		}
		return util.NeutralGray
	}

	uv := [4]float32{0, 0, 16, 16}
	if face.UV != nil {
		uv = *face.UV
	}
	tint := TintFor(blockID, props, face.TintIndex)

	key := colorKey{texture: name, uv: uv}
	if tint != nil {
		key.tint, key.hasTint = *tint, true
	}
	if c, ok := s.colors[key]; ok {
		return c
	}

	img := cropUV(s.Texture(name), uv)
	if tint != nil {
		img = ApplyTint(img, *tint)
	}
	c := AverageColor(img)
	s.colors[key] = c
	return c
}

// cropUV recorta a região UV (unidades 0-16) da textura.
func cropUV(tex *image.NRGBA, uv [4]float32) *image.NRGBA {
	size := float32(tex.Bounds().Dx())
	u1, v1 := uv[0]/16*size, uv[1]/16*size
	u2, v2 := uv[2]/16*size, uv[3]/16*size
	u1, u2 = min(u1, u2), max(u1, u2)
	v1, v2 = min(v1, v2), max(v1, v2)

	u1 = util.Clamp(u1, 0, size-1)
	v1 = util.Clamp(v1, 0, size-1)
	u2 = util.Clamp(u2, 0, size)
	v2 = util.Clamp(v2, 0, size)
	if u2 <= u1 || v2 <= v1 {
		return tex
	}

	rect := image.Rect(int(u1), int(v1), int(u2), int(v2))
	return tex.SubImage(rect).(*image.NRGBA)
}

// NativeTextureSize retorna o tamanho em pixels detectado no pacote de texturas.
// Fora do modo nativo é o próprio tamanho de bloco.
func (s *TextureSampler) NativeTextureSize() int {
	if s.nativeSize > 0 {
		return s.nativeSize
	}
	size := s.textureSize
	if s.native {
		names := make([]string, 0, len(s.available))
		for name := range s.available {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if w, h, ok := imageSize(s.available[name]); ok {
				size = max(w, h)
				break
			}
		}
	}
	s.nativeSize = size
	return size
}

func imageSize(path string) (int, int, bool) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, false
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, false
	}
	return cfg.Width, cfg.Height, true
}

// TintFor retorna a cor de tint de uma face, ou nil se a face não recebe tint.
// Apenas redstone_wire tem tint: uma rampa quadrática sobre power (0-15).
func TintFor(blockID string, props mapdata.Properties, tintIndex *int) *util.RGB {
	if tintIndex == nil || mapdata.BlockName(blockID) != "redstone_wire" {
		return nil
	}

	power, err := strconv.Atoi(props.Get("power"))
	if err != nil {
		power = 0
	}
	power = max(0, min(15, power))

	f := float64(power) / 15
	r := f*0.6 + 0.4
	g := max(0, f*f*0.7-0.5)
	b := max(0, f*f*0.6-0.7)
	return &util.RGB{R: uint8(r * 255), G: uint8(g * 255), B: uint8(b * 255)}
}

// ApplyTint multiplica o RGB de cada pixel pela cor de tint, preservando alpha.
func ApplyTint(src *image.NRGBA, tint util.RGB) *image.NRGBA {
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c := src.NRGBAAt(b.Min.X+x, b.Min.Y+y)
			dst.SetNRGBA(x, y, color.NRGBA{
				R: uint8(uint16(c.R) * uint16(tint.R) / 255),
				G: uint8(uint16(c.G) * uint16(tint.G) / 255),
				B: uint8(uint16(c.B) * uint16(tint.B) / 255),
				A: c.A,
			})
		}
	}
	return dst
}

// AverageColor retorna a média RGB ponderada por alpha.
// Imagens totalmente transparentes retornam cinza neutro.
func AverageColor(img image.Image) util.RGB {
	var sumR, sumG, sumB, weight float64
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			a := float64(c.A) / 255
			sumR += float64(c.R) * a
			sumG += float64(c.G) * a
			sumB += float64(c.B) * a
			weight += a
		}
	}
	if weight <= 0 {
		return util.NeutralGray
	}
	return util.RGB{
		R: uint8(min(255, sumR/weight)),
		G: uint8(min(255, sumG/weight)),
		B: uint8(min(255, sumB/weight)),
	}
}
