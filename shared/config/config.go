package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Limites de janela aceitos em qualquer job.
const (
	MinWindow = 64
	MaxWindow = 32768
)

// Config armazena as configurações do SchematicVision.
type Config struct {
	// Recursos
	ResourceDir string `json:"resource_dir" yaml:"resource_dir"`
	TextureSize int    `json:"texture_size" yaml:"texture_size"` // Pixels por bloco fora do modo nativo

	// Saída
	OutputDir string `json:"output_dir" yaml:"output_dir"` // Vazio = diretório temporário do sistema
	JobsDB    string `json:"jobs_db" yaml:"jobs_db"`       // Vazio = sem histórico de jobs

	// Janela de renderização
	WindowWidth     int32    `json:"window_width" yaml:"window_width"`
	WindowHeight    int32    `json:"window_height" yaml:"window_height"`
	NativeMaxWidth  int32    `json:"native_max_width" yaml:"native_max_width"`
	NativeMaxHeight int32    `json:"native_max_height" yaml:"native_max_height"`
	BackgroundColor [3]uint8 `json:"background_color" yaml:"background_color"`
	FOV             float32  `json:"fov" yaml:"fov"`

	// Câmera e animação
	DistanceFactor      float32 `json:"distance_factor" yaml:"distance_factor"`
	DefaultFrames       int     `json:"default_frames" yaml:"default_frames"`
	DefaultDurationMs   int     `json:"default_duration_ms" yaml:"default_duration_ms"`
	DefaultElevation    float32 `json:"default_elevation" yaml:"default_elevation"`
	OrbitStartElevation float32 `json:"orbit_start_elevation" yaml:"orbit_start_elevation"`
	OrbitEndElevation   float32 `json:"orbit_end_elevation" yaml:"orbit_end_elevation"`
	ZoomStartFactor     float32 `json:"zoom_start_factor" yaml:"zoom_start_factor"`
	ZoomEndFactor       float32 `json:"zoom_end_factor" yaml:"zoom_end_factor"`

	// GIF
	MaxOutputBytes  int64   `json:"max_output_bytes" yaml:"max_output_bytes"`
	BytesPerPixel   float64 `json:"bytes_per_pixel" yaml:"bytes_per_pixel"` // Heurística de tamanho por pixel por frame
	Loop            int     `json:"loop" yaml:"loop"`
	Quality         int     `json:"quality" yaml:"quality"`
	Optimize        bool    `json:"optimize" yaml:"optimize"`
	ExternalEncoder string  `json:"external_encoder" yaml:"external_encoder"` // Vazio desativa o caminho em streaming
}

// DefaultConfig retorna a configuração padrão.
func DefaultConfig() *Config {
	return &Config{
		ResourceDir: "resource",
		TextureSize: 16,

		WindowWidth:     800,
		WindowHeight:    600,
		NativeMaxWidth:  4096,
		NativeMaxHeight: 4096,
		BackgroundColor: [3]uint8{242, 242, 242},
		FOV:             30.0,

		DistanceFactor:      2.0,
		DefaultFrames:       36,
		DefaultDurationMs:   100,
		DefaultElevation:    30.0,
		OrbitStartElevation: 0.0,
		OrbitEndElevation:   90.0,
		ZoomStartFactor:     3.0,
		ZoomEndFactor:       1.5,

		MaxOutputBytes:  5 * 1024 * 1024,
		BytesPerPixel:   0.5,
		Loop:            0,
		Quality:         100,
		Optimize:        true,
		ExternalEncoder: "ffmpeg",
	}
}

// DefaultPath retorna o caminho padrão do arquivo de configuração, ao lado do executável.
func DefaultPath() string {
	execPath, err := os.Executable()
	if err != nil {
		return "config.json"
	}
	return filepath.Join(filepath.Dir(execPath), "config.json")
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// Load carrega as configurações de um arquivo JSON ou YAML (pela extensão).
// Se o arquivo não existir ou for inválido, retorna as configurações padrão.
func Load(path string) *Config {
	cfg, err := Parse(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("[Config] Usando padrões: %v", err)
		}
		return DefaultConfig()
	}
	return cfg
}

// Parse lê e valida o arquivo de configuração, devolvendo o erro encontrado.
func Parse(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if isYAML(path) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	if err := cfg.Check(); err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return cfg, nil
}

// Check verifica valores que tornariam qualquer job inválido.
func (c *Config) Check() error {
	if c.TextureSize <= 0 {
		return fmt.Errorf("texture_size deve ser positivo, recebido %d", c.TextureSize)
	}
	if c.DistanceFactor <= 0 {
		return fmt.Errorf("distance_factor deve ser positivo, recebido %g", c.DistanceFactor)
	}
	if c.BytesPerPixel <= 0 {
		return fmt.Errorf("bytes_per_pixel deve ser positivo, recebido %g", c.BytesPerPixel)
	}
	if !windowInRange(c.WindowWidth, c.WindowHeight) {
		return fmt.Errorf("window deve ficar entre %dx%d e %dx%d, recebido %dx%d",
			MinWindow, MinWindow, MaxWindow, MaxWindow, c.WindowWidth, c.WindowHeight)
	}
	if !windowInRange(c.NativeMaxWidth, c.NativeMaxHeight) {
		return fmt.Errorf("native_max deve ficar entre %dx%d e %dx%d, recebido %dx%d",
			MinWindow, MinWindow, MaxWindow, MaxWindow, c.NativeMaxWidth, c.NativeMaxHeight)
	}
	return nil
}

// Save salva as configurações em JSON ou YAML conforme a extensão.
func (c *Config) Save(path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func windowInRange(w, h int32) bool {
	return w >= MinWindow && h >= MinWindow && w <= MaxWindow && h <= MaxWindow
}
