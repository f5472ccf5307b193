// Package jobstore mantém um histórico dos jobs de renderização num banco SQLite.
package jobstore

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Status de um job registrado.
const (
	StatusRunning = "running"
	StatusDone    = "done"
	StatusFailed  = "failed"
)

// JobModel representa o esquema do banco de dados para um job.
type JobModel struct {
	ID          string `gorm:"primaryKey"`
	Kind        string `gorm:"index"` // "animation" ou "still"
	Params      string // Parâmetros do pedido serializados em JSON
	Status      string `gorm:"index"`
	Voxels      int
	Quads       int
	Frames      int
	Width       int
	Height      int
	OutputPath  string
	OutputBytes int64
	ErrorCode   int
	ErrorText   string
	ElapsedMs   int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Outcome resume o fim de um job.
type Outcome struct {
	Voxels      int
	Quads       int
	Frames      int
	Width       int
	Height      int
	OutputPath  string
	OutputBytes int64
	ErrorCode   int
	Err         error
	Elapsed     time.Duration
}

// Store é o histórico de jobs.
type Store struct {
	db *gorm.DB
}

// Open abre (ou cria) o banco SQLite e roda as migrações.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	// Logger silencioso em produção
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("falha ao conectar no SQLite: %w", err)
	}

	if err := db.AutoMigrate(&JobModel{}); err != nil {
		return nil, fmt.Errorf("falha na migração do banco: %w", err)
	}

	log.Printf("[Jobs] Banco de dados SQLite aberto: %s", dbPath)
	return &Store{db: db}, nil
}

// Begin registra um job em andamento e retorna seu id.
func (s *Store) Begin(kind string, params any) (string, error) {
	data, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("serializando parâmetros: %w", err)
	}

	model := JobModel{
		ID:     uuid.NewString(),
		Kind:   kind,
		Params: string(data),
		Status: StatusRunning,
	}
	if err := s.db.Create(&model).Error; err != nil {
		return "", err
	}
	return model.ID, nil
}

// Finish registra o resultado de um job.
func (s *Store) Finish(id string, out Outcome) error {
	var model JobModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		return err
	}

	model.Status = StatusDone
	model.Voxels = out.Voxels
	model.Quads = out.Quads
	model.Frames = out.Frames
	model.Width = out.Width
	model.Height = out.Height
	model.OutputPath = out.OutputPath
	model.OutputBytes = out.OutputBytes
	model.ElapsedMs = out.Elapsed.Milliseconds()
	if out.Err != nil {
		model.Status = StatusFailed
		model.ErrorCode = out.ErrorCode
		model.ErrorText = out.Err.Error()
	}

	// Upsert
	return s.db.Save(&model).Error
}

// Get retorna um job pelo id.
func (s *Store) Get(id string) (*JobModel, error) {
	var model JobModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &model, nil
}

// Recent retorna os últimos n jobs, do mais novo para o mais antigo.
func (s *Store) Recent(n int) ([]JobModel, error) {
	var jobs []JobModel
	err := s.db.Order("created_at desc").Limit(n).Find(&jobs).Error
	return jobs, err
}

// Close fecha a conexão com o banco.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
