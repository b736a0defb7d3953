package database

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SchemaMigration registra uma migração SQL já aplicada
type SchemaMigration struct {
	Version   int64 `gorm:"primaryKey;autoIncrement:false"`
	Name      string
	AppliedAt time.Time
}

// TableName define o nome da tabela
func (SchemaMigration) TableName() string {
	return "schema_migrations"
}

// MigrationFile é um arquivo YYYYMMDDHHMMSS_nome.sql do diretório de migrações
type MigrationFile struct {
	Version int64
	Name    string
	Path    string
}

// MigrationManager aplica migrações SQL complementares ao AutoMigrate,
// como índices específicos de um driver
type MigrationManager struct {
	db        *gorm.DB
	logger    *zap.Logger
	directory string
}

// NewMigrationManager cria um novo gerenciador de migrações
func NewMigrationManager(db *gorm.DB, logger *zap.Logger, directory string) *MigrationManager {
	return &MigrationManager{
		db:        db,
		logger:    logger,
		directory: directory,
	}
}

// ApplyMigrations aplica, em ordem de versão, os arquivos ainda não registrados.
// Cada arquivo roda em sua própria transação.
func (m *MigrationManager) ApplyMigrations(ctx context.Context) error {
	db := m.db.WithContext(ctx)
	if err := db.AutoMigrate(&SchemaMigration{}); err != nil {
		return fmt.Errorf("falha ao criar tabela de migrações: %w", err)
	}

	var applied []SchemaMigration
	if err := db.Find(&applied).Error; err != nil {
		return fmt.Errorf("falha ao buscar migrações aplicadas: %w", err)
	}
	done := make(map[int64]bool, len(applied))
	for _, a := range applied {
		done[a.Version] = true
	}

	files, err := m.findMigrationFiles()
	if err != nil {
		return err
	}

	for _, file := range files {
		if done[file.Version] {
			continue
		}

		content, err := os.ReadFile(file.Path)
		if err != nil {
			return fmt.Errorf("falha ao ler arquivo de migração: %w", err)
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			for _, stmt := range splitSQLCommands(string(content)) {
				if err := tx.Exec(stmt).Error; err != nil {
					return err
				}
			}
			return tx.Create(&SchemaMigration{
				Version:   file.Version,
				Name:      file.Name,
				AppliedAt: time.Now(),
			}).Error
		})
		if err != nil {
			return fmt.Errorf("falha ao aplicar migração %d_%s: %w", file.Version, file.Name, err)
		}

		m.logger.Info("Migração aplicada", zap.Int64("version", file.Version), zap.String("name", file.Name))
	}

	return nil
}

// findMigrationFiles lista os arquivos .sql ordenados por versão; diretório ausente não é erro
func (m *MigrationManager) findMigrationFiles() ([]MigrationFile, error) {
	entries, err := os.ReadDir(m.directory)
	if errors.Is(err, fs.ErrNotExist) {
		m.logger.Debug("Diretório de migrações não encontrado", zap.String("dir", m.directory))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("falha ao listar arquivos de migração: %w", err)
	}

	var files []MigrationFile
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}

		prefix, rest, ok := strings.Cut(e.Name(), "_")
		version, convErr := strconv.ParseInt(prefix, 10, 64)
		if !ok || convErr != nil {
			m.logger.Warn("Arquivo de migração ignorado", zap.String("file", e.Name()))
			continue
		}

		files = append(files, MigrationFile{
			Version: version,
			Name:    strings.TrimSuffix(rest, ".sql"),
			Path:    filepath.Join(m.directory, e.Name()),
		})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Version < files[j].Version })
	return files, nil
}

// CreateMigration cria um arquivo de migração vazio com a versão atual
func (m *MigrationManager) CreateMigration(name string) (string, error) {
	name = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
	if name == "" {
		return "", errors.New("nome da migração é obrigatório")
	}

	if err := os.MkdirAll(m.directory, 0o755); err != nil {
		return "", fmt.Errorf("falha ao criar diretório: %w", err)
	}

	path := filepath.Join(m.directory, fmt.Sprintf("%s_%s.sql", time.Now().Format("20060102150405"), name))
	if err := os.WriteFile(path, []byte("-- "+name+"\n"), 0o644); err != nil {
		return "", fmt.Errorf("falha ao criar arquivo: %w", err)
	}

	return path, nil
}

// splitSQLCommands separa comandos por ';' fora de strings e comentários
func splitSQLCommands(sql string) []string {
	var (
		commands []string
		current  strings.Builder
		inString bool
		inLine   bool
		inBlock  bool
	)

	flush := func() {
		if cmd := strings.TrimSpace(current.String()); cmd != "" && !onlyComments(cmd) {
			commands = append(commands, cmd)
		}
		current.Reset()
	}

	for i := 0; i < len(sql); i++ {
		ch := sql[i]
		next := byte(0)
		if i+1 < len(sql) {
			next = sql[i+1]
		}

		switch {
		case inLine:
			if ch == '\n' {
				inLine = false
			}
		case inBlock:
			if ch == '*' && next == '/' {
				inBlock = false
				current.WriteByte(ch)
				ch = next
				i++
			}
		case inString:
			if ch == '\'' {
				inString = false
			}
		case ch == '-' && next == '-':
			inLine = true
		case ch == '/' && next == '*':
			inBlock = true
		case ch == '\'':
			inString = true
		case ch == ';':
			flush()
			continue
		}

		current.WriteByte(ch)
	}
	flush()

	return commands
}

func onlyComments(cmd string) bool {
	for _, line := range strings.Split(cmd, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "--") {
			return false
		}
	}
	return true
}
