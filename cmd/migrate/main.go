package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/digitalsix/presenca-dashboard/internal/adapter/database"
	"github.com/digitalsix/presenca-dashboard/pkg/config"
	"github.com/digitalsix/presenca-dashboard/pkg/logging"
	"go.uber.org/zap"
)

func main() {
	// Configurações
	var (
		action       string
		name         string
		configPath   string
		migrationDir string
	)

	flag.StringVar(&action, "action", "migrate", "Ação (migrate, create)")
	flag.StringVar(&name, "name", "", "Nome da migração (apenas para action=create)")
	flag.StringVar(&configPath, "config", "./config", "Diretório do config.yaml")
	flag.StringVar(&migrationDir, "dir", "./migrations", "Diretório de migrações")
	flag.Parse()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Printf("Erro ao carregar configuração: %v\n", err)
		os.Exit(1)
	}
	cfg.Database.MigrationDir = migrationDir

	// Inicializar logger
	logger, err := logging.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Printf("Erro ao inicializar logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx := context.Background()

	switch action {
	case "migrate":
		// NewDatabase aplica o AutoMigrate e as migrações SQL do diretório
		db, err := database.NewDatabase(ctx, cfg.Database, logger)
		if err != nil {
			logger.Fatal("Falha ao inicializar banco de dados", zap.Error(err))
		}
		defer db.Close()

		logger.Info("Migrações aplicadas com sucesso",
			zap.String("driver", cfg.Database.Driver),
			zap.String("dir", migrationDir))

	case "create":
		if name == "" {
			logger.Fatal("Nome da migração é obrigatório para action=create")
		}

		db, err := database.NewDatabase(ctx, cfg.Database, logger)
		if err != nil {
			logger.Fatal("Falha ao inicializar banco de dados", zap.Error(err))
		}
		defer db.Close()

		path, err := db.CreateMigration(name)
		if err != nil {
			logger.Fatal("Falha ao criar migração", zap.Error(err))
		}

		logger.Info("Migração criada", zap.String("path", path))

	default:
		logger.Fatal("Ação desconhecida", zap.String("action", action))
	}
}
