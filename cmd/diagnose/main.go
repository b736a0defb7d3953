package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/digitalsix/presenca-dashboard/internal/adapter/upstream"
	"github.com/digitalsix/presenca-dashboard/internal/app/insights"
	"github.com/digitalsix/presenca-dashboard/pkg/config"
	apperrors "github.com/digitalsix/presenca-dashboard/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Verifica se uma conta consegue usar o painel: login, /auth/me e leituras da empresa
func main() {
	var (
		configPath string
		email      string
		senha      string
		verbose    bool
	)

	flag.StringVar(&configPath, "config", "./config", "Diretório do config.yaml")
	flag.StringVar(&email, "email", "", "Email da conta a ser diagnosticada")
	flag.StringVar(&senha, "senha", os.Getenv("DS_DIAG_SENHA"), "Senha da conta (ou DS_DIAG_SENHA)")
	flag.BoolVar(&verbose, "verbose", false, "Mostrar logs detalhados")
	flag.Parse()

	if email == "" || senha == "" {
		fmt.Println("Erro: email e senha não podem ser vazios.")
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Printf("Erro ao carregar configuração: %v\n", err)
		os.Exit(1)
	}

	zapCfg := zap.NewProductionConfig()
	if !verbose {
		zapCfg.Level = zap.NewAtomicLevelAt(zapcore.ErrorLevel)
		zapCfg.OutputPaths = []string{"stderr"}
	}
	logger, err := zapCfg.Build()
	if err != nil {
		fmt.Printf("Erro ao inicializar logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	loc, err := time.LoadLocation(cfg.Dashboard.Timezone)
	if err != nil {
		fmt.Printf("Erro ao carregar fuso horário: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	client := upstream.NewClient(cfg.Upstream, logger)

	fmt.Println("\n╭─────────────────────────────────────────╮")
	fmt.Println("│         DIAGNÓSTICO DA API DE PRESENÇA   │")
	fmt.Println("├─────────────────────────────────────────┤")
	fmt.Printf("│ API: %s\n", cfg.Upstream.BaseURL)

	step("Ping", func() (string, error) {
		return "", client.Ping(ctx)
	})

	var auth upstream.Auth
	ok := step("Login", func() (string, error) {
		out, err := client.Login(ctx, email, senha)
		if err != nil {
			return "", err
		}
		auth.Token = out.Token
		if out.User.EmpresaID != nil {
			auth.EmpresaID = *out.User.EmpresaID
		}
		return fmt.Sprintf("%s (%s)", out.User.Nome, out.User.TipoUsuario), nil
	})
	if !ok {
		fmt.Println("╰─────────────────────────────────────────╯")
		os.Exit(1)
	}
	defer client.Logout(ctx, auth)

	step("Sessão (/auth/me)", func() (string, error) {
		user, err := client.Me(ctx, auth)
		if err != nil {
			return "", err
		}
		return user.Email, nil
	})
	step("Estatísticas", func() (string, error) {
		stats, err := client.Stats(ctx, auth)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d aulas, %d presenças", stats.TotalAulas.Int(), stats.TotalPresencas.Int()), nil
	})
	step("Aulas", func() (string, error) {
		aulas, err := client.Aulas(ctx, auth)
		if err != nil {
			return "", err
		}
		invalidas := 0
		for i := range aulas {
			if aulas[i].DataHora.Invalid() != "" {
				invalidas++
			}
			aulas[i].DataHora = aulas[i].DataHora.Localize(loc)
		}
		classifier := insights.Classifier{Duration: cfg.Dashboard.ClassDuration}
		sum := insights.SummarizeAulas(classifier.Decorate(aulas, time.Now().In(loc)))
		return fmt.Sprintf("%d aulas, %d concluídas, %d datas inválidas", sum.Total, sum.Concluidas, invalidas), nil
	})
	step("Funcionários", func() (string, error) {
		funcs, err := client.Funcionarios(ctx, auth)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d funcionários", len(funcs)), nil
	})

	fmt.Println("╰─────────────────────────────────────────╯")
}

// step executa uma verificação e imprime o resultado
func step(name string, fn func() (string, error)) bool {
	start := time.Now()
	detail, err := fn()
	elapsed := time.Since(start).Round(time.Millisecond)

	if err != nil {
		fmt.Printf("│ ✗ %-20s %s (%s, HTTP %d)\n", name, apperrors.UserMessage(err), elapsed, apperrors.StatusCode(err))
		return false
	}
	fmt.Printf("│ ✓ %-20s %s (%s)\n", name, detail, elapsed)
	return true
}
