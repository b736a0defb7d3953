package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/digitalsix/presenca-dashboard/internal/adapter/upstream"
	"github.com/digitalsix/presenca-dashboard/internal/domain/model"
	"github.com/digitalsix/presenca-dashboard/pkg/config"
	apperrors "github.com/digitalsix/presenca-dashboard/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	// Parsing de flags
	var (
		configPath string
		adminEmail string
		adminSenha string
		nome       string
		email      string
		senha      string
		tipo       string
		empresaID  int64
		verbose    bool
	)

	flag.StringVar(&configPath, "config", "./config", "Diretório do config.yaml")
	flag.StringVar(&adminEmail, "admin-email", "", "Email do administrador que fará o cadastro")
	flag.StringVar(&adminSenha, "admin-senha", os.Getenv("DS_ADMIN_SENHA"), "Senha do administrador (ou DS_ADMIN_SENHA)")
	flag.StringVar(&nome, "nome", "", "Nome do novo usuário")
	flag.StringVar(&email, "email", "", "Email do novo usuário")
	flag.StringVar(&senha, "senha", "", "Senha do novo usuário")
	flag.StringVar(&tipo, "tipo", model.RoleCliente, "Tipo do usuário (admin, cliente_final)")
	flag.Int64Var(&empresaID, "empresa", 0, "ID da empresa do usuário cliente")
	flag.BoolVar(&verbose, "verbose", false, "Mostrar logs detalhados")
	flag.Parse()

	// Validar entradas
	if adminEmail == "" || adminSenha == "" {
		fmt.Println("Erro: credenciais do administrador são obrigatórias.")
		flag.Usage()
		os.Exit(1)
	}

	in := model.UsuarioInput{Nome: nome, Email: email, Senha: senha, TipoUsuario: tipo}
	if empresaID > 0 {
		id := model.ID(empresaID)
		in.EmpresaID = &id
	}
	if err := in.ValidateCreate(); err != nil {
		fmt.Printf("Erro: %v\n", err)
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Printf("Erro ao carregar configuração: %v\n", err)
		os.Exit(1)
	}

	// Configurar logger com nível apropriado
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

	ctx, cancel := context.WithTimeout(context.Background(), 3*cfg.Upstream.Timeout)
	defer cancel()

	client := upstream.NewClient(cfg.Upstream, logger)

	login, err := client.Login(ctx, adminEmail, adminSenha)
	if err != nil {
		fmt.Printf("Erro ao autenticar administrador: %s\n", apperrors.UserMessage(err))
		os.Exit(1)
	}
	if !login.User.IsAdmin() {
		fmt.Printf("Erro: %s não é administrador.\n", adminEmail)
		os.Exit(1)
	}
	auth := upstream.Auth{Token: login.Token}
	defer client.Logout(context.Background(), auth)

	created, err := client.CreateUsuario(ctx, auth, in)
	if err != nil {
		fmt.Printf("Erro ao cadastrar usuário: %s\n", apperrors.UserMessage(err))
		os.Exit(1)
	}

	// Mostrar apenas informações relevantes e não sensíveis
	fmt.Println("\n╭──────────────────────────────────────────╮")
	fmt.Println("│       Usuário cadastrado com sucesso      │")
	fmt.Println("├──────────────────────────────────────────┤")
	fmt.Printf("│ Nome: %-34s │\n", nome)
	fmt.Printf("│ Email: %-33s │\n", email)
	fmt.Printf("│ Tipo: %-34s │\n", tipo)
	fmt.Println("╰──────────────────────────────────────────╯")
	if verbose {
		fmt.Printf("\nResposta da API: %s\n", created)
	}
}
