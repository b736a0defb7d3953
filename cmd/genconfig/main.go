package main

import (
	"flag"
	"fmt"
	"os"
	"regexp"

	"github.com/digitalsix/presenca-dashboard/pkg/config"
	"gopkg.in/yaml.v3"
)

func main() {
	var (
		outputPath string
		force      bool
	)

	flag.StringVar(&outputPath, "output", "config.yaml", "Caminho para o arquivo de configuração de saída")
	flag.BoolVar(&force, "force", false, "Sobrescrever arquivo se existir")
	flag.Parse()

	// Verificar se o arquivo já existe
	if _, err := os.Stat(outputPath); err == nil && !force {
		fmt.Printf("Erro: arquivo %s já existe. Use --force para sobrescrever.\n", outputPath)
		os.Exit(1)
	}

	cfg, err := config.Default()
	if err != nil {
		fmt.Printf("Erro ao montar configuração padrão: %v\n", err)
		os.Exit(1)
	}

	// Converter para YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		fmt.Printf("Erro ao serializar configuração: %v\n", err)
		os.Exit(1)
	}

	yamlStr := string(data)
	re := regexp.MustCompile(`(\s+jwtsecret:\s+"")`)
	yamlStr = re.ReplaceAllString(yamlStr, `$1  # defina DS_AUTH_JWTSECRET em produção`)

	// Escrever arquivo
	if err := os.WriteFile(outputPath, []byte(yamlStr), 0o644); err != nil {
		fmt.Printf("Erro ao escrever arquivo: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Arquivo de configuração gerado em: %s\n", outputPath)
}
