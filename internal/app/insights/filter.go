package insights

import (
	"sort"
	"strings"

	"github.com/digitalsix/presenca-dashboard/internal/domain/model"
)

// FilterAulas filtra por descrição ou professor, sem diferenciar maiúsculas
func FilterAulas(aulas []model.Aula, termo string) []model.Aula {
	termo = strings.ToLower(strings.TrimSpace(termo))
	out := make([]model.Aula, 0, len(aulas))
	for _, a := range aulas {
		if termo == "" ||
			strings.Contains(strings.ToLower(a.Descricao), termo) ||
			strings.Contains(strings.ToLower(a.ProfessorNome), termo) {
			out = append(out, a)
		}
	}
	return out
}

// FilterFuncionarios filtra por nome, email ou cargo e pela unidade.
// A unidade "Principal" também seleciona funcionários sem unidade.
func FilterFuncionarios(funcs []model.Funcionario, termo, unidade string) []model.Funcionario {
	termo = strings.ToLower(strings.TrimSpace(termo))
	out := make([]model.Funcionario, 0, len(funcs))
	for _, f := range funcs {
		if !matchesTermo(f, termo) || !matchesUnidade(f, unidade) {
			continue
		}
		out = append(out, f)
	}
	return out
}

func matchesTermo(f model.Funcionario, termo string) bool {
	if termo == "" {
		return true
	}
	return strings.Contains(strings.ToLower(f.NomeCompleto), termo) ||
		strings.Contains(strings.ToLower(f.Email), termo) ||
		strings.Contains(strings.ToLower(f.Cargo), termo)
}

func matchesUnidade(f model.Funcionario, unidade string) bool {
	if unidade == "" {
		return true
	}
	return f.Unidade == unidade || (f.Unidade == "" && unidade == LabelPrincipal)
}

// Unidades retorna as unidades distintas e não vazias, em ordem alfabética
func Unidades(funcs []model.Funcionario) []string {
	set := make(map[string]struct{})
	for _, f := range funcs {
		if f.Unidade != "" {
			set[f.Unidade] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for u := range set {
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}
