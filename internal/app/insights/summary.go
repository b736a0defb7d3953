package insights

import (
	"math"

	"github.com/digitalsix/presenca-dashboard/internal/domain/model"
)

// AulasSummary resume uma lista de aulas
type AulasSummary struct {
	Total          int     `json:"total"`
	Concluidas     int     `json:"concluidas"`
	TotalPresencas int     `json:"totalPresencas"`
	MediaPresencas float64 `json:"mediaPresencas"`
}

// FuncionariosSummary resume uma lista de funcionários
type FuncionariosSummary struct {
	Total          int     `json:"total"`
	Ativos         int     `json:"ativos"`
	Inativos       int     `json:"inativos"`
	TotalPresencas int     `json:"totalPresencas"`
	MediaPresencas float64 `json:"mediaPresencas"`
	Engajamento    float64 `json:"engajamento"`
}

// SummarizeAulas calcula os totais de aulas já decoradas com status
func SummarizeAulas(aulas []model.Aula) AulasSummary {
	s := AulasSummary{Total: len(aulas)}
	for _, a := range aulas {
		if a.Status == model.StatusConcluida {
			s.Concluidas++
		}
		s.TotalPresencas += a.NumPresencas.Int()
	}
	if s.Total > 0 {
		s.MediaPresencas = round1(float64(s.TotalPresencas) / float64(s.Total))
	}
	return s
}

// SummarizeFuncionarios calcula ativos, inativos, média e engajamento (% de ativos)
func SummarizeFuncionarios(funcs []model.Funcionario) FuncionariosSummary {
	s := FuncionariosSummary{Total: len(funcs)}
	for _, f := range funcs {
		if f.TotalPresencas > 0 {
			s.Ativos++
		}
		s.TotalPresencas += f.TotalPresencas.Int()
	}
	s.Inativos = s.Total - s.Ativos
	if s.Total > 0 {
		s.MediaPresencas = round1(float64(s.TotalPresencas) / float64(s.Total))
		s.Engajamento = round1(float64(s.Ativos) * 100 / float64(s.Total))
	}
	return s
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
