package insights

import (
	"time"

	"github.com/digitalsix/presenca-dashboard/internal/domain/model"
)

// Classifier determina o status de uma aula a partir do horário atual.
// Duration é a duração presumida da aula; zero faz a aula passar de agendada
// direto para concluída, salvo no instante exato de início.
type Classifier struct {
	Duration time.Duration
}

// Status classifica a aula que começa em start
func (c Classifier) Status(start, now time.Time) model.AulaStatus {
	switch {
	case start.After(now):
		return model.StatusAgendada
	case start.Equal(now), now.Before(start.Add(c.Duration)):
		return model.StatusEmAndamento
	default:
		return model.StatusConcluida
	}
}

// Decorate retorna cópias das aulas com o status calculado
func (c Classifier) Decorate(aulas []model.Aula, now time.Time) []model.Aula {
	out := make([]model.Aula, len(aulas))
	for i, a := range aulas {
		a.Status = c.Status(a.DataHora.Time, now)
		out[i] = a
	}
	return out
}

// StatusLabel retorna o rótulo exibido para um status
func StatusLabel(s model.AulaStatus) string {
	switch s {
	case model.StatusConcluida:
		return "Concluída"
	case model.StatusEmAndamento:
		return "Em Andamento"
	case model.StatusAgendada:
		return "Agendada"
	default:
		return "Indefinido"
	}
}

// EngagementLevel classifica o engajamento pelo total de presenças
func EngagementLevel(presencas int) string {
	switch {
	case presencas >= 10:
		return "Alto"
	case presencas >= 5:
		return "Médio"
	case presencas > 0:
		return "Baixo"
	default:
		return "Inativo"
	}
}
