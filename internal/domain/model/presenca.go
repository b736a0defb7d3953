package model

import (
	"encoding/json"
)

// AulaStatus é o status derivado de uma aula, nunca persistido
type AulaStatus string

const (
	StatusConcluida   AulaStatus = "concluida"
	StatusEmAndamento AulaStatus = "em_andamento"
	StatusAgendada    AulaStatus = "agendada"
)

// Aula representa uma aula registrada para a empresa cliente
type Aula struct {
	ID            ID         `json:"id"`
	DataHora      Timestamp  `json:"data_hora"`
	Descricao     string     `json:"descricao"`
	ProfessorNome string     `json:"professor_nome"`
	NumPresencas  Count      `json:"num_presencas"`
	EmpresaNome   string     `json:"empresa_nome,omitempty"`
	Status        AulaStatus `json:"status,omitempty"`
}

// Funcionario representa um funcionário acompanhado pelo programa
type Funcionario struct {
	ID                 ID        `json:"id"`
	NomeCompleto       string    `json:"nome_completo"`
	Email              string    `json:"email"`
	Cargo              string    `json:"cargo"`
	Unidade            string    `json:"unidade"`
	TotalPresencas     Count     `json:"total_presencas"`
	UltimaParticipacao Timestamp `json:"ultima_participacao"`
	NfcTagID           string    `json:"nfc_tag_id"`
}

// Participante é um funcionário presente em uma aula
type Participante struct {
	ID           ID     `json:"id"`
	NomeCompleto string `json:"nome_completo"`
	Email        string `json:"email,omitempty"`
	Cargo        string `json:"cargo"`
	Unidade      string `json:"unidade,omitempty"`
	NfcTagID     string `json:"nfc_tag_id"`
}

// ParticipantesResponse é o envelope de /cliente/aulas/:id/participantes
type ParticipantesResponse struct {
	Participantes []Participante `json:"participantes"`
}

// Stats são as estatísticas de /cliente/stats. Campos desconhecidos são preservados.
type Stats struct {
	TotalAulas         Count   `json:"totalAulas"`
	TotalPresencas     Count   `json:"totalPresencas"`
	MediaParticipantes float64 `json:"mediaParticipantes"`

	Extra map[string]json.RawMessage `json:"-"`
}

var knownStatsFields = map[string]bool{
	"totalAulas":         true,
	"totalPresencas":     true,
	"mediaParticipantes": true,
}

// UnmarshalJSON lê os campos conhecidos e guarda os demais em Extra
func (s *Stats) UnmarshalJSON(b []byte) error {
	type plain Stats
	var known plain
	if err := json.Unmarshal(b, &known); err != nil {
		return err
	}

	var all map[string]json.RawMessage
	if err := json.Unmarshal(b, &all); err != nil {
		return err
	}

	*s = Stats(known)
	for k, v := range all {
		if knownStatsFields[k] {
			continue
		}
		if s.Extra == nil {
			s.Extra = make(map[string]json.RawMessage)
		}
		s.Extra[k] = v
	}
	return nil
}

// MarshalJSON devolve os campos conhecidos junto com os extras
func (s Stats) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(s.Extra)+3)
	for k, v := range s.Extra {
		out[k] = v
	}
	out["totalAulas"] = s.TotalAulas
	out["totalPresencas"] = s.TotalPresencas
	out["mediaParticipantes"] = s.MediaParticipantes
	return json.Marshal(out)
}

// ExportFile é um arquivo gerado para download
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}
