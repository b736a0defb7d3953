package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRolePredicates(t *testing.T) {
	tests := []struct {
		name        string
		user        *User
		wantAdmin   bool
		wantCliente bool
	}{
		{"admin", &User{TipoUsuario: "admin"}, true, false},
		{"cliente final", &User{TipoUsuario: "cliente_final"}, false, true},
		{"tipo desconhecido", &User{TipoUsuario: "professor"}, false, false},
		{"tipo vazio", &User{}, false, false},
		{"usuário nulo", nil, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantAdmin, tt.user.IsAdmin())
			assert.Equal(t, tt.wantCliente, tt.user.IsCliente())
		})
	}
}

func TestAulaUnmarshal_FlexibleFields(t *testing.T) {
	payload := `[
		{"id": 1, "data_hora": "2024-03-10T09:00:00Z", "descricao": "Alongamento", "num_presencas": 12},
		{"id": "2", "data_hora": "2024-03-11 10:30:00", "descricao": "Yoga", "num_presencas": "7"},
		{"id": 3, "data_hora": "2024-03-12", "descricao": "Pilates", "num_presencas": null},
		{"id": 4, "data_hora": null, "descricao": "Sem data", "num_presencas": "abc"},
		{"id": 5, "data_hora": "2024-03-13T08:00:00-03:00", "num_presencas": "12 presenças"}
	]`

	var aulas []Aula
	require.NoError(t, json.Unmarshal([]byte(payload), &aulas))
	require.Len(t, aulas, 5)

	assert.Equal(t, ID(2), aulas[1].ID)
	assert.Equal(t, 12, aulas[0].NumPresencas.Int())
	assert.Equal(t, 7, aulas[1].NumPresencas.Int())
	assert.Equal(t, 0, aulas[2].NumPresencas.Int())
	assert.Equal(t, 0, aulas[3].NumPresencas.Int())
	assert.Equal(t, 12, aulas[4].NumPresencas.Int())

	assert.Equal(t, time.Date(2024, 3, 11, 10, 30, 0, 0, time.UTC), aulas[1].DataHora.Time)
	assert.Equal(t, time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC), aulas[2].DataHora.Time)
	assert.True(t, aulas[3].DataHora.IsZero())

	assert.True(t, aulas[1].DataHora.Floating())
	assert.True(t, aulas[2].DataHora.Floating())
	assert.False(t, aulas[4].DataHora.Floating())
}

func TestAulaUnmarshal_UnknownDateKeepsList(t *testing.T) {
	var aulas []Aula
	err := json.Unmarshal([]byte(`[{"data_hora":"2024-06-15T10:00:00Z"},{"data_hora":"15/06/2024 10:00"},{"data_hora":1718445600}]`), &aulas)
	require.NoError(t, err)
	require.Len(t, aulas, 3)

	assert.Equal(t, time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC), aulas[0].DataHora.Time)
	assert.Empty(t, aulas[0].DataHora.Invalid())

	assert.True(t, aulas[1].DataHora.IsZero())
	assert.Equal(t, "15/06/2024 10:00", aulas[1].DataHora.Invalid())
	assert.True(t, aulas[2].DataHora.IsZero())
	assert.Equal(t, "1718445600", aulas[2].DataHora.Invalid())

	_, err = ParseTimestamp("15/06/2024 10:00")
	assert.Error(t, err)
}

func TestCount_LeadingDigits(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{`"12 presenças"`, 12},
		{`" 7 "`, 7},
		{`"-3 faltas"`, -3},
		{`"8.9"`, 8},
		{`4.0`, 4},
		{`"presenças: 12"`, 0},
		{`"-"`, 0},
		{`true`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			var c Count
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &c))
			assert.Equal(t, tt.want, c.Int())
		})
	}
}

func TestTimestamp_Localize(t *testing.T) {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	floating, err := ParseTimestamp("2024-07-01 01:00:00")
	require.NoError(t, err)
	got := floating.Localize(loc)
	assert.Equal(t, time.Date(2024, 7, 1, 1, 0, 0, 0, loc), got.Time)
	assert.False(t, got.Floating())

	zoned, err := ParseTimestamp("2024-07-01T04:00:00Z")
	require.NoError(t, err)
	got = zoned.Localize(loc)
	assert.Equal(t, time.July, got.Month())
	assert.Equal(t, 1, got.Hour())

	assert.True(t, Timestamp{}.Localize(loc).IsZero())
}

func TestTimestamp_MarshalZeroAsNull(t *testing.T) {
	data, err := json.Marshal(Funcionario{NomeCompleto: "Ana"})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"ultima_participacao":null`)
}

func TestStats_PreservesUnknownFields(t *testing.T) {
	var s Stats
	require.NoError(t, json.Unmarshal([]byte(`{"totalAulas":5,"totalPresencas":40,"mediaParticipantes":8,"funcionariosAtivos":17}`), &s))

	assert.Equal(t, 5, s.TotalAulas.Int())
	assert.Equal(t, 8.0, s.MediaParticipantes)
	assert.JSONEq(t, `17`, string(s.Extra["funcionariosAtivos"]))

	out, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"totalAulas":5,"totalPresencas":40,"mediaParticipantes":8,"funcionariosAtivos":17}`, string(out))
}

func TestUsuarioInput_ValidateCreate(t *testing.T) {
	in := UsuarioInput{Nome: "Ana", Email: "ana@empresa.com", Senha: "x"}
	err := in.ValidateCreate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tipo_usuario")

	in.TipoUsuario = RoleCliente
	assert.NoError(t, in.ValidateCreate())
}
