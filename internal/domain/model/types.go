package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ID é um identificador numérico que a API às vezes envia como string
type ID int64

// UnmarshalJSON aceita número, string numérica ou null
func (id *ID) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(b)), `"`)
	if s == "" || s == "null" {
		*id = 0
		return nil
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("identificador inválido %q: %w", s, err)
	}
	*id = ID(n)
	return nil
}

func (id ID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// Count é um contador tolerante: números, strings numéricas e null viram inteiro.
// Strings com texto após o número ("12 presenças") ficam com os dígitos iniciais; o resto vira 0
type Count int

// UnmarshalJSON nunca falha, valores não numéricos resultam em 0
func (c *Count) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(strings.Trim(string(bytes.TrimSpace(b)), `"`))
	*c = 0
	if s == "" || s == "null" {
		return nil
	}

	if n, err := strconv.Atoi(s); err == nil {
		*c = Count(n)
		return nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		*c = Count(int(f))
		return nil
	}
	*c = Count(leadingInt(s))
	return nil
}

// leadingInt lê o sinal e os dígitos do início de s
func leadingInt(s string) int {
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0
	}

	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}

// Int retorna o valor como int
func (c Count) Int() int {
	return int(c)
}

type timestampLayout struct {
	layout string
	zoned  bool
}

var timestampLayouts = []timestampLayout{
	{time.RFC3339Nano, true},
	{"2006-01-02T15:04:05.999999999", false},
	{"2006-01-02T15:04:05", false},
	{"2006-01-02 15:04:05", false},
	{"2006-01-02", false},
}

// Timestamp é a representação de datas vindas da API de presença.
// Datas sem fuso ficam marcadas como locais e só ganham fuso em Localize.
// Valores em formato desconhecido viram a data zero e o texto original fica em Invalid.
type Timestamp struct {
	time.Time

	local   bool
	invalid string
}

// NewTimestamp cria um Timestamp a partir de time.Time
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

// ParseTimestamp interpreta uma data em um dos formatos aceitos
func ParseTimestamp(s string) (Timestamp, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Timestamp{}, nil
	}

	for _, l := range timestampLayouts {
		if t, err := time.Parse(l.layout, s); err == nil {
			return Timestamp{Time: t, local: !l.zoned}, nil
		}
	}
	return Timestamp{invalid: s}, fmt.Errorf("data em formato não reconhecido: %q", s)
}

// Floating indica que a data veio sem fuso e deve ser lida no horário local
func (ts Timestamp) Floating() bool {
	return ts.local
}

// Invalid retorna o texto recebido quando a data não pôde ser interpretada
func (ts Timestamp) Invalid() string {
	return ts.invalid
}

// Localize leva a data para loc. Datas sem fuso mantêm o horário de parede e passam a valer em loc
func (ts Timestamp) Localize(loc *time.Location) Timestamp {
	if ts.IsZero() || loc == nil {
		return ts
	}
	if ts.local {
		t := ts.Time
		return NewTimestamp(time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc))
	}
	return NewTimestamp(ts.In(loc))
}

// UnmarshalJSON aceita string em formato conhecido, vazio ou null.
// Formato desconhecido não falha: um registro ruim não pode derrubar a lista inteira
func (ts *Timestamp) UnmarshalJSON(b []byte) error {
	raw := string(bytes.TrimSpace(b))
	if raw == "null" {
		*ts = Timestamp{}
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		*ts = Timestamp{invalid: raw}
		return nil
	}

	parsed, _ := ParseTimestamp(s)
	*ts = parsed
	return nil
}

// MarshalJSON grava RFC3339 ou null para a data zero
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(ts.Format(time.RFC3339))
}
