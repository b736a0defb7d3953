package insights

import (
	"sort"
	"strings"

	"github.com/digitalsix/presenca-dashboard/internal/domain/model"
)

// Rótulos usados quando o atributo de agrupamento está ausente
const (
	LabelNaoInformado = "Não informado"
	LabelPrincipal    = "Principal"
)

// Bucket é um ponto de gráfico agregado
type Bucket struct {
	Key       string `json:"key"`
	Label     string `json:"label"`
	Presencas int    `json:"presencas"`
	Registros int    `json:"registros"`
}

// Attribute seleciona o atributo do funcionário usado no agrupamento
type Attribute int

const (
	ByUnit Attribute = iota
	ByDepartment
)

func (a Attribute) value(unidade, cargo string) string {
	if a == ByDepartment {
		return orDefault(cargo, LabelNaoInformado)
	}
	return orDefault(unidade, LabelPrincipal)
}

// GroupByMonth agrupa aulas por mês de data_hora somando presenças.
// Ordem crescente por mês; aulas sem data ficam no fim em "Não informado".
func GroupByMonth(aulas []model.Aula) []Bucket {
	index := make(map[string]*Bucket)
	for _, a := range aulas {
		key, label := LabelNaoInformado, LabelNaoInformado
		if !a.DataHora.IsZero() {
			key = a.DataHora.Format("2006-01")
			label = a.DataHora.Format("01/2006")
		}
		b, ok := index[key]
		if !ok {
			b = &Bucket{Key: key, Label: label}
			index[key] = b
		}
		b.Presencas += a.NumPresencas.Int()
		b.Registros++
	}

	out := collect(index)
	sort.Slice(out, func(i, j int) bool {
		ki, kj := out[i].Key, out[j].Key
		if (ki == LabelNaoInformado) != (kj == LabelNaoInformado) {
			return kj == LabelNaoInformado
		}
		return ki < kj
	})
	return out
}

// GroupByUnit agrupa funcionários por unidade somando total_presencas
func GroupByUnit(funcs []model.Funcionario) []Bucket {
	return groupFuncionarios(funcs, ByUnit)
}

// GroupByDepartment agrupa funcionários por cargo somando total_presencas
func GroupByDepartment(funcs []model.Funcionario) []Bucket {
	return groupFuncionarios(funcs, ByDepartment)
}

func groupFuncionarios(funcs []model.Funcionario, attr Attribute) []Bucket {
	index := make(map[string]*Bucket)
	for _, f := range funcs {
		label := attr.value(f.Unidade, f.Cargo)
		b, ok := index[label]
		if !ok {
			b = &Bucket{Key: label, Label: label}
			index[label] = b
		}
		b.Presencas += f.TotalPresencas.Int()
		b.Registros++
	}
	return sortCategories(collect(index))
}

// GroupAttendanceBy cruza as aulas com seus participantes e agrupa as presenças
// por unidade ou cargo. Registros conta as aulas distintas em cada grupo.
func GroupAttendanceBy(aulas []model.Aula, participantes map[model.ID][]model.Participante, attr Attribute) []Bucket {
	index := make(map[string]*Bucket)
	seen := make(map[string]map[model.ID]bool)

	for _, a := range aulas {
		for _, p := range participantes[a.ID] {
			label := attr.value(p.Unidade, p.Cargo)
			b, ok := index[label]
			if !ok {
				b = &Bucket{Key: label, Label: label}
				index[label] = b
				seen[label] = make(map[model.ID]bool)
			}
			b.Presencas++
			if !seen[label][a.ID] {
				seen[label][a.ID] = true
				b.Registros++
			}
		}
	}
	return sortCategories(collect(index))
}

func collect(index map[string]*Bucket) []Bucket {
	out := make([]Bucket, 0, len(index))
	for _, b := range index {
		out = append(out, *b)
	}
	return out
}

func sortCategories(out []Bucket) []Bucket {
	sort.Slice(out, func(i, j int) bool {
		if out[i].Presencas != out[j].Presencas {
			return out[i].Presencas > out[j].Presencas
		}
		return out[i].Label < out[j].Label
	})
	return out
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
