package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

func renderXLSX(r report) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", r.sheet); err != nil {
		return nil, fmt.Errorf("erro ao nomear planilha: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("erro ao criar estilo: %w", err)
	}

	row := 1
	if len(r.info) > 0 {
		if err := f.SetCellValue(r.sheet, "A1", "Detalhes da Aula"); err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(r.sheet, "A1", "A1", bold); err != nil {
			return nil, err
		}
		row++
		for _, kv := range r.info {
			values := []interface{}{kv[0], kv[1]}
			if err := setRow(f, r.sheet, row, values); err != nil {
				return nil, err
			}
			row++
		}
		// linha em branco antes da tabela
		row++
	}

	header := make([]interface{}, len(r.columns))
	for i, c := range r.columns {
		header[i] = c.title
	}
	if err := setRow(f, r.sheet, row, header); err != nil {
		return nil, err
	}
	first, _ := excelize.CoordinatesToCellName(1, row)
	last, _ := excelize.CoordinatesToCellName(len(r.columns), row)
	if err := f.SetCellStyle(r.sheet, first, last, bold); err != nil {
		return nil, err
	}
	row++

	for _, values := range r.rows {
		if err := setRow(f, r.sheet, row, values); err != nil {
			return nil, err
		}
		row++
	}

	for i, c := range r.columns {
		if c.sheetWidth == 0 {
			continue
		}
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(r.sheet, name, name, c.sheetWidth); err != nil {
			return nil, fmt.Errorf("erro ao definir largura da coluna %s: %w", name, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("erro ao gravar planilha: %w", err)
	}
	return buf.Bytes(), nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("erro ao escrever linha %d: %w", row, err)
	}
	return nil
}
