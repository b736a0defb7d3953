package export

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
)

const (
	pdfMargin    = 10.0
	pdfRowHeight = 6.0
)

// cor do cabeçalho das tabelas
var headerFill = [3]int{41, 128, 185}

func renderPDF(r report) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.MultiCell(0, 8, tr(r.title), "", "L", false)

	pdf.SetFont("Helvetica", "", 10)
	for _, line := range r.subtitle {
		pdf.CellFormat(0, pdfRowHeight, tr(line), "", 1, "L", false, 0, "")
	}
	for _, kv := range r.info {
		pdf.CellFormat(0, pdfRowHeight, tr(kv[0]+" "+kv[1]), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	drawHeader := func() {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(headerFill[0], headerFill[1], headerFill[2])
		pdf.SetTextColor(255, 255, 255)
		for _, c := range r.columns {
			pdf.CellFormat(c.pdfWidth, pdfRowHeight+1, tr(c.title), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 8)
		pdf.SetTextColor(0, 0, 0)
	}
	drawHeader()

	_, pageHeight := pdf.GetPageSize()
	for _, row := range r.rows {
		if pdf.GetY()+pdfRowHeight > pageHeight-pdfMargin {
			pdf.AddPage()
			drawHeader()
		}
		for i, c := range r.columns {
			align := "L"
			if c.center {
				align = "C"
			}
			text := fitText(pdf, tr(fmt.Sprint(row[i])), c.pdfWidth-2)
			pdf.CellFormat(c.pdfWidth, pdfRowHeight, text, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("erro ao gerar PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// fitText corta o texto que não cabe na célula. O texto já está traduzido
// para cp1252, então cada byte é um caractere.
func fitText(pdf *fpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	for len(s) > 0 && pdf.GetStringWidth(s+"...") > width {
		s = s[:len(s)-1]
	}
	return s + "..."
}
