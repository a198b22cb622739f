package reports

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/jung-kurt/gofpdf"
)

// ExportData is everything a generated file contains.
type ExportData struct {
	From           string
	To             string
	TargetCalories int
	Streak         int
	Rows           []DayRow
}

// Generate renders data in the requested format.
func Generate(format string, data ExportData) ([]byte, error) {
	switch format {
	case FormatCSV:
		return generateCSV(data)
	case FormatPDF:
		return generatePDF(data)
	default:
		return nil, ErrInvalidFormat
	}
}

// ContentType returns the MIME type of a format.
func ContentType(format string) string {
	if format == FormatCSV {
		return "text/csv"
	}
	return "application/pdf"
}

// generateCSV generates a CSV report
func generateCSV(data ExportData) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"date", "meals", "calories", "protein_g", "carbs_g", "fat_g", "target_calories", "on_target"}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, row := range data.Rows {
		record := []string{
			row.Date,
			strconv.Itoa(row.Meals),
			formatAmount(row.Calories),
			formatAmount(row.Protein),
			formatAmount(row.Carbs),
			formatAmount(row.Fat),
			strconv.Itoa(data.TargetCalories),
			strconv.FormatBool(row.OnTarget),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// generatePDF renders a one-page summary with the core Helvetica font.
func generatePDF(data ExportData) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	fontName := "Helvetica"

	pdf.AddPage()

	pdf.SetFont(fontName, "B", 16)
	pdf.Cell(0, 10, "Nutrition Report")
	pdf.Ln(8)

	pdf.SetFont(fontName, "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Period: %s - %s", data.From, data.To))
	pdf.Ln(12)

	stats := summarize(data.Rows)

	pdf.SetFont(fontName, "B", 14)
	pdf.Cell(0, 8, "Summary")
	pdf.Ln(8)

	pdf.SetFont(fontName, "", 10)
	lines := []string{
		fmt.Sprintf("Daily calorie target: %s", targetText(data.TargetCalories)),
		fmt.Sprintf("Current streak: %d days", data.Streak),
		fmt.Sprintf("Days logged: %d", len(data.Rows)),
		fmt.Sprintf("Days on target: %d", stats.onTarget),
		fmt.Sprintf("Average calories: %s", averageText(stats.avgCalories, len(data.Rows))),
	}
	for _, line := range lines {
		pdf.Cell(0, 6, line)
		pdf.Ln(5)
	}
	pdf.Ln(7)

	pdf.SetFont(fontName, "B", 14)
	pdf.Cell(0, 8, "Days")
	pdf.Ln(8)

	drawDaysTable(pdf, data.Rows, fontName)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	return buf.Bytes(), nil
}

type rowStats struct {
	onTarget    int
	avgCalories float64
}

func summarize(rows []DayRow) rowStats {
	var s rowStats
	var total float64
	for _, r := range rows {
		total += r.Calories
		if r.OnTarget {
			s.onTarget++
		}
	}
	if len(rows) > 0 {
		s.avgCalories = total / float64(len(rows))
	}
	return s
}

// drawDaysTable draws a table of logged days
func drawDaysTable(pdf *gofpdf.Fpdf, rows []DayRow, fontName string) {
	pdf.SetFont(fontName, "B", 8)

	for _, h := range []struct {
		title string
		width float64
	}{
		{"Date", 28}, {"Meals", 16}, {"kcal", 22}, {"Protein", 22}, {"Carbs", 22}, {"Fat", 22},
	} {
		pdf.CellFormat(h.width, 6, h.title, "1", 0, "C", false, 0, "")
	}
	pdf.CellFormat(22, 6, "On target", "1", 1, "C", false, 0, "")

	pdf.SetFont(fontName, "", 8)
	for _, r := range rows {
		mark := "no"
		if r.OnTarget {
			mark = "yes"
		}
		pdf.CellFormat(28, 6, r.Date, "1", 0, "C", false, 0, "")
		pdf.CellFormat(16, 6, strconv.Itoa(r.Meals), "1", 0, "C", false, 0, "")
		pdf.CellFormat(22, 6, formatAmount(r.Calories), "1", 0, "C", false, 0, "")
		pdf.CellFormat(22, 6, formatAmount(r.Protein), "1", 0, "C", false, 0, "")
		pdf.CellFormat(22, 6, formatAmount(r.Carbs), "1", 0, "C", false, 0, "")
		pdf.CellFormat(22, 6, formatAmount(r.Fat), "1", 0, "C", false, 0, "")
		pdf.CellFormat(22, 6, mark, "1", 1, "C", false, 0, "")
	}
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func targetText(kcal int) string {
	if kcal <= 0 {
		return "not set"
	}
	return strconv.Itoa(kcal) + " kcal"
}

func averageText(avg float64, days int) string {
	if days == 0 {
		return "no data"
	}
	return fmt.Sprintf("%.0f kcal", avg)
}
