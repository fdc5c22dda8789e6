package results

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatPDF  Format = "pdf"
	FormatXLSX Format = "xlsx"
)

func ParseFormat(raw string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(raw))) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatPDF:
		return FormatPDF, nil
	case FormatXLSX:
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, raw)
}

func (f Format) FileName() string {
	return ExportBaseName + "." + string(f)
}

func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatPDF:
		return "application/pdf"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "application/octet-stream"
}

// Export writes records in the requested format.
func Export(w io.Writer, format Format, records []Record) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, records)
	case FormatPDF:
		return WritePDF(w, records)
	case FormatXLSX:
		return WriteXLSX(w, records)
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// WriteCSV writes the semicolon separated export: a bare header row and one
// row per record with every field quoted.
func WriteCSV(w io.Writer, records []Record) error {
	buf := bufio.NewWriter(w)
	if _, err := buf.WriteString(strings.Join(ExportHeaders, ";")); err != nil {
		return err
	}
	for _, rec := range records {
		fields := exportFields(rec)
		for i, field := range fields {
			fields[i] = `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
		}
		if _, err := buf.WriteString("\n" + strings.Join(fields, ";")); err != nil {
			return err
		}
	}
	return buf.Flush()
}

// exportFields follows ExportHeaders.
func exportFields(rec Record) []string {
	score := ""
	if value, ok := rec.Score.Value(); ok {
		score = formatScore(value)
	}
	return []string{
		rec.Name,
		rec.Sector,
		rec.Month,
		rec.Year,
		score,
		strconv.Itoa(rec.Assumed),
		strconv.Itoa(rec.Completed),
		strconv.Itoa(rec.Note1),
		strconv.Itoa(rec.Note2),
		strconv.Itoa(rec.Note3),
	}
}

func formatScore(value float64) string {
	return strconv.FormatFloat(value, 'f', 2, 64)
}
