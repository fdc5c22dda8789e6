package results

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func exportRecords() []Record {
	return []Record{
		{Name: "Ana", Sector: "TI", Month: "janeiro", Year: "2024", Assumed: 10, Completed: 9, Score: ValidScore(8.5), Note1: 1, Note2: 2, Note3: 3},
		{Name: `Bea "B"`, Sector: "TI", Month: "janeiro", Year: "2024", Score: InvalidScore()},
	}
}

func TestWriteCSVLayout(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, exportRecords()))

	want := "Nome;Setor;Mês;Ano;Score;Assumidos;Finalizados;Notas1;Notas2;Notas3\n" +
		`"Ana";"TI";"janeiro";"2024";"8.50";"10";"9";"1";"2";"3"` + "\n" +
		`"Bea ""B""";"TI";"janeiro";"2024";"";"0";"0";"0";"0";"0"`
	assert.Equal(t, want, buf.String())
}

func TestWriteCSVHeaderOnlyWhenEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, "Nome;Setor;Mês;Ano;Score;Assumidos;Finalizados;Notas1;Notas2;Notas3", buf.String())
}

func pdfRecords(n int) []Record {
	out := make([]Record, n)
	for i := range out {
		out[i] = Record{Name: fmt.Sprintf("Pessoa %d", i), Month: "março", Year: "2024", Score: ValidScore(7)}
	}
	return out
}

func TestBuildPDFPageBreaks(t *testing.T) {
	assert.Equal(t, 1, BuildPDF(nil).PageNo())
	assert.Equal(t, 1, BuildPDF(pdfRecords(5)).PageNo(), "five blocks fit on the first page")
	assert.Equal(t, 2, BuildPDF(pdfRecords(6)).PageNo())
	assert.Equal(t, 2, BuildPDF(pdfRecords(10)).PageNo())
	assert.Equal(t, 3, BuildPDF(pdfRecords(11)).PageNo())
}

func TestLayoutPDFKeepsBlocksAboveFooter(t *testing.T) {
	places := layoutPDF(16)
	perPage := map[int]int{}
	for i, place := range places {
		rule := place.Y + pdfBlockHeight
		assert.LessOrEqual(t, rule, pdfFooterY-pdfLineAdvance, "block %d on page %d", i, place.Page)
		perPage[place.Page]++
	}
	assert.Equal(t, map[int]int{1: 5, 2: 5, 3: 5, 4: 1}, perPage)
}

func TestWritePDFProducesDocument(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePDF(&buf, exportRecords()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, exportRecords()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	header, err := f.GetCellValue(xlsxSheet, "C1")
	require.NoError(t, err)
	assert.Equal(t, "Mês", header)

	name, err := f.GetCellValue(xlsxSheet, "A2")
	require.NoError(t, err)
	assert.Equal(t, "Ana", name)

	score, err := f.GetCellValue(xlsxSheet, "E2")
	require.NoError(t, err)
	assert.Equal(t, "8.5", score)

	missing, err := f.GetCellValue(xlsxSheet, "E3")
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestParseFormat(t *testing.T) {
	format, err := ParseFormat(" PDF ")
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, format)
	assert.Equal(t, "resultados_filtrados.pdf", format.FileName())

	_, err = ParseFormat("docx")
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))

	err = Export(&bytes.Buffer{}, Format("docx"), nil)
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}
