package results

const (
	StatusLoading LoadStatus = "loading"
	StatusLoaded  LoadStatus = "loaded"
	StatusFailed  LoadStatus = "failed"

	Placeholder = "–"

	HeaderName      = "Nome"
	HeaderSector    = "Setor"
	HeaderMonth     = "Mês"
	HeaderAssumed   = "Assumidos"
	HeaderCompleted = "Finalizados"
	HeaderScore     = "Score"
	HeaderYear      = "Ano"
	HeaderNote1     = "Notas1"
	HeaderNote2     = "Notas2"
	HeaderNote3     = "Notas3"

	ExportBaseName = "resultados_filtrados"

	ReportTitle  = "Relatório de Resultados Filtrados"
	ReportFooter = "Gerado por colaborador-resultados-app"

	ChartScoreLabel     = "Score Mensal"
	ChartCompletedLabel = "Finalizados"
)

// ExportHeaders is the column order of the tabular exports.
var ExportHeaders = []string{
	HeaderName, HeaderSector, HeaderMonth, HeaderYear, HeaderScore,
	HeaderAssumed, HeaderCompleted, HeaderNote1, HeaderNote2, HeaderNote3,
}
