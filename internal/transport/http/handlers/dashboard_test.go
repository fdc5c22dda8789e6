package handlers_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	Name   string   `json:"name"`
	Year   string   `json:"year"`
	Month  string   `json:"month"`
	Score  *float64 `json:"score"`
	Medal  string   `json:"medal"`
	Period string   `json:"period"`
}

type view struct {
	FiltersActive bool  `json:"filtersActive"`
	Total         int   `json:"total"`
	Rows          []row `json:"rows"`
	Ranking       []struct {
		Position int    `json:"position"`
		Name     string `json:"name"`
		Medal    string `json:"medal"`
	} `json:"ranking"`
	Options struct {
		Names   []string `json:"names"`
		Sectors []string `json:"sectors"`
		Years   []string `json:"years"`
		Months  []string `json:"months"`
	} `json:"options"`
	Chart struct {
		Labels []string  `json:"labels"`
		Scores []float64 `json:"scores"`
	} `json:"chart"`
}

func TestSectorMonthComparison(t *testing.T) {
	ts := startApp(t, testConfig(t))
	client := ts.Client()

	var v view
	env := getJSON(t, client, ts.URL+"/api/v1/results?sector=ti&month=marco&year=2024", http.StatusOK, &v)
	assert.True(t, env.Success)
	assert.NotEmpty(t, env.RequestID)
	assert.True(t, v.FiltersActive)
	require.Equal(t, 4, v.Total)

	names := []string{}
	medals := map[string]string{}
	for _, r := range v.Rows {
		names = append(names, r.Name)
		medals[r.Name] = r.Medal
	}
	assert.Equal(t, []string{"Ana", "Bea", "Caio", "Duda"}, names, "dataset order within the same period")
	assert.Equal(t, map[string]string{"Ana": "silver", "Bea": "gold", "Caio": "bronze", "Duda": ""}, medals)
	require.Len(t, v.Ranking, 3)
	assert.Equal(t, "Bea", v.Ranking[0].Name)
	assert.Equal(t, "março de 2024", v.Rows[0].Period)
}

func TestUnfilteredViewIsChronological(t *testing.T) {
	ts := startApp(t, testConfig(t))

	var v view
	getJSON(t, ts.Client(), ts.URL+"/api/v1/results", http.StatusOK, &v)
	assert.False(t, v.FiltersActive)
	require.Equal(t, 7, v.Total)
	assert.Equal(t, "2023", v.Rows[0].Year)
	assert.Equal(t, "janeiro", v.Rows[1].Month)
	assert.Empty(t, v.Ranking)
	for _, r := range v.Rows {
		assert.Empty(t, r.Medal)
		if r.Name == "Eva" {
			assert.Nil(t, r.Score, "blank score stays missing")
		}
	}
	assert.Equal(t, []string{"RH", "TI"}, v.Options.Sectors)
	assert.Equal(t, []string{"2024", "2023"}, v.Options.Years)
}

func TestOptionsScopedBySector(t *testing.T) {
	ts := startApp(t, testConfig(t))

	var opts struct {
		Names []string `json:"names"`
	}
	getJSON(t, ts.Client(), ts.URL+"/api/v1/results/options?sector=rh", http.StatusOK, &opts)
	assert.Equal(t, []string{"Eva"}, opts.Names)
}

func TestTimelineChart(t *testing.T) {
	ts := startApp(t, testConfig(t))
	client := ts.Client()

	var tl struct {
		Timeline []row `json:"timeline"`
		Chart    struct {
			Labels []string  `json:"labels"`
			Scores []float64 `json:"scores"`
		} `json:"chart"`
	}
	getJSON(t, client, ts.URL+"/api/v1/results/timeline?name=ANA", http.StatusOK, &tl)
	require.Len(t, tl.Timeline, 3)
	assert.Equal(t, []float64{7.7, 9.9, 8.5}, tl.Chart.Scores)
	assert.Equal(t, []string{"dezembro/2023", "janeiro/2024", "março/2024"}, tl.Chart.Labels)

	env := getJSON(t, client, ts.URL+"/api/v1/results/timeline", http.StatusBadRequest, nil)
	assert.Equal(t, "validation_error", env.Error.Code)
}

func TestRecordsPagination(t *testing.T) {
	ts := startApp(t, testConfig(t))

	resp, raw := do(t, ts.Client(), http.MethodGet, ts.URL+"/api/v1/results/records?limit=2&offset=1", "", "", nil, http.StatusOK)
	assert.Equal(t, "7", resp.Header.Get("X-Total-Count"))
	var records []row
	decode(t, raw, &records)
	require.Len(t, records, 2)
	assert.Equal(t, "Bea", records[0].Name)
}

func TestExports(t *testing.T) {
	ts := startApp(t, testConfig(t))
	client := ts.Client()

	resp, body := do(t, client, http.MethodGet, ts.URL+"/api/v1/results/export/csv?sector=RH", "", "", nil, http.StatusOK)
	assert.Equal(t, `attachment; filename="resultados_filtrados.csv"`, resp.Header.Get("Content-Disposition"))
	lines := strings.Split(string(body), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Nome;Setor;Mês;Ano;Score;Assumidos;Finalizados;Notas1;Notas2;Notas3", lines[0])
	assert.Equal(t, `"Eva";"RH";"março";"2024";"";"5";"5";"5";"4";"5"`, lines[1])

	resp, body = do(t, client, http.MethodGet, ts.URL+"/api/v1/results/export/pdf", "", "", nil, http.StatusOK)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.True(t, strings.HasPrefix(string(body), "%PDF"))

	resp, _ = do(t, client, http.MethodGet, ts.URL+"/api/v1/results/export/xlsx?name=ana", "", "", nil, http.StatusOK)
	assert.Contains(t, resp.Header.Get("Content-Type"), "spreadsheetml")

	_, raw := do(t, client, http.MethodGet, ts.URL+"/api/v1/results/export/docx", "", "", nil, http.StatusBadRequest)
	assert.Equal(t, "unsupported_format", decode(t, raw, nil).Error.Code)
}

func TestFailedLoadIsReported(t *testing.T) {
	cfg := testConfig(t)
	cfg.DatasetPath = cfg.DatasetPath + ".missing"
	ts := startApp(t, cfg)
	client := ts.Client()

	var ds struct {
		Status string `json:"status"`
		Error  string `json:"error"`
	}
	getJSON(t, client, ts.URL+"/api/v1/dataset", http.StatusOK, &ds)
	assert.Equal(t, "failed", ds.Status)
	assert.NotEmpty(t, ds.Error)

	env := getJSON(t, client, ts.URL+"/api/v1/results", http.StatusServiceUnavailable, nil)
	assert.Equal(t, "dataset_unavailable", env.Error.Code)

	do(t, client, http.MethodGet, ts.URL+"/readyz", "", "", nil, http.StatusServiceUnavailable)
}

func TestHealthAndMetrics(t *testing.T) {
	ts := startApp(t, testConfig(t))
	client := ts.Client()

	do(t, client, http.MethodGet, ts.URL+"/healthz", "", "", nil, http.StatusOK)
	do(t, client, http.MethodGet, ts.URL+"/readyz", "", "", nil, http.StatusOK)
	getJSON(t, client, ts.URL+"/api/v1/results", http.StatusOK, nil)

	_, body := do(t, client, http.MethodGet, ts.URL+"/metrics", "", "", nil, http.StatusOK)
	text := string(body)
	assert.Contains(t, text, "resultados_http_requests_total{")
	assert.Contains(t, text, "resultados_views_derived_total 1")
	assert.Contains(t, text, "resultados_dataset_records 7")
}
