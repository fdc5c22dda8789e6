package handlers_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"resultados/internal/app/server"
	"resultados/internal/platform/config"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	RequestID string `json:"requestId"`
}

const dashboardCSV = "Nome;Setor;Mês;Assumidos;Finalizados;Score;Ano;Notas1;Notas2;Notas3\n" +
	"Ana;TI;Março;10;9;8,5;2024;4;5;3\n" +
	"Bea;TI;Março;8;8;9,2;2024;5;5;5\n" +
	"Caio;TI;Março;7;5;7,0;2024;3;3;3\n" +
	"Duda;TI;Março;6;6;6,5;2024;2;2;2\n" +
	"Ana;TI;Janeiro;10;10;9,9;2024;5;5;5\n" +
	"Eva;RH;Março;5;5;;2024;5;4;5\n" +
	"Ana;TI;Dezembro;3;3;7,7;2023;1;1;1\n"

func testConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "dados_v4.csv")
	if err := os.WriteFile(path, []byte(dashboardCSV), 0o600); err != nil {
		t.Fatalf("write dataset: %v", err)
	}
	cfg := config.New()
	cfg.Environment = "test"
	cfg.DatasetPath = path
	cfg.FrontendDir = dir
	cfg.RateLimitPerMinute = 1000
	cfg.ClearedNoticeTTL = 50 * time.Millisecond
	return cfg
}

// startApp serves the app and waits for the first dataset load to finish.
func startApp(t *testing.T, cfg config.Config) *httptest.Server {
	t.Helper()
	app, err := server.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	t.Cleanup(app.Close)

	ts := httptest.NewServer(app.Router)
	t.Cleanup(ts.Close)

	deadline := time.Now().Add(2 * time.Second)
	for app.Results.Snapshot().Status == "loading" {
		if time.Now().After(deadline) {
			t.Fatal("dataset did not finish loading")
		}
		time.Sleep(5 * time.Millisecond)
	}
	return ts
}

func do(t *testing.T, client *http.Client, method, url, token, contentType string, body io.Reader, want int) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response: %v", err)
	}
	if resp.StatusCode != want {
		t.Fatalf("%s %s: expected status %d, got %d: %s", method, url, want, resp.StatusCode, string(raw))
	}
	return resp, raw
}

func decode(t *testing.T, raw []byte, out any) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("failed to decode envelope: %v: %s", err, string(raw))
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			t.Fatalf("failed to decode data: %v", err)
		}
	}
	return env
}

func getJSON(t *testing.T, client *http.Client, url string, want int, out any) envelope {
	t.Helper()
	_, raw := do(t, client, http.MethodGet, url, "", "", nil, want)
	return decode(t, raw, out)
}

func postJSON(t *testing.T, client *http.Client, url, token, body string, want int, out any) envelope {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	_, raw := do(t, client, http.MethodPost, url, token, "application/json", reader, want)
	return decode(t, raw, out)
}
