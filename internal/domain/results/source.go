package results

import (
	"context"
	"fmt"
	"net/http"
	"os"
)

// Source loads the full dataset in one shot.
type Source interface {
	Load(ctx context.Context) ([]Record, error)
	Describe() string
}

// Replacer is a Source that can persist an imported dataset.
type Replacer interface {
	Source
	Replace(ctx context.Context, records []Record) error
}

type FileSource struct {
	Path string
}

func (s FileSource) Load(_ context.Context) ([]Record, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

func (s FileSource) Describe() string {
	return "file:" + s.Path
}

type HTTPSource struct {
	URL    string
	Client *http.Client
}

func (s HTTPSource) Load(ctx context.Context) ([]Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build dataset request: %w", err)
	}
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch dataset: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch dataset: unexpected status %d", resp.StatusCode)
	}
	return Parse(resp.Body)
}

func (s HTTPSource) Describe() string {
	return "http:" + s.URL
}
