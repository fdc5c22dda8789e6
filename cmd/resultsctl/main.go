// Command resultsctl filters a results CSV offline and writes the matching
// rows as csv, pdf or xlsx, or prints the derived view as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"resultados/internal/domain/results"
	"resultados/internal/platform/logging"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "resultsctl:", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("resultsctl", flag.ContinueOnError)
	in := fs.String("in", "", "dataset CSV path or http(s) URL")
	format := fs.String("format", "csv", "export format: csv | pdf | xlsx | json")
	out := fs.String("out", "", "output file (defaults to resultados_filtrados.<format>, - for stdout)")
	name := fs.String("name", "", "filter by employee name")
	sector := fs.String("sector", "", "filter by sector")
	year := fs.String("year", "", "filter by year")
	month := fs.String("month", "", "filter by month name")
	timeout := fs.Duration("timeout", 15*time.Second, "timeout for remote datasets")
	logLevel := fs.String("log-level", "warn", "debug | info | warn | error")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*in) == "" {
		return fmt.Errorf("-in is required")
	}
	logger := logging.New(os.Stderr, *logLevel)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	records, err := source(*in, *timeout).Load(ctx)
	if err != nil {
		return err
	}
	logger.Info("dataset loaded", "source", *in, "count", len(records))

	view := results.Derive(records, results.Selection{Name: *name, Sector: *sector, Year: *year, Month: *month})
	logger.Info("filter applied", "rows", view.Total, "filtersActive", view.FiltersActive)

	if strings.EqualFold(*format, "json") {
		return writeTo(*out, "", stdout, func(w io.Writer) error {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(view)
		})
	}

	f, err := results.ParseFormat(*format)
	if err != nil {
		return err
	}
	return writeTo(*out, f.FileName(), stdout, func(w io.Writer) error {
		return results.Export(w, f, view.Records())
	})
}

func source(in string, timeout time.Duration) results.Source {
	if strings.HasPrefix(in, "http://") || strings.HasPrefix(in, "https://") {
		return results.HTTPSource{URL: in, Client: &http.Client{Timeout: timeout}}
	}
	return results.FileSource{Path: in}
}

// writeTo sends output to path, to stdout for "-", or to fallback when path
// is empty. An empty fallback also means stdout.
func writeTo(path, fallback string, stdout io.Writer, write func(io.Writer) error) error {
	if path == "" {
		path = fallback
	}
	if path == "" || path == "-" {
		return write(stdout)
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
