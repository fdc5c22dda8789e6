package results

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var candidateDelimiters = []rune{';', ',', '\t', '|'}

// Parse reads delimited text with a header row into records. Field level
// problems never fail the parse: counts and notes fall back to 0 and scores to
// Invalid. Only an unreadable stream returns an error.
func Parse(r io.Reader) ([]Record, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}

	reader := csv.NewReader(bytes.NewReader(raw))
	reader.Comma = detectDelimiter(raw)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		key := norm.NFC.String(strings.TrimSpace(name))
		if _, seen := columns[key]; !seen {
			columns[key] = i
		}
	}

	var records []Record
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if blankRow(fields) {
			continue
		}
		row := func(column string) string {
			idx, ok := columns[column]
			if !ok || idx >= len(fields) {
				return ""
			}
			return strings.TrimSpace(fields[idx])
		}
		records = append(records, Record{
			Name:      row(HeaderName),
			Sector:    row(HeaderSector),
			Month:     strings.ToLower(row(HeaderMonth)),
			Year:      row(HeaderYear),
			Assumed:   ParseCount(row(HeaderAssumed)),
			Completed: ParseCount(row(HeaderCompleted)),
			Score:     ParseScore(row(HeaderScore)),
			Note1:     ParseCount(row(HeaderNote1)),
			Note2:     ParseCount(row(HeaderNote2)),
			Note3:     ParseCount(row(HeaderNote3)),
		})
	}
	return records, nil
}

// ParseScore accepts one decimal comma or point and nothing else: trailing
// text ("8,5 pts") or thousands separators ("1.234,5") make it Invalid.
func ParseScore(raw string) Score {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return InvalidScore()
	}
	value, err := strconv.ParseFloat(strings.Replace(raw, ",", ".", 1), 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return InvalidScore()
	}
	return ValidScore(value)
}

// ParseCount reads the leading integer of raw ("10", "10.0", "7 itens").
// Missing or non-numeric input yields 0.
func ParseCount(raw string) int {
	raw = strings.TrimSpace(raw)
	end := 0
	if end < len(raw) && (raw[end] == '-' || raw[end] == '+') {
		end++
	}
	digits := end
	for end < len(raw) && raw[end] >= '0' && raw[end] <= '9' {
		end++
	}
	if end == digits {
		return 0
	}
	value, err := strconv.Atoi(raw[:end])
	if err != nil {
		return 0
	}
	return value
}

func detectDelimiter(raw []byte) rune {
	scanner := bufio.NewScanner(bytes.NewReader(raw))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	if !scanner.Scan() {
		return ','
	}
	line := scanner.Text()
	best, bestCount := ',', 0
	for _, candidate := range candidateDelimiters {
		if count := strings.Count(line, string(candidate)); count > bestCount {
			best, bestCount = candidate, count
		}
	}
	return best
}

func blankRow(fields []string) bool {
	for _, field := range fields {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
