package results

import (
	"encoding/json"
	"math"
	"strings"
	"time"
)

// Score is a performance score that is either a finite value or explicitly
// missing. The zero value is Invalid.
type Score struct {
	value float64
	valid bool
}

func ValidScore(value float64) Score {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return Score{}
	}
	return Score{value: value, valid: true}
}

func InvalidScore() Score {
	return Score{}
}

func (s Score) Valid() bool {
	return s.valid
}

// Value returns the score and whether it is valid.
func (s Score) Value() (float64, bool) {
	return s.value, s.valid
}

func (s Score) MarshalJSON() ([]byte, error) {
	if !s.valid {
		return []byte("null"), nil
	}
	return json.Marshal(s.value)
}

func (s *Score) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = InvalidScore()
		return nil
	}
	var value float64
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	*s = ValidScore(value)
	return nil
}

type Record struct {
	Name      string `json:"name"`
	Sector    string `json:"sector"`
	Month     string `json:"month"`
	Year      string `json:"year"`
	Assumed   int    `json:"assumed"`
	Completed int    `json:"completed"`
	Score     Score  `json:"score"`
	Note1     int    `json:"note1"`
	Note2     int    `json:"note2"`
	Note3     int    `json:"note3"`
}

// Period renders the month/year cell of the results table.
func (r Record) Period() string {
	if r.Month == "" || r.Year == "" {
		return Placeholder
	}
	return r.Month + " de " + r.Year
}

// ScoreText renders the score with two decimals or the placeholder.
func (r Record) ScoreText() string {
	if value, ok := r.Score.Value(); ok {
		return formatScore(value)
	}
	return Placeholder
}

type Selection struct {
	Name   string `json:"name,omitempty"`
	Sector string `json:"sector,omitempty"`
	Year   string `json:"year,omitempty"`
	Month  string `json:"month,omitempty"`
}

// Normalize trims every field so that blank input means "no constraint".
func (s Selection) Normalize() Selection {
	return Selection{
		Name:   strings.TrimSpace(s.Name),
		Sector: strings.TrimSpace(s.Sector),
		Year:   strings.TrimSpace(s.Year),
		Month:  strings.TrimSpace(s.Month),
	}
}

// Active reports whether at least one field constrains the view.
func (s Selection) Active() bool {
	n := s.Normalize()
	return n.Name != "" || n.Sector != "" || n.Year != "" || n.Month != ""
}

type Medal string

const (
	MedalNone   Medal = ""
	MedalGold   Medal = "gold"
	MedalSilver Medal = "silver"
	MedalBronze Medal = "bronze"
)

type Row struct {
	Record
	Medal  Medal  `json:"medal,omitempty"`
	Period string `json:"period"`
}

type RankEntry struct {
	Position int     `json:"position"`
	Name     string  `json:"name"`
	Score    float64 `json:"score"`
	Medal    Medal   `json:"medal"`
}

type Options struct {
	Names   []string `json:"names"`
	Sectors []string `json:"sectors"`
	Years   []string `json:"years"`
	Months  []string `json:"months"`
}

type ChartSeries struct {
	Labels    []string  `json:"labels"`
	Scores    []float64 `json:"scores"`
	Completed []int     `json:"completed"`
}

type DerivedView struct {
	Selection     Selection   `json:"selection"`
	FiltersActive bool        `json:"filtersActive"`
	Rows          []Row       `json:"rows"`
	Total         int         `json:"total"`
	Options       Options     `json:"options"`
	Ranking       []RankEntry `json:"ranking"`
	Timeline      []Record    `json:"timeline"`
	Chart         ChartSeries `json:"chart"`
}

type LoadStatus string

type Dataset struct {
	Status   LoadStatus `json:"status"`
	Records  []Record   `json:"-"`
	Count    int        `json:"count"`
	Source   string     `json:"source"`
	Error    string     `json:"error,omitempty"`
	LoadedAt *time.Time `json:"loadedAt,omitempty"`
}
