package results

import (
	"strings"
)

// Timeline returns the records of one person that can be charted: a year, a
// recognized month and a valid score. Dataset order is kept.
func Timeline(records []Record, name string) []Record {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	out := make([]Record, 0)
	for _, rec := range records {
		if !Equal(rec.Name, name) || strings.TrimSpace(rec.Year) == "" || !rec.Score.Valid() {
			continue
		}
		if _, ok := MonthIndex(rec.Month); !ok {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// Chart orders a timeline chronologically and splits it into the score and
// completed series.
func Chart(timeline []Record) ChartSeries {
	points := make([]Record, len(timeline))
	copy(points, timeline)
	SortChronological(points)

	series := ChartSeries{
		Labels:    make([]string, 0, len(points)),
		Scores:    make([]float64, 0, len(points)),
		Completed: make([]int, 0, len(points)),
	}
	for _, rec := range points {
		value, ok := rec.Score.Value()
		if !ok {
			continue
		}
		month, _ := CanonicalMonth(rec.Month)
		series.Labels = append(series.Labels, month+"/"+strings.TrimSpace(rec.Year))
		series.Scores = append(series.Scores, value)
		series.Completed = append(series.Completed, rec.Completed)
	}
	return series
}
