package results

import "sort"

var podium = [...]Medal{MedalGold, MedalSilver, MedalBronze}

// RankingActive reports whether the selection is a sector-wide comparison for
// one month: sector and month chosen, no individual name.
func RankingActive(sel Selection) bool {
	sel = sel.Normalize()
	return sel.Sector != "" && sel.Month != "" && sel.Name == ""
}

// Ranking returns the top three rows by score for the comparison view. Rows
// without a valid score are skipped; equal scores keep their row order.
func Ranking(rows []Record, sel Selection) []RankEntry {
	if !RankingActive(sel) {
		return nil
	}
	scored := make([]Record, 0, len(rows))
	for _, rec := range rows {
		if rec.Score.Valid() {
			scored = append(scored, rec)
		}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		a, _ := scored[i].Score.Value()
		b, _ := scored[j].Score.Value()
		return a > b
	})

	entries := make([]RankEntry, 0, len(podium))
	for i := 0; i < len(scored) && i < len(podium); i++ {
		value, _ := scored[i].Score.Value()
		entries = append(entries, RankEntry{
			Position: i + 1,
			Name:     scored[i].Name,
			Score:    value,
			Medal:    podium[i],
		})
	}
	return entries
}

// MedalFor returns the medal of the first podium position held by name.
func MedalFor(name string, ranking []RankEntry) Medal {
	if name == "" {
		return MedalNone
	}
	for _, entry := range ranking {
		if entry.Name == name {
			return entry.Medal
		}
	}
	return MedalNone
}
