package results

import (
	"sort"
	"strconv"
	"strings"
)

// Matches reports whether a record satisfies every present selection field.
func Matches(rec Record, sel Selection) bool {
	sel = sel.Normalize()
	if sel.Name != "" && !Equal(rec.Name, sel.Name) {
		return false
	}
	if sel.Sector != "" && !Equal(rec.Sector, sel.Sector) {
		return false
	}
	if sel.Year != "" && strings.TrimSpace(rec.Year) != sel.Year {
		return false
	}
	if sel.Month != "" && !Equal(rec.Month, sel.Month) {
		return false
	}
	return true
}

// Filter returns the matching records ordered by (year, month). The input is
// left untouched and records of the same period keep their input order.
func Filter(records []Record, sel Selection) []Record {
	out := make([]Record, 0, len(records))
	for _, rec := range records {
		if Matches(rec, sel) {
			out = append(out, rec)
		}
	}
	SortChronological(out)
	return out
}

// SortChronological stable-sorts records by year then calendar month.
// Unrecognized months sort as January of their year.
func SortChronological(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return chronoBefore(records[i], records[j])
	})
}

func chronoBefore(a, b Record) bool {
	ya, yb := yearValue(a.Year), yearValue(b.Year)
	if ya != yb {
		return ya < yb
	}
	return sortMonth(a.Month) < sortMonth(b.Month)
}

func yearValue(year string) int {
	value, err := strconv.Atoi(strings.TrimSpace(year))
	if err != nil {
		return 0
	}
	return value
}

func sortMonth(label string) int {
	idx, ok := MonthIndex(label)
	if !ok {
		return 0
	}
	return idx
}

// Names lists the distinct people, scoped to the selected sector when set.
func Names(records []Record, sector string) []string {
	sector = strings.TrimSpace(sector)
	seen := map[string]struct{}{}
	for _, rec := range records {
		if rec.Name == "" {
			continue
		}
		if sector != "" && !Equal(rec.Sector, sector) {
			continue
		}
		seen[rec.Name] = struct{}{}
	}
	return sortedKeys(seen)
}

func Sectors(records []Record) []string {
	seen := map[string]struct{}{}
	for _, rec := range records {
		if rec.Sector != "" {
			seen[rec.Sector] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

// Years lists the distinct years, most recent first. Ordering is by string,
// which assumes four digit years.
func Years(records []Record) []string {
	seen := map[string]struct{}{}
	for _, rec := range records {
		if year := strings.TrimSpace(rec.Year); year != "" {
			seen[year] = struct{}{}
		}
	}
	years := sortedKeys(seen)
	sort.Sort(sort.Reverse(sort.StringSlice(years)))
	return years
}

// MonthsPresent lists the canonical months found in the data in calendar
// order. Labels that are not months are dropped.
func MonthsPresent(records []Record) []string {
	var present [12]bool
	for _, rec := range records {
		if idx, ok := MonthIndex(rec.Month); ok {
			present[idx] = true
		}
	}
	months := make([]string, 0, len(Months))
	for i, label := range Months {
		if present[i] {
			months = append(months, label)
		}
	}
	return months
}

func BuildOptions(records []Record, sel Selection) Options {
	return Options{
		Names:   Names(records, sel.Sector),
		Sectors: Sectors(records),
		Years:   Years(records),
		Months:  MonthsPresent(records),
	}
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for key := range set {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}
