package results

import (
	"strings"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Months lists the canonical month labels in calendar order.
var Months = [12]string{
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

var monthIndex = func() map[string]int {
	index := make(map[string]int, len(Months))
	for i, label := range Months {
		index[Fold(label)] = i
	}
	return index
}()

// combining diacritical marks block
var combiningMark = runes.Predicate(func(r rune) bool {
	return r >= 0x0300 && r <= 0x036F
})

// Fold lower-cases s and strips combining diacritics so that "Março" and
// "marco" compare equal.
func Fold(s string) string {
	if s == "" {
		return ""
	}
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(combiningMark), norm.NFC), strings.ToLower(s))
	if err != nil {
		return strings.ToLower(s)
	}
	return folded
}

// Equal compares two labels accent- and case-insensitively.
func Equal(a, b string) bool {
	return Fold(a) == Fold(b)
}

// MonthIndex returns the 0-11 calendar position of a month label.
func MonthIndex(label string) (int, bool) {
	idx, ok := monthIndex[Fold(strings.TrimSpace(label))]
	return idx, ok
}

// CanonicalMonth maps any spelling of a month to its canonical label.
func CanonicalMonth(label string) (string, bool) {
	idx, ok := MonthIndex(label)
	if !ok {
		return "", false
	}
	return Months[idx], true
}
