package shared

import (
	"net/http"

	"resultados/internal/domain/results"
)

const maxFilterLen = 200

// ParseSelection reads the name, sector, year and month query parameters.
// Values are matched later with accent and case folding, so they are only
// trimmed here.
func ParseSelection(r *http.Request, v *Validator) results.Selection {
	q := r.URL.Query()
	sel := results.Selection{
		Name:   q.Get("name"),
		Sector: q.Get("sector"),
		Year:   q.Get("year"),
		Month:  q.Get("month"),
	}.Normalize()
	v.MaxLen("name", sel.Name, maxFilterLen)
	v.MaxLen("sector", sel.Sector, maxFilterLen)
	v.MaxLen("year", sel.Year, maxFilterLen)
	v.MaxLen("month", sel.Month, maxFilterLen)
	return sel
}
