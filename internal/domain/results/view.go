package results

// Derive computes every view of the dashboard from the dataset and the
// current selection. It is pure: the same inputs always give the same view.
func Derive(records []Record, sel Selection) DerivedView {
	sel = sel.Normalize()
	filtered := Filter(records, sel)
	ranking := Ranking(filtered, sel)
	timeline := Timeline(records, sel.Name)

	rows := make([]Row, len(filtered))
	for i, rec := range filtered {
		rows[i] = Row{Record: rec, Medal: MedalFor(rec.Name, ranking), Period: rec.Period()}
	}

	return DerivedView{
		Selection:     sel,
		FiltersActive: sel.Active(),
		Rows:          rows,
		Total:         len(rows),
		Options:       BuildOptions(records, sel),
		Ranking:       ranking,
		Timeline:      timeline,
		Chart:         Chart(timeline),
	}
}

// Records strips the presentation fields from derived rows.
func (v DerivedView) Records() []Record {
	out := make([]Record, len(v.Rows))
	for i, row := range v.Rows {
		out[i] = row.Record
	}
	return out
}
