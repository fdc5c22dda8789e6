// Package session models one dashboard user's interaction state: the filter
// selection, the short-lived "filters cleared" acknowledgement and the notes
// popup. State changes go through Reduce, which is pure.
package session

import (
	"strings"

	"resultados/internal/domain/results"
)

type EventType string

const (
	EventSelect         EventType = "select"
	EventClear          EventType = "clear"
	EventClearedExpired EventType = "cleared_expired"
	EventOpenDetail     EventType = "open_detail"
	EventCloseDetail    EventType = "close_detail"
)

const (
	FieldName   = "name"
	FieldSector = "sector"
	FieldYear   = "year"
	FieldMonth  = "month"
)

// Fields lists the selectable filter fields.
var Fields = []string{FieldName, FieldSector, FieldYear, FieldMonth}

// Detail is the content of the notes popup for one table row.
type Detail struct {
	Name  string `json:"name"`
	Month string `json:"month"`
	Year  string `json:"year"`
	Note1 int    `json:"note1"`
	Note2 int    `json:"note2"`
	Note3 int    `json:"note3"`
}

func DetailFor(rec results.Record) Detail {
	return Detail{
		Name:  rec.Name,
		Month: rec.Month,
		Year:  rec.Year,
		Note1: rec.Note1,
		Note2: rec.Note2,
		Note3: rec.Note3,
	}
}

type Event struct {
	Type   EventType
	Field  string
	Value  string
	Detail *Detail
}

type State struct {
	Selection results.Selection `json:"selection"`
	Cleared   bool              `json:"cleared"`
	Detail    *Detail           `json:"detail,omitempty"`
	Version   int               `json:"version"`
}

// Reduce applies ev to s and returns the next state. Unknown events and
// unknown fields leave the state unchanged. Every action other than clear
// dismisses a pending "cleared" acknowledgement.
func Reduce(s State, ev Event) State {
	next := s
	switch ev.Type {
	case EventSelect:
		sel, ok := withField(s.Selection, ev.Field, ev.Value)
		if !ok {
			return s
		}
		next.Selection = sel
		next.Cleared = false
	case EventClear:
		next.Selection = results.Selection{}
		next.Cleared = true
	case EventClearedExpired:
		if !s.Cleared {
			return s
		}
		next.Cleared = false
	case EventOpenDetail:
		if ev.Detail == nil {
			return s
		}
		detail := *ev.Detail
		next.Detail = &detail
		next.Cleared = false
	case EventCloseDetail:
		if s.Detail == nil {
			return s
		}
		next.Detail = nil
		next.Cleared = false
	default:
		return s
	}
	next.Version = s.Version + 1
	return next
}

func withField(sel results.Selection, field, value string) (results.Selection, bool) {
	value = strings.TrimSpace(value)
	switch strings.ToLower(strings.TrimSpace(field)) {
	case FieldName:
		sel.Name = value
	case FieldSector:
		sel.Sector = value
	case FieldYear:
		sel.Year = value
	case FieldMonth:
		sel.Month = value
	default:
		return sel, false
	}
	return sel, true
}
