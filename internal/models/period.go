package models

import "time"

// DateInterval is an inclusive calendar range.
type DateInterval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether the instant falls inside the interval.
func (i DateInterval) Contains(t time.Time) bool {
	return !t.Before(i.Start) && !t.After(i.End)
}

// PeriodOption is a selectable semester or full-year range. At most one
// option per list carries Selected.
type PeriodOption struct {
	Key      string       `json:"key"`
	Label    string       `json:"label"`
	Range    DateInterval `json:"range"`
	Selected bool         `json:"selected"`
}
