package recurrence

import (
	"github.com/google/uuid"
)

func newUUID() string {
	return uuid.NewString()
}

// Materialize clones base once per generated date of rule.
//
// Every instance gets a fresh id, its own date, and a copy of rule carrying
// one shared group id: rule.GroupID when set, otherwise a newly minted one.
// A non-repeating rule returns base unchanged. Neither input is modified.
func (e *Engine) Materialize(rule Rule, base Event) ([]Event, error) {
	if !rule.IsRepeating() {
		return []Event{base}, nil
	}

	dates, err := e.Generate(rule, base.Date)
	if err != nil {
		return nil, err
	}

	groupID := rule.GroupID
	if groupID == "" {
		groupID = e.newID()
	}
	repeat := rule.WithGroupID(groupID)

	instances := make([]Event, 0, len(dates))
	for _, date := range dates {
		inst := base.Clone()
		inst.ID = e.newID()
		inst.Date = date
		inst.Repeat = repeat.Clone()
		instances = append(instances, inst)
	}
	return instances, nil
}
