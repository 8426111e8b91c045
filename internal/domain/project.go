package domain

import (
	"strings"
	"time"
)

// ProjectRegion derives the state of one region from a parse result. region
// may be AllRegions, a county name in any case or spelling Lookup accepts, or
// UnknownRegion. Anything else never matches an alert and projects no-alert.
func ProjectRegion(region string, all, active []Alert) RegionState {
	name, matches := resolveRegion(region)

	activeKeys := make(map[alertKey]struct{}, len(active))
	for i := range active {
		activeKeys[keyOf(&active[i])] = struct{}{}
	}

	state := RegionState{
		Region:     name,
		State:      StateNoAlert,
		Icon:       IconNoAlert,
		Phenomenon: PhenomenonDefault,
		Severity:   SeverityUnknown,
	}

	var first, firstActive *Alert
	for i := range all {
		a := &all[i]
		if !matches(a) {
			continue
		}
		state.AlertCount++
		if first == nil {
			first = a
		}
		if _, ok := activeKeys[keyOf(a)]; ok {
			state.ActiveCount++
			if firstActive == nil {
				firstActive = a
			}
		}
	}

	rep := firstActive
	if rep == nil {
		rep = first
	}
	if rep == nil {
		return state
	}

	state.IsActive = firstActive != nil
	if state.IsActive {
		state.State = StateAlert
		state.Icon = rep.Phenomenon.Icon()
	}
	state.ColorName = optional(rep.ColorName)
	state.WindowStart = formatWindow(rep.Start)
	state.WindowEnd = formatWindow(rep.End)
	state.SignalingText = optional(rep.Description)
	state.RegionText = optional(rep.RegionText)
	state.Phenomenon = rep.Phenomenon
	state.Severity = rep.Severity
	state.Title = rep.Title
	state.MessageTypeName = rep.MessageTypeName
	return state
}

// ProjectRegions projects every configured region in order. No regions means
// the whole country.
func ProjectRegions(regions []string, result FeedResult) []RegionState {
	if len(regions) == 0 {
		regions = []string{AllRegions}
	}
	states := make([]RegionState, 0, len(regions))
	for _, r := range regions {
		states = append(states, ProjectRegion(r, result.Alerts, result.ActiveAlerts))
	}
	return states
}

func resolveRegion(region string) (string, func(*Alert) bool) {
	key := FoldKey(region)
	switch key {
	case AllRegions:
		return AllRegions, func(*Alert) bool { return true }
	case FoldKey(UnknownRegion):
		return UnknownRegion, hasRegion(UnknownRegion)
	}
	if canonical, ok := Counties.Lookup(region); ok {
		return canonical, hasRegion(canonical)
	}
	return strings.TrimSpace(region), func(*Alert) bool { return false }
}

// alertKey identifies an alert for the active lookup. IDs alone can collide:
// warnings created in the same minute for the same county and color share one.
// Activity depends only on the window, so ID and window together decide it.
type alertKey struct {
	id         string
	start, end time.Time
}

func keyOf(a *Alert) alertKey {
	k := alertKey{id: a.ID}
	if a.Start != nil {
		k.start = a.Start.UTC()
	}
	if a.End != nil {
		k.end = a.End.UTC()
	}
	return k
}

func hasRegion(name string) func(*Alert) bool {
	return func(a *Alert) bool {
		for _, r := range a.Regions {
			if r == name {
				return true
			}
		}
		return false
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func formatWindow(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
