package domain

import "time"

// Severity is the coarse urgency of an alert, derived from the feed's color name.
type Severity string

const (
	SeverityYellow  Severity = "yellow"
	SeverityOrange  Severity = "orange"
	SeverityRed     Severity = "red"
	SeverityUnknown Severity = "unknown"
)

// Phenomenon is the weather effect inferred from a warning's free text.
type Phenomenon string

const (
	PhenomenonFog                    Phenomenon = "fog"
	PhenomenonGlazeIce               Phenomenon = "glaze-ice"
	PhenomenonHeavySnow              Phenomenon = "heavy-snow"
	PhenomenonBlizzard               Phenomenon = "blizzard"
	PhenomenonTorrentialRain         Phenomenon = "torrential-rain"
	PhenomenonHail                   Phenomenon = "hail"
	PhenomenonSquall                 Phenomenon = "squall"
	PhenomenonFrequentLightning      Phenomenon = "frequent-lightning"
	PhenomenonStrongWind             Phenomenon = "strong-wind"
	PhenomenonAtmosphericInstability Phenomenon = "atmospheric-instability"
	PhenomenonDefault                Phenomenon = "default"
)

// Region state values published to sinks.
const (
	StateAlert   = "alert"
	StateNoAlert = "no-alert"
)

// RawWarning is one warning element as found in the feed, before any decoding.
// Every field is optional; absence is the empty string.
type RawWarning struct {
	MessageTypeCode string
	MessageTypeName string
	Start           string
	End             string
	RegionText      string
	Signaling       string
	ColorCode       string
	ColorName       string
	Modified        string
	Created         string
	Title           string
}

// Alert is a normalized warning for exactly one region.
type Alert struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Severity    Severity   `json:"severity"`
	Phenomenon  Phenomenon `json:"phenomenon"`
	Regions     []string   `json:"regions"`
	Start       *time.Time `json:"start_time"`
	End         *time.Time `json:"end_time"`

	// Source values kept for diagnostics.
	RawStart        string `json:"raw_start,omitempty"`
	RawEnd          string `json:"raw_end,omitempty"`
	RegionText      string `json:"region_text,omitempty"`
	ColorCode       string `json:"color_code,omitempty"`
	ColorName       string `json:"color_name,omitempty"`
	MessageTypeCode string `json:"message_type_code,omitempty"`
	MessageTypeName string `json:"message_type_name,omitempty"`
	Created         string `json:"created,omitempty"`
	Modified        string `json:"modified,omitempty"`
}

// ActiveAt reports whether now falls inside the alert window. Alerts missing
// either bound are never active.
func (a Alert) ActiveAt(now time.Time) bool {
	if a.Start == nil || a.End == nil {
		return false
	}
	return !now.Before(*a.Start) && !now.After(*a.End)
}

// FeedResult is everything extracted from one feed document.
type FeedResult struct {
	Alerts       []Alert   `json:"alerts"`
	ActiveAlerts []Alert   `json:"active_alerts"`
	ParsedAt     time.Time `json:"parsed_at"`
	// Skipped counts warning elements that produced no alert.
	Skipped int `json:"skipped,omitempty"`
}

// RegionState is the per-region projection of a FeedResult.
type RegionState struct {
	Region          string     `json:"region"`
	State           string     `json:"state"`
	IsActive        bool       `json:"is_active"`
	AlertCount      int        `json:"alert_count"`
	ActiveCount     int        `json:"active_count"`
	Icon            string     `json:"icon"`
	ColorName       *string    `json:"color_name"`
	WindowStart     *string    `json:"window_start"`
	WindowEnd       *string    `json:"window_end"`
	SignalingText   *string    `json:"signaling_text"`
	RegionText      *string    `json:"region_text"`
	Phenomenon      Phenomenon `json:"phenomenon"`
	Severity        Severity   `json:"severity"`
	Title           string     `json:"title"`
	MessageTypeName string     `json:"message_type_name"`
}

// Snapshot is the result of one completed poll cycle. It is swapped in as a
// whole and never modified afterwards.
type Snapshot struct {
	CycleID   string        `json:"cycle_id"`
	Result    FeedResult    `json:"result"`
	States    []RegionState `json:"states"`
	UpdatedAt time.Time     `json:"updated_at"`
}
