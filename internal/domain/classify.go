package domain

import "strings"

// phenomenonKeywords is evaluated in order and the first keyword found wins,
// so specific terms must precede the generic ones they overlap with
// (vijelie before vant). Keywords are folded: no diacritics, lowercase.
var phenomenonKeywords = []struct {
	keyword string
	tag     Phenomenon
}{
	{"ceata", PhenomenonFog},
	{"polei", PhenomenonGlazeIce},
	{"ninsoare", PhenomenonHeavySnow},
	{"ninsori", PhenomenonHeavySnow},
	{"viscol", PhenomenonBlizzard},
	{"torential", PhenomenonTorrentialRain},
	{"grindin", PhenomenonHail},
	{"vijeli", PhenomenonSquall},
	{"descarcari electrice", PhenomenonFrequentLightning},
	{"fulger", PhenomenonFrequentLightning},
	{"vant", PhenomenonStrongWind},
	{"rafale", PhenomenonStrongWind},
	{"instabilitate", PhenomenonAtmosphericInstability},
}

// ClassifyPhenomenon returns the phenomenon of the first listed keyword that
// occurs in text, or PhenomenonDefault.
func ClassifyPhenomenon(text string) Phenomenon {
	folded := Fold(text)
	for _, k := range phenomenonKeywords {
		if strings.Contains(folded, k.keyword) {
			return k.tag
		}
	}
	return PhenomenonDefault
}

var severityByColor = map[string]Severity{
	"galben":     SeverityYellow,
	"portocaliu": SeverityOrange,
	"rosu":       SeverityRed,
	"yellow":     SeverityYellow,
	"orange":     SeverityOrange,
	"red":        SeverityRed,
}

// SeverityFromColor maps a feed color name ("galben", "Roșu", ...) to a
// Severity.
func SeverityFromColor(name string) Severity {
	if s, ok := severityByColor[FoldKey(name)]; ok {
		return s
	}
	return SeverityUnknown
}

// Icons shown for a region. IconNoAlert applies whenever nothing is active.
const (
	IconNoAlert = "mdi:weather-cloudy"
	iconDefault = "mdi:weather-cloudy-alert"
)

var phenomenonIcons = map[Phenomenon]string{
	PhenomenonFog:                    "mdi:weather-fog",
	PhenomenonGlazeIce:               "mdi:snowflake-melt",
	PhenomenonHeavySnow:              "mdi:weather-snowy-heavy",
	PhenomenonBlizzard:               "mdi:weather-snowy",
	PhenomenonTorrentialRain:         "mdi:weather-pouring",
	PhenomenonHail:                   "mdi:weather-hail",
	PhenomenonSquall:                 "mdi:weather-hurricane",
	PhenomenonFrequentLightning:      "mdi:weather-lightning",
	PhenomenonStrongWind:             "mdi:weather-windy",
	PhenomenonAtmosphericInstability: "mdi:alert-circle",
}

// Icon returns the display icon for an active alert of phenomenon p.
func (p Phenomenon) Icon() string {
	if icon, ok := phenomenonIcons[p]; ok {
		return icon
	}
	return iconDefault
}
