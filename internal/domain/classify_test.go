package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyPhenomenon(t *testing.T) {
	tests := []struct {
		text string
		want Phenomenon
	}{
		{"ceață densă cu vizibilitate redusă", PhenomenonFog},
		{"polei și ghețuș", PhenomenonGlazeIce},
		{"ninsori abundente", PhenomenonHeavySnow},
		{"ninsoare slabă", PhenomenonHeavySnow},
		{"viscol puternic", PhenomenonBlizzard},
		{"averse torențiale", PhenomenonTorrentialRain},
		{"grindină de mari dimensiuni", PhenomenonHail},
		{"vijelie", PhenomenonSquall},
		{"descărcări electrice frecvente", PhenomenonFrequentLightning},
		{"fulgere", PhenomenonFrequentLightning},
		{"intensificări ale vântului", PhenomenonStrongWind},
		{"rafale de 70 km/h", PhenomenonStrongWind},
		{"instabilitate atmosferică accentuată", PhenomenonAtmosphericInstability},
		{"cer senin", PhenomenonDefault},
		{"", PhenomenonDefault},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyPhenomenon(tt.text))
		})
	}
}

func TestClassifyPhenomenon_EarlierKeywordWins(t *testing.T) {
	// Both the squall and the generic wind keyword are present.
	text := "intensificări ale vântului, local vijelie"
	assert.Equal(t, PhenomenonSquall, ClassifyPhenomenon(text))

	// Torrential rain is listed before hail.
	assert.Equal(t, PhenomenonTorrentialRain, ClassifyPhenomenon("grindină și averse torențiale"))

	// Snow is listed before blizzard.
	assert.Equal(t, PhenomenonHeavySnow, ClassifyPhenomenon("viscol și ninsori"))
}

func TestSeverityFromColor(t *testing.T) {
	tests := []struct {
		in   string
		want Severity
	}{
		{"galben", SeverityYellow},
		{"Galben", SeverityYellow},
		{"PORTOCALIU ", SeverityOrange},
		{"roșu", SeverityRed},
		{"Roşu", SeverityRed},
		{"rosu", SeverityRed},
		{"Yellow", SeverityYellow},
		{"verde", SeverityUnknown},
		{"", SeverityUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SeverityFromColor(tt.in))
		})
	}
}

func TestPhenomenonIcon(t *testing.T) {
	assert.Equal(t, "mdi:weather-fog", PhenomenonFog.Icon())
	assert.Equal(t, "mdi:weather-windy", PhenomenonStrongWind.Icon())
	assert.Equal(t, iconDefault, PhenomenonDefault.Icon())
	assert.Equal(t, iconDefault, Phenomenon("other").Icon())
}
