package domain

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func window(startHour, endHour int) (*time.Time, *time.Time) {
	s := time.Date(2026, 10, 15, startHour, 0, 0, 0, time.UTC)
	e := time.Date(2026, 10, 15, endHour, 0, 0, 0, time.UTC)
	return &s, &e
}

func projectionFixture(t *testing.T) FeedResult {
	t.Helper()
	earlyStart, earlyEnd := window(6, 7)
	nowStart, nowEnd := window(9, 11)

	alerts := []Alert{
		{ID: "a1", Title: "Ceață", Regions: []string{"Cluj"}, Phenomenon: PhenomenonFog, Severity: SeverityYellow,
			ColorName: "galben", Start: earlyStart, End: earlyEnd, Description: "ceață", RegionText: "Județul Cluj"},
		{ID: "a2", Title: "Vijelie", Regions: []string{"Cluj"}, Phenomenon: PhenomenonSquall, Severity: SeverityOrange,
			ColorName: "portocaliu", Start: nowStart, End: nowEnd, Description: "vijelie", RegionText: "Județul Cluj",
			MessageTypeName: "Avertizare nowcasting"},
		{ID: "a3", Title: "Polei", Regions: []string{"Alba"}, Phenomenon: PhenomenonGlazeIce, Severity: SeverityYellow,
			Start: earlyStart, End: earlyEnd},
		{ID: "a4", Title: "Ploi", Regions: []string{UnknownRegion}, Start: nowStart},
	}

	now := time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC)
	result := FeedResult{Alerts: alerts, ActiveAlerts: []Alert{}, ParsedAt: now}
	for _, a := range alerts {
		if a.ActiveAt(now) {
			result.ActiveAlerts = append(result.ActiveAlerts, a)
		}
	}
	require.Len(t, result.ActiveAlerts, 1)
	return result
}

func TestProjectRegion_PrefersActiveAlert(t *testing.T) {
	result := projectionFixture(t)

	got := ProjectRegion("Cluj", result.Alerts, result.ActiveAlerts)

	start, end := "2026-10-15T09:00:00Z", "2026-10-15T11:00:00Z"
	color, signaling, regionText := "portocaliu", "vijelie", "Județul Cluj"
	want := RegionState{
		Region:          "Cluj",
		State:           StateAlert,
		IsActive:        true,
		AlertCount:      2,
		ActiveCount:     1,
		Icon:            "mdi:weather-hurricane",
		ColorName:       &color,
		WindowStart:     &start,
		WindowEnd:       &end,
		SignalingText:   &signaling,
		RegionText:      &regionText,
		Phenomenon:      PhenomenonSquall,
		Severity:        SeverityOrange,
		Title:           "Vijelie",
		MessageTypeName: "Avertizare nowcasting",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ProjectRegion mismatch (-want +got):\n%s", diff)
	}
}

func TestProjectRegion_NameMatching(t *testing.T) {
	result := projectionFixture(t)

	for _, name := range []string{"cluj ", "CLUJ", " Cluj", "cluj"} {
		t.Run(name, func(t *testing.T) {
			got := ProjectRegion(name, result.Alerts, result.ActiveAlerts)
			assert.Equal(t, "Cluj", got.Region)
			assert.True(t, got.IsActive)
			assert.Equal(t, 2, got.AlertCount)
		})
	}
}

func TestProjectRegion_InactiveOnly(t *testing.T) {
	result := projectionFixture(t)

	got := ProjectRegion("alba", result.Alerts, result.ActiveAlerts)
	assert.Equal(t, "Alba", got.Region)
	assert.Equal(t, StateNoAlert, got.State)
	assert.False(t, got.IsActive)
	assert.Equal(t, 1, got.AlertCount)
	assert.Equal(t, 0, got.ActiveCount)
	assert.Equal(t, IconNoAlert, got.Icon)
	assert.Equal(t, "Polei", got.Title)
	assert.Equal(t, PhenomenonGlazeIce, got.Phenomenon)
	assert.Nil(t, got.ColorName)
	require.NotNil(t, got.WindowStart)
	assert.Equal(t, "2026-10-15T06:00:00Z", *got.WindowStart)
}

func TestProjectRegion_NoAlerts(t *testing.T) {
	result := projectionFixture(t)

	for _, name := range []string{"Vrancea", "Atlantis"} {
		t.Run(name, func(t *testing.T) {
			got := ProjectRegion(name, result.Alerts, result.ActiveAlerts)
			want := RegionState{
				Region:     name,
				State:      StateNoAlert,
				Icon:       IconNoAlert,
				Phenomenon: PhenomenonDefault,
				Severity:   SeverityUnknown,
			}
			assert.Equal(t, want, got)
		})
	}
}

func TestProjectRegion_AllRegions(t *testing.T) {
	result := projectionFixture(t)

	got := ProjectRegion(AllRegions, result.Alerts, result.ActiveAlerts)
	assert.Equal(t, AllRegions, got.Region)
	assert.Equal(t, 4, got.AlertCount)
	assert.Equal(t, 1, got.ActiveCount)
	assert.True(t, got.IsActive)
	assert.Equal(t, "Vijelie", got.Title)
}

func TestProjectRegion_UnknownRegionSentinel(t *testing.T) {
	result := projectionFixture(t)

	got := ProjectRegion("necunoscut", result.Alerts, result.ActiveAlerts)
	assert.Equal(t, UnknownRegion, got.Region)
	assert.Equal(t, 1, got.AlertCount)
	assert.False(t, got.IsActive)
}

func TestProjectRegions(t *testing.T) {
	result := projectionFixture(t)

	states := ProjectRegions(nil, result)
	require.Len(t, states, 1)
	assert.Equal(t, AllRegions, states[0].Region)

	states = ProjectRegions([]string{"Alba", "Cluj", "Olt"}, result)
	require.Len(t, states, 3)
	assert.Equal(t, []string{StateNoAlert, StateAlert, StateNoAlert},
		[]string{states[0].State, states[1].State, states[2].State})
}

func TestProjectRegion_EndToEnd(t *testing.T) {
	now := time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC)
	result, err := ParseFeedAt(readFeed(t), now, testZone)
	require.NoError(t, err)

	states := ProjectRegions([]string{"cluj ", "Timis", "Iasi", "Bihor"}, result)
	require.Len(t, states, 4)

	assert.Equal(t, StateAlert, states[0].State)
	require.NotNil(t, states[0].WindowStart)
	assert.Equal(t, "2026-10-15T12:00:00+03:00", *states[0].WindowStart)

	assert.Equal(t, "Timiș", states[1].Region)
	assert.Equal(t, StateNoAlert, states[1].State)
	assert.Equal(t, 1, states[1].AlertCount)

	assert.Equal(t, "Iași", states[2].Region)
	assert.False(t, states[2].IsActive)
	assert.Nil(t, states[2].WindowEnd)

	assert.Equal(t, 0, states[3].AlertCount)
}

func TestProjectRegion_SharedIDDifferentWindows(t *testing.T) {
	doc := `<avertizari>
		<avertizare tipMesaj="NCST" creat="2026-10-15T05:50" culoare="1" numeCuloare="galben"
			dataInceput="2026-10-15T06:00" dataSfarsit="2026-10-15T07:00" zona="Județul Cluj" semnalare="ceață"/>
		<avertizare tipMesaj="NCST" creat="2026-10-15T05:50" culoare="1" numeCuloare="galben"
			dataInceput="2026-10-15T09:00" dataSfarsit="2026-10-15T11:00" zona="Județul Cluj" semnalare="grindină"/>
	</avertizari>`

	result, err := ParseFeedAt(doc, time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC), time.UTC)
	require.NoError(t, err)
	require.Len(t, result.Alerts, 2)
	require.Equal(t, result.Alerts[0].ID, result.Alerts[1].ID)
	require.Len(t, result.ActiveAlerts, 1)

	got := ProjectRegion("Cluj", result.Alerts, result.ActiveAlerts)
	assert.Equal(t, 2, got.AlertCount)
	assert.Equal(t, 1, got.ActiveCount)
	assert.Equal(t, PhenomenonHail, got.Phenomenon)
	assert.Equal(t, "mdi:weather-hail", got.Icon)
	require.NotNil(t, got.WindowStart)
	require.NotNil(t, got.WindowEnd)
	assert.Equal(t, "2026-10-15T09:00:00Z", *got.WindowStart)
	assert.Equal(t, "2026-10-15T11:00:00Z", *got.WindowEnd)
}
