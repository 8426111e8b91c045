package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"html"
	"strings"
	"time"
)

// timestampLayouts are tried in order. Layouts without a zone are read as UTC.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"02.01.2006 15:04:05",
	"02.01.2006 15:04",
	time.RFC1123Z,
	time.RFC1123,
}

const defaultTitle = "Avertizare nowcasting"

// Normalize turns one raw warning into one Alert per region it names. A
// warning naming no known region yields a single UnknownRegion alert. It
// returns nil only for an element carrying none of the fields it can use.
func Normalize(raw RawWarning, loc *time.Location) []Alert {
	if loc == nil {
		loc = time.UTC
	}

	regionText := decodeText(raw.RegionText)
	signaling := decodeText(raw.Signaling)
	colorName := decodeText(raw.ColorName)
	typeName := decodeText(raw.MessageTypeName)
	explicitTitle := decodeText(raw.Title)

	if regionText == "" && signaling == "" && explicitTitle == "" && colorName == "" && raw.Start == "" && raw.End == "" {
		return nil
	}

	regions := ExtractRegions(regionText, Counties)
	if len(regions) == 0 {
		regions = []string{UnknownRegion}
	}

	title := buildTitle(explicitTitle, typeName, colorName)
	classified := signaling
	if classified == "" {
		classified = title
	}

	base := Alert{
		Title:           title,
		Description:     signaling,
		Severity:        SeverityFromColor(colorName),
		Phenomenon:      ClassifyPhenomenon(strings.ToLower(classified)),
		Start:           parseTimestamp(raw.Start, loc),
		End:             parseTimestamp(raw.End, loc),
		RawStart:        raw.Start,
		RawEnd:          raw.End,
		RegionText:      regionText,
		ColorCode:       strings.TrimSpace(raw.ColorCode),
		ColorName:       colorName,
		MessageTypeCode: strings.TrimSpace(raw.MessageTypeCode),
		MessageTypeName: typeName,
		Created:         raw.Created,
		Modified:        raw.Modified,
	}

	alerts := make([]Alert, 0, len(regions))
	for _, region := range regions {
		a := base
		a.ID = generateID(idSource(raw), base.ColorCode, base.MessageTypeCode, region)
		a.Regions = []string{region}
		alerts = append(alerts, a)
	}
	return alerts
}

// decodeText resolves HTML/XML character references. The feed sometimes
// escapes them twice ("&amp;#x21B;"), hence the second pass.
func decodeText(s string) string {
	for range 2 {
		if !strings.Contains(s, "&") {
			break
		}
		s = html.UnescapeString(s)
	}
	return strings.TrimSpace(s)
}

func buildTitle(explicit, typeName, colorName string) string {
	if explicit != "" {
		return explicit
	}
	switch {
	case typeName != "" && colorName != "":
		return fmt.Sprintf("%s cod %s", typeName, colorName)
	case typeName != "":
		return typeName
	case colorName != "":
		return fmt.Sprintf("%s cod %s", defaultTitle, colorName)
	default:
		return defaultTitle
	}
}

// parseTimestamp returns nil for empty or unrecognized input. Stamps without
// a zone are UTC; the result is expressed in loc.
func parseTimestamp(s string, loc *time.Location) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		t, err := time.ParseInLocation(layout, s, time.UTC)
		if err == nil {
			t = t.In(loc)
			return &t
		}
	}
	return nil
}

// idSource is the per-warning part of the alert ID. The creation stamp
// identifies a warning; records without one fall back to their window.
func idSource(raw RawWarning) string {
	if created := strings.TrimSpace(raw.Created); created != "" {
		return created
	}
	return strings.Join([]string{raw.Modified, raw.Start, raw.End}, "/")
}

// generateID produces a deterministic ID so repeated parses of the same
// warning yield the same alert for each region.
func generateID(created, colorCode, typeCode, region string) string {
	input := fmt.Sprintf("%s|%s|%s|%s", created, colorCode, typeCode, region)
	hash := sha256.Sum256([]byte(input))
	return "nc-" + hex.EncodeToString(hash[:8])
}
