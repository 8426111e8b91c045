// Command genmock builds the mock nowcasting feed fixture from a CSV of
// warnings. Non-ASCII text is written as numeric character references, the
// way the live feed encodes it, so the fixture exercises entity decoding.
// With -json it also writes the snapshot the service derives from the
// fixture, using the same domain package and a fixed clock.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -csv data/mock/warnings.csv \
//	  -xml-out data/mock/avertizari-nowcasting.xml \
//	  -json-out data/mock/snapshot.json \
//	  -regions "Cluj,Alba,Bihor,Timiș,București,Vrancea,Necunoscut"
package main

import (
	"encoding/csv"
	"encoding/json"
	"encoding/xml"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/nowcast-alerts/internal/config"
	"github.com/couchcryptid/nowcast-alerts/internal/domain"
)

// parsedAt is the fixed instant fixtures are evaluated at.
var parsedAt = time.Date(2026, time.July, 14, 12, 45, 0, 0, time.UTC)

type feedXML struct {
	XMLName  xml.Name     `xml:"avertizari"`
	Warnings []warningXML `xml:"avertizare"`
}

type warningXML struct {
	TipMesaj     string `xml:"tipMesaj,attr"`
	NumeTipMesaj string `xml:"numeTipMesaj,attr"`
	DataInceput  string `xml:"dataInceput,attr"`
	DataSfarsit  string `xml:"dataSfarsit,attr"`
	Zona         string `xml:"zona,attr"`
	Semnalare    string `xml:"semnalare,attr"`
	Culoare      string `xml:"culoare,attr"`
	NumeCuloare  string `xml:"numeCuloare,attr"`
	Creat        string `xml:"creat,attr"`
	Modificat    string `xml:"modificat,attr"`
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	csvPath := flag.String("csv", "data/mock/warnings.csv", "CSV of warnings, one per row")
	xmlOut := flag.String("xml-out", "data/mock/avertizari-nowcasting.xml", "output path for the feed fixture")
	jsonOut := flag.String("json-out", "", "optional output path for the derived snapshot")
	regions := flag.String("regions", "", "comma-separated regions to project (default: whole country)")
	flag.Parse()

	warnings, err := readCSV(*csvPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", *csvPath, err)
	}
	log.Printf("%s: %d warnings", *csvPath, len(warnings))

	doc, err := encodeFeed(warnings)
	if err != nil {
		return fmt.Errorf("encoding feed: %w", err)
	}
	if err := writeFile(*xmlOut, doc); err != nil {
		return fmt.Errorf("writing feed fixture: %w", err)
	}
	log.Printf("wrote feed fixture: %s", *xmlOut)

	// Set a fixed clock for reproducible active windows.
	domain.SetClock(clockwork.NewFakeClockAt(parsedAt))
	defer domain.SetClock(nil)

	result, err := domain.ParseFeed(string(doc), time.UTC)
	if err != nil {
		return fmt.Errorf("parsing generated feed: %w", err)
	}
	configured, unknown := config.ResolveRegions(*regions)
	if len(unknown) > 0 {
		log.Printf("regions matching no county: %s", strings.Join(unknown, ", "))
	}
	snap := &domain.Snapshot{
		CycleID:   "genmock",
		Result:    result,
		States:    domain.ProjectRegions(configured, result),
		UpdatedAt: parsedAt,
	}

	if *jsonOut != "" {
		data, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal snapshot: %w", err)
		}
		if err := writeFile(*jsonOut, append(data, '\n')); err != nil {
			return fmt.Errorf("writing snapshot fixture: %w", err)
		}
		log.Printf("wrote snapshot fixture: %s", *jsonOut)
	}

	printStats(snap)
	return nil
}

func readCSV(path string) ([]warningXML, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("no data rows")
	}

	colIdx := map[string]int{}
	for i, h := range rows[0] {
		colIdx[h] = i
	}

	warnings := make([]warningXML, 0, len(rows)-1)
	for _, row := range rows[1:] {
		warnings = append(warnings, warningXML{
			TipMesaj:     get(row, colIdx, "tipMesaj"),
			NumeTipMesaj: get(row, colIdx, "numeTipMesaj"),
			DataInceput:  get(row, colIdx, "dataInceput"),
			DataSfarsit:  get(row, colIdx, "dataSfarsit"),
			Zona:         get(row, colIdx, "zona"),
			Semnalare:    get(row, colIdx, "semnalare"),
			Culoare:      get(row, colIdx, "culoare"),
			NumeCuloare:  get(row, colIdx, "numeCuloare"),
			Creat:        get(row, colIdx, "creat"),
			Modificat:    get(row, colIdx, "modificat"),
		})
	}
	return warnings, nil
}

func get(row []string, idx map[string]int, col string) string {
	i, ok := idx[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// encodeFeed renders the fixture. Free-text attributes carry numeric
// character references, which encoding/xml then escapes a second time.
func encodeFeed(warnings []warningXML) ([]byte, error) {
	for i := range warnings {
		w := &warnings[i]
		w.NumeTipMesaj = entityEncode(w.NumeTipMesaj)
		w.Zona = entityEncode(w.Zona)
		w.Semnalare = entityEncode(w.Semnalare)
		w.NumeCuloare = entityEncode(w.NumeCuloare)
	}
	body, err := xml.MarshalIndent(feedXML{Warnings: warnings}, "", "  ")
	if err != nil {
		return nil, err
	}
	out := append([]byte(xml.Header), body...)
	return append(out, '\n'), nil
}

func entityEncode(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r < 0x80 {
			b.WriteRune(r)
			continue
		}
		fmt.Fprintf(&b, "&#x%X;", r)
	}
	return b.String()
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func printStats(snap *domain.Snapshot) {
	result := snap.Result

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Parsed at: %s\n", result.ParsedAt.Format(time.RFC3339))
	fmt.Printf("Alerts: %d (active %d, skipped %d)\n", len(result.Alerts), len(result.ActiveAlerts), result.Skipped)

	bySeverity := map[domain.Severity]int{}
	byPhenomenon := map[domain.Phenomenon]int{}
	var order []string
	for i := range result.Alerts {
		a := &result.Alerts[i]
		bySeverity[a.Severity]++
		byPhenomenon[a.Phenomenon]++
		order = append(order, a.Regions...)
	}
	fmt.Printf("By severity: yellow=%d, orange=%d, red=%d, unknown=%d\n",
		bySeverity[domain.SeverityYellow], bySeverity[domain.SeverityOrange],
		bySeverity[domain.SeverityRed], bySeverity[domain.SeverityUnknown])

	phenomena := make([]string, 0, len(byPhenomenon))
	for p, c := range byPhenomenon {
		phenomena = append(phenomena, fmt.Sprintf("%s=%d", p, c))
	}
	sort.Strings(phenomena)
	fmt.Printf("By phenomenon: %s\n", strings.Join(phenomena, ", "))
	fmt.Printf("Fan-out order: %s\n", strings.Join(order, ", "))

	fmt.Println("\nRegion states:")
	for _, s := range snap.States {
		fmt.Printf("  %-16s %-8s active=%d/%d phenomenon=%s severity=%s icon=%s\n",
			s.Region, s.State, s.ActiveCount, s.AlertCount, s.Phenomenon, s.Severity, s.Icon)
	}

	for i := range result.Alerts {
		a := &result.Alerts[i]
		fmt.Printf("\nFirst alert:\n")
		fmt.Printf("  ID: %s\n", a.ID)
		fmt.Printf("  Title: %s\n", a.Title)
		fmt.Printf("  Regions: %s\n", strings.Join(a.Regions, ", "))
		if a.Start != nil && a.End != nil {
			fmt.Printf("  Window: %s .. %s\n", a.Start.Format(time.RFC3339), a.End.Format(time.RFC3339))
		}
		break
	}
}
