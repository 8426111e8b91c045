package domain

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/text/encoding/ianaindex"
)

// warningTags are the element names a warning record may use, in order of
// preference. The first name with at least one element in the document wins.
var warningTags = []string{"avertizare", "alert", "warning"}

// xmlNode is a generic element tree. The feed has no schema, so fields are
// located by name after decoding.
type xmlNode struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Content string     `xml:",chardata"`
	Inner   string     `xml:",innerxml"`
	Nodes   []xmlNode  `xml:",any"`
}

// text returns the element's text. Elements with nested markup return their
// raw inner XML; markup is stripped later by region extraction.
func (n *xmlNode) text() string {
	if len(n.Nodes) > 0 {
		return strings.TrimSpace(n.Inner)
	}
	return strings.TrimSpace(n.Content)
}

// extractor reads one field from a warning element.
type extractor func(n *xmlNode) (string, bool)

func fromAttr(name string) extractor {
	return func(n *xmlNode) (string, bool) {
		for _, a := range n.Attrs {
			if strings.EqualFold(a.Name.Local, name) {
				if v := strings.TrimSpace(a.Value); v != "" {
					return v, true
				}
			}
		}
		return "", false
	}
}

func fromChild(name string) extractor {
	return func(n *xmlNode) (string, bool) {
		for i := range n.Nodes {
			if strings.EqualFold(n.Nodes[i].XMLName.Local, name) {
				if v := n.Nodes[i].text(); v != "" {
					return v, true
				}
			}
		}
		return "", false
	}
}

// fromChildren joins the text of every child called name, for schemas that
// list one county per element.
func fromChildren(name string) extractor {
	return func(n *xmlNode) (string, bool) {
		var parts []string
		for i := range n.Nodes {
			if strings.EqualFold(n.Nodes[i].XMLName.Local, name) {
				if v := n.Nodes[i].text(); v != "" {
					parts = append(parts, v)
				}
			}
		}
		if len(parts) == 0 {
			return "", false
		}
		return strings.Join(parts, "; "), true
	}
}

func firstOf(extractors ...extractor) extractor {
	return func(n *xmlNode) (string, bool) {
		for _, ex := range extractors {
			if v, ok := ex(n); ok {
				return v, true
			}
		}
		return "", false
	}
}

// field tries each name as an attribute, then as a child element.
func field(names ...string) extractor {
	extractors := make([]extractor, 0, 2*len(names))
	for _, name := range names {
		extractors = append(extractors, fromAttr(name), fromChild(name))
	}
	return firstOf(extractors...)
}

var warningFields = []struct {
	from   extractor
	assign func(*RawWarning, string)
}{
	{field("tipMesaj", "messageType"), func(r *RawWarning, v string) { r.MessageTypeCode = v }},
	{field("numeTipMesaj", "messageTypeName", "event"), func(r *RawWarning, v string) { r.MessageTypeName = v }},
	{field("dataInceput", "start_time", "startTime", "onset"), func(r *RawWarning, v string) { r.Start = v }},
	{field("dataSfarsit", "end_time", "endTime", "expires"), func(r *RawWarning, v string) { r.End = v }},
	{
		firstOf(field("zona"), fromChildren("county"), fromChildren("judet"), field("areaDesc")),
		func(r *RawWarning, v string) { r.RegionText = v },
	},
	{field("semnalare", "description"), func(r *RawWarning, v string) { r.Signaling = v }},
	{field("culoare", "colorCode"), func(r *RawWarning, v string) { r.ColorCode = v }},
	{field("numeCuloare", "color", "severity"), func(r *RawWarning, v string) { r.ColorName = v }},
	{field("modificat", "modified", "updated"), func(r *RawWarning, v string) { r.Modified = v }},
	{field("creat", "created", "id"), func(r *RawWarning, v string) { r.Created = v }},
	{field("title", "headline", "titlu"), func(r *RawWarning, v string) { r.Title = v }},
}

func readWarning(n *xmlNode) RawWarning {
	var raw RawWarning
	for _, f := range warningFields {
		if v, ok := f.from(n); ok {
			f.assign(&raw, v)
		}
	}
	return raw
}

// findWarnings walks the tree in document order and returns the elements
// named tag. Matched elements are not searched further.
func findWarnings(root *xmlNode, tag string) []*xmlNode {
	var found []*xmlNode
	var walk func(n *xmlNode)
	walk = func(n *xmlNode) {
		if strings.EqualFold(n.XMLName.Local, tag) {
			found = append(found, n)
			return
		}
		for i := range n.Nodes {
			walk(&n.Nodes[i])
		}
	}
	walk(root)
	return found
}

func locateWarnings(root *xmlNode) []*xmlNode {
	for _, tag := range warningTags {
		if found := findWarnings(root, tag); len(found) > 0 {
			return found
		}
	}
	return nil
}

// decodeDocument parses doc into a tree, failing on anything that is not a
// single well-formed element. HTML named entities are accepted since the
// feed uses them in free text.
func decodeDocument(r io.Reader) (*xmlNode, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charsetReader
	dec.Entity = xml.HTMLEntity

	var root xmlNode
	if err := dec.Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty document")
		}
		return nil, err
	}
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return &root, nil
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			return nil, fmt.Errorf("unexpected element <%s> after root", t.Name.Local)
		case xml.CharData:
			if len(bytes.TrimSpace(t)) > 0 {
				return nil, errors.New("unexpected text after root element")
			}
		}
	}
}

func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := ianaindex.IANA.Encoding(label)
	if err != nil {
		return nil, fmt.Errorf("unsupported charset %q: %w", label, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("unsupported charset %q", label)
	}
	return enc.NewDecoder().Reader(input), nil
}

// ParseFeed parses a feed document, evaluating active alerts against the
// package clock.
func ParseFeed(doc string, loc *time.Location) (FeedResult, error) {
	return ParseFeedAt(doc, clock.Now(), loc)
}

// ParseFeedAt parses a feed document and computes which alerts are active at
// now. It always returns a usable result: a malformed document yields an
// empty result together with a *ParseError, and a document without warning
// elements yields an empty result and no error.
func ParseFeedAt(doc string, now time.Time, loc *time.Location) (FeedResult, error) {
	if loc == nil {
		loc = time.UTC
	}
	result := FeedResult{
		Alerts:       []Alert{},
		ActiveAlerts: []Alert{},
		ParsedAt:     now.In(loc),
	}

	root, err := decodeDocument(strings.NewReader(doc))
	if err != nil {
		return result, &ParseError{Err: err}
	}

	var raws []RawWarning
	if elements := locateWarnings(root); len(elements) > 0 {
		raws = make([]RawWarning, 0, len(elements))
		for _, el := range elements {
			raws = append(raws, readWarning(el))
		}
	} else if isSyndication(root) {
		raws, err = parseSyndication(doc)
		if err != nil {
			return result, &ParseError{Err: err}
		}
	}

	for _, raw := range raws {
		alerts := Normalize(raw, loc)
		if len(alerts) == 0 {
			result.Skipped++
			continue
		}
		result.Alerts = append(result.Alerts, alerts...)
	}
	for _, a := range result.Alerts {
		if a.ActiveAt(now) {
			result.ActiveAlerts = append(result.ActiveAlerts, a)
		}
	}
	return result, nil
}

// DocumentInfo describes a well-formed feed document.
type DocumentInfo struct {
	Root     string
	Tag      string
	Warnings int
}

// InspectDocument checks that data is a well-formed XML document and counts
// its warning elements. It is used to validate a feed URL before polling.
func InspectDocument(data []byte) (DocumentInfo, error) {
	root, err := decodeDocument(bytes.NewReader(data))
	if err != nil {
		return DocumentInfo{}, &ParseError{Err: err}
	}
	info := DocumentInfo{Root: root.XMLName.Local}
	for _, tag := range warningTags {
		if found := findWarnings(root, tag); len(found) > 0 {
			info.Tag = tag
			info.Warnings = len(found)
			break
		}
	}
	return info, nil
}
