package export

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/emersion/go-ical"

	"github.com/cyp0633/recurcal/recurrence"
)

// XCalNamespace is the RFC 6321 namespace
const XCalNamespace = "urn:ietf:params:xml:ns:icalendar-2.0"

// WriteXCal encodes events as an xCal document, one vevent per instance
func WriteXCal(w io.Writer, events []recurrence.Event, now time.Time) error {
	cal, err := NewCalendar(events, now)
	if err != nil {
		return err
	}
	doc := XCalDocument(cal)
	doc.Indent(2)
	if _, err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write xCal: %w", err)
	}
	return nil
}

// XCalDocument converts an iCalendar object into its xCal form.
// Properties are emitted in name order.
func XCalDocument(cal *ical.Calendar) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := doc.CreateElement("icalendar")
	root.CreateAttr("xmlns", XCalNamespace)
	appendComponent(root, cal.Component)
	return doc
}

func appendComponent(parent *etree.Element, comp *ical.Component) {
	el := parent.CreateElement(strings.ToLower(comp.Name))
	if len(comp.Props) > 0 {
		props := el.CreateElement("properties")
		for _, name := range slices.Sorted(maps.Keys(comp.Props)) {
			for i := range comp.Props[name] {
				appendProperty(props, &comp.Props[name][i])
			}
		}
	}
	if len(comp.Children) > 0 {
		children := el.CreateElement("components")
		for _, child := range comp.Children {
			appendComponent(children, child)
		}
	}
}

func appendProperty(parent *etree.Element, prop *ical.Prop) {
	el := parent.CreateElement(strings.ToLower(prop.Name))

	var params []string
	for name := range prop.Params {
		if name != ical.ParamValue {
			params = append(params, name)
		}
	}
	if len(params) > 0 {
		slices.Sort(params)
		pe := el.CreateElement("parameters")
		for _, name := range params {
			p := pe.CreateElement(strings.ToLower(name))
			for _, v := range prop.Params[name] {
				p.CreateElement("text").SetText(v)
			}
		}
	}

	switch prop.ValueType() {
	case ical.ValueDateTime:
		for _, v := range strings.Split(prop.Value, ",") {
			el.CreateElement("date-time").SetText(xcalDateTime(v))
		}
	case ical.ValueDate:
		for _, v := range strings.Split(prop.Value, ",") {
			el.CreateElement("date").SetText(xcalDateTime(v))
		}
	case ical.ValueRecurrence:
		appendRecur(el, prop.Value)
	case ical.ValueInt:
		el.CreateElement("integer").SetText(prop.Value)
	case ical.ValueText:
		text, err := prop.Text()
		if err != nil {
			text = prop.Value
		}
		el.CreateElement("text").SetText(text)
	default:
		el.CreateElement("unknown").SetText(prop.Value)
	}
}

// appendRecur writes an RRULE value as <recur> parts; list parts repeat the element
func appendRecur(el *etree.Element, value string) {
	recur := el.CreateElement("recur")
	for _, part := range strings.Split(value, ";") {
		key, val, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		key = strings.ToLower(key)
		if key == "until" {
			recur.CreateElement(key).SetText(xcalDateTime(val))
			continue
		}
		for _, v := range strings.Split(val, ",") {
			recur.CreateElement(key).SetText(v)
		}
	}
}

// xcalDateTime rewrites basic-format dates and date-times in extended format
func xcalDateTime(v string) string {
	if t, err := time.Parse("20060102T150405Z", v); err == nil {
		return t.Format("2006-01-02T15:04:05Z")
	}
	if t, err := time.Parse(floatingLayout, v); err == nil {
		return t.Format("2006-01-02T15:04:05")
	}
	if t, err := time.Parse("20060102", v); err == nil {
		return t.Format(recurrence.DateLayout)
	}
	return v
}
