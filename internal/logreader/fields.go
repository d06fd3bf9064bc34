package logreader

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/SteelMorgan/log4j-inspector/internal/domain"
	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
)

// Element lookups match on local names so any prefix bound in the wrapper works
var (
	eventsExpr     = xpath.MustCompile("/*/*[local-name()='event']")
	messageExpr    = xpath.MustCompile("*[local-name()='message']")
	exceptionExpr  = xpath.MustCompile("*[local-name()='throwable' or local-name()='exception']")
	locationExpr   = xpath.MustCompile("*[local-name()='locationInfo']")
	propertiesExpr = xpath.MustCompile("*[local-name()='properties']")
	dataExpr       = xpath.MustCompile("*[local-name()='data']")
)

// parseFragment wraps a span of records in a synthetic root and returns the event elements
func parseFragment(body, prefix, namespace string) ([]*xmlquery.Node, error) {
	var b strings.Builder
	b.Grow(len(body) + len(prefix) + len(namespace) + 48)
	b.WriteString(`<fragment xmlns:`)
	b.WriteString(prefix)
	b.WriteString(`="`)
	b.WriteString(namespace)
	b.WriteString(`">`)
	b.WriteString(body)
	b.WriteString(`</fragment>`)

	doc, err := xmlquery.Parse(strings.NewReader(b.String()))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedXML, err)
	}
	return xmlquery.QuerySelectorAll(doc, eventsExpr), nil
}

// extractRecord builds a record from an event element; missing parts default to empty
func (p *ChunkedParser) extractRecord(ev *xmlquery.Node, id int) domain.LogRecord {
	rec := domain.LogRecord{
		ID:         id,
		Level:      ev.SelectAttr("level"),
		Logger:     ev.SelectAttr("logger"),
		Thread:     ev.SelectAttr("thread"),
		Properties: make(map[string]string),
	}

	if ts, err := strconv.ParseInt(strings.TrimSpace(ev.SelectAttr("timestamp")), 10, 64); err == nil {
		rec.TimestampRaw = ts
	}

	if n := xmlquery.QuerySelector(ev, messageExpr); n != nil {
		rec.Message = n.InnerText()
	}
	if n := xmlquery.QuerySelector(ev, exceptionExpr); n != nil {
		rec.ExceptionText = n.InnerText()
	}
	if n := xmlquery.QuerySelector(ev, locationExpr); n != nil {
		rec.ClassName = n.SelectAttr("class")
		rec.Method = n.SelectAttr("method")
	}
	if props := xmlquery.QuerySelector(ev, propertiesExpr); props != nil {
		for _, d := range xmlquery.QuerySelectorAll(props, dataExpr) {
			if name := d.SelectAttr("name"); name != "" {
				rec.Properties[name] = d.SelectAttr("value")
			}
		}
	}

	if sender := rec.Properties[p.opts.SenderTimestampKey]; sender != "" {
		rec.TimestampDisplay = sender
	} else {
		rec.TimestampDisplay = FormatTimestamp(rec.TimestampRaw, p.opts.Location)
	}

	return rec
}

// FormatTimestamp renders epoch milliseconds in loc
func FormatTimestamp(ms int64, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return time.UnixMilli(ms).In(loc).Format(DisplayTimeLayout)
}
