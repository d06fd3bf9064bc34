// Package sysdetails recovers host metadata (machine, software version,
// operating system) from the messages and properties of parsed records.
package sysdetails

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/SteelMorgan/log4j-inspector/internal/domain"
	"github.com/SteelMorgan/log4j-inspector/internal/observability"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
)

// Extractor scans records for system details
type Extractor struct {
	machineProperty string
	software        *regexp.Regexp
	osName          *regexp.Regexp
	osVersion       *regexp.Regexp
	osType          *regexp.Regexp
}

// NewExtractor compiles rules
func NewExtractor(rules Rules) (*Extractor, error) {
	e := &Extractor{machineProperty: rules.MachineProperty}

	patterns := []struct {
		name string
		expr string
		dst  **regexp.Regexp
	}{
		{"software", rules.Software, &e.software},
		{"os_name", rules.OSName, &e.osName},
		{"os_version", rules.OSVersion, &e.osVersion},
		{"os_type", rules.OSType, &e.osType},
	}
	for _, p := range patterns {
		if p.expr == "" {
			continue
		}
		re, err := regexp.Compile(p.expr)
		if err != nil {
			return nil, fmt.Errorf("invalid %s pattern: %w", p.name, err)
		}
		*p.dst = re
	}

	return e, nil
}

// MustDefault returns an extractor with DefaultRules
func MustDefault() *Extractor {
	e, err := NewExtractor(DefaultRules())
	if err != nil {
		panic(err)
	}
	return e
}

// Extract runs a single pass over records. Each field takes its value from
// the first record that matches and is never overwritten afterwards.
func (e *Extractor) Extract(ctx context.Context, records []domain.LogRecord) domain.SystemDetails {
	_, span := observability.StartSpan(ctx, "sysdetails.Extract", attribute.Int("records", len(records)))
	defer observability.EndSpan(span, nil, "extracted")

	var d domain.SystemDetails

	for i := range records {
		r := &records[i]

		if d.MachineName == "" && e.machineProperty != "" {
			d.MachineName = strings.TrimSpace(r.Properties[e.machineProperty])
		}

		if d.Version == "" || d.Architecture == "" {
			if version, arch := e.matchSoftware(r.Message); version != "" || arch != "" {
				if d.Version == "" {
					d.Version = version
				}
				if d.Architecture == "" {
					d.Architecture = arch
				}
			}
		}

		if d.OSName == "" {
			d.OSName = matchValue(e.osName, r.Message)
		}
		if d.OSVersion == "" {
			d.OSVersion = matchValue(e.osVersion, r.Message)
		}
		if d.OSType == "" {
			d.OSType = matchValue(e.osType, r.Message)
		}

		if complete(d) {
			break
		}
	}

	log.Debug().
		Str("machine", d.MachineName).
		Str("version", d.Version).
		Str("os", d.OSName).
		Msg("System details extracted")

	return d
}

func (e *Extractor) matchSoftware(message string) (version, arch string) {
	if e.software == nil {
		return "", ""
	}
	m := e.software.FindStringSubmatch(message)
	if m == nil {
		return "", ""
	}
	if i := e.software.SubexpIndex("version"); i > 0 {
		version = strings.TrimSpace(m[i])
	}
	if i := e.software.SubexpIndex("arch"); i > 0 {
		arch = strings.TrimSpace(m[i])
	}
	return version, arch
}

// matchValue returns the "value" group, or the first group, of the first match
func matchValue(re *regexp.Regexp, message string) string {
	if re == nil {
		return ""
	}
	m := re.FindStringSubmatch(message)
	if m == nil {
		return ""
	}
	if i := re.SubexpIndex("value"); i > 0 {
		return strings.TrimSpace(m[i])
	}
	if len(m) > 1 {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(m[0])
}

func complete(d domain.SystemDetails) bool {
	return d.MachineName != "" && d.Version != "" && d.Architecture != "" &&
		d.OSName != "" && d.OSVersion != "" && d.OSType != ""
}
