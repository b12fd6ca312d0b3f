// Package ics normalizes raw ICS feed text into candidate events with
// all datetimes resolved to UTC. Parsing is pure (no I/O) and tolerant:
// malformed entries are skipped and logged, never fatal for the feed.
package ics

import (
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
)

// defaultTitle is used when a calendar entry has no summary.
const defaultTitle = "Untitled Event"

// CandidateEvent is a normalized calendar entry ready for reconciliation
// against the persisted store. Start and End are always UTC.
type CandidateEvent struct {
	ExternalID    string
	Title         string
	Description   *string
	Start         time.Time
	End           time.Time
	VideoLink     *string
	VideoPlatform *string
}

// Parser converts raw ICS text into candidate events.
type Parser struct {
	// IDPrefix tags hash-derived external ids, keeping them distinct
	// per provider (e.g. "google", "proton").
	IDPrefix string

	// Location is the zone used for floating and date-only values.
	// Defaults to the host's local zone.
	Location *time.Location
}

// NewParser creates a parser for the given provider id prefix.
func NewParser(idPrefix string) *Parser {
	return &Parser{IDPrefix: idPrefix, Location: time.Local}
}

// Parse parses a single ICS payload. Entries whose start time cannot be
// resolved are dropped with a warning; all other per-entry failures
// degrade to defaults. An empty calendar yields an empty slice, not an
// error.
func (p *Parser) Parse(raw string) ([]CandidateEvent, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, errors.New("empty ICS body")
	}

	cal, err := ical.ParseCalendar(strings.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse calendar: %w", err)
	}

	loc := p.Location
	if loc == nil {
		loc = time.Local
	}

	events := make([]CandidateEvent, 0, len(cal.Events()))
	for _, ve := range cal.Events() {
		candidate, err := p.parseEvent(ve, loc)
		if err != nil {
			// Skip this entry but keep parsing the rest.
			slog.Warn("skipping malformed calendar entry",
				slog.String("prefix", p.IDPrefix),
				slog.Any("error", err))
			continue
		}
		events = append(events, candidate)
	}

	if len(events) == 0 && len(cal.Events()) > 0 {
		slog.Warn("feed contained entries but none were parsable",
			slog.String("prefix", p.IDPrefix),
			slog.Int("entries", len(cal.Events())))
	}
	return events, nil
}

func (p *Parser) parseEvent(ve *ical.VEvent, loc *time.Location) (CandidateEvent, error) {
	var out CandidateEvent

	out.Title = defaultTitle
	if prop := ve.GetProperty(ical.ComponentPropertySummary); prop != nil && prop.Value != "" {
		out.Title = unescapeText(prop.Value)
	}

	var description, location string
	if prop := ve.GetProperty(ical.ComponentPropertyDescription); prop != nil {
		description = unescapeText(prop.Value)
	}
	if prop := ve.GetProperty(ical.ComponentPropertyLocation); prop != nil {
		location = unescapeText(prop.Value)
	}
	if description != "" {
		out.Description = &description
	}

	startProp := ve.GetProperty(ical.ComponentPropertyDtStart)
	if startProp == nil {
		return out, errors.New("missing DTSTART")
	}
	start, err := resolveDateTime(startProp.Value, startProp.ICalParameters, loc)
	if err != nil {
		return out, fmt.Errorf("resolve start: %w", err)
	}
	out.Start = start

	// A missing or unresolvable end defaults to one hour after start.
	out.End = start.Add(time.Hour)
	if endProp := ve.GetProperty(ical.ComponentPropertyDtEnd); endProp != nil {
		end, err := resolveDateTime(endProp.Value, endProp.ICalParameters, loc)
		if err != nil {
			slog.Warn("unresolvable DTEND, defaulting to start+1h",
				slog.String("title", out.Title),
				slog.Any("error", err))
		} else {
			out.End = end
		}
	}

	out.ExternalID = p.externalID(ve, out.Title, start)

	if url, platform, ok := ExtractVideoLink(description, location); ok {
		out.VideoLink = &url
		out.VideoPlatform = &platform
	}

	return out, nil
}

// externalID returns the entry UID, or a deterministic hash of the title
// and start instant when the feed omits UIDs. The same input always maps
// to the same id, so repeated syncs reconcile instead of duplicating.
func (p *Parser) externalID(ve *ical.VEvent, title string, start time.Time) string {
	if prop := ve.GetProperty(ical.ComponentPropertyUniqueId); prop != nil && prop.Value != "" {
		return prop.Value
	}

	h := fnv.New64a()
	_, _ = fmt.Fprintf(h, "%s%d", title, start.Unix())
	return fmt.Sprintf("%s-%x", p.IDPrefix, h.Sum64())
}

// unescapeText decodes the TEXT escapes defined by RFC 5545.
func unescapeText(s string) string {
	replacer := strings.NewReplacer(
		`\n`, "\n",
		`\N`, "\n",
		`\,`, ",",
		`\;`, ";",
		`\\`, `\`,
	)
	return replacer.Replace(s)
}
