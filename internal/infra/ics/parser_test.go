package ics

import (
	"strings"
	"testing"
	"time"
)

func calendar(entries ...string) string {
	lines := []string{"BEGIN:VCALENDAR", "VERSION:2.0", "PRODID:-//test//EN"}
	for _, e := range entries {
		lines = append(lines, strings.Split(strings.TrimSpace(e), "\n")...)
	}
	lines = append(lines, "END:VCALENDAR", "")
	return strings.Join(lines, "\r\n")
}

func TestParse_FullEntry(t *testing.T) {
	raw := calendar(`
BEGIN:VEVENT
UID:evt-1@example.com
SUMMARY:Design Review
DESCRIPTION:Join: https://zoom.us/j/555123456
DTSTART:20230601T140000Z
DTEND:20230601T150000Z
END:VEVENT`)

	p := NewParser("google")
	p.Location = time.UTC
	events, err := p.Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}

	ev := events[0]
	if ev.ExternalID != "evt-1@example.com" {
		t.Errorf("external id = %q", ev.ExternalID)
	}
	if ev.Title != "Design Review" {
		t.Errorf("title = %q", ev.Title)
	}
	if !ev.Start.Equal(time.Date(2023, 6, 1, 14, 0, 0, 0, time.UTC)) {
		t.Errorf("start = %v", ev.Start)
	}
	if !ev.End.Equal(time.Date(2023, 6, 1, 15, 0, 0, 0, time.UTC)) {
		t.Errorf("end = %v", ev.End)
	}
	if ev.VideoLink == nil || *ev.VideoLink != "https://zoom.us/j/555123456" {
		t.Errorf("video link = %v", ev.VideoLink)
	}
	if ev.VideoPlatform == nil || *ev.VideoPlatform != "Zoom" {
		t.Errorf("video platform = %v", ev.VideoPlatform)
	}
}

func TestParse_DefaultsApplied(t *testing.T) {
	// No SUMMARY, no UID, no DTEND.
	raw := calendar(`
BEGIN:VEVENT
DTSTART:20230601T090000Z
END:VEVENT`)

	p := NewParser("proton")
	p.Location = time.UTC
	events, err := p.Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}

	ev := events[0]
	if ev.Title != "Untitled Event" {
		t.Errorf("title = %q, want Untitled Event", ev.Title)
	}
	if !strings.HasPrefix(ev.ExternalID, "proton-") {
		t.Errorf("derived id must carry the feed prefix, got %q", ev.ExternalID)
	}
	if want := ev.Start.Add(time.Hour); !ev.End.Equal(want) {
		t.Errorf("end = %v, want start+1h %v", ev.End, want)
	}
}

func TestParse_DerivedIDIsDeterministic(t *testing.T) {
	raw := calendar(`
BEGIN:VEVENT
SUMMARY:Recurring Sync
DTSTART:20230601T090000Z
END:VEVENT`)

	p := NewParser("proton")
	p.Location = time.UTC

	first, err := p.Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	second, err := p.Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if first[0].ExternalID != second[0].ExternalID {
		t.Errorf("derived ids differ across syncs: %q vs %q",
			first[0].ExternalID, second[0].ExternalID)
	}

	// A different start time must give a different id.
	other := calendar(`
BEGIN:VEVENT
SUMMARY:Recurring Sync
DTSTART:20230601T100000Z
END:VEVENT`)
	moved, err := p.Parse(other)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if moved[0].ExternalID == first[0].ExternalID {
		t.Error("expected different derived id for different start time")
	}
}

func TestParse_MalformedEntrySkipped(t *testing.T) {
	raw := calendar(`
BEGIN:VEVENT
UID:bad-1
SUMMARY:No start time
END:VEVENT`, `
BEGIN:VEVENT
UID:good-1
SUMMARY:Valid
DTSTART:20230601T090000Z
END:VEVENT`)

	p := NewParser("google")
	p.Location = time.UTC
	events, err := p.Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected malformed entry skipped, got %d events", len(events))
	}
	if events[0].ExternalID != "good-1" {
		t.Errorf("surviving event = %q", events[0].ExternalID)
	}
}

func TestParse_EscapedText(t *testing.T) {
	raw := calendar(`
BEGIN:VEVENT
UID:esc-1
SUMMARY:Lunch\, then sync
DESCRIPTION:Line one\nLine two
DTSTART:20230601T120000Z
END:VEVENT`)

	p := NewParser("google")
	p.Location = time.UTC
	events, err := p.Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if events[0].Title != "Lunch, then sync" {
		t.Errorf("title = %q", events[0].Title)
	}
	if events[0].Description == nil || *events[0].Description != "Line one\nLine two" {
		t.Errorf("description = %v", events[0].Description)
	}
}

func TestParse_EmptyBody(t *testing.T) {
	p := NewParser("google")
	if _, err := p.Parse("   "); err == nil {
		t.Error("expected error for empty body")
	}
}

func TestParse_EmptyCalendar(t *testing.T) {
	p := NewParser("google")
	p.Location = time.UTC

	events, err := p.Parse(calendar())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("expected no events, got %d", len(events))
	}
}
