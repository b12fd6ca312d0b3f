package entity

import (
	"testing"
	"time"
)

func strPtr(s string) *string { return &s }

func TestCalendarEvent_IsVideoMeeting(t *testing.T) {
	ev := CalendarEvent{Title: "Standup"}
	if ev.IsVideoMeeting() {
		t.Error("expected no video meeting without link")
	}

	ev.VideoLink = strPtr("")
	if ev.IsVideoMeeting() {
		t.Error("expected empty link to not count as video meeting")
	}

	ev.VideoLink = strPtr("https://zoom.us/j/123456")
	if !ev.IsVideoMeeting() {
		t.Error("expected video meeting with zoom link")
	}
}

func TestCalendarEvent_MinutesUntilStart(t *testing.T) {
	now := time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		start time.Time
		want  int
	}{
		{"exactly 30m out", now.Add(30 * time.Minute), 30},
		{"truncates partial minute", now.Add(3*time.Minute + 59*time.Second), 3},
		{"already started", now.Add(-2 * time.Minute), -2},
		{"starting now", now, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := CalendarEvent{StartTime: tt.start}
			if got := ev.MinutesUntilStart(now); got != tt.want {
				t.Errorf("MinutesUntilStart = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCalendarEvent_ContentEquals(t *testing.T) {
	start := time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)
	base := CalendarEvent{
		Title:       "Planning",
		Description: strPtr("quarterly planning"),
		StartTime:   start,
		EndTime:     start.Add(time.Hour),
		VideoLink:   strPtr("https://meet.google.com/abc-defg-hij"),
	}

	same := base
	// Alert state must not affect content equality.
	same.HasAlerted = true
	same.SnoozeCount = 2
	threshold := 5
	same.LastAlertThreshold = &threshold
	if !base.ContentEquals(&same) {
		t.Error("expected content equality to ignore alert state")
	}

	retitled := base
	retitled.Title = "Planning (moved)"
	if base.ContentEquals(&retitled) {
		t.Error("expected title change to break content equality")
	}

	moved := base
	moved.StartTime = start.Add(15 * time.Minute)
	if base.ContentEquals(&moved) {
		t.Error("expected start change to break content equality")
	}

	noDesc := base
	noDesc.Description = nil
	if base.ContentEquals(&noDesc) {
		t.Error("expected nil description to break content equality")
	}
}

func TestAccount_Validate(t *testing.T) {
	acct := Account{Provider: ProviderGoogle, Name: "Work", FeedURL: "https://calendar.google.com/basic.ics"}
	if err := acct.Validate(); err != nil {
		t.Errorf("expected valid account, got %v", err)
	}

	bad := acct
	bad.Provider = "caldav"
	if err := bad.Validate(); err == nil {
		t.Error("expected error for unknown provider")
	}

	unnamed := acct
	unnamed.Name = ""
	if err := unnamed.Validate(); err == nil {
		t.Error("expected error for missing name")
	}
}

func TestAccount_ServiceName(t *testing.T) {
	google := Account{Provider: ProviderGoogle}
	proton := Account{Provider: ProviderProton}
	other := Account{Provider: "other"}

	if google.ServiceName() != "google-feed" {
		t.Errorf("google service name = %q", google.ServiceName())
	}
	if proton.ServiceName() != "proton-feed" {
		t.Errorf("proton service name = %q", proton.ServiceName())
	}
	if other.ServiceName() != "feed" {
		t.Errorf("default service name = %q", other.ServiceName())
	}
}
