package entity

import "testing"

func TestAlertForThreshold(t *testing.T) {
	tests := []struct {
		threshold int
		video     bool
		want      AlertType
	}{
		{30, false, AlertWarning30m},
		{10, false, AlertWarning10m},
		{5, true, AlertWarning5m},
		{1, false, AlertWarning1m},
		{0, false, AlertMeeting},
		{0, true, AlertVideoMeeting},
	}

	for _, tt := range tests {
		if got := AlertForThreshold(tt.threshold, tt.video); got != tt.want {
			t.Errorf("AlertForThreshold(%d, %t) = %v, want %v", tt.threshold, tt.video, got, tt.want)
		}
	}
}

func TestAlertType_String(t *testing.T) {
	if AlertVideoMeeting.String() != "video meeting" {
		t.Errorf("unexpected label %q", AlertVideoMeeting.String())
	}
	if AlertWarning30m.String() != "warning at 30m" {
		t.Errorf("unexpected label %q", AlertWarning30m.String())
	}
	if AlertType(99).String() != "unknown" {
		t.Errorf("unexpected label for out-of-range type")
	}
}

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()

	if s.Volume != 0.7 {
		t.Errorf("default volume = %v, want 0.7", s.Volume)
	}
	if s.Alert30m || s.Alert10m {
		t.Error("30m and 10m alerts should default off")
	}
	if !s.Alert5m || !s.Alert1m || !s.AlertDefault {
		t.Error("5m, 1m and start alerts should default on")
	}
}

func TestSettings_ThresholdEnabled(t *testing.T) {
	s := DefaultSettings()
	s.Alert30m = true

	for _, tt := range []struct {
		threshold int
		want      bool
	}{
		{30, true}, {10, false}, {5, true}, {1, true}, {0, true}, {15, false},
	} {
		if got := s.ThresholdEnabled(tt.threshold); got != tt.want {
			t.Errorf("ThresholdEnabled(%d) = %t, want %t", tt.threshold, got, tt.want)
		}
	}
}
