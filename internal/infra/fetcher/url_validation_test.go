package fetcher

import (
	"errors"
	"testing"
)

func TestValidateFeedURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr error
	}{
		{"valid ics url", "https://calendar.example.com/feed.ics", nil},
		{"valid calendar path", "https://calendar.google.com/calendar/ical/user/private/basic.ics", nil},
		{"unusual path warns but passes", "https://example.com/export", nil},
		{"empty", "", ErrEmptyURL},
		{"whitespace only", "   ", ErrEmptyURL},
		{"http scheme", "http://calendar.example.com/feed.ics", ErrNotHTTPS},
		{"ftp scheme", "ftp://calendar.example.com/feed.ics", ErrNotHTTPS},
		{"missing host", "https:///feed.ics", ErrMissingHost},
		{"localhost", "https://localhost/feed.ics", ErrLocalNetwork},
		{"loopback", "https://127.0.0.1/feed.ics", ErrLocalNetwork},
		{"private 192", "https://192.168.1.1/feed.ics", ErrLocalNetwork},
		{"private 10", "https://10.0.0.5/feed.ics", ErrLocalNetwork},
		{"private 172.16", "https://172.16.0.1/feed.ics", ErrLocalNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFeedURL(tt.url)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateFeedURL(%q) = %v, want nil", tt.url, err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateFeedURL(%q) = %v, want %v", tt.url, err, tt.wantErr)
			}
		})
	}
}
