package ics

import "testing"

func TestExtractVideoLink(t *testing.T) {
	tests := []struct {
		name         string
		description  string
		location     string
		wantURL      string
		wantPlatform string
		wantOK       bool
	}{
		{
			name:         "zoom join link in description",
			description:  "Join here: https://zoom.us/j/123456789 Passcode: 42",
			wantURL:      "https://zoom.us/j/123456789",
			wantPlatform: "Zoom",
			wantOK:       true,
		},
		{
			name:         "zoom vanity subdomain",
			description:  "https://company.zoom.us/j/987654321",
			wantURL:      "https://company.zoom.us/j/987654321",
			wantPlatform: "Zoom",
			wantOK:       true,
		},
		{
			name:         "google meet",
			description:  "Meeting link: https://meet.google.com/abc-defg-hij",
			wantURL:      "https://meet.google.com/abc-defg-hij",
			wantPlatform: "Google Meet",
			wantOK:       true,
		},
		{
			name:         "teams",
			description:  "https://teams.microsoft.com/l/meetup-join/19%3ameeting_x",
			wantURL:      "https://teams.microsoft.com/l/meetup-join/19%3ameeting_x",
			wantPlatform: "Teams",
			wantOK:       true,
		},
		{
			name:         "webex",
			description:  "https://company.webex.com/join/room",
			wantPlatform: "Webex",
			wantURL:      "https://company.webex.com/join/room",
			wantOK:       true,
		},
		{
			name:         "jitsi",
			description:  "https://meet.jit.si/TeamRoom",
			wantURL:      "https://meet.jit.si/TeamRoom",
			wantPlatform: "Jitsi",
			wantOK:       true,
		},
		{
			name:         "facetime",
			description:  "facetime://user@example.com",
			wantURL:      "facetime://user@example.com",
			wantPlatform: "FaceTime",
			wantOK:       true,
		},
		{
			name:         "link in location only",
			location:     "https://whereby.com/our-room",
			wantURL:      "https://whereby.com/our-room",
			wantPlatform: "Whereby",
			wantOK:       true,
		},
		{
			name:         "description wins over location",
			description:  "https://zoom.us/j/111222333",
			location:     "https://meet.google.com/xyz-aaaa-bbb",
			wantURL:      "https://zoom.us/j/111222333",
			wantPlatform: "Zoom",
			wantOK:       true,
		},
		{
			name:         "generic meet fallback",
			description:  "join at https://conf.example.com/meetings/42",
			wantURL:      "https://conf.example.com/meetings/42",
			wantPlatform: "Meeting",
			wantOK:       true,
		},
		{
			name:        "no link",
			description: "Regular team meeting in room 4",
			wantOK:      false,
		},
		{
			name:   "empty inputs",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			url, platform, ok := ExtractVideoLink(tt.description, tt.location)
			if ok != tt.wantOK {
				t.Fatalf("ok = %t, want %t", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if url != tt.wantURL {
				t.Errorf("url = %q, want %q", url, tt.wantURL)
			}
			if platform != tt.wantPlatform {
				t.Errorf("platform = %q, want %q", platform, tt.wantPlatform)
			}
		})
	}
}
