package ics

import "regexp"

// videoPattern pairs a URL shape with its platform label. The list is
// ordered: specific platforms first, generic fallbacks last, and the
// first match wins.
type videoPattern struct {
	re       *regexp.Regexp
	platform string
}

const urlChars = `[^\s<>"',]+`

var videoPatterns = []videoPattern{
	{regexp.MustCompile(`https://[^\s<>"',]*zoom\.us/j/\d+` + `[^\s<>"',]*`), "Zoom"},
	{regexp.MustCompile(`https://[^\s<>"',]*zoom\.us/my/` + urlChars), "Zoom"},
	{regexp.MustCompile(`https://[^\s<>"',]*zoom\.us/s/` + urlChars), "Zoom"},
	{regexp.MustCompile(`https://meet\.google\.com/[a-z-]+`), "Google Meet"},
	{regexp.MustCompile(`https://teams\.microsoft\.com/l/meetup-join/` + urlChars), "Teams"},
	{regexp.MustCompile(`https://[^\s<>"',]*webex\.com/` + urlChars), "Webex"},
	{regexp.MustCompile(`https://join\.skype\.com/` + urlChars), "Skype"},
	{regexp.MustCompile(`https://[^\s<>"',]*gotomeeting\.com/` + urlChars), "GoToMeeting"},
	{regexp.MustCompile(`https://[^\s<>"',]*bluejeans\.com/` + urlChars), "BlueJeans"},
	{regexp.MustCompile(`https://[^\s<>"',]*ringcentral\.com/` + urlChars), "RingCentral"},
	{regexp.MustCompile(`https://[^\s<>"',]*whereby\.com/` + urlChars), "Whereby"},
	{regexp.MustCompile(`https://meet\.jit\.si/` + urlChars), "Jitsi"},
	{regexp.MustCompile(`https://[^\s<>"',]*jitsi\.org/` + urlChars), "Jitsi"},
	{regexp.MustCompile(`https://discord\.gg/` + urlChars), "Discord"},
	{regexp.MustCompile(`https://[^\s<>"',]*discord\.com/channels/` + urlChars), "Discord"},
	{regexp.MustCompile(`https://[^\s<>"',]*slack\.com/archives/` + urlChars), "Slack"},
	{regexp.MustCompile(`https://app\.slack\.com/meet/` + urlChars), "Slack"},
	{regexp.MustCompile(`facetime://` + urlChars), "FaceTime"},
	{regexp.MustCompile(`facetime-audio://` + urlChars), "FaceTime"},
	// Generic fallbacks for self-hosted or unknown services.
	{regexp.MustCompile(`https://[^\s<>"',]*meet` + urlChars), "Meeting"},
	{regexp.MustCompile(`https://[^\s<>"',]*call` + urlChars), "Call"},
	{regexp.MustCompile(`https://[^\s<>"',]*video` + urlChars), "Video"},
}

// ExtractVideoLink scans the description and then the location for a
// video meeting URL. It returns the matched URL substring and the
// platform label of the first pattern that matches.
func ExtractVideoLink(description, location string) (url, platform string, ok bool) {
	for _, text := range []string{description, location} {
		if text == "" {
			continue
		}
		for _, p := range videoPatterns {
			if match := p.re.FindString(text); match != "" {
				return match, p.platform, true
			}
		}
	}
	return "", "", false
}
