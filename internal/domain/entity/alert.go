package entity

// AlertType is the closed set of alert kinds the scheduler can emit.
// Every consumer (audio cue selection, UI labeling) switches over the
// full set; adding a case here means updating those switches.
type AlertType int

const (
	AlertWarning30m AlertType = iota
	AlertWarning10m
	AlertWarning5m
	AlertWarning1m
	AlertMeeting
	AlertVideoMeeting
	AlertTest
	AlertSnoozeReminder
)

// String returns the human-readable label for the alert type.
func (t AlertType) String() string {
	switch t {
	case AlertWarning30m:
		return "warning at 30m"
	case AlertWarning10m:
		return "warning at 10m"
	case AlertWarning5m:
		return "warning at 5m"
	case AlertWarning1m:
		return "warning at 1m"
	case AlertMeeting:
		return "meeting"
	case AlertVideoMeeting:
		return "video meeting"
	case AlertTest:
		return "test"
	case AlertSnoozeReminder:
		return "snooze reminder"
	default:
		return "unknown"
	}
}

// AlertForThreshold maps a fired threshold (minutes before start) to the
// alert type to emit. The 0-minute alert distinguishes video meetings so
// the audio cue can differ.
func AlertForThreshold(threshold int, videoMeeting bool) AlertType {
	switch threshold {
	case 30:
		return AlertWarning30m
	case 10:
		return AlertWarning10m
	case 5:
		return AlertWarning5m
	case 1:
		return AlertWarning1m
	default:
		if videoMeeting {
			return AlertVideoMeeting
		}
		return AlertMeeting
	}
}
