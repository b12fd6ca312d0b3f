package entity

// Settings holds user preferences read from the flat key-value settings
// table. Each key is parsed independently with a per-key default so a
// single corrupt value never invalidates the rest.
type Settings struct {
	Volume float64

	Alert30m     bool
	Alert10m     bool
	Alert5m      bool
	Alert1m      bool
	AlertDefault bool // alert at event start time
}

// DefaultSettings returns the settings applied to a fresh install and the
// per-key fallbacks used when a stored value fails to parse.
func DefaultSettings() Settings {
	return Settings{
		Volume:       0.7,
		Alert30m:     false,
		Alert10m:     false,
		Alert5m:      true,
		Alert1m:      true,
		AlertDefault: true,
	}
}

// ThresholdEnabled reports whether the alert for the given threshold
// (minutes before start) is enabled.
func (s Settings) ThresholdEnabled(threshold int) bool {
	switch threshold {
	case 30:
		return s.Alert30m
	case 10:
		return s.Alert10m
	case 5:
		return s.Alert5m
	case 1:
		return s.Alert1m
	case 0:
		return s.AlertDefault
	default:
		return false
	}
}
