// Package alert implements the alert scheduler: evaluating upcoming
// events against the enabled thresholds each tick, firing at most one
// alert per event per tick, and handling the user actions (snooze,
// dismiss, manual trigger) that feed back into evaluation.
package alert

import (
	"time"

	"openchime/internal/domain/entity"
)

// graceWindow is how far past a threshold an alert may still fire. A
// missed tick (laptop asleep, clock jump) within the window fires late
// instead of being dropped; beyond it the threshold is skipped so a
// 30m warning never sounds when the meeting starts in 3 minutes.
const graceWindow = 5

// thresholds are evaluated highest-first so a single tick fires the most
// urgent applicable alert and the last-fired threshold only descends.
var thresholds = [5]int{30, 10, 5, 1, 0}

// CheckThresholds returns the threshold to fire for the event at the
// given instant, or ok=false when nothing is due. A threshold T fires
// when it is enabled, minutes-until-start is in (T-5, T], and no alert
// at or below T has fired for this event yet.
func CheckThresholds(event *entity.CalendarEvent, settings entity.Settings, now time.Time) (threshold int, alertType entity.AlertType, ok bool) {
	minutesUntil := event.MinutesUntilStart(now)

	for _, t := range thresholds {
		if !settings.ThresholdEnabled(t) {
			continue
		}

		windowOK := minutesUntil <= t && minutesUntil > t-graceWindow
		notAlertedYet := event.LastAlertThreshold == nil || *event.LastAlertThreshold > t

		if windowOK && notAlertedYet {
			return t, entity.AlertForThreshold(t, event.IsVideoMeeting()), true
		}
	}
	return 0, 0, false
}
