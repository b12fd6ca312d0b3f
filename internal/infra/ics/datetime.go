package ics

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// ICS datetime value layouts.
const (
	layoutUTC      = "20060102T150405Z"
	layoutFloating = "20060102T150405"
	layoutDate     = "20060102"
)

// resolveDateTime converts one ICS date/datetime property value to a UTC
// instant. Four input shapes converge here:
//
//  1. UTC-tagged ("...Z"): passed through unchanged.
//  2. Floating (no timezone): interpreted as wall-clock time in loc
//     (the processing host's location in production).
//  3. TZID parameter: resolved against the IANA timezone database; an
//     unrecognized zone id falls back to loc with a warning.
//  4. Date-only (all-day): midnight in loc on that calendar date.
//
// For wall-clock inputs that fall into a daylight-saving gap or overlap,
// the time package resolves to a single canonical instant; entries are
// never dropped for DST ambiguity, only for unparsable values.
func resolveDateTime(value string, params map[string][]string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty datetime value")
	}

	// Case 1: UTC-tagged.
	if strings.HasSuffix(value, "Z") {
		t, err := time.Parse(layoutUTC, value)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse UTC datetime %q: %w", value, err)
		}
		return t, nil
	}

	// Case 4: date-only, either via VALUE=DATE or a value without a
	// time component.
	if hasParam(params, "VALUE", "DATE") || !strings.Contains(value, "T") {
		t, err := time.ParseInLocation(layoutDate, value, loc)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse date %q: %w", value, err)
		}
		return t.UTC(), nil
	}

	// Case 3: explicit zone id.
	if tzids, ok := params["TZID"]; ok && len(tzids) > 0 && tzids[0] != "" {
		tzid := tzids[0]
		zone, err := time.LoadLocation(tzid)
		if err != nil {
			slog.Warn("unrecognized timezone, treating as local time",
				slog.String("tzid", tzid))
			zone = loc
		}
		t, err := time.ParseInLocation(layoutFloating, value, zone)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse zoned datetime %q: %w", value, err)
		}
		return t.UTC(), nil
	}

	// Case 2: floating.
	t, err := time.ParseInLocation(layoutFloating, value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse floating datetime %q: %w", value, err)
	}
	return t.UTC(), nil
}

func hasParam(params map[string][]string, key, want string) bool {
	if params == nil {
		return false
	}
	for _, v := range params[key] {
		if strings.EqualFold(v, want) {
			return true
		}
	}
	return false
}
