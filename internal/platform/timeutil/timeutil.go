// Package timeutil renders stored UTC timestamps in the platform's fixed
// civil time zone (Asia/Shanghai, UTC+8).
package timeutil

import "time"

// layout is the civil timestamp format used everywhere in the API.
const layout = "2006-01-02 15:04:05"

var display = loadDisplayLocation()

func loadDisplayLocation() *time.Location {
	loc, err := time.LoadLocation("Asia/Shanghai")
	if err != nil {
		// Containers without tzdata still get the right offset; the zone
		// has no DST transitions.
		return time.FixedZone("CST", 8*60*60)
	}
	return loc
}

// Location returns the display time zone.
func Location() *time.Location {
	return display
}

// Format renders a timestamp as "YYYY-MM-DD HH:MM:SS" in the display zone.
// Naive times are treated as UTC.
func Format(t time.Time) string {
	return t.In(display).Format(layout)
}

// FormatPtr renders an optional timestamp, passing nil through.
func FormatPtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := Format(*t)
	return &s
}

// Stamp renders a timestamp as a compact "YYYYMMDDHHMMSS" in the display
// zone, used for generated file names.
func Stamp(t time.Time) string {
	return t.In(display).Format("20060102150405")
}
