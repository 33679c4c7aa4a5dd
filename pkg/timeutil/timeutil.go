// Package timeutil provides timezone utilities for East Africa Time (UTC+3).
// WCU students and the academic portal all operate on Addis Ababa time, so
// user-facing dates are rendered in that zone regardless of server locale.
// No external dependencies - uses only standard library.
package timeutil

import "time"

// EthiopiaTZ is the Addis Ababa timezone (UTC+3, no DST).
var EthiopiaTZ = time.FixedZone("Africa/Addis_Ababa", 3*60*60)

// Common date/time formats.
const (
	// FormatDate is the standard date format (YYYY-MM-DD).
	FormatDate = "2006-01-02"
	// FormatDateTime is the standard datetime format.
	FormatDateTime = "2006-01-02 15:04"
	// FormatHumanDate is a human-readable format.
	FormatHumanDate = "2 January 2006"
)

// Now returns the current time in Ethiopia timezone.
func Now() time.Time {
	return time.Now().In(EthiopiaTZ)
}

// ToEthiopia converts a time to Ethiopia timezone.
func ToEthiopia(t time.Time) time.Time {
	return t.In(EthiopiaTZ)
}

// Today returns today's date (YYYY-MM-DD) in Ethiopia timezone. This is the
// registration-date value stored (encrypted) with every new user.
func Today() string {
	return Now().Format(FormatDate)
}

// FormatDateStr formats a time as a date string in Ethiopia timezone.
func FormatDateStr(t time.Time) string {
	return ToEthiopia(t).Format(FormatDate)
}
