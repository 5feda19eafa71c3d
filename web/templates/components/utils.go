package components

import (
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mergestat/timediff"
)

// FormatRelativeTime formats a time.Time as a relative time string like "3 hours ago".
func FormatRelativeTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return timediff.TimeDiff(t)
}

// FormatMoney formats an amount with thousands separators and at most two decimals.
func FormatMoney(amount float64) string {
	return humanize.CommafWithDigits(amount, 2)
}

// FormatCount formats an integer with thousands separators.
func FormatCount(n int64) string {
	return humanize.Comma(n)
}

// FormatExpiry formats a license expiry date.
func FormatExpiry(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02") + " (" + timediff.TimeDiff(*t) + ")"
}
