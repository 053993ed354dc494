package logging

import "time"

// logTimestampLayout is the console timestamp: local time with milliseconds,
// which keeps queue operations issued within one second in order.
const logTimestampLayout = "2006-01-02 15:04:05.000"

func formatTimestamp(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.Local().Format(logTimestampLayout)
}
