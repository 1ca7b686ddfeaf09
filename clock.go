package tlog

import "time"

// Clock returns the current time as seconds since the epoch
type Clock func() float64

// NowPosix is the default wall clock with microsecond resolution
func NowPosix() float64 {
	return float64(time.Now().UnixMicro()) / 1e6
}

// posixToTime converts a Clock reading back to a time.Time
func posixToTime(ts float64) time.Time {
	sec := int64(ts)
	nsec := int64((ts - float64(sec)) * 1e9)
	return time.Unix(sec, nsec)
}
