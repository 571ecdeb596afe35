package clock

import "fmt"

// MillisToTimeStr renders remaining time as MM:SS, or MM:SS.t under ten
// seconds.
func MillisToTimeStr(ms int) string {
	return FormatMillis(ms, true)
}

// FormatMillis renders ms as MM:SS, rounding seconds up. Under ten seconds
// with showTenths it renders MM:SS.t, truncating to the tenth.
func FormatMillis(ms int, showTenths bool) string {
	sign := ""
	if ms < 0 {
		sign = "-"
		ms = -ms
	}
	if ms >= fastThreshold || !showTenths {
		secs := (ms + 999) / 1000
		return fmt.Sprintf("%s%02d:%02d", sign, secs/60, secs%60)
	}
	tenths := ms / 100
	return fmt.Sprintf("%s%02d:%02d.%d", sign, tenths/600, (tenths%600)/10, tenths%10)
}
