package clock

import "testing"

func TestMillisToTimeStr(t *testing.T) {
	cases := []struct {
		ms   int
		want string
	}{
		{ms: 479900, want: "08:00"},
		{ms: 8900, want: "00:08.9"},
		{ms: 60000, want: "01:00"},
		{ms: 10000, want: "00:10"},
		{ms: 9999, want: "00:09.9"},
		{ms: 0, want: "00:00.0"},
		{ms: 1500001, want: "25:01"},
		{ms: -5000, want: "-00:05.0"},
		{ms: -65000, want: "-01:05"},
	}

	for _, tc := range cases {
		if got := MillisToTimeStr(tc.ms); got != tc.want {
			t.Fatalf("MillisToTimeStr(%d): got %q, want %q", tc.ms, got, tc.want)
		}
	}
}

func TestFormatMillis_NoTenths(t *testing.T) {
	if got := FormatMillis(8900, false); got != "00:09" {
		t.Fatalf("got %q, want 00:09", got)
	}
}
