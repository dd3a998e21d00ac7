package viewer

import "testing"

func TestFormatRemaining(t *testing.T) {
	t.Parallel()

	cases := []struct {
		seconds int64
		want    string
	}{
		{0, "00:00:00"},
		{59, "00:00:59"},
		{60, "00:01:00"},
		{3599, "00:59:59"},
		{3661, "01:01:01"},
		{86399, "23:59:59"},
		{90000, "25:00:00"},
		{-5, "00:00:00"},
	}

	for _, tc := range cases {
		if got := FormatRemaining(tc.seconds); got != tc.want {
			t.Errorf("FormatRemaining(%d) = %q, want %q", tc.seconds, got, tc.want)
		}
	}
}

func TestFormatRemaining_Idempotent(t *testing.T) {
	t.Parallel()

	if FormatRemaining(3661) != FormatRemaining(3661) {
		t.Error("formatter must be deterministic")
	}
}
