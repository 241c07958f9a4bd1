package rtl433

import (
	"testing"
	"time"
)

func TestRetryDelayGrowsToCap(t *testing.T) {
	want := []time.Duration{
		1 * time.Second,
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		16 * time.Second,
		30 * time.Second,
		30 * time.Second,
	}
	for attempt, w := range want {
		if got := retryDelay(attempt); got != w {
			t.Errorf("retryDelay(%d) = %v, want %v", attempt, got, w)
		}
	}
}

func TestNextAttempt(t *testing.T) {
	tests := []struct {
		name    string
		attempt int
		ran     time.Duration
		want    int
	}{
		{
			name:    "quick failure keeps the counter",
			attempt: 3,
			ran:     2 * time.Second,
			want:    3,
		},
		{
			name:    "run just under the threshold keeps the counter",
			attempt: 5,
			ran:     backoffResetAfter - time.Millisecond,
			want:    5,
		},
		{
			name:    "healthy run clears the counter",
			attempt: 5,
			ran:     backoffResetAfter,
			want:    0,
		},
		{
			name:    "hours-long run clears the counter",
			attempt: 6,
			ran:     48 * time.Hour,
			want:    0,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := nextAttempt(tc.attempt, tc.ran); got != tc.want {
				t.Errorf("nextAttempt(%d, %v) = %d, want %d", tc.attempt, tc.ran, got, tc.want)
			}
		})
	}
}

// A receiver that streamed well past the reset threshold and then died
// should restart after the base delay, not the full cap.
func TestBackoffResetsAfterLongRun(t *testing.T) {
	attempt := 6 // saturated at the cap
	attempt = nextAttempt(attempt, 3*time.Hour)
	if got := retryDelay(attempt); got != baseRetryDelay {
		t.Errorf("delay after long run = %v, want %v", got, baseRetryDelay)
	}
}
