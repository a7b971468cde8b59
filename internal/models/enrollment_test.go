package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStatusForProgress(t *testing.T) {
	cases := []struct {
		name     string
		progress float64
		want     string
	}{
		{name: "zero stays not started", progress: 0, want: EnrollmentStatusNotStarted},
		{name: "fractional progress is in progress", progress: 0.5, want: EnrollmentStatusInProgress},
		{name: "halfway is in progress", progress: 50, want: EnrollmentStatusInProgress},
		{name: "just below full is in progress", progress: 99.99, want: EnrollmentStatusInProgress},
		{name: "full completes", progress: 100, want: EnrollmentStatusCompleted},
		{name: "overshoot completes", progress: 120, want: EnrollmentStatusCompleted},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, StatusForProgress(tc.progress))
		})
	}
}
