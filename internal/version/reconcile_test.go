package version

import (
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/stretchr/testify/assert"
)

func TestReconcile(t *testing.T) {
	tests := []struct {
		name       string
		current    string
		candidate  string
		want       string
		wantCommit bool
	}{
		{
			name:       "candidate ahead is adopted",
			current:    "0.0.26",
			candidate:  "0.0.30",
			want:       "0.0.30",
			wantCommit: true,
		},
		{
			name:       "equal versions are a no-op",
			current:    "1.2.3",
			candidate:  "1.2.3",
			want:       "1.2.3",
			wantCommit: false,
		},
		{
			name:       "manual override within the series is respected",
			current:    "0.3.9",
			candidate:  "0.3.4",
			want:       "0.3.9",
			wantCommit: false,
		},
		{
			name:       "candidate behind across series is not adopted",
			current:    "1.0.0",
			candidate:  "0.9.5",
			want:       "1.0.0",
			wantCommit: false,
		},
		{
			name:       "higher minor is adopted",
			current:    "0.3.9",
			candidate:  "0.4.0",
			want:       "0.4.0",
			wantCommit: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := Reconcile(semver.MustParse(tt.current), semver.MustParse(tt.candidate))
			assert.Equal(t, tt.want, decision.Version.String())
			assert.Equal(t, tt.wantCommit, decision.ShouldCommit)
		})
	}
}

func TestReconcile_Idempotent(t *testing.T) {
	current := semver.MustParse("0.0.26")
	candidate := semver.MustParse("0.0.30")

	first := Reconcile(current, candidate)
	assert.True(t, first.ShouldCommit)

	// A second run without new commits sees the adopted version as current
	// and the same candidate; it must keep the version and not write again.
	second := Reconcile(first.Version, candidate)
	assert.Equal(t, first.Version.String(), second.Version.String())
	assert.False(t, second.ShouldCommit)
}
