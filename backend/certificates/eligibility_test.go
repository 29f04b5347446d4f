package certificates

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveAffordanceHiddenCases(t *testing.T) {
	stats := &Stats{BatchID: 1, TotalUsers: 3, IssuedCount: 0, NotIssuedCount: 3}

	tests := []struct {
		name  string
		batch BatchInfo
		stats *Stats
	}{
		{"course not completed", BatchInfo{ID: 1, CourseCompleted: false, UserCount: 3}, stats},
		{"no users", BatchInfo{ID: 1, CourseCompleted: true, UserCount: 0}, stats},
		{"stats not fetched", BatchInfo{ID: 1, CourseCompleted: true, UserCount: 3}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := DeriveAffordance(tt.batch, tt.stats, false)
			assert.False(t, a.Visible)
			assert.Equal(t, ModeNone, a.Mode)
		})
	}
}

func TestDeriveAffordanceAllIssued(t *testing.T) {
	batch := BatchInfo{ID: 1, CourseCompleted: true, UserCount: 3}

	a := DeriveAffordance(batch, &Stats{TotalUsers: 3, IssuedCount: 3}, false)
	assert.True(t, a.Visible)
	assert.Equal(t, ModeAllIssued, a.Mode)

	// One fewer issued flips back to an actionable send
	a = DeriveAffordance(batch, &Stats{TotalUsers: 3, IssuedCount: 2}, false)
	assert.True(t, a.Visible)
	assert.Equal(t, ModeSend, a.Mode)
}

func TestDeriveAffordanceZeroTotalNeverAllIssued(t *testing.T) {
	// issued == total == 0 must not read as "all issued"
	a := DeriveAffordance(BatchInfo{ID: 1, CourseCompleted: true, UserCount: 1},
		&Stats{TotalUsers: 0, IssuedCount: 0}, false)
	assert.Equal(t, ModeSend, a.Mode)
}

func TestDeriveAffordanceSending(t *testing.T) {
	batch := BatchInfo{ID: 1, CourseCompleted: true, UserCount: 3}
	stats := &Stats{TotalUsers: 3, IssuedCount: 1}

	a := DeriveAffordance(batch, stats, true)
	assert.True(t, a.Visible)
	assert.Equal(t, ModeSending, a.Mode)
}

func TestSendRegistryPerBatchIndependence(t *testing.T) {
	r := NewSendRegistry()

	assert.True(t, r.Begin(1))
	assert.False(t, r.Begin(1), "second send for the same batch is refused")
	assert.True(t, r.Begin(2), "another batch is unaffected")

	assert.True(t, r.Sending(1))
	assert.True(t, r.Sending(2))
	assert.False(t, r.Sending(3))

	r.End(1)
	assert.False(t, r.Sending(1))
	assert.True(t, r.Sending(2))
	assert.True(t, r.Begin(1), "finished batch can send again")
}
