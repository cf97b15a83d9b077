package core

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// TestExecutionHistory_RingWraps verifies bounded retention
// Given: A history with capacity 3 and 5 added records
// When: Recent is queried
// Then: Only the 3 newest records remain, newest first
func TestExecutionHistory_RingWraps(t *testing.T) {
	h := newExecutionHistory(3)

	for i := range 5 {
		h.Add(TaskRecord{
			ID:       uuid.New(),
			Name:     "Task_" + string(rune('0'+i)),
			Outcome:  StateCompleted,
			Duration: time.Duration(i) * time.Millisecond,
		})
	}

	records := h.Recent(0)

	require.Len(t, records, 3)
	require.Equal(t, "Task_4", records[0].Name)
	require.Equal(t, "Task_3", records[1].Name)
	require.Equal(t, "Task_2", records[2].Name)
}

// TestExecutionHistory_RecentLimit verifies the limit parameter
func TestExecutionHistory_RecentLimit(t *testing.T) {
	h := newExecutionHistory(10)
	h.Add(TaskRecord{Name: "a"})
	h.Add(TaskRecord{Name: "b"})
	h.Add(TaskRecord{Name: "c"})

	require.Len(t, h.Recent(2), 2)
	require.Equal(t, "c", h.Recent(2)[0].Name)
	require.Len(t, h.Recent(0), 3)
	require.Len(t, h.Recent(100), 3)
}

// TestExecutionHistory_Empty verifies the empty cases
func TestExecutionHistory_Empty(t *testing.T) {
	h := newExecutionHistory(4)

	require.Nil(t, h.Recent(0))
	_, found := h.Last()
	require.False(t, found)
}

// TestExecutionHistory_Last verifies newest lookup
func TestExecutionHistory_Last(t *testing.T) {
	h := newExecutionHistory(2)
	h.Add(TaskRecord{Name: "old"})
	h.Add(TaskRecord{Name: "new"})

	last, found := h.Last()

	require.True(t, found)
	require.Equal(t, "new", last.Name)
}
