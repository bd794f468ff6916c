package timeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustSlots(t *testing.T) []Slot {
	t.Helper()
	slots, err := MakeSlots("2026-08-29", time.UTC)
	require.NoError(t, err)
	return slots
}

func TestMakeSlots(t *testing.T) {
	slots := mustSlots(t)
	require.Len(t, slots, 49)
	assert.Equal(t, "07:00", slots[0].Label)
	assert.Equal(t, "07:15", slots[1].Label)
	assert.Equal(t, "19:00", slots[48].Label)
	assert.Equal(t, 15*time.Minute, slots[1].T.Sub(slots[0].T))
}

func TestUnderstaffedRanges(t *testing.T) {
	slots := mustSlots(t)

	tests := []struct {
		name      string
		counts    []int
		threshold int
		want      []UnderstaffedRange
	}{
		{
			name:      "collapses runs and reopens",
			counts:    []int{3, 3, 1, 1, 1, 4, 2, 2},
			threshold: 3,
			want: []UnderstaffedRange{
				{Start: "07:30", End: "08:15"},
				{Start: "08:30", End: "09:00"},
			},
		},
		{
			name:      "threshold zero disables",
			counts:    []int{0, 0, 0},
			threshold: 0,
			want:      nil,
		},
		{
			name:      "never below",
			counts:    []int{5, 5, 5},
			threshold: 3,
			want:      nil,
		},
		{
			name:      "open run ends at the boundary after the last counted slot",
			counts:    []int{4, 1, 1},
			threshold: 2,
			want: []UnderstaffedRange{
				{Start: "07:15", End: "07:45"},
			},
		},
		{
			name:      "equal to threshold is not low",
			counts:    []int{3, 3},
			threshold: 3,
			want:      nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := UnderstaffedRanges(slots, tt.counts, tt.threshold)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUnderstaffedRangesFullDayLow(t *testing.T) {
	slots := mustSlots(t)
	counts := make([]int, 48)
	got := UnderstaffedRanges(slots, counts, 1)
	require.Len(t, got, 1)
	assert.Equal(t, UnderstaffedRange{Start: "07:00", End: "19:00"}, got[0])
}

func TestFormatUnderstaffedLabel(t *testing.T) {
	assert.Equal(t, "なし", FormatUnderstaffedLabel(nil, 2))

	ranges := []UnderstaffedRange{
		{Start: "12:15", End: "13:00"},
		{Start: "16:30", End: "17:15"},
		{Start: "18:00", End: "18:30"},
	}
	assert.Equal(t, "12:15〜13:00 / 16:30〜17:15", FormatUnderstaffedLabel(ranges, 2))
	assert.Equal(t, "12:15〜13:00", FormatUnderstaffedLabel(ranges[:1], 2))
	assert.Equal(t, "12:15〜13:00 / 16:30〜17:15 / 18:00〜18:30", FormatUnderstaffedLabel(ranges, 3))
}
