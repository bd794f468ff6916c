package timeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BST1120/mapper2/internal/domain"
)

func TestBuildAreaTimelinesInitialFromFirstMove(t *testing.T) {
	base := time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)
	logs := []domain.AuditEntry{
		{Kind: domain.AuditMove, StaffID: "s1", FromAreaID: "saru", ToAreaID: "hebi", Timestamp: base.Add(time.Hour)},
		{Kind: domain.AuditMove, StaffID: "s1", FromAreaID: "hebi", ToAreaID: "usagi", Timestamp: base.Add(2 * time.Hour)},
	}
	assignments := map[string]domain.Assignment{
		"s1": {AreaID: "usagi", Version: 2},
	}

	out := BuildAreaTimelines([]string{"s1"}, assignments, logs)
	tl := out["s1"]
	assert.Equal(t, "saru", tl.InitialAreaID)
	require.Len(t, tl.Moves, 2)
	assert.Equal(t, "hebi", tl.Moves[0].ToAreaID)
	assert.Equal(t, "usagi", tl.Moves[1].ToAreaID)
}

func TestBuildAreaTimelinesSortsOutOfOrderLog(t *testing.T) {
	base := time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)
	logs := []domain.AuditEntry{
		{Kind: domain.AuditMove, StaffID: "s1", FromAreaID: "hebi", ToAreaID: "usagi", Timestamp: base.Add(2 * time.Hour)},
		{Kind: domain.AuditMove, StaffID: "s1", FromAreaID: "saru", ToAreaID: "hebi", Timestamp: base.Add(time.Hour)},
	}

	out := BuildAreaTimelines([]string{"s1"}, nil, logs)
	tl := out["s1"]
	assert.Equal(t, "saru", tl.InitialAreaID)
	require.Len(t, tl.Moves, 2)
	assert.True(t, tl.Moves[0].At.Before(tl.Moves[1].At))
}

func TestBuildAreaTimelinesFallsBackToCurrentAssignment(t *testing.T) {
	// No moves in the log: the live assignment stands in for start of day.
	assignments := map[string]domain.Assignment{
		"s1": {AreaID: "tora", Version: 5},
	}
	out := BuildAreaTimelines([]string{"s1", "s2"}, assignments, nil)
	assert.Equal(t, "tora", out["s1"].InitialAreaID)
	// No assignment either: free.
	assert.Equal(t, domain.AreaIDFree, out["s2"].InitialAreaID)
}

func TestBuildAreaTimelinesFallsBackWhenOriginMissing(t *testing.T) {
	base := time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)
	logs := []domain.AuditEntry{
		{Kind: domain.AuditMove, StaffID: "s1", ToAreaID: "hebi", Timestamp: base},
	}
	assignments := map[string]domain.Assignment{
		"s1": {AreaID: "hebi", Version: 1},
	}
	out := BuildAreaTimelines([]string{"s1"}, assignments, logs)
	assert.Equal(t, "hebi", out["s1"].InitialAreaID)
}

func TestBuildAreaTimelinesFiltersNoise(t *testing.T) {
	base := time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)
	logs := []domain.AuditEntry{
		{Kind: domain.AuditLock, Timestamp: base},
		{Kind: domain.AuditMove, StaffID: "other", FromAreaID: "a", ToAreaID: "b", Timestamp: base},
		{Kind: domain.AuditMove, StaffID: "s1", FromAreaID: "a", ToAreaID: "", Timestamp: base},
		{Kind: domain.AuditMove, StaffID: "s1", FromAreaID: "a", ToAreaID: "b"}, // zero timestamp
	}
	out := BuildAreaTimelines([]string{"s1"}, nil, logs)
	assert.Empty(t, out["s1"].Moves)
}
