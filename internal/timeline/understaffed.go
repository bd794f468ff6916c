package timeline

import "strings"

// NoUnderstaffedLabel is shown when no range falls below the threshold.
const NoUnderstaffedLabel = "なし"

// UnderstaffedRange is a closed-open [Start, End) span of slot labels.
type UnderstaffedRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// UnderstaffedRanges collapses consecutive below-threshold slots into ranges.
// counts holds one entry per counted interval (len(slots)-1 when both come
// from the same pass); threshold <= 0 disables the feature entirely. A slot
// is low iff count < threshold, strict comparison.
func UnderstaffedRanges(slots []Slot, counts []int, threshold int) []UnderstaffedRange {
	if threshold <= 0 {
		return nil
	}
	n := len(counts)
	if m := len(slots) - 1; m < n {
		n = m
	}
	if n <= 0 {
		return nil
	}

	var ranges []UnderstaffedRange
	startIdx := -1
	for i := 0; i < n; i++ {
		low := counts[i] < threshold
		if low && startIdx < 0 {
			startIdx = i
		}
		if !low && startIdx >= 0 {
			ranges = append(ranges, UnderstaffedRange{Start: slots[startIdx].Label, End: slots[i].Label})
			startIdx = -1
		}
	}
	if startIdx >= 0 {
		ranges = append(ranges, UnderstaffedRange{Start: slots[startIdx].Label, End: slots[n].Label})
	}
	return ranges
}

// FormatUnderstaffedLabel joins the first maxParts ranges for display, e.g.
// "12:15〜13:00 / 16:30〜17:15".
func FormatUnderstaffedLabel(ranges []UnderstaffedRange, maxParts int) string {
	if len(ranges) == 0 {
		return NoUnderstaffedLabel
	}
	if maxParts <= 0 {
		maxParts = 2
	}
	if len(ranges) > maxParts {
		ranges = ranges[:maxParts]
	}
	parts := make([]string, 0, len(ranges))
	for _, r := range ranges {
		parts = append(parts, r.Start+"〜"+r.End)
	}
	return strings.Join(parts, " / ")
}
