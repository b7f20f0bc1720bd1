package analysis

import "hollymart.app/intel/internal/model"

// SplitWindows bounds the size of what gets handed to the inference client in
// one call. Messages stay in chronological order with no overlap and no gaps,
// and window sizes differ by at most one so no call carries a degenerate tail
// (e.g. 200 messages at max 150 become two windows of 100, not 150+50).
func SplitWindows(messages []model.Message, maxPerWindow int) [][]model.Message {
	n := len(messages)
	if n == 0 {
		return nil
	}
	if maxPerWindow <= 0 || n <= maxPerWindow {
		return [][]model.Message{messages}
	}

	count := (n + maxPerWindow - 1) / maxPerWindow
	base := n / count
	rem := n % count

	windows := make([][]model.Message, 0, count)
	start := 0
	for i := 0; i < count; i++ {
		size := base
		if i < rem {
			size++
		}
		windows = append(windows, messages[start:start+size])
		start += size
	}
	return windows
}
