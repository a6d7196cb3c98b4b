package action

import "fmt"

// Validate checks the recording invariants from spec §3/§8 (P1-P4):
// timestamp-sortedness, an initial same-size browser_resize, and
// start<=end ordering. It does not mutate r; callers that want a
// sorted copy should sort Actions themselves before replay.
func (r *Recording) Validate() error {
	if len(r.Actions) == 0 {
		return fmt.Errorf("action: recording has no actions")
	}
	first := r.Actions[0]
	if first.Type != BrowserResize {
		return fmt.Errorf("action: first action must be browser_resize, got %s", first.Type)
	}
	if first.FromWidth == nil || first.ToWidth == nil || *first.FromWidth != *first.ToWidth {
		return fmt.Errorf("action: initial browser_resize must have fromWidth == toWidth")
	}
	if first.FromHeight == nil || first.ToHeight == nil || *first.FromHeight != *first.ToHeight {
		return fmt.Errorf("action: initial browser_resize must have fromHeight == toHeight")
	}
	for i := 1; i < len(r.Actions); i++ {
		if r.Actions[i].Timestamp < r.Actions[i-1].Timestamp {
			return fmt.Errorf("action: actions not timestamp-sorted at index %d", i)
		}
	}
	if r.RecordingEndTime != 0 && r.RecordingEndTime < r.RecordingStartTime {
		return fmt.Errorf("action: recordingEndTime before recordingStartTime")
	}
	for i, a := range r.Actions {
		if a.SelectionStart != nil && a.SelectionEnd != nil && *a.SelectionStart > *a.SelectionEnd {
			return fmt.Errorf("action: selectionStart > selectionEnd at index %d", i)
		}
	}
	return nil
}

// FormatDuration renders a millisecond duration as "{h}h {m}m {s}s",
// omitting higher-order zero units, per spec §4.4 getMetadata.
func FormatDuration(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	totalSeconds := ms / 1000
	h := totalSeconds / 3600
	m := (totalSeconds % 3600) / 60
	s := totalSeconds % 60

	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}
