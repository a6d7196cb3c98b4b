package action

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRecording_AssignsUniqueID(t *testing.T) {
	a := NewRecording("web", "https://example.com")
	b := NewRecording("web", "https://example.com")
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestValidate_RequiresInitialResize(t *testing.T) {
	rec := NewRecording("web", "https://example.com")
	rec.Actions = []Action{{Type: Click, Timestamp: 1}}
	assert.Error(t, rec.Validate())
}

func TestValidate_AcceptsWellFormedRecording(t *testing.T) {
	rec := NewRecording("web", "https://example.com")
	rec.RecordingStartTime = 100
	rec.RecordingEndTime = 200
	rec.Actions = []Action{
		{Type: BrowserResize, Timestamp: 100, FromWidth: IntPtr(1280), FromHeight: IntPtr(800), ToWidth: IntPtr(1280), ToHeight: IntPtr(800)},
		{Type: Click, Timestamp: 150, Selector: "#a", X: IntPtr(1), Y: IntPtr(1)},
	}
	assert.NoError(t, rec.Validate())
}

func TestValidate_RejectsUnsortedTimestamps(t *testing.T) {
	rec := NewRecording("web", "https://example.com")
	rec.Actions = []Action{
		{Type: BrowserResize, Timestamp: 200, FromWidth: IntPtr(1), FromHeight: IntPtr(1), ToWidth: IntPtr(1), ToHeight: IntPtr(1)},
		{Type: Click, Timestamp: 100, Selector: "#a"},
	}
	assert.Error(t, rec.Validate())
}

func TestValidate_RejectsInvertedSelectionRange(t *testing.T) {
	rec := NewRecording("web", "https://example.com")
	rec.Actions = []Action{
		{Type: BrowserResize, Timestamp: 1, FromWidth: IntPtr(1), FromHeight: IntPtr(1), ToWidth: IntPtr(1), ToHeight: IntPtr(1)},
		{Type: Input, Timestamp: 2, Selector: "#a", Value: StringPtr("x"), SelectionStart: IntPtr(5), SelectionEnd: IntPtr(2)},
	}
	assert.Error(t, rec.Validate())
}

func TestValidate_RejectsMismatchedInitialResize(t *testing.T) {
	rec := NewRecording("web", "https://example.com")
	rec.Actions = []Action{
		{Type: BrowserResize, Timestamp: 1, FromWidth: IntPtr(800), FromHeight: IntPtr(600), ToWidth: IntPtr(1024), ToHeight: IntPtr(600)},
	}
	assert.Error(t, rec.Validate())
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "5s", FormatDuration(5000))
	assert.Equal(t, "1m 5s", FormatDuration(65000))
	assert.Equal(t, "1h 0m 5s", FormatDuration(3605000))
	assert.Equal(t, "0s", FormatDuration(-10))
}

func TestResultEnvelope(t *testing.T) {
	ok := Ok(42)
	assert.True(t, ok.IsOK())
	assert.Equal(t, 42, ok.RDATA)

	errRes := Err[int](BusyTimeout, "timed out")
	assert.False(t, errRes.IsOK())
	assert.Equal(t, BusyTimeout, errRes.STCOD)

	withData := ErrWithData(ActionFailed, "step 3 failed", []int{1, 2})
	require.False(t, withData.IsOK())
	assert.Equal(t, []int{1, 2}, withData.RDATA)
}
