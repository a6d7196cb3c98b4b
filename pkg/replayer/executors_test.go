package replayer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LEECHUNGYOON/u4a-record-replay/internal/action"
)

func TestExecuteClick_CheckedTakesPrecedence(t *testing.T) {
	tab := newFakeTab()
	a := action.Action{Type: action.Click, Selector: "#cb", X: action.IntPtr(5), Y: action.IntPtr(5), Checked: action.BoolPtr(true)}
	require.NoError(t, execute(context.Background(), tab, nil, a))
	assert.Equal(t, []bool{true}, tab.checkedCalls)
	assert.Empty(t, tab.clickXYCalls)
}

func TestExecuteClick_CoordinatesBeatSelector(t *testing.T) {
	tab := newFakeTab()
	a := action.Action{Type: action.Click, Selector: "#btn", X: action.IntPtr(10), Y: action.IntPtr(20)}
	require.NoError(t, execute(context.Background(), tab, nil, a))
	assert.Equal(t, [][2]int{{10, 20}}, tab.clickXYCalls)
	assert.Empty(t, tab.clickSelectorCalls)
}

func TestExecuteClick_SelectorFallback(t *testing.T) {
	tab := newFakeTab()
	a := action.Action{Type: action.Click, Selector: "#btn"}
	require.NoError(t, execute(context.Background(), tab, nil, a))
	assert.Equal(t, []string{"#btn"}, tab.clickSelectorCalls)
}

func TestExecuteInput_SetsValue(t *testing.T) {
	tab := newFakeTab()
	a := action.Action{Type: action.Input, Selector: "#name", Value: action.StringPtr("alice"), SelectionStart: action.IntPtr(1), SelectionEnd: action.IntPtr(3)}
	require.NoError(t, execute(context.Background(), tab, nil, a))
	assert.Equal(t, []string{"#name"}, tab.valueSelectors)
	assert.Equal(t, []string{"alice"}, tab.valueCalls)
}

func TestExecuteChange_Checked(t *testing.T) {
	tab := newFakeTab()
	a := action.Action{Type: action.Change, Selector: "#cb", Checked: action.BoolPtr(false)}
	require.NoError(t, execute(context.Background(), tab, nil, a))
	assert.Equal(t, []bool{false}, tab.checkedCalls)
}

func TestExecuteChange_ValueGoesToSelectOption(t *testing.T) {
	tab := newFakeTab()
	a := action.Action{Type: action.Change, Selector: "#sel", Value: action.StringPtr("b")}
	require.NoError(t, execute(context.Background(), tab, nil, a))
	assert.Equal(t, []string{"b"}, tab.selectCalls)
}

func TestExecuteChange_MissingBothIsAnError(t *testing.T) {
	tab := newFakeTab()
	a := action.Action{Type: action.Change, Selector: "#sel"}
	assert.Error(t, execute(context.Background(), tab, nil, a))
}

func TestExecuteKeydown(t *testing.T) {
	tab := newFakeTab()
	a := action.Action{Type: action.Keydown, Selector: "#pass", Key: "Enter"}
	require.NoError(t, execute(context.Background(), tab, nil, a))
	assert.Equal(t, []string{"Enter"}, tab.keyCalls)
}

func TestExecuteScroll(t *testing.T) {
	tab := newFakeTab()
	a := action.Action{Type: action.Scroll, Selector: "window", ScrollY: action.IntPtr(400), Duration: action.Int64Ptr(300)}
	require.NoError(t, execute(context.Background(), tab, nil, a))
	assert.Equal(t, 1, tab.scrollCalls)
}

func TestExecuteResize(t *testing.T) {
	tab := newFakeTab()
	a := action.Action{Type: action.BrowserResize, FromWidth: action.IntPtr(800), FromHeight: action.IntPtr(600), ToWidth: action.IntPtr(1024), ToHeight: action.IntPtr(768)}
	require.NoError(t, execute(context.Background(), tab, nil, a))
	assert.Equal(t, [][2]int{{1024, 768}}, tab.resizeCalls)
}

func TestExecute_UnknownTypeIsAnError(t *testing.T) {
	tab := newFakeTab()
	a := action.Action{Type: action.Type("bogus")}
	assert.Error(t, execute(context.Background(), tab, nil, a))
}

func TestExecute_PropagatesTabError(t *testing.T) {
	tab := newFakeTab()
	tab.err = assert.AnError
	a := action.Action{Type: action.Keydown, Selector: "#x", Key: "Tab"}
	assert.Error(t, execute(context.Background(), tab, nil, a))
}
