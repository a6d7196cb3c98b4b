package replayer

import (
	"context"
	"fmt"
	"time"

	"github.com/LEECHUNGYOON/u4a-record-replay/internal/action"
	"github.com/LEECHUNGYOON/u4a-record-replay/internal/overlay"
	"github.com/LEECHUNGYOON/u4a-record-replay/pkg/driver"
)

// selectorWaitTimeout bounds the "wait for selector" step of click/input
// (spec §4.7, §5 "Selector waits are bounded at 5s").
const selectorWaitTimeout = 5 * time.Second

// execute dispatches one action to its C7 primitive, hinting the
// overlay first. ov may be nil or disabled; overlay.Overlay swallows
// that case itself.
func execute(ctx context.Context, tab driver.Tab, ov *overlay.Overlay, a action.Action) error {
	switch a.Type {
	case action.Click:
		return executeClick(ctx, tab, ov, a)
	case action.Input:
		return executeInput(ctx, tab, ov, a)
	case action.Change:
		return executeChange(ctx, tab, ov, a)
	case action.Keydown:
		return executeKeydown(ctx, tab, ov, a)
	case action.Scroll:
		return executeScroll(ctx, tab, ov, a)
	case action.BrowserResize:
		return executeResize(ctx, tab, ov, a)
	default:
		return fmt.Errorf("replayer: unknown action type %q", a.Type)
	}
}

// executeClick honors the preference order of spec §4.7: checked
// (checkbox/radio, direct property + change/click dispatch) beats
// coordinate click beats selector click.
func executeClick(ctx context.Context, tab driver.Tab, ov *overlay.Overlay, a action.Action) error {
	x, y := 0, 0
	if a.X != nil {
		x = *a.X
	}
	if a.Y != nil {
		y = *a.Y
	}
	ov.ShowClick(a.Selector, x, y)

	switch {
	case a.Checked != nil:
		return tab.SetCheckedAndDispatch(ctx, a.Selector, *a.Checked)
	case a.X != nil && a.Y != nil:
		return tab.ClickXY(ctx, *a.X, *a.Y)
	default:
		return tab.ClickSelector(ctx, a.Selector, selectorWaitTimeout)
	}
}

// executeInput sets the value directly (not keystroke typing, per
// spec §4.7) and restores selection range for text-like inputs.
func executeInput(ctx context.Context, tab driver.Tab, ov *overlay.Overlay, a action.Action) error {
	value := ""
	if a.Value != nil {
		value = *a.Value
	}
	ov.ShowInput(a.Selector, value)
	return tab.SetValueAndDispatch(ctx, a.Selector, "input", value, a.SelectionStart, a.SelectionEnd)
}

// executeChange mirrors the recorder's own change/checked exclusivity:
// checked takes the checkbox/radio path, a present value takes the
// select primitive (the schema carries no tag info, and a <select>'s
// change is the dominant non-checkable change source; see DESIGN.md).
func executeChange(ctx context.Context, tab driver.Tab, ov *overlay.Overlay, a action.Action) error {
	switch {
	case a.Checked != nil:
		ov.ShowInput(a.Selector, fmt.Sprintf("checked=%t", *a.Checked))
		return tab.SetCheckedAndDispatch(ctx, a.Selector, *a.Checked)
	case a.Value != nil:
		ov.ShowInput(a.Selector, *a.Value)
		return tab.SelectOption(ctx, a.Selector, *a.Value)
	default:
		return fmt.Errorf("replayer: change action missing both checked and value")
	}
}

func executeKeydown(ctx context.Context, tab driver.Tab, ov *overlay.Overlay, a action.Action) error {
	ov.ShowKeyPress(a.Key)
	return tab.PressKey(ctx, a.Selector, a.Key)
}

func executeScroll(ctx context.Context, tab driver.Tab, ov *overlay.Overlay, a action.Action) error {
	ov.ShowScroll(a.Selector)
	var fromX, fromY, toX, toY int
	if a.StartScrollX != nil {
		fromX = *a.StartScrollX
	}
	if a.StartScrollY != nil {
		fromY = *a.StartScrollY
	}
	if a.ScrollX != nil {
		toX = *a.ScrollX
	}
	if a.ScrollY != nil {
		toY = *a.ScrollY
	}
	var duration time.Duration
	if a.Duration != nil {
		duration = time.Duration(*a.Duration) * time.Millisecond
	}
	return tab.AnimateScroll(ctx, a.Selector, fromX, fromY, toX, toY, duration)
}

func executeResize(ctx context.Context, tab driver.Tab, ov *overlay.Overlay, a action.Action) error {
	var fromW, fromH, toW, toH int
	if a.FromWidth != nil {
		fromW = *a.FromWidth
	}
	if a.FromHeight != nil {
		fromH = *a.FromHeight
	}
	if a.ToWidth != nil {
		toW = *a.ToWidth
	}
	if a.ToHeight != nil {
		toH = *a.ToHeight
	}
	ov.ShowBrowserResize(fromW, fromH, toW, toH)
	return tab.ResizeWindow(ctx, toW, toH)
}
