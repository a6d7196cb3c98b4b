package recorder

import (
	"context"
	"time"

	"github.com/LEECHUNGYOON/u4a-record-replay/pkg/driver"
)

// fakeTab is a minimal driver.Tab double: enough behavior to drive the
// Recorder state machine without a real browser process.
type fakeTab struct {
	handlers []func(driver.Event)
	closed   chan struct{}
	binding  func(string)

	width, height int

	navigateErr error
	bindErr     error
	windowErr   error
}

func newFakeTab() *fakeTab {
	return &fakeTab{closed: make(chan struct{}), width: 1280, height: 800}
}

func (f *fakeTab) Navigate(ctx context.Context, url string, opts driver.GotoOptions) error {
	return f.navigateErr
}
func (f *fakeTab) Reload(ctx context.Context) error                        { return nil }
func (f *fakeTab) Evaluate(ctx context.Context, expr string, out any) error { return nil }
func (f *fakeTab) AddBinding(ctx context.Context, name string, onCall func(string)) error {
	if f.bindErr != nil {
		return f.bindErr
	}
	f.binding = onCall
	return nil
}
func (f *fakeTab) AddScriptOnNewDocument(ctx context.Context, script string) error { return nil }
func (f *fakeTab) OnEvent(handler func(driver.Event))                             { f.handlers = append(f.handlers, handler) }
func (f *fakeTab) Closed() <-chan struct{}                                        { return f.closed }
func (f *fakeTab) OuterWindowSize(ctx context.Context) (int, int, error) {
	return f.width, f.height, f.windowErr
}
func (f *fakeTab) ResizeWindow(ctx context.Context, w, h int) error { f.width, f.height = w, h; return nil }
func (f *fakeTab) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	return nil
}
func (f *fakeTab) ClickSelector(ctx context.Context, selector string, timeout time.Duration) error {
	return nil
}
func (f *fakeTab) ClickXY(ctx context.Context, x, y int) error { return nil }
func (f *fakeTab) SetCheckedAndDispatch(ctx context.Context, selector string, checked bool) error {
	return nil
}
func (f *fakeTab) SetValueAndDispatch(ctx context.Context, selector, eventName, value string, selStart, selEnd *int) error {
	return nil
}
func (f *fakeTab) SelectOption(ctx context.Context, selector, value string) error { return nil }
func (f *fakeTab) PressKey(ctx context.Context, selector, key string) error       { return nil }
func (f *fakeTab) AnimateScroll(ctx context.Context, selector string, fromX, fromY, toX, toY int, duration time.Duration) error {
	return nil
}
func (f *fakeTab) Screenshot(ctx context.Context, opts driver.ScreenshotOptions) ([]byte, string, error) {
	return []byte("png"), "", nil
}

func (f *fakeTab) emit(e driver.Event) {
	for _, h := range f.handlers {
		h(e)
	}
}

// fakeBrowser is a driver.Browser double that hands out a single fakeTab.
type fakeBrowser struct {
	tab         *fakeTab
	closed      bool
	launchErr   error
	onLaunchTab func()
}

func (b *fakeBrowser) LaunchTab(ctx context.Context, opts driver.LaunchOptions) (driver.Tab, error) {
	if b.onLaunchTab != nil {
		b.onLaunchTab()
	}
	if b.launchErr != nil {
		return nil, b.launchErr
	}
	if b.tab == nil {
		b.tab = newFakeTab()
	}
	return b.tab, nil
}

func (b *fakeBrowser) Close() error { b.closed = true; return nil }
