package replayer

import (
	"context"
	"time"

	"github.com/LEECHUNGYOON/u4a-record-replay/pkg/driver"
)

// fakeTab is a driver.Tab double recording every executor call it
// receives, so tests can assert dispatch without a real browser.
type fakeTab struct {
	handlers []func(driver.Event)
	closed   chan struct{}

	width, height int

	clickSelectorCalls []string
	clickXYCalls       [][2]int
	checkedSelectors   []string
	checkedCalls       []bool
	valueSelectors     []string
	valueCalls         []string
	selectCalls        []string
	keyCalls           []string
	scrollCalls        int
	resizeCalls        [][2]int

	evaluateFunc func(ctx context.Context, expr string, out any) error

	err error // when set, every executor call below returns this error
}

func newFakeTab() *fakeTab { return &fakeTab{closed: make(chan struct{}), width: 1280, height: 800} }

func (f *fakeTab) Navigate(ctx context.Context, url string, opts driver.GotoOptions) error {
	return f.err
}
func (f *fakeTab) Reload(ctx context.Context) error { return f.err }
func (f *fakeTab) Evaluate(ctx context.Context, expr string, out any) error {
	if f.evaluateFunc != nil {
		return f.evaluateFunc(ctx, expr, out)
	}
	return f.err
}
func (f *fakeTab) AddBinding(ctx context.Context, name string, onCall func(string)) error {
	return f.err
}
func (f *fakeTab) AddScriptOnNewDocument(ctx context.Context, script string) error { return f.err }
func (f *fakeTab) OnEvent(handler func(driver.Event))                             { f.handlers = append(f.handlers, handler) }
func (f *fakeTab) Closed() <-chan struct{}                                        { return f.closed }
func (f *fakeTab) OuterWindowSize(ctx context.Context) (int, int, error) {
	return f.width, f.height, f.err
}
func (f *fakeTab) ResizeWindow(ctx context.Context, w, h int) error {
	f.resizeCalls = append(f.resizeCalls, [2]int{w, h})
	return f.err
}
func (f *fakeTab) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	return f.err
}
func (f *fakeTab) ClickSelector(ctx context.Context, selector string, timeout time.Duration) error {
	f.clickSelectorCalls = append(f.clickSelectorCalls, selector)
	return f.err
}
func (f *fakeTab) ClickXY(ctx context.Context, x, y int) error {
	f.clickXYCalls = append(f.clickXYCalls, [2]int{x, y})
	return f.err
}
func (f *fakeTab) SetCheckedAndDispatch(ctx context.Context, selector string, checked bool) error {
	f.checkedSelectors = append(f.checkedSelectors, selector)
	f.checkedCalls = append(f.checkedCalls, checked)
	return f.err
}
func (f *fakeTab) SetValueAndDispatch(ctx context.Context, selector, eventName, value string, selStart, selEnd *int) error {
	f.valueSelectors = append(f.valueSelectors, selector)
	f.valueCalls = append(f.valueCalls, value)
	return f.err
}
func (f *fakeTab) SelectOption(ctx context.Context, selector, value string) error {
	f.selectCalls = append(f.selectCalls, value)
	return f.err
}
func (f *fakeTab) PressKey(ctx context.Context, selector, key string) error {
	f.keyCalls = append(f.keyCalls, key)
	return f.err
}
func (f *fakeTab) AnimateScroll(ctx context.Context, selector string, fromX, fromY, toX, toY int, duration time.Duration) error {
	f.scrollCalls++
	return f.err
}
func (f *fakeTab) Screenshot(ctx context.Context, opts driver.ScreenshotOptions) ([]byte, string, error) {
	return []byte("png"), "", f.err
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
