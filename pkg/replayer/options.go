package replayer

import (
	"time"

	"github.com/LEECHUNGYOON/u4a-record-replay/pkg/driver"
)

// Options configures a Replayer. Mirrors spec §6's option table for
// the Replayer half.
type Options struct {
	URL  string
	Type string

	LaunchOptions driver.LaunchOptions
	GotoOptions   driver.GotoOptions

	// BusyIndicatorSelector is a comma-separated selector list for the
	// busy barrier (C6). Empty disables the wait.
	BusyIndicatorSelector string
	// BusyTimeout defaults to config.BusyTimeout (env U4A_BUSY_TIMEOUT_MS,
	// itself defaulting to 5 minutes per spec §6).
	BusyTimeout time.Duration

	// VisualEffects enables/disables overlay calls. Defaults to true.
	VisualEffects *bool

	// Browser is the driver seam implementation. Nil selects the
	// chromedp-backed default; tests substitute a fake here.
	Browser driver.Browser
}
