package recorder

import (
	"github.com/LEECHUNGYOON/u4a-record-replay/pkg/driver"
)

// Options configures a Recorder. Mirrors spec §6's option table for
// the Recorder half (url, type, stream, launchOptions, gotoOptions).
type Options struct {
	// URL is the required initial navigation target.
	URL string
	// Type is a free-form label carried into metadata and recordings.
	// Defaults to "web".
	Type string
	// Stream selects emission mode: true emits each action/error as
	// captured, false buffers and emits full arrays on finalize.
	// Defaults to config.Stream (env U4A_STREAM, itself defaulting true).
	Stream *bool

	LaunchOptions driver.LaunchOptions
	GotoOptions   driver.GotoOptions

	// Browser is the driver seam implementation. Nil selects the
	// chromedp-backed default (pkg/driver/chromedpdriver); tests
	// substitute a fake here.
	Browser driver.Browser
}
