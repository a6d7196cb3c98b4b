// Package action defines the canonical action schema and recording
// envelope exchanged between the recorder, the replayer, and callers.
package action

import "github.com/google/uuid"

// Type identifies the kind of captured gesture.
type Type string

const (
	Click         Type = "click"
	Input         Type = "input"
	Change        Type = "change"
	Keydown       Type = "keydown"
	Scroll        Type = "scroll"
	BrowserResize Type = "browser_resize"
)

// Action is a tagged record of one captured user gesture. Only the
// fields relevant to Type are populated; pointer fields distinguish
// "absent" from "present with zero value" per the wire schema.
type Action struct {
	Type      Type  `json:"type"`
	Timestamp int64 `json:"timestamp"`

	// click, input, change, keydown, scroll
	Selector string `json:"selector,omitempty"`

	// click
	X       *int  `json:"x,omitempty"`
	Y       *int  `json:"y,omitempty"`
	Checked *bool `json:"checked,omitempty"`

	// input, change
	Value          *string `json:"value,omitempty"`
	SelectionStart *int    `json:"selectionStart,omitempty"`
	SelectionEnd   *int    `json:"selectionEnd,omitempty"`

	// keydown
	Key string `json:"key,omitempty"`

	// scroll
	StartScrollX *int   `json:"startScrollX,omitempty"`
	StartScrollY *int   `json:"startScrollY,omitempty"`
	ScrollX      *int   `json:"scrollX,omitempty"`
	ScrollY      *int   `json:"scrollY,omitempty"`
	Duration     *int64 `json:"duration,omitempty"`

	// browser_resize
	FromWidth  *int `json:"fromWidth,omitempty"`
	FromHeight *int `json:"fromHeight,omitempty"`
	ToWidth    *int `json:"toWidth,omitempty"`
	ToHeight   *int `json:"toHeight,omitempty"`
}

// IntPtr, BoolPtr, StringPtr, Int64Ptr are convenience constructors for
// the schema's optional fields; callers (mostly the capture script
// bridge and tests) build actions without taking addresses of locals.
func IntPtr(v int) *int          { return &v }
func BoolPtr(v bool) *bool       { return &v }
func StringPtr(v string) *string { return &v }
func Int64Ptr(v int64) *int64    { return &v }

// ErrorKind identifies the classification of a captured runtime error.
type ErrorKind string

const (
	BrowserConsoleError ErrorKind = "BROWSER_CONSOLE_ERROR"
	RequestError        ErrorKind = "REQUEST_ERROR"
)

// Error is one captured console/runtime/network error.
type Error struct {
	Type      ErrorKind `json:"type"`
	Message   string    `json:"message"`
	Timestamp int64     `json:"timestamp"`
	Stack     string    `json:"stack,omitempty"`
	URL       string    `json:"url,omitempty"`
	Method    string    `json:"method,omitempty"`
}

// schemaVersion marks the wire format of Recording for forward
// compatibility; bumped only on breaking changes to the action schema.
const schemaVersion = 1

// Recording is the complete captured session, owned by the caller once
// emitted by Recorder.stopRecording/close.
type Recording struct {
	ID                 string   `json:"id"`
	SchemaVersion      int      `json:"schemaVersion"`
	Type               string   `json:"type"`
	URL                string   `json:"url"`
	RecordingStartTime int64    `json:"recordingStartTime"`
	RecordingEndTime   int64    `json:"recordingEndTime,omitempty"`
	DurationMs         int64    `json:"durationMs,omitempty"`
	Duration           string   `json:"duration,omitempty"`
	Actions            []Action `json:"actions"`
	Errors             []Error  `json:"errors"`
}

// NewRecording returns an empty recording ready to accumulate actions.
// ID is a uuid rather than the teacher's nanosecond-timestamp id
// (storage.go), avoiding collisions across concurrently started
// recorders.
func NewRecording(typ, url string) *Recording {
	return &Recording{
		ID:            uuid.NewString(),
		SchemaVersion: schemaVersion,
		Type:          typ,
		URL:           url,
		Actions:       make([]Action, 0, 16),
		Errors:        make([]Error, 0, 4),
	}
}
