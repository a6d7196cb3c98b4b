// Command record is a thin interactive CLI around pkg/recorder, in the
// teacher's own bufio-prompt style (cmd/apiwatcher/main.go).
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/LEECHUNGYOON/u4a-record-replay/internal/action"
	"github.com/LEECHUNGYOON/u4a-record-replay/internal/config"
	"github.com/LEECHUNGYOON/u4a-record-replay/internal/storage"
	"github.com/LEECHUNGYOON/u4a-record-replay/pkg/driver"
	"github.com/LEECHUNGYOON/u4a-record-replay/pkg/recorder"
)

func main() {
	reader := bufio.NewReader(os.Stdin)
	ctx := context.Background()

	fmt.Println("Enter the URL to record:")
	fmt.Print("> ")
	url, _ := reader.ReadString('\n')
	url = strings.TrimSpace(url)

	chromePath := config.ChromePath
	if chromePath == "" {
		fmt.Println("Enter the Chrome/Chromium executable path:")
		fmt.Print("> ")
		chromePath, _ = reader.ReadString('\n')
		chromePath = strings.TrimSpace(chromePath)
	}

	stream := false
	var capturedActions []action.Action
	var capturedErrors []action.Error

	rec, err := recorder.NewRecorder(recorder.Options{
		URL:    url,
		Stream: &stream,
		LaunchOptions: driver.LaunchOptions{
			ExecutablePath: chromePath,
			Headless:       config.Headless,
		},
	})
	if err != nil {
		log.Fatalf("record: %v", err)
	}

	rec.On("action", func(payload any) {
		if arr, ok := payload.([]action.Action); ok {
			capturedActions = arr
		}
	})
	rec.On("console-error", func(payload any) {
		if arr, ok := payload.([]action.Error); ok {
			capturedErrors = arr
		}
	})
	rec.On("close", func(any) {
		fmt.Println("browser closed")
	})

	if res := rec.LaunchPage(ctx); !res.IsOK() {
		log.Fatalf("record: launch failed: %s %s", res.STCOD, res.MSGTX)
	}
	if res := rec.StartRecording(ctx); !res.IsOK() {
		log.Fatalf("record: start failed: %s %s", res.STCOD, res.MSGTX)
	}

	fmt.Println("Recording. Press Enter to stop.")
	_, _ = reader.ReadString('\n')

	stopRes := rec.StopRecording(ctx)
	if !stopRes.IsOK() {
		log.Fatalf("record: stop failed: %s %s", stopRes.STCOD, stopRes.MSGTX)
	}

	meta := rec.GetMetadata().RDATA
	closeRes := rec.Close(ctx)
	if !closeRes.IsOK() {
		log.Printf("record: close returned %s %s", closeRes.STCOD, closeRes.MSGTX)
	}

	out := action.NewRecording(meta.Type, meta.URL)
	out.RecordingStartTime = meta.RecordingStartTime
	out.RecordingEndTime = meta.RecordingEndTime
	out.DurationMs = meta.DurationMs
	out.Duration = meta.Duration
	out.Actions = capturedActions
	out.Errors = capturedErrors

	path, err := storage.Save(out)
	if err != nil {
		log.Fatalf("record: save failed: %v", err)
	}
	fmt.Printf("Saved %d actions (%s) to %s\n", len(out.Actions), out.Duration, path)
}
