// Command replay is a thin interactive CLI around pkg/replayer, in the
// teacher's own bufio-prompt style (internal/snapshot/cli.go).
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/LEECHUNGYOON/u4a-record-replay/internal/config"
	"github.com/LEECHUNGYOON/u4a-record-replay/internal/storage"
	"github.com/LEECHUNGYOON/u4a-record-replay/pkg/driver"
	"github.com/LEECHUNGYOON/u4a-record-replay/pkg/replayer"
)

func main() {
	reader := bufio.NewReader(os.Stdin)
	ctx := context.Background()

	fmt.Println("Enter the URL whose recordings you want to replay:")
	fmt.Print("> ")
	url, _ := reader.ReadString('\n')
	url = strings.TrimSpace(url)

	recordings, err := storage.LoadForURL(url)
	if err != nil {
		log.Fatalf("replay: %v", err)
	}
	if len(recordings) == 0 {
		fmt.Println("No saved recordings for that URL.")
		return
	}

	fmt.Println("\n=== Saved recordings ===")
	for i, r := range recordings {
		fmt.Printf("%d) %s — %d actions, %s\n", i+1, r.ID, len(r.Actions), r.Duration)
	}
	fmt.Println("Select a recording:")
	fmt.Print("> ")
	choiceLine, _ := reader.ReadString('\n')
	idx, err := strconv.Atoi(strings.TrimSpace(choiceLine))
	if err != nil || idx < 1 || idx > len(recordings) {
		fmt.Println("Invalid selection")
		return
	}
	rec := recordings[idx-1]

	chromePath := config.ChromePath
	if chromePath == "" {
		fmt.Println("Enter the Chrome/Chromium executable path:")
		fmt.Print("> ")
		chromePath, _ = reader.ReadString('\n')
		chromePath = strings.TrimSpace(chromePath)
	}

	rp, err := replayer.NewReplayer(replayer.Options{
		URL: url,
		LaunchOptions: driver.LaunchOptions{
			ExecutablePath: chromePath,
			Headless:       config.Headless,
		},
	})
	if err != nil {
		log.Fatalf("replay: %v", err)
	}

	rp.On("action", func(payload any) {
		fmt.Printf("replayed: %v\n", payload)
	})
	rp.On("console-error", func(payload any) {
		fmt.Printf("console error: %v\n", payload)
	})
	rp.On("finish", func(any) {
		fmt.Println("replay finished")
	})
	rp.On("close", func(any) {
		fmt.Println("browser closed")
	})

	if res := rp.LaunchPage(ctx); !res.IsOK() {
		log.Fatalf("replay: launch failed: %s %s", res.STCOD, res.MSGTX)
	}

	playRes := rp.Play(ctx, rec)
	if !playRes.IsOK() {
		log.Printf("replay: play failed: %s %s", playRes.STCOD, playRes.MSGTX)
	} else {
		fmt.Printf("play succeeded, %d console errors\n", len(playRes.RDATA.ConsoleErrors))
	}

	if res := rp.Close(ctx); !res.IsOK() {
		log.Printf("replay: close returned %s %s", res.STCOD, res.MSGTX)
	}
}
