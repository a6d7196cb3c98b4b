// Package config loads process-wide defaults for the cmd/ binaries
// from the environment, the same godotenv.Load()-in-init() pattern the
// teacher used for SMTP credentials — generalized here to the Options
// fallbacks a Recorder/Replayer needs when not fully specified in code.
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

var (
	ChromePath  string
	BusyTimeout time.Duration
	Stream      bool
	Headless    bool
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("[CONFIG] no .env file found, using environment/defaults")
	}

	ChromePath = os.Getenv("U4A_CHROME_PATH")

	BusyTimeout = 5 * time.Minute
	if v := os.Getenv("U4A_BUSY_TIMEOUT_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			BusyTimeout = time.Duration(ms) * time.Millisecond
		}
	}

	Stream = true
	if v := os.Getenv("U4A_STREAM"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			Stream = b
		}
	}

	Headless = false
	if v := os.Getenv("U4A_HEADLESS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			Headless = b
		}
	}
}
