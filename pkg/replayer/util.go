package replayer

import (
	"encoding/json"
	"strings"
	"time"
)

func nowMs() int64 { return time.Now().UnixMilli() }

func isTargetClosed(err error) bool {
	if err == nil {
		return false
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "closed") || strings.Contains(s, "detached") || strings.Contains(s, "no such target")
}

func jsString(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		return `""`
	}
	return string(b)
}
