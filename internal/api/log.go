package api

import (
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"time"

	"uivox/pkg/logging"
)

// Matches key=value or key="value with spaces" in a slog text line.
var logRegex = regexp.MustCompile(`([a-zA-Z0-9_\-.]+)=(?:"([^"]*)"|([^ ]+))`)

// handleLatestLog returns the last captured log line, condensed for a
// status display.
func handleLatestLog(w http.ResponseWriter, r *http.Request) {
	line := logging.GlobalLogCapture.GetLastLine()
	writeJSON(w, map[string]string{
		"log": formatLogLine(line),
	})
}

// formatLogLine condenses one slog text line.
// Output: HH:MM:SS MsgValue (key=value, key=value), params sorted, long
// values dropped.
func formatLogLine(raw string) string {
	matches := logRegex.FindAllStringSubmatch(raw, -1)
	if len(matches) == 0 {
		return raw
	}

	var msg string
	var timeStr string
	var params []string

	for _, m := range matches {
		key := m[1]
		val := m[2]
		if val == "" {
			val = m[3]
		}
		val = strings.TrimSpace(val)

		switch key {
		case "time":
			if t, err := time.Parse(time.RFC3339, val); err == nil {
				timeStr = t.Format("15:04:05")
			}
			continue
		case "level":
			continue
		case "msg":
			msg = val
			continue
		}

		// Long values are noise in a one-line display.
		if len(val) > 20 {
			continue
		}

		params = append(params, fmt.Sprintf("%s=%s", key, val))
	}

	if msg == "" {
		return raw
	}

	sort.Strings(params) // deterministic output

	output := msg
	if timeStr != "" {
		output = fmt.Sprintf("%s %s", timeStr, msg)
	}

	if len(params) > 0 {
		return fmt.Sprintf("%s (%s)", output, strings.Join(params, ", "))
	}
	return output
}
