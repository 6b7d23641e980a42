package utils

import (
	"log"
	"strings"
)

// LogEvent emits one structured line per domain event, keyed by the
// request id the middleware assigned. Keep messages short; card numbers
// are fine, never log wallet balances or token contents.
func LogEvent(requestID, module, action, message string) {
	req := strings.TrimSpace(requestID)
	if req == "" {
		req = "-"
	}
	log.Printf("[%s] action=%s request_id=%s msg=%s", strings.ToUpper(module), action, req, message)
}
