package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNotConfigured is returned when delivery credentials are incomplete. The
// send was skipped, nothing failed.
var ErrNotConfigured = errors.New("email delivery not configured")

const dateTimeLayout = "02-01-2006 15:04"

type Message struct {
	To      string
	Plate   string
	Pending int
	Now     time.Time
}

type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// FormatDateTime renders t as DD-MM-YYYY HH:mm.
func FormatDateTime(t time.Time) string {
	return t.Format(dateTimeLayout)
}

// UserName derives the greeting name from the local part of an address.
func UserName(email string) string {
	local, _, _ := strings.Cut(strings.TrimSpace(email), "@")
	return local
}

func StatusLine(pending int) string {
	if pending > 0 {
		return fmt.Sprintf("WARNING: %d unresolved violation(s) detected.", pending)
	}
	return "ALL CLEAR: no new unresolved violations detected."
}

func Subject(plate string, now time.Time) string {
	return fmt.Sprintf("[TrafficCare] Violation report %s - %s", plate, FormatDateTime(now))
}
