package service

import (
	"strings"

	"traffic-care-service/internal/model"
)

// ShouldNotify decides whether a freshly reconciled vehicle gets an email this
// cycle. A forced cycle (test run) sends regardless of what was found.
func ShouldNotify(v model.Vehicle, strategy model.NotificationStrategy, forced bool, pending int) bool {
	if !v.NotificationsEnabled || strings.TrimSpace(v.Email) == "" {
		return false
	}
	return strategy == model.NotificationStrategyAlways || forced || pending > 0
}
