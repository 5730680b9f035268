package model

import "strings"

type CheckFrequency string

const (
	CheckFrequencyDaily  CheckFrequency = "daily"
	CheckFrequencyWeekly CheckFrequency = "weekly"
)

type NotificationStrategy string

const (
	// NotificationStrategyOnChange notifies only when unresolved violations are pending.
	NotificationStrategyOnChange NotificationStrategy = "on_change"
	NotificationStrategyAlways   NotificationStrategy = "always"
)

// EmailConfig holds delivery credentials. The SMTP fields are kept for
// compatibility with stored documents; delivery goes through EmailJS and only
// needs ServiceID, TemplateID and PublicKey.
type EmailConfig struct {
	Host       string `json:"host"`
	Port       int    `json:"port"`
	User       string `json:"user"`
	Pass       string `json:"pass"`
	Secure     bool   `json:"secure"`
	From       string `json:"from"`
	ServiceID  string `json:"service_id"`
	TemplateID string `json:"template_id"`
	PublicKey  string `json:"public_key"`
}

func (c EmailConfig) Configured() bool {
	return strings.TrimSpace(c.ServiceID) != "" &&
		strings.TrimSpace(c.TemplateID) != "" &&
		strings.TrimSpace(c.PublicKey) != ""
}

type TestConfig struct {
	TestPlates  []string `json:"test_plates"`
	TargetEmail string   `json:"target_email"`
	Enabled     bool     `json:"enabled"`
}

// CheckSchedule is the process-wide check and notification configuration.
// Frequency, Time and NotificationTimes are stored for the dashboard only;
// every check is triggered by a user action.
type CheckSchedule struct {
	Frequency            CheckFrequency       `json:"frequency"`
	Time                 string               `json:"time"`
	NotificationTimes    []string             `json:"notification_times"`
	NotificationStrategy NotificationStrategy `json:"notification_strategy"`
	Enabled              bool                 `json:"enabled"`
	Email                EmailConfig          `json:"email"`
	Test                 TestConfig           `json:"test"`
}

func DefaultCheckSchedule() CheckSchedule {
	return CheckSchedule{
		Frequency:            CheckFrequencyDaily,
		Time:                 "08:00",
		NotificationTimes:    []string{"08:00", "19:00"},
		NotificationStrategy: NotificationStrategyOnChange,
		Enabled:              true,
		Email: EmailConfig{
			Host:   "smtp.gmail.com",
			Port:   587,
			Secure: true,
		},
		Test: TestConfig{
			TestPlates: []string{"11A07378", "30G46044"},
			Enabled:    true,
		},
	}
}

func (s CheckSchedule) Clone() CheckSchedule {
	out := s
	out.NotificationTimes = append([]string(nil), s.NotificationTimes...)
	out.Test.TestPlates = append([]string(nil), s.Test.TestPlates...)
	return out
}
