package model

import "time"

type LogType string

const (
	LogTypeInfo    LogType = "info"
	LogTypeSuccess LogType = "success"
	LogTypeWarning LogType = "warning"
	LogTypeError   LogType = "error"
	LogTypeEmail   LogType = "email"
)

type LogCategory string

const (
	LogCategorySystem       LogCategory = "system"
	LogCategoryScraping     LogCategory = "scraping"
	LogCategoryNotification LogCategory = "notification"
	LogCategoryTest         LogCategory = "test"
	LogCategorySMTP         LogCategory = "smtp"
)

// SystemLog is an immutable entry of the dashboard event feed.
type SystemLog struct {
	ID        string      `json:"id"`
	Timestamp time.Time   `json:"timestamp"`
	Type      LogType     `json:"type"`
	Message   string      `json:"message"`
	Category  LogCategory `json:"category"`
}
