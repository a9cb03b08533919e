package models

import "time"

// LogEntry represents a diagnostic log row stored in the SQLite tbl_log table
type LogEntry struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	Fields    string    `json:"fields,omitempty"` // JSON representation of extra zap fields
}
