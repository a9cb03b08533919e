package models

import "time"

// RequestRecord is the request half of a recorded HTTP exchange.
type RequestRecord struct {
	Timestamp time.Time           `json:"timestamp"`
	Method    string              `json:"method"`
	URL       string              `json:"url"`
	Headers   map[string][]string `json:"headers"`
	Body      any                 `json:"body,omitempty"` // json.RawMessage for JSON bodies, string otherwise
	Query     map[string]string   `json:"query"`
	Params    map[string]string   `json:"params"`
	IP        string              `json:"ip"`
	UserAgent string              `json:"userAgent"`
}

// ResponseRecord is the response half of a recorded HTTP exchange.
type ResponseRecord struct {
	Timestamp      time.Time           `json:"timestamp"`
	StatusCode     int                 `json:"statusCode"`
	StatusMessage  string              `json:"statusMessage"`
	Headers        map[string][]string `json:"headers"`
	Body           string              `json:"body"`
	ResponseTimeMs int64               `json:"responseTimeMs"`
}

// RequestLogEntry is one completed request/response cycle as written to a log partition.
type RequestLogEntry struct {
	Request     RequestRecord  `json:"request"`
	Response    ResponseRecord `json:"response"`
	TotalTimeMs int64          `json:"totalTimeMs"`
}

// RequestLogRecord is what partition retrieval yields: a decoded entry, or the
// raw text of a record that could not be decoded.
type RequestLogRecord struct {
	*RequestLogEntry
	Raw string `json:"raw,omitempty"`
}
