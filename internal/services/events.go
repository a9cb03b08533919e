package services

import "go-logapi/internal/remotelog"

// EventLogger ships advisory events to the remote log service. Implementations
// must not block the caller; *remotelog.Client satisfies it.
type EventLogger interface {
	Log(level remotelog.Level, pkg remotelog.Package, message string)
}

type nopEventLogger struct{}

func (nopEventLogger) Log(remotelog.Level, remotelog.Package, string) {}

func orNop(events EventLogger) EventLogger {
	if events == nil {
		return nopEventLogger{}
	}
	return events
}
