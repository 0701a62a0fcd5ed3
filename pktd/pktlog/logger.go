package pktlog

import (
	"fmt"

	"github.com/pkt-cash/pktd/pktlog/log"
)

// Logger is the interface used by every package in this module to emit
// subsystem-tagged log output. It mirrors the shape pktwallet's packages
// (waddrmgr, wtxmgr, migration) already expect from a `var log pktlog.Logger`
// field: one method per severity plus a formatted variant of each.
type Logger interface {
	Trace(v ...interface{})
	Tracef(format string, v ...interface{})
	Debug(v ...interface{})
	Debugf(format string, v ...interface{})
	Info(v ...interface{})
	Infof(format string, v ...interface{})
	Warn(v ...interface{})
	Warnf(format string, v ...interface{})
	Error(v ...interface{})
	Errorf(format string, v ...interface{})
	Critical(v ...interface{})
	Criticalf(format string, v ...interface{})
}

// disabled is the Logger used by every package until UseLogger is called on
// it, so that library code never panics on a nil logger and never prints
// anything unless a caller opts in.
type disabled struct{}

func (disabled) Trace(v ...interface{})                 {}
func (disabled) Tracef(format string, v ...interface{}) {}
func (disabled) Debug(v ...interface{})                 {}
func (disabled) Debugf(format string, v ...interface{}) {}
func (disabled) Info(v ...interface{})                  {}
func (disabled) Infof(format string, v ...interface{})  {}
func (disabled) Warn(v ...interface{})                  {}
func (disabled) Warnf(format string, v ...interface{})  {}
func (disabled) Error(v ...interface{})                 {}
func (disabled) Errorf(format string, v ...interface{}) {}
func (disabled) Critical(v ...interface{})              {}
func (disabled) Criticalf(format string, v ...interface{}) {}

// Disabled is the no-op Logger. Package-level `var log = pktlog.Disabled`
// declarations use this until UseLogger is called.
var Disabled Logger = disabled{}

// subsystemLogger adapts the pktlog/log global backend to the per-package
// Logger interface by prefixing every line with a short subsystem tag (e.g.
// "OMGR", "KCHN"). The tag is only text in the line: the backend's
// per-subsystem level overrides are looked up by the callsite's file name,
// not by this tag.
type subsystemLogger struct {
	tag string
}

// NewSubsystemLogger returns a Logger that prefixes every line with tag and
// writes through the shared pktlog/log backend, so all subsystems still
// share one output stream and one configured level.
func NewSubsystemLogger(tag string) Logger {
	return subsystemLogger{tag: tag}
}

func (s subsystemLogger) line(v ...interface{}) string {
	return "[" + s.tag + "] " + fmt.Sprint(v...)
}

func (s subsystemLogger) linef(format string, v ...interface{}) string {
	return "[" + s.tag + "] " + fmt.Sprintf(format, v...)
}

func (s subsystemLogger) Trace(v ...interface{})                 { log.Trace(s.line(v...)) }
func (s subsystemLogger) Tracef(format string, v ...interface{}) { log.Trace(s.linef(format, v...)) }
func (s subsystemLogger) Debug(v ...interface{})                 { log.Debug(s.line(v...)) }
func (s subsystemLogger) Debugf(format string, v ...interface{}) { log.Debug(s.linef(format, v...)) }
func (s subsystemLogger) Info(v ...interface{})                  { log.Info(s.line(v...)) }
func (s subsystemLogger) Infof(format string, v ...interface{})  { log.Info(s.linef(format, v...)) }
func (s subsystemLogger) Warn(v ...interface{})                  { log.Warn(s.line(v...)) }
func (s subsystemLogger) Warnf(format string, v ...interface{})  { log.Warn(s.linef(format, v...)) }
func (s subsystemLogger) Error(v ...interface{})                 { log.Error(s.line(v...)) }
func (s subsystemLogger) Errorf(format string, v ...interface{}) { log.Error(s.linef(format, v...)) }
func (s subsystemLogger) Critical(v ...interface{})              { log.Critical(s.line(v...)) }
func (s subsystemLogger) Criticalf(format string, v ...interface{}) {
	log.Critical(s.linef(format, v...))
}
