package log // import "go.jonnrb.io/natmon/log"

type Log interface {
	FatalLog
	ErrorLog
	WarningLog
	InfoLog
}

type Level int

type FatalLog interface {
	Fatal(args ...interface{})
	Fatalf(format string, args ...interface{})
}

type ErrorLog interface {
	Error(args ...interface{})
	Errorf(format string, args ...interface{})
}

type WarningLog interface {
	Warning(args ...interface{})
	Warningf(format string, args ...interface{})
}

type InfoLog interface {
	Info(args ...interface{})
	Infof(format string, args ...interface{})
}

// Every top-level call is one frame further from the caller than a call on a
// Log returned by WithPrefix.
var std = glogger{depth: 2}

func Fatal(args ...interface{}) {
	std.Fatal(args...)
}

func Fatalf(format string, args ...interface{}) {
	std.Fatalf(format, args...)
}

func Error(args ...interface{}) {
	std.Error(args...)
}

func Errorf(format string, args ...interface{}) {
	std.Errorf(format, args...)
}

func Warning(args ...interface{}) {
	std.Warning(args...)
}

func Warningf(format string, args ...interface{}) {
	std.Warningf(format, args...)
}

func Info(args ...interface{}) {
	std.Info(args...)
}

func Infof(format string, args ...interface{}) {
	std.Infof(format, args...)
}

func V(level Level) InfoLog {
	return getV(level, "")
}

// Returns a Log that prepends prefix to every line, e.g. "ha: ".
func WithPrefix(prefix string) Log {
	return glogger{depth: 1, prefix: prefix}
}
