package log

import (
	"fmt"

	"github.com/golang/glog"
)

func getV(level Level, prefix string) InfoLog {
	if glog.V(glog.Level(level)) {
		return glogger{depth: 1, prefix: prefix}
	} else {
		return emptyI{}
	}
}

type glogger struct {
	// Frames between the glog call and the code that wants to be blamed.
	depth  int
	prefix string
}

func (g glogger) Fatal(args ...interface{}) {
	glog.FatalDepth(g.depth, g.prefix+fmt.Sprintln(args...))
}

func (g glogger) Fatalf(format string, args ...interface{}) {
	glog.FatalDepth(g.depth, g.prefix+fmt.Sprintf(format, args...))
}

func (g glogger) Error(args ...interface{}) {
	glog.ErrorDepth(g.depth, g.prefix+fmt.Sprintln(args...))
}

func (g glogger) Errorf(format string, args ...interface{}) {
	glog.ErrorDepth(g.depth, g.prefix+fmt.Sprintf(format, args...))
}

func (g glogger) Warning(args ...interface{}) {
	glog.WarningDepth(g.depth, g.prefix+fmt.Sprintln(args...))
}

func (g glogger) Warningf(format string, args ...interface{}) {
	glog.WarningDepth(g.depth, g.prefix+fmt.Sprintf(format, args...))
}

func (g glogger) Info(args ...interface{}) {
	glog.InfoDepth(g.depth, g.prefix+fmt.Sprintln(args...))
}

func (g glogger) Infof(format string, args ...interface{}) {
	glog.InfoDepth(g.depth, g.prefix+fmt.Sprintf(format, args...))
}

// Writes out any buffered log lines. Call before os.Exit.
func Flush() {
	glog.Flush()
}
