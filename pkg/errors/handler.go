package errors

import (
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Handler receives errors reported by the pipeline.
type Handler interface {
	// HandleError is called when a pipeline error occurs.
	HandleError(err *PipelineError)
	// HandleBuildError is called when a view build fails.
	HandleBuildError(err *BuildError)
}

var (
	defaultHandler Handler = NewLogHandler()
	handlerMu      sync.RWMutex
)

// SetHandler configures the global error handler.
// Pass nil to restore the default LogHandler.
func SetHandler(h Handler) {
	handlerMu.Lock()
	defer handlerMu.Unlock()
	if h == nil {
		defaultHandler = NewLogHandler()
	} else {
		defaultHandler = h
	}
}

func getHandler() Handler {
	handlerMu.RLock()
	defer handlerMu.RUnlock()
	return defaultHandler
}

// Report sends a pipeline error to the global handler.
// If err.Timestamp is zero, it is set to the current time.
func Report(err *PipelineError) {
	if err == nil {
		return
	}
	if err.Timestamp.IsZero() {
		err.Timestamp = time.Now()
	}
	if h := getHandler(); h != nil {
		h.HandleError(err)
	}
}

// ReportBuildError sends a build error to the global handler.
func ReportBuildError(err *BuildError) {
	if err == nil {
		return
	}
	if err.Timestamp.IsZero() {
		err.Timestamp = time.Now()
	}
	if h := getHandler(); h != nil {
		h.HandleBuildError(err)
	}
}

// CaptureStack returns the current call stack as a string.
// It skips the first few frames to exclude the CaptureStack call itself.
func CaptureStack() string {
	const maxDepth = 32
	var pcs [maxDepth]uintptr
	n := runtime.Callers(3, pcs[:])
	if n == 0 {
		return ""
	}

	frames := runtime.CallersFrames(pcs[:n])
	var sb strings.Builder
	for {
		frame, more := frames.Next()
		sb.WriteString(frame.Function)
		sb.WriteString("\n\t")
		sb.WriteString(frame.File)
		sb.WriteString(":")
		sb.WriteString(strconv.Itoa(frame.Line))
		sb.WriteString("\n")
		if !more {
			break
		}
	}
	return sb.String()
}
