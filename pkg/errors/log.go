package errors

import (
	"os"

	"github.com/rs/zerolog"
)

// LogHandler is a Handler that writes structured log records.
type LogHandler struct {
	log zerolog.Logger
	// Verbose includes stack traces in the output.
	Verbose bool
}

// NewLogHandler creates a LogHandler writing to stderr.
func NewLogHandler() *LogHandler {
	return &LogHandler{
		log: zerolog.New(os.Stderr).With().Timestamp().Str("component", "loom").Logger(),
	}
}

// NewLogHandlerWithLogger creates a LogHandler using the provided logger.
func NewLogHandlerWithLogger(log zerolog.Logger) *LogHandler {
	return &LogHandler{log: log}
}

// HandleError logs a PipelineError.
func (h *LogHandler) HandleError(err *PipelineError) {
	if err == nil {
		return
	}
	h.log.Error().
		Str("op", err.Op).
		Str("kind", err.Kind.String()).
		Err(err.Err).
		Msg("pipeline error")
}

// HandleBuildError logs a BuildError.
func (h *LogHandler) HandleBuildError(err *BuildError) {
	if err == nil {
		return
	}
	event := h.log.Error().
		Str("view", err.View).
		Uint64("element", err.Element)
	if err.Recovered != nil {
		event = event.Interface("recovered", err.Recovered)
	}
	if err.Err != nil {
		event = event.Err(err.Err)
	}
	if h.Verbose && err.StackTrace != "" {
		event = event.Str("stack", err.StackTrace)
	}
	event.Msg("view build failed")
}
