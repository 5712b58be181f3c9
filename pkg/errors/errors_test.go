package errors

import (
	"errors"
	"strings"
	"testing"
)

type captureHandler struct {
	pipeline []*PipelineError
	build    []*BuildError
}

func (h *captureHandler) HandleError(err *PipelineError) {
	h.pipeline = append(h.pipeline, err)
}

func (h *captureHandler) HandleBuildError(err *BuildError) {
	h.build = append(h.build, err)
}

func TestErrorKindString(t *testing.T) {
	cases := map[ErrorKind]string{
		KindLifecycle:  "lifecycle",
		KindStructural: "structural",
		KindBuild:      "build",
		KindLayout:     "layout",
		KindPaint:      "paint",
		KindBudget:     "budget",
		KindCancelled:  "cancelled",
		KindUnknown:    "unknown",
		ErrorKind(99):  "unknown",
	}
	for kind, want := range cases {
		if got := kind.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", kind, got, want)
		}
	}
}

func TestPipelineErrorUnwrap(t *testing.T) {
	err := &PipelineError{Op: "pipeline.FlushLayout", Kind: KindCancelled, Err: ErrFrameCancelled}
	if !errors.Is(err, ErrFrameCancelled) {
		t.Error("errors.Is failed to unwrap")
	}
	msg := err.Error()
	if !strings.Contains(msg, "pipeline.FlushLayout") || !strings.Contains(msg, "cancelled") {
		t.Errorf("Error() = %q", msg)
	}
}

func TestLifecycleErrorMessage(t *testing.T) {
	err := &LifecycleError{Op: "mount", From: "active", To: "initial", Element: 7}
	if !strings.Contains(err.Error(), "element 7") {
		t.Errorf("Error() = %q, want element id", err.Error())
	}
	err.Element = 0
	if strings.Contains(err.Error(), "element") {
		t.Errorf("Error() = %q, element id without one set", err.Error())
	}
}

func TestBuildErrorMessage(t *testing.T) {
	err := &BuildError{View: "main.badView", Recovered: "boom"}
	if !strings.Contains(err.Error(), "panic") || !strings.Contains(err.Error(), "boom") {
		t.Errorf("panic Error() = %q", err.Error())
	}

	inner := errors.New("missing data")
	err = &BuildError{View: "main.badView", Err: inner}
	if !strings.Contains(err.Error(), "missing data") {
		t.Errorf("error Error() = %q", err.Error())
	}
	if !errors.Is(err, inner) {
		t.Error("errors.Is failed to unwrap BuildError")
	}
}

func TestReportSetsTimestampAndDispatches(t *testing.T) {
	capture := &captureHandler{}
	SetHandler(capture)
	defer SetHandler(nil)

	err := &PipelineError{Op: "test", Kind: KindBuild, Err: errors.New("x")}
	Report(err)
	Report(nil)

	if len(capture.pipeline) != 1 {
		t.Fatalf("handler received %d errors, want 1", len(capture.pipeline))
	}
	if capture.pipeline[0].Timestamp.IsZero() {
		t.Error("Report left Timestamp zero")
	}

	build := &BuildError{View: "x", Recovered: "y"}
	ReportBuildError(build)
	ReportBuildError(nil)
	if len(capture.build) != 1 || capture.build[0].Timestamp.IsZero() {
		t.Error("ReportBuildError did not dispatch with timestamp")
	}
}

func TestSetHandlerNilRestoresDefault(t *testing.T) {
	capture := &captureHandler{}
	SetHandler(capture)
	SetHandler(nil)
	if _, ok := getHandler().(*LogHandler); !ok {
		t.Errorf("handler after SetHandler(nil) is %T, want *LogHandler", getHandler())
	}
}

func stackFromHelper() string {
	return CaptureStack()
}

func TestCaptureStackSkipsHelperFrames(t *testing.T) {
	stack := stackFromHelper()
	if stack == "" {
		t.Fatal("empty stack")
	}
	if strings.Contains(stack, "CaptureStack") || strings.Contains(stack, "stackFromHelper") {
		t.Errorf("stack includes capture frames:\n%s", stack)
	}
	if !strings.Contains(stack, "TestCaptureStackSkipsHelperFrames") {
		t.Errorf("stack missing test frame:\n%s", stack)
	}
}
