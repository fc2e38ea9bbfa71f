package engine

import (
	"errors"
	"fmt"
)

// ErrForeignBoard marks a refusal because another board holds the sidebar.
var ErrForeignBoard = errors.New("foreign board present")

// ErrorCode categorizes reconcile errors.
type ErrorCode string

const (
	// CodeUnknownVariable indicates a row's variable is not registered.
	CodeUnknownVariable ErrorCode = "UNKNOWN_VARIABLE"

	// CodeViewerUnreachable indicates the viewer left before install.
	CodeViewerUnreachable ErrorCode = "VIEWER_UNREACHABLE"

	// CodeForeignBoard indicates a board not owned by us is showing.
	CodeForeignBoard ErrorCode = "FOREIGN_BOARD"

	// CodeBoardShown indicates our normal board is already showing.
	CodeBoardShown ErrorCode = "BOARD_SHOWN"

	// CodeInvalidViewer indicates the viewer is offline or in a disabled world.
	CodeInvalidViewer ErrorCode = "INVALID_VIEWER"

	// CodeNoNormalBoard indicates the overlay was requested without a normal
	// board on screen.
	CodeNoNormalBoard ErrorCode = "NO_NORMAL_BOARD"
)

// ReconcileError is a non-fatal refusal or abort of a board operation.
type ReconcileError struct {
	Code    ErrorCode
	Viewer  string
	Message string
	Err     error
}

func (e *ReconcileError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Viewer != "" {
		msg = fmt.Sprintf("%s (viewer=%s)", msg, e.Viewer)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ReconcileError) Unwrap() error { return e.Err }

func newError(code ErrorCode, viewer, msg string, err error) *ReconcileError {
	return &ReconcileError{Code: code, Viewer: viewer, Message: msg, Err: err}
}

// CodeOf returns the code of the first ReconcileError in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var re *ReconcileError
	if errors.As(err, &re) {
		return re.Code
	}
	return ""
}

// IsUnreachable reports whether err is a viewer-unreachable abort.
func IsUnreachable(err error) bool {
	return CodeOf(err) == CodeViewerUnreachable
}

// IsForeignBoard reports whether err is a foreign-board refusal.
func IsForeignBoard(err error) bool {
	return errors.Is(err, ErrForeignBoard)
}
