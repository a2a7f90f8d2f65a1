package hdr

import (
	"fmt"

	"github.com/1broseidon/hdrlaunch/internal/platform"
)

// Kind classifies an HDR failure.
type Kind string

const (
	// KindUnavailable means the vendor API could not be opened.
	KindUnavailable Kind = "unavailable"
	// KindQuery means a GPU, display or capability query failed.
	KindQuery Kind = "query"
	// KindApply means a display rejected an HDR color change.
	KindApply Kind = "apply"
)

// Error is a failed vendor call together with its status code.
type Error struct {
	Kind    Kind
	Status  platform.Status
	Message string
	Display platform.DisplayID
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Display != 0 {
		return fmt.Sprintf("hdr %s: %s (display 0x%08x): %s", e.Kind, e.Message, uint32(e.Display), e.Status)
	}
	return fmt.Sprintf("hdr %s: %s: %s", e.Kind, e.Message, e.Status)
}

func newError(kind Kind, status platform.Status, message string) *Error {
	return &Error{Kind: kind, Status: status, Message: message}
}
