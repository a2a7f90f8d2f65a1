//go:build windows

package inhibit

import (
	"fmt"

	"golang.org/x/sys/windows"
)

var procSetThreadExecutionState = windows.NewLazySystemDLL("kernel32.dll").NewProc("SetThreadExecutionState")

const (
	esContinuous      = 0x80000000
	esSystemRequired  = 0x00000001
	esDisplayRequired = 0x00000002
)

// ExecutionState keeps the system and display awake through
// SetThreadExecutionState.
type ExecutionState struct{}

// New returns the execution-state inhibitor.
func New() Inhibitor {
	return ExecutionState{}
}

func (ExecutionState) Inhibit(string) error {
	return setExecutionState(esContinuous | esSystemRequired | esDisplayRequired)
}

func (ExecutionState) Release() error {
	return setExecutionState(esContinuous)
}

func setExecutionState(flags uint32) error {
	if r, _, err := procSetThreadExecutionState.Call(uintptr(flags)); r == 0 {
		return fmt.Errorf("SetThreadExecutionState: %w", err)
	}
	return nil
}
