package core

import (
	"fmt"
)

// ToolUnavailableError is returned at startup when a processor's tool is missing or unhealthy
type ToolUnavailableError struct {
	Tool string
	Err  error
}

func (e *ToolUnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("the tool `%s' failed healthcheck, is it installed?: %v", e.Tool, e.Err)
	}
	return fmt.Sprintf("the tool `%s' failed healthcheck, is it installed?", e.Tool)
}

func (e *ToolUnavailableError) Unwrap() error { return e.Err }

// ProcessingFailedError is returned when a chain stage cannot process an attachment
type ProcessingFailedError struct {
	Processor string
	Reason    string
	Err       error
}

func (e *ProcessingFailedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("post-processing failed: %s: %s: %v", e.Processor, e.Reason, e.Err)
	}
	return fmt.Sprintf("post-processing failed: %s: %s", e.Processor, e.Reason)
}

func (e *ProcessingFailedError) Unwrap() error { return e.Err }

// StoreError wraps a failure of the content-addressed store
type StoreError struct {
	Op  string
	Key string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// NotifyError wraps a failure to deliver a notification
type NotifyError struct {
	Err error
}

func (e *NotifyError) Error() string {
	return fmt.Sprintf("notify: %v", e.Err)
}

func (e *NotifyError) Unwrap() error { return e.Err }
