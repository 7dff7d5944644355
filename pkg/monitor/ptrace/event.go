package ptrace

import (
	"time"
)

type FileAccessEvent struct {
	Time     time.Time `json:"time"`
	PID      int       `json:"pid"`
	CallNum  uint64    `json:"call_num"`
	CallName string    `json:"call_name"`
	Args     Arguments `json:"args"`
}

// EventSink receives events in emission order.
type EventSink interface {
	Emit(event FileAccessEvent)
}

type EventSinkFunc func(event FileAccessEvent)

func (f EventSinkFunc) Emit(event FileAccessEvent) {
	f(event)
}
