package debugger

import (
	"errors"
	"fmt"
)

type StopReason string

const (
	StopStep           StopReason = "step"
	StopBreakpoint     StopReason = "breakpoint"
	StopWatchpoint     StopReason = "watchpoint"
	StopHalted         StopReason = "halted"
	StopLimit          StopReason = "limit"
	StopException      StopReason = "exception"
	StopConditionError StopReason = "condition-error"
)

type Watchpoint struct {
	ID         int    `json:"id"`
	Expression string `json:"expression"`
	Value      uint32 `json:"value"`
	Hits       int    `json:"hits"`
}

// WatchpointTrigger records a watched expression whose value changed.
type WatchpointTrigger struct {
	ID         int    `json:"id"`
	Expression string `json:"expression"`
	OldValue   uint32 `json:"oldValue"`
	NewValue   uint32 `json:"newValue"`
}

type Breakpoint struct {
	ID                int    `json:"id"`
	Address           uint32 `json:"address"`
	AddressExpression string `json:"addressExpression"`
	Location          string `json:"location,omitempty"` // symbol+offset, if a symbol precedes the address
	Condition         string `json:"condition,omitempty"`
	HitCount          int    `json:"hitCount"` // break on every HitCount-th qualifying hit
	Hits              int    `json:"hits"`
}

// StopEvent describes why Step or Continue returned.
type StopEvent struct {
	Reason       StopReason          `json:"reason"`
	PC           uint32              `json:"pc"`
	Location     string              `json:"location,omitempty"`
	BreakpointID int                 `json:"breakpointId,omitempty"`
	Triggers     []WatchpointTrigger `json:"triggers,omitempty"`
	Steps        int                 `json:"steps"`
	Err          error               `json:"-"`
}

type MemoryWord struct {
	Address uint32 `json:"address"`
	Value   uint32 `json:"value"`
}

type RegisterValue struct {
	Name  string `json:"name"`
	Value uint32 `json:"value"`
}

// CountError rejects an Examine word count outside 1..Max.
type CountError struct {
	Count int
	Max   int
}

func (e *CountError) Error() string {
	return fmt.Sprintf("word count must be between 1 and %d, got %d", e.Max, e.Count)
}

var ErrTooManyWatchpoints = errors.New("no free watchpoints")

type NotFoundError struct {
	What string
	ID   int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no %s with id %d", e.What, e.ID)
}
