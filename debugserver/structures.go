package debugserver

import (
	"github.gatech.edu/ECEInnovation/RISC-V-Monitor/debugger"
)

type EvaluateParams struct {
	Expression string `json:"expression"`
}

type EvaluateResult struct {
	Value uint32 `json:"value"`
	Hex   string `json:"hex"`
}

type WatchpointParams struct {
	Expression string `json:"expression"`
}

type IDParams struct {
	ID int `json:"id"`
}

type BreakpointParams struct {
	Address   string `json:"address"`
	Condition string `json:"condition,omitempty"`
	HitCount  int    `json:"hitCount,omitempty"`
}

type ExamineParams struct {
	Address string `json:"address"`
	Count   int    `json:"count"`
}

type ExamineResult struct {
	Words []debugger.MemoryWord `json:"words"`
	Fault string                `json:"fault,omitempty"` // set when the read stopped early
}

type StepParams struct {
	Count int `json:"count"`
}

// StopResult is the reply to step and continue.
type StopResult struct {
	debugger.StopEvent
	Error     string               `json:"error,omitempty"`
	ErrorData *ExpressionErrorData `json:"errorData,omitempty"`
}

// ExpressionErrorData is attached to JSON-RPC errors caused by a bad
// expression so that clients can point at the offending character.
type ExpressionErrorData struct {
	Expression string  `json:"expression,omitempty"`
	Kind       string  `json:"kind"`
	Position   *int    `json:"position,omitempty"`
	Name       string  `json:"name,omitempty"`
	Address    *uint32 `json:"address,omitempty"`
}
