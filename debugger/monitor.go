// Package debugger drives an emulator instance on behalf of an interactive
// user: watchpoints and breakpoints are expressions evaluated against the
// live machine between instructions.
package debugger

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.gatech.edu/ECEInnovation/RISC-V-Monitor/emulator"
	"github.gatech.edu/ECEInnovation/RISC-V-Monitor/expr"
)

const (
	DefaultMaxWatchpoints  = 32
	DefaultMaxExamineWords = 1024
)

type Options struct {
	Limits          expr.Limits
	MaxWatchpoints  int
	MaxExamineWords int
	Logger          *zap.Logger
}

// Monitor is safe for use by concurrent callers.
type Monitor struct {
	mu sync.Mutex

	emu     *emulator.EmulatorInstance
	symbols emulator.SymbolTable
	eval    *expr.Evaluator
	logger  *zap.Logger

	maxWatchpoints  int
	maxExamineWords int
	watchpoints     []*Watchpoint
	breakpoints     []*Breakpoint
	nextWatchID     int
	nextBreakID     int
}

func NewMonitor(emu *emulator.EmulatorInstance, symbols emulator.SymbolTable, opts Options) *Monitor {
	if symbols == nil {
		symbols = emulator.SymbolTable{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.MaxWatchpoints <= 0 {
		opts.MaxWatchpoints = DefaultMaxWatchpoints
	}
	if opts.MaxExamineWords <= 0 {
		opts.MaxExamineWords = DefaultMaxExamineWords
	}

	env := expr.Environment{
		Registers: emu,
		Memory:    emu,
		Symbols:   symbols,
	}

	return &Monitor{
		emu:             emu,
		symbols:         symbols,
		eval:            expr.NewEvaluator(env, opts.Limits, opts.Logger.Named("expr")),
		logger:          opts.Logger,
		maxWatchpoints:  opts.MaxWatchpoints,
		maxExamineWords: opts.MaxExamineWords,
		nextWatchID:     1,
		nextBreakID:     1,
	}
}

func (m *Monitor) Evaluate(text string) (uint32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.eval.EvaluateExpression(text)
}

func (m *Monitor) AddWatchpoint(text string) (Watchpoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.watchpoints) >= m.maxWatchpoints {
		return Watchpoint{}, ErrTooManyWatchpoints
	}

	value, err := m.eval.EvaluateExpression(text)
	if err != nil {
		return Watchpoint{}, err
	}

	wp := &Watchpoint{ID: m.nextWatchID, Expression: text, Value: value}
	m.nextWatchID++
	m.watchpoints = append(m.watchpoints, wp)
	m.logger.Debug("watchpoint added", zap.Int("id", wp.ID), zap.String("expression", text), zap.Uint32("value", value))
	return *wp, nil
}

func (m *Monitor) RemoveWatchpoint(id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, wp := range m.watchpoints {
		if wp.ID == id {
			m.watchpoints = append(m.watchpoints[:i], m.watchpoints[i+1:]...)
			return nil
		}
	}
	return &NotFoundError{What: "watchpoint", ID: id}
}

func (m *Monitor) Watchpoints() []Watchpoint {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Watchpoint, len(m.watchpoints))
	for i, wp := range m.watchpoints {
		out[i] = *wp
	}
	return out
}

// CheckWatchpoints re-evaluates every watchpoint and returns those whose
// value changed since the last check.
func (m *Monitor) CheckWatchpoints() []WatchpointTrigger {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.checkWatchpoints()
}

func (m *Monitor) checkWatchpoints() []WatchpointTrigger {
	var triggers []WatchpointTrigger
	for _, wp := range m.watchpoints {
		value, err := m.eval.EvaluateExpression(wp.Expression)
		if err != nil {
			// keep the last good value, the expression may become valid again
			m.logger.Debug("watchpoint not evaluable", zap.Int("id", wp.ID), zap.Error(err))
			continue
		}
		if value == wp.Value {
			continue
		}

		triggers = append(triggers, WatchpointTrigger{
			ID:         wp.ID,
			Expression: wp.Expression,
			OldValue:   wp.Value,
			NewValue:   value,
		})
		wp.Value = value
		wp.Hits++
	}
	return triggers
}

// AddBreakpoint sets a breakpoint at the address addrExpr evaluates to now.
// A non-empty condition is evaluated whenever the breakpoint is reached and
// the breakpoint only counts as hit if it is nonzero. With hitCount n > 1
// execution stops on every n-th hit.
func (m *Monitor) AddBreakpoint(addrExpr, condition string, hitCount int) (Breakpoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	addr, err := m.eval.EvaluateExpression(addrExpr)
	if err != nil {
		return Breakpoint{}, err
	}
	if condition != "" {
		// conditions may read state that only exists later, so only check they lex
		if _, err := m.eval.Tokenize(condition); err != nil {
			return Breakpoint{}, &expr.Error{Expression: condition, Err: err}
		}
	}
	if hitCount < 1 {
		hitCount = 1
	}

	bp := &Breakpoint{
		ID:                m.nextBreakID,
		Address:           addr,
		AddressExpression: addrExpr,
		Location:          m.symbols.Locate(addr),
		Condition:         condition,
		HitCount:          hitCount,
	}
	m.nextBreakID++
	m.breakpoints = append(m.breakpoints, bp)
	m.logger.Debug("breakpoint added", zap.Int("id", bp.ID), zap.Uint32("address", addr), zap.String("condition", condition))
	return *bp, nil
}

func (m *Monitor) RemoveBreakpoint(id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, bp := range m.breakpoints {
		if bp.ID == id {
			m.breakpoints = append(m.breakpoints[:i], m.breakpoints[i+1:]...)
			return nil
		}
	}
	return &NotFoundError{What: "breakpoint", ID: id}
}

func (m *Monitor) Breakpoints() []Breakpoint {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Breakpoint, len(m.breakpoints))
	for i, bp := range m.breakpoints {
		out[i] = *bp
	}
	return out
}

// checkShouldBreak returns the id of the first breakpoint at pc that should
// stop execution, or 0.
func (m *Monitor) checkShouldBreak(pc uint32) (int, error) {
	for _, bp := range m.breakpoints {
		if bp.Address != pc {
			continue
		}

		if bp.Condition != "" {
			res, err := m.eval.EvaluateExpression(bp.Condition)
			if err != nil {
				return bp.ID, fmt.Errorf("breakpoint %d condition: %w", bp.ID, err)
			}
			if res == 0 {
				continue
			}
		}

		bp.Hits++
		if bp.Hits%bp.HitCount == 0 {
			return bp.ID, nil
		}
	}
	return 0, nil
}

// Examine reads count consecutive words starting at the address addrExpr
// evaluates to. On a fault the words read so far are returned with the error.
func (m *Monitor) Examine(count int, addrExpr string) ([]MemoryWord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if count < 1 || count > m.maxExamineWords {
		return nil, &CountError{Count: count, Max: m.maxExamineWords}
	}

	addr, err := m.eval.EvaluateExpression(addrExpr)
	if err != nil {
		return nil, err
	}

	words := make([]MemoryWord, 0, count)
	for i := 0; i < count; i++ {
		a := addr + uint32(i)*4
		value, err := m.emu.ReadMemoryU32(a)
		if err != nil {
			return words, err
		}
		words = append(words, MemoryWord{Address: a, Value: value})
	}
	return words, nil
}

// Step executes up to n instructions. A breakpoint at the instruction the
// step starts from is not reported again.
func (m *Monitor) Step(n int) StopEvent {
	m.mu.Lock()
	defer m.mu.Unlock()

	if n < 1 {
		n = 1
	}
	return m.run(n)
}

// Continue runs until a breakpoint, watchpoint, exception, exit or the
// runtime limit.
func (m *Monitor) Continue() StopEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.run(-1)
}

func (m *Monitor) run(maxSteps int) StopEvent {
	steps := 0
	for maxSteps < 0 || steps < maxSteps {
		ev, executed, stop := m.stepOne(steps > 0)
		if executed {
			steps++
		}
		if stop {
			ev.Steps = steps
			m.logger.Debug("stopped", zap.String("reason", string(ev.Reason)), zap.Uint32("pc", ev.PC), zap.Int("steps", steps))
			return ev
		}
	}
	return m.stopEvent(StopStep, steps)
}

func (m *Monitor) stopEvent(reason StopReason, steps int) StopEvent {
	pc := m.emu.PC()
	return StopEvent{Reason: reason, PC: pc, Location: m.symbols.Locate(pc), Steps: steps}
}

// stepOne executes a single instruction unless something stops execution
// before it. executed reports whether the instruction ran to completion.
func (m *Monitor) stepOne(checkBreak bool) (ev StopEvent, executed, stop bool) {
	if m.emu.Halted() {
		return m.stopEvent(StopHalted, 0), false, true
	}
	if m.emu.LimitReached() {
		return m.stopEvent(StopLimit, 0), false, true
	}

	if checkBreak {
		id, err := m.checkShouldBreak(m.emu.PC())
		if err != nil {
			ev = m.stopEvent(StopConditionError, 0)
			ev.BreakpointID = id
			ev.Err = err
			return ev, false, true
		}
		if id != 0 {
			ev = m.stopEvent(StopBreakpoint, 0)
			ev.BreakpointID = id
			return ev, false, true
		}
	}

	if err := m.emu.Step(); err != nil {
		if errors.Is(err, emulator.ErrHalted) {
			return m.stopEvent(StopHalted, 0), false, true
		}
		ev = m.stopEvent(StopException, 0)
		ev.Err = err
		return ev, false, true
	}

	if triggers := m.checkWatchpoints(); len(triggers) > 0 {
		ev = m.stopEvent(StopWatchpoint, 0)
		ev.Triggers = triggers
		m.logger.Info("watchpoint triggered", zap.Uint32("pc", ev.PC), zap.Int("count", len(triggers)))
		return ev, true, true
	}

	if m.emu.Halted() {
		return m.stopEvent(StopHalted, 0), true, true
	}
	return StopEvent{}, true, false
}

// Info lists every register followed by the program counter.
func (m *Monitor) Info() []RegisterValue {
	m.mu.Lock()
	defer m.mu.Unlock()

	regs := m.emu.Registers()
	out := make([]RegisterValue, 0, len(regs)+1)
	for i, v := range regs {
		out = append(out, RegisterValue{Name: emulator.ABINames[i], Value: v})
	}
	return append(out, RegisterValue{Name: "pc", Value: m.emu.PC()})
}

// MaxExamineWords is the largest count Examine accepts.
func (m *Monitor) MaxExamineWords() int {
	return m.maxExamineWords
}

// Symbols returns the symbol names known to the monitor in address order.
func (m *Monitor) Symbols() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.symbols.Names()
}

func (m *Monitor) ExitCode() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.emu.GetExitCode()
}
