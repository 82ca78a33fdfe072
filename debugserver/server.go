// Package debugserver exposes a debugger.Monitor over JSON-RPC 2.0 on stdio,
// TCP or WebSocket connections.
package debugserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"

	"github.com/sourcegraph/jsonrpc2"
	"go.uber.org/zap"

	"github.gatech.edu/ECEInnovation/RISC-V-Monitor/debugger"
	"github.gatech.edu/ECEInnovation/RISC-V-Monitor/emulator"
	"github.gatech.edu/ECEInnovation/RISC-V-Monitor/expr"
)

type stdrwc struct{}

func (stdrwc) Read(p []byte) (int, error) {
	return os.Stdin.Read(p)
}

func (stdrwc) Write(p []byte) (int, error) {
	return os.Stdout.Write(p)
}

func (stdrwc) Close() error {
	if err := os.Stdin.Close(); err != nil {
		return err
	}
	return os.Stdout.Close()
}

// Server answers debugger requests. All connections share one Monitor.
type Server struct {
	monitor *debugger.Monitor
	logger  *zap.Logger
}

func NewServer(monitor *debugger.Monitor, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{monitor: monitor, logger: logger}
}

// NewConn starts serving requests read from stream.
func (s *Server) NewConn(ctx context.Context, stream jsonrpc2.ObjectStream) *jsonrpc2.Conn {
	return jsonrpc2.NewConn(ctx, stream, s,
		jsonrpc2.SetLogger(zap.NewStdLog(s.logger)),
		jsonrpc2.OnRecv(func(req *jsonrpc2.Request, resp *jsonrpc2.Response) {
			if req != nil && resp == nil {
				s.logger.Debug("received request", zap.String("method", req.Method), zap.String("id", req.ID.String()))
			}
		}),
	)
}

// ListenAndServe serves a single client on stdin and stdout until it
// disconnects.
func (s *Server) ListenAndServe(ctx context.Context) {
	conn := s.NewConn(ctx, jsonrpc2.NewBufferedStream(stdrwc{}, jsonrpc2.VSCodeObjectCodec{}))
	<-conn.DisconnectNotify()
}

func (s *Server) ListenAndServeTCP(ctx context.Context, addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("could not bind to address %s: %w", addr, err)
	}
	return s.Serve(ctx, lis)
}

// Serve accepts connections on lis until ctx is done or Accept fails. The
// listener is closed on return.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	defer lis.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			lis.Close()
		case <-done:
		}
	}()

	s.logger.Info("listening for TCP connections", zap.String("addr", lis.Addr().String()))

	connectionCount := 0
	for {
		netConn, err := lis.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("failed to accept incoming connection: %w", err)
		}
		connectionCount++
		connectionID := connectionCount
		s.logger.Info("received incoming connection", zap.Int("connection", connectionID), zap.String("remote", netConn.RemoteAddr().String()))

		rpcConn := s.NewConn(ctx, jsonrpc2.NewBufferedStream(netConn, jsonrpc2.VSCodeObjectCodec{}))
		go func() {
			<-rpcConn.DisconnectNotify()
			s.logger.Info("connection closed", zap.Int("connection", connectionID))
		}()
	}
}

func (s *Server) Handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	var result interface{}
	var err error

	switch req.Method {
	case "evaluate":
		result, err = s.evaluate(req)
	case "setWatchpoint":
		result, err = s.setWatchpoint(req)
	case "removeWatchpoint":
		result, err = s.removeWatchpoint(req)
	case "watchpoints":
		result = s.monitor.Watchpoints()
	case "setBreakpoint":
		result, err = s.setBreakpoint(req)
	case "removeBreakpoint":
		result, err = s.removeBreakpoint(req)
	case "breakpoints":
		result = s.monitor.Breakpoints()
	case "examine":
		result, err = s.examine(req)
	case "step":
		result, err = s.step(req)
	case "continue":
		result = newStopResult(s.monitor.Continue())
	case "registers":
		result = s.monitor.Info()

	// quitting
	case "shutdown", "exit":
		if !req.Notif {
			conn.Reply(ctx, req.ID, nil)
		}
		conn.Close()
		return

	default:
		err = &jsonrpc2.Error{Code: jsonrpc2.CodeMethodNotFound, Message: "method not found: " + req.Method}
	}

	if req.Notif {
		return
	}

	if err != nil {
		rpcErr := toRPCError(err)
		s.logger.Debug("request failed", zap.String("method", req.Method), zap.Error(err))
		if replyErr := conn.ReplyWithError(ctx, req.ID, rpcErr); replyErr != nil {
			s.logger.Warn("could not send error reply", zap.Error(replyErr))
		}
		return
	}

	if replyErr := conn.Reply(ctx, req.ID, result); replyErr != nil {
		s.logger.Warn("could not send reply", zap.String("method", req.Method), zap.Error(replyErr))
	}
}

type paramsError struct {
	err error
}

func (e *paramsError) Error() string {
	return "invalid parameters: " + e.err.Error()
}

func (e *paramsError) Unwrap() error {
	return e.err
}

func decodeParams(req *jsonrpc2.Request, v interface{}) error {
	if req.Params == nil {
		return &paramsError{err: errors.New("missing parameters")}
	}
	if err := json.Unmarshal(*req.Params, v); err != nil {
		return &paramsError{err: err}
	}
	return nil
}

func (s *Server) evaluate(req *jsonrpc2.Request) (interface{}, error) {
	params := EvaluateParams{}
	if err := decodeParams(req, &params); err != nil {
		return nil, err
	}

	value, err := s.monitor.Evaluate(params.Expression)
	if err != nil {
		return nil, err
	}
	return EvaluateResult{Value: value, Hex: fmt.Sprintf("0x%08x", value)}, nil
}

func (s *Server) setWatchpoint(req *jsonrpc2.Request) (interface{}, error) {
	params := WatchpointParams{}
	if err := decodeParams(req, &params); err != nil {
		return nil, err
	}
	return s.monitor.AddWatchpoint(params.Expression)
}

func (s *Server) removeWatchpoint(req *jsonrpc2.Request) (interface{}, error) {
	params := IDParams{}
	if err := decodeParams(req, &params); err != nil {
		return nil, err
	}
	return nil, s.monitor.RemoveWatchpoint(params.ID)
}

func (s *Server) setBreakpoint(req *jsonrpc2.Request) (interface{}, error) {
	params := BreakpointParams{}
	if err := decodeParams(req, &params); err != nil {
		return nil, err
	}
	return s.monitor.AddBreakpoint(params.Address, params.Condition, params.HitCount)
}

func (s *Server) removeBreakpoint(req *jsonrpc2.Request) (interface{}, error) {
	params := IDParams{}
	if err := decodeParams(req, &params); err != nil {
		return nil, err
	}
	return nil, s.monitor.RemoveBreakpoint(params.ID)
}

func (s *Server) examine(req *jsonrpc2.Request) (interface{}, error) {
	params := ExamineParams{}
	if err := decodeParams(req, &params); err != nil {
		return nil, err
	}
	if params.Count == 0 {
		params.Count = 1
	}
	if limit := s.monitor.MaxExamineWords(); params.Count < 0 || params.Count > limit {
		return nil, &paramsError{err: fmt.Errorf("word count must be between 1 and %d, got %d", limit, params.Count)}
	}

	words, err := s.monitor.Examine(params.Count, params.Address)
	var exprErr *expr.Error
	var fault *emulator.MemoryFault
	if !errors.As(err, &exprErr) && errors.As(err, &fault) {
		return ExamineResult{Words: words, Fault: fault.Error()}, nil
	}
	if err != nil {
		return nil, err
	}
	return ExamineResult{Words: words}, nil
}

func (s *Server) step(req *jsonrpc2.Request) (interface{}, error) {
	params := StepParams{Count: 1}
	if req.Params != nil {
		if err := decodeParams(req, &params); err != nil {
			return nil, err
		}
	}
	return newStopResult(s.monitor.Step(params.Count)), nil
}

func newStopResult(ev debugger.StopEvent) StopResult {
	result := StopResult{StopEvent: ev}
	if ev.Err != nil {
		result.Error = ev.Err.Error()
		result.ErrorData = expressionErrorData(ev.Err)
	}
	return result
}

// expressionErrorData describes err if it came from the expression
// evaluator, and returns nil otherwise.
func expressionErrorData(err error) *ExpressionErrorData {
	data := &ExpressionErrorData{}

	var exprErr *expr.Error
	if errors.As(err, &exprErr) {
		data.Expression = exprErr.Expression
	}

	var lexErr *expr.LexError
	var evalErr *expr.EvalError
	switch {
	case errors.As(err, &lexErr):
		data.Kind = lexErr.Kind.String()
		position := lexErr.Position
		data.Position = &position
	case errors.As(err, &evalErr):
		data.Kind = evalErr.Kind.String()
		data.Name = evalErr.Name
		if evalErr.Kind == expr.EvalMemoryFault {
			address := evalErr.Address
			data.Address = &address
		}
	default:
		return nil
	}
	return data
}

func toRPCError(err error) *jsonrpc2.Error {
	var rpcErr *jsonrpc2.Error
	if errors.As(err, &rpcErr) {
		return rpcErr
	}

	rpcErr = &jsonrpc2.Error{Code: jsonrpc2.CodeInternalError, Message: err.Error()}

	var notFound *debugger.NotFoundError
	var badParams *paramsError
	var badCount *debugger.CountError
	switch {
	case errors.As(err, &badParams), errors.As(err, &notFound), errors.As(err, &badCount):
		rpcErr.Code = jsonrpc2.CodeInvalidParams
	case errors.Is(err, debugger.ErrTooManyWatchpoints):
		rpcErr.Code = jsonrpc2.CodeInvalidRequest
	default:
		if data := expressionErrorData(err); data != nil {
			rpcErr.Code = jsonrpc2.CodeInvalidParams
			rpcErr.SetError(data)
		}
	}
	return rpcErr
}
