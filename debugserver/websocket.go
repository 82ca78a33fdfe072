package debugserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"
	jsonrpcws "github.com/sourcegraph/jsonrpc2/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// WebsocketHandler serves JSON-RPC on /ws and a small console page on /.
func (s *Server) WebsocketHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebsocket)
	mux.HandleFunc("/", handleGetPage)
	return mux
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	s.logger.Info("websocket client connected", zap.String("remote", r.RemoteAddr))
	rpcConn := s.NewConn(context.Background(), jsonrpcws.NewObjectStream(wsConn))
	<-rpcConn.DisconnectNotify()
	s.logger.Info("websocket client disconnected", zap.String("remote", r.RemoteAddr))
}

// ListenAndServeWebsocket serves WebsocketHandler on addr until ctx is done.
func (s *Server) ListenAndServeWebsocket(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.WebsocketHandler()}

	go func() {
		<-ctx.Done()
		srv.Close()
	}()

	s.logger.Info("connect to the debugger", zap.String("url", fmt.Sprintf("http://%s", addr)))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("websocket server: %w", err)
	}
	return nil
}

func handleGetPage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html")
	w.Write([]byte(htmlPage))
}

var htmlPage = `<html>
<head>
	<title>RISCV Monitor</title>
</head>
<body style="background-color: #1E1E1E; color: white; font-family: monospace;">
	<h1 style="display: inline-block;">RISCV Monitor</h1>
	<button id="stepButton" style="margin-left: 50px; height: 40px; width: 80px;">STEP</button>
	<button id="continueButton" style="height: 40px; width: 80px;">CONTINUE</button>
	<br/>
	<input id="expression" style="width: 800px; font-size: 1.2em; font-family: monospace;" placeholder="*($sp + 8) == 0x2a"/>
	<button id="evalButton">EVAL</button>
	<button id="watchButton">WATCH</button>
	<pre id="caret" style="font-size: 1.2em; margin: 0; color: #F44747;"></pre>
	<h2>Console</h2>
	<div style="width: 980px; padding: 10px; font-size: 1.2em; background-color: black; height: 400px; overflow-y: auto; border: 2px solid white;" id="console"></div>

	<script>
		var socket = new WebSocket("ws://" + location.host + "/ws");
		var nextID = 1;
		var pending = {};

		function print(text) {
			var line = document.createElement("div");
			line.textContent = text;
			var consoleDiv = document.getElementById("console");
			consoleDiv.appendChild(line);
			consoleDiv.scrollTop = consoleDiv.scrollHeight;
		}

		function call(method, params, onResult) {
			var id = nextID++;
			pending[id] = onResult;
			socket.send(JSON.stringify({jsonrpc: "2.0", id: id, method: method, params: params}));
		}

		socket.onmessage = function(event) {
			var data = JSON.parse(event.data);
			var onResult = pending[data.id];
			delete pending[data.id];
			document.getElementById("caret").textContent = "";
			if (data.error) {
				print("error: " + data.error.message);
				if (data.error.data && data.error.data.position !== undefined) {
					document.getElementById("caret").textContent = " ".repeat(data.error.data.position) + "^";
				}
				return;
			}
			if (onResult) {
				onResult(data.result);
			}
		};

		socket.onclose = function() {
			print("disconnected");
		};

		function printStop(result) {
			var text = result.reason + " at 0x" + result.pc.toString(16);
			if (result.location) {
				text += " <" + result.location + ">";
			}
			print(text);
			(result.triggers || []).forEach(function(t) {
				print("  watchpoint " + t.id + ": " + t.expression + " " + t.oldValue + " -> " + t.newValue);
			});
			if (result.error) {
				print("  " + result.error);
			}
		}

		document.getElementById("evalButton").onclick = function() {
			var text = document.getElementById("expression").value;
			call("evaluate", {expression: text}, function(result) {
				print(text + " = " + result.value + " (" + result.hex + ")");
			});
		};

		document.getElementById("watchButton").onclick = function() {
			var text = document.getElementById("expression").value;
			call("setWatchpoint", {expression: text}, function(result) {
				print("watchpoint " + result.id + ": " + text + " = " + result.value);
			});
		};

		document.getElementById("stepButton").onclick = function() {
			call("step", {count: 1}, printStop);
		};

		document.getElementById("continueButton").onclick = function() {
			call("continue", null, printStop);
		};
	</script>
</body>
</html>`
