package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.gatech.edu/ECEInnovation/RISC-V-Monitor/config"
	"github.gatech.edu/ECEInnovation/RISC-V-Monitor/debugserver"
	"github.gatech.edu/ECEInnovation/RISC-V-Monitor/util"
)

var (
	serveTCP  bool
	serveAddr string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the debugger over JSON-RPC",
	Long: `Serve the debugger over JSON-RPC 2.0 with Content-Length framing, on stdin
and stdout by default or on a TCP port with --tcp.`,
	Example: `  riscv-monitor serve --elf prog.elf
  riscv-monitor serve --elf prog.elf --tcp --addr 127.0.0.1:2034`,
	RunE: runServe,
}

var webCmd = &cobra.Command{
	Use:     "web",
	Short:   "Serve the debugger over WebSocket with a browser console",
	Example: `  riscv-monitor web --elf prog.elf --addr 127.0.0.1:2035`,
	RunE:    runWeb,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(webCmd)

	serveCmd.Flags().BoolVar(&serveTCP, "tcp", false, "listen on TCP instead of stdio")
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	webCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
}

func newServer() (*debugserver.Server, error) {
	logger := util.L()
	monitor, err := newMonitor(config.GetConfig(), elfPath, logger)
	if err != nil {
		return nil, err
	}
	return debugserver.NewServer(monitor, logger.Named("server")), nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// errStdoutLogging is returned when logs would interleave with JSON-RPC
// frames on stdout.
var errStdoutLogging = errors.New("log.output stdout cannot be used with the stdio transport; use stderr, file or --tcp")

func runServe(cmd *cobra.Command, args []string) error {
	if !serveTCP && config.GetConfig().Log.Output == "stdout" {
		return errStdoutLogging
	}

	server, err := newServer()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	if !serveTCP {
		server.ListenAndServe(ctx)
		return nil
	}

	addr := serveAddr
	if addr == "" {
		addr = config.GetConfig().Server.TCPAddr
	}
	return server.ListenAndServeTCP(ctx, addr)
}

func runWeb(cmd *cobra.Command, args []string) error {
	server, err := newServer()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	addr := serveAddr
	if addr == "" {
		addr = config.GetConfig().Server.WebsocketAddr
	}
	util.L().Info("starting web console", zap.String("addr", addr), zap.String("elf", elfPath))
	return server.ListenAndServeWebsocket(ctx, addr)
}
