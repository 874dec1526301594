package handlers

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-logr/logr"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap/zapcore"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"
)

// NewLogger builds the CLI logger. Output is human readable on a terminal
// and JSON otherwise.
func NewLogger(level string, out *os.File) (logr.Logger, error) {
	console := isatty.IsTerminal(out.Fd()) || isatty.IsCygwinTerminal(out.Fd())
	return buildLogger(level, out, console)
}

func buildLogger(level string, out io.Writer, console bool) (logr.Logger, error) {
	var lvl zapcore.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = zapcore.DebugLevel
	case "", "info":
		lvl = zapcore.InfoLevel
	case "error":
		lvl = zapcore.ErrorLevel
	default:
		return logr.Discard(), fmt.Errorf("unknown log level %q", level)
	}

	return zap.New(
		zap.UseDevMode(console),
		zap.WriteTo(out),
		zap.Level(lvl),
	), nil
}
