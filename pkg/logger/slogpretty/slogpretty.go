// package slogpretty provides a human-friendly, colored handler for the
// standard slog logger. The JSON output of the default handlers is hard to
// scan during local development; this handler prints a compact colored line
// per record instead.
package slogpretty

import (
	"context"
	"encoding/json"
	"io"
	stdLog "log"
	"log/slog"
	"os"

	"github.com/fatih/color"
)

// Environment names understood by SetupLogger.
const (
	envLocal = "local" // colored, human-readable output
	envDev   = "dev"   // JSON, debug level
	envProd  = "prod"  // JSON, info level
)

// PrettyHandlerOptions configures a PrettyHandler.
type PrettyHandlerOptions struct {
	SlogOpts *slog.HandlerOptions
}

// PrettyHandler is a slog.Handler that renders records as colored text.
type PrettyHandler struct {
	slog.Handler
	l     *stdLog.Logger
	attrs []slog.Attr
}

// NewPrettyHandler creates a PrettyHandler writing to out.
func (opts PrettyHandlerOptions) NewPrettyHandler(out io.Writer) *PrettyHandler {
	return &PrettyHandler{
		Handler: slog.NewJSONHandler(out, opts.SlogOpts),
		l:       stdLog.New(out, "", 0),
	}
}

// SetupLogger returns a logger configured for the given environment.
// Unknown environments fall back to the prod configuration.
func SetupLogger(env string) *slog.Logger {
	switch env {
	case envLocal:
		opts := PrettyHandlerOptions{
			SlogOpts: &slog.HandlerOptions{Level: slog.LevelDebug},
		}

		return slog.New(opts.NewPrettyHandler(os.Stdout))
	case envDev:
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	default:
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}
}

// Handle formats a single record and writes it through the internal logger.
func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	level := r.Level.String() + ":"

	switch r.Level {
	case slog.LevelDebug:
		level = color.MagentaString(level)
	case slog.LevelInfo:
		level = color.BlueString(level)
	case slog.LevelWarn:
		level = color.YellowString(level)
	case slog.LevelError:
		level = color.RedString(level)
	}

	fields := make(map[string]interface{}, r.NumAttrs())
	r.Attrs(func(a slog.Attr) bool {
		fields[a.Key] = a.Value.Any()
		return true
	})

	for _, a := range h.attrs {
		fields[a.Key] = a.Value.Any()
	}

	var b []byte

	var err error

	if len(fields) > 0 {
		b, err = json.MarshalIndent(fields, "", "  ")
		if err != nil {
			return err
		}
	}

	h.l.Println(
		r.Time.Format("[15:05:05.000]"),
		level,
		color.CyanString(r.Message),
		color.WhiteString(string(b)),
	)

	return nil
}

// WithAttrs returns a handler that adds the given attributes to every record.
func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &PrettyHandler{
		Handler: h.Handler,
		l:       h.l,
		attrs:   append(h.attrs, attrs...),
	}
}

// WithGroup delegates to the underlying handler; groups are not rendered
// specially.
func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	return &PrettyHandler{
		Handler: h.Handler.WithGroup(name),
		l:       h.l,
		attrs:   h.attrs,
	}
}
