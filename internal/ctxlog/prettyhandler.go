// Copyright (c) genomekit 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package ctxlog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/TylerBrock/colorjson"
	"github.com/genomekit/samcall/internal/color"
	"golang.org/x/term"
)

var (
	// ErrMarshalAttrs is returned when record attributes cannot be marshaled.
	ErrMarshalAttrs = errors.New("failed to marshal log attributes")
	// ErrWrite is returned when the handler cannot write to its destination.
	ErrWrite = errors.New("failed to write log output")
)

// TimeFormat is the format used for timestamps in log messages.
const TimeFormat = "[15:04:05.000]"

var jsonFormatter = colorjson.NewFormatter()

func init() {
	jsonFormatter.Indent = 0
	jsonFormatter.DisabledColor = !term.IsTerminal(int(os.Stderr.Fd()))
}

// PrettyHandler is a slog handler that renders records as colorized
// single-line console output, with attributes formatted as JSON.
type PrettyHandler struct {
	inner  slog.Handler
	buf    *bytes.Buffer
	mu     *sync.Mutex
	writer io.Writer
}

// PrettyOption configures a PrettyHandler.
type PrettyOption func(*PrettyHandler)

// WithWriter sets the destination writer for the handler.
func WithWriter(w io.Writer) PrettyOption {
	return func(h *PrettyHandler) {
		h.writer = w
	}
}

// NewPrettyHandler creates a PrettyHandler with the given slog options.
func NewPrettyHandler(opts *slog.HandlerOptions, options ...PrettyOption) *PrettyHandler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}

	buf := &bytes.Buffer{}
	h := &PrettyHandler{
		buf: buf,
		inner: slog.NewJSONHandler(buf, &slog.HandlerOptions{
			Level:       opts.Level,
			AddSource:   opts.AddSource,
			ReplaceAttr: suppressDefaults(opts.ReplaceAttr),
		}),
		mu:     &sync.Mutex{},
		writer: os.Stderr,
	}

	for _, opt := range options {
		opt(h)
	}

	return h
}

// Enabled implements slog.Handler.
func (h *PrettyHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// WithAttrs implements slog.Handler.
func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &PrettyHandler{inner: h.inner.WithAttrs(attrs), buf: h.buf, mu: h.mu, writer: h.writer}
}

// WithGroup implements slog.Handler.
func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	return &PrettyHandler{inner: h.inner.WithGroup(name), buf: h.buf, mu: h.mu, writer: h.writer}
}

// Handle implements slog.Handler.
func (h *PrettyHandler) Handle(ctx context.Context, r slog.Record) error {
	attrs, err := h.computeAttrs(ctx, r)
	if err != nil {
		return err
	}

	var attrText string

	if len(attrs) > 0 {
		b, err := jsonFormatter.Marshal(attrs)
		if err != nil {
			return errors.Join(ErrMarshalAttrs, err)
		}

		attrText = string(b)
	}

	out := strings.Builder{}
	out.WriteString(color.Colorize(r.Time.Format(TimeFormat), color.FgWhite))
	out.WriteString(" ")
	out.WriteString(levelText(r.Level))
	out.WriteString(" ")
	out.WriteString(color.Colorize(r.Message, color.FgHiWhite))

	if attrText != "" {
		out.WriteString(" ")
		out.WriteString(attrText)
	}

	out.WriteString("\n")

	if _, err := io.WriteString(h.writer, out.String()); err != nil {
		return errors.Join(ErrWrite, err)
	}

	return nil
}

// computeAttrs round-trips the record through the inner JSON handler to
// obtain the attribute map, honouring groups and ReplaceAttr.
func (h *PrettyHandler) computeAttrs(ctx context.Context, r slog.Record) (map[string]any, error) {
	h.mu.Lock()
	defer func() {
		h.buf.Reset()
		h.mu.Unlock()
	}()

	if err := h.inner.Handle(ctx, r); err != nil {
		return nil, fmt.Errorf("inner handler: %w", err)
	}

	var attrs map[string]any
	if err := json.Unmarshal(h.buf.Bytes(), &attrs); err != nil {
		return nil, errors.Join(ErrMarshalAttrs, err)
	}

	return attrs, nil
}

func levelText(level slog.Level) string {
	text := level.String() + ":"

	switch {
	case level <= slog.LevelDebug:
		return color.Colorize(text, color.FgWhite)
	case level <= slog.LevelInfo:
		return color.Colorize(text, color.FgCyan)
	case level < slog.LevelError:
		return color.Colorize(text, color.FgYellow)
	default:
		return color.Colorize(text, color.FgRed)
	}
}

func suppressDefaults(next func([]string, slog.Attr) slog.Attr) func([]string, slog.Attr) slog.Attr {
	return func(groups []string, a slog.Attr) slog.Attr {
		if a.Key == slog.TimeKey || a.Key == slog.LevelKey || a.Key == slog.MessageKey {
			return slog.Attr{}
		}

		if next == nil {
			return a
		}

		return next(groups, a)
	}
}
