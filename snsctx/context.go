// Package snsctx carries per-call debugging switches through context.
package snsctx

import (
	"context"
	"encoding/hex"
	"log/slog"
)

type ctxIndex int

const (
	ctxIndexVerbose ctxIndex = iota
	ctxIndexDevice
)

func IsVerbose(ctx context.Context) bool {
	val, ok := ctx.Value(ctxIndexVerbose).(bool)
	return ok && val
}

func SetVerbose(ctx context.Context, value bool) context.Context {
	return context.WithValue(ctx, ctxIndexVerbose, value)
}

// WithDevice tags traces emitted under ctx with a device name.
func WithDevice(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, ctxIndexDevice, name)
}

func Device(ctx context.Context) string {
	name, _ := ctx.Value(ctxIndexDevice).(string)
	return name
}

// Trace logs a hex dump of buf at debug level when verbose tracing is on.
func Trace(ctx context.Context, msg string, buf []byte) {
	if !IsVerbose(ctx) {
		return
	}
	attrs := []any{"len", len(buf), "data", hex.EncodeToString(buf)}
	if dev := Device(ctx); dev != "" {
		attrs = append(attrs, "device", dev)
	}
	slog.DebugContext(ctx, msg, attrs...)
}
