package log

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"
)

const (
	// ActionIDKey is the context key for the current action ID
	ActionIDKey ContextKey = "action_id"

	FieldActionID = "action_id"
)

// GenerateActionID creates a unique ID for one user action
func GenerateActionID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		// Fallback to timestamp if random fails
		return fmt.Sprintf("act_%d", time.Now().UnixNano())
	}
	return "act_" + hex.EncodeToString(bytes)
}

// ActionID extracts the action ID from context
func ActionID(ctx context.Context) string {
	if id, ok := ctx.Value(ActionIDKey).(string); ok {
		return id
	}
	return ""
}

// StartAction tags ctx with a fresh action ID and logs the start of name.
// The returned func logs completion with the duration; a non-nil error
// raises the level to warn.
func (l *Logger) StartAction(ctx context.Context, name string) (context.Context, func(error)) {
	id := GenerateActionID()
	ctx = context.WithValue(ctx, ActionIDKey, id)
	start := time.Now()

	l.DebugContext(ctx, "Action started", FieldActionID, id, FieldOperation, name)

	return ctx, func(err error) {
		level := slog.LevelDebug
		args := []any{
			FieldComponent, l.component,
			FieldActionID, id,
			FieldOperation, name,
			"duration_ms", time.Since(start).Milliseconds(),
			"success", err == nil,
		}
		if err != nil {
			level = slog.LevelWarn
			args = append(args, FieldError, err.Error())
		}
		l.Logger.Log(ctx, level, "Action completed", args...)
	}
}
