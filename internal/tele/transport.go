package tele

import (
	"context"

	"github.com/temoto/motormenu/log2"
)

// Tele transport contract:
// - Init fails only with invalid config, ignores network errors
// - Send* queue message for delivery and return false only if it was rejected
// - application may start without network available
type Transporter interface {
	Init(ctx context.Context, log *log2.Log, teleConfig Config) error
	SendTelemetry(payload []byte) bool
	SendError(payload []byte) bool
	Close()
}
