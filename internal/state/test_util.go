package state

import (
	"context"
	"os"
	"testing"

	"github.com/temoto/motormenu/hardware/text_display"
	"github.com/temoto/motormenu/internal/tele"
	"github.com/temoto/motormenu/log2"
)

// NewTestContext returns Global with memory text display, it is available as MockDisplay(ctx).
func NewTestContext(t testing.TB, confString string) (context.Context, *Global) {
	fs := NewMockFullReader(map[string]string{
		"test-inline": confString,
	})

	var log *log2.Log
	if os.Getenv("motormenu_test_log_stderr") == "1" {
		log = log2.NewStderr(log2.LDebug) // useful with panics
	} else {
		log = log2.NewTest(t, log2.LDebug)
	}
	log.SetFlags(log2.LTestFlags)
	ctx, g := NewContext(log, tele.NewStub())
	g.BuildVersion = "test"

	display, dev := text_display.NewMockTextDisplay(&text_display.TextDisplayConfig{})
	g.Hardware.HD44780.Display = display
	ctx = context.WithValue(ctx, MockDisplayContextKey, dev)

	g.MustInit(ctx, MustReadConfig(log, fs, "test-inline"))
	t.Cleanup(g.Stop)
	return ctx, g
}

const MockDisplayContextKey = "test/mock-display"

func MockDisplay(ctx context.Context) *text_display.MemoryDevicer {
	return ctx.Value(MockDisplayContextKey).(*text_display.MemoryDevicer)
}
