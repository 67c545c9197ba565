// Package console runs the menu against an in-memory display, keys are typed on terminal.
package console

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/c-bata/go-prompt"
	"github.com/juju/errors"
	"github.com/temoto/motormenu/cmd/motormenu/run"
	"github.com/temoto/motormenu/cmd/motormenu/subcmd"
	"github.com/temoto/motormenu/hardware/input"
	"github.com/temoto/motormenu/hardware/text_display"
	"github.com/temoto/motormenu/helpers/cli"
	"github.com/temoto/motormenu/internal/menu"
	"github.com/temoto/motormenu/internal/state"
)

const modName = "console"
const eventSource = "console"

const usage = `syntax: keys separated by whitespace
- enter, e    Enter
- next, n     Next
- escape, x   Escape
- /status     print display and cycle counters
- /help       this text
`

var Mod = subcmd.Mod{Name: modName, Main: Main}

func Main(ctx context.Context, config *state.Config) error {
	g := state.GetGlobal(ctx)

	// terminal is utf-8, ignore codepage
	display, err := text_display.NewTextDisplay(&text_display.TextDisplayConfig{
		Width: uint32(config.Hardware.HD44780.Width),
	})
	if err != nil {
		return errors.Annotate(err, modName)
	}
	display.SetDevice(text_display.NewMemoryDevicer(display.Width()))
	display.SetLog(g.Log)
	updch := make(chan text_display.State, 8)
	display.SetUpdateChan(updch)
	g.Hardware.HD44780.Display = display
	go printLoop(os.Stdout, updch, display.Width(), g.Alive.StopChan())

	g.MustInit(ctx, config)
	task, err := run.Start(ctx)
	if err != nil {
		return err
	}
	g.Log.Debugf("console init complete")

	cli.MainLoop(modName, newExecutor(ctx, task, os.Stdout), newCompleter(), g.Stop)
	return run.Shutdown(ctx)
}

func printLoop(w io.Writer, ch <-chan text_display.State, width uint32, stop <-chan struct{}) {
	border := strings.Repeat("-", int(width))
	for {
		select {
		case s := <-ch:
			fmt.Fprintf(w, "+%s+\n%s\n+%s+\n", border, frame(s.Format(width)), border)
		case <-stop:
			return
		}
	}
}

func frame(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = "|" + l + "|"
	}
	return strings.Join(lines, "\n")
}

func newCompleter() func(d prompt.Document) []prompt.Suggest {
	suggests := []prompt.Suggest{
		{Text: input.KeyEnter.String()},
		{Text: input.KeyNext.String()},
		{Text: input.KeyEscape.String()},
		{Text: "/status"},
		{Text: "/help"},
	}
	return func(d prompt.Document) []prompt.Suggest {
		return prompt.FilterHasPrefix(suggests, d.GetWordBeforeCursor(), true)
	}
}

func newExecutor(ctx context.Context, task *menu.Task, w io.Writer) func(string) {
	g := state.GetGlobal(ctx)
	return func(line string) {
		for _, word := range strings.Fields(line) {
			switch word {
			case "/help":
				fmt.Fprint(w, usage)
				continue
			case "/status":
				d := g.MustTextDisplay()
				fmt.Fprintf(w, "%s\ncycles=%d renders=%d pending_ticks=%d\n",
					d.State().Format(d.Width()), task.Cycles(), task.Renders(), task.Ticks().Pending())
				continue
			}
			key, err := input.ParseKey(word)
			if err != nil {
				g.Log.Error(errors.Annotate(err, modName))
				continue
			}
			g.Hardware.Input.Emit(input.Event{Source: eventSource, Key: key})
		}
	}
}
