// Package run is the device service: menu task driven by tick source until signal.
package run

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/daemon"
	"github.com/juju/errors"
	"github.com/temoto/motormenu/cmd/motormenu/subcmd"
	"github.com/temoto/motormenu/internal/menu"
	"github.com/temoto/motormenu/internal/state"
	"github.com/temoto/motormenu/internal/tick"
)

const stopTimeout = 5 * time.Second

var Mod = subcmd.Mod{Name: "run", Main: Main}

func Main(ctx context.Context, config *state.Config) error {
	g := state.GetGlobal(ctx)
	g.MustInit(ctx, config)
	g.Log.Debugf("config=%+v", g.Config)

	if _, err := Start(ctx); err != nil {
		return err
	}
	subcmd.SdNotify(daemon.SdNotifyReady)
	g.Log.Infof("motormenu init complete, running")

	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	select {
	case sig := <-sigch:
		g.Log.Infof("signal=%v stopping", sig)
	case <-g.Alive.StopChan():
	}
	subcmd.SdNotify(daemon.SdNotifyStopping)
	return Shutdown(ctx)
}

// Start runs menu task and its tick source on global Alive.
func Start(ctx context.Context) (*menu.Task, error) {
	g := state.GetGlobal(ctx)
	task, _, err := menu.NewFromContext(ctx)
	if err != nil {
		return nil, errors.Annotate(err, "run")
	}
	task.Init()

	src := &tick.Source{Period: g.Config.Menu.TickPeriod(), Counter: task.Ticks()}
	go src.Run(g.Alive)
	go task.Run(g.Alive, g.Config.Menu.UpdatePeriod())
	return task, nil
}

func Shutdown(ctx context.Context) error {
	g := state.GetGlobal(ctx)
	if !g.StopWait(stopTimeout) {
		g.Log.Errorf("stop timeout=%v", stopTimeout)
	}
	err := g.CloseHardware()
	g.Tele.Close()
	return errors.Annotate(err, "shutdown")
}
