// ffbmon is the controller end of the bridge for bench testing: it prints
// the telemetry the plugin broadcasts and sends AXIS, OVERRIDE and SUBSCRIBE
// commands to it.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/xairline/xa-ffb/models"
	"github.com/xairline/xa-ffb/utils/logger"
	"github.com/xairline/xa-ffb/utils/wire"
	"golang.org/x/sync/errgroup"
)

type listFlag []string

func (l *listFlag) String() string     { return strings.Join(*l, " ") }
func (l *listFlag) Set(s string) error { *l = append(*l, s); return nil }

func main() {
	var (
		listen    = flag.String("listen", "0.0.0.0:34390", "address to receive telemetry on")
		plugin    = flag.String("plugin", "127.0.0.1:34391", "command address of the plugin")
		keys      = flag.String("keys", "N,G,TAS,IAS,jOvrd,pOvrd,cOvrd", "comma separated keys to print, or \"all\"")
		every     = flag.Int("every", 30, "print every n-th frame")
		axis      = flag.String("axis", "", "axis values to send, e.g. jx=0.5,jy=-0.2")
		repeat    = flag.Duration("repeat", 0, "resend the axis values at this interval, 0 sends once")
		logLevel  = flag.String("log-level", "info", "debug, info, warn or error")
		plain     = flag.Bool("plain", false, "plain log lines without colors")
		overrides listFlag
		subscribe listFlag
	)
	flag.Var(&overrides, "override", "override to send, e.g. joystick=true (repeatable)")
	flag.Var(&subscribe, "subscribe", "subscription to send, e.g. dataref=sim/x,type=float,tag=X (repeatable)")
	flag.Parse()

	var lg logger.Logger = logger.NewConsoleLogger(*logLevel)
	if *plain {
		lg = logger.NewGenericLogger()
	}

	var commands [][]byte
	for _, o := range overrides {
		cmd, err := buildCommand(wire.DataTypeOverride, o)
		if err != nil {
			lg.Errorf("%v", err)
			os.Exit(2)
		}
		commands = append(commands, cmd)
	}
	for _, s := range subscribe {
		cmd, err := buildCommand(wire.DataTypeSubscribe, s)
		if err != nil {
			lg.Errorf("%v", err)
			os.Exit(2)
		}
		commands = append(commands, cmd)
	}
	var axisCmd []byte
	if *axis != "" {
		var err error
		if axisCmd, err = buildCommand(wire.DataTypeAxis, *axis); err != nil {
			lg.Errorf("%v", err)
			os.Exit(2)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	receiver, err := wire.NewUDPReceiver(*listen, 500*time.Millisecond, lg)
	if err != nil {
		lg.Errorf("%v", err)
		os.Exit(1)
	}
	defer receiver.Close()
	sender, err := wire.NewUDPSender(*plugin)
	if err != nil {
		lg.Errorf("%v", err)
		os.Exit(1)
	}
	defer sender.Close()

	printer := newPrinter(*keys, *every)
	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		receiver.Run(ctx, func(data []byte) {
			snap, err := wire.DecodeTelemetry(data)
			if err != nil {
				lg.Warningf("Bad telemetry frame: %v", err)
				return
			}
			printer.print(snap)
		})
		return nil
	})
	eg.Go(func() error {
		for _, cmd := range commands {
			if err := sender.Send(cmd); err != nil {
				return fmt.Errorf("send %q: %w", cmd, err)
			}
			lg.Infof("Sent %s", cmd)
		}
		if axisCmd == nil {
			return nil
		}
		if err := sender.Send(axisCmd); err != nil {
			return fmt.Errorf("send %q: %w", axisCmd, err)
		}
		lg.Infof("Sent %s", axisCmd)
		if *repeat <= 0 {
			return nil
		}
		ticker := time.NewTicker(*repeat)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if err := sender.Send(axisCmd); err != nil {
					lg.Warningf("Send failed: %v", err)
				}
			}
		}
	})

	if err := eg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		lg.Errorf("%v", err)
		os.Exit(1)
	}
}

// buildCommand validates payload by decoding it and encodes it again in
// canonical form.
func buildCommand(dataType, payload string) ([]byte, error) {
	cmd := wire.DecodeCommand([]byte(dataType + ":" + payload))
	if unknown, ok := cmd.(models.UnknownCommand); ok {
		return nil, fmt.Errorf("%s %q: %s", dataType, payload, unknown.Reason)
	}
	if a, ok := cmd.(models.AxisCommand); ok && len(a.Values) == 0 {
		return nil, fmt.Errorf("%s %q: no valid axis values", dataType, payload)
	}
	return wire.EncodeCommand(cmd)
}

type printer struct {
	keys  []string
	every int
	count int
}

func newPrinter(keys string, every int) *printer {
	p := &printer{every: max(every, 1)}
	if keys != "all" {
		for _, k := range strings.Split(keys, ",") {
			if k = strings.TrimSpace(k); k != "" {
				p.keys = append(p.keys, k)
			}
		}
	}
	return p
}

func (p *printer) print(snap models.Snapshot) {
	p.count++
	if p.count%p.every != 0 {
		return
	}
	keys := p.keys
	if keys == nil {
		keys = snap.Keys()
	}
	var sb strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s=%s ", k, snap[k])
	}
	fmt.Println(strings.TrimSpace(sb.String()))
}
