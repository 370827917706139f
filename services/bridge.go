package services

import (
	"sync"

	"github.com/xairline/xa-ffb/models"
	"github.com/xairline/xa-ffb/utils/logger"
	"github.com/xairline/xa-ffb/utils/wire"
)

// Bridge ties one frame tick together: axis write-through, snapshot build and
// telemetry send. HandleDatagram is the entry point of the receive side.
type Bridge struct {
	Logger          logger.Logger
	Registry        SourceRegistry
	Builder         SnapshotBuilder
	Dispatcher      Dispatcher
	Sender          wire.PacketSender
	SendWhilePaused bool

	sendFailing bool

	mu   sync.RWMutex
	last models.Snapshot
}

func NewBridge(sim Simulator, sender wire.PacketSender, logger logger.Logger) *Bridge {
	registry := NewSourceRegistry(sim, logger)
	return &Bridge{
		Logger:     logger,
		Registry:   registry,
		Builder:    NewSnapshotBuilder(sim, registry, logger),
		Dispatcher: NewDispatcher(sim, registry, logger),
		Sender:     sender,
	}
}

// Subscribe registers the static subscriptions from the config file.
func (b *Bridge) Subscribe(subscriptions []models.Dataref) {
	for _, s := range subscriptions {
		kind, ok := models.ParseValueKind(s.Type)
		if !ok {
			b.Logger.Errorf("Subscription %s: unsupported type %q", s.Name, s.Type)
			continue
		}
		var opts []SourceOption
		if s.Precision != nil {
			opts = append(opts, WithPrecision(*s.Precision))
		}
		if s.Conversion != nil {
			opts = append(opts, WithConversion(*s.Conversion))
		}
		_ = b.Registry.Register(s.DatarefStr, s.Name, kind, opts...)
	}
}

// Tick runs on the flight loop, once per frame.
func (b *Bridge) Tick() {
	b.Dispatcher.Tick()

	frame := b.Builder.Build(b.Dispatcher.State().Overridden)

	b.mu.Lock()
	b.last = frame.Snapshot
	b.mu.Unlock()

	if frame.Paused && !b.SendWhilePaused {
		return
	}
	if b.Sender == nil {
		return
	}
	// log the first failure of a run only, this is called every frame
	if err := b.Sender.Send(wire.EncodeSnapshot(frame.Snapshot)); err != nil {
		if !b.sendFailing {
			b.Logger.Errorf("Failed to send telemetry: %v", err)
		}
		b.sendFailing = true
	} else if b.sendFailing {
		b.Logger.Info("Telemetry send recovered")
		b.sendFailing = false
	}
}

// HandleDatagram decodes one inbound command and applies it.
func (b *Bridge) HandleDatagram(data []byte) {
	cmd := wire.DecodeCommand(data)
	if _, ok := cmd.(models.UnknownCommand); ok {
		b.Logger.Debugf("Unknown packet: %q", data)
	}
	b.Dispatcher.Apply(cmd)
}

// LastSnapshot returns a copy of the most recently built snapshot, nil
// before the first tick.
func (b *Bridge) LastSnapshot() models.Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.last == nil {
		return nil
	}
	return b.last.Clone()
}
