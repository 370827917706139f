package wire

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xairline/xa-ffb/utils/logger"
)

func TestNewUDPReceiverRejectsBadTimeout(t *testing.T) {
	_, err := NewUDPReceiver("127.0.0.1:0", 0, logger.NewGenericLogger())
	assert.Error(t, err)
}

func TestNewUDPReceiverBadAddress(t *testing.T) {
	_, err := NewUDPReceiver("not an address", time.Second, logger.NewGenericLogger())
	assert.Error(t, err)
}

func TestUDPRoundTrip(t *testing.T) {
	receiver, err := NewUDPReceiver("127.0.0.1:0", 50*time.Millisecond, logger.NewGenericLogger())
	require.NoError(t, err)
	defer receiver.Close()

	received := make(chan []byte, 4)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		receiver.Run(ctx, func(data []byte) {
			received <- data
		})
	}()

	sender, err := NewUDPSender(receiver.LocalAddr().String())
	require.NoError(t, err)
	defer sender.Close()

	require.NoError(t, sender.Send([]byte("OVERRIDE:joystick=true")))
	select {
	case data := <-received:
		assert.Equal(t, "OVERRIDE:joystick=true", string(data))
	case <-time.After(2 * time.Second):
		t.Fatal("datagram not received")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("receiver did not stop after cancel")
	}
}

func TestUDPReceiverStopsOnClose(t *testing.T) {
	receiver, err := NewUDPReceiver("127.0.0.1:0", time.Hour, logger.NewGenericLogger())
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		receiver.Run(context.Background(), func([]byte) {})
	}()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, receiver.Close())
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("receiver did not stop after close")
	}
}

func TestUDPReceiverSurvivesHandlerPanic(t *testing.T) {
	receiver, err := NewUDPReceiver("127.0.0.1:0", 50*time.Millisecond, logger.NewGenericLogger())
	require.NoError(t, err)
	defer receiver.Close()

	var mu sync.Mutex
	var got []string
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go receiver.Run(ctx, func(data []byte) {
		if string(data) == "boom" {
			panic("boom")
		}
		mu.Lock()
		got = append(got, string(data))
		mu.Unlock()
	})

	conn, err := net.DialUDP("udp4", nil, receiver.LocalAddr())
	require.NoError(t, err)
	defer conn.Close()
	_, err = conn.Write([]byte("boom"))
	require.NoError(t, err)
	_, err = conn.Write([]byte("AXIS:jx=1"))
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1 && got[0] == "AXIS:jx=1"
	}, 2*time.Second, 10*time.Millisecond)
}
