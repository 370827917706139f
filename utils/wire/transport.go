package wire

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/xairline/xa-ffb/utils/logger"
)

const maxDatagramSize = 4096

// PacketSender sends one datagram per call. No retries, UDP is best effort.
type PacketSender interface {
	Send(payload []byte) error
	Close() error
}

type udpSender struct {
	conn net.PacketConn
	addr *net.UDPAddr
}

// NewUDPSender opens an unbound UDP socket that writes to addr. Broadcast is
// enabled on the socket so addr may be a broadcast address.
func NewUDPSender(addr string) (PacketSender, error) {
	raddr, err := net.ResolveUDPAddr("udp4", addr)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", addr, err)
	}
	lc := net.ListenConfig{Control: broadcastControl}
	conn, err := lc.ListenPacket(context.Background(), "udp4", ":0")
	if err != nil {
		return nil, fmt.Errorf("open telemetry socket: %w", err)
	}
	return &udpSender{conn: conn, addr: raddr}, nil
}

func (s *udpSender) Send(payload []byte) error {
	_, err := s.conn.WriteTo(payload, s.addr)
	return err
}

func (s *udpSender) Close() error {
	return s.conn.Close()
}

// UDPReceiver reads datagrams on a bound socket. Reads time out periodically
// so Run notices cancellation within one timeout.
type UDPReceiver struct {
	Logger  logger.Logger
	conn    *net.UDPConn
	timeout time.Duration
}

func NewUDPReceiver(addr string, timeout time.Duration, logger logger.Logger) (*UDPReceiver, error) {
	if timeout <= 0 {
		return nil, fmt.Errorf("receive timeout must be positive, got %v", timeout)
	}
	laddr, err := net.ResolveUDPAddr("udp4", addr)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", addr, err)
	}
	conn, err := net.ListenUDP("udp4", laddr)
	if err != nil {
		return nil, fmt.Errorf("bind %s: %w", addr, err)
	}
	return &UDPReceiver{Logger: logger, conn: conn, timeout: timeout}, nil
}

func (r *UDPReceiver) LocalAddr() *net.UDPAddr {
	return r.conn.LocalAddr().(*net.UDPAddr)
}

// Run calls handle for every datagram until ctx is cancelled or the socket
// is closed. handle gets its own copy of the data. A panic in handle is
// logged and the loop continues.
func (r *UDPReceiver) Run(ctx context.Context, handle func([]byte)) {
	buf := make([]byte, maxDatagramSize)
	for {
		if ctx.Err() != nil {
			return
		}
		if err := r.conn.SetReadDeadline(time.Now().Add(r.timeout)); err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			r.Logger.Errorf("Failed to set read deadline: %v", err)
		}
		n, _, err := r.conn.ReadFromUDP(buf)
		if err != nil {
			var netErr net.Error
			switch {
			case errors.As(err, &netErr) && netErr.Timeout():
			case errors.Is(err, net.ErrClosed):
				return
			default:
				r.Logger.Errorf("Receive failed: %v", err)
				// avoid spinning on a persistent socket error
				select {
				case <-ctx.Done():
					return
				case <-time.After(r.timeout):
				}
			}
			continue
		}
		if n == 0 {
			continue
		}
		data := make([]byte, n)
		copy(data, buf[:n])
		r.dispatch(handle, data)
	}
}

func (r *UDPReceiver) dispatch(handle func([]byte), data []byte) {
	defer func() {
		if p := recover(); p != nil {
			r.Logger.Errorf("Panic while handling datagram %q: %v", data, p)
		}
	}()
	handle(data)
}

func (r *UDPReceiver) Close() error {
	return r.conn.Close()
}
