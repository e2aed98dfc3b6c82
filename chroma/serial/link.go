package serial

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
)

// disconnectByte is what the game reads once the peer is gone: an
// unplugged cable floats high.
const disconnectByte = 0xFF

const incomingBuffer = 256

// Link connects two emulators over TCP, one byte per transfer.
type Link struct {
	logger   *slog.Logger
	incoming chan byte

	mu       sync.Mutex
	conn     net.Conn
	listener net.Listener

	connected atomic.Bool
	closed    chan struct{}
	closeOnce sync.Once
}

func newLink(logger *slog.Logger) *Link {
	if logger == nil {
		logger = slog.Default()
	}
	return &Link{
		logger:   logger,
		incoming: make(chan byte, incomingBuffer),
		closed:   make(chan struct{}),
	}
}

// Host listens on address and accepts a single peer in the background.
// Bytes sent before the peer shows up are dropped. Cancelling ctx closes
// the link.
func Host(ctx context.Context, address string, logger *slog.Logger) (*Link, error) {
	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("serial: listen on %s: %w", address, err)
	}

	l := newLink(logger)
	l.listener = listener
	l.logger.Info("serial: waiting for peer", "address", listener.Addr().String())

	go l.accept()
	go l.closeOnDone(ctx)
	return l, nil
}

// Join dials a hosting peer. ctx bounds the dial and the lifetime of
// the link.
func Join(ctx context.Context, address string, logger *slog.Logger) (*Link, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("serial: connect to %s: %w", address, err)
	}

	l := newLink(logger)
	l.attach(conn)
	go l.closeOnDone(ctx)
	return l, nil
}

func (l *Link) accept() {
	conn, err := l.listener.Accept()
	// one peer only
	l.listener.Close()
	if err != nil {
		select {
		case <-l.closed:
		default:
			l.logger.Error("serial: accept failed", "error", err)
		}
		return
	}
	l.attach(conn)
}

func (l *Link) attach(conn net.Conn) {
	l.mu.Lock()
	select {
	case <-l.closed:
		l.mu.Unlock()
		conn.Close()
		return
	default:
	}
	l.conn = conn
	l.mu.Unlock()

	l.connected.Store(true)
	l.logger.Info("serial: connected", "peer", conn.RemoteAddr().String())
	go l.read(conn)
}

func (l *Link) read(conn net.Conn) {
	buf := make([]byte, 32)
	for {
		n, err := conn.Read(buf)
		for _, b := range buf[:n] {
			l.logger.Debug("serial: in", "byte", fmt.Sprintf("%02X", b))
			l.push(b)
		}
		if err != nil {
			l.disconnect(err)
			return
		}
	}
}

// push queues an incoming byte, dropping it if the game stopped polling.
func (l *Link) push(b byte) {
	select {
	case l.incoming <- b:
	default:
		l.logger.Warn("serial: incoming buffer full, dropping byte")
	}
}

func (l *Link) disconnect(err error) {
	if !l.connected.Swap(false) {
		return
	}
	select {
	case <-l.closed:
		return
	default:
	}
	l.logger.Info("serial: peer disconnected", "error", err)
	l.push(disconnectByte)
	l.Close()
}

func (l *Link) closeOnDone(ctx context.Context) {
	select {
	case <-ctx.Done():
		l.Close()
	case <-l.closed:
	}
}

// Send writes b to the peer. A write error drops the connection.
func (l *Link) Send(b byte) {
	l.mu.Lock()
	conn := l.conn
	l.mu.Unlock()
	if conn == nil || !l.connected.Load() {
		return
	}

	l.logger.Debug("serial: out", "byte", fmt.Sprintf("%02X", b))
	if _, err := conn.Write([]byte{b}); err != nil {
		l.disconnect(err)
	}
}

// Receive returns the next byte from the peer, if one arrived.
func (l *Link) Receive() (byte, bool) {
	select {
	case b := <-l.incoming:
		return b, true
	default:
		return 0, false
	}
}

// Connected reports whether a peer is attached.
func (l *Link) Connected() bool { return l.connected.Load() }

// Addr is the local address of the link, useful when hosting on port 0.
func (l *Link) Addr() net.Addr {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.listener != nil {
		return l.listener.Addr()
	}
	if l.conn != nil {
		return l.conn.LocalAddr()
	}
	return nil
}

// Close shuts the link down. It is safe to call more than once.
func (l *Link) Close() error {
	var err error
	l.closeOnce.Do(func() {
		l.mu.Lock()
		close(l.closed)
		conn, listener := l.conn, l.listener
		l.mu.Unlock()

		l.connected.Store(false)
		if listener != nil {
			listener.Close()
		}
		if conn != nil {
			err = conn.Close()
		}
	})
	return err
}
