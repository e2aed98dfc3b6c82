package serial

import (
	"sync"

	"github.com/valerio/go-chroma/chroma/memory"
)

// Port is a device plugged into the link port. Send is called with the
// outgoing byte when a transfer starts, Receive is polled for bytes
// clocked in by the peer.
type Port interface {
	Send(b byte)
	Receive() (byte, bool)
}

var (
	_ memory.SerialPort = Port(nil)
	_ Port              = (*Queue)(nil)
	_ Port              = (*LogSink)(nil)
	_ Port              = (*Link)(nil)
)

// Queue is an in-memory port. Sent bytes are recorded, or handed to the
// peer queue when two queues are joined with Pipe.
type Queue struct {
	mu       sync.Mutex
	incoming []byte
	sent     []byte
	peer     *Queue
}

func NewQueue(incoming ...byte) *Queue {
	return &Queue{incoming: incoming}
}

// Pipe returns two queues wired back to back, like a link cable.
func Pipe() (*Queue, *Queue) {
	a, b := NewQueue(), NewQueue()
	a.peer, b.peer = b, a
	return a, b
}

func (q *Queue) Send(b byte) {
	q.mu.Lock()
	q.sent = append(q.sent, b)
	peer := q.peer
	q.mu.Unlock()

	if peer != nil {
		peer.Push(b)
	}
}

func (q *Queue) Receive() (byte, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.incoming) == 0 {
		return 0, false
	}
	b := q.incoming[0]
	q.incoming = q.incoming[1:]
	return b, true
}

// Connected reports whether the queue is one end of a Pipe.
func (q *Queue) Connected() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.peer != nil
}

// Push queues bytes as if the peer had sent them.
func (q *Queue) Push(b ...byte) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.incoming = append(q.incoming, b...)
}

// Sent returns a copy of every byte sent so far.
func (q *Queue) Sent() []byte {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]byte(nil), q.sent...)
}
