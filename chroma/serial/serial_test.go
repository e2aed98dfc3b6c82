package serial

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-chroma/chroma/addr"
	"github.com/valerio/go-chroma/chroma/memory"
)

func TestQueue(t *testing.T) {
	q := NewQueue(0x01)
	q.Push(0x02, 0x03)

	for _, want := range []byte{0x01, 0x02, 0x03} {
		b, ok := q.Receive()
		require.True(t, ok)
		assert.Equal(t, want, b)
	}
	_, ok := q.Receive()
	assert.False(t, ok)

	q.Send(0xAA)
	q.Send(0xBB)
	assert.Equal(t, []byte{0xAA, 0xBB}, q.Sent())
}

func TestPipe(t *testing.T) {
	a, b := Pipe()
	a.Send(0x42)

	got, ok := b.Receive()
	require.True(t, ok)
	assert.Equal(t, byte(0x42), got)

	_, ok = a.Receive()
	assert.False(t, ok, "a byte is not echoed back to its sender")
}

func TestLogSink(t *testing.T) {
	var logs bytes.Buffer
	sink := NewLogSink(WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))

	for _, b := range []byte("Passed\nmore") {
		sink.Send(b)
	}
	assert.Contains(t, logs.String(), "line=Passed")
	assert.NotContains(t, logs.String(), "more")

	sink.Flush()
	assert.Contains(t, logs.String(), "line=more")
	assert.Equal(t, "Passed\nmore", sink.Output())

	_, ok := sink.Receive()
	assert.False(t, ok)

	sink.Reset()
	assert.Empty(t, sink.Output())
}

func TestLogSinkOnTheBus(t *testing.T) {
	sink := NewLogSink()
	m := memory.New()
	m.AttachSerial(sink)

	for _, b := range []byte("ok") {
		m.Write(addr.SB, b)
		m.Write(addr.SC, 0x81)
		m.Advance(4096, false)
	}

	assert.Equal(t, "ok", sink.Output())
	assert.Equal(t, uint8(0xFF), m.Read(addr.SB), "nothing answers")
}

func TestPipeConnectsTwoBuses(t *testing.T) {
	a, b := Pipe()
	master, slave := memory.New(), memory.New()
	master.AttachSerial(a)
	slave.AttachSerial(b)

	// the slave arms first, its byte waits on the master's side
	slave.Write(addr.SB, 0x55)
	slave.Write(addr.SC, 0x80)
	master.Write(addr.SB, 0x99)
	master.Write(addr.SC, 0x81)

	slave.Advance(4, false)
	assert.Equal(t, uint8(0x99), slave.Read(addr.SB))

	master.Advance(4096, false)
	assert.Equal(t, uint8(0x55), master.Read(addr.SB))
	assert.Equal(t, []byte{0x55}, b.Sent(), "the slave answers exactly once")
}

func TestPipeMasterWaitsForSlave(t *testing.T) {
	a, b := Pipe()
	master, slave := memory.New(), memory.New()
	master.AttachSerial(a)
	slave.AttachSerial(b)

	master.Write(addr.SB, 0x99)
	master.Write(addr.SC, 0x81)
	master.Advance(8192, false)
	assert.Equal(t, uint8(0xFF), master.Read(addr.SC), "transfer still in progress")

	slave.SetIF(0)
	slave.Advance(4, false)
	assert.Zero(t, slave.IF(), "an idle slave does not answer")
	assert.Empty(t, b.Sent())

	slave.Write(addr.SB, 0x55)
	slave.Write(addr.SC, 0x80)
	slave.Advance(4, false)
	assert.Equal(t, uint8(0x99), slave.Read(addr.SB))

	master.Advance(4, false)
	assert.Equal(t, uint8(0x55), master.Read(addr.SB))
	assert.Equal(t, uint8(0x7F), master.Read(addr.SC))
}
