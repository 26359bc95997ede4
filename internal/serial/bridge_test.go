package serial

import (
	"io"
	"testing"
	"time"

	"m6502/internal/devices"
)

// fakePort is an in-memory serial port: Read pulls from the rx pipe,
// Write pushes into the tx pipe.
type fakePort struct {
	rx *io.PipeReader
	tx *io.PipeWriter
}

func (p *fakePort) Read(buf []byte) (int, error)  { return p.rx.Read(buf) }
func (p *fakePort) Write(buf []byte) (int, error) { return p.tx.Write(buf) }
func (p *fakePort) Close() error {
	p.rx.Close()
	return p.tx.Close()
}

func newFakePort() (*fakePort, *io.PipeWriter, *io.PipeReader) {
	rxRead, rxWrite := io.Pipe()
	txRead, txWrite := io.Pipe()
	return &fakePort{rx: rxRead, tx: txWrite}, rxWrite, txRead
}

func TestBridgeMovesPortBytesIntoACIA(t *testing.T) {
	acia := devices.NewACIA()
	port, portIn, _ := newFakePort()
	bridge := newBridge(acia, port)
	defer bridge.Close()

	go portIn.Write([]byte("hi"))

	deadline := time.After(2 * time.Second)
	var got []uint8
	for len(got) < 2 {
		select {
		case <-deadline:
			t.Fatalf("timed out; received %q", got)
		default:
		}
		if acia.Read(0)&devices.StatusRXReady != 0 {
			got = append(got, acia.Read(1))
		}
	}
	if string(got) != "hi" {
		t.Errorf("received %q, want \"hi\"", got)
	}
}

func TestBridgeDrainsACIATransmit(t *testing.T) {
	acia := devices.NewACIA()
	port, _, portOut := newFakePort()
	bridge := newBridge(acia, port)
	defer bridge.Close()

	acia.Write(1, 'o')
	acia.Write(1, 'k')

	buf := make([]byte, 2)
	if _, err := io.ReadFull(portOut, buf); err != nil {
		t.Fatalf("reading bridged output failed: %v", err)
	}
	if string(buf) != "ok" {
		t.Errorf("port saw %q, want \"ok\"", buf)
	}
}

func TestBridgeCloseIsIdempotent(t *testing.T) {
	acia := devices.NewACIA()
	port, _, _ := newFakePort()
	bridge := newBridge(acia, port)

	if err := bridge.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	if err := bridge.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
}
