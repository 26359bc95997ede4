// Package serial bridges the emulated ACIA to a physical serial port.
package serial

import (
	"fmt"
	"io"
	"log"
	"sync/atomic"
	"time"

	goserial "github.com/jacobsa/go-serial/serial"

	"m6502/internal/devices"
)

// Options selects the physical port the ACIA is bridged to
type Options struct {
	PortName string
	BaudRate uint
}

// Bridge pumps bytes between the ACIA rings and a serial port. Bytes
// the CPU writes to the ACIA data register go out the port; bytes
// arriving on the port land in the ACIA receive ring. The bridge owns
// the front-end side of both rings.
type Bridge struct {
	acia   *devices.ACIA
	port   io.ReadWriteCloser
	closed atomic.Bool
}

// Open opens the physical port and starts the pump goroutines
func Open(acia *devices.ACIA, opts Options) (*Bridge, error) {
	if opts.BaudRate == 0 {
		opts.BaudRate = 19200
	}
	port, err := goserial.Open(goserial.OpenOptions{
		PortName:        opts.PortName,
		BaudRate:        opts.BaudRate,
		DataBits:        8,
		StopBits:        1,
		MinimumReadSize: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("serial: open %s: %v", opts.PortName, err)
	}

	return newBridge(acia, port), nil
}

// newBridge starts the pumps over an already-open port
func newBridge(acia *devices.ACIA, port io.ReadWriteCloser) *Bridge {
	b := &Bridge{acia: acia, port: port}
	go b.pumpRx()
	go b.pumpTx()
	return b
}

// pumpRx moves port bytes into the ACIA receive ring
func (b *Bridge) pumpRx() {
	buf := make([]byte, 64)
	for !b.closed.Load() {
		n, err := b.port.Read(buf)
		if err != nil {
			if !b.closed.Load() {
				log.Printf("[serial] read error: %v", err)
			}
			return
		}
		for _, value := range buf[:n] {
			// Spin until the CPU drains the ring; the port side is
			// slower than the emulation in every realistic setup
			for !b.acia.RxWrite(value) {
				if b.closed.Load() {
					return
				}
				time.Sleep(time.Millisecond)
			}
		}
	}
}

// pumpTx drains the ACIA transmit ring out the port
func (b *Bridge) pumpTx() {
	for !b.closed.Load() {
		value, ok := b.acia.TxRead()
		if !ok {
			time.Sleep(time.Millisecond)
			continue
		}
		if _, err := b.port.Write([]byte{value}); err != nil {
			if !b.closed.Load() {
				log.Printf("[serial] write error: %v", err)
			}
			return
		}
	}
}

// Close stops the pumps and closes the port
func (b *Bridge) Close() error {
	if b.closed.Swap(true) {
		return nil
	}
	return b.port.Close()
}
