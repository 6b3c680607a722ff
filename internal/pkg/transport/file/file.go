// Package file implements the OpenIPMI Linux character device transport
// (/dev/ipmiN), used for in-band access to the local BMC instead of RMCP+
// over the network (spec 4.6, transport adapters).
package file

import (
	"fmt"
)

// Transport exchanges IPMI request/response messages with a local BMC over
// the OpenIPMI character device. Unlike the RMCP+ transport, there is no
// session establishment or wire encryption: the kernel driver already
// trusts whoever can open the device node. Send/Recv here operate on a
// minimal local encoding of [NetFn, Command, Data...] for requests and
// [CompletionCode, Data...] for responses, since the kernel driver handles
// IPMB addressing and checksums itself.
type Transport struct {
	dev *device
}

// Open opens path (e.g. "/dev/ipmi0") and enables the kernel's SDR/event
// receiver so asynchronous messages do not pile up unread.
func Open(path string) (*Transport, error) {
	dev, err := openDevice(path)
	if err != nil {
		return nil, err
	}
	return &Transport{dev: dev}, nil
}

// Send issues an IPMI request of the form [NetFn, Command, Data...].
func (t *Transport) Send(data []byte) error {
	if len(data) < 2 {
		return fmt.Errorf("file: request must be at least 2 bytes (netfn, command), got %d", len(data))
	}
	return t.dev.send(data[0], data[1], data[2:])
}

// Recv blocks for the matching response and returns [CompletionCode,
// Data...].
func (t *Transport) Recv() ([]byte, error) {
	return t.dev.recv()
}

// RemoteAddr returns the device path this transport was opened against.
func (t *Transport) RemoteAddr() string { return t.dev.path }

// Close closes the underlying device file.
func (t *Transport) Close() error { return t.dev.close() }
