//go:build !linux

package file

import "fmt"

// device is a stub on non-Linux platforms: the OpenIPMI character device
// only exists on Linux, so this transport is unavailable elsewhere.
type device struct {
	path string
}

func openDevice(path string) (*device, error) {
	return nil, fmt.Errorf("file: OpenIPMI character device transport is only supported on Linux (tried %v)", path)
}

func OpenNumbered(devNum int) (*device, error) {
	return nil, fmt.Errorf("file: OpenIPMI character device transport is only supported on Linux (controller %d)", devNum)
}

func (d *device) send(netfn, cmd uint8, data []byte) error {
	return fmt.Errorf("file: OpenIPMI character device transport is only supported on Linux")
}

func (d *device) recv() ([]byte, error) {
	return nil, fmt.Errorf("file: OpenIPMI character device transport is only supported on Linux")
}

func (d *device) close() error { return nil }
