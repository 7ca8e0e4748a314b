package colorsensor

import (
	"context"
	"fmt"
)

var ErrBusBusy = fmt.Errorf("I2C engine is busy (command not completed)")

type AddressableReader interface {
	ReadFromAddr(ctx context.Context, address byte, buffer []byte) error
}

type AddressableWriter interface {
	WriteToAddr(ctx context.Context, address byte, buffer []byte) error
	Release(ctx context.Context) error
}

// I2CBus is the transport every driver in this module talks to. A register read is
// a WriteToAddr carrying the register pointer followed by a ReadFromAddr.
type I2CBus interface {
	AddressableReader
	AddressableWriter
}
