//go:build linux

package msr

import (
	"encoding/binary"
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// DefaultPathTemplate is the register file of logical cpu %d.
const DefaultPathTemplate = "/dev/cpu/%d/msr"

// Register is an absolute MSR address. The msr driver maps it to the byte
// offset of the register inside a cpu's register file.
type Register int64

// AMD family 17h+ RAPL registers.
const (
	RegPowerUnit     Register = 0xC0010299
	RegCoreEnergy    Register = 0xC001029A
	RegPackageEnergy Register = 0xC001029B
)

func (r Register) String() string { return fmt.Sprintf("0x%X", int64(r)) }

// RegisterReader returns the raw 64-bit value of a register. No
// interpretation happens at this level.
type RegisterReader interface {
	ReadRegister(reg Register) (uint64, error)
}

// RegisterFile reads registers from one cpu's register device. The device is
// opened fresh on every read and closed before returning.
type RegisterFile struct {
	path string
}

// NewRegisterFile returns a reader for the register file at path.
func NewRegisterFile(path string) RegisterFile {
	return RegisterFile{path: path}
}

// Path returns the register file path.
func (f RegisterFile) Path() string { return f.path }

// ReadRegister reads exactly 8 bytes at offset reg and decodes them in
// native byte order.
func (f RegisterFile) ReadRegister(reg Register) (uint64, error) {
	fd, err := unix.Open(f.path, unix.O_RDONLY|unix.O_CLOEXEC, 0)
	if err != nil {
		switch {
		case errors.Is(err, unix.EACCES), errors.Is(err, unix.EPERM):
			return 0, fmt.Errorf("%w: open %s: %w", ErrPermission, f.path, err)
		case errors.Is(err, unix.ENOENT), errors.Is(err, unix.ENXIO), errors.Is(err, unix.ENODEV):
			return 0, fmt.Errorf("%w: open %s: %w", ErrNoDevice, f.path, err)
		}
		return 0, fmt.Errorf("%w: open %s: %w", ErrRegisterAccess, f.path, err)
	}
	defer func() {
		_ = unix.Close(fd)
	}()

	var buf [8]byte
	n, err := unix.Pread(fd, buf[:], int64(reg))
	if err != nil {
		// The driver answers EIO for registers the cpu does not implement.
		return 0, fmt.Errorf("%w: read %s at %s: %w", ErrRegisterAccess, f.path, reg, err)
	}
	if n < len(buf) {
		return 0, fmt.Errorf("%w: %s at %s: got %d of %d bytes", ErrShortRead, f.path, reg, n, len(buf))
	}
	return binary.NativeEndian.Uint64(buf[:]), nil
}
