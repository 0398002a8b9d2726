package msr

import (
	"errors"
	"fmt"
)

var (
	// ErrRegisterAccess indicates the register file could not be opened or
	// read. Every error returned by this package wraps it.
	ErrRegisterAccess = errors.New("msr: register access failed")

	// ErrShortRead indicates fewer than 8 bytes were available at the
	// requested offset.
	ErrShortRead = fmt.Errorf("%w: short read", ErrRegisterAccess)

	// ErrPermission indicates the register file exists but the caller may
	// not open it (reading MSRs usually requires root or CAP_SYS_RAWIO).
	ErrPermission = fmt.Errorf("%w: permission denied (run as root)", ErrRegisterAccess)

	// ErrNoDevice indicates the register file does not exist, which usually
	// means the msr kernel module is not loaded (modprobe msr).
	ErrNoDevice = fmt.Errorf("%w: no register device (is the msr module loaded?)", ErrRegisterAccess)
)
