// Package msr reads AMD RAPL energy counters through the Linux msr driver
// (/dev/cpu/N/msr) and converts them to joules.
//
// Overview
//
//   - RegisterReader / RegisterFile:
//     ReadRegister(reg Register) (uint64, error)
//
//     RegisterFile opens the register device on every call, preads 8 bytes at
//     the register's absolute address and decodes them in native byte order.
//     Nothing is interpreted at this level.
//
//   - EnergyMsr:
//     CoreEnergy() (types.Joules, error)
//     PackageEnergy() (types.Joules, error)
//
//     Each call reads the raw counter and then the power-unit register. The
//     energy scale is bits 8-12 of that register (mask 0x1F00), u, giving
//     2^-u joules per count. The scale is decoded on demand, never cached.
//
//   - Registers (AMD family 17h and later):
//     RegPowerUnit     0xC0010299
//     RegCoreEnergy    0xC001029A
//     RegPackageEnergy 0xC001029B
//
//   - Errors (errs.go):
//     ErrRegisterAccess : wrapped by every error of this package
//     ErrShortRead      : fewer than 8 bytes at the offset
//     ErrPermission     : device present but not readable by this user
//     ErrNoDevice       : device missing, usually the msr module is not loaded
//
// # Permissions
//
// Opening /dev/cpu/N/msr requires root (or CAP_SYS_RAWIO) and the msr kernel
// module (modprobe msr).
//
// # Testing
//
// A regular file works as a register file: write 8 little-endian bytes at
// the register address of a sparse temp file and point RegisterFile at it.
package msr
