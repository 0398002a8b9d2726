//go:build linux

package msr

import (
	"fmt"
	"math"

	"github.com/ja7ad/msrpower/pkg/types"
)

const (
	energyUnitMask  uint64 = 0x1F00
	energyUnitShift        = 8
)

// EnergyMsr converts one physical core's raw energy counters to joules.
type EnergyMsr struct {
	core   int
	reader RegisterReader
}

// New returns the EnergyMsr of the physical core whose canonical index is
// core, reading from the register file built from pathTemplate
// (see DefaultPathTemplate).
func New(core int, pathTemplate string) *EnergyMsr {
	return NewWithReader(core, NewRegisterFile(fmt.Sprintf(pathTemplate, core)))
}

// NewWithReader returns an EnergyMsr backed by an arbitrary RegisterReader.
func NewWithReader(core int, r RegisterReader) *EnergyMsr {
	return &EnergyMsr{core: core, reader: r}
}

// Core returns the canonical physical-core index.
func (m *EnergyMsr) Core() int { return m.core }

// DecodeEnergyUnit returns the joules per raw count encoded in bits 8-12
// of the power-unit register: 2^-u.
func DecodeEnergyUnit(raw uint64) float64 {
	u := (raw & energyUnitMask) >> energyUnitShift
	return math.Ldexp(1, -int(u))
}

// EnergyUnit reads the power-unit register and decodes the energy scale.
// It is not cached; each energy read calls it again.
func (m *EnergyMsr) EnergyUnit() (float64, error) {
	raw, err := m.reader.ReadRegister(RegPowerUnit)
	if err != nil {
		return 0, fmt.Errorf("core %d power unit: %w", m.core, err)
	}
	return DecodeEnergyUnit(raw), nil
}

// CoreEnergy returns the core energy counter in joules.
func (m *EnergyMsr) CoreEnergy() (types.Joules, error) {
	return m.energy(RegCoreEnergy)
}

// PackageEnergy returns the package energy counter in joules. The counter is
// package-wide, so every core of the package reports the same value.
func (m *EnergyMsr) PackageEnergy() (types.Joules, error) {
	return m.energy(RegPackageEnergy)
}

func (m *EnergyMsr) energy(reg Register) (types.Joules, error) {
	raw, err := m.reader.ReadRegister(reg)
	if err != nil {
		return 0, fmt.Errorf("core %d energy %s: %w", m.core, reg, err)
	}
	unit, err := m.EnergyUnit()
	if err != nil {
		return 0, err
	}
	return types.Joules(float64(raw) * unit), nil
}
