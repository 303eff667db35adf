package cpu

import "github.com/duskforge/gbcore/internal/registers"

// Registers is the SM83 register file. Pulled into its own package
// (internal/registers) since it has no dependency on bus access; aliased
// here so the rest of this package can keep referring to cpu.Registers.
type Registers = registers.Registers

// Flag bit constants, re-exported from internal/registers.
const (
	FlagZ = registers.FlagZ
	FlagN = registers.FlagN
	FlagH = registers.FlagH
	FlagC = registers.FlagC
)

// NewRegisters creates a Registers instance in its construction state.
func NewRegisters() *Registers {
	return registers.New()
}
