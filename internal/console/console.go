// Package console provides the Game Boy facade that ties together the CPU,
// bus, PPU, timer, and joypad components into the four operations a host
// driver needs: construct, run a frame, read the framebuffer, and feed
// input.
package console

import (
	"bytes"
	"errors"
	"time"

	"github.com/duskforge/gbcore/internal/bus"
	"github.com/duskforge/gbcore/internal/cartridge"
	"github.com/duskforge/gbcore/internal/cpu"
	"github.com/duskforge/gbcore/internal/input"
	"github.com/duskforge/gbcore/internal/ppu"
	"github.com/duskforge/gbcore/internal/timer"
)

const (
	// cyclesPerIteration is the number of cycles to execute between output checks.
	cyclesPerIteration = 10000

	// maxSerialBufferSize limits serial output buffer to prevent unbounded growth.
	maxSerialBufferSize = 64 * 1024 // 64 KiB

	// initialSerialBufferCapacity is the initial capacity for the serial output buffer.
	initialSerialBufferCapacity = 1024

	// stableOutputDuration is how long to wait with no new output before considering it stable.
	stableOutputDuration = 3 * time.Second
)

var (
	// ErrTimeout indicates the operation timed out.
	ErrTimeout = errors.New("timeout waiting for serial output")

	// Test ROM completion markers.
	passedBytes = []byte("Passed")
	failedBytes = []byte("Failed")
)

// Console represents a Game Boy emulator instance: CPU, bus, PPU, timer and
// joypad wired together behind the four operations a host driver needs.
type Console struct {
	CPU    *cpu.CPU
	Bus    *bus.Bus
	PPU    *ppu.PPU
	Timer  *timer.Timer
	Joypad *input.Joypad
	Cart   cartridge.Cartridge

	// Serial output buffer for test ROMs
	serialOutput []byte

	// Interrupt flags (0xFF0F), mirrored into the bus's IF register
	interruptFlags uint8
}

// New constructs a console with the given cartridge image loaded starting
// at address 0. romData may be any length or declare any cartridge type:
// the minimal core has no MBC and never rejects a load, so this can't fail.
func New(romData []byte) *Console {
	c := &Console{
		serialOutput: make([]byte, 0, initialSerialBufferCapacity),
	}

	c.PPU = ppu.New(c.requestInterrupt)
	c.Timer = timer.New(func() { c.requestInterrupt(cpu.InterruptTimer) })
	c.Joypad = input.New(c.requestInterrupt)

	b := bus.NewBus()
	b.LoadROM(romData)
	b.SetPPU(c.PPU)
	b.SetJoypad(c.Joypad)
	b.SetTimer(c.Timer)
	c.Bus = b
	c.Cart = b.GetCartridge()

	c.CPU = cpu.New(b)

	return c
}

// SkipBootrom sets the post-bootrom register and I/O values a real DMG
// leaves behind when the bootrom hands control to the cartridge: A=0x01,
// F=0xB0, BC=0x0013, DE=0x00D8, HL=0x014D, SP=0xFFFE, PC=0x0100; LCDC=0x91,
// BGP=0xFC, OBP0=OBP1=0xFF. New already constructs these values (the CPU
// registers in internal/registers.New, LCDC and the palettes in ppu.New), so
// this call is an explicit, idempotent
// re-application rather than a distinct code path — callers that want a
// console that looks freshly handed off from the bootrom without tracking
// whether New already did so can call this unconditionally.
func (c *Console) SkipBootrom() {
	c.CPU.Registers.A = 0x01
	c.CPU.Registers.F = 0xB0
	c.CPU.Registers.SetBC(0x0013)
	c.CPU.Registers.SetDE(0x00D8)
	c.CPU.Registers.SetHL(0x014D)
	c.CPU.Registers.SP = 0xFFFE
	c.CPU.Registers.PC = 0x0100

	c.Bus.WriteByte(0xFF40, 0x91) // LCDC
	c.Bus.WriteByte(0xFF47, 0xFC) // BGP
	c.Bus.WriteByte(0xFF48, 0xFF) // OBP0
	c.Bus.WriteByte(0xFF49, 0xFF) // OBP1
}

// requestInterrupt ORs an interrupt bit into IF (0xFF0F).
func (c *Console) requestInterrupt(interrupt uint8) {
	c.interruptFlags |= 1 << interrupt
	c.Bus.WriteByte(0xFF0F, c.interruptFlags)
}

// Step executes one CPU step (one instruction, one HALT idle cycle, or one
// interrupt dispatch) and returns the number of T-cycles taken. The PPU and
// timer have already been advanced by the bus's Tick() calls made during
// the step, so no separate post-step advancement is needed.
func (c *Console) Step() uint8 {
	return c.CPU.Step()
}

// ExecuteFrame runs CPU steps until the cumulative cycle count has advanced
// by at least one full frame's worth of T-cycles (70,224, matching
// ppu.DotsPerFrame). Returns early if the CPU has faulted on an illegal
// opcode.
func (c *Console) ExecuteFrame() {
	target := c.CPU.Cycles + ppu.DotsPerFrame
	for c.CPU.Cycles < target {
		if c.CPU.Fault != nil {
			return
		}
		c.Step()
	}
	c.handleSerialOutput()
}

// GetFramebuffer returns the front framebuffer: RGBA8, row-major,
// top-to-bottom, updated once per frame at the PPU's LY 153->0 rollover.
func (c *Console) GetFramebuffer() *[ppu.ScreenWidth * ppu.ScreenHeight * 4]byte {
	return c.PPU.GetFramebuffer()
}

// KeyDown presses a joypad button, requesting the Joypad interrupt on the
// falling edge of its selected line.
func (c *Console) KeyDown(key input.GbKey) {
	c.Joypad.KeyDown(key)
}

// KeyUp releases a joypad button.
func (c *Console) KeyUp(key input.GbKey) {
	c.Joypad.KeyUp(key)
}

// RunCycles runs the console for at least the specified number of T-cycles.
func (c *Console) RunCycles(cycles uint64) {
	target := c.CPU.Cycles + cycles
	for c.CPU.Cycles < target {
		if c.CPU.Fault != nil {
			break
		}
		c.Step()
		c.handleSerialOutput()
	}
}

// RunUntilOutput runs the console until serial output appears or timeout is
// reached. This is useful for test ROMs that output results via the serial
// port. Returns the serial output and any error.
func (c *Console) RunUntilOutput(timeout time.Duration) (string, error) {
	absoluteDeadline := time.Now().Add(timeout)
	lastOutputLen := 0
	lastOutputTime := time.Now()

	for {
		if time.Now().After(absoluteDeadline) {
			if len(c.serialOutput) > 0 {
				return string(c.serialOutput), nil
			}
			return "", ErrTimeout
		}

		if c.CPU.Fault != nil {
			return string(c.serialOutput), c.CPU.Fault
		}

		c.RunCycles(cyclesPerIteration)

		if len(c.serialOutput) > lastOutputLen {
			lastOutputLen = len(c.serialOutput)
			lastOutputTime = time.Now()

			if bytes.Contains(c.serialOutput, passedBytes) || bytes.Contains(c.serialOutput, failedBytes) {
				return string(c.serialOutput), nil
			}
		}

		if len(c.serialOutput) > 0 && time.Since(lastOutputTime) > stableOutputDuration {
			return string(c.serialOutput), nil
		}
	}
}

// handleSerialOutput checks for serial output and captures it.
// Game Boy serial transfer uses:
// - 0xFF01 (SB): Serial transfer data
// - 0xFF02 (SC): Serial transfer control.
func (c *Console) handleSerialOutput() {
	sc := c.Bus.ReadByte(0xFF02)

	if sc&0x80 != 0 {
		sb := c.Bus.ReadByte(0xFF01)

		if len(c.serialOutput) < maxSerialBufferSize {
			c.serialOutput = append(c.serialOutput, sb)
		}

		c.Bus.WriteByte(0xFF02, sc&0x7F)
	}
}

// GetSerialOutput returns the accumulated serial output.
func (c *Console) GetSerialOutput() string {
	return string(c.serialOutput)
}

// Reset resets the console to its construction state.
func (c *Console) Reset() {
	c.Bus.Reset()
	c.PPU.Reset()
	c.CPU = cpu.New(c.Bus)
	c.serialOutput = make([]byte, 0, initialSerialBufferCapacity)
	c.interruptFlags = 0
}
