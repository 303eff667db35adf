// Package input implements Game Boy joypad input handling.
package input

// GbKey identifies one of the eight physical buttons on the DMG.
type GbKey int

// The eight GbKey values, matching the spec's enumeration order.
const (
	KeyUp GbKey = iota
	KeyDown
	KeyLeft
	KeyRight
	KeyStart
	KeySelect
	KeyA
	KeyB
)

// Joypad represents the Game Boy joypad state and P1/JOYP register.
type Joypad struct {
	// Selection bits (written by CPU)
	selectAction    bool // P15 (0=select action buttons)
	selectDirection bool // P14 (0=select direction buttons)

	// Button states (true = pressed)
	buttonA      bool
	buttonB      bool
	buttonStart  bool
	buttonSelect bool
	buttonUp     bool
	buttonDown   bool
	buttonLeft   bool
	buttonRight  bool

	// Interrupt callback
	requestInterrupt func(uint8)
}

// JoypadInterruptBit is the interrupt bit requested on a falling edge of
// any selected button line.
const JoypadInterruptBit = 4

// New creates a new Joypad instance.
func New(requestInterrupt func(uint8)) *Joypad {
	return &Joypad{
		selectAction:     true, // Not selected (1)
		selectDirection:  true, // Not selected (1)
		requestInterrupt: requestInterrupt,
	}
}

// Read returns the P1/JOYP register value (0xFF00).
func (j *Joypad) Read() uint8 {
	result := uint8(0xC0) // Upper 2 bits always 1

	// Set selection bits
	if j.selectAction {
		result |= 0x20 // P15
	}
	if j.selectDirection {
		result |= 0x10 // P14
	}

	// Initialize button bits as all released (1)
	buttonBits := uint8(0x0F)

	// If action buttons selected (P15=0)
	if !j.selectAction {
		if j.buttonStart {
			buttonBits &^= 0x08 // Bit 3
		}
		if j.buttonSelect {
			buttonBits &^= 0x04 // Bit 2
		}
		if j.buttonB {
			buttonBits &^= 0x02 // Bit 1
		}
		if j.buttonA {
			buttonBits &^= 0x01 // Bit 0
		}
	}

	// If direction buttons selected (P14=0)
	if !j.selectDirection {
		if j.buttonDown {
			buttonBits &^= 0x08 // Bit 3
		}
		if j.buttonUp {
			buttonBits &^= 0x04 // Bit 2
		}
		if j.buttonLeft {
			buttonBits &^= 0x02 // Bit 1
		}
		if j.buttonRight {
			buttonBits &^= 0x01 // Bit 0
		}
	}

	result |= buttonBits
	return result
}

// Write updates the P1/JOYP register (only bits 4-5 are writable).
func (j *Joypad) Write(value uint8) {
	j.selectAction = (value & 0x20) != 0
	j.selectDirection = (value & 0x10) != 0
}

// button returns a pointer to the backing field for a key, and whether that
// direction is currently blocked by its opposite being held.
func (j *Joypad) button(key GbKey) (state *bool, blockedBy *bool) {
	switch key {
	case KeyA:
		return &j.buttonA, nil
	case KeyB:
		return &j.buttonB, nil
	case KeyStart:
		return &j.buttonStart, nil
	case KeySelect:
		return &j.buttonSelect, nil
	case KeyUp:
		return &j.buttonUp, &j.buttonDown
	case KeyDown:
		return &j.buttonDown, &j.buttonUp
	case KeyLeft:
		return &j.buttonLeft, &j.buttonRight
	case KeyRight:
		return &j.buttonRight, &j.buttonLeft
	default:
		return nil, nil
	}
}

// KeyDown presses a key, requesting the joypad interrupt on the
// released-to-pressed falling edge of its selected line. The opposite
// direction key (Up/Down, Left/Right) cannot be pressed simultaneously.
func (j *Joypad) KeyDown(key GbKey) {
	state, blockedBy := j.button(key)
	if state == nil {
		return
	}

	wasPressed := *state
	if blockedBy == nil || !*blockedBy {
		*state = true
	}

	selected := !j.selectDirection
	switch key {
	case KeyA, KeyB, KeyStart, KeySelect:
		selected = !j.selectAction
	}

	if !wasPressed && *state && selected && j.requestInterrupt != nil {
		j.requestInterrupt(JoypadInterruptBit)
	}
}

// KeyUp releases a key.
func (j *Joypad) KeyUp(key GbKey) {
	state, _ := j.button(key)
	if state != nil {
		*state = false
	}
}
