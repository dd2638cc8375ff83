package core

import "sync"

type Button uint16

const (
	BUTTON_LEFT Button = iota
	BUTTON_RIGHT
	BUTTON_MIDDLE
	BUTTON_MAX_BUTTONS
)

// Key code definitions. Values match the GLFW key tokens so the platform
// layer can forward them unchanged.
type KeyCode uint16

const (
	KEY_SPACE     KeyCode = 32
	KEY_0         KeyCode = 48
	KEY_1         KeyCode = 49
	KEY_2         KeyCode = 50
	KEY_3         KeyCode = 51
	KEY_4         KeyCode = 52
	KEY_5         KeyCode = 53
	KEY_6         KeyCode = 54
	KEY_7         KeyCode = 55
	KEY_8         KeyCode = 56
	KEY_9         KeyCode = 57
	KEY_A         KeyCode = 65
	KEY_B         KeyCode = 66
	KEY_C         KeyCode = 67
	KEY_D         KeyCode = 68
	KEY_E         KeyCode = 69
	KEY_F         KeyCode = 70
	KEY_G         KeyCode = 71
	KEY_H         KeyCode = 72
	KEY_I         KeyCode = 73
	KEY_J         KeyCode = 74
	KEY_K         KeyCode = 75
	KEY_L         KeyCode = 76
	KEY_M         KeyCode = 77
	KEY_N         KeyCode = 78
	KEY_O         KeyCode = 79
	KEY_P         KeyCode = 80
	KEY_Q         KeyCode = 81
	KEY_R         KeyCode = 82
	KEY_S         KeyCode = 83
	KEY_T         KeyCode = 84
	KEY_U         KeyCode = 85
	KEY_V         KeyCode = 86
	KEY_W         KeyCode = 87
	KEY_X         KeyCode = 88
	KEY_Y         KeyCode = 89
	KEY_Z         KeyCode = 90
	KEY_ESCAPE    KeyCode = 256
	KEY_ENTER     KeyCode = 257
	KEY_TAB       KeyCode = 258
	KEY_BACKSPACE KeyCode = 259
	KEY_RIGHT     KeyCode = 262
	KEY_LEFT      KeyCode = 263
	KEY_DOWN      KeyCode = 264
	KEY_UP        KeyCode = 265
	KEY_F1        KeyCode = 290
	KEY_F2        KeyCode = 291
	KEY_F3        KeyCode = 292
	KEY_F4        KeyCode = 293
	KEY_F5        KeyCode = 294
	KEY_F6        KeyCode = 295
	KEY_F7        KeyCode = 296
	KEY_F8        KeyCode = 297
	KEY_F9        KeyCode = 298
	KEY_F10       KeyCode = 299
	KEY_F11       KeyCode = 300
	KEY_F12       KeyCode = 301
	KEY_LSHIFT    KeyCode = 340
	KEY_LCONTROL  KeyCode = 341
	KEY_RSHIFT    KeyCode = 344
	KEY_RCONTROL  KeyCode = 345
	KEYS_MAX_KEYS KeyCode = 512
)

// Mouse state structure
type MouseState struct {
	X       float32
	Y       float32
	Buttons [BUTTON_MAX_BUTTONS]bool
}

// Keyboard state structure
type KeyboardState struct {
	Keys [KEYS_MAX_KEYS]bool
}

// Input state structure that holds current and previous states for keyboard and mouse
type InputState struct {
	KeyboardCurrent  KeyboardState
	KeyboardPrevious KeyboardState
	MouseCurrent     MouseState
	MousePrevious    MouseState
}

var onceInput sync.Once
var inputInitialized bool = false
var inputState *InputState = nil

func InputInitialize() error {
	onceInput.Do(func() {
		inputState = &InputState{}
	})
	inputInitialized = true
	LogInfo("Input subsystem initialized.")
	return nil
}

func InputShutdown() error {
	inputInitialized = false
	return nil
}

// InputUpdate copies the current states into the previous ones. Call once per frame
// after everything that reads input ran.
func InputUpdate(deltaTime float64) error {
	if !inputInitialized {
		return nil
	}
	inputState.KeyboardPrevious = inputState.KeyboardCurrent
	inputState.MousePrevious = inputState.MouseCurrent
	return nil
}

// keyboard input
func InputIsKeyDown(key KeyCode) bool {
	if !inputInitialized || key >= KEYS_MAX_KEYS {
		return false
	}
	return inputState.KeyboardCurrent.Keys[key]
}

func InputIsKeyUp(key KeyCode) bool {
	return !InputIsKeyDown(key)
}

func InputWasKeyDown(key KeyCode) bool {
	if !inputInitialized || key >= KEYS_MAX_KEYS {
		return false
	}
	return inputState.KeyboardPrevious.Keys[key]
}

func InputWasKeyUp(key KeyCode) bool {
	return !InputWasKeyDown(key)
}

func InputProcessKey(key KeyCode, pressed bool) error {
	if !inputInitialized || key >= KEYS_MAX_KEYS {
		return nil
	}
	// Only handle this if the state actually changed.
	if inputState.KeyboardCurrent.Keys[key] != pressed {
		inputState.KeyboardCurrent.Keys[key] = pressed

		code := EVENT_CODE_KEY_RELEASED
		if pressed {
			code = EVENT_CODE_KEY_PRESSED
		}
		EventFire(EventContext{
			Type: code,
			Data: &KeyEvent{
				KeyCode: key,
			},
		})
	}
	return nil
}

// mouse input
func InputIsButtonDown(button Button) bool {
	if !inputInitialized || button >= BUTTON_MAX_BUTTONS {
		return false
	}
	return inputState.MouseCurrent.Buttons[button]
}

func InputIsButtonUp(button Button) bool {
	return !InputIsButtonDown(button)
}

func InputWasButtonDown(button Button) bool {
	if !inputInitialized || button >= BUTTON_MAX_BUTTONS {
		return false
	}
	return inputState.MousePrevious.Buttons[button]
}

func InputWasButtonUp(button Button) bool {
	return !InputWasButtonDown(button)
}

// InputGetMousePosition returns the cursor position in window pixels, origin top-left.
func InputGetMousePosition() (float32, float32) {
	if !inputInitialized {
		return 0, 0
	}
	return inputState.MouseCurrent.X, inputState.MouseCurrent.Y
}

func InputGetPreviousMousePosition() (float32, float32) {
	if !inputInitialized {
		return 0, 0
	}
	return inputState.MousePrevious.X, inputState.MousePrevious.Y
}

func InputProcessButton(button Button, pressed bool) error {
	if !inputInitialized || button >= BUTTON_MAX_BUTTONS {
		return nil
	}
	// If the state changed, fire an event.
	if inputState.MouseCurrent.Buttons[button] != pressed {
		inputState.MouseCurrent.Buttons[button] = pressed

		code := EVENT_CODE_BUTTON_RELEASED
		if pressed {
			code = EVENT_CODE_BUTTON_PRESSED
		}
		EventFire(EventContext{
			Type: code,
			Data: &MouseEvent{
				Button: button,
				PosX:   inputState.MouseCurrent.X,
				PosY:   inputState.MouseCurrent.Y,
			},
		})
	}
	return nil
}

func InputProcessMouseMove(x, y float32) error {
	if !inputInitialized {
		return nil
	}
	// Only process if actually different
	if inputState.MouseCurrent.X != x || inputState.MouseCurrent.Y != y {
		inputState.MouseCurrent.X = x
		inputState.MouseCurrent.Y = y

		EventFire(EventContext{
			Type: EVENT_CODE_MOUSE_MOVED,
			Data: &MouseEvent{
				PosX: x,
				PosY: y,
			},
		})
	}
	return nil
}

func InputProcessMouseWheel(zDelta int8) error {
	EventFire(EventContext{
		Type: EVENT_CODE_MOUSE_WHEEL,
		Data: &MouseEvent{
			Scroll: zDelta,
		},
	})
	return nil
}
