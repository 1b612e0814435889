package compose

import (
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// Mode selects the authoring surface.
type Mode string

const (
	ModeHTML Mode = "html" // raw HTML source, sent as is
	ModeRich Mode = "rich" // rich-text editor output, wrapped before use
)

// ErrEmptyBody is returned when the active surface has nothing to send.
var ErrEmptyBody = errors.New("email body is empty")

// ParseMode converts a user supplied string to a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeHTML, "":
		return ModeHTML, nil
	case ModeRich:
		return ModeRich, nil
	default:
		return "", errors.Errorf("unknown editor mode: %q", s)
	}
}

// Assets is the markup injected into the head of wrapped documents.
type Assets struct {
	FontLink   string `yaml:"font_link"`
	StyleBlock string `yaml:"style_block"`
}

// DefaultAssets returns the stock font link and style block.
func DefaultAssets() Assets {
	return Assets{FontLink: DefaultFontLink, StyleBlock: DefaultStyleBlock}
}

// Editor holds the two mutually exclusive authoring surfaces. Switching modes
// is a two step operation: RequestMode reports whether confirmation is
// needed, ConfirmSwitch applies it and clears the surface being left.
type Editor struct {
	mx      sync.Mutex
	mode    Mode
	pending Mode
	html    string
	rich    string
	assets  Assets
}

func NewEditor(mode Mode, assets Assets) *Editor {
	if mode == "" {
		mode = ModeHTML
	}
	return &Editor{mode: mode, assets: assets}
}

func (e *Editor) Mode() Mode {
	e.mx.Lock()
	defer e.mx.Unlock()
	return e.mode
}

// SetHTML replaces the raw HTML surface.
func (e *Editor) SetHTML(src string) {
	e.mx.Lock()
	defer e.mx.Unlock()
	e.html = src
}

// SetRich replaces the rich-text surface.
func (e *Editor) SetRich(fragment string) {
	e.mx.Lock()
	defer e.mx.Unlock()
	e.rich = fragment
}

// Load puts src into the surface of the current mode.
func (e *Editor) Load(src string) {
	e.mx.Lock()
	defer e.mx.Unlock()
	if e.mode == ModeRich {
		e.rich = src
		return
	}
	e.html = src
}

// RequestMode asks to switch to m. It returns true when the switch is
// destructive and waits for ConfirmSwitch or CancelSwitch.
func (e *Editor) RequestMode(m Mode) bool {
	e.mx.Lock()
	defer e.mx.Unlock()
	if m == e.mode {
		e.pending = ""
		return false
	}
	e.pending = m
	return true
}

// ConfirmSwitch applies the pending mode and clears the other surface.
// It returns false when no switch was pending.
func (e *Editor) ConfirmSwitch() bool {
	e.mx.Lock()
	defer e.mx.Unlock()
	if e.pending == "" {
		return false
	}
	e.mode = e.pending
	e.pending = ""
	if e.mode == ModeHTML {
		e.rich = ""
	} else {
		e.html = ""
	}
	return true
}

// CancelSwitch drops a pending switch.
func (e *Editor) CancelSwitch() {
	e.mx.Lock()
	defer e.mx.Unlock()
	e.pending = ""
}

// Body returns the send-able document for the active surface.
func (e *Editor) Body() (string, error) {
	e.mx.Lock()
	defer e.mx.Unlock()
	if e.mode == ModeRich {
		return Wrap(e.rich, e.assets.FontLink, e.assets.StyleBlock), nil
	}
	if strings.TrimSpace(e.html) == "" {
		return "", ErrEmptyBody
	}
	return e.html, nil
}

// Reset clears both surfaces and returns to HTML mode.
func (e *Editor) Reset() {
	e.mx.Lock()
	defer e.mx.Unlock()
	e.mode = ModeHTML
	e.pending = ""
	e.html = ""
	e.rich = ""
}
