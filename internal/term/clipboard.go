package term

import (
	"sync"

	"github.com/atotto/clipboard"
	"pkt.systems/pslog"

	"github.com/jakebf/layershell/core"
)

// Clipboard is the system clipboard. Contents are kept in memory as well so
// reads still work where no clipboard utility is installed. The primary
// selection only lives in memory.
type Clipboard struct {
	log pslog.Logger

	mu       sync.Mutex
	memory   map[core.ClipboardKind]string
	warned   bool
	noSystem bool
}

// NewClipboard returns a clipboard that logs system failures to log.
func NewClipboard(log pslog.Logger) *Clipboard {
	return &Clipboard{
		log:      log,
		memory:   make(map[core.ClipboardKind]string),
		noSystem: clipboard.Unsupported,
	}
}

func (c *Clipboard) Read(kind core.ClipboardKind) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if kind == core.ClipboardStandard && !c.noSystem {
		text, err := clipboard.ReadAll()
		if err == nil {
			return text, true
		}
		c.warn("clipboard read failed", err)
	}
	text, ok := c.memory[kind]
	return text, ok
}

func (c *Clipboard) Write(kind core.ClipboardKind, contents string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.memory[kind] = contents
	if kind != core.ClipboardStandard || c.noSystem {
		return
	}
	if err := clipboard.WriteAll(contents); err != nil {
		c.warn("clipboard write failed", err)
	}
}

// warn logs the first system failure. c.mu must be held.
func (c *Clipboard) warn(msg string, err error) {
	if c.warned || c.log == nil {
		return
	}
	c.warned = true
	c.log.Warn(msg, "err", err)
}
