package core

// ClipboardKind selects between the regular clipboard and the primary
// selection.
type ClipboardKind uint8

const (
	ClipboardStandard ClipboardKind = iota
	ClipboardPrimary
)

// Clipboard is the storage a UI tree and clipboard actions read and write.
type Clipboard interface {
	Read(kind ClipboardKind) (string, bool)
	Write(kind ClipboardKind, contents string)
}

// ClipboardContents is the reply to a clipboard read.
type ClipboardContents struct {
	Contents string
	OK       bool
}

// NullClipboard stores nothing.
type NullClipboard struct{}

func (NullClipboard) Read(ClipboardKind) (string, bool) { return "", false }
func (NullClipboard) Write(ClipboardKind, string)       {}
