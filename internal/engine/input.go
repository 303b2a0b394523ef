package engine

import "github.com/dshills/inkwell/internal/engine/paste"

// InputType is the closed set of host input events the surface consumes.
type InputType uint8

const (
	// InputUnknown is any input the surface has no command for.
	InputUnknown InputType = iota

	// InputInsertText types text at the caret.
	InputInsertText

	// InputInsertParagraph splits the paragraph at the caret.
	InputInsertParagraph

	// InputDeleteByCut removes the selected range.
	InputDeleteByCut

	// InputDeleteContentBackward is a backspace.
	InputDeleteContentBackward

	// InputDeleteContentForward is a forward delete.
	InputDeleteContentForward

	// InputInsertFromPaste inserts a plain-text or rich-text payload.
	InputInsertFromPaste

	// InputInsertCompositionText is IME composition in progress.
	InputInsertCompositionText

	// InputCompositionEnd ends an IME composition.
	InputCompositionEnd

	// InputHistoryUndo is an undo originated by the host.
	InputHistoryUndo

	// InputHistoryRedo is a redo originated by the host.
	InputHistoryRedo
)

var inputNames = [...]string{
	InputUnknown:               "unknown",
	InputInsertText:            "insertText",
	InputInsertParagraph:       "insertParagraph",
	InputDeleteByCut:           "deleteByCut",
	InputDeleteContentBackward: "deleteContentBackward",
	InputDeleteContentForward:  "deleteContentForward",
	InputInsertFromPaste:       "insertFromPaste",
	InputInsertCompositionText: "insertCompositionText",
	InputCompositionEnd:        "compositionEnd",
	InputHistoryUndo:           "historyUndo",
	InputHistoryRedo:           "historyRedo",
}

// String returns the host name of the input type.
func (t InputType) String() string {
	if int(t) < len(inputNames) {
		return inputNames[t]
	}
	return inputNames[InputUnknown]
}

// ParseInputType maps a host input type name onto an InputType. Names
// without a command map to InputUnknown.
func ParseInputType(name string) InputType {
	for i, n := range inputNames {
		if i != int(InputUnknown) && n == name {
			return InputType(i)
		}
	}
	return InputUnknown
}

// IsComposition reports whether t belongs to IME composition.
func (t InputType) IsComposition() bool {
	return t == InputInsertCompositionText || t == InputCompositionEnd
}

// IsHistory reports whether t is a host undo or redo.
func (t InputType) IsHistory() bool {
	return t == InputHistoryUndo || t == InputHistoryRedo
}

// InputEvent is one host input event.
type InputEvent struct {
	Type InputType

	// Data is the text for InputInsertText. For InputInsertFromPaste it
	// is used as plain text when Paste is empty.
	Data string

	// Paste is the clipboard payload for InputInsertFromPaste.
	Paste paste.Data
}

// Result describes how an input event was handled.
type Result struct {
	// Prevented reports that the surface handled the event itself and
	// the host must suppress its native behavior.
	Prevented bool

	// Added, Updated and Removed count the ledger entries of the command.
	Added   int
	Updated int
	Removed int
}

// Changed reports whether the command touched the tree.
func (r Result) Changed() bool {
	return r.Added+r.Updated+r.Removed > 0
}
