// sections.go holds the four growing assembly sections and the MemoryLocation operand model,
// grounded on original_source/src/generator/generator.rs (Sections, MemoryLocation).

package backend

import (
	"fmt"

	"ltc/src/config"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// sections accumulates the four output sections as plain strings; compose renders the final
// assembly listing from them.
type sections struct {
	text     string
	data     string
	bss      string
	readOnly string
}

// locationKind differentiates the forms a MemoryLocation can take.
type locationKind int

const (
	locStack locationKind = iota
	locRegister
	locData
	locValue
)

// MemoryLocation is the operand an expression lowers to: a stack slot relative to the base
// pointer, a register name, a data-section label, or a literal immediate.
type MemoryLocation struct {
	kind   locationKind
	offset int64
	text   string
}

// ---------------------
// ----- functions -----
// ---------------------

// Stack constructs a MemoryLocation addressing offset bytes from the base pointer.
func Stack(offset int64) MemoryLocation { return MemoryLocation{kind: locStack, offset: offset} }

// Register constructs a MemoryLocation naming a register.
func Register(name string) MemoryLocation { return MemoryLocation{kind: locRegister, text: name} }

// Data constructs a MemoryLocation addressing a data/read-only/bss label.
func Data(label string) MemoryLocation { return MemoryLocation{kind: locData, text: label} }

// Value constructs a MemoryLocation holding an immediate operand.
func Value(text string) MemoryLocation { return MemoryLocation{kind: locValue, text: text} }

// Get renders m as a textual assembly operand, per spec §4.5.
func (m MemoryLocation) Get(cfg *config.Configs) string {
	base := cfg.Registers.BasePointer[0]
	switch m.kind {
	case locData:
		return fmt.Sprintf("[%s]", m.text)
	case locRegister:
		return m.text
	case locValue:
		return m.text
	case locStack:
		if m.offset == 0 {
			return fmt.Sprintf("[%s]", base)
		}
		if m.offset > 0 {
			return fmt.Sprintf("[%s+%d]", base, m.offset)
		}
		return fmt.Sprintf("[%s-%d]", base, -m.offset)
	default:
		panic("backend: malformed MemoryLocation")
	}
}

// compose assembles the final listing: `global <entry>` followed by the four sections, each
// under its configured name, in text/data/read-only/bss order.
func compose(cfg *config.Configs, s sections) string {
	return fmt.Sprintf("global %s\nsection %s\n%s\n\nsection %s\n%s\n\nsection %s\n%s\n\nsection %s\n%s\n",
		cfg.Entry,
		cfg.Sections.Text, s.text,
		cfg.Sections.Data, s.data,
		cfg.Sections.ReadOnly, s.readOnly,
		cfg.Sections.Bss, s.bss,
	)
}
