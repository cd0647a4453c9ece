// Package config loads the target-specific Configs value that parameterizes the core compiler:
// primitive sizes, section names, the entry symbol and the register file. Parsing the on-disk
// document is outside the compiler core (see spec §1), but this package is the external
// collaborator the core reads Configs through, grounded on original_source/src/constants.rs.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Sizes holds the byte widths of the pointer and literal types.
type Sizes struct {
	Pointer  uint64 `toml:"pointer"`
	IntLit   uint64 `toml:"int_lit"`
	FloatLit uint64 `toml:"float_lit"`
	CharLit  uint64 `toml:"char_lit"`
}

// ByName looks a size up by the name used in source-level getconfig(...) calls.
func (s Sizes) ByName(name string) (uint64, error) {
	switch name {
	case "ptr_size":
		return s.Pointer, nil
	case "intl_size":
		return s.IntLit, nil
	case "floatl_size":
		return s.FloatLit, nil
	case "charl_size":
		return s.CharLit, nil
	default:
		return 0, fmt.Errorf("config %s does not exist", name)
	}
}

// Sections holds the textual names of the four output assembly sections.
type Sections struct {
	ReadOnly string `toml:"read_only"`
	Text     string `toml:"text"`
	Data     string `toml:"data"`
	Bss      string `toml:"bss"`
}

// Registers holds the target's register file, organised by bank (outer index) and width (inner
// index, widest first).
type Registers struct {
	Basic          [][]string `toml:"basic"`
	Simds          [][]string `toml:"simds"`
	StackPointer   []string   `toml:"stack_pointer"`
	BasePointer    []string   `toml:"base_pointer"`
	ReturnRegister []string   `toml:"return_register"`
	BiggestSize    int        `toml:"biggest_size"`
	BiggestSimd    int        `toml:"biggest_simd"`
}

// Configs is the immutable, process-wide configuration read by the tokenizer, parser and
// generator. It must be loaded once before compilation begins; nothing in the core ever mutates
// it.
type Configs struct {
	Sizes             Sizes     `toml:"sizes"`
	Sections          Sections  `toml:"sections"`
	Entry             string    `toml:"entry"`
	Registers         Registers `toml:"registers"`
	InstructionSuffix string    `toml:"instruction_suffix"`
}

// ---------------------
// ----- Constants -----
// ---------------------

// Extension is the forced file extension of the TOML configuration document.
const Extension = ".toml"

//go:embed default_config.toml
var defaultConfig string

// ---------------------
// ----- functions -----
// ---------------------

// Load reads and decodes the TOML configuration document at path. If the file does not exist, the
// embedded default document is written to path verbatim first, matching the driver-level contract
// of spec §6.
func Load(path string) (*Configs, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.WriteFile(path, []byte(defaultConfig), 0644); err != nil {
			return nil, fmt.Errorf("could not write default configuration to %s: %w", path, err)
		}
	}

	var c Configs
	if _, err := toml.DecodeFile(path, &c); err != nil {
		return nil, fmt.Errorf("could not parse configuration %s: %w", path, err)
	}
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration %s: %w", path, err)
	}
	return &c, nil
}

// validate checks the minimal invariants the core relies on: BiggestSize must be positive, the
// base-pointer, stack-pointer and return-register lists must be non-empty, and no basic bank may be
// empty. The number of widths in a bank is not checked against BiggestSize/BiggestSimd.
func (c *Configs) validate() error {
	if c.Registers.BiggestSize <= 0 {
		return fmt.Errorf("registers.biggest_size must be positive")
	}
	if len(c.Registers.BasePointer) == 0 || len(c.Registers.StackPointer) == 0 {
		return fmt.Errorf("registers.base_pointer and registers.stack_pointer must not be empty")
	}
	if len(c.Registers.ReturnRegister) == 0 {
		return fmt.Errorf("registers.return_register must not be empty")
	}
	for i1, bank := range c.Registers.Basic {
		if len(bank) == 0 {
			return fmt.Errorf("registers.basic[%d] must not be empty", i1)
		}
	}
	return nil
}

// WidthIndex returns the bank-local index of the register width that holds size bytes, given the
// widest register of that bank is biggest bytes wide: index = log2(biggest/size).
func WidthIndex(biggest, size int) int {
	idx := 0
	for b := biggest; b > size; b >>= 1 {
		idx++
	}
	return idx
}
