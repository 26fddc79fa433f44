package instr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by Lookup for words no instruction claims.
	ErrNotFound = errors.New("no instruction matches word")

	// ErrEncodingCollision is returned when two instructions could both
	// match the same word.
	ErrEncodingCollision = errors.New("encoding collision")

	// ErrCatalogFrozen is returned by Register after Freeze.
	ErrCatalogFrozen = errors.New("catalog is frozen")

	// ErrDuplicateMnemonic is returned when a mnemonic is registered twice.
	ErrDuplicateMnemonic = errors.New("duplicate mnemonic")
)

// Description is the user-facing summary of one instruction.
type Description struct {
	Mnemonic    string
	Syntax      string
	Description string
}

// Catalog is the table of instructions of one instruction set. It is
// built once, frozen, and then only read, so it can be shared between
// any number of execution contexts.
type Catalog struct {
	name        string
	description string

	specs      []*Spec
	byMnemonic map[string]*Spec
	byOpcode   map[uint32][]*Spec
	frozen     bool
}

// NewCatalog creates an empty catalog.
func NewCatalog(name, description string) *Catalog {
	return &Catalog{
		name:        name,
		description: description,
		byMnemonic:  make(map[string]*Spec),
		byOpcode:    make(map[uint32][]*Spec),
	}
}

func (c *Catalog) Name() string        { return c.name }
func (c *Catalog) Description() string { return c.description }
func (c *Catalog) Len() int            { return len(c.specs) }

// Register adds an instruction. It fails if the template is malformed, if
// the mnemonic is taken, or if the fixed bits overlap an instruction that
// is already registered.
func (c *Catalog) Register(spec Spec) error {
	if c.frozen {
		return fmt.Errorf("register %s: %w", spec.Mnemonic, ErrCatalogFrozen)
	}

	s := &spec
	if err := s.compile(); err != nil {
		return err
	}

	if _, ok := c.byMnemonic[s.Mnemonic]; ok {
		return fmt.Errorf("%s: %w", s.Mnemonic, ErrDuplicateMnemonic)
	}

	for _, other := range c.specs {
		if s.enc.Overlaps(other.enc) {
			return fmt.Errorf("%s and %s: %w", s.Mnemonic, other.Mnemonic, ErrEncodingCollision)
		}
	}

	c.specs = append(c.specs, s)
	c.byMnemonic[s.Mnemonic] = s

	op := s.enc.Test >> 26
	c.byOpcode[op] = append(c.byOpcode[op], s)

	return nil
}

// Freeze ends the build phase. Register fails afterwards. Freezing a
// frozen catalog writes nothing, so emulators may share one.
func (c *Catalog) Freeze() {
	if !c.frozen {
		c.frozen = true
	}
}

func (c *Catalog) Frozen() bool {
	return c.frozen
}

// Lookup finds the instruction that owns the word. The error wraps
// ErrNotFound when there is none.
func (c *Catalog) Lookup(word uint32) (*Spec, error) {
	for _, s := range c.byOpcode[Word(word).Opcode()] {
		if s.enc.Matches(word) {
			return s, nil
		}
	}

	return nil, fmt.Errorf("0x%08x: %w", word, ErrNotFound)
}

// LookupMnemonic finds an instruction by name.
func (c *Catalog) LookupMnemonic(mnemonic string) (*Spec, error) {
	s, ok := c.byMnemonic[mnemonic]
	if !ok {
		return nil, fmt.Errorf("mnemonic %q: %w", mnemonic, ErrNotFound)
	}

	return s, nil
}

// Specs returns the instructions in registration order.
func (c *Catalog) Specs() []*Spec {
	out := make([]*Spec, len(c.specs))
	copy(out, c.specs)

	return out
}

// Describe lists mnemonic, syntax and description of every instruction in
// registration order.
func (c *Catalog) Describe() []Description {
	out := make([]Description, 0, len(c.specs))
	for _, s := range c.specs {
		out = append(out, Description{
			Mnemonic:    s.Mnemonic,
			Syntax:      s.Syntax,
			Description: s.Description,
		})
	}

	return out
}
