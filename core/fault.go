package core

import (
	"errors"
	"fmt"

	"github.com/sarchlab/craftsim/instr"
)

var (
	// ErrArithmeticOverflow is raised by instructions that trap on signed
	// overflow. The destination register is left untouched.
	ErrArithmeticOverflow = errors.New("arithmetic overflow")

	// ErrDivideByZero is raised by division with a zero divisor. The
	// destination register is left untouched.
	ErrDivideByZero = errors.New("division by zero")
)

// FaultKind classifies why an instruction stopped.
type FaultKind int

const (
	FaultEncoding FaultKind = iota
	FaultOverflow
	FaultAddress
	FaultDivideByZero
)

func (k FaultKind) String() string {
	switch k {
	case FaultEncoding:
		return "encoding"
	case FaultOverflow:
		return "overflow"
	case FaultAddress:
		return "address"
	case FaultDivideByZero:
		return "divide-by-zero"
	default:
		return fmt.Sprintf("FaultKind(%d)", int(k))
	}
}

// ParseFaultKind is the inverse of FaultKind.String.
func ParseFaultKind(s string) (FaultKind, error) {
	for k := FaultEncoding; k <= FaultDivideByZero; k++ {
		if k.String() == s {
			return k, nil
		}
	}

	return 0, fmt.Errorf("unknown fault kind %q", s)
}

// Fault is the error every failed instruction is reported as.
type Fault struct {
	Kind     FaultKind
	Mnemonic string
	Word     uint32
	PC       uint32
	Err      error
}

func (f *Fault) Error() string {
	name := f.Mnemonic
	if name == "" {
		name = fmt.Sprintf("0x%08x", f.Word)
	}

	return fmt.Sprintf("%s fault at pc 0x%08x (%s): %v", f.Kind, f.PC, name, f.Err)
}

func (f *Fault) Unwrap() error {
	return f.Err
}

func newFault(spec *instr.Spec, word uint32, err error) *Fault {
	f := &Fault{
		Kind:     FaultAddress,
		Mnemonic: spec.Mnemonic,
		Word:     word,
		Err:      err,
	}

	switch {
	case errors.Is(err, ErrArithmeticOverflow):
		f.Kind = FaultOverflow
	case errors.Is(err, ErrDivideByZero):
		f.Kind = FaultDivideByZero
	case errors.Is(err, instr.ErrNotFound):
		f.Kind = FaultEncoding
	}

	return f
}
