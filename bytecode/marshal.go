package bytecode

import (
	"errors"
	"fmt"

	"github.com/deepnoodle-ai/bytelox/errz"
	"github.com/deepnoodle-ai/bytelox/value"
	"github.com/fxamacker/cbor/v2"
)

// FormatVersion is the current serialization format version.
// Increment when making incompatible changes to the format.
const FormatVersion = 1

// ErrInvalidFormat is returned by Unmarshal for data that does not describe a
// well-formed chunk.
var ErrInvalidFormat = errors.New("invalid chunk encoding")

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	if encMode, err = cbor.CoreDetEncOptions().EncMode(); err != nil {
		panic(err)
	}
	decMode, err = cbor.DecOptions{
		DupMapKey: cbor.DupMapKeyEnforcedAPF,
	}.DecMode()
	if err != nil {
		panic(err)
	}
}

// Serialization types

type chunkState struct {
	Version   int           `cbor:"1,keyasint"`
	ID        string        `cbor:"2,keyasint"`
	Code      []byte        `cbor:"3,keyasint"`
	Lines     []lineRunDef  `cbor:"4,keyasint"`
	Constants []constantDef `cbor:"5,keyasint"`
}

type lineRunDef struct {
	Offset int `cbor:"1,keyasint"`
	Line   int `cbor:"2,keyasint"`
}

type constantDef struct {
	Kind   uint8   `cbor:"1,keyasint"`
	Number float64 `cbor:"2,keyasint"`
}

// Marshal converts a Chunk into its CBOR representation.
func Marshal(c *Chunk) ([]byte, error) {
	state := chunkState{
		Version: FormatVersion,
		ID:      c.id,
		Code:    c.code,
	}
	for _, run := range c.lines {
		state.Lines = append(state.Lines, lineRunDef{Offset: run.Offset, Line: run.Line})
	}
	for i, v := range c.constants {
		def, err := constantFromValue(v)
		if err != nil {
			return nil, fmt.Errorf("constant %d: %w", i, err)
		}
		state.Constants = append(state.Constants, def)
	}
	return encMode.Marshal(state)
}

// Unmarshal converts a CBOR representation into a Chunk, validating the
// invariants a compiler-built chunk satisfies.
func Unmarshal(data []byte) (*Chunk, error) {
	var state chunkState
	if err := decMode.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if state.Version != FormatVersion {
		return nil, fmt.Errorf("%w: unsupported version %d (want %d)",
			ErrInvalidFormat, state.Version, FormatVersion)
	}
	if len(state.Constants) > MaxConstants {
		return nil, fmt.Errorf("%w: %w (%d constants)",
			ErrInvalidFormat, errz.ErrTooManyConstants, len(state.Constants))
	}
	c := &Chunk{
		id:   state.ID,
		code: copyBytes(state.Code),
	}
	if c.code == nil {
		c.code = []byte{}
	}
	for _, run := range state.Lines {
		c.lines = append(c.lines, LineRun{Offset: run.Offset, Line: run.Line})
	}
	if err := validateLines(c.lines, len(c.code)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	for i, def := range state.Constants {
		v, err := def.toValue()
		if err != nil {
			return nil, fmt.Errorf("%w: constant %d: %v", ErrInvalidFormat, i, err)
		}
		c.constants = append(c.constants, v)
	}
	return c, nil
}

func constantFromValue(v value.Value) (constantDef, error) {
	switch v.Kind() {
	case value.KindNumber:
		f, _ := v.AsNumber()
		return constantDef{Kind: uint8(value.KindNumber), Number: f}, nil
	default:
		return constantDef{}, fmt.Errorf("unsupported constant kind %s", v.Kind())
	}
}

func (d constantDef) toValue() (value.Value, error) {
	switch value.Kind(d.Kind) {
	case value.KindNumber:
		return value.Number(d.Number), nil
	default:
		return value.Value{}, fmt.Errorf("unsupported constant kind %s", value.Kind(d.Kind))
	}
}
