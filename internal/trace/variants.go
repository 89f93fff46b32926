package trace

import (
	"fmt"

	"github.com/ringscope/ringscope/internal/target"
)

// PayloadDecoder reads a variant's payload field relative to the entry
// address and renders it for display. The offset and width are part of the
// firmware's wire layout, supplied per variant, never guessed.
type PayloadDecoder func(r target.MemoryReader, entryAddr uint64) (string, error)

// Variant describes one arm of the firmware's trace enum.
type Variant struct {
	// Name is the variant name as declared in the firmware source.
	Name string

	// Payload decodes the variant's data field, or nil for unit variants.
	Payload PayloadDecoder
}

// VariantTable maps a discriminant byte to its variant description. Treated
// as read-only configuration for the lifetime of a decode pass.
type VariantTable map[uint8]Variant

// U8At decodes a one-byte payload at the given offset from the entry start.
func U8At(offset uint64) PayloadDecoder {
	return func(r target.MemoryReader, entryAddr uint64) (string, error) {
		v, err := target.ReadU8(r, entryAddr+offset)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d", v), nil
	}
}

// U32At decodes a 4-byte payload at the given offset from the entry start.
func U32At(offset uint64) PayloadDecoder {
	return func(r target.MemoryReader, entryAddr uint64) (string, error) {
		v, err := target.ReadU32(r, entryAddr+offset)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d", v), nil
	}
}

// EnumAt decodes a 4-byte code at the given offset and renders it through a
// code-to-name table. Codes missing from the table render as Code<n>.
func EnumAt(offset uint64, names map[uint32]string) PayloadDecoder {
	return func(r target.MemoryReader, entryAddr uint64) (string, error) {
		v, err := target.ReadU32(r, entryAddr+offset)
		if err != nil {
			return "", err
		}
		if name, ok := names[v]; ok {
			return name, nil
		}
		return fmt.Sprintf("Code%d", v), nil
	}
}
