package rule

import (
	"fmt"
	"strconv"
)

// Kind identifies the declared kind of a helper argument.
type Kind int

const (
	// KindString is a plain string argument.
	KindString Kind = iota
	// KindInt is an integer argument. Always int64 - floats are
	// forbidden in rule trees (they break deterministic hashing).
	KindInt
	// KindBool is a boolean argument.
	KindBool
	// KindItem is an item name. Item names travel as strings but are
	// declared distinctly so signatures document intent and linters can
	// cross-check them against game item tables.
	KindItem
)

// String returns the kind's name as used in signatures and diagnostics.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	case KindItem:
		return "item"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Value is a sealed interface representing a literal helper argument.
// Only String, Int, and Bool implement it. NO float variant - floats
// are forbidden in rule trees.
type Value interface {
	ruleValue() // Sealed - only these types implement it

	// Kind returns the value's runtime kind. Item-kinded signature
	// slots accept String values.
	Kind() Kind
}

// String is a string (or item-name) argument literal.
type String string

func (String) ruleValue() {}

// Kind implements Value.
func (String) Kind() Kind { return KindString }

// Int is an integer argument literal.
type Int int64

func (Int) ruleValue() {}

// Kind implements Value.
func (Int) Kind() Kind { return KindInt }

// Bool is a boolean argument literal.
type Bool bool

func (Bool) ruleValue() {}

// Kind implements Value.
func (Bool) Kind() Kind { return KindBool }

// Matches reports whether a value of kind vk satisfies a signature slot
// of kind sk. Item slots accept strings; everything else is exact.
func Matches(sk, vk Kind) bool {
	if sk == KindItem {
		return vk == KindString
	}
	return sk == vk
}

// GoString renders a value as Go-ish literal text for diagnostics.
func GoString(v Value) string {
	switch val := v.(type) {
	case String:
		return strconv.Quote(string(val))
	case Int:
		return strconv.FormatInt(int64(val), 10)
	case Bool:
		return strconv.FormatBool(bool(val))
	default:
		return fmt.Sprintf("%v", v)
	}
}
