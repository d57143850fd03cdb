package rule

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical produces canonical JSON for a rule tree.
// CRITICAL: this is the ONLY serialization that should be used for
// structural-identity computation (NodeHash).
//
// Canonical form properties:
//  1. Object keys emitted in a fixed, documented order per node kind
//  2. No HTML escaping (< > & are NOT escaped)
//  3. Strings are NFC normalized before encoding
//  4. Integers only, no floats
//  5. No insignificant whitespace
//
// Shapes:
//
//	{"kind":"Call","name":<string>,"args":[<value>...]}
//	{"kind":"And","children":[<node>...]}
//	{"kind":"Or","children":[<node>...]}
//	{"kind":"Not","child":<node>}
func MarshalCanonical(n Node) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeCanonicalNode(&buf, n); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeCanonicalNode(buf *bytes.Buffer, n Node) error {
	switch node := n.(type) {
	case Call:
		buf.WriteString(`{"kind":"Call","name":`)
		writeCanonicalString(buf, node.Name)
		buf.WriteString(`,"args":[`)
		for i, arg := range node.Args {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonicalValue(buf, arg); err != nil {
				return fmt.Errorf("call %q arg %d: %w", node.Name, i, err)
			}
		}
		buf.WriteString("]}")
		return nil
	case And:
		return writeCanonicalComposite(buf, "And", node.Children)
	case Or:
		return writeCanonicalComposite(buf, "Or", node.Children)
	case Not:
		if node.Child == nil {
			return fmt.Errorf("Not node has nil child")
		}
		buf.WriteString(`{"kind":"Not","child":`)
		if err := writeCanonicalNode(buf, node.Child); err != nil {
			return err
		}
		buf.WriteByte('}')
		return nil
	case nil:
		return fmt.Errorf("nil node")
	default:
		return fmt.Errorf("unknown node type: %T", n)
	}
}

func writeCanonicalComposite(buf *bytes.Buffer, kind string, children []Node) error {
	fmt.Fprintf(buf, `{"kind":%q,"children":[`, kind)
	for i, child := range children {
		if i > 0 {
			buf.WriteByte(',')
		}
		if child == nil {
			return fmt.Errorf("%s child %d is nil", kind, i)
		}
		if err := writeCanonicalNode(buf, child); err != nil {
			return err
		}
	}
	buf.WriteString("]}")
	return nil
}

func writeCanonicalValue(buf *bytes.Buffer, v Value) error {
	switch val := v.(type) {
	case String:
		writeCanonicalString(buf, string(val))
		return nil
	case Int:
		fmt.Fprintf(buf, "%d", int64(val))
		return nil
	case Bool:
		if val {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
		return nil
	case nil:
		return fmt.Errorf("nil value")
	default:
		return fmt.Errorf("unknown value type: %T", v)
	}
}

// writeCanonicalString encodes a string as canonical JSON: NFC
// normalized, minimal escaping, no HTML escaping.
func writeCanonicalString(buf *bytes.Buffer, s string) {
	s = norm.NFC.String(s)

	buf.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\b':
			buf.WriteString(`\b`)
		case '\f':
			buf.WriteString(`\f`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			if r < 0x20 {
				fmt.Fprintf(buf, `\u%04x`, r)
			} else if r == utf8.RuneError {
				// Invalid UTF-8 input bytes become the replacement rune.
				buf.WriteRune(utf8.RuneError)
			} else {
				buf.WriteRune(r)
			}
		}
	}
	buf.WriteByte('"')
}
