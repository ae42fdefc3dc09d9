package core

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// SourceEncoding tells how the text of a Source is stored.
type SourceEncoding int

const (
	// SourceRaw holds plain text.
	SourceRaw SourceEncoding = iota
	// SourceEncoded holds base64 text.
	SourceEncoded
)

// Source is a piece of code carried inside an entity spec. Its encoding is
// decided once where the value enters the system, never guessed later.
type Source struct {
	encoding SourceEncoding
	text     string
}

// Raw wraps plain text.
func Raw(text string) Source {
	return Source{encoding: SourceRaw, text: text}
}

// Encoded wraps base64 text.
func Encoded(text string) Source {
	return Source{encoding: SourceEncoded, text: text}
}

// Encoding returns how the value is stored.
func (s Source) Encoding() SourceEncoding { return s.encoding }

// IsZero reports whether the source carries no text.
func (s Source) IsZero() bool { return s.text == "" }

// Text returns the plain text.
func (s Source) Text() (string, error) {
	if s.encoding == SourceRaw {
		return s.text, nil
	}
	return DecodeString(s.text)
}

// EncodedText returns the base64 form.
func (s Source) EncodedText() string {
	if s.encoding == SourceEncoded {
		return s.text
	}
	return EncodeString(s.text)
}

// ParseSource resolves a value coming from a document. An explicit
// "base64" encoding marks encoded text; anything else is raw.
func ParseSource(text, encoding string) (Source, error) {
	switch strings.ToLower(encoding) {
	case "", "raw", "text":
		return Raw(text), nil
	case "base64":
		if _, err := DecodeString(text); err != nil {
			return Source{}, err
		}
		return Encoded(text), nil
	default:
		return Source{}, fmt.Errorf("unknown source encoding %q", encoding)
	}
}

// EncodeString encodes text for embedding in a structured document.
func EncodeString(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

// DecodeString reverses EncodeString.
func DecodeString(s string) (string, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return "", fmt.Errorf("invalid base64 text: %w", err)
	}
	return string(b), nil
}
