package markov

import "unicode"

// Alphabet is the number of distinct symbols. Every node carries exactly one
// edge per symbol.
const Alphabet = 27

// Symbol is an integer-coded unit of text. 0 stands for any non-letter
// character, 1 through 26 stand for the letters a through z.
type Symbol uint8

// SeparatorSymbol is the symbol every non-letter collapses to.
const SeparatorSymbol Symbol = 0

// Valid reports whether s lies inside the alphabet.
func (s Symbol) Valid() bool {
	return s < Alphabet
}

// String returns the decoded character of s.
func (s Symbol) String() string {
	return string(Decode(s))
}

// Encode maps a character to its symbol. ASCII letters are case-folded to
// 1..26, everything else maps to 0.
func Encode(c rune) Symbol {
	c = unicode.ToLower(c)
	if c >= 'a' && c <= 'z' {
		return Symbol(c-'a') + 1
	}
	return SeparatorSymbol
}

// Decode maps a symbol back to a character: 0 becomes a space and n becomes
// the n-th lowercase letter. Out-of-range symbols decode to a space.
func Decode(s Symbol) rune {
	if s == SeparatorSymbol || !s.Valid() {
		return ' '
	}
	return 'a' + rune(s) - 1
}

// EncodeString encodes every rune of text.
func EncodeString(text string) []Symbol {
	symbols := make([]Symbol, 0, len(text))
	for _, c := range text {
		symbols = append(symbols, Encode(c))
	}
	return symbols
}

// DecodeString decodes a symbol sequence into a string.
func DecodeString(symbols []Symbol) string {
	buf := make([]rune, len(symbols))
	for i, s := range symbols {
		buf[i] = Decode(s)
	}
	return string(buf)
}
