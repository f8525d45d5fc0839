package xo

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Symbol is the mark a seat places on the board. The zero value is an empty cell.
type Symbol string

const (
	Empty         Symbol = ""
	DefaultFirst  Symbol = "❌"
	DefaultSecond Symbol = "⭕"
)

// maxSymbolRunes leaves room for emoji carrying a variation selector or a skin tone.
const maxSymbolRunes = 4

// SymbolPair is the pair of marks agreed before matchmaking; First belongs to seat 1.
type SymbolPair struct {
	First  Symbol `json:"first"`
	Second Symbol `json:"second"`
}

func DefaultSymbols() SymbolPair { return SymbolPair{First: DefaultFirst, Second: DefaultSecond} }

// NewSymbolPair validates a custom pair.
func NewSymbolPair(first, second string) (SymbolPair, error) {
	a, b := strings.TrimSpace(first), strings.TrimSpace(second)
	if !validSymbol(a) || !validSymbol(b) || a == b {
		return SymbolPair{}, ErrInvalidSymbols
	}
	return SymbolPair{First: Symbol(a), Second: Symbol(b)}, nil
}

// Validate reports ErrInvalidSymbols for a pair that could not be told apart on the board.
func (p SymbolPair) Validate() error {
	if _, err := NewSymbolPair(string(p.First), string(p.Second)); err != nil {
		return err
	}
	if strings.TrimSpace(string(p.First)) != string(p.First) || strings.TrimSpace(string(p.Second)) != string(p.Second) {
		return ErrInvalidSymbols
	}
	return nil
}

func validSymbol(s string) bool {
	if s == "" || !utf8.ValidString(s) || utf8.RuneCountInString(s) > maxSymbolRunes {
		return false
	}
	for _, r := range s {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return false
		}
	}
	return true
}
