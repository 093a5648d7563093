// Package shingle turns raw text into sets of overlapping token windows.
//
// Text is normalized before tokenizing: it is lowercased with Unicode
// case mapping, every rune that is not a letter, digit, underscore or
// whitespace becomes a space, and the result is split on whitespace.
// A shingle is n consecutive tokens joined by a single space.
//
// Shingling is a pure function and safe for concurrent use.
package shingle
