// Package keymap maps host keyboard keys to the CHIP-8 hexadecimal keypad.
//
// The keypad is laid out on the left block of a QWERTY keyboard:
//
//	1 2 3 C      1 2 3 4
//	4 5 6 D  ->  q w e r
//	7 8 9 E      a s d f
//	A 0 B F      z x c v
package keymap

import "unicode"

// Layout lists the host keys in keypad order, Layout[i] is the key for keypad index i.
var Layout = [16]rune{
	'x', '1', '2', '3',
	'q', 'w', 'e', 'a',
	's', 'd', 'z', 'c',
	'4', 'r', 'f', 'v',
}

var index = func() map[rune]int {
	m := make(map[rune]int, len(Layout))
	for i, r := range Layout {
		m[r] = i
	}
	return m
}()

// Index returns the keypad index for a host key. Letters match case insensitively.
func Index(r rune) (int, bool) {
	i, ok := index[unicode.ToLower(r)]
	return i, ok
}
