// Package symbols provides generic management of address keyed symbols.
package symbols

import (
	"slices"

	"github.com/retroenv/retrogolib/set"
)

// Manager tracks symbols of type T by their memory address and keeps a
// separate set of addresses that have been referenced.
type Manager[T any] struct {
	items map[uint16]T
	used  set.Set[uint16]
}

// New creates a new symbol manager.
func New[T any]() *Manager[T] {
	return &Manager[T]{
		items: make(map[uint16]T),
		used:  set.New[uint16](),
	}
}

// Get returns the symbol at the given address.
func (m *Manager[T]) Get(address uint16) (T, bool) {
	item, ok := m.items[address]
	return item, ok
}

// Set sets the symbol at the given address.
func (m *Manager[T]) Set(address uint16, item T) {
	m.items[address] = item
}

// Has returns whether a symbol exists at the given address.
func (m *Manager[T]) Has(address uint16) bool {
	_, ok := m.items[address]
	return ok
}

// Len returns the number of symbols.
func (m *Manager[T]) Len() int {
	return len(m.items)
}

// Addresses returns the addresses of all symbols in ascending order.
func (m *Manager[T]) Addresses() []uint16 {
	addresses := make([]uint16, 0, len(m.items))
	for address := range m.items {
		addresses = append(addresses, address)
	}
	slices.Sort(addresses)
	return addresses
}

// MarkUsed marks an address as used.
func (m *Manager[T]) MarkUsed(address uint16) {
	m.used.Add(address)
}

// IsUsed returns whether an address is marked as used.
func (m *Manager[T]) IsUsed(address uint16) bool {
	return m.used.Contains(address)
}
