package accounts

import (
	"fmt"
	"math/big"
	"strings"
)

// DefaultNames is the initial candidate list for generated account names.
var DefaultNames = []string{
	"Phoenix",
	"Matilda",
	"Sirius",
	"Topa",
	"Atos",
	"Sport",
	"Lola",
	"Foz",
}

// Identity is a generated display name and avatar for an account.
type Identity struct {
	Name   string
	Avatar string
}

// IdentityAllocator hands out default account names. It is a value: Allocate
// never mutates the receiver and returns the allocator to use next.
//
// The name assigned to an address depends on every allocation made before it,
// not only on the address. Used names move to the front of the list so the
// skip offset passes over them until the list wraps, after which names are
// reused without disambiguation.
type IdentityAllocator struct {
	names []string
}

// NewIdentityAllocator returns an allocator seeded with names, or DefaultNames if none are given.
func NewIdentityAllocator(names ...string) IdentityAllocator {
	if len(names) == 0 {
		names = DefaultNames
	}
	pool := make([]string, len(names))
	copy(pool, names)
	return IdentityAllocator{names: pool}
}

// Names returns a copy of the current candidate order.
func (a IdentityAllocator) Names() []string {
	out := make([]string, len(a.names))
	copy(out, a.names)
	return out
}

// Size is the number of candidates. It never changes.
func (a IdentityAllocator) Size() int {
	return len(a.names)
}

// Allocate picks a name for address given the number of accounts that already exist.
func (a IdentityAllocator) Allocate(address string, existing int) (Identity, IdentityAllocator) {
	size := len(a.names)
	if size == 0 {
		return Identity{}, a
	}
	if existing < 0 {
		existing = 0
	}

	skip := existing % size
	offset := new(big.Int).Mod(addressToInt(address), big.NewInt(int64(size-skip)))
	index := skip + int(offset.Int64())

	name := a.names[index]

	next := make([]string, 0, size)
	next = append(next, name)
	next = append(next, a.names[:index]...)
	next = append(next, a.names[index+1:]...)

	return Identity{Name: name, Avatar: avatarPath(name)}, IdentityAllocator{names: next}
}

func avatarPath(name string) string {
	return fmt.Sprintf("./images/avatars/%s@2x.png", strings.ToLower(name))
}

// addressToInt reads a hex address as an unsigned integer. Anything that is not
// hex reads as zero.
func addressToInt(address string) *big.Int {
	hex := strings.TrimPrefix(strings.TrimPrefix(address, "0x"), "0X")
	n, ok := new(big.Int).SetString(hex, 16)
	if !ok || n.Sign() < 0 {
		return new(big.Int)
	}
	return n
}
