// Package ports tracks which transport ports belong to which protocol
// family. Lookups happen on the hot decode path from multiple listener
// goroutines, so the mapping is an immutable table behind an atomic
// pointer; reconfiguration builds a replacement table and swaps it in,
// unregistering the old ports and registering the new ones in one step.
package ports

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Family identifies a protocol family a port can be registered to.
type Family int

const (
	FamilyNone Family = iota
	FamilyTAK
	FamilyOMNI
)

func (f Family) String() string {
	switch f {
	case FamilyTAK:
		return "tak"
	case FamilyOMNI:
		return "omni"
	}
	return "none"
}

// ParseFamily maps a configuration string to a Family.
func ParseFamily(s string) (Family, error) {
	switch s {
	case "tak":
		return FamilyTAK, nil
	case "omni":
		return FamilyOMNI, nil
	}
	return FamilyNone, fmt.Errorf("unknown protocol family %q", s)
}

// Registry is the port-to-family routing table.
type Registry struct {
	table atomic.Pointer[map[int]Family]

	// Serializes writers only; readers never take it.
	mu sync.Mutex
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	r := &Registry{}
	empty := map[int]Family{}
	r.table.Store(&empty)
	return r
}

// Lookup returns the family registered for port, or FamilyNone.
func (r *Registry) Lookup(port int) Family {
	return (*r.table.Load())[port]
}

// Ports returns the ports currently registered to the family.
func (r *Registry) Ports(f Family) []int {
	var out []int
	for port, fam := range *r.table.Load() {
		if fam == f {
			out = append(out, port)
		}
	}
	return out
}

// Replace atomically swaps the family's port set: every port previously
// registered to f is dropped and the given ports take its place. Other
// families are untouched. A port already owned by another family is an
// error and leaves the registry unchanged.
func (r *Registry) Replace(f Family, ports []int) error {
	if f == FamilyNone {
		return fmt.Errorf("cannot register ports to family %q", f)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	old := *r.table.Load()
	next := make(map[int]Family, len(old)+len(ports))
	for port, fam := range old {
		if fam != f {
			next[port] = fam
		}
	}
	for _, port := range ports {
		if port < 1 || port > 65535 {
			return fmt.Errorf("port %d out of range", port)
		}
		if owner, taken := next[port]; taken {
			return fmt.Errorf("port %d already registered to %s", port, owner)
		}
		next[port] = f
	}
	r.table.Store(&next)
	return nil
}
