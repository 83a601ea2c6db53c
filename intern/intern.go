// Package intern deduplicates identifier and type names so that two names are
// equal exactly when their handles are equal.
package intern

import "unique"

// Symbol is an interned name. The zero Symbol is "no name".
type Symbol struct {
	h unique.Handle[string]
}

// Of returns the canonical Symbol for s.
func Of(s string) Symbol {
	return Symbol{h: unique.Make(s)}
}

// String returns the interned text, or "" for the zero Symbol.
func (s Symbol) String() string {
	if s.IsZero() {
		return ""
	}
	return s.h.Value()
}

// IsZero reports whether s was never assigned a name.
func (s Symbol) IsZero() bool {
	return s == Symbol{}
}
