package intern

import (
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

func TestSymbolIdentity(t *testing.T) {
	t.Run("equal strings share a handle", func(t *testing.T) {
		a := Of("Main")
		b := Of(strings.ToUpper("m") + "ain")
		be.True(t, a == b)
		be.Equal(t, a.String(), "Main")
	})

	t.Run("different strings differ", func(t *testing.T) {
		be.True(t, Of("Int") != Of("int"))
	})

	t.Run("zero symbol", func(t *testing.T) {
		var s Symbol
		be.True(t, s.IsZero())
		be.Equal(t, s.String(), "")
		be.True(t, !Of("").IsZero())
	})

	t.Run("usable as map key", func(t *testing.T) {
		m := map[Symbol]int{Of("x"): 1}
		be.Equal(t, m[Of("x")], 1)
	})
}
