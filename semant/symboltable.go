package semant

// Frame is one scope level of a SymbolTable.
type Frame[K comparable, V any] map[K]V

// SymbolTable is a stack of scopes mapping names to values. Bindings in
// inner scopes shadow those of enclosing scopes.
type SymbolTable[K comparable, V any] struct {
	frames []Frame[K, V]
}

func NewSymbolTable[K comparable, V any]() *SymbolTable[K, V] {
	return &SymbolTable[K, V]{}
}

// EnterScope pushes an empty scope.
func (st *SymbolTable[K, V]) EnterScope() {
	st.frames = append(st.frames, Frame[K, V]{})
}

// PushFrame re-enters a scope saved earlier with TopFrame.
func (st *SymbolTable[K, V]) PushFrame(f Frame[K, V]) {
	if f == nil {
		f = Frame[K, V]{}
	}
	st.frames = append(st.frames, f)
}

// ExitScope pops the innermost scope. Exiting with no scope is a bug in the
// caller and panics.
func (st *SymbolTable[K, V]) ExitScope() {
	if len(st.frames) == 0 {
		panic("semant: ExitScope on empty symbol table")
	}
	st.frames[len(st.frames)-1] = nil
	st.frames = st.frames[:len(st.frames)-1]
}

// TopFrame returns the innermost scope.
func (st *SymbolTable[K, V]) TopFrame() Frame[K, V] {
	if len(st.frames) == 0 {
		return nil
	}
	return st.frames[len(st.frames)-1]
}

// AddID binds key in the innermost scope.
func (st *SymbolTable[K, V]) AddID(key K, value V) {
	if len(st.frames) == 0 {
		panic("semant: AddID outside of any scope")
	}
	st.frames[len(st.frames)-1][key] = value
}

// Lookup searches every scope from innermost to outermost.
func (st *SymbolTable[K, V]) Lookup(key K) (V, bool) {
	for i := len(st.frames) - 1; i >= 0; i-- {
		if v, ok := st.frames[i][key]; ok {
			return v, true
		}
	}
	var zero V
	return zero, false
}

// LookupLocal searches only the innermost scope.
func (st *SymbolTable[K, V]) LookupLocal(key K) (V, bool) {
	var zero V
	if len(st.frames) == 0 {
		return zero, false
	}
	v, ok := st.frames[len(st.frames)-1][key]
	return v, ok
}
