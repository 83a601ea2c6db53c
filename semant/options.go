package semant

// Options selects between the lenient default checking rules and their
// hardened variants. The zero value gives the default rules.
type Options struct {
	// StrictDispatch checks arity and argument types against the method
	// found along the receiver's class chain. Without it the return type
	// comes from one program-wide table keyed by method name, so when
	// unrelated classes declare a method of the same name the class declared
	// first decides the type of every call.
	StrictDispatch bool
	// StrictNames reports undeclared identifiers and undefined classes in
	// 'new' instead of silently typing them Object.
	StrictNames bool
	// JoinBranches types if and case by the least upper bound of their
	// branches and loops as Object. By default all three are Int.
	JoinBranches bool
	// CheckMethodReturns checks each method body against its declared
	// return type.
	CheckMethodReturns bool
}
