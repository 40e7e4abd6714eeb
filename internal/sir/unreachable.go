package sir

import "fmt"

// Unreachable panics with tag, the name of the internal invariant that was
// violated. Every pass calls this instead of a bare panic(...) when it hits
// a state the earlier passes should have ruled out (e.g. an unresolved
// ExprIdent surviving past C8) — the direct analogue of the original
// implementation's ASSERT_UNREACHABLE macro.
func Unreachable(tag string) {
	panic(fmt.Sprintf("sir: unreachable: %s", tag))
}
