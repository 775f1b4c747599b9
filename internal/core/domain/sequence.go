package domain

// Allocation is the result of reserving one registration number. Fallback
// marks identifiers minted through the random-suffix path after the
// sequential candidates kept colliding; they are still unique within the
// scope, just not part of the clean sequence.
type Allocation struct {
	ID       string `json:"id"`
	Fallback bool   `json:"fallback,omitempty"`
}
