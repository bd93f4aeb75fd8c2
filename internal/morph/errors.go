package morph

import "errors"

// Domain errors for morph operations.
var (
	// ErrUnknownState indicates a state name or value outside TREE/SCATTER/LOVE.
	ErrUnknownState = errors.New("morph: unknown state")
)
