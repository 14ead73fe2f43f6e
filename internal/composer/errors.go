package composer

import (
	"errors"

	"github.com/dshills/quill/internal/history"
)

// ErrNotCollaborative is returned by the collaboration surface when the
// composer runs on the local tree backend.
var ErrNotCollaborative = errors.New("composer: backend is not collaborative")

// Re-exported history conditions, for callers probing undo state
// without importing the history package.
var (
	ErrNothingToUndo = history.ErrNothingToUndo
	ErrNothingToRedo = history.ErrNothingToRedo
)
