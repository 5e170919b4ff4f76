package cipherkit

import (
	"sync"

	"github.com/allisson/go-cipherkit/internal/engine"
)

var (
	initOnce sync.Once
	initErr  error
)

// ensureInit runs the engine's one-time initialization. The result is cached
// for the lifetime of the process; repeated calls are cheap.
func ensureInit() error {
	initOnce.Do(func() {
		initErr = newOpError("init", engine.Initialize())
	})
	return initErr
}

// Initialize forces library initialization and reports its result. Calling
// it is optional: every entry point that needs the engine initializes
// lazily.
func Initialize() error {
	return ensureInit()
}
