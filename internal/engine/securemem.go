package engine

import "sync/atomic"

// securePoolSize bounds the amount of key material that may be held in
// secure allocations at any one time, mirroring the fixed secure-memory
// pool of the native engines this package models.
const securePoolSize = 64 * 1024

var secureInUse atomic.Int64

// secureAlloc reserves n bytes from the bounded secure pool. Buffers obtained
// here must be released with secureFree so they are wiped and returned to the
// pool.
func secureAlloc(n int) ([]byte, Status) {
	if n < 0 {
		return nil, StatusGeneral
	}
	for {
		used := secureInUse.Load()
		if used+int64(n) > securePoolSize {
			return nil, StatusSecureMemory
		}
		if secureInUse.CompareAndSwap(used, used+int64(n)) {
			return make([]byte, n), StatusOK
		}
	}
}

// secureFree wipes b and returns its reservation to the pool.
func secureFree(b []byte) {
	if b == nil {
		return
	}
	wipe(b)
	secureInUse.Add(-int64(len(b)))
}

// wipe overwrites b with zeros to clear sensitive data from memory.
func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
