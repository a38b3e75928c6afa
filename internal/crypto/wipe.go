package crypto

import (
	"runtime"

	"veilmarket/internal/domain"
)

// Wipe zeroes b. It is best-effort: the write is kept alive so the compiler
// does not elide it, but copies made elsewhere are not reached.
//
//go:noinline
func Wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
	runtime.KeepAlive(&b)
}

// WipeKeypair zeroes the private half of kp.
func WipeKeypair(kp *domain.DecryptionKeypair) {
	if kp == nil {
		return
	}
	Wipe(kp.Private[:])
}
