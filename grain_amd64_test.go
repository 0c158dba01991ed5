//go:build amd64 && gc && !purego

package grain

import (
	"testing"
)

func disableAsm(t *testing.T) {
	old := haveBMI2
	t.Cleanup(func() {
		haveBMI2 = old
	})
	haveBMI2 = false
}

func runTests(t *testing.T, fn func(t *testing.T)) {
	if haveBMI2 {
		t.Run("assembly", fn)
	}
	t.Run("generic", func(t *testing.T) {
		disableAsm(t)
		fn(t)
	})
	t.Run("narrow", func(t *testing.T) {
		disableAsm(t)
		disableWide(t)
		fn(t)
	})
}
