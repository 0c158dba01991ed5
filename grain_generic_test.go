//go:build !amd64 || !gc || purego

package grain

import "testing"

func runTests(t *testing.T, fn func(t *testing.T)) {
	t.Run("generic", fn)
	t.Run("narrow", func(t *testing.T) {
		disableWide(t)
		fn(t)
	})
}
