//go:build gc && !purego

package grain

import (
	"golang.org/x/sys/cpu"
)

var haveBMI2 = cpu.X86.HasBMI2

// deinterleave separates the even- and odd-indexed bits of x,
// each compressed to the low 32 bits LSB first.
func deinterleave(x uint64) (even, odd uint32) {
	if haveBMI2 {
		return deinterleaveAsm(x)
	}
	return deinterleaveGeneric(x)
}
