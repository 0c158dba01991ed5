package main

import (
	. "github.com/mmcloughlin/avo/build"
	. "github.com/mmcloughlin/avo/operand"
)

//go:generate go run asm.go -out ../grain_amd64.s -stubs ../stub_amd64.go -pkg grain

func main() {
	Package("github.com/ericlagergren/grain")
	ConstraintExpr("gc,!purego")

	declareDeinterleave()

	Generate()
}

func declareDeinterleave() {
	TEXT("deinterleaveAsm", NOSPLIT, "func(x uint64) (even, odd uint32)")
	Doc("deinterleaveAsm separates the even- and odd-indexed bits of x",
		"using BMI2 PEXT.")
	Pragma("noescape")

	x := Load(Param("x"), GP64())

	mask := GP64()
	MOVQ(U64(0x5555555555555555), mask)

	even := GP64()
	PEXTQ(mask, x, even)

	NOTQ(mask)

	odd := GP64()
	PEXTQ(mask, x, odd)

	Store(even.As32(), ReturnIndex(0))
	Store(odd.As32(), ReturnIndex(1))

	RET()
}
