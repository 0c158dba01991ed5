package grain

import (
	"encoding/binary"
)

// reg128 is a 128-bit feedback shift register.
//
// Bit i lives at bit i&63 of word i>>6, so the register is the
// little-endian load of its 16-byte serialization: bit 0 is the
// LSB of byte 0, bit 127 the MSB of byte 15. Shifting the
// register drops the oldest (lowest-indexed) bits and appends
// new bits at the top.
type reg128 struct {
	lo, hi uint64
}

// bits returns a 64-bit window starting at bit i.
//
// Bit k of the result is register bit i+k. Only the low 128-i
// bits are meaningful; every tap index used by the cipher is at
// most 96, so the windows read here are valid for clock widths
// up to 32.
func (r *reg128) bits(i uint) uint64 {
	if i < 64 {
		// The i == 0 case falls out of Go's shift semantics:
		// hi<<64 is 0.
		return r.lo>>i | r.hi<<(64-i)
	}
	return r.hi >> (i - 64)
}

// shift drops the low n bits of the register and appends the
// low n bits of in at the top.
func (r *reg128) shift(n uint, in uint64) {
	r.lo = r.lo>>n | r.hi<<(64-n)
	r.hi = r.hi>>n | in<<(64-n)
}

// state is the Grain-128AEADv2 cipher state.
//
// It has two halves, the pre-output generator and the
// authenticator generator.
//
// The pre-output generator is
//
//	y_t = h(x) + s_93^t + \sum_{j \in A} b_j^t
//
//	A = {2, 15, 36, 45, 64, 73, 89}
//
// where h is the nonlinear filter
//
//	h(x) = x0x1 + x2x3 + x4x5 + x6x7 + x0x4x8
//
// over the taps (b12, s8, s13, s20, b95, s42, s60, s79, s94).
//
// The authenticator generator is a 64-bit accumulator and a
// 64-bit shift register fed by the odd pre-output bits.
//
// A state is constructed per Seal or Open call, driven through
// initialization, absorption, and finalization, and discarded.
type state struct {
	// lfsr is the 128-bit linear feedback shift register
	//
	//	f(x) = 1 + x^32 + x^47 + x^58 + x^90 + x^121 + x^128
	//
	// updated with
	//
	//	s_127^(t+1) = s_0 + s_7 + s_38 + s_70 + s_81 + s_96
	lfsr reg128
	// nfsr is the 128-bit non-linear feedback shift register
	//
	//	g(x) = 1 + x^32 + x^37 + x^72 + x^102 + x^128
	//	     + x^44*x^60 + x^61*x^125 + x^63*x^67
	//	     + x^69*x^101 + x^80*x^88 + x^110*x^111
	//	     + x^115*x^117 + x^46*x^50*x^58
	//	     + x^103*x^104*x^106 + x^33*x^35*x^36*x^40
	//
	// updated with
	//
	//	b_127^(t+1) = s_0 + b_0 + b_26 + b_56 + b_91 + b_96
	//	            + b_3b_67 + b_11b_13 + b_17b_18
	//	            + b_27b_59 + b_40b_48 + b_61b_65
	//	            + b_68b_84 + b_22b_24b_25 + b_70b_78b_82
	//	            + b_88b_92b_93b_95
	nfsr reg128
	// acc is the accumulator half of the authenticator. At the
	// end of the padding phase it is the authentication tag.
	acc uint64
	// reg is the shift register half of the authenticator,
	// holding the 64 most recent odd pre-output bits.
	reg uint64
}

// preout computes the pre-output window y.
//
// Bit k of the result is the pre-output bit the cipher would
// emit at clock k, for k up to one less than the clock width.
func (s *state) preout() uint64 {
	l, n := &s.lfsr, &s.nfsr

	x0 := n.bits(12)
	x1 := l.bits(8)
	x2 := l.bits(13)
	x3 := l.bits(20)
	x4 := n.bits(95)
	x5 := l.bits(42)
	x6 := l.bits(60)
	x7 := l.bits(79)
	x8 := l.bits(94)

	h := x0&x1 ^ x2&x3 ^ x4&x5 ^ x6&x7 ^ x0&x4&x8

	return h ^ l.bits(93) ^
		n.bits(2) ^ n.bits(15) ^ n.bits(36) ^ n.bits(45) ^
		n.bits(64) ^ n.bits(73) ^ n.bits(89)
}

// lfb computes the LFSR feedback window L(S_t).
func (s *state) lfb() uint64 {
	l := &s.lfsr
	return l.bits(0) ^ l.bits(7) ^ l.bits(38) ^
		l.bits(70) ^ l.bits(81) ^ l.bits(96)
}

// nfb computes the NFSR feedback window s_0 + F(B_t).
func (s *state) nfb() uint64 {
	n := &s.nfsr

	v := s.lfsr.bits(0) ^
		n.bits(0) ^ n.bits(26) ^ n.bits(56) ^ n.bits(91) ^ n.bits(96)
	v ^= n.bits(3) & n.bits(67)
	v ^= n.bits(11) & n.bits(13)
	v ^= n.bits(17) & n.bits(18)
	v ^= n.bits(27) & n.bits(59)
	v ^= n.bits(40) & n.bits(48)
	v ^= n.bits(61) & n.bits(65)
	v ^= n.bits(68) & n.bits(84)
	v ^= n.bits(22) & n.bits(24) & n.bits(25)
	v ^= n.bits(70) & n.bits(78) & n.bits(82)
	v ^= n.bits(88) & n.bits(92) & n.bits(93) & n.bits(95)
	return v
}

// clock advances the cipher n clocks and returns the n
// pre-output bits.
//
// Every tap index is at most 96, so the n bits computed from
// the pre-shift state are identical to n sequential single-bit
// clocks for any n up to 32.
func (s *state) clock(n uint) uint64 {
	y := s.preout()
	fl := s.lfb()
	fn := s.nfb()
	s.lfsr.shift(n, fl)
	s.nfsr.shift(n, fn)
	return y & (1<<n - 1)
}

// clockInit is clock with the pre-output bits folded back into
// both feedback paths, used during the key/nonce mixing phase.
func (s *state) clockInit(n uint) {
	y := s.preout()
	fl := s.lfb()
	fn := s.nfb()
	s.lfsr.shift(n, fl^y)
	s.nfsr.shift(n, fn^y)
}

// clockKey is clockInit with key material XORed into the new
// register bits, used during the key re-introduction phase.
func (s *state) clockKey(n uint, ka, kb uint32) {
	y := s.preout()
	fl := s.lfb()
	fn := s.nfb()
	s.lfsr.shift(n, fl^y^uint64(ka))
	s.nfsr.shift(n, fn^y^uint64(kb))
}

// initialize loads key and nonce and clocks the cipher 512
// times: 320 mixing clocks feeding the pre-output back into
// both registers, 64 clocks re-introducing the key, then 64+64
// clocks filling the accumulator and shift register.
func (s *state) initialize(key *[KeySize]byte, nonce []byte) {
	s.nfsr.lo = binary.LittleEndian.Uint64(key[0:8])
	s.nfsr.hi = binary.LittleEndian.Uint64(key[8:16])

	s.lfsr.lo = binary.LittleEndian.Uint64(nonce[0:8])
	s.lfsr.hi = uint64(binary.LittleEndian.Uint32(nonce[8:12])) |
		0x7fffffff<<32

	for t := 0; t < 10; t++ {
		s.clockInit(32)
	}

	s.clockKey(32,
		binary.LittleEndian.Uint32(key[8:12]),
		binary.LittleEndian.Uint32(key[0:4]))
	s.clockKey(32,
		binary.LittleEndian.Uint32(key[12:16]),
		binary.LittleEndian.Uint32(key[4:8]))

	s.acc = s.clock(32) | s.clock(32)<<32
	s.reg = s.clock(32) | s.clock(32)<<32
}

// keystream8 clocks the cipher 16 times and splits the raw
// pre-output into the encryption byte (even bits) and the
// authentication byte (odd bits).
func (s *state) keystream8() (ks, ka uint8) {
	raw := s.clock(8) | s.clock(8)<<8
	even, odd := deinterleave(raw)
	return uint8(even), uint8(odd)
}

// keystream32 is keystream8 for a 4-byte unit: 64 clocks split
// into 32 encryption bits and 32 authentication bits.
func (s *state) keystream32() (ks, ka uint32) {
	raw := s.clock(32) | s.clock(32)<<32
	return deinterleave(raw)
}

// accumulate authenticates the low nbits bits of m, LSB first,
// using the low nbits bits of k as the incoming shift register
// bits.
//
// Each iteration is one step of
//
//	A ^= m_i ? R : 0
//	R = R>>1 | k_i<<63
//
// performed without branching on the message bit. The loop is a
// register-level unroll of the single-bit update and must not
// reorder bits.
func (s *state) accumulate(m, k uint64, nbits int) {
	acc, reg := s.acc, s.reg
	for i := 0; i < nbits; i++ {
		mask := -(m >> i & 1)
		acc ^= reg & mask
		reg = reg>>1 | (k>>i&1)<<63
	}
	s.acc, s.reg = acc, reg
}

// deinterleaveGeneric separates the even- and odd-indexed bits
// of x, each compressed to the low half LSB first.
//
// This is the classic mask-and-shift perfect unshuffle
// (Hacker's Delight §7-2); the amd64 fast path replaces it with
// two PEXT instructions.
func deinterleaveGeneric(x uint64) (even, odd uint32) {
	return squish(x), squish(x >> 1)
}

// squish compresses the even-indexed bits of x into the low 32
// bits of the result.
func squish(x uint64) uint32 {
	x &= 0x5555555555555555
	x = (x | x>>1) & 0x3333333333333333
	x = (x | x>>2) & 0x0f0f0f0f0f0f0f0f
	x = (x | x>>4) & 0x00ff00ff00ff00ff
	x = (x | x>>8) & 0x0000ffff0000ffff
	x = (x | x>>16) & 0x00000000ffffffff
	return uint32(x)
}
