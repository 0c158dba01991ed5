// Package grain implements the Grain-128AEADv2 cipher.
//
// Grain-128AEADv2 is a lightweight authenticated encryption
// scheme built on a stream cipher, a finalist in NIST's
// Lightweight Cryptography project.
//
// References:
//
//	[grain]: https://grain-128aead.github.io/
package grain

import (
	"crypto/cipher"
	"encoding/binary"
	"errors"
	"fmt"
	"runtime"
	"strconv"

	"github.com/ericlagergren/subtle"
)

var errOpen = errors.New("grain: message authentication failed")

const (
	// KeySize is the size in bytes of a Grain-128AEADv2 key.
	KeySize = 16
	// NonceSize is the size in bytes of a Grain-128AEADv2 nonce.
	NonceSize = 12
	// TagSize is the size in bytes of a Grain-128AEADv2
	// authentication tag.
	TagSize = 8
)

// useWide selects the 4-byte parallel path. It exists so tests
// can force every message through the byte-at-a-time path.
var useWide = true

type aead struct {
	key [KeySize]byte
}

var _ cipher.AEAD = (*aead)(nil)

// New creates a Grain-128AEADv2 AEAD.
//
// Grain-128AEADv2 must not be used to encrypt more than 2^80
// bits per key, nonce pair, including additional authenticated
// data.
func New(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("grain: invalid key size: %d", len(key))
	}
	var a aead
	copy(a.key[:], key)
	return &a, nil
}

func (a *aead) NonceSize() int {
	return NonceSize
}

func (a *aead) Overhead() int {
	return TagSize
}

func (a *aead) Seal(dst, nonce, plaintext, additionalData []byte) []byte {
	if len(nonce) != NonceSize {
		panic("grain: incorrect nonce length: " + strconv.Itoa(len(nonce)))
	}

	ret, out := subtle.SliceForAppend(dst, len(plaintext)+TagSize)
	if subtle.InexactOverlap(out, plaintext) {
		panic("grain: invalid buffer overlap")
	}

	var s state
	s.initialize(&a.key, nonce)
	s.authData(additionalData)
	s.encrypt(out[:len(plaintext)], plaintext)
	s.authPad()

	binary.LittleEndian.PutUint64(out[len(plaintext):], s.acc)

	return ret
}

func (a *aead) Open(dst, nonce, ciphertext, additionalData []byte) ([]byte, error) {
	if len(nonce) != NonceSize {
		panic("grain: incorrect nonce length: " + strconv.Itoa(len(nonce)))
	}
	if len(ciphertext) < TagSize {
		return nil, errOpen
	}

	tag := ciphertext[len(ciphertext)-TagSize:]
	ciphertext = ciphertext[:len(ciphertext)-TagSize]

	ret, out := subtle.SliceForAppend(dst, len(ciphertext))
	if subtle.InexactOverlap(out, ciphertext) {
		panic("grain: invalid buffer overlap")
	}

	var s state
	s.initialize(&a.key, nonce)
	s.authData(additionalData)
	s.decrypt(out, ciphertext)
	s.authPad()

	var expectedTag [TagSize]byte
	binary.LittleEndian.PutUint64(expectedTag[:], s.acc)

	if subtle.ConstantTimeCompare(expectedTag[:], tag) != 1 {
		// Do not release unverified plaintext. The comparison
		// above and this wipe are both full-length regardless of
		// where the tags differ.
		for i := range out {
			out[i] = 0
		}
		runtime.KeepAlive(out)
		return nil, errOpen
	}
	return ret, nil
}

// authData absorbs the DER encoding of len(ad) followed by the
// bytes of ad into the authenticator. Associated data is never
// encrypted; the even keystream bits are discarded.
func (s *state) authData(ad []byte) {
	var der [9]byte
	n := encodeDER(len(ad), &der)

	for _, b := range der[:n] {
		_, ka := s.keystream8()
		s.accumulate(uint64(b), uint64(ka), 8)
	}

	if useWide {
		for len(ad) >= 4 {
			_, ka := s.keystream32()
			v := binary.LittleEndian.Uint32(ad)
			s.accumulate(uint64(v), uint64(ka), 32)
			ad = ad[4:]
		}
	}
	for _, b := range ad {
		_, ka := s.keystream8()
		s.accumulate(uint64(b), uint64(ka), 8)
	}
}

// encrypt XORs src with the even keystream bits, writing to
// dst, and authenticates the plaintext with the odd bits.
//
// Each unit of src is read before the same unit of dst is
// written, so dst and src may be the same slice.
func (s *state) encrypt(dst, src []byte) {
	if useWide {
		for len(src) >= 4 {
			ks, ka := s.keystream32()
			v := binary.LittleEndian.Uint32(src)
			binary.LittleEndian.PutUint32(dst, v^ks)
			s.accumulate(uint64(v), uint64(ka), 32)
			src = src[4:]
			dst = dst[4:]
		}
	}
	for i, b := range src {
		ks, ka := s.keystream8()
		dst[i] = b ^ ks
		s.accumulate(uint64(b), uint64(ka), 8)
	}
}

// decrypt is encrypt with the authenticator fed the recovered
// plaintext instead of the input.
func (s *state) decrypt(dst, src []byte) {
	if useWide {
		for len(src) >= 4 {
			ks, ka := s.keystream32()
			v := binary.LittleEndian.Uint32(src) ^ ks
			binary.LittleEndian.PutUint32(dst, v)
			s.accumulate(uint64(v), uint64(ka), 32)
			src = src[4:]
			dst = dst[4:]
		}
	}
	for i, b := range src {
		ks, ka := s.keystream8()
		v := b ^ ks
		dst[i] = v
		s.accumulate(uint64(v), uint64(ka), 8)
	}
}

// authPad absorbs the padding byte 0x01. Only its LSB is a real
// message bit; the upper seven zero bits contribute nothing to
// the accumulator but the cipher still clocks for them.
func (s *state) authPad() {
	_, ka := s.keystream8()
	s.accumulate(0x01, uint64(ka), 8)
}

// encodeDER writes the DER encoding of n into der and returns
// the number of bytes written.
//
// Lengths below 128 use the short form. Longer lengths use the
// long form: 0x80|k followed by k length bytes, big-endian.
func encodeDER(n int, der *[9]byte) int {
	if n < 128 {
		der[0] = byte(n)
		return 1
	}

	t := n
	var k int
	for t != 0 {
		t >>= 8
		k++
	}

	der[0] = byte(0x80 | k)
	for i := k; i > 0; i-- {
		der[i] = byte(n)
		n >>= 8
	}
	return k + 1
}
