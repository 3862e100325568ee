// Package prefix implements the literal-prefix accelerator: byte-level fast
// search for one or many literal prefixes inside a haystack, used to skip
// positions the VM cannot possibly match at.
//
// Two backends are wired for find_any (spec.md §4.2): a plain linear scan
// for one or two needles, and an Aho-Corasick automaton (built once per
// Set and cached) once there are enough needles that a multi-pattern
// automaton beats repeated single-needle scans — the same crossover the
// teacher's meta-engine uses github.com/coregx/ahocorasick for.
package prefix

import (
	"golang.org/x/sys/cpu"

	"github.com/coregx/ahocorasick"
)

// ahoThreshold is the minimum needle count at which Set builds and uses an
// Aho-Corasick automaton instead of a linear needle-by-needle scan.
// Below it, the automaton's construction cost isn't repaid — the same
// reasoning behind the teacher's own >32-literal cutoff for
// UseAhoCorasick, scaled down since a Program's prefix list is typically
// just the two branches of a top-level alternation, not dozens.
const ahoThreshold = 3

// Set is an immutable collection of literal prefixes extracted from a
// Program (spec.md §4.3). A zero-value Set is empty; Find on it reports no
// match, and input.Cursor.PrefixAt treats an empty Set as imposing no
// requirement and returns its position unchanged (spec.md §4.1).
type Set struct {
	needles [][]byte
	aho     *ahocorasick.Automaton
}

// NewSet builds a Set from the given literal prefixes. Empty needles are
// dropped: spec.md §4.2 requires find_one/find_any to treat an empty
// needle as never-found, so there is no point carrying one around.
func NewSet(prefixes ...[]byte) *Set {
	s := &Set{}
	for _, p := range prefixes {
		if len(p) == 0 {
			continue
		}
		s.needles = append(s.needles, p)
	}
	if len(s.needles) >= ahoThreshold {
		builder := ahocorasick.NewBuilder()
		for _, n := range s.needles {
			builder.AddPattern(n)
		}
		if auto, err := builder.Build(); err == nil {
			s.aho = auto
		}
		// On a build error, s.aho stays nil and Find falls back to the
		// linear scan below — still correct, just not accelerated.
	}
	return s
}

// Len returns the number of literal prefixes in the set.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.needles)
}

// Find returns the leftmost byte offset in haystack at which any prefix in
// the set begins, implementing find_one (Len()==1) and find_any
// (Len()>1) from spec.md §4.2. When two needles begin at the same
// position, either may be reported (spec.md: "any is acceptable").
func (s *Set) Find(haystack []byte) (int, bool) {
	if s.Len() == 0 {
		return 0, false
	}
	if s.aho != nil {
		m := s.aho.Find(haystack, 0)
		if m == nil {
			return 0, false
		}
		return m.Start, true
	}
	switch len(s.needles) {
	case 1:
		return FindOne(s.needles[0], haystack)
	default:
		return findAny(s.needles, haystack)
	}
}

// hasSSE42 records whether the runtime CPU exposes SSE4.2, used to pick
// between an 8-byte SWAR scan and a plain byte loop in FindOne. Computed
// once at package init, mirroring the teacher's simd/memchr_amd64.go
// feature-gated dispatch (golang.org/x/sys/cpu is the same dependency that
// gates it there).
var hasSSE42 = cpu.X86.HasSSE42

// FindOne implements find_one(needle, haystack) (spec.md §4.2): byte-exact
// search for a single literal. Returns (0, false) for an empty needle or a
// needle longer than the haystack.
func FindOne(needle, haystack []byte) (int, bool) {
	hlen, nlen := len(haystack), len(needle)
	if nlen == 0 || nlen > hlen {
		return 0, false
	}
	if nlen == 1 {
		return memchr(haystack, needle[0])
	}
	if nlen == hlen {
		if bytesEqual(needle, haystack) {
			return 0, true
		}
		return 0, false
	}

	cur := 0
	for {
		i, ok := memchr(haystack[cur:], needle[0])
		if !ok {
			return 0, false
		}
		cur += i
		if cur+nlen > hlen {
			return 0, false
		}
		if bytesEqual(haystack[cur:cur+nlen], needle) {
			return cur, true
		}
		cur++
	}
}

// findAny implements find_any for a small (below ahoThreshold) needle set:
// the leftmost position at which any needle begins, found by scanning the
// haystack once and, at each position, checking every needle. Correct for
// any needle count; Set only calls it once the Aho-Corasick automaton
// isn't worth building.
func findAny(needles [][]byte, haystack []byte) (int, bool) {
	for hi := 0; hi < len(haystack); hi++ {
		for _, needle := range needles {
			if len(needle) == 0 {
				continue
			}
			ub := hi + len(needle)
			if ub > len(haystack) {
				continue
			}
			if bytesEqual(haystack[hi:ub], needle) {
				return hi, true
			}
		}
	}
	return 0, false
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// memchr returns the index of the first occurrence of needle in haystack,
// or false if absent. It is a single pass over the haystack regardless of
// which branch runs: the SWAR branch reads 8 bytes/iteration, the fallback
// reads 1.
func memchr(haystack []byte, needle byte) (int, bool) {
	if hasSSE42 {
		return memchrSWAR(haystack, needle)
	}
	for i, b := range haystack {
		if b == needle {
			return i, true
		}
	}
	return 0, false
}

// memchrSWAR scans haystack 8 bytes at a time using the "SIMD within a
// register" zero-byte-detection trick, falling back to a byte loop for the
// final (<8-byte) remainder. Adapted from the teacher's
// simd/memchr_generic_impl.go, which uses the identical technique as its
// portable (non-amd64-asm) fallback.
func memchrSWAR(haystack []byte, needle byte) (int, bool) {
	n := len(haystack)
	if n < 8 {
		for i := 0; i < n; i++ {
			if haystack[i] == needle {
				return i, true
			}
		}
		return 0, false
	}

	mask := uint64(needle) * 0x0101010101010101
	i := 0
	for ; i+8 <= n; i += 8 {
		chunk := uint64(haystack[i]) | uint64(haystack[i+1])<<8 |
			uint64(haystack[i+2])<<16 | uint64(haystack[i+3])<<24 |
			uint64(haystack[i+4])<<32 | uint64(haystack[i+5])<<40 |
			uint64(haystack[i+6])<<48 | uint64(haystack[i+7])<<56
		x := chunk ^ mask
		// Zero-byte detection: a byte in x is zero iff, after subtracting
		// 0x01 from it and ANDing with ~x, the high bit is set.
		y := (x - 0x0101010101010101) &^ x & 0x8080808080808080
		if y != 0 {
			return i + trailingZeroByte(y), true
		}
	}
	for ; i < n; i++ {
		if haystack[i] == needle {
			return i, true
		}
	}
	return 0, false
}

// trailingZeroByte returns the index (0-7) of the lowest set byte in a
// zero-byte-detection mask produced by memchrSWAR.
func trailingZeroByte(mask uint64) int {
	for i := 0; i < 8; i++ {
		if mask&(0xFF<<(8*i)) != 0 {
			return i
		}
	}
	return 0
}
