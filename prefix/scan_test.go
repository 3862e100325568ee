package prefix

import "testing"

func TestFindOne(t *testing.T) {
	tests := []struct {
		name     string
		needle   string
		haystack string
		wantPos  int
		wantOK   bool
	}{
		{"empty needle", "", "zzzzzzzzzzabc", 0, false},
		{"needle longer than haystack", "abcdef", "ab", 0, false},
		{"single byte match", "a", "zzzzzzzzzza", 10, true},
		{"single byte no match", "y", "zzzzzzzzzzabc", 0, false},
		{"equal length match", "abc", "abc", 0, true},
		{"equal length no match", "abc", "abd", 0, false},
		{"multi byte match", "abc", "zzzzzzzzzzabc", 10, true},
		{"multi byte no match", "abcz", "zzzzzzzzzzabc", 0, false},
		{"match starting at 8 byte chunk boundary", "needle", "01234567needle", 8, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos, ok := FindOne([]byte(tt.needle), []byte(tt.haystack))
			if ok != tt.wantOK {
				t.Fatalf("FindOne() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && pos != tt.wantPos {
				t.Errorf("FindOne() pos = %d, want %d", pos, tt.wantPos)
			}
		})
	}
}

func TestSetFindAny(t *testing.T) {
	needles := [][]byte{[]byte("abaa"), []byte("abbaa"), []byte("abbbaa"), []byte("abbbbaa")}
	haystack := []byte("ababbabbbabbbabbbbabbbbaa")

	s := NewSet(needles...)
	pos, ok := s.Find(haystack)
	if !ok {
		t.Fatal("Find() ok = false, want true")
	}
	if pos != 18 {
		t.Errorf("Find() pos = %d, want 18", pos)
	}
}

func TestSetFindAnyBelowThreshold(t *testing.T) {
	s := NewSet([]byte("foo"), []byte("bar"))
	pos, ok := s.Find([]byte("xxbarfoo"))
	if !ok || pos != 2 {
		t.Errorf("Find() = (%d, %v), want (2, true)", pos, ok)
	}
}

func TestSetAboveThresholdUsesAho(t *testing.T) {
	s := NewSet([]byte("foo"), []byte("bar"), []byte("baz"), []byte("qux"))
	if s.aho == nil {
		t.Fatal("expected Set to build an Aho-Corasick automaton above threshold")
	}
	pos, ok := s.Find([]byte("zzzquxzz"))
	if !ok || pos != 3 {
		t.Errorf("Find() = (%d, %v), want (3, true)", pos, ok)
	}
}

func TestSetEmpty(t *testing.T) {
	var s Set
	if s.Len() != 0 {
		t.Errorf("Len() = %d, want 0", s.Len())
	}
	if _, ok := s.Find([]byte("anything")); ok {
		t.Error("Find() on empty set returned ok=true")
	}
}

func TestSetDropsEmptyNeedles(t *testing.T) {
	s := NewSet([]byte("a"), []byte(""), []byte("b"))
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2 (empty needle should be dropped)", s.Len())
	}
}

func TestFindOneNeverReadsPastHaystack(t *testing.T) {
	// Regression guard: a needle whose first byte occurs near the end of
	// the haystack but without room for the rest must not panic via an
	// out-of-bounds slice.
	haystack := []byte("xxxxxxxxab")
	needle := []byte("abc")
	if _, ok := FindOne(needle, haystack); ok {
		t.Error("FindOne() found a match that doesn't fit in the haystack")
	}
}
