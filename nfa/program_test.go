package nfa

import "testing"

// trivialProgram returns the minimal valid program: Save(0); Save(1); Match.
func trivialProgram(t *testing.T) *Program {
	t.Helper()
	p, err := New("", []Inst{
		InstSave(0),
		InstSave(1),
		InstMatch(),
	}, []string{""})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return p
}

func TestNewRejectsEmptyProgram(t *testing.T) {
	if _, err := New("", nil, nil); err == nil {
		t.Fatal("New(nil insts) should fail")
	}
}

func TestNewRejectsMissingPreamble(t *testing.T) {
	_, err := New("", []Inst{InstMatch(), InstSave(1), InstMatch()}, nil)
	if err == nil {
		t.Fatal("New() should reject a program not starting with Save(0)")
	}
}

func TestNewRejectsMissingClosingSave(t *testing.T) {
	_, err := New("", []Inst{InstSave(0), InstMatch(), InstMatch()}, nil)
	if err == nil {
		t.Fatal("New() should reject a program whose second-to-last inst isn't Save(1)")
	}
}

func TestNewRejectsMissingFinalMatch(t *testing.T) {
	_, err := New("", []Inst{InstSave(0), InstSave(1), InstJump(1)}, nil)
	if err == nil {
		t.Fatal("New() should reject a program not ending in Match")
	}
}

func TestNewRejectsOutOfRangeTargets(t *testing.T) {
	_, err := New("", []Inst{InstSave(0), InstJump(99), InstSave(1), InstMatch()}, nil)
	if err == nil {
		t.Fatal("New() should reject an out-of-range Jump target")
	}
}

func TestTrivialProgramShape(t *testing.T) {
	p := trivialProgram(t)
	if p.NumCaptures() != 1 {
		t.Errorf("NumCaptures() = %d, want 1", p.NumCaptures())
	}
	caps := p.AllocCaptures()
	if len(caps) != 2 {
		t.Fatalf("AllocCaptures() has len %d, want 2", len(caps))
	}
	for _, v := range caps {
		if v != -1 {
			t.Errorf("AllocCaptures() slot = %d, want -1 (unset)", v)
		}
	}
	if p.AnchoredBegin || p.AnchoredEnd {
		t.Error("trivial program should not be anchored either way")
	}
}

func TestAnchoredBeginDetection(t *testing.T) {
	p, err := New("", []Inst{
		InstSave(0),
		InstEmptyLook(StartText),
		InstChar('a', false),
		InstSave(1),
		InstMatch(),
	}, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if !p.AnchoredBegin {
		t.Error("AnchoredBegin = false, want true")
	}
}

func TestAnchoredEndDetection(t *testing.T) {
	p, err := New("", []Inst{
		InstSave(0),
		InstChar('a', false),
		InstEmptyLook(EndText),
		InstSave(1),
		InstMatch(),
	}, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if !p.AnchoredEnd {
		t.Error("AnchoredEnd = false, want true")
	}
}

func TestPrefixExtractionSingleLiteral(t *testing.T) {
	p, err := New("", []Inst{
		InstSave(0),
		InstChar('f', false),
		InstChar('o', false),
		InstChar('o', false),
		InstSave(1),
		InstMatch(),
	}, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if p.Prefixes.Len() != 1 {
		t.Fatalf("Prefixes.Len() = %d, want 1", p.Prefixes.Len())
	}
	pos, ok := p.Prefixes.Find([]byte("xxfoo"))
	if !ok || pos != 2 {
		t.Errorf("Prefixes.Find() = (%d, %v), want (2, true)", pos, ok)
	}
}

func TestPrefixExtractionAlternationOfLiterals(t *testing.T) {
	// hi|by, both arms converging on a shared Save(1); Split(2,5)
	// prefers the "hi" arm first.
	p, err := New("", []Inst{
		InstSave(0),          // 0
		InstSplit(2, 5),      // 1
		InstChar('h', false), // 2
		InstChar('i', false), // 3
		InstJump(7),          // 4 -- "hi" arm jumps to Save(1)
		InstChar('b', false), // 5
		InstChar('y', false), // 6 -- falls through to Save(1)
		InstSave(1),          // 7
		InstMatch(),          // 8
	}, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if p.Prefixes.Len() != 2 {
		t.Fatalf("Prefixes.Len() = %d, want 2", p.Prefixes.Len())
	}
}

func TestNumCapturesCountsHighestSaveSlot(t *testing.T) {
	p, err := New("", []Inst{
		InstSave(0),
		InstSave(2),
		InstChar('a', false),
		InstSave(3),
		InstSave(1),
		InstMatch(),
	}, []string{"", "g1"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if p.NumCaptures() != 2 {
		t.Errorf("NumCaptures() = %d, want 2", p.NumCaptures())
	}
}

func TestCloneIsIndependent(t *testing.T) {
	p := trivialProgram(t)
	clone := p.Clone()

	if clone == p {
		t.Fatal("Clone() returned the same pointer")
	}
	if &clone.Insts[0] == &p.Insts[0] {
		t.Error("Clone() shares the instruction backing array with the original")
	}

	// Each gets its own fresh pool: checking out scratch from one must not
	// be visible to the other.
	t1 := p.getNfaThreads()
	t2 := clone.getNfaThreads()
	if t1 == t2 {
		t.Error("Clone() shares scratch pool state with the original")
	}
	p.putNfaThreads(t1)
	clone.putNfaThreads(t2)
}

func TestSubexpIndex(t *testing.T) {
	p, err := New("", []Inst{
		InstSave(0),
		InstSave(2),
		InstChar('a', false),
		InstSave(3),
		InstSave(1),
		InstMatch(),
	}, []string{"", "name"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	idx, ok := p.SubexpIndex("name")
	if !ok || idx != 1 {
		t.Errorf("SubexpIndex(\"name\") = (%d, %v), want (1, true)", idx, ok)
	}
	if _, ok := p.SubexpIndex("nope"); ok {
		t.Error("SubexpIndex(\"nope\") found a match that shouldn't exist")
	}
}
