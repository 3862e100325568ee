package nfa

import (
	"github.com/coregx/regexcore/internal/conv"
	"github.com/coregx/regexcore/internal/sparse"
)

// thread is one entry in a PikeVM thread list: the pc it represents, plus
// the capture slots carried forward from the moment it was added (spec.md
// §3, "Thread (NFA)"). The caps backing array is preallocated to the
// program's full slot count and reused across runs; only the leading
// capsLen of it is ever meaningful for a given call (see exec in
// pikevm.go).
type thread struct {
	pc   int
	caps []int
}

// threadList pairs a sparse.SparseSet (O(1) "have we already added this pc
// during this closure pass" membership) with a dense, preallocated array of
// thread storage, mirroring the teacher's own sparse/dense thread-queue
// split (nfa/pikevm.go's thread/visited pairing) generalized to carry a
// caps snapshot per entry instead of a bare state id.
type threadList struct {
	set   *sparse.SparseSet
	dense []thread
}

func newThreadList(numInsts, capSlots int) *threadList {
	dense := make([]thread, numInsts)
	for i := range dense {
		dense[i].caps = make([]int, capSlots)
	}
	return &threadList{
		set:   sparse.NewSparseSet(conv.IntToUint32(numInsts)),
		dense: dense,
	}
}

func (l *threadList) contains(pc int) bool {
	return l.set.Contains(conv.IntToUint32(pc))
}

// add reserves the next dense slot for pc and marks it visited, returning
// the slot's caps buffer for the caller to fill in (only meaningful when pc
// is Match, Char, or Ranges; every other instruction's slot goes unused,
// matching spec.md §4.4's "Record pc in nlist" step running unconditionally
// before the per-op dispatch).
func (l *threadList) add(pc int) []int {
	ti := l.set.Size()
	l.set.Insert(conv.IntToUint32(pc))
	l.dense[ti].pc = pc
	return l.dense[ti].caps
}

func (l *threadList) len() int {
	return l.set.Size()
}

func (l *threadList) pcAt(i int) int {
	return l.dense[i].pc
}

func (l *threadList) capsAt(i int) []int {
	return l.dense[i].caps
}

func (l *threadList) clear() {
	l.set.Clear()
}

// nfaThreads is the PikeVM's per-run scratch: the current and next thread
// lists, swapped each step of the main loop (spec.md §4.4).
type nfaThreads struct {
	clist *threadList
	nlist *threadList
}

// backtrackJobKind tags a Job on the bounded backtracker's explicit stack
// (spec.md §3, "Backtrack job").
type backtrackJobKind uint8

const (
	jobInst backtrackJobKind = iota
	jobSaveRestore
	jobSplitNext
)

// backtrackJob is one entry of the backtracker's job stack.
type backtrackJob struct {
	kind backtrackJobKind

	// jobInst, jobSplitNext: the pc/byte-position pair to (re-)enter.
	pc int
	at int

	// jobSaveRestore: the slot to restore and the value it held before the
	// speculative write being undone.
	slot int
	old  int
}

// backtrackState is the bounded backtracker's per-run scratch: the job
// stack and the visited (pc, byte_pos) bitset (spec.md §4.5, §4.6).
type backtrackState struct {
	jobs    []backtrackJob
	visited []uint64 // bit i*(textLen+1)+pos sentinel-per-run, see shouldVisit

	numInsts int
}

func newBacktrackState(numInsts int) *backtrackState {
	return &backtrackState{
		jobs:     make([]backtrackJob, 0, numInsts),
		numInsts: numInsts,
	}
}

// reset prepares the state for a fresh ExecBacktrack run over text of length
// textLen: the job stack and visited bitset are cleared (sized lazily, and
// grown but never shrunk across runs against the same Program, mirroring
// the pool's "capacities grow monotonically" discipline, spec.md §5).
func (s *backtrackState) reset(textLen int) {
	s.jobs = s.jobs[:0]
	need := s.numInsts * (textLen + 1)
	words := (need + 63) / 64
	if cap(s.visited) < words {
		s.visited = make([]uint64, words)
	} else {
		s.visited = s.visited[:words]
		for i := range s.visited {
			s.visited[i] = 0
		}
	}
}

// shouldVisit reports whether (pc, pos) has not yet been visited during this
// ExecBacktrack run (across every candidate start position it tries),
// marking it visited as a side effect. This is the bit-
// vector technique the teacher's CanHandle/visited-set machinery uses in
// place of a hash set, adapted here to the (pc, byte_pos) pairs spec.md
// §4.5 requires memoizing.
func (s *backtrackState) shouldVisit(pc, pos, textLen int) bool {
	idx := pc*(textLen+1) + pos
	word, bit := idx/64, uint(idx%64)
	if s.visited[word]&(1<<bit) != 0 {
		return false
	}
	s.visited[word] |= 1 << bit
	return true
}

func (s *backtrackState) pushInst(pc, at int) {
	s.jobs = append(s.jobs, backtrackJob{kind: jobInst, pc: pc, at: at})
}

func (s *backtrackState) pushSaveRestore(slot, old int) {
	s.jobs = append(s.jobs, backtrackJob{kind: jobSaveRestore, slot: slot, old: old})
}

func (s *backtrackState) pushSplitNext(pc, at int) {
	s.jobs = append(s.jobs, backtrackJob{kind: jobSplitNext, pc: pc, at: at})
}

func (s *backtrackState) pop() (backtrackJob, bool) {
	n := len(s.jobs)
	if n == 0 {
		return backtrackJob{}, false
	}
	j := s.jobs[n-1]
	s.jobs = s.jobs[:n-1]
	return j, true
}

// initPools wires the program's two sync.Pool instances. Each pool's New
// func builds scratch sized for p's instruction and slot counts, and the
// pools live inside the Program value, so cloning a Program (which
// allocates a fresh Program value and calls initPools on it) gets fresh,
// empty pools -- the "interior-
// mutable pool behind an immutable outer value" model spec.md §9 calls for.
func (p *Program) initPools() {
	capSlots := 2 * p.numCaptures
	numInsts := len(p.Insts)
	p.pikePool.New = func() any {
		return &nfaThreads{
			clist: newThreadList(numInsts, capSlots),
			nlist: newThreadList(numInsts, capSlots),
		}
	}
	p.backtrackPool.New = func() any {
		return newBacktrackState(numInsts)
	}
}

func (p *Program) getNfaThreads() *nfaThreads {
	return p.pikePool.Get().(*nfaThreads)
}

func (p *Program) putNfaThreads(t *nfaThreads) {
	p.pikePool.Put(t)
}

func (p *Program) getBacktrackState() *backtrackState {
	return p.backtrackPool.Get().(*backtrackState)
}

func (p *Program) putBacktrackState(s *backtrackState) {
	p.backtrackPool.Put(s)
}
