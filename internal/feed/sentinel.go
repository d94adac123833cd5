package feed

// Sentinel watches the last rendered article and signals when it scrolls
// into view. It tracks exactly one target at a time and rebinds whenever
// the last article changes.
//
// It fires on edges only: a target that stays visible does not fire again
// when a load fails, so a broken network never turns into a request loop.
// Scrolling away and back, or a new target, re-arms it.
type Sentinel struct {
	bound   bool
	count   int
	lastID  int64
	visible bool
}

// Observe binds the sentinel to the last of count articles. count 0
// detaches it.
func (s *Sentinel) Observe(count int, lastID int64) {
	if count == 0 {
		*s = Sentinel{}
		return
	}
	if s.bound && s.count == count && s.lastID == lastID {
		return
	}
	s.bound = true
	s.count = count
	s.lastID = lastID
	s.visible = false
}

// Target returns the observed page id and whether anything is observed.
func (s *Sentinel) Target() (int64, bool) {
	return s.lastID, s.bound
}

// Check reports the current visibility of the target. It returns true when
// the target has just become visible and a continuation may be issued.
func (s *Sentinel) Check(visible, canContinue bool) bool {
	if !s.bound {
		return false
	}
	entered := visible && !s.visible
	s.visible = visible
	return entered && canContinue
}
