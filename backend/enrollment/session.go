package enrollment

import "errors"

// State tracks one batch edit session through candidate loading and
// selection. Changing the course invalidates the selection: availability is
// course-scoped, so prior choices can no longer be trusted.
type State int

const (
	Idle State = iota
	CourseSelected
	CandidatesLoaded
	Selecting
	Submitted
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case CourseSelected:
		return "course-selected"
	case CandidatesLoaded:
		return "candidates-loaded"
	case Selecting:
		return "selecting"
	case Submitted:
		return "submitted"
	}
	return "unknown"
}

var errNoCandidates = errors.New("candidates not loaded for this course")

// Session is a single-goroutine edit session; it is created when an edit view
// opens and discarded when it closes.
type Session struct {
	state    State
	courseID uint
	pool     []Candidate
	sel      Selection
}

func NewSession() *Session {
	return &Session{state: Idle, sel: Selection{}}
}

func (s *Session) State() State        { return s.state }
func (s *Session) CourseID() uint      { return s.courseID }
func (s *Session) Pool() []Candidate   { return s.pool }
func (s *Session) Selected() Selection { return s.sel }

// SelectCourse picks (or switches) the course. Switching drops the loaded
// pool and resets the selection to empty.
func (s *Session) SelectCourse(courseID uint) {
	if courseID == s.courseID && s.state != Idle {
		return
	}
	s.courseID = courseID
	s.pool = nil
	s.sel = Selection{}
	s.state = CourseSelected
}

// LoadCandidates installs the merged pool for the current course. A stale
// response for a different course is ignored.
func (s *Session) LoadCandidates(courseID uint, assigned, available []Member) {
	if courseID != s.courseID || s.state == Idle {
		return
	}
	s.pool = BuildPool(assigned, available)
	s.sel = Selection{}
	for _, c := range s.pool {
		if c.IsAssigned {
			s.sel[c.ID] = struct{}{}
		}
	}
	s.state = CandidatesLoaded
}

// SetSelection replaces the selection wholesale from a raw identifier list.
func (s *Session) SetSelection(values []interface{}) error {
	if s.state != CandidatesLoaded && s.state != Selecting {
		return errNoCandidates
	}
	s.sel = NewSelection(values)
	s.state = Selecting
	return nil
}

// Submit validates the selection and returns the identifier list to persist.
func (s *Session) Submit() ([]uint, error) {
	if s.state != CandidatesLoaded && s.state != Selecting {
		return nil, errNoCandidates
	}
	if err := Validate(s.sel, s.pool); err != nil {
		return nil, err
	}
	s.state = Submitted
	return s.sel.IDs(s.pool), nil
}
