package enrollment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildPoolDeduplicates(t *testing.T) {
	assigned := []Member{{ID: 1, Name: "Ada", Email: "ada@example.com"}}
	available := []Member{
		{ID: 1, Name: "Ada (stale)", Email: "ada@example.com"},
		{ID: 2, Name: "Ben", Email: "ben@example.com"},
	}

	pool := BuildPool(assigned, available)

	assert.Len(t, pool, 2)
	assert.Equal(t, uint(1), pool[0].ID)
	assert.True(t, pool[0].IsAssigned)
	assert.Equal(t, "Ada", pool[0].Name, "assigned entry wins the conflict")
	assert.Equal(t, uint(2), pool[1].ID)
	assert.False(t, pool[1].IsAssigned)
}

func TestBuildPoolSkipsZeroIDs(t *testing.T) {
	pool := BuildPool(
		[]Member{{ID: 0, Name: "broken"}},
		[]Member{{ID: 3, Name: "Cy"}, {ID: 3, Name: "Cy again"}},
	)

	assert.Len(t, pool, 1)
	assert.Equal(t, uint(3), pool[0].ID)
}

func TestNewSelectionNormalizes(t *testing.T) {
	sel := NewSelection([]interface{}{
		float64(1),
		map[string]interface{}{"id": float64(2)},
		"3",
		float64(1), // duplicate
		map[string]interface{}{"name": "no id"},
	})

	assert.Len(t, sel, 3)
	assert.True(t, sel.Contains(1))
	assert.True(t, sel.Contains(2))
	assert.True(t, sel.Contains(3))
}

func TestApplySelectionPreservesPoolOrder(t *testing.T) {
	pool := BuildPool(
		[]Member{{ID: 5}, {ID: 1}},
		[]Member{{ID: 9}, {ID: 7}},
	)
	sel := SelectionFromIDs([]uint{7, 5})

	chosen := ApplySelection(pool, sel)

	assert.Len(t, chosen, 2)
	assert.Equal(t, uint(5), chosen[0].ID)
	assert.Equal(t, uint(7), chosen[1].ID)
}

func TestValidateRejectsEmptySelection(t *testing.T) {
	pool := BuildPool(nil, []Member{{ID: 1}})

	err := Validate(Selection{}, pool)
	assert.ErrorIs(t, err, ErrEmptySelection)
}

func TestValidateRejectsDanglingReference(t *testing.T) {
	pool := BuildPool(nil, []Member{{ID: 1}})

	err := Validate(SelectionFromIDs([]uint{1, 99}), pool)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "99")
}

func TestValidateAccepts(t *testing.T) {
	pool := BuildPool([]Member{{ID: 1}}, []Member{{ID: 2}})

	assert.NoError(t, Validate(SelectionFromIDs([]uint{1, 2}), pool))
}

func TestSessionLifecycle(t *testing.T) {
	s := NewSession()
	assert.Equal(t, Idle, s.State())

	s.SelectCourse(10)
	assert.Equal(t, CourseSelected, s.State())

	// Stale candidate response for another course is ignored
	s.LoadCandidates(11, nil, []Member{{ID: 1}})
	assert.Equal(t, CourseSelected, s.State())
	assert.Empty(t, s.Pool())

	s.LoadCandidates(10, []Member{{ID: 1, Name: "Ada"}}, []Member{{ID: 2, Name: "Ben"}})
	assert.Equal(t, CandidatesLoaded, s.State())
	assert.True(t, s.Selected().Contains(1), "selection seeds from current assignment")

	assert.NoError(t, s.SetSelection([]interface{}{float64(1), float64(2)}))
	assert.Equal(t, Selecting, s.State())

	ids, err := s.Submit()
	assert.NoError(t, err)
	assert.Equal(t, []uint{1, 2}, ids)
	assert.Equal(t, Submitted, s.State())
}

func TestSessionCourseChangeResetsSelection(t *testing.T) {
	s := NewSession()
	s.SelectCourse(10)
	s.LoadCandidates(10, []Member{{ID: 1}}, nil)
	assert.NoError(t, s.SetSelection([]interface{}{float64(1)}))

	s.SelectCourse(20)
	assert.Equal(t, CourseSelected, s.State())
	assert.Empty(t, s.Selected())
	assert.Empty(t, s.Pool())

	// Re-selecting the same course does not clobber anything
	s.LoadCandidates(20, nil, []Member{{ID: 3}})
	s.SelectCourse(20)
	assert.Equal(t, CandidatesLoaded, s.State())
	assert.Len(t, s.Pool(), 1)
}

func TestSessionSubmitValidates(t *testing.T) {
	s := NewSession()
	s.SelectCourse(10)
	s.LoadCandidates(10, nil, []Member{{ID: 1}})

	// Selection seeds empty when nothing is assigned yet
	_, err := s.Submit()
	assert.ErrorIs(t, err, ErrEmptySelection)
	assert.NotEqual(t, Submitted, s.State())

	// Submit before candidates load is refused outright
	fresh := NewSession()
	fresh.SelectCourse(10)
	_, err = fresh.Submit()
	assert.Error(t, err)
}
