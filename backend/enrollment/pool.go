// Package enrollment reconciles the two overlapping user lists a batch edit
// works with: users already assigned to the batch and users merely enrolled
// in the course. Both merge into one candidate pool, and the administrator's
// selection is validated against that pool before anything is submitted.
package enrollment

import (
	"errors"
	"fmt"

	"trainhub/backend/utils"
)

var ErrEmptySelection = errors.New("at least one user must be assigned")

// Member is the minimal user shape the reconciler works with.
type Member struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Candidate is a pool entry: a member tagged with its current assignment.
type Candidate struct {
	Member
	IsAssigned bool `json:"isAssigned"`
}

// BuildPool merges the assigned and available lists into the candidate pool,
// deduplicated by identifier. A user present in both lists keeps the assigned
// entry. Order is stable: assigned first, then remaining available.
func BuildPool(assigned, available []Member) []Candidate {
	pool := make([]Candidate, 0, len(assigned)+len(available))
	seen := make(map[uint]bool, len(assigned)+len(available))

	for _, m := range assigned {
		if m.ID == 0 || seen[m.ID] {
			continue
		}
		seen[m.ID] = true
		pool = append(pool, Candidate{Member: m, IsAssigned: true})
	}
	for _, m := range available {
		if m.ID == 0 || seen[m.ID] {
			continue
		}
		seen[m.ID] = true
		pool = append(pool, Candidate{Member: m, IsAssigned: false})
	}

	return pool
}

// Selection is the administrator's intended membership for the batch.
type Selection map[uint]struct{}

// NewSelection normalizes a raw identifier list into a selection: duplicates
// collapse, object-wrapped entries are unwrapped, malformed entries dropped.
// The list always replaces the selection wholesale; the caller supplies the
// complete new membership, not a diff.
func NewSelection(values []interface{}) Selection {
	sel := make(Selection, len(values))
	for _, id := range utils.NormalizeIDList(values) {
		sel[id] = struct{}{}
	}
	return sel
}

// SelectionFromIDs builds a selection from already-normalized identifiers.
func SelectionFromIDs(ids []uint) Selection {
	sel := make(Selection, len(ids))
	for _, id := range ids {
		if id != 0 {
			sel[id] = struct{}{}
		}
	}
	return sel
}

func (s Selection) Contains(id uint) bool {
	_, ok := s[id]
	return ok
}

// ApplySelection returns the subset of the pool the selection names,
// preserving pool order.
func ApplySelection(pool []Candidate, sel Selection) []Candidate {
	chosen := make([]Candidate, 0, len(sel))
	for _, c := range pool {
		if sel.Contains(c.ID) {
			chosen = append(chosen, c)
		}
	}
	return chosen
}

// Validate rejects a selection that would submit a dangling reference: it
// must be non-empty and every selected identifier must exist in the pool.
func Validate(sel Selection, pool []Candidate) error {
	if len(sel) == 0 {
		return ErrEmptySelection
	}

	known := make(map[uint]bool, len(pool))
	for _, c := range pool {
		known[c.ID] = true
	}
	for id := range sel {
		if !known[id] {
			return fmt.Errorf("user %d is not enrolled in this course", id)
		}
	}

	return nil
}

// IDs flattens the selection to a list ordered by pool position, ready for
// persistence.
func (s Selection) IDs(pool []Candidate) []uint {
	ids := make([]uint, 0, len(s))
	for _, c := range ApplySelection(pool, s) {
		ids = append(ids, c.ID)
	}
	return ids
}
