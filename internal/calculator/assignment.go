package calculator

import "github.com/buriane/taghiane/internal/models"

// Assignment resolves which participants share an item.
type Assignment interface {
	// Assignees returns the effective participant IDs for the item, without duplicates.
	Assignees(roster []models.Participant) []string
}

// Individual assigns an item to an explicit set of participants.
// IDs that are not on the roster still count toward the divisor.
type Individual struct {
	ParticipantIDs []string
}

func (a Individual) Assignees(_ []models.Participant) []string {
	seen := make(map[string]struct{}, len(a.ParticipantIDs))
	ids := make([]string, 0, len(a.ParticipantIDs))
	for _, id := range a.ParticipantIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

// EvenSplit shares an item among the whole roster.
type EvenSplit struct{}

func (EvenSplit) Assignees(roster []models.Participant) []string {
	return Individual{ParticipantIDs: rosterIDs(roster)}.Assignees(nil)
}

// AssignmentOf returns the assignment variant for an item.
// The SplitEvenly flag wins over whatever AssignedTo holds.
func AssignmentOf(item models.ReceiptItem) Assignment {
	if item.SplitEvenly {
		return EvenSplit{}
	}
	return Individual{ParticipantIDs: item.AssignedTo}
}

func rosterIDs(roster []models.Participant) []string {
	ids := make([]string, len(roster))
	for i, p := range roster {
		ids[i] = p.ID
	}
	return ids
}
