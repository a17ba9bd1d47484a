package receipt

import (
	"slices"
	"strings"

	"github.com/buriane/taghiane/internal/calculator"
	"github.com/buriane/taghiane/internal/models"
)

// SetParticipants replaces the roster. Blank names are dropped and
// participants without an ID get one. Assignments pointing at removed
// participants are pruned, and evenly split items are reassigned to the
// whole new roster.
func SetParticipants(d models.Receipt, roster []models.Participant) models.Receipt {
	d = clone(d)

	participants := make([]models.Participant, 0, len(roster))
	ids := make(map[string]struct{}, len(roster))
	for _, p := range roster {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			continue
		}
		id := p.ID
		if _, dup := ids[id]; id == "" || dup {
			id = newID()
		}
		ids[id] = struct{}{}
		participants = append(participants, models.Participant{ID: id, Name: name})
	}
	d.Participants = participants

	for i := range d.Items {
		if d.Items[i].SplitEvenly {
			d.Items[i].AssignedTo = calculator.EvenSplit{}.Assignees(participants)
			continue
		}
		d.Items[i].AssignedTo = slices.DeleteFunc(d.Items[i].AssignedTo, func(id string) bool {
			_, ok := ids[id]
			return !ok
		})
	}
	return d
}

// EnsureCurrentUser puts the signed-in user at the front of the roster
// under CurrentUserName, unless they are already on it.
func EnsureCurrentUser(d models.Receipt, userID string) models.Receipt {
	if userID == "" {
		return d
	}
	d = clone(d)
	d.CurrentUserID = userID
	if slices.ContainsFunc(d.Participants, func(p models.Participant) bool { return p.ID == userID }) {
		return d
	}
	d.Participants = append([]models.Participant{{ID: userID, Name: CurrentUserName}}, d.Participants...)
	return d
}

// ToggleAssignment adds the participant to the item's assignees, or removes
// them if already assigned. An evenly split item first becomes an explicit
// assignment to the whole roster.
func ToggleAssignment(d models.Receipt, itemID, participantID string) (models.Receipt, error) {
	if !slices.ContainsFunc(d.Participants, func(p models.Participant) bool { return p.ID == participantID }) {
		return d, ErrParticipantNotFound
	}
	d = clone(d)
	i := slices.IndexFunc(d.Items, func(item models.ReceiptItem) bool { return item.ID == itemID })
	if i < 0 {
		return d, ErrItemNotFound
	}

	item := &d.Items[i]
	if item.SplitEvenly {
		item.SplitEvenly = false
		item.AssignedTo = calculator.EvenSplit{}.Assignees(d.Participants)
	}
	if j := slices.Index(item.AssignedTo, participantID); j >= 0 {
		item.AssignedTo = slices.Delete(item.AssignedTo, j, j+1)
	} else {
		item.AssignedTo = append(item.AssignedTo, participantID)
	}
	return d, nil
}

// ToggleSplitEvenly flips the item's split-evenly flag. Turning it on assigns
// the item to the whole current roster; turning it off clears the assignees.
func ToggleSplitEvenly(d models.Receipt, itemID string) (models.Receipt, error) {
	d = clone(d)
	i := slices.IndexFunc(d.Items, func(item models.ReceiptItem) bool { return item.ID == itemID })
	if i < 0 {
		return d, ErrItemNotFound
	}

	item := &d.Items[i]
	item.SplitEvenly = !item.SplitEvenly
	item.AssignedTo = nil
	if item.SplitEvenly {
		for _, p := range d.Participants {
			item.AssignedTo = append(item.AssignedTo, p.ID)
		}
	}
	return d, nil
}
