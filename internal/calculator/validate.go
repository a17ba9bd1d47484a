package calculator

import (
	"errors"
	"fmt"

	"github.com/buriane/taghiane/internal/models"
)

var (
	ErrDuplicateParticipant = errors.New("duplicate participant id")
	ErrEmptyParticipantID   = errors.New("participant id is empty")
	ErrDuplicateItem        = errors.New("duplicate item id")
	ErrNegativePrice        = errors.New("item price is negative")
	ErrNegativeAdjustment   = errors.New("tax and discount must not be negative")
	ErrUnknownAssignee      = errors.New("item assigned to unknown participant")
	ErrUnassignedItem       = errors.New("item has no assignee")
)

// Validate reports every way a receipt and roster break the allocation
// preconditions. Allocate itself tolerates all of them; callers that persist a
// bill should reject input that fails here.
//
// The returned error joins one wrapped sentinel per problem, so errors.Is works
// against each of the Err* values above.
func Validate(receipt models.Receipt, participants []models.Participant) error {
	var errs []error

	roster := make(map[string]struct{}, len(participants))
	for _, p := range participants {
		if p.ID == "" {
			errs = append(errs, fmt.Errorf("%w: participant %q", ErrEmptyParticipantID, p.Name))
			continue
		}
		if _, dup := roster[p.ID]; dup {
			errs = append(errs, fmt.Errorf("%w: %q", ErrDuplicateParticipant, p.ID))
		}
		roster[p.ID] = struct{}{}
	}

	if receipt.Tax < 0 || receipt.Discount < 0 {
		errs = append(errs, fmt.Errorf("%w: tax=%v discount=%v", ErrNegativeAdjustment, receipt.Tax, receipt.Discount))
	}

	items := make(map[string]struct{}, len(receipt.Items))
	for _, item := range receipt.Items {
		if _, dup := items[item.ID]; dup {
			errs = append(errs, fmt.Errorf("%w: %q", ErrDuplicateItem, item.ID))
		}
		items[item.ID] = struct{}{}

		if item.Price < 0 {
			errs = append(errs, fmt.Errorf("%w: %q costs %v", ErrNegativePrice, item.Name, item.Price))
		}

		ids := AssignmentOf(item).Assignees(participants)
		if len(ids) == 0 {
			errs = append(errs, fmt.Errorf("%w: %q", ErrUnassignedItem, item.Name))
			continue
		}
		if item.SplitEvenly {
			continue
		}
		for _, id := range ids {
			if _, ok := roster[id]; !ok {
				errs = append(errs, fmt.Errorf("%w: %q on %q", ErrUnknownAssignee, id, item.Name))
			}
		}
	}

	return errors.Join(errs...)
}
