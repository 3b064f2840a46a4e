package service

import (
	"github.com/spec-kit/support-desk/internal/domain"
	apperrors "github.com/spec-kit/support-desk/pkg/util"
)

// allowedTransitions is the closed walk set for ticket statuses. Transitions
// are one-directional except the explicit reopen edge, which carries its own
// window and feature-flag guards in the engine.
var allowedTransitions = map[domain.TicketStatus][]domain.TicketStatus{
	domain.TicketStatusOpen:            {domain.TicketStatusAssigned},
	domain.TicketStatusAssigned:        {domain.TicketStatusInProgress},
	domain.TicketStatusInProgress:      {domain.TicketStatusPendingApproval, domain.TicketStatusResolved},
	domain.TicketStatusPendingApproval: {domain.TicketStatusResolved},
	domain.TicketStatusResolved:        {domain.TicketStatusClosed},
	domain.TicketStatusClosed:          {domain.TicketStatusReopened},
	domain.TicketStatusReopened:        {domain.TicketStatusAssigned},
}

// terminalStatuses cannot be deleted from.
var terminalStatuses = map[domain.TicketStatus]struct{}{
	domain.TicketStatusClosed: {},
}

func isValidTransition(current, next domain.TicketStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// checkTransition rejects illegal moves, naming both states. Moves are never
// silently coerced.
func checkTransition(current, next domain.TicketStatus) error {
	if !isValidTransition(current, next) {
		return apperrors.NewInvalidTransition(string(current), string(next))
	}
	return nil
}

func isTerminal(status domain.TicketStatus) bool {
	_, ok := terminalStatuses[status]
	return ok
}
