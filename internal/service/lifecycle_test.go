package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/support-desk/internal/domain"
)

func TestTransitionTable(t *testing.T) {
	cases := []struct {
		from    domain.TicketStatus
		to      domain.TicketStatus
		allowed bool
	}{
		{domain.TicketStatusOpen, domain.TicketStatusAssigned, true},
		{domain.TicketStatusAssigned, domain.TicketStatusInProgress, true},
		{domain.TicketStatusInProgress, domain.TicketStatusPendingApproval, true},
		{domain.TicketStatusInProgress, domain.TicketStatusResolved, true},
		{domain.TicketStatusPendingApproval, domain.TicketStatusResolved, true},
		{domain.TicketStatusResolved, domain.TicketStatusClosed, true},
		{domain.TicketStatusClosed, domain.TicketStatusReopened, true},
		{domain.TicketStatusReopened, domain.TicketStatusAssigned, true},

		{domain.TicketStatusOpen, domain.TicketStatusInProgress, false},
		{domain.TicketStatusOpen, domain.TicketStatusClosed, false},
		{domain.TicketStatusAssigned, domain.TicketStatusResolved, false},
		{domain.TicketStatusResolved, domain.TicketStatusInProgress, false},
		{domain.TicketStatusClosed, domain.TicketStatusOpen, false},
		{domain.TicketStatusReopened, domain.TicketStatusResolved, false},
		{domain.TicketStatusPendingApproval, domain.TicketStatusClosed, false},
	}

	for _, tc := range cases {
		err := checkTransition(tc.from, tc.to)
		if tc.allowed {
			assert.NoError(t, err, "%s -> %s", tc.from, tc.to)
		} else {
			assert.Error(t, err, "%s -> %s", tc.from, tc.to)
		}
	}
}

func TestTerminalStatuses(t *testing.T) {
	assert.True(t, isTerminal(domain.TicketStatusClosed))
	assert.False(t, isTerminal(domain.TicketStatusResolved))
	assert.False(t, isTerminal(domain.TicketStatusOpen))
}
