package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReopenWindow(t *testing.T) {
	cfg := TicketConfig{ReopenWindowDays: 7}
	assert.Equal(t, 7*24*time.Hour, cfg.ReopenWindow())
}

func TestAutoApprovesRole(t *testing.T) {
	cfg := TicketConfig{AutoApproveRoles: []string{"MANAGER", "SUPER_ADMIN"}}
	assert.True(t, cfg.AutoApprovesRole("MANAGER"))
	assert.True(t, cfg.AutoApprovesRole("manager"), "role codes compare case-insensitively")
	assert.False(t, cfg.AutoApprovesRole("ENGINEER"))

	empty := TicketConfig{}
	assert.False(t, empty.AutoApprovesRole("MANAGER"))
}
