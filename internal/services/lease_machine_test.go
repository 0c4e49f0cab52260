// internal/services/lease_machine_test.go
package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rentloop/rentloop-backend/internal/models"
)

func TestLeaseMachineApply(t *testing.T) {
	m := NewLeaseStateMachine()
	ctx := context.Background()

	tests := []struct {
		name    string
		current models.LeaseStatus
		event   LeaseEvent
		want    models.LeaseStatus
		wantErr error
	}{
		{"activate draft", models.LeaseStatusDraft, LeaseEventActivate, models.LeaseStatusActive, nil},
		{"terminate active", models.LeaseStatusActive, LeaseEventTerminate, models.LeaseStatusTerminated, nil},
		{"expire active", models.LeaseStatusActive, LeaseEventExpire, models.LeaseStatusExpired, nil},
		{"renew active", models.LeaseStatusActive, LeaseEventRenew, models.LeaseStatusRenewed, nil},
		{"renew expired", models.LeaseStatusExpired, LeaseEventRenew, models.LeaseStatusRenewed, nil},

		{"activate active", models.LeaseStatusActive, LeaseEventActivate, "", ErrLeaseAlreadyActive},
		{"activate terminated", models.LeaseStatusTerminated, LeaseEventActivate, "", ErrLeaseNotDraft},
		{"activate expired", models.LeaseStatusExpired, LeaseEventActivate, "", ErrLeaseNotDraft},
		{"terminate draft", models.LeaseStatusDraft, LeaseEventTerminate, "", ErrLeaseNotActive},
		{"terminate terminated", models.LeaseStatusTerminated, LeaseEventTerminate, "", ErrLeaseNotActive},
		{"expire draft", models.LeaseStatusDraft, LeaseEventExpire, "", ErrLeaseNotActive},
		{"renew draft", models.LeaseStatusDraft, LeaseEventRenew, "", ErrLeaseNotActive},
		{"renew terminated", models.LeaseStatusTerminated, LeaseEventRenew, "", ErrLeaseNotActive},
		{"renew renewed", models.LeaseStatusRenewed, LeaseEventRenew, "", ErrLeaseNotActive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.Apply(ctx, tt.current, tt.event)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLeaseMachineCanTransition(t *testing.T) {
	m := NewLeaseStateMachine()

	assert.True(t, m.CanTransition(models.LeaseStatusDraft, models.LeaseStatusActive))
	assert.True(t, m.CanTransition(models.LeaseStatusActive, models.LeaseStatusTerminated))
	assert.True(t, m.CanTransition(models.LeaseStatusActive, models.LeaseStatusExpired))
	assert.True(t, m.CanTransition(models.LeaseStatusActive, models.LeaseStatusRenewed))
	assert.True(t, m.CanTransition(models.LeaseStatusExpired, models.LeaseStatusRenewed))

	// Terminal states never leave.
	for _, terminal := range []models.LeaseStatus{
		models.LeaseStatusTerminated,
		models.LeaseStatusRenewed,
	} {
		for _, to := range []models.LeaseStatus{
			models.LeaseStatusDraft,
			models.LeaseStatusActive,
			models.LeaseStatusExpired,
		} {
			assert.False(t, m.CanTransition(terminal, to), "%s -> %s should be illegal", terminal, to)
		}
	}

	// Draft can only activate or be deleted.
	assert.False(t, m.CanTransition(models.LeaseStatusDraft, models.LeaseStatusTerminated))
	assert.False(t, m.CanTransition(models.LeaseStatusDraft, models.LeaseStatusExpired))
	assert.False(t, m.CanTransition(models.LeaseStatusDraft, models.LeaseStatusRenewed))
}

func TestLeaseMachineCanDelete(t *testing.T) {
	m := NewLeaseStateMachine()

	assert.True(t, m.CanDelete(models.LeaseStatusDraft))
	assert.False(t, m.CanDelete(models.LeaseStatusActive))
	assert.False(t, m.CanDelete(models.LeaseStatusTerminated))
	assert.False(t, m.CanDelete(models.LeaseStatusExpired))
	assert.False(t, m.CanDelete(models.LeaseStatusRenewed))
}
