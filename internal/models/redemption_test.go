package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedemptionTransitions(t *testing.T) {
	cases := []struct {
		from, to string
		ok       bool
	}{
		{RedemptionPending, RedemptionApproved, true},
		{RedemptionPending, RedemptionRejected, true},
		{RedemptionPending, RedemptionCompleted, true},
		{RedemptionApproved, RedemptionCompleted, true},
		{RedemptionApproved, RedemptionRejected, true},
		{RedemptionApproved, RedemptionPending, false},
		{RedemptionRejected, RedemptionApproved, false},
		{RedemptionRejected, RedemptionPending, false},
		{RedemptionCompleted, RedemptionApproved, false},
		{RedemptionCompleted, RedemptionRejected, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, CanTransitionRedemption(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestRedemptionTerminal(t *testing.T) {
	assert.False(t, RedemptionTerminal(RedemptionPending))
	assert.False(t, RedemptionTerminal(RedemptionApproved))
	assert.True(t, RedemptionTerminal(RedemptionRejected))
	assert.True(t, RedemptionTerminal(RedemptionCompleted))
}

func TestValidRedemptionStatus(t *testing.T) {
	assert.True(t, ValidRedemptionStatus(RedemptionPending))
	assert.False(t, ValidRedemptionStatus("SHIPPED"))
	assert.False(t, ValidRedemptionStatus(""))
}
