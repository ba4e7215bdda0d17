package model

import (
	"testing"
	"time"
)

func TestStatusCanTransitionTo(t *testing.T) {
	tests := []struct {
		name string
		from AppointmentStatus
		to   AppointmentStatus
		want bool
	}{
		{"pending to confirmed", StatusPending, StatusConfirmed, true},
		{"pending to cancelled", StatusPending, StatusCancelled, true},
		{"pending back to pending", StatusPending, StatusPending, true},
		{"confirmed to cancelled", StatusConfirmed, StatusCancelled, true},
		{"confirmed back to pending", StatusConfirmed, StatusPending, true},
		{"confirmed to confirmed", StatusConfirmed, StatusConfirmed, false},
		{"cancelled is terminal", StatusCancelled, StatusPending, false},
		{"cancelled cannot confirm", StatusCancelled, StatusConfirmed, false},
		{"cancelled cannot re-cancel", StatusCancelled, StatusCancelled, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
				t.Errorf("CanTransitionTo(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestPriorityValid(t *testing.T) {
	if !PriorityRegular.Valid() || !PriorityEmergency.Valid() {
		t.Error("known priorities should be valid")
	}
	if Priority("urgent").Valid() {
		t.Error("unknown priority should be invalid")
	}
}

func TestAppointmentEnd(t *testing.T) {
	start := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)
	a := &Appointment{Date: start}
	if got := a.End(); !got.Equal(start.Add(time.Hour)) {
		t.Errorf("End() = %v, want %v", got, start.Add(time.Hour))
	}
}
