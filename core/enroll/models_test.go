package enroll_test

import (
	"testing"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/mtihani/core/enroll"
)

func TestEnrollment_IsActive(t *testing.T) {
	future := null.TimeFrom(time.Now().UTC().Add(time.Hour))
	past := null.TimeFrom(time.Now().UTC().Add(-time.Hour))

	tests := []struct {
		name string
		enr  enroll.Enrollment
		want bool
	}{
		{name: "active, no expiry", enr: enroll.Enrollment{Status: enroll.StatusActive}, want: true},
		{name: "active, future expiry", enr: enroll.Enrollment{Status: enroll.StatusActive, ExpiresAt: future}, want: true},
		{name: "active, past expiry", enr: enroll.Enrollment{Status: enroll.StatusActive, ExpiresAt: past}},
		{name: "expired", enr: enroll.Enrollment{Status: enroll.StatusExpired}},
		{name: "completed", enr: enroll.Enrollment{Status: enroll.StatusCompleted}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.enr.IsActive(); got != tt.want {
				t.Errorf("IsActive() = %v; want %v", got, tt.want)
			}
		})
	}
}
