package model

import "time"

type VehicleStatus string

const (
	VehicleStatusClean        VehicleStatus = "clean"
	VehicleStatusHasViolation VehicleStatus = "has-violation"
	VehicleStatusChecking     VehicleStatus = "checking"
	// VehicleStatusError marks a cycle whose fetch failed. Violations from the
	// previous successful cycle are kept as they were.
	VehicleStatusError VehicleStatus = "error"
)

type Vehicle struct {
	ID                   string            `json:"id"`
	PlateNumber          string            `json:"plate_number"`
	Email                string            `json:"email"`
	NotificationsEnabled bool              `json:"notifications_enabled"`
	LastCheckAt          *time.Time        `json:"last_check_at,omitempty"`
	LastError            string            `json:"last_error,omitempty"`
	Status               VehicleStatus     `json:"status"`
	CreatedAt            time.Time         `json:"created_at"`
	Violations           []ViolationRecord `json:"violations"`
}

func (v Vehicle) Clone() Vehicle {
	out := v
	if v.LastCheckAt != nil {
		ts := *v.LastCheckAt
		out.LastCheckAt = &ts
	}
	out.Violations = CloneViolations(v.Violations)
	return out
}

func CloneVehicles(in []Vehicle) []Vehicle {
	out := make([]Vehicle, len(in))
	for i, v := range in {
		out[i] = v.Clone()
	}
	return out
}
