package model

type ViolationStatus string

const (
	ViolationStatusUnresolved ViolationStatus = "unresolved"
	ViolationStatusResolved   ViolationStatus = "resolved"
	ViolationStatusVerifying  ViolationStatus = "verifying"
)

func (s ViolationStatus) Valid() bool {
	switch s {
	case ViolationStatusUnresolved, ViolationStatusResolved, ViolationStatusVerifying:
		return true
	}
	return false
}

// ViolationRecord is one reported incident for a plate. The source assigns no
// stable id, so records are matched on (Time, Behavior) when merged.
type ViolationRecord struct {
	ID               string          `json:"id,omitempty"`
	PlateNumber      string          `json:"plate_number"`
	PlateColor       string          `json:"plate_color"`
	VehicleType      string          `json:"vehicle_type"`
	Time             string          `json:"time"`
	Location         string          `json:"location"`
	Behavior         string          `json:"behavior"`
	Status           ViolationStatus `json:"status"`
	Unit             string          `json:"unit"`
	ResolutionPlaces []string        `json:"resolution_places"`
}

func (v ViolationRecord) IsPending() bool {
	return v.Status == ViolationStatusUnresolved
}

// Clone returns a copy that shares no slices with v.
func (v ViolationRecord) Clone() ViolationRecord {
	out := v
	if v.ResolutionPlaces != nil {
		out.ResolutionPlaces = append([]string(nil), v.ResolutionPlaces...)
	}
	return out
}

func CloneViolations(in []ViolationRecord) []ViolationRecord {
	if in == nil {
		return nil
	}
	out := make([]ViolationRecord, len(in))
	for i, v := range in {
		out[i] = v.Clone()
	}
	return out
}

func CountPending(violations []ViolationRecord) int {
	n := 0
	for _, v := range violations {
		if v.IsPending() {
			n++
		}
	}
	return n
}
