package model

// VehicleRecord is the dashboard row for a tracked vehicle: the vehicle plus
// the counts and headline violation the list view shows.
type VehicleRecord struct {
	Vehicle         Vehicle          `json:"vehicle"`
	PendingCount    int              `json:"pending_count"`
	ResolvedCount   int              `json:"resolved_count"`
	LatestViolation *ViolationRecord `json:"latest_violation"`
}

type ViolationSummary struct {
	VehicleID string `json:"vehicle_id"`
	Plate     string `json:"plate"`
	Summary   string `json:"summary"`
}

func BuildVehicleRecord(v Vehicle) VehicleRecord {
	record := VehicleRecord{Vehicle: v}

	var firstPending, firstResolved *ViolationRecord
	for i := range v.Violations {
		vi := &v.Violations[i]
		switch vi.Status {
		case ViolationStatusUnresolved:
			record.PendingCount++
			if firstPending == nil {
				firstPending = vi
			}
		case ViolationStatusResolved:
			record.ResolvedCount++
			if firstResolved == nil {
				firstResolved = vi
			}
		}
	}

	// Unpaid fines take the headline over settled ones.
	switch {
	case firstPending != nil:
		latest := firstPending.Clone()
		record.LatestViolation = &latest
	case firstResolved != nil:
		latest := firstResolved.Clone()
		record.LatestViolation = &latest
	}

	return record
}
