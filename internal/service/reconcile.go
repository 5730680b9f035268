package service

import (
	"traffic-care-service/internal/model"
	"traffic-care-service/internal/utils"
)

// MergeResult is the outcome of folding one fetch into a vehicle's history.
type MergeResult struct {
	Violations []model.ViolationRecord
	Pending    int
	Status     model.VehicleStatus
}

type mergeKey struct {
	time     string
	behavior string
}

// The source formats timestamps loosely ("15:20, 10/11/2024" vs
// "15:20 10/11/2024"), so only the alphanumeric skeleton of the time counts.
func keyOf(v model.ViolationRecord) mergeKey {
	return mergeKey{time: utils.NormalizePlate(v.Time), behavior: v.Behavior}
}

// MergeViolations folds fetched records into existing ones by (time, behavior).
// Unknown records are prepended in fetch order, so the last new record of a
// fetch ends up first. Known records are updated in place. Neither input is
// modified.
func MergeViolations(existing, fetched []model.ViolationRecord) MergeResult {
	merged := model.CloneViolations(existing)
	if merged == nil {
		merged = []model.ViolationRecord{}
	}

	for _, nv := range dedupeFetched(fetched) {
		idx := indexOf(merged, keyOf(nv))
		if idx == -1 {
			merged = append([]model.ViolationRecord{nv}, merged...)
			continue
		}
		merged[idx] = overlay(merged[idx], nv)
	}

	pending := model.CountPending(merged)
	return MergeResult{
		Violations: merged,
		Pending:    pending,
		Status:     statusFor(pending),
	}
}

// dedupeFetched collapses records sharing a merge key into the first of them.
func dedupeFetched(fetched []model.ViolationRecord) []model.ViolationRecord {
	out := make([]model.ViolationRecord, 0, len(fetched))
	seen := make(map[mergeKey]int, len(fetched))
	for _, v := range fetched {
		k := keyOf(v)
		if i, ok := seen[k]; ok {
			out[i] = overlay(out[i], v)
			continue
		}
		seen[k] = len(out)
		out = append(out, v.Clone())
	}
	return out
}

func indexOf(list []model.ViolationRecord, k mergeKey) int {
	for i := range list {
		if keyOf(list[i]) == k {
			return i
		}
	}
	return -1
}

// overlay returns base with every non-empty field of next applied on top. An
// unrecognized status from the source never replaces a known one.
func overlay(base, next model.ViolationRecord) model.ViolationRecord {
	out := base.Clone()
	if next.ID != "" {
		out.ID = next.ID
	}
	if next.PlateNumber != "" {
		out.PlateNumber = next.PlateNumber
	}
	if next.PlateColor != "" {
		out.PlateColor = next.PlateColor
	}
	if next.VehicleType != "" {
		out.VehicleType = next.VehicleType
	}
	if next.Time != "" {
		out.Time = next.Time
	}
	if next.Location != "" {
		out.Location = next.Location
	}
	if next.Behavior != "" {
		out.Behavior = next.Behavior
	}
	if next.Status.Valid() {
		out.Status = next.Status
	}
	if next.Unit != "" {
		out.Unit = next.Unit
	}
	if next.ResolutionPlaces != nil {
		out.ResolutionPlaces = append([]string(nil), next.ResolutionPlaces...)
	}
	return out
}

func statusFor(pending int) model.VehicleStatus {
	if pending > 0 {
		return model.VehicleStatusHasViolation
	}
	return model.VehicleStatusClean
}
