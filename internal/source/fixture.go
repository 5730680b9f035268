package source

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"traffic-care-service/internal/model"
	"traffic-care-service/internal/utils"
)

// FixtureSource answers lookups from a fixed table keyed by normalized plate.
type FixtureSource struct {
	records map[string][]model.ViolationRecord
}

func NewFixtureSource() *FixtureSource {
	return &FixtureSource{records: defaultFixture()}
}

// NewFixtureSourceFrom builds a fixture from arbitrary plate keys; keys are
// normalized on the way in.
func NewFixtureSourceFrom(records map[string][]model.ViolationRecord) *FixtureSource {
	table := make(map[string][]model.ViolationRecord, len(records))
	for plate, list := range records {
		table[utils.NormalizePlate(plate)] = model.CloneViolations(list)
	}
	return &FixtureSource{records: table}
}

// LoadFixtureFile reads a JSON object of plate -> violation records.
func LoadFixtureFile(path string) (*FixtureSource, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	var records map[string][]model.ViolationRecord
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("decode fixture %s: %w", path, err)
	}
	return NewFixtureSourceFrom(records), nil
}

func (s *FixtureSource) Lookup(ctx context.Context, plateKey string) ([]model.ViolationRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	list, ok := s.records[utils.NormalizePlate(plateKey)]
	if !ok {
		return []model.ViolationRecord{}, nil
	}
	return model.CloneViolations(list), nil
}

func defaultFixture() map[string][]model.ViolationRecord {
	return map[string][]model.ViolationRecord{
		"11A07378": {
			{
				ID:               "v1-11A07378",
				PlateNumber:      "11A-073.78",
				PlateColor:       "Biển trắng",
				VehicleType:      "Ô tô con",
				Time:             "15:20, 10/11/2024",
				Location:         "Ngã tư Giải Phóng - Đại Cồ Việt, Hai Bà Trưng, Hà Nội",
				Behavior:         "Điều khiển xe chạy quá tốc độ quy định từ 05 km/h đến dưới 10 km/h",
				Status:           model.ViolationStatusResolved,
				Unit:             "Đội CSGT Số 4 - Hà Nội",
				ResolutionPlaces: []string{"Kho bạc Nhà nước Quận Hai Bà Trưng"},
			},
			{
				ID:               "v2-11A07378",
				PlateNumber:      "11A-073.78",
				PlateColor:       "Biển trắng",
				VehicleType:      "Ô tô con",
				Time:             "09:45, 05/01/2025",
				Location:         "Trần Duy Hưng, Cầu Giấy, Hà Nội",
				Behavior:         "Không chấp hành hiệu lệnh của đèn tín hiệu giao thông (Vượt đèn đỏ)",
				Status:           model.ViolationStatusResolved,
				Unit:             "Đội CSGT Số 6 - Hà Nội",
				ResolutionPlaces: []string{"Trụ sở Đội CSGT Số 6 - 58 Trần Duy Hưng"},
			},
		},
		"30G46044": {
			{
				ID:               "v1-30G46044",
				PlateNumber:      "30G-460.44",
				PlateColor:       "Biển trắng",
				VehicleType:      "Ô tô con",
				Time:             "21:15, 05/02/2025",
				Location:         "Km 10+300, Đại lộ Thăng Long, Hà Nội",
				Behavior:         "Điều khiển xe chạy quá tốc độ quy định từ 10km/h đến 20km/h",
				Status:           model.ViolationStatusUnresolved,
				Unit:             "Đội CSGT Số 6 - Hà Nội",
				ResolutionPlaces: []string{"Số 6 Quang Trung, Hà Đông, Hà Nội"},
			},
		},
	}
}
