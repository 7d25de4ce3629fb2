package service

import (
	"time"

	"github.com/jonas-oms/hygrotwin/internal/core/domain"
)

// DefaultHumidityAlertThreshold is the relative humidity (%) above which a
// positive room-vs-house difference triggers an alert.
const DefaultHumidityAlertThreshold = 60.0

type HumidityComparison struct {
	RoomId                string    `json:"room_id"`
	HouseId               string    `json:"house_id"`
	RoomAbsoluteHumidity  float64   `json:"room_absolute_humidity"`
	HouseAbsoluteHumidity float64   `json:"house_absolute_humidity"`
	Difference            float64   `json:"absolute_humidity_difference"`
	Timestamp             time.Time `json:"timestamp"`
}

// CompareHumidity returns the signed absolute-humidity difference
// (room − house). Both documents must already carry a derived
// absolute_humidity field; a MissingFieldError is returned otherwise.
// No hysteresis, no smoothing: a single noisy reading can flip the sign.
func CompareHumidity(room, house *domain.Document) (*HumidityComparison, error) {
	roomAH, ok := room.DataFloat("absolute_humidity")
	if !ok {
		return nil, domain.MissingFieldError{DocType: domain.DOC_TYPE_ROOM, Field: "absolute_humidity"}
	}
	houseAH, ok := house.DataFloat("absolute_humidity")
	if !ok {
		return nil, domain.MissingFieldError{DocType: domain.DOC_TYPE_HOUSE, Field: "absolute_humidity"}
	}
	return &HumidityComparison{
		RoomId:                room.ID,
		HouseId:               house.ID,
		RoomAbsoluteHumidity:  roomAH,
		HouseAbsoluteHumidity: houseAH,
		Difference:            roomAH - houseAH,
		Timestamp:             time.Now().UTC(),
	}, nil
}

// ShouldNotify applies the alert policy: relative humidity above the
// threshold AND a strictly positive room-vs-house difference.
func ShouldNotify(relativeHumidity, difference, threshold float64) bool {
	return relativeHumidity > threshold && difference > 0
}
