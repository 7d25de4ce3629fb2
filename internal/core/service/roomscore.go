package service

import (
	"math"
	"sort"
	"time"

	"github.com/jonas-oms/hygrotwin/internal/core/domain"
)

type RoomScore struct {
	RoomId                string  `json:"room_id"`
	RoomName              string  `json:"room_name"`
	CurrentTemperature    float64 `json:"current_temperature"`
	TemperatureDifference float64 `json:"temperature_difference"`
	Score                 float64 `json:"score"`
	Occupancy             int     `json:"current_occupancy"`
}

type RoomPrediction struct {
	OptimalTemperature float64     `json:"optimal_temperature"`
	BestRoom           *RoomScore  `json:"best_room"`
	AllRoomScores      []RoomScore `json:"all_room_scores"`
	Timestamp          time.Time   `json:"timestamp"`
}

// ScoreRooms ranks rooms by closeness to a target temperature.
// score = 1/(1+0.5·|t−opt|), scaled down by up to 50% for occupancy
// (0.1 per hosted device). Rooms without a temperature reading are skipped.
func ScoreRooms(rooms []domain.Document, optimalTemp float64) *RoomPrediction {
	var scores []RoomScore
	for i := range rooms {
		room := &rooms[i]
		temp, ok := latestTemperature(room)
		if !ok {
			continue
		}

		tempDiff := math.Abs(temp - optimalTemp)
		score := 1 / (1 + tempDiff*0.5)

		occupancy := len(room.DataStrings("devices"))
		if occupancy > 0 {
			penalty := math.Min(float64(occupancy)*0.1, 0.5)
			score *= 1 - penalty
		}

		name, _ := room.ProfileString("name")
		scores = append(scores, RoomScore{
			RoomId:                room.ID,
			RoomName:              name,
			CurrentTemperature:    temp,
			TemperatureDifference: math.Round(tempDiff*100) / 100,
			Score:                 math.Round(score*1000) / 1000,
			Occupancy:             occupancy,
		})
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score > scores[j].Score
	})

	pred := &RoomPrediction{
		OptimalTemperature: optimalTemp,
		AllRoomScores:      scores,
		Timestamp:          time.Now().UTC(),
	}
	if len(scores) > 0 {
		pred.BestRoom = &scores[0]
	}
	return pred
}

// latestTemperature prefers the room's current temperature field and falls
// back to the newest temperature entry of the measurement log.
func latestTemperature(room *domain.Document) (float64, bool) {
	if t, ok := room.DataFloat("temperature"); ok {
		return t, true
	}
	var (
		latest   time.Time
		value    float64
		found    bool
		readTime = func(m map[string]any) time.Time {
			if ts, ok := m["timestamp"].(time.Time); ok {
				return ts
			}
			return time.Time{}
		}
	)
	for _, raw := range room.Measurements() {
		m, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		var temp float64
		switch {
		case m["measure_type"] == "temperature":
			if v, ok := m["value"].(float64); ok {
				temp = v
			} else {
				continue
			}
		case m["temperature"] != nil:
			if v, ok := m["temperature"].(float64); ok {
				temp = v
			} else {
				continue
			}
		default:
			continue
		}
		if ts := readTime(m); !found || ts.After(latest) {
			latest = ts
			value = temp
			found = true
		}
	}
	return value, found
}
