package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jonas-oms/hygrotwin/internal/core/domain"
)

func scoreRoom(id, name string, temperature float64, devices []string) domain.Document {
	data := map[string]any{"temperature": temperature}
	if devices != nil {
		anyDevices := make([]any, len(devices))
		for i, d := range devices {
			anyDevices[i] = d
		}
		data["devices"] = anyDevices
	}
	return domain.Document{
		ID:      id,
		Profile: map[string]any{"name": name},
		Data:    data,
	}
}

func TestScoreRoomsPrefersClosestTemperature(t *testing.T) {
	rooms := []domain.Document{
		scoreRoom("r1", "Office", 18, nil),
		scoreRoom("r2", "Lab", 22, nil),
		scoreRoom("r3", "Storage", 30, nil),
	}

	pred := ScoreRooms(rooms, 22)
	assert.NotNil(t, pred.BestRoom)
	assert.Equal(t, "r2", pred.BestRoom.RoomId)
	assert.InDelta(t, 1.0, pred.BestRoom.Score, 0.0001)
	assert.Len(t, pred.AllRoomScores, 3)
	// sorted descending
	assert.GreaterOrEqual(t, pred.AllRoomScores[0].Score, pred.AllRoomScores[1].Score)
	assert.GreaterOrEqual(t, pred.AllRoomScores[1].Score, pred.AllRoomScores[2].Score)
}

func TestScoreRoomsOccupancyPenalty(t *testing.T) {
	rooms := []domain.Document{
		scoreRoom("empty", "Empty", 22, nil),
		scoreRoom("busy", "Busy", 22, []string{"led1", "led2"}),
	}

	pred := ScoreRooms(rooms, 22)
	assert.Equal(t, "empty", pred.BestRoom.RoomId)

	var busy *RoomScore
	for i := range pred.AllRoomScores {
		if pred.AllRoomScores[i].RoomId == "busy" {
			busy = &pred.AllRoomScores[i]
		}
	}
	assert.NotNil(t, busy)
	assert.Equal(t, 2, busy.Occupancy)
	// two devices shave 20% off a perfect score
	assert.InDelta(t, 0.8, busy.Score, 0.0001)
}

func TestScoreRoomsPenaltyCapped(t *testing.T) {
	rooms := []domain.Document{
		scoreRoom("crowded", "Crowded", 22, []string{"a", "b", "c", "d", "e", "f", "g", "h"}),
	}
	pred := ScoreRooms(rooms, 22)
	// penalty caps at 50% no matter how many devices
	assert.InDelta(t, 0.5, pred.BestRoom.Score, 0.0001)
}

func TestScoreRoomsSkipsRoomsWithoutReadings(t *testing.T) {
	rooms := []domain.Document{
		{ID: "silent", Profile: map[string]any{"name": "Silent"}, Data: map[string]any{}},
		scoreRoom("ok", "Ok", 20, nil),
	}
	pred := ScoreRooms(rooms, 22)
	assert.Len(t, pred.AllRoomScores, 1)
	assert.Equal(t, "ok", pred.BestRoom.RoomId)
}

func TestScoreRoomsFallsBackToMeasurementLog(t *testing.T) {
	old := time.Now().Add(-2 * time.Hour)
	recent := time.Now().Add(-10 * time.Minute)
	room := domain.Document{
		ID:      "logged",
		Profile: map[string]any{"name": "Logged"},
		Data: map[string]any{
			"measurements": []any{
				domain.NewValueMeasurement("temperature", 17, old),
				domain.NewValueMeasurement("temperature", 21, recent),
				domain.NewValueMeasurement("humidity", 55, recent),
			},
		},
	}

	pred := ScoreRooms([]domain.Document{room}, 22)
	assert.NotNil(t, pred.BestRoom)
	assert.InDelta(t, 21, pred.BestRoom.CurrentTemperature, 0.0001)
}

func TestScoreRoomsEmpty(t *testing.T) {
	pred := ScoreRooms(nil, 22)
	assert.Nil(t, pred.BestRoom)
	assert.Empty(t, pred.AllRoomScores)
}
