package service

import (
	"agendador/internal/domain"
	"agendador/internal/models"
)

// RoomService serves the room directory. Rooms come from config; there is
// no runtime mutation.
type RoomService struct {
	rooms []models.Room
	byID  map[string]models.Room
}

func NewRoomService(rooms []models.Room) *RoomService {
	byID := make(map[string]models.Room, len(rooms))
	for _, r := range rooms {
		byID[r.ID] = r
	}
	return &RoomService{rooms: rooms, byID: byID}
}

func (s *RoomService) Rooms() []models.Room {
	out := make([]models.Room, len(s.rooms))
	copy(out, s.rooms)
	return out
}

func (s *RoomService) RoomByID(id string) (*models.Room, error) {
	room, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	return &room, nil
}
