package api

import (
	"github.com/baicaiyihao/omni-agent-arena/internal/battle"
	"github.com/baicaiyihao/omni-agent-arena/internal/session"
	"github.com/baicaiyihao/omni-agent-arena/internal/storage"
)

// RoomHandler groups all room-related HTTP handlers.
type RoomHandler struct {
	rooms  *session.Registry
	orch   *battle.Orchestrator
	repo   storage.Repository
	tuning battle.Tuning
}

// NewRoomHandler creates a new RoomHandler over the shared room registry,
// battle orchestrator and profile repository.
func NewRoomHandler(rooms *session.Registry, orch *battle.Orchestrator, repo storage.Repository, tuning battle.Tuning) *RoomHandler {
	return &RoomHandler{rooms: rooms, orch: orch, repo: repo, tuning: tuning}
}
