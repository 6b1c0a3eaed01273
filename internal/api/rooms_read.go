package api

import (
	"net/http"
	"strconv"

	"github.com/baicaiyihao/omni-agent-arena/internal/constants"
	"github.com/baicaiyihao/omni-agent-arena/internal/dedupe"
	"github.com/baicaiyihao/omni-agent-arena/internal/game"

	"github.com/gin-gonic/gin"
)

type lobbyRoom struct {
	RoomID  string        `json:"room_id"`
	Name    string        `json:"name"`
	Type    game.RoomType `json:"type"`
	Status  game.Status   `json:"status"`
	Players int           `json:"players"`
}

// Lobby lists joinable and watchable rooms. Finished rooms are omitted.
func (h *RoomHandler) Lobby(c *gin.Context) {
	rooms := make([]lobbyRoom, 0)
	for _, s := range h.rooms.List() {
		snap := s.Snapshot()
		if snap.Status == game.StatusFinished {
			continue
		}
		players := 0
		if snap.Side1 != nil {
			players++
		}
		if snap.Side2 != nil {
			players++
		}
		name := "Arena #" + snap.ID
		if snap.Type == game.RoomPvE {
			name = "PvE #" + snap.ID
		}
		rooms = append(rooms, lobbyRoom{
			RoomID:  snap.ID,
			Name:    name,
			Type:    snap.Type,
			Status:  snap.Status,
			Players: players,
		})
	}
	c.JSON(http.StatusOK, gin.H{constants.JSONKeyRooms: rooms})
}

// RoomStatus returns a point-in-time snapshot of one room, the polling
// endpoint clients hit for battle progress. A vanished room reports closed
// instead of an error so pollers terminate cleanly.
func (h *RoomHandler) RoomStatus(c *gin.Context) {
	roomID := normalizeRoomID(c.Param("roomID"))
	s, ok := h.rooms.Get(roomID)
	if !ok {
		c.JSON(http.StatusOK, gin.H{constants.JSONKeyStatus: "closed"})
		return
	}

	snap := s.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		constants.JSONKeyStatus: snap.Status,
		constants.JSONKeyRoom: gin.H{
			"id":         snap.ID,
			"type":       snap.Type,
			"p1":         snap.Side1,
			"p2":         snap.Side2,
			"winner":     snap.Winner,
			"end_reason": snap.EndReason,
			"spectators": snap.Spectators,
		},
		constants.JSONKeyLogs: snap.Logs,
	})
}

// Leaderboard returns the top players by wins. Concurrent requests for the
// same limit are collapsed into a single database query.
func (h *RoomHandler) Leaderboard(c *gin.Context) {
	limit := 10
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	v, err, _ := dedupe.LeaderboardGroup.Do("top:"+strconv.Itoa(limit), func() (interface{}, error) {
		return h.repo.GetTopPlayers(limit)
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedFetchLeaderboard})
		return
	}
	c.JSON(http.StatusOK, gin.H{constants.JSONKeyPlayers: v})
}

// PlayerStats returns the aggregate profile for one address.
func (h *RoomHandler) PlayerStats(c *gin.Context) {
	address := c.Query("address")
	if address == "" {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrAddressRequired})
		return
	}
	p, err := h.repo.GetProfileByAddress(address)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedFetchStats})
		return
	}
	c.JSON(http.StatusOK, p)
}
