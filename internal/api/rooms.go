package api

import (
	"net/http"

	"github.com/baicaiyihao/omni-agent-arena/internal/constants"
	"github.com/baicaiyihao/omni-agent-arena/internal/game"
	"github.com/baicaiyihao/omni-agent-arena/internal/logging"
	"github.com/baicaiyihao/omni-agent-arena/internal/session"

	"github.com/gin-gonic/gin"
)

type LoginPayload struct {
	Address     string `json:"address"`
	DisplayName string `json:"display_name"`
}

// Login registers the wallet address and reports whether it is already seated
// in a room, so a reconnecting client can resume polling it.
func (h *RoomHandler) Login(c *gin.Context) {
	var req LoginPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	if req.Address == "" {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrAddressRequired})
		return
	}

	if err := h.repo.UpsertProfile(req.Address); err != nil {
		logging.Error("failed to upsert profile on login", err, logging.Fields{constants.LogFieldAddress: req.Address})
	}
	if req.DisplayName != "" {
		if p, err := h.repo.GetProfileByAddress(req.Address); err == nil {
			p.DisplayName = req.DisplayName
			_ = h.repo.SaveProfile(p)
		}
	}

	resp := gin.H{constants.JSONKeyMessage: "Logged in"}
	if s, ok := h.rooms.FindByAddress(req.Address); ok {
		resp[constants.JSONKeyRoomID] = s.ID()
	}
	c.JSON(http.StatusOK, resp)
}

type JoinRoomPayload struct {
	Address string `json:"address"`
	RoomID  string `json:"room_id"`
	Chain   string `json:"chain"`
}

// JoinRoom creates a room when no room_id is given, otherwise seats the
// caller in the named room. A full room admits the caller as a spectator.
func (h *RoomHandler) JoinRoom(c *gin.Context) {
	var req JoinRoomPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	if req.Address == "" {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrAddressRequired})
		return
	}

	roomID := normalizeRoomID(req.RoomID)
	if roomID == "" {
		roomID = generateRoomID()
		s := session.New(roomID, game.RoomPvP, game.StatusWaiting)
		s.SetCombatant(game.SideOne, &game.Combatant{Address: req.Address, Chain: req.Chain})
		h.rooms.Add(s)
		logging.Info("room created", logging.Fields{constants.LogFieldRoomID: roomID, constants.LogFieldAddress: req.Address})
		c.JSON(http.StatusCreated, gin.H{constants.JSONKeyRoomID: roomID, constants.JSONKeyRole: constants.RolePlayer})
		return
	}

	s, ok := h.rooms.Get(roomID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{constants.JSONKeyError: constants.ErrRoomNotFound})
		return
	}
	if s.HasParticipant(req.Address) {
		c.JSON(http.StatusOK, gin.H{constants.JSONKeyRoomID: roomID, constants.JSONKeyRole: constants.RolePlayer})
		return
	}
	if s.Join(&game.Combatant{Address: req.Address, Chain: req.Chain}) {
		logging.Info("player joined room", logging.Fields{constants.LogFieldRoomID: roomID, constants.LogFieldAddress: req.Address})
		c.JSON(http.StatusOK, gin.H{constants.JSONKeyRoomID: roomID, constants.JSONKeyRole: constants.RolePlayer})
		return
	}
	s.AddSpectator(req.Address)
	c.JSON(http.StatusOK, gin.H{constants.JSONKeyRoomID: roomID, constants.JSONKeyRole: constants.RoleSpectator})
}

type PvEPayload struct {
	Address string    `json:"address"`
	Hero    game.Hero `json:"hero"`
	Chain   string    `json:"chain"`
}

// PvE creates a room against the built-in agent. Both sides are seated ready
// and the battle starts immediately.
func (h *RoomHandler) PvE(c *gin.Context) {
	var req PvEPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	if req.Address == "" {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrAddressRequired})
		return
	}

	hero := req.Hero
	if hero == game.HeroNone {
		hero = game.RandomHeroExcept(game.HeroNone)
	}
	chain := req.Chain
	if chain == "" {
		chain = h.tuning.Side1Chain
	}

	roomID := "PvE_" + generateRoomID()
	s := session.New(roomID, game.RoomPvE, game.StatusFighting)
	s.SetCombatant(game.SideOne, &game.Combatant{
		Address: req.Address,
		Chain:   chain,
		Hero:    hero,
		Ready:   true,
	})
	s.SetCombatant(game.SideTwo, &game.Combatant{
		Address: constants.AIAgentAddress,
		Chain:   h.tuning.Side2Chain,
		Hero:    game.RandomHeroExcept(hero),
		Ready:   true,
	})
	h.rooms.Add(s)
	h.orch.StartBattle(roomID)

	c.JSON(http.StatusCreated, gin.H{constants.JSONKeyRoomID: roomID, constants.JSONKeyRole: constants.RolePlayer})
}

type ReadyPayload struct {
	Address string    `json:"address"`
	Hero    game.Hero `json:"hero"`
}

// Ready marks the caller's slot ready with the chosen hero. When both sides
// of a PvP room are ready the battle starts; repeated readiness signals after
// that are absorbed by the single-start guard.
func (h *RoomHandler) Ready(c *gin.Context) {
	var req ReadyPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	if req.Address == "" {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrAddressRequired})
		return
	}

	s, ok := h.rooms.FindByAddress(req.Address)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{constants.JSONKeyError: constants.ErrNotInRoom})
		return
	}

	hero := req.Hero
	if hero == game.HeroNone {
		hero = game.RandomHeroExcept(game.HeroNone)
	}
	bothReady, marked := s.SetReady(req.Address, hero)
	if !marked {
		c.JSON(http.StatusConflict, gin.H{constants.JSONKeyError: constants.ErrNotInRoom})
		return
	}
	if bothReady && s.Type() == game.RoomPvP {
		s.MarkFighting()
		h.orch.StartBattle(s.ID())
	}

	c.JSON(http.StatusOK, gin.H{constants.JSONKeyMessage: "Ready", constants.JSONKeyBothReady: bothReady})
}

type LeaveRoomPayload struct {
	Address string `json:"address"`
}

// LeaveRoom vacates the caller's slot. Leaving mid-fight is recorded as a
// departure; the battle loop notices the vacancy at the next round boundary.
// The room and its log are discarded once both slots are empty.
func (h *RoomHandler) LeaveRoom(c *gin.Context) {
	var req LeaveRoomPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	if req.Address == "" {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrAddressRequired})
		return
	}

	s, ok := h.rooms.FindByAddress(req.Address)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{constants.JSONKeyError: constants.ErrNotInRoom})
		return
	}

	removed, midFight, empty := s.Vacate(req.Address)
	if !removed {
		c.JSON(http.StatusNotFound, gin.H{constants.JSONKeyError: constants.ErrNotInRoom})
		return
	}
	if midFight {
		if err := h.repo.AddDeparture(req.Address); err != nil {
			logging.Error("failed to record departure", err, logging.Fields{constants.LogFieldAddress: req.Address})
		}
	}
	if empty {
		h.rooms.RemoveIfEmpty(s.ID())
	}
	logging.Info("player left room", logging.Fields{constants.LogFieldRoomID: s.ID(), constants.LogFieldAddress: req.Address})

	c.JSON(http.StatusOK, gin.H{constants.JSONKeyMessage: "Left room"})
}
