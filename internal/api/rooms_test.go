package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/baicaiyihao/omni-agent-arena/internal/battle"
	"github.com/baicaiyihao/omni-agent-arena/internal/constants"
	"github.com/baicaiyihao/omni-agent-arena/internal/decision"
	"github.com/baicaiyihao/omni-agent-arena/internal/game"
	"github.com/baicaiyihao/omni-agent-arena/internal/session"

	"github.com/gin-gonic/gin"
)

type stubProvider struct{}

func (stubProvider) Decide(ctx context.Context, attacker, defender decision.Snapshot) (game.Action, error) {
	return game.ActionDefend, nil
}

type stubRelay struct{}

func (stubRelay) Submit(ctx context.Context, chain string, action game.Action) (string, error) {
	return constants.TxRefSkipped, nil
}

type memRepo struct {
	mu         sync.Mutex
	profiles   map[string]*game.PlayerProfile
	departures []string
}

func newMemRepo() *memRepo {
	return &memRepo{profiles: make(map[string]*game.PlayerProfile)}
}

func (m *memRepo) UpsertProfile(address string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.profiles[address]; !ok {
		m.profiles[address] = &game.PlayerProfile{Address: address}
	}
	return nil
}

func (m *memRepo) GetProfileByAddress(address string) (*game.PlayerProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.profiles[address]; ok {
		cp := *p
		return &cp, nil
	}
	return &game.PlayerProfile{Address: address}, nil
}

func (m *memRepo) SaveProfile(p *game.PlayerProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.profiles[p.Address] = &cp
	return nil
}

func (m *memRepo) GetTopPlayers(limit int) ([]game.PlayerProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]game.PlayerProfile, 0, len(m.profiles))
	for _, p := range m.profiles {
		out = append(out, *p)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memRepo) RecordBattle(rec *game.BattleRecord) error { return nil }

func (m *memRepo) UpdateStatsOnBattleEnd(side1, side2, winner string) error { return nil }

func (m *memRepo) AddDeparture(address string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.departures = append(m.departures, address)
	return nil
}

func newTestRouter(repo *memRepo) (*gin.Engine, *session.Registry) {
	gin.SetMode(gin.TestMode)
	tuning := battle.DefaultTuning()
	tuning.TurnDelay = 0
	tuning.MaxRounds = 1

	rooms := session.NewRegistry()
	orch := battle.NewOrchestrator(rooms, stubProvider{}, stubRelay{}, repo, tuning)
	h := NewRoomHandler(rooms, orch, repo, tuning)

	router := gin.New()
	apiRoutes := router.Group(constants.RouteAPIPrefix)
	apiRoutes.POST(constants.RouteLogin, h.Login)
	apiRoutes.GET(constants.RouteLobby, h.Lobby)
	apiRoutes.POST(constants.RouteJoinRoom, h.JoinRoom)
	apiRoutes.POST(constants.RoutePvE, h.PvE)
	apiRoutes.POST(constants.RouteReady, h.Ready)
	apiRoutes.POST(constants.RouteLeaveRoom, h.LeaveRoom)
	apiRoutes.GET(constants.RouteRoomStatus, h.RoomStatus)
	apiRoutes.GET(constants.RouteLeaderboard, h.Leaderboard)
	apiRoutes.GET(constants.RoutePlayerStats, h.PlayerStats)
	return router, rooms
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(constants.HeaderContentType, constants.ContentTypeJSON)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	out := map[string]any{}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func TestJoinRoom_CreateJoinSpectate(t *testing.T) {
	router, _ := newTestRouter(newMemRepo())

	w, resp := doJSON(t, router, http.MethodPost, "/api/join-room", gin.H{"address": "0xA"})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	roomID, _ := resp["room_id"].(string)
	if roomID == "" {
		t.Fatalf("expected a room id, got %v", resp)
	}

	w, resp = doJSON(t, router, http.MethodPost, "/api/join-room", gin.H{"address": "0xB", "room_id": roomID})
	if w.Code != http.StatusOK || resp["role"] != "player" {
		t.Fatalf("expected second player seat, got %d %v", w.Code, resp)
	}

	w, resp = doJSON(t, router, http.MethodPost, "/api/join-room", gin.H{"address": "0xC", "room_id": roomID})
	if w.Code != http.StatusOK || resp["role"] != "spectator" {
		t.Fatalf("expected spectator role for a full room, got %d %v", w.Code, resp)
	}

	w, _ = doJSON(t, router, http.MethodPost, "/api/join-room", gin.H{"address": "0xD", "room_id": "ZZZZZZ"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown room, got %d", w.Code)
	}

	w, _ = doJSON(t, router, http.MethodPost, "/api/join-room", gin.H{})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without address, got %d", w.Code)
	}
}

func TestReady_StartsPvPBattleOnce(t *testing.T) {
	router, rooms := newTestRouter(newMemRepo())

	_, resp := doJSON(t, router, http.MethodPost, "/api/join-room", gin.H{"address": "0xA"})
	roomID := resp["room_id"].(string)
	doJSON(t, router, http.MethodPost, "/api/join-room", gin.H{"address": "0xB", "room_id": roomID})

	w, resp := doJSON(t, router, http.MethodPost, "/api/ready", gin.H{"address": "0xA", "hero": "WARRIOR"})
	if w.Code != http.StatusOK || resp["both_ready"] != false {
		t.Fatalf("expected not both ready yet, got %d %v", w.Code, resp)
	}

	w, resp = doJSON(t, router, http.MethodPost, "/api/ready", gin.H{"address": "0xB", "hero": "MAGE"})
	if w.Code != http.StatusOK || resp["both_ready"] != true {
		t.Fatalf("expected both ready, got %d %v", w.Code, resp)
	}

	s, ok := rooms.Get(roomID)
	if !ok {
		t.Fatalf("room vanished")
	}
	// Duplicate readiness after start must not claim the battle again.
	doJSON(t, router, http.MethodPost, "/api/ready", gin.H{"address": "0xA", "hero": "WARRIOR"})
	if s.TryStartBattle() {
		t.Fatalf("battle start must have been claimed exactly once")
	}

	waitFinished(t, s)
}

func TestPvE_StartsImmediately(t *testing.T) {
	router, rooms := newTestRouter(newMemRepo())

	w, resp := doJSON(t, router, http.MethodPost, "/api/pve", gin.H{"address": "0xA", "hero": "WARRIOR"})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	roomID := resp["room_id"].(string)

	s, ok := rooms.Get(roomID)
	if !ok {
		t.Fatalf("pve room not registered")
	}
	if s.Type() != game.RoomPvE {
		t.Fatalf("expected PvE room, got %v", s.Type())
	}
	waitFinished(t, s)

	snap := s.Snapshot()
	if snap.Side2 == nil || snap.Side2.Address != constants.AIAgentAddress {
		t.Fatalf("expected agent opponent, got %+v", snap.Side2)
	}
	if snap.Side2.Hero == game.HeroWarrior {
		t.Fatalf("agent must not mirror the player's hero")
	}
}

func TestLeaveRoom_MidFightRecordsDeparture(t *testing.T) {
	repo := newMemRepo()
	router, rooms := newTestRouter(repo)

	_, resp := doJSON(t, router, http.MethodPost, "/api/join-room", gin.H{"address": "0xA"})
	roomID := resp["room_id"].(string)
	doJSON(t, router, http.MethodPost, "/api/join-room", gin.H{"address": "0xB", "room_id": roomID})

	s, _ := rooms.Get(roomID)
	s.MarkFighting()

	w, _ := doJSON(t, router, http.MethodPost, "/api/leave-room", gin.H{"address": "0xB"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	repo.mu.Lock()
	departures := append([]string(nil), repo.departures...)
	repo.mu.Unlock()
	if len(departures) != 1 || departures[0] != "0xB" {
		t.Fatalf("expected departure for 0xB, got %v", departures)
	}

	// Last participant leaving closes the room.
	doJSON(t, router, http.MethodPost, "/api/leave-room", gin.H{"address": "0xA"})
	if _, ok := rooms.Get(roomID); ok {
		t.Fatalf("expected empty room to be removed")
	}
	w2, status := doJSON(t, router, http.MethodGet, "/api/room-status/"+roomID, nil)
	if w2.Code != http.StatusOK || status[constants.JSONKeyStatus] != "closed" {
		t.Fatalf("expected closed status, got %d %v", w2.Code, status)
	}
}

func TestRoomStatus_SnapshotShape(t *testing.T) {
	router, _ := newTestRouter(newMemRepo())

	_, resp := doJSON(t, router, http.MethodPost, "/api/join-room", gin.H{"address": "0xA"})
	roomID := resp["room_id"].(string)

	w, resp := doJSON(t, router, http.MethodGet, "/api/room-status/"+roomID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if resp[constants.JSONKeyStatus] != string(game.StatusWaiting) {
		t.Fatalf("expected waiting status, got %v", resp[constants.JSONKeyStatus])
	}
	room, _ := resp["room"].(map[string]any)
	if room == nil || room["id"] != roomID {
		t.Fatalf("expected room payload, got %v", resp)
	}
	if _, ok := resp["logs"]; !ok {
		t.Fatalf("expected logs array in status payload")
	}
}

func TestLoginAndStats(t *testing.T) {
	repo := newMemRepo()
	router, _ := newTestRouter(repo)

	w, _ := doJSON(t, router, http.MethodPost, "/api/login", gin.H{"address": "0xA", "display_name": "Neo"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	w, _ = doJSON(t, router, http.MethodPost, "/api/login", gin.H{})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without address, got %d", w.Code)
	}

	w, resp := doJSON(t, router, http.MethodGet, "/api/player-stats?address=0xA", nil)
	if w.Code != http.StatusOK || resp["display_name"] != "Neo" {
		t.Fatalf("expected saved display name, got %d %v", w.Code, resp)
	}

	// A seated player's login reply points back at their room.
	_, join := doJSON(t, router, http.MethodPost, "/api/join-room", gin.H{"address": "0xA"})
	_, again := doJSON(t, router, http.MethodPost, "/api/login", gin.H{"address": "0xA"})
	if again["room_id"] != join["room_id"] {
		t.Fatalf("expected login to report the seated room, got %v", again)
	}
}

func TestLobby_OmitsFinishedRooms(t *testing.T) {
	router, rooms := newTestRouter(newMemRepo())

	_, resp := doJSON(t, router, http.MethodPost, "/api/join-room", gin.H{"address": "0xA"})
	roomID := resp["room_id"].(string)

	w, lobby := doJSON(t, router, http.MethodGet, "/api/lobby", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if list, _ := lobby["rooms"].([]any); len(list) != 1 {
		t.Fatalf("expected one lobby room, got %v", lobby)
	}

	s, _ := rooms.Get(roomID)
	s.RecordResult(game.SideOne, game.EndReasonKnockout)

	_, lobby = doJSON(t, router, http.MethodGet, "/api/lobby", nil)
	if list, _ := lobby["rooms"].([]any); len(list) != 0 {
		t.Fatalf("finished rooms must not be listed, got %v", lobby)
	}
}

func waitFinished(t *testing.T, s *session.Session) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if s.Status() == game.StatusFinished {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("battle did not finish in time, status %v", s.Status())
}
