package constants

// Centralized constants for headers, chains, provider integration and the
// HTTP surface.
const (
	// HTTP headers and content types
	HeaderAuthorization = "Authorization"
	HeaderContentType   = "Content-Type"

	ContentTypeJSON = "application/json"

	// Authorization prefix
	BearerPrefix = "Bearer "

	// Move-decision provider defaults (OpenAI-compatible endpoint)
	ProviderBaseURL             = "https://dashscope.aliyuncs.com/compatible-mode/v1"
	ProviderChatCompletionsPath = "/chat/completions"
	ProviderChatModel           = "qwen-plus"

	// Chain identifiers used for the two cross-chain legs
	ChainBase = "Base"
	ChainEth  = "Eth"

	// Transaction reference placeholders returned when relay submission is
	// skipped or fails. The battle proceeds identically either way.
	TxRefSkipped    = "0xSkipped"
	TxRefError      = "0xMockHash_Error"
	TxRefNoHash     = "0xMock_NoHash"
	TxRefParseError = "0xMock_ParseError"

	// Address of the built-in automated opponent in PvE rooms
	AIAgentAddress = "0xAI_AGENT"
)

// Routes used by the backend router
const (
	RouteAPIPrefix   = "/api"
	RouteLogin       = "/login"
	RouteLobby       = "/lobby"
	RouteJoinRoom    = "/join-room"
	RoutePvE         = "/pve"
	RouteReady       = "/ready"
	RouteLeaveRoom   = "/leave-room"
	RouteRoomStatus  = "/room-status/:roomID"
	RouteLeaderboard = "/leaderboard"
	RoutePlayerStats = "/player-stats"
)

// Common JSON response keys
const (
	JSONKeyError     = "error"
	JSONKeyMessage   = "message"
	JSONKeyStatus    = "status"
	JSONKeyRoomID    = "room_id"
	JSONKeyRole      = "role"
	JSONKeyRoom      = "room"
	JSONKeyRooms     = "rooms"
	JSONKeyLogs      = "logs"
	JSONKeyPlayers   = "players"
	JSONKeyBothReady = "both_ready"
)

// Roles reported to a caller entering a room
const (
	RolePlayer    = "player"
	RoleSpectator = "spectator"
)

// Common error messages used across API handlers
const (
	ErrInvalidRequest  = "Invalid request"
	ErrAddressRequired = "address is required"
	ErrRoomNotFound    = "Room not found"
	ErrRoomFull        = "Room is full"
	ErrNotInRoom       = "Player is not in a room"
	ErrUnknownAction   = "Unknown room action"

	ErrFailedFetchLeaderboard = "Failed to fetch leaderboard"
	ErrFailedFetchStats       = "Failed to fetch stats"
)

// Logging field names
const (
	LogFieldRoomID  = "room_id"
	LogFieldSide    = "side"
	LogFieldRound   = "round"
	LogFieldAddr    = "addr"
	LogFieldAddress = "address"
	LogFieldChain   = "chain"
	LogFieldAction  = "action"
	LogFieldTxRef   = "tx_ref"
	LogFieldFighter = "fighter"
)
