package types

// Client -> Server
//
// POST /games
//   method: "joinGame" | "revealColor" | "accuse" | "clearAccusation" | "getState"
//   data:
//     playerName: string
//     accusedPlayerName: string // accuse only
//
// Server -> Client
//
// 200 success:  { status: true,  gameState: GameState, version: number }
// 200 rejected: { status: false, errorMessage: ErrorTag }
// 400 / 500:    { errorMessage: string }

const (
	MethodJoinGame        = "joinGame"
	MethodRevealColor     = "revealColor"
	MethodAccuse          = "accuse"
	MethodClearAccusation = "clearAccusation"
	MethodGetState        = "getState"

	// Older clients spell it this way.
	MethodClearAccusationLegacy = "clearAccusition"
)

const (
	FieldPlayerName        = "playerName"
	FieldAccusedPlayerName = "accusedPlayerName"
)

type ErrorTag string

const (
	ErrPlayerAlreadyExists    ErrorTag = "playerAlreadyExists"
	ErrPlayerDoesNotExist     ErrorTag = "playerDoesNotExist"
	ErrGameIsFull             ErrorTag = "gameIsFull"
	ErrNotEnoughPlayersJoined ErrorTag = "notEnoughPlayersJoined"
	ErrGameOver               ErrorTag = "gameOver"
	ErrGameNotStarted         ErrorTag = "gameNotStarted"
)

type Request struct {
	Method string      `json:"method"`
	Data   RequestData `json:"data"`
}

type RequestData struct {
	PlayerName        string `json:"playerName"`
	AccusedPlayerName string `json:"accusedPlayerName,omitempty"`
}

type Response struct {
	Status       bool       `json:"status"`
	GameState    *GameState `json:"gameState,omitempty"`
	Version      int        `json:"version,omitempty"`
	ErrorMessage ErrorTag   `json:"errorMessage,omitempty"`
}

// ErrorResponse is the body of every 4xx/5xx reply. It never carries
// internal detail.
type ErrorResponse struct {
	ErrorMessage string `json:"errorMessage"`
}
