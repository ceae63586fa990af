package types

type Color string

const (
	ColorGreen Color = "green"
	ColorRed   Color = "red"
	ColorWhite Color = "white" // hidden, or no winner yet
)

// GameState is the game as seen by the requesting player. Colors of other
// living players are white unless the viewer is red.
type GameState struct {
	Players                  []PlayerState `json:"players"`
	GameStarted              bool          `json:"gameStarted"`
	AllPlayersEnteredTheGame bool          `json:"allPlayersEnteredTheGame"`
	GameOver                 bool          `json:"gameOver"`
	Winners                  Color         `json:"winners"`
}

type PlayerState struct {
	PlayerName string   `json:"playerName"`
	Accusers   []string `json:"accusers"`
	Accusing   *string  `json:"accusing"`
	Alive      bool     `json:"alive"`
	Ready      bool     `json:"ready"`
	Color      Color    `json:"color"`
}
