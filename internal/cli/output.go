package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case RoomSnapshot:
		o.printRoom(v)
	case RoomList:
		o.printRoomList(v)
	case RoomSummary:
		o.printSummary(v)
	case HistoryList:
		o.printHistoryList(v)
	case GameTypeList:
		o.printGameTypeList(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// RoomPlayer response type (matches API)
type RoomPlayer struct {
	ConnectionID string    `json:"connectionId"`
	DisplayName  string    `json:"displayName"`
	JoinedAt     time.Time `json:"joinedAt"`
}

// RoomSnapshot response type
type RoomSnapshot struct {
	RoomID       string          `json:"roomId"`
	GameType     string          `json:"gameType"`
	Status       string          `json:"status"`
	CurrentRound int             `json:"currentRound"`
	MaxPlayers   int             `json:"maxPlayers"`
	Players      []RoomPlayer    `json:"players"`
	GameData     json.RawMessage `json:"gameData,omitempty"`
}

// RoomList response type
type RoomList struct {
	Rooms []RoomSnapshot `json:"rooms"`
}

// RoomSummary response type
type RoomSummary struct {
	RoomID       string    `json:"roomId"`
	GameType     string    `json:"gameType"`
	FinalStatus  string    `json:"finalStatus"`
	RoundsPlayed int       `json:"roundsPlayed"`
	PlayerNames  []string  `json:"playerNames"`
	CreatedAt    time.Time `json:"createdAt"`
	ClosedAt     time.Time `json:"closedAt"`
}

// HistoryList response type
type HistoryList struct {
	Summaries []RoomSummary `json:"summaries"`
}

// GameTypeList response type
type GameTypeList struct {
	GameTypes []string `json:"gameTypes"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printRoom(r RoomSnapshot) {
	fmt.Printf("Room: %s\n", r.RoomID)
	fmt.Printf("Game Type: %s\n", r.GameType)
	fmt.Printf("Status: %s\n", r.Status)
	if r.CurrentRound > 0 {
		fmt.Printf("Round: %d\n", r.CurrentRound)
	}
	fmt.Printf("Players (%d/%d):\n", len(r.Players), r.MaxPlayers)
	for _, p := range r.Players {
		fmt.Printf("  - %s (joined %s)\n", p.DisplayName, p.JoinedAt.Format(time.RFC3339))
	}
	if len(r.GameData) > 0 {
		fmt.Println("Game State:")
		fmt.Printf("  %s\n", string(r.GameData))
	}
}

func (o *Output) printRoomList(l RoomList) {
	if len(l.Rooms) == 0 {
		fmt.Println("No live rooms")
		return
	}
	fmt.Printf("Rooms (%d):\n", len(l.Rooms))
	for _, r := range l.Rooms {
		fmt.Printf("  %s  %-10s %-8s %d/%d players\n",
			r.RoomID, r.GameType, r.Status, len(r.Players), r.MaxPlayers)
	}
}

func (o *Output) printSummary(s RoomSummary) {
	fmt.Printf("Room: %s\n", s.RoomID)
	fmt.Printf("Game Type: %s\n", s.GameType)
	fmt.Printf("Final Status: %s\n", s.FinalStatus)
	fmt.Printf("Rounds Played: %d\n", s.RoundsPlayed)
	fmt.Printf("Players: %s\n", strings.Join(s.PlayerNames, ", "))
	fmt.Printf("Created: %s\n", s.CreatedAt.Format(time.RFC3339))
	fmt.Printf("Closed: %s\n", s.ClosedAt.Format(time.RFC3339))
	fmt.Printf("Duration: %s\n", s.ClosedAt.Sub(s.CreatedAt))
}

func (o *Output) printHistoryList(l HistoryList) {
	if len(l.Summaries) == 0 {
		fmt.Println("No room history")
		return
	}
	fmt.Printf("History (%d):\n", len(l.Summaries))
	for _, s := range l.Summaries {
		fmt.Printf("  %s  %-10s %-8s %d players, closed %s\n",
			s.RoomID, s.GameType, s.FinalStatus, len(s.PlayerNames),
			s.ClosedAt.Format(time.RFC3339))
	}
}

func (o *Output) printGameTypeList(l GameTypeList) {
	fmt.Printf("Game Types (%d):\n", len(l.GameTypes))
	for _, gt := range l.GameTypes {
		fmt.Printf("  - %s\n", gt)
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
}
