// Package relay implements a cooperative word-relay game type. Players
// grow a shared chain where each word must start with the final letter
// of the previous word; the game ends when the chain reaches its target
// length.
package relay

import (
	"encoding/json"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/mcoot/gameroom-go/internal/gametype"
	"github.com/mcoot/gameroom-go/internal/model"
)

// DefaultTargetLength is the chain length at which the game ends
const DefaultTargetLength = 10

// Game is the relay state machine. Not safe for concurrent use; the
// hosting room serializes all calls.
type Game struct {
	chain  []string
	used   map[string]bool
	target int
	over   bool
}

// New creates a relay game with the default target length
func New() gametype.Game {
	return NewWithTarget(DefaultTargetLength)
}

// NewWithTarget creates a relay game ending at the given chain length
func NewWithTarget(target int) *Game {
	return &Game{
		used:   make(map[string]bool),
		target: target,
	}
}

// Init is a no-op; the relay chain starts empty regardless of players
func (g *Game) Init(players []model.Player) {}

// wordAction is the expected shape of a relay game-action payload
type wordAction struct {
	Type string `json:"type"`
	Word string `json:"word"`
}

// wordResult is broadcast to the room after each accepted word
type wordResult struct {
	Type      string             `json:"type"`
	Player    model.ConnectionID `json:"player"`
	Word      string             `json:"word"`
	Chain     []string           `json:"chain"`
	Remaining int                `json:"remaining"`
}

// HandleAction processes one word from a player
func (g *Game) HandleAction(player model.ConnectionID, action json.RawMessage) (*gametype.Result, error) {
	if g.over {
		return nil, errors.New("game is over")
	}

	var act wordAction
	if err := json.Unmarshal(action, &act); err != nil {
		return nil, errors.New("malformed action")
	}
	if act.Type != "word" {
		return nil, errors.New("unsupported action type")
	}

	word := strings.ToLower(strings.TrimSpace(act.Word))
	if word == "" {
		return nil, errors.New("empty word")
	}
	if g.used[word] {
		return nil, errors.New("word already used")
	}
	if len(g.chain) > 0 {
		prev := g.chain[len(g.chain)-1]
		last, _ := utf8.DecodeLastRuneInString(prev)
		first, _ := utf8.DecodeRuneInString(word)
		if last != first {
			return nil, errors.New("word must start with the previous word's last letter")
		}
	}

	g.chain = append(g.chain, word)
	g.used[word] = true
	if len(g.chain) >= g.target {
		g.over = true
	}

	return &gametype.Result{
		Payload: wordResult{
			Type:      "word-accepted",
			Player:    player,
			Word:      word,
			Chain:     append([]string(nil), g.chain...),
			Remaining: g.target - len(g.chain),
		},
		AdvanceRound: !g.over,
		GameOver:     g.over,
	}, nil
}

// IsOver reports whether the chain has reached its target length
func (g *Game) IsOver() bool {
	return g.over
}

// snapshot is the serializable projection of relay state
type snapshot struct {
	Chain  []string `json:"chain"`
	Target int      `json:"target"`
}

// Snapshot returns a copy of the game state safe to broadcast
func (g *Game) Snapshot() any {
	return snapshot{
		Chain:  append([]string(nil), g.chain...),
		Target: g.target,
	}
}
