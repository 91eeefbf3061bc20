// Package trivia implements a round-based quiz game type. Each round all
// players answer the current question; the round completes when every
// player has answered, and the game ends after the last question.
package trivia

import (
	"encoding/json"
	"errors"

	"github.com/mcoot/gameroom-go/internal/gametype"
	"github.com/mcoot/gameroom-go/internal/model"
)

// Question is a single multiple-choice question. The answer index is
// never serialized to clients.
type Question struct {
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
	Answer  int      `json:"-"`
}

// defaultQuestions is a small built-in bank; production deployments load
// a real bank through NewWithQuestions.
var defaultQuestions = []Question{
	{Prompt: "Which planet is closest to the sun?", Options: []string{"Venus", "Mercury", "Mars", "Earth"}, Answer: 1},
	{Prompt: "How many sides does a hexagon have?", Options: []string{"five", "six", "seven", "eight"}, Answer: 1},
	{Prompt: "What is the largest ocean?", Options: []string{"Atlantic", "Indian", "Pacific", "Arctic"}, Answer: 2},
	{Prompt: "Which element has the symbol O?", Options: []string{"Gold", "Osmium", "Oxygen", "Iron"}, Answer: 2},
	{Prompt: "How many continents are there?", Options: []string{"five", "six", "seven", "eight"}, Answer: 2},
}

// Game is the trivia state machine. Not safe for concurrent use; the
// hosting room serializes all calls.
type Game struct {
	questions []Question
	current   int
	players   []model.Player
	scores    map[model.ConnectionID]int
	answered  map[model.ConnectionID]bool
	over      bool
}

// New creates a trivia game with the built-in question bank
func New() gametype.Game {
	return NewWithQuestions(defaultQuestions)
}

// NewWithQuestions creates a trivia game with a custom question bank. An
// empty bank yields a game that is already over; there is no question to
// answer, so every action is rejected instead of indexing past the bank.
func NewWithQuestions(questions []Question) *Game {
	return &Game{
		questions: questions,
		scores:    make(map[model.ConnectionID]int),
		answered:  make(map[model.ConnectionID]bool),
		over:      len(questions) == 0,
	}
}

// Init records the player set and zeroes all scores
func (g *Game) Init(players []model.Player) {
	g.players = append([]model.Player(nil), players...)
	for _, p := range players {
		g.scores[p.ConnectionID] = 0
	}
}

// answerAction is the expected shape of a trivia game-action payload
type answerAction struct {
	Type   string `json:"type"`
	Answer int    `json:"answer"`
}

// answerResult is broadcast to the room after each accepted answer, and
// with type "question-complete" (no player) when a departure completes
// the question instead.
type answerResult struct {
	Type             string                     `json:"type"`
	Player           model.ConnectionID         `json:"player,omitempty"`
	Correct          bool                       `json:"correct"`
	Scores           map[model.ConnectionID]int `json:"scores"`
	QuestionComplete bool                       `json:"questionComplete"`
}

// HandleAction processes one answer from a player
func (g *Game) HandleAction(player model.ConnectionID, action json.RawMessage) (*gametype.Result, error) {
	if g.over {
		return nil, errors.New("game is over")
	}

	var act answerAction
	if err := json.Unmarshal(action, &act); err != nil {
		return nil, errors.New("malformed action")
	}
	if act.Type != "answer" {
		return nil, errors.New("unsupported action type")
	}
	if act.Answer < 0 || act.Answer >= len(g.questions[g.current].Options) {
		return nil, errors.New("answer out of range")
	}
	if g.answered[player] {
		return nil, errors.New("player has already answered this question")
	}

	g.answered[player] = true
	correct := act.Answer == g.questions[g.current].Answer
	if correct {
		g.scores[player]++
	}

	questionComplete := len(g.answered) == len(g.players)
	result := &gametype.Result{
		Payload: answerResult{
			Type:             "answer-result",
			Player:           player,
			Correct:          correct,
			Scores:           copyScores(g.scores),
			QuestionComplete: questionComplete,
		},
	}

	if questionComplete {
		if g.completeQuestion() {
			result.GameOver = true
		} else {
			result.AdvanceRound = true
		}
	}

	return result, nil
}

// PlayerLeft drops a departed player from the game. Their score and any
// pending answer are discarded, and round completion is re-evaluated
// against the remaining players: without this a question whose only
// missing answer belonged to the departed player would never complete.
func (g *Game) PlayerLeft(player model.ConnectionID) *gametype.Result {
	if g.over {
		return nil
	}

	idx := -1
	for i, p := range g.players {
		if p.ConnectionID == player {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	g.players = append(g.players[:idx], g.players[idx+1:]...)
	delete(g.answered, player)
	delete(g.scores, player)

	if len(g.players) == 0 || len(g.answered) < len(g.players) {
		return nil
	}

	result := &gametype.Result{
		Payload: answerResult{
			Type:             "question-complete",
			Scores:           copyScores(g.scores),
			QuestionComplete: true,
		},
	}
	if g.completeQuestion() {
		result.GameOver = true
	} else {
		result.AdvanceRound = true
	}
	return result
}

// completeQuestion advances past the current question and reports
// whether the bank is exhausted. Callers must have verified that every
// current player has answered.
func (g *Game) completeQuestion() bool {
	g.current++
	g.answered = make(map[model.ConnectionID]bool)
	if g.current >= len(g.questions) {
		g.over = true
	}
	return g.over
}

// IsOver reports whether all questions have been answered
func (g *Game) IsOver() bool {
	return g.over
}

// snapshot is the serializable projection of trivia state
type snapshot struct {
	Question       *Question                  `json:"question,omitempty"`
	QuestionNumber int                        `json:"questionNumber"`
	TotalQuestions int                        `json:"totalQuestions"`
	Scores         map[model.ConnectionID]int `json:"scores"`
}

// Snapshot returns a copy of the game state safe to broadcast. The
// current question's answer index is excluded by its json tag.
func (g *Game) Snapshot() any {
	s := snapshot{
		QuestionNumber: g.current + 1,
		TotalQuestions: len(g.questions),
		Scores:         copyScores(g.scores),
	}
	if !g.over && g.current < len(g.questions) {
		q := g.questions[g.current]
		q.Options = append([]string(nil), q.Options...)
		s.Question = &q
	} else {
		s.QuestionNumber = len(g.questions)
	}
	return s
}

func copyScores(scores map[model.ConnectionID]int) map[model.ConnectionID]int {
	out := make(map[model.ConnectionID]int, len(scores))
	for k, v := range scores {
		out[k] = v
	}
	return out
}
