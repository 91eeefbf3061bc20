package trivia

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/gameroom-go/internal/model"
)

var testQuestions = []Question{
	{Prompt: "1+1?", Options: []string{"1", "2"}, Answer: 1},
	{Prompt: "2+2?", Options: []string{"3", "4"}, Answer: 1},
}

func testPlayers(ids ...string) []model.Player {
	players := make([]model.Player, 0, len(ids))
	for _, id := range ids {
		players = append(players, model.Player{
			ConnectionID: model.ConnectionID(id),
			DisplayName:  id,
			JoinedAt:     time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		})
	}
	return players
}

func answer(idx int) json.RawMessage {
	data, _ := json.Marshal(answerAction{Type: "answer", Answer: idx})
	return data
}

func TestCorrectAnswerScores(t *testing.T) {
	g := NewWithQuestions(testQuestions)
	g.Init(testPlayers("ana", "ben"))

	res, err := g.HandleAction("ana", answer(1))
	require.NoError(t, err)
	require.NotNil(t, res)

	payload := res.Payload.(answerResult)
	assert.True(t, payload.Correct)
	assert.Equal(t, 1, payload.Scores["ana"])
	assert.False(t, payload.QuestionComplete)
	assert.False(t, res.AdvanceRound)
}

func TestIncorrectAnswerDoesNotScore(t *testing.T) {
	g := NewWithQuestions(testQuestions)
	g.Init(testPlayers("ana", "ben"))

	res, err := g.HandleAction("ana", answer(0))
	require.NoError(t, err)

	payload := res.Payload.(answerResult)
	assert.False(t, payload.Correct)
	assert.Equal(t, 0, payload.Scores["ana"])
}

func TestRoundAdvancesWhenAllAnswered(t *testing.T) {
	g := NewWithQuestions(testQuestions)
	g.Init(testPlayers("ana", "ben"))

	_, err := g.HandleAction("ana", answer(1))
	require.NoError(t, err)
	res, err := g.HandleAction("ben", answer(0))
	require.NoError(t, err)

	assert.True(t, res.Payload.(answerResult).QuestionComplete)
	assert.True(t, res.AdvanceRound)
	assert.False(t, res.GameOver)

	// Both players may answer again on the next question
	_, err = g.HandleAction("ana", answer(1))
	assert.NoError(t, err)
}

func TestGameOverAfterLastQuestion(t *testing.T) {
	g := NewWithQuestions(testQuestions)
	g.Init(testPlayers("ana"))

	res, err := g.HandleAction("ana", answer(1))
	require.NoError(t, err)
	assert.True(t, res.AdvanceRound)

	res, err = g.HandleAction("ana", answer(1))
	require.NoError(t, err)
	assert.True(t, res.GameOver)
	assert.True(t, g.IsOver())

	_, err = g.HandleAction("ana", answer(0))
	assert.Error(t, err)
}

func TestDoubleAnswerRejected(t *testing.T) {
	g := NewWithQuestions(testQuestions)
	g.Init(testPlayers("ana", "ben"))

	_, err := g.HandleAction("ana", answer(1))
	require.NoError(t, err)
	_, err = g.HandleAction("ana", answer(1))
	assert.Error(t, err)
}

func TestMalformedActionsRejected(t *testing.T) {
	g := NewWithQuestions(testQuestions)
	g.Init(testPlayers("ana"))

	_, err := g.HandleAction("ana", json.RawMessage(`not json`))
	assert.Error(t, err)

	_, err = g.HandleAction("ana", json.RawMessage(`{"type":"dance"}`))
	assert.Error(t, err)

	_, err = g.HandleAction("ana", json.RawMessage(`{"type":"answer","answer":99}`))
	assert.Error(t, err)
}

func TestDepartureCompletesHeldUpQuestion(t *testing.T) {
	g := NewWithQuestions(testQuestions)
	g.Init(testPlayers("ana", "ben", "cal"))

	_, err := g.HandleAction("ana", answer(1))
	require.NoError(t, err)
	_, err = g.HandleAction("ben", answer(0))
	require.NoError(t, err)

	// cal leaves before answering; the question must complete for the
	// remaining players instead of waiting forever
	res := g.PlayerLeft("cal")
	require.NotNil(t, res)

	payload := res.Payload.(answerResult)
	assert.Equal(t, "question-complete", payload.Type)
	assert.True(t, payload.QuestionComplete)
	assert.True(t, res.AdvanceRound)
	assert.NotContains(t, payload.Scores, model.ConnectionID("cal"))

	// ana and ben are on the next question now
	_, err = g.HandleAction("ana", answer(1))
	assert.NoError(t, err)
}

func TestDepartureWithPendingAnswersIsSilent(t *testing.T) {
	g := NewWithQuestions(testQuestions)
	g.Init(testPlayers("ana", "ben", "cal"))

	_, err := g.HandleAction("ana", answer(1))
	require.NoError(t, err)

	// ben still owes an answer, so cal's departure completes nothing
	assert.Nil(t, g.PlayerLeft("cal"))
	assert.Nil(t, g.PlayerLeft("unknown"))

	res, err := g.HandleAction("ben", answer(1))
	require.NoError(t, err)
	assert.True(t, res.Payload.(answerResult).QuestionComplete)
}

func TestDepartureOnLastQuestionEndsGame(t *testing.T) {
	g := NewWithQuestions(testQuestions[:1])
	g.Init(testPlayers("ana", "ben"))

	_, err := g.HandleAction("ana", answer(1))
	require.NoError(t, err)

	res := g.PlayerLeft("ben")
	require.NotNil(t, res)
	assert.True(t, res.GameOver)
	assert.True(t, g.IsOver())
}

func TestLastPlayerDepartureIsSilent(t *testing.T) {
	g := NewWithQuestions(testQuestions)
	g.Init(testPlayers("ana"))

	assert.Nil(t, g.PlayerLeft("ana"))
	assert.False(t, g.IsOver())
}

func TestEmptyQuestionBankIsImmediatelyOver(t *testing.T) {
	g := NewWithQuestions(nil)
	g.Init(testPlayers("ana"))

	assert.True(t, g.IsOver())
	_, err := g.HandleAction("ana", answer(0))
	assert.Error(t, err)

	snap := g.Snapshot().(snapshot)
	assert.Nil(t, snap.Question)
	assert.Equal(t, 0, snap.TotalQuestions)
}

func TestSnapshotHidesAnswerAndCopiesState(t *testing.T) {
	g := NewWithQuestions(testQuestions)
	g.Init(testPlayers("ana"))

	snap := g.Snapshot().(snapshot)
	assert.Equal(t, 1, snap.QuestionNumber)
	assert.Equal(t, 2, snap.TotalQuestions)
	require.NotNil(t, snap.Question)
	assert.Equal(t, "1+1?", snap.Question.Prompt)

	// The answer index must not survive serialization
	data, err := json.Marshal(snap)
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"Answer"`)

	// Mutating the snapshot's scores must not affect the game
	snap.Scores["ana"] = 100
	assert.Equal(t, 0, g.scores["ana"])
}
