package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/gameroom-go/internal/dependencies/mocks"
	"github.com/mcoot/gameroom-go/internal/directory"
	"github.com/mcoot/gameroom-go/internal/gametype"
	"github.com/mcoot/gameroom-go/internal/gametype/relay"
	"github.com/mcoot/gameroom-go/internal/gametype/trivia"
	"github.com/mcoot/gameroom-go/internal/model"
	"github.com/mcoot/gameroom-go/internal/storage/memory"
	"github.com/mcoot/gameroom-go/internal/testutil"
)

// recordingSink captures events per connection in delivery order
type recordingSink struct {
	mu     sync.Mutex
	events map[model.ConnectionID][]model.Event
}

func newRecordingSink() *recordingSink {
	return &recordingSink{events: make(map[model.ConnectionID][]model.Event)}
}

func (s *recordingSink) Send(conn model.ConnectionID, event model.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[conn] = append(s.events[conn], event)
}

func (s *recordingSink) eventsFor(conn model.ConnectionID) []model.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Event(nil), s.events[conn]...)
}

func (s *recordingSink) typesFor(conn model.ConnectionID) []model.EventType {
	events := s.eventsFor(conn)
	types := make([]model.EventType, 0, len(events))
	for _, e := range events {
		types = append(types, e.Type)
	}
	return types
}

type OrchestratorSuite struct {
	suite.Suite
	storage      *memory.Storage
	registry     *gametype.Registry
	clock        *mocks.MockClock
	random       *mocks.MockRandom
	directory    *directory.Directory
	sink         *recordingSink
	orchestrator *Orchestrator
	ctx          context.Context
}

func TestOrchestratorSuite(t *testing.T) {
	suite.Run(t, new(OrchestratorSuite))
}

func (s *OrchestratorSuite) SetupTest() {
	s.storage = memory.New()
	s.registry = gametype.NewRegistry()
	s.registry.Register("trivia", trivia.New, 3)
	s.registry.Register("relay", relay.New, 4)
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.directory = directory.New(s.registry, s.storage, s.clock, s.random, testutil.NopLogger())
	s.sink = newRecordingSink()
	s.orchestrator = NewOrchestrator(s.directory, s.sink, testutil.NopLogger())
	s.ctx = context.Background()
}

// createTriviaRoom creates a trivia room with Ana attached as conn-1
func (s *OrchestratorSuite) createTriviaRoom() model.RoomID {
	s.random.QueueCode("ROOMAA")
	s.orchestrator.HandleCreateGame(s.ctx, "conn-1", model.CreateGamePayload{
		GameType:   "trivia",
		PlayerName: "Ana",
	})
	return "ROOMAA"
}

func (s *OrchestratorSuite) join(conn model.ConnectionID, roomID model.RoomID, name string) {
	s.orchestrator.HandleJoinGame(s.ctx, conn, model.JoinGamePayload{
		RoomID:     roomID,
		PlayerName: name,
	})
}

// Create

func (s *OrchestratorSuite) TestCreateGameAcknowledgesRequesterOnly() {
	roomID := s.createTriviaRoom()

	events := s.sink.eventsFor("conn-1")
	s.Require().Len(events, 1)
	s.Equal(model.EventGameCreated, events[0].Type)

	payload := events[0].Payload.(model.GameCreatedPayload)
	s.Equal(roomID, payload.RoomID)
	s.Equal(model.GameTypeID("trivia"), payload.GameType)
	s.Require().Len(payload.Players, 1)
	s.Equal("Ana", payload.Players[0].DisplayName)

	attached, ok := s.orchestrator.RoomFor("conn-1")
	s.True(ok)
	s.Equal(roomID, attached)
}

func (s *OrchestratorSuite) TestCreateGameUnknownGameType() {
	s.orchestrator.HandleCreateGame(s.ctx, "conn-1", model.CreateGamePayload{
		GameType:   "chess",
		PlayerName: "Ana",
	})

	events := s.sink.eventsFor("conn-1")
	s.Require().Len(events, 1)
	s.Equal(model.EventError, events[0].Type)
	s.Equal("Unknown game type", events[0].Payload.(model.ErrorPayload).Message)

	_, ok := s.orchestrator.RoomFor("conn-1")
	s.False(ok)
}

// Join

func (s *OrchestratorSuite) TestJoinGameBroadcastsToWholeRoom() {
	roomID := s.createTriviaRoom()
	s.join("conn-2", roomID, "Ben")

	for _, conn := range []model.ConnectionID{"conn-1", "conn-2"} {
		events := s.sink.eventsFor(conn)
		last := events[len(events)-1]
		s.Equal(model.EventPlayerJoined, last.Type)
		payload := last.Payload.(model.PlayerJoinedPayload)
		s.Len(payload.Players, 2)
		s.Equal("Ben joined the room", payload.Message)
	}
}

func (s *OrchestratorSuite) TestJoinGameRoomNotFound() {
	s.join("conn-9", "MISSIN", "Zoe")

	events := s.sink.eventsFor("conn-9")
	s.Require().Len(events, 1)
	s.Equal(model.EventError, events[0].Type)
	s.Equal("Room not found", events[0].Payload.(model.ErrorPayload).Message)
}

func (s *OrchestratorSuite) TestFillingRoomStartsGameAfterJoinBroadcast() {
	roomID := s.createTriviaRoom()
	s.join("conn-2", roomID, "Ben")
	s.join("conn-3", roomID, "Cal")

	// Every member sees player-joined before game-started
	for _, conn := range []model.ConnectionID{"conn-1", "conn-2", "conn-3"} {
		types := s.sink.typesFor(conn)
		s.Require().GreaterOrEqual(len(types), 2)
		s.Equal(model.EventPlayerJoined, types[len(types)-2])
		s.Equal(model.EventGameStarted, types[len(types)-1])
	}

	events := s.sink.eventsFor("conn-1")
	snap := events[len(events)-1].Payload.(model.RoomSnapshot)
	s.Equal(model.RoomStatusPlaying, snap.Status)
	s.Equal(1, snap.CurrentRound)
	s.Len(snap.Players, 3)
}

func (s *OrchestratorSuite) TestJoinFullRoomRejectedWithoutSideEffects() {
	roomID := s.createTriviaRoom()
	s.join("conn-2", roomID, "Ben")
	s.join("conn-3", roomID, "Cal")

	before := map[model.ConnectionID]int{}
	for _, conn := range []model.ConnectionID{"conn-1", "conn-2", "conn-3"} {
		before[conn] = len(s.sink.eventsFor(conn))
	}

	s.join("conn-4", roomID, "Dee")

	events := s.sink.eventsFor("conn-4")
	s.Require().Len(events, 1)
	s.Equal(model.EventError, events[0].Type)
	s.Equal("Room is full", events[0].Payload.(model.ErrorPayload).Message)

	// The other three receive nothing
	for _, conn := range []model.ConnectionID{"conn-1", "conn-2", "conn-3"} {
		s.Len(s.sink.eventsFor(conn), before[conn])
	}

	r, err := s.directory.GetRoom(roomID)
	s.Require().NoError(err)
	s.Len(r.Members(), 3)
}

func (s *OrchestratorSuite) TestJoinWhileAttachedDetachesFirst() {
	first := s.createTriviaRoom()
	s.random.QueueCode("ROOMBB")
	s.orchestrator.HandleCreateGame(s.ctx, "conn-2", model.CreateGamePayload{
		GameType:   "relay",
		PlayerName: "Ben",
	})

	s.join("conn-2", first, "Ben")

	attached, ok := s.orchestrator.RoomFor("conn-2")
	s.True(ok)
	s.Equal(first, attached)

	// Ben's solo relay room emptied and was torn down
	_, err := s.directory.GetRoom("ROOMBB")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

// Actions

func (s *OrchestratorSuite) fillTriviaRoom() model.RoomID {
	roomID := s.createTriviaRoom()
	s.join("conn-2", roomID, "Ben")
	s.join("conn-3", roomID, "Cal")
	return roomID
}

func (s *OrchestratorSuite) TestGameActionBroadcastsUpdate() {
	s.fillTriviaRoom()

	s.orchestrator.HandleGameAction(s.ctx, "conn-1", json.RawMessage(`{"type":"answer","answer":1}`))

	for _, conn := range []model.ConnectionID{"conn-1", "conn-2", "conn-3"} {
		events := s.sink.eventsFor(conn)
		s.Equal(model.EventGameUpdate, events[len(events)-1].Type)
	}
}

func (s *OrchestratorSuite) TestGameActionFromUnattachedIsSilentlyIgnored() {
	s.orchestrator.HandleGameAction(s.ctx, "conn-ghost", json.RawMessage(`{"type":"answer","answer":0}`))
	s.Empty(s.sink.eventsFor("conn-ghost"))
}

func (s *OrchestratorSuite) TestRejectedActionOnlyErrorsRequester() {
	roomID := s.fillTriviaRoom()

	r, err := s.directory.GetRoom(roomID)
	s.Require().NoError(err)
	before := r.Snapshot()

	counts := map[model.ConnectionID]int{}
	for _, conn := range []model.ConnectionID{"conn-2", "conn-3"} {
		counts[conn] = len(s.sink.eventsFor(conn))
	}

	s.orchestrator.HandleGameAction(s.ctx, "conn-1", json.RawMessage(`{"type":"dance"}`))

	events := s.sink.eventsFor("conn-1")
	s.Equal(model.EventError, events[len(events)-1].Type)
	for _, conn := range []model.ConnectionID{"conn-2", "conn-3"} {
		s.Len(s.sink.eventsFor(conn), counts[conn])
	}

	// Room state unaffected by the rejection
	s.Equal(before, r.Snapshot())
}

func (s *OrchestratorSuite) TestActionWhileWaitingRejected() {
	roomID := s.createTriviaRoom()
	s.join("conn-2", roomID, "Ben")

	s.orchestrator.HandleGameAction(s.ctx, "conn-1", json.RawMessage(`{"type":"answer","answer":0}`))

	events := s.sink.eventsFor("conn-1")
	s.Equal(model.EventError, events[len(events)-1].Type)
}

// Disconnect

func (s *OrchestratorSuite) TestDisconnectBroadcastsPlayerLeft() {
	roomID := s.createTriviaRoom()
	s.join("conn-2", roomID, "Ben")

	s.orchestrator.HandleDisconnect(s.ctx, "conn-2")

	events := s.sink.eventsFor("conn-1")
	last := events[len(events)-1]
	s.Equal(model.EventPlayerLeft, last.Type)
	payload := last.Payload.(model.PlayerLeftPayload)
	s.Len(payload.Players, 1)
	s.Equal("Ben left the room", payload.Message)

	// Room still live in waiting state with one player
	r, err := s.directory.GetRoom(roomID)
	s.Require().NoError(err)
	s.Equal(model.RoomStatusWaiting, r.Status())
	s.Len(r.Members(), 1)
}

func (s *OrchestratorSuite) TestLastDisconnectDestroysRoom() {
	roomID := s.createTriviaRoom()

	s.orchestrator.HandleDisconnect(s.ctx, "conn-1")

	_, err := s.directory.GetRoom(roomID)
	s.ErrorIs(err, model.ErrRoomNotFound)

	// Teardown recorded a summary
	summary, err := s.storage.GetSummary(s.ctx, roomID)
	s.Require().NoError(err)
	s.Equal(model.GameTypeID("trivia"), summary.GameType)
}

func (s *OrchestratorSuite) TestDisconnectMidQuestionAdvancesGame() {
	s.fillTriviaRoom()
	s.orchestrator.HandleGameAction(s.ctx, "conn-1", json.RawMessage(`{"type":"answer","answer":1}`))
	s.orchestrator.HandleGameAction(s.ctx, "conn-2", json.RawMessage(`{"type":"answer","answer":1}`))

	// conn-3 held the only missing answer; its departure completes the
	// question for the remaining players
	s.orchestrator.HandleDisconnect(s.ctx, "conn-3")

	for _, conn := range []model.ConnectionID{"conn-1", "conn-2"} {
		types := s.sink.typesFor(conn)
		s.Require().GreaterOrEqual(len(types), 2)
		s.Equal(model.EventPlayerLeft, types[len(types)-2])
		s.Equal(model.EventGameUpdate, types[len(types)-1])
	}

	// The game moved on, so both may answer again
	s.orchestrator.HandleGameAction(s.ctx, "conn-1", json.RawMessage(`{"type":"answer","answer":1}`))
	events := s.sink.eventsFor("conn-1")
	s.Equal(model.EventGameUpdate, events[len(events)-1].Type)
}

func (s *OrchestratorSuite) TestDisconnectIsIdempotent() {
	s.createTriviaRoom()

	s.orchestrator.HandleDisconnect(s.ctx, "conn-1")
	s.orchestrator.HandleDisconnect(s.ctx, "conn-1")

	summaries, err := s.storage.ListSummaries(s.ctx)
	s.Require().NoError(err)
	s.Len(summaries, 1)
}

func (s *OrchestratorSuite) TestDisconnectUnattachedIsNoOp() {
	s.orchestrator.HandleDisconnect(s.ctx, "conn-ghost")
	s.Empty(s.sink.eventsFor("conn-ghost"))
}

// Index consistency

func (s *OrchestratorSuite) TestIndexAlwaysMatchesRoomMembership() {
	roomID := s.createTriviaRoom()
	s.join("conn-2", roomID, "Ben")

	for _, conn := range []model.ConnectionID{"conn-1", "conn-2"} {
		attached, ok := s.orchestrator.RoomFor(conn)
		s.Require().True(ok)
		r, err := s.directory.GetRoom(attached)
		s.Require().NoError(err)
		s.Contains(r.Members(), conn)
	}

	s.orchestrator.HandleDisconnect(s.ctx, "conn-2")
	_, ok := s.orchestrator.RoomFor("conn-2")
	s.False(ok)
}

// Concurrency

func (s *OrchestratorSuite) TestJoinRacingLastDisconnectKeepsIndexConsistent() {
	for i := 0; i < 200; i++ {
		s.random.QueueCode("ROOMDD")
		s.orchestrator.HandleCreateGame(s.ctx, "conn-a", model.CreateGamePayload{
			GameType:   "trivia",
			PlayerName: "Ana",
		})

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.orchestrator.HandleDisconnect(s.ctx, "conn-a")
		}()
		go func() {
			defer wg.Done()
			s.join("conn-b", "ROOMDD", "Ben")
		}()
		wg.Wait()

		// Either the join failed against the torn-down room, or it kept
		// the room alive; an index entry must never point at a destroyed
		// room.
		if roomID, ok := s.orchestrator.RoomFor("conn-b"); ok {
			r, err := s.directory.GetRoom(roomID)
			s.Require().NoError(err)
			s.Contains(r.Members(), model.ConnectionID("conn-b"))
			s.orchestrator.HandleDisconnect(s.ctx, "conn-b")
		}
	}
}

func (s *OrchestratorSuite) TestConcurrentDisconnectsFromSameRoom() {
	s.random.QueueCode("ROOMCC")
	s.orchestrator.HandleCreateGame(s.ctx, "conn-1", model.CreateGamePayload{
		GameType:   "relay",
		PlayerName: "Ana",
	})
	for i := 2; i <= 4; i++ {
		s.join(model.ConnectionID(fmt.Sprintf("conn-%d", i)), "ROOMCC", fmt.Sprintf("P%d", i))
	}

	var wg sync.WaitGroup
	for i := 1; i <= 4; i++ {
		conn := model.ConnectionID(fmt.Sprintf("conn-%d", i))
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.orchestrator.HandleDisconnect(s.ctx, conn)
		}()
	}
	wg.Wait()

	_, err := s.directory.GetRoom("ROOMCC")
	s.ErrorIs(err, model.ErrRoomNotFound)

	summaries, err := s.storage.ListSummaries(s.ctx)
	s.Require().NoError(err)
	s.Len(summaries, 1)
}
