package handler

import (
	"net/http"
	"sort"

	"github.com/gorilla/mux"

	"github.com/mcoot/gameroom-go/internal/api/apierr"
	"github.com/mcoot/gameroom-go/internal/api/response"
	"github.com/mcoot/gameroom-go/internal/directory"
	"github.com/mcoot/gameroom-go/internal/gametype"
	"github.com/mcoot/gameroom-go/internal/model"
)

// RoomHandler serves read-only views of live rooms
type RoomHandler struct {
	directory *directory.Directory
	registry  *gametype.Registry
}

// NewRoomHandler creates a new RoomHandler
func NewRoomHandler(dir *directory.Directory, registry *gametype.Registry) *RoomHandler {
	return &RoomHandler{directory: dir, registry: registry}
}

// ListRoomsResponse is the response for listing live rooms
type ListRoomsResponse struct {
	Rooms []model.RoomSnapshot `json:"rooms"`
}

// List handles GET /api/v1/rooms
func (h *RoomHandler) List(w http.ResponseWriter, r *http.Request) {
	snaps := h.directory.ListRooms()
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].RoomID < snaps[j].RoomID })
	response.JSON(w, http.StatusOK, ListRoomsResponse{Rooms: snaps})
}

// Get handles GET /api/v1/rooms/{code}
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	code := model.RoomID(mux.Vars(r)["code"])

	room, err := h.directory.GetRoom(code)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, room.Snapshot())
}

// ListGameTypesResponse is the response for listing registered game types
type ListGameTypesResponse struct {
	GameTypes []model.GameTypeID `json:"gameTypes"`
}

// GameTypes handles GET /api/v1/gametypes
func (h *RoomHandler) GameTypes(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, ListGameTypesResponse{GameTypes: h.registry.List()})
}
