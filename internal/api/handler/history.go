package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/gameroom-go/internal/api/apierr"
	"github.com/mcoot/gameroom-go/internal/api/response"
	"github.com/mcoot/gameroom-go/internal/model"
	"github.com/mcoot/gameroom-go/internal/storage"
)

// HistoryHandler serves summaries of destroyed rooms
type HistoryHandler struct {
	storage storage.Storage
}

// NewHistoryHandler creates a new HistoryHandler
func NewHistoryHandler(store storage.Storage) *HistoryHandler {
	return &HistoryHandler{storage: store}
}

// ListHistoryResponse is the response for listing room summaries
type ListHistoryResponse struct {
	Summaries []*model.RoomSummary `json:"summaries"`
}

// List handles GET /api/v1/history
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.storage.ListSummaries(r.Context())
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, ListHistoryResponse{Summaries: summaries})
}

// Get handles GET /api/v1/history/{code}
func (h *HistoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	code := model.RoomID(mux.Vars(r)["code"])

	summary, err := h.storage.GetSummary(r.Context(), code)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, summary)
}
