package messaging

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"jobmatch/internal/identity"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Handler exposes the sync protocol over HTTP. Every read is a full,
// idempotent query against current store state; the only mutation is the
// send endpoint.
type Handler struct {
	service  *Service
	hub      *Hub
	validate *validator.Validate
	log      *slog.Logger
}

func NewHandler(service *Service, hub *Hub, log *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		hub:      hub,
		validate: validator.New(),
		log:      log,
	}
}

type sendRequest struct {
	Content string `json:"content" validate:"required"`
}

type roomListResponse struct {
	Rooms []RoomEntry `json:"rooms"`
}

type transcriptResponse struct {
	Messages []Message `json:"messages"`
}

// ListRooms handles GET /api/rooms.
func (h *Handler) ListRooms(w http.ResponseWriter, r *http.Request) {
	caller, err := h.caller(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	entries, err := h.service.RoomList(r.Context(), caller)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, roomListResponse{Rooms: entries})
}

// GetMessages handles GET /api/rooms/{roomID}/messages?after=<seq>&limit=<n>.
func (h *Handler) GetMessages(w http.ResponseWriter, r *http.Request) {
	caller, err := h.caller(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	roomID, err := uuid.Parse(chi.URLParam(r, "roomID"))
	if err != nil {
		h.writeError(w, ErrNotFound)
		return
	}

	var after *int64
	if raw := r.URL.Query().Get("after"); raw != "" {
		seq, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.writeError(w, ErrValidation)
			return
		}
		after = lo.ToPtr(seq)
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}

	messages, err := h.service.Transcript(r.Context(), caller, roomID, after, limit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, transcriptResponse{Messages: messages})
}

// PostMessage handles POST /api/rooms/{roomID}/messages. The commit is
// durable before the 201 goes out, which is what makes send-then-resync
// reliably observe the new message.
func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	caller, err := h.caller(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	roomID, err := uuid.Parse(chi.URLParam(r, "roomID"))
	if err != nil {
		h.writeError(w, ErrNotFound)
		return
	}

	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, ErrValidation)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.writeError(w, ErrValidation)
		return
	}

	msg, err := h.service.Send(r.Context(), caller, roomID, req.Content)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

// ServeWS handles GET /ws: the activity-hint stream. Hints only tell a
// client to re-sync sooner; transcripts are always read through the pull
// endpoints above.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	caller, err := h.caller(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.hub.ServeWS(w, r, caller.ID)
}

func (h *Handler) caller(r *http.Request) (Party, error) {
	id, ok := identity.FromContext(r.Context())
	if !ok {
		return Party{}, ErrUnauthenticated
	}
	return h.service.Caller(r.Context(), id.UID, PartyKind(id.Kind))
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, ErrUnauthenticated):
		status = http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		status = http.StatusNotFound
	default:
		h.log.Error("request failed", "error", err)
		err = errors.New("internal error")
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
