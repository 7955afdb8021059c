package frame

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/winsznx/celo-guestbook/internal/contract"
	"github.com/winsznx/celo-guestbook/pkg/httpx"
	"go.uber.org/zap"
)

// Handler answers frame requests. It is read-only and side-effect-free
// beyond logging; it never submits transactions.
type Handler struct {
	reader contract.Reader
	appURL string
	log    *zap.Logger
}

func NewHandler(reader contract.Reader, appURL string, log *zap.Logger) *Handler {
	return &Handler{reader: reader, appURL: appURL, log: log}
}

// Routes mounts the two entry verbs. Both produce the same response
// shape: GET for idempotent loads, POST for button submissions.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.serve)
	r.Post("/", h.serve)
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request) {
	buttonValue := r.URL.Query().Get("buttonValue")
	if r.Method == http.MethodPost {
		// Frame action payloads carry fields we do not model; decode
		// leniently and keep whatever button value is present.
		var body struct {
			ButtonValue string `json:"buttonValue"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err == nil && body.ButtonValue != "" {
			buttonValue = body.ButtonValue
		}
	}

	snap := h.fetch(r)
	httpx.WriteJSON(w, http.StatusOK, Compose(buttonValue, snap, h.appURL))
}

// fetch gathers a fresh snapshot. A broken read path degrades to empty
// data and still renders; it never fails the request.
func (h *Handler) fetch(r *http.Request) contract.Snapshot {
	var snap contract.Snapshot
	messages, err := h.reader.AllMessages(r.Context())
	if err != nil {
		h.log.Warn("frame message read failed", zap.Error(err))
	} else {
		snap.Messages = messages
	}
	todos, err := h.reader.AllTodos(r.Context())
	if err != nil {
		h.log.Warn("frame todo read failed", zap.Error(err))
	} else {
		snap.Todos = todos
	}
	return snap
}
