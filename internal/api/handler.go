// Package api exposes the application actions the web UI drives: session
// management, contract reads, and transaction submission.
package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/winsznx/celo-guestbook/internal/contract"
	"github.com/winsznx/celo-guestbook/internal/embedctx"
	"github.com/winsznx/celo-guestbook/internal/identity"
	"github.com/winsznx/celo-guestbook/internal/session"
	"github.com/winsznx/celo-guestbook/internal/share"
	"github.com/winsznx/celo-guestbook/internal/txflow"
	"github.com/winsznx/celo-guestbook/pkg/httpx"
	"go.uber.org/zap"
)

type Handler struct {
	reader     contract.Reader
	sessions   *session.Manager
	reconciler *identity.Reconciler
	detector   *embedctx.Detector
	appURL     string
	log        *zap.Logger
}

func NewHandler(
	reader contract.Reader,
	sessions *session.Manager,
	reconciler *identity.Reconciler,
	detector *embedctx.Detector,
	appURL string,
	log *zap.Logger,
) *Handler {
	return &Handler{
		reader:     reader,
		sessions:   sessions,
		reconciler: reconciler,
		detector:   detector,
		appURL:     appURL,
		log:        log,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/session", h.getSession)
	r.Post("/session/sign-in", h.signIn)
	r.Post("/session/sign-out", h.signOut)

	r.Get("/messages", h.listMessages)
	r.Get("/todos", h.listTodos)
	r.Get("/todos/{address}", h.listUserTodos)
	r.Get("/balance/{address}", h.passBalance)
	r.Get("/todo-fee", h.todoFee)

	r.Post("/tx/{operation}", h.submit)
	r.Get("/accounts/{address}/tx", h.txStatus)
	r.Get("/accounts/{address}/state", h.accountState)

	r.Post("/share/message", h.shareMessage)
	r.Post("/share/todo", h.shareTodo)
}

func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	snap := h.reconciler.Snapshot()
	ready := true
	if h.detector != nil {
		ready, _ = h.detector.State()
	}
	httpx.WriteJSON(w, 200, map[string]any{
		"request_id":       httpx.NewRequestID(),
		"identity":         snap.Identity,
		"is_authenticated": snap.IsAuthenticated,
		"is_embedded":      snap.IsEmbedded,
		"host_ready":       ready,
	})
}

func (h *Handler) signIn(w http.ResponseWriter, r *http.Request) {
	var p identity.Profile
	if err := httpx.ReadJSON(r, &p); err != nil {
		httpx.WriteError(w, 400, "BAD_JSON", err.Error(), nil)
		return
	}
	persisted := true
	if err := h.reconciler.CompleteSignIn(p); err != nil {
		var perr *identity.PersistenceError
		if !errors.As(err, &perr) {
			httpx.WriteError(w, 500, "SIGN_IN_FAILED", err.Error(), nil)
			return
		}
		// The identity is current for this session; the next reload
		// will not see it.
		persisted = false
	}
	snap := h.reconciler.Snapshot()
	httpx.WriteJSON(w, 200, map[string]any{
		"request_id": httpx.NewRequestID(),
		"identity":   snap.Identity,
		"persisted":  persisted,
	})
}

func (h *Handler) signOut(w http.ResponseWriter, r *http.Request) {
	h.reconciler.SignOut()
	httpx.WriteJSON(w, 200, map[string]any{
		"request_id": httpx.NewRequestID(),
		"signed_out": true,
	})
}

func (h *Handler) listMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := h.reader.AllMessages(r.Context())
	if err != nil {
		h.log.Warn("message read failed", zap.Error(err))
		messages = []contract.Message{}
	}
	httpx.WriteJSON(w, 200, map[string]any{
		"request_id": httpx.NewRequestID(),
		"messages":   messages,
	})
}

func (h *Handler) listTodos(w http.ResponseWriter, r *http.Request) {
	todos, err := h.reader.AllTodos(r.Context())
	if err != nil {
		h.log.Warn("todo read failed", zap.Error(err))
		todos = []contract.Todo{}
	}
	httpx.WriteJSON(w, 200, map[string]any{
		"request_id": httpx.NewRequestID(),
		"todos":      todos,
	})
}

func (h *Handler) listUserTodos(w http.ResponseWriter, r *http.Request) {
	account := contract.Address(chi.URLParam(r, "address"))
	todos, err := h.reader.UserTodos(r.Context(), account)
	if err != nil {
		h.log.Warn("user todo read failed", zap.Error(err))
		todos = []contract.Todo{}
	}
	httpx.WriteJSON(w, 200, map[string]any{
		"request_id": httpx.NewRequestID(),
		"todos":      todos,
	})
}

func (h *Handler) passBalance(w http.ResponseWriter, r *http.Request) {
	account := contract.Address(chi.URLParam(r, "address"))
	balance, err := h.reader.PassBalance(r.Context(), account)
	if err != nil {
		h.log.Warn("pass balance read failed", zap.Error(err))
		balance = 0
	}
	httpx.WriteJSON(w, 200, map[string]any{
		"request_id": httpx.NewRequestID(),
		"balance":    balance,
	})
}

func (h *Handler) todoFee(w http.ResponseWriter, r *http.Request) {
	var feeWei any
	fee, err := h.reader.TodoCreationFee(r.Context())
	if err != nil {
		h.log.Warn("todo fee read failed", zap.Error(err))
	} else {
		feeWei = fee.String()
	}
	httpx.WriteJSON(w, 200, map[string]any{
		"request_id": httpx.NewRequestID(),
		"fee_wei":    feeWei,
	})
}

type submitRequest struct {
	Account     string `json:"account"`
	Name        string `json:"name,omitempty"`
	Message     string `json:"message,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	ID          uint64 `json:"id,omitempty"`
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	op := contract.Operation(chi.URLParam(r, "operation"))
	var req submitRequest
	if err := httpx.ReadJSON(r, &req); err != nil {
		httpx.WriteError(w, 400, "BAD_JSON", err.Error(), nil)
		return
	}
	account := contract.Address(req.Account)
	sess := h.sessions.Get(account)

	args, ok := h.buildArgs(w, r, op, req, sess)
	if !ok {
		return
	}

	if err := sess.Orchestrator().Submit(account, args); err != nil {
		if errors.Is(err, txflow.ErrBusy) {
			httpx.WriteError(w, 409, "TX_IN_FLIGHT", "a transaction is already in flight for this account", nil)
			return
		}
		var verr *txflow.ValidationError
		if errors.As(err, &verr) {
			httpx.WriteError(w, 400, "VALIDATION_ERROR", verr.Error(), nil)
			return
		}
		httpx.WriteError(w, 500, "SUBMIT_FAILED", err.Error(), nil)
		return
	}

	httpx.WriteJSON(w, 202, map[string]any{
		"request_id": httpx.NewRequestID(),
		"operation":  op,
		"state":      txflow.StateSubmitting,
	})
}

// buildArgs maps the request body onto the operation's argument type and
// records the form drafts that belong to it.
func (h *Handler) buildArgs(w http.ResponseWriter, r *http.Request, op contract.Operation, req submitRequest, sess *session.Session) (txflow.Args, bool) {
	switch op {
	case contract.OpMint:
		return txflow.MintArgs{}, true
	case contract.OpPostMessage:
		draft := sess.Draft()
		draft.Name, draft.Message = req.Name, req.Message
		sess.SetDraft(draft)
		return txflow.PostMessageArgs{Name: req.Name, Message: req.Message}, true
	case contract.OpCreateTodo:
		args := txflow.CreateTodoArgs{Title: req.Title, Description: req.Description}
		// Inputs are checked before the fee read so a bad title never
		// costs a network round trip.
		if err := txflow.ValidateInputs(args); err != nil {
			httpx.WriteError(w, 400, "VALIDATION_ERROR", err.Error(), nil)
			return nil, false
		}
		fee, err := h.reader.TodoCreationFee(r.Context())
		if err != nil {
			h.log.Warn("todo fee read failed before submit", zap.Error(err))
			httpx.WriteError(w, 503, "FEE_UNAVAILABLE", "todo creation fee could not be read", nil)
			return nil, false
		}
		draft := sess.Draft()
		draft.TodoTitle, draft.TodoDescription = req.Title, req.Description
		sess.SetDraft(draft)
		args.Fee = fee
		return args, true
	case contract.OpToggleTodo:
		return txflow.ToggleTodoArgs{ID: req.ID}, true
	case contract.OpDeleteTodo:
		return txflow.DeleteTodoArgs{ID: req.ID}, true
	case contract.OpLikeTodo:
		return txflow.LikeTodoArgs{ID: req.ID}, true
	default:
		httpx.WriteError(w, 404, "UNKNOWN_OPERATION", "unknown operation "+string(op), nil)
		return nil, false
	}
}

func (h *Handler) txStatus(w http.ResponseWriter, r *http.Request) {
	account := contract.Address(chi.URLParam(r, "address"))
	state, op, err := txflow.StateIdle, contract.Operation(""), error(nil)
	if sess := h.sessions.Peek(account); sess != nil {
		state, op, err = sess.Orchestrator().Status()
	}
	resp := map[string]any{
		"request_id": httpx.NewRequestID(),
		"state":      state,
		"operation":  op,
	}
	if err != nil {
		resp["error"] = err.Error()
	}
	httpx.WriteJSON(w, 200, resp)
}

func (h *Handler) accountState(w http.ResponseWriter, r *http.Request) {
	account := contract.Address(chi.URLParam(r, "address"))
	var data session.Data
	var draft session.Draft
	if sess := h.sessions.Peek(account); sess != nil {
		data, draft = sess.Data(), sess.Draft()
	}
	httpx.WriteJSON(w, 200, map[string]any{
		"request_id": httpx.NewRequestID(),
		"data":       data,
		"draft":      draft,
	})
}

func (h *Handler) shareMessage(w http.ResponseWriter, r *http.Request) {
	var m contract.Message
	if err := httpx.ReadJSON(r, &m); err != nil {
		httpx.WriteError(w, 400, "BAD_JSON", err.Error(), nil)
		return
	}
	httpx.WriteJSON(w, 200, map[string]any{
		"request_id": httpx.NewRequestID(),
		"url":        share.WarpcastURL(share.MessageText(m, h.appURL)),
	})
}

func (h *Handler) shareTodo(w http.ResponseWriter, r *http.Request) {
	var t contract.Todo
	if err := httpx.ReadJSON(r, &t); err != nil {
		httpx.WriteError(w, 400, "BAD_JSON", err.Error(), nil)
		return
	}
	httpx.WriteJSON(w, 200, map[string]any{
		"request_id": httpx.NewRequestID(),
		"url":        share.WarpcastURL(share.TodoText(t, h.appURL)),
	})
}
