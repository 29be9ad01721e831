package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophmail/internal/common"
	"github.com/dmitrijs2005/gophmail/internal/logging"
)

// Handler holds the HTTP endpoints of the mail API.
type Handler struct {
	svc    MailService
	logger logging.Logger
}

type credentialsRequest struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
}

type sendRequest struct {
	To      *string `json:"to"`
	Subject string  `json:"subject"`
	Body    string  `json:"body"`
}

type deleteRequest struct {
	ID *string `json:"id"`
}

type loginResponse struct {
	Success  bool   `json:"success"`
	Token    string `json:"token"`
	Username string `json:"username"`
}

type statusResponse struct {
	Status string `json:"status"`
	ID     string `json:"id,omitempty"`
}

type messageView struct {
	ID        string    `json:"id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

type inboxResponse struct {
	Messages []messageView `json:"messages"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Username == nil || req.Password == nil {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	sess, err := h.svc.Login(r.Context(), *req.Username, *req.Password)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, loginResponse{Success: true, Token: sess.Token, Username: sess.Username})
	case errors.Is(err, common.ErrorNotFound):
		writeError(w, http.StatusNotFound, "user not found")
	case errors.Is(err, common.ErrorUnauthorized):
		writeError(w, http.StatusUnauthorized, "incorrect password")
	default:
		h.fail(w, err)
	}
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Username == nil || req.Password == nil {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	err := h.svc.Signup(r.Context(), *req.Username, *req.Password)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, statusResponse{Status: "user created."})
	case errors.Is(err, common.ErrorAlreadyExists):
		writeError(w, http.StatusConflict, "user exists.")
	default:
		h.fail(w, err)
	}
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Logout(r.Context(), tokenFrom(r.Context())); err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "logged out."})
}

func (h *Handler) ListInbox(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListInbox(r.Context(), usernameFrom(r.Context()))
	if err != nil {
		h.fail(w, err)
		return
	}

	resp := inboxResponse{Messages: make([]messageView, 0, len(list))}
	for _, m := range list {
		resp.Messages = append(resp.Messages, messageView{
			ID:        m.ID,
			From:      m.From,
			To:        m.To,
			Subject:   m.Subject,
			Body:      m.Body,
			CreatedAt: m.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if !decode(w, r, &req) {
		return
	}
	if req.To == nil {
		writeError(w, http.StatusBadRequest, "recipient is required")
		return
	}

	id, err := h.svc.SendMessage(r.Context(), usernameFrom(r.Context()), *req.To, req.Subject, req.Body)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, statusResponse{Status: "message sent.", ID: id})
	case errors.Is(err, common.ErrorNotFound):
		writeError(w, http.StatusNotFound, "recipient does not exist")
	default:
		h.fail(w, err)
	}
}

func (h *Handler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	var req deleteRequest
	if !decode(w, r, &req) {
		return
	}
	if req.ID == nil {
		writeError(w, http.StatusBadRequest, "message id is required")
		return
	}

	err := h.svc.DeleteMessage(r.Context(), usernameFrom(r.Context()), *req.ID)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, statusResponse{Status: "Success"})
	case errors.Is(err, common.ErrorNotFound):
		writeError(w, http.StatusNotFound, "message not found")
	default:
		h.fail(w, err)
	}
}

// fail renders the errors every endpoint shares.
func (h *Handler) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrorMalformedInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, common.ErrorUnauthenticated):
		writeError(w, http.StatusUnauthorized, "session expired")
	default:
		writeError(w, http.StatusInternalServerError, common.ErrorInternal.Error())
	}
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "could not parse JSON")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
