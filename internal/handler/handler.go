package handler

import (
	"encoding/json"
	"net/http"

	"github.com/accountd-dev/accountd/internal/config"
	"github.com/accountd-dev/accountd/internal/logger"
	"github.com/accountd-dev/accountd/internal/service"
)

type Handler struct {
	accounts service.AccountService
	cfg      *config.Config
}

func New(accounts service.AccountService, cfg *config.Config) *Handler {
	return &Handler{accounts, cfg}
}

// Success responses share one envelope: {"data": ..., "status": {"code", "text"}}.
type statusBody struct {
	Code int    `json:"code"`
	Text string `json:"text"`
}

type envelope struct {
	Data   interface{} `json:"data,omitempty"`
	Status statusBody  `json:"status"`
}

func writeJSON(w http.ResponseWriter, statusCode int, text string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	body := envelope{Data: data, Status: statusBody{Code: statusCode, Text: text}}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Log.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, token string) {
	cookie := &http.Cookie{
		Path:     "/",
		Name:     "token",
		Value:    token,
		HttpOnly: true,
		Secure:   h.cfg.Public.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	}
	http.SetCookie(w, cookie)
}

func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	cookie := &http.Cookie{
		Path:     "/",
		Name:     "token",
		Value:    "",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cfg.Public.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	}
	http.SetCookie(w, cookie)
}
