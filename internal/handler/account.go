package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/accountd-dev/accountd/internal/api"
	"github.com/accountd-dev/accountd/internal/logger"
	mw "github.com/accountd-dev/accountd/internal/middleware"
	"github.com/accountd-dev/accountd/internal/utils"
)

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var body api.RegisterRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	acc, err := h.accounts.Register(body.Email, body.Password)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, "Account created", api.NewAccountResponse(acc))
}

func (h *Handler) Activate(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	_, token, err := h.accounts.Activate(code)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	h.setSessionCookie(w, token)
	writeJSON(w, http.StatusOK, "Account activated", api.TokenResponse{Token: token})
}

func (h *Handler) ResendActivation(w http.ResponseWriter, r *http.Request) {
	var body api.ResendActivationRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	if err := h.accounts.ResendActivation(body.Email); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, http.StatusOK, "Activation email resent", nil)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var body api.LoginRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	_, token, err := h.accounts.Login(body.Email, body.Password)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	h.setSessionCookie(w, token)
	writeJSON(w, http.StatusOK, "Login successful", api.TokenResponse{Token: token})
}

// Logout instructs the caller to discard the session cookie. Idempotent and
// available to anonymous callers; a resolved identity is only logged.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if acc := mw.AccountFromContext(r); acc != nil {
		logger.Log.Info("session ended", "account_id", acc.Id)
	}
	h.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, "Logout successful", nil)
}

func (h *Handler) RequestReset(w http.ResponseWriter, r *http.Request) {
	var body api.RequestResetRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	if err := h.accounts.RequestReset(body.Email); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, http.StatusOK, "Password reset email sent", nil)
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var body api.ResetPasswordRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	_, token, err := h.accounts.FulfillReset(body.ResetCode, body.Password)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	h.setSessionCookie(w, token)
	writeJSON(w, http.StatusOK, "Password reset successful", api.TokenResponse{Token: token})
}
