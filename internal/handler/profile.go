package handler

import (
	"io"
	"net/http"

	"github.com/accountd-dev/accountd/internal/api"
	mw "github.com/accountd-dev/accountd/internal/middleware"
	"github.com/accountd-dev/accountd/internal/utils"
)

// Uploaded profile photos are rejected beyond this size before decoding.
const maxPhotoBytes = 10 << 20

func (h *Handler) CurrentAccount(w http.ResponseWriter, r *http.Request) {
	acc := mw.AccountFromContext(r)
	if acc == nil {
		http.Error(w, "Not authorized", http.StatusUnauthorized)
		return
	}

	writeJSON(w, http.StatusOK, "OK", api.NewAccountResponse(*acc))
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	acc := mw.AccountFromContext(r)
	if acc == nil {
		http.Error(w, "Not authorized", http.StatusUnauthorized)
		return
	}

	var body api.UpdateProfileRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	updated, err := h.accounts.UpdateProfile(*acc, body.DisplayName)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, http.StatusOK, "Account updated", api.NewAccountResponse(updated))
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	acc := mw.AccountFromContext(r)
	if acc == nil {
		http.Error(w, "Not authorized", http.StatusUnauthorized)
		return
	}

	var body api.ChangePasswordRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	if err := h.accounts.ChangePassword(*acc, body.OldPassword, body.NewPassword, body.RepeatPassword); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, http.StatusOK, "Password changed", nil)
}

func (h *Handler) ChangeEmail(w http.ResponseWriter, r *http.Request) {
	acc := mw.AccountFromContext(r)
	if acc == nil {
		http.Error(w, "Not authorized", http.StatusUnauthorized)
		return
	}

	var body api.ChangeEmailRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	if err := h.accounts.ChangeEmail(*acc, body.Email, body.Password); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, http.StatusOK, "Email updated", nil)
}

// UploadPhoto accepts a multipart form with exactly one "file" field holding
// a raster image.
func (h *Handler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	acc := mw.AccountFromContext(r)
	if acc == nil {
		http.Error(w, "Not authorized", http.StatusUnauthorized)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoBytes)
	if err := r.ParseMultipartForm(maxPhotoBytes); err != nil {
		http.Error(w, "Could not parse multipart form", http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Please use multipart/form with exactly one 'file' parameter being an image", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "Could not read uploaded file", http.StatusBadRequest)
		return
	}

	updated, err := h.accounts.UploadPhoto(*acc, data)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, http.StatusOK, "Image uploaded successfully", api.NewAccountResponse(updated))
}
