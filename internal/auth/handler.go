package auth

import (
	"encoding/json"
	"net/http"

	"backoffice/pkg/apperror"
	"backoffice/pkg/response"
)

type Handler struct {
	Auth Authenticator
}

func NewHandler(a Authenticator) *Handler {
	return &Handler{Auth: a}
}

// Login handles POST /api/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req); err != nil {
		response.FromError(w, apperror.Validation("email and password are required"))
		return
	}

	resp, err := h.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, resp)
}
