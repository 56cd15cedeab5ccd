package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"invoiceBack/internal/models"
	"invoiceBack/internal/services"
)

type AuthHandler struct {
	Service *services.AuthService
	Log     zerolog.Logger
}

func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req models.SignUpRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, h.Log, err)
		return
	}

	user, err := h.Service.SignUp(r.Context(), req)
	if err != nil {
		writeServiceError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Account created, check your email for the verification code",
		"user":    user,
	})
}

func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req models.VerifyCodeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, h.Log, err)
		return
	}

	user, err := h.Service.VerifyEmail(r.Context(), req)
	if err != nil {
		writeServiceError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"message": "Email verified", "user": user})
}

func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req models.SignInRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, h.Log, err)
		return
	}

	resp, err := h.Service.SignIn(r.Context(), req)
	if err != nil {
		writeServiceError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) GoogleSignUp(w http.ResponseWriter, r *http.Request) {
	var req models.GoogleAuthRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, h.Log, err)
		return
	}

	resp, err := h.Service.GoogleSignUp(r.Context(), req)
	if err != nil {
		writeServiceError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *AuthHandler) GoogleSignIn(w http.ResponseWriter, r *http.Request) {
	var req models.GoogleAuthRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, h.Log, err)
		return
	}

	resp, err := h.Service.GoogleSignIn(r.Context(), req)
	if err != nil {
		writeServiceError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req models.PasswordResetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, h.Log, err)
		return
	}

	if err := h.Service.RequestPasswordReset(r.Context(), req); err != nil {
		writeServiceError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "If the account exists, a reset code has been sent"})
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req models.NewPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, h.Log, err)
		return
	}

	if err := h.Service.ResetPassword(r.Context(), req); err != nil {
		writeServiceError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Password updated"})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	id := userIDFrom(r.Context())
	if id == "" {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := h.Service.CurrentUser(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
