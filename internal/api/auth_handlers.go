package api

import (
	"errors"
	"net/http"

	"mirmaia/pos/domain"
	"mirmaia/pos/internal/auth"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := h.users.Authenticate(r.Context(), req.Email, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err != nil {
		h.respondFault(w, r, "unable to sign in", err)
		return
	}

	token, err := h.tokens.Generate(user.ID, user.Email, user.Role)
	if err != nil {
		h.respondFault(w, r, "unable to generate token", err)
		return
	}
	respondJSON(w, http.StatusOK, authResponse{Token: token, User: user})
}

func (h *Handler) verify(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Get(r.Context(), currentUserID(r))
	if errors.Is(err, auth.ErrUserNotFound) {
		respondError(w, http.StatusUnauthorized, "user no longer exists")
		return
	}
	if err != nil {
		h.respondFault(w, r, "unable to load user", err)
		return
	}
	if !user.IsActive {
		respondError(w, http.StatusUnauthorized, "account disabled")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"valid": true, "user": user})
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	user, err := h.users.Create(r.Context(), req.Name, req.Email, req.Password, req.Role)
	switch {
	case errors.Is(err, auth.ErrInvalidUser):
		respondError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, auth.ErrEmailTaken):
		respondError(w, http.StatusConflict, "email already exists")
		return
	case err != nil:
		h.respondFault(w, r, "unable to complete registration", err)
		return
	}
	respondJSON(w, http.StatusCreated, user)
}

func (h *Handler) changePassword(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		NewPassword string `json:"new_password"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	err := h.users.ChangePassword(r.Context(), currentUserID(r), payload.NewPassword)
	if errors.Is(err, auth.ErrInvalidUser) {
		respondError(w, http.StatusBadRequest, "new_password is required")
		return
	}
	if err != nil {
		h.respondFault(w, r, "unable to update password", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "password updated"})
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		h.respondFault(w, r, "unable to list users", err)
		return
	}
	respondJSON(w, http.StatusOK, users)
}

func (h *Handler) setUserActive(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	var payload struct {
		IsActive *bool `json:"is_active"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if payload.IsActive == nil {
		respondError(w, http.StatusBadRequest, "is_active is required")
		return
	}
	if id == currentUserID(r) && !*payload.IsActive {
		respondError(w, http.StatusBadRequest, "cannot deactivate your own account")
		return
	}
	err := h.users.SetActive(r.Context(), id, *payload.IsActive)
	if errors.Is(err, auth.ErrUserNotFound) {
		respondError(w, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		h.respondFault(w, r, "unable to update user", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}
