package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"designcollab/internal/store"
)

type createUserRequest struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar"`
}

func (a *API) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Failed to create user", err.Error())
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if len(req.Name) < 2 || len(req.Name) > 100 {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Failed to create user", "name must be 2-100 characters")
		return
	}
	if !strings.Contains(req.Email, "@") {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Failed to create user", "a valid email is required")
		return
	}

	u := &store.User{
		ID:     uuid.NewString(),
		Name:   req.Name,
		Email:  req.Email,
		Avatar: req.Avatar,
	}
	if err := a.users.Create(r.Context(), u); err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			writeError(w, http.StatusConflict, "DUPLICATE_EMAIL", "Failed to create user", "email already in use")
			return
		}
		a.logger.Error("create user failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "CREATE_ERROR", "Failed to create user", err.Error())
		return
	}
	writeData(w, http.StatusCreated, u)
}

func (a *API) handleListUsers(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 50)

	users, total, err := a.users.List(r.Context(), page, limit)
	if err != nil {
		a.logger.Error("list users failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "FETCH_ERROR", "Failed to fetch users", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, response{
		Success: true,
		Count:   len(users),
		Total:   total,
		Page:    page,
		Data:    users,
	})
}

func (a *API) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	u, err := a.users.ByID(r.Context(), id)
	if errors.Is(err, store.ErrUserNotFound) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "User not found", "No user found with id: "+id)
		return
	}
	if err != nil {
		a.logger.Error("fetch user failed", zap.String("user_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "FETCH_ERROR", "Failed to fetch user", err.Error())
		return
	}
	writeData(w, http.StatusOK, u)
}

type updateUserRequest struct {
	Name   *string `json:"name"`
	Email  *string `json:"email"`
	Avatar *string `json:"avatar"`
}

func (a *API) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "UPDATE_ERROR", "Failed to update user", err.Error())
		return
	}
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		if len(trimmed) < 2 || len(trimmed) > 100 {
			writeError(w, http.StatusBadRequest, "UPDATE_ERROR", "Failed to update user", "name must be 2-100 characters")
			return
		}
		req.Name = &trimmed
	}
	if req.Email != nil && !strings.Contains(*req.Email, "@") {
		writeError(w, http.StatusBadRequest, "UPDATE_ERROR", "Failed to update user", "a valid email is required")
		return
	}

	u, err := a.users.Update(r.Context(), id, req.Name, req.Email, req.Avatar)
	if errors.Is(err, store.ErrUserNotFound) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "User not found", "No user found with id: "+id)
		return
	}
	if errors.Is(err, store.ErrEmailTaken) {
		writeError(w, http.StatusConflict, "DUPLICATE_EMAIL", "Failed to update user", "email already in use")
		return
	}
	if err != nil {
		a.logger.Error("update user failed", zap.String("user_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "UPDATE_ERROR", "Failed to update user", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, response{
		Success: true,
		Message: "User updated successfully",
		Data:    u,
	})
}

func (a *API) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	u, err := a.users.ByID(r.Context(), id)
	if errors.Is(err, store.ErrUserNotFound) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "User not found", "No user found with id: "+id)
		return
	}
	if err != nil {
		a.logger.Error("fetch user failed", zap.String("user_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "DELETE_ERROR", "Failed to delete user", err.Error())
		return
	}

	// Authors with comments stay: their comments would otherwise dangle.
	if a.comments != nil {
		n, err := a.comments.CountByAuthor(r.Context(), id)
		if err != nil {
			a.logger.Error("count comments failed", zap.String("user_id", id), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "DELETE_ERROR", "Failed to delete user", err.Error())
			return
		}
		if n > 0 {
			writeError(w, http.StatusBadRequest, "USER_HAS_COMMENTS", "Cannot delete user with existing comments",
				fmt.Sprintf("User has %d comment(s); delete those first", n))
			return
		}
	}

	if err := a.users.Delete(r.Context(), id); err != nil && !errors.Is(err, store.ErrUserNotFound) {
		a.logger.Error("delete user failed", zap.String("user_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "DELETE_ERROR", "Failed to delete user", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, response{
		Success: true,
		Message: "User deleted successfully",
		Data:    map[string]string{"id": u.ID, "name": u.Name, "email": u.Email},
	})
}

// handleSearchUsers backs @mention lookups in the comment editor.
func (a *API) handleSearchUsers(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Search query required", "pass ?q=<name>")
		return
	}

	users, err := a.users.SearchByName(r.Context(), query, queryInt(r, "limit", 10))
	if err != nil {
		a.logger.Error("search users failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "FETCH_ERROR", "Failed to search users", err.Error())
		return
	}
	writeData(w, http.StatusOK, users)
}
