package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"designcollab/internal/store"
)

const maxCommentLength = 2000

type createCommentRequest struct {
	DesignID string   `json:"designId"`
	AuthorID string   `json:"authorId"`
	Text     string   `json:"text"`
	Mentions []string `json:"mentions"`
}

func (a *API) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	var req createCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Failed to create comment", err.Error())
		return
	}

	req.Text = strings.TrimSpace(req.Text)
	switch {
	case req.DesignID == "":
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Failed to create comment", "designId is required")
		return
	case req.AuthorID == "":
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Failed to create comment", "authorId is required")
		return
	case req.Text == "":
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Failed to create comment", "comment cannot be empty")
		return
	case len(req.Text) > maxCommentLength:
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Failed to create comment", "comment cannot exceed 2000 characters")
		return
	}

	// Comments hang off designs; refuse to attach one to a design that is
	// gone.
	exists, err := a.designs.Exists(r.Context(), req.DesignID)
	if err != nil {
		a.logger.Error("design check failed", zap.String("design_id", req.DesignID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "CREATE_ERROR", "Failed to create comment", err.Error())
		return
	}
	if !exists {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Design not found", "No design found with id: "+req.DesignID)
		return
	}

	c := &store.Comment{
		ID:       uuid.NewString(),
		DesignID: req.DesignID,
		AuthorID: req.AuthorID,
		Text:     req.Text,
		Mentions: req.Mentions,
	}
	if err := a.comments.Create(r.Context(), c); err != nil {
		a.logger.Error("create comment failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "CREATE_ERROR", "Failed to create comment", err.Error())
		return
	}
	writeData(w, http.StatusCreated, c)
}

func (a *API) handleListComments(w http.ResponseWriter, r *http.Request) {
	designID := r.PathValue("id")

	if exists, err := a.designs.Exists(r.Context(), designID); err == nil && !exists {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Design not found", "No design found with id: "+designID)
		return
	}

	comments, err := a.comments.ByDesign(r.Context(), designID)
	if err != nil {
		a.logger.Error("list comments failed", zap.String("design_id", designID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "FETCH_ERROR", "Failed to fetch comments", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, response{
		Success: true,
		Count:   len(comments),
		Data:    comments,
	})
}

// handleQueryComments lists comments filtered by design and/or author via
// query parameters; at least one filter is required.
func (a *API) handleQueryComments(w http.ResponseWriter, r *http.Request) {
	designID := r.URL.Query().Get("designId")
	authorID := r.URL.Query().Get("authorId")
	if designID == "" && authorID == "" {
		writeError(w, http.StatusBadRequest, "MISSING_PARAMETER", "Either designId or authorId is required",
			"Pass a designId or authorId query parameter")
		return
	}

	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 20)

	comments, total, err := a.comments.List(r.Context(), designID, authorID, page, limit)
	if err != nil {
		a.logger.Error("list comments failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "FETCH_ERROR", "Failed to fetch comments", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, response{
		Success:    true,
		Count:      len(comments),
		Total:      total,
		Page:       page,
		TotalPages: (total + limit - 1) / limit,
		Data:       comments,
	})
}

func (a *API) handleGetComment(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	c, err := a.comments.ByID(r.Context(), id)
	if errors.Is(err, store.ErrCommentNotFound) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Comment not found", "No comment found with id: "+id)
		return
	}
	if err != nil {
		a.logger.Error("fetch comment failed", zap.String("comment_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "FETCH_ERROR", "Failed to fetch comment", err.Error())
		return
	}
	writeData(w, http.StatusOK, c)
}

// Only text and mentions are editable after the fact.
type updateCommentRequest struct {
	Text     *string  `json:"text"`
	Mentions []string `json:"mentions"`
}

func (a *API) handleUpdateComment(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req updateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "UPDATE_ERROR", "Failed to update comment", err.Error())
		return
	}
	if req.Text != nil {
		trimmed := strings.TrimSpace(*req.Text)
		switch {
		case trimmed == "":
			writeError(w, http.StatusBadRequest, "UPDATE_ERROR", "Failed to update comment", "comment cannot be empty")
			return
		case len(trimmed) > maxCommentLength:
			writeError(w, http.StatusBadRequest, "UPDATE_ERROR", "Failed to update comment", "comment cannot exceed 2000 characters")
			return
		}
		req.Text = &trimmed
	}

	c, err := a.comments.Update(r.Context(), id, req.Text, req.Mentions)
	if errors.Is(err, store.ErrCommentNotFound) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Comment not found", "No comment found with id: "+id)
		return
	}
	if err != nil {
		a.logger.Error("update comment failed", zap.String("comment_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "UPDATE_ERROR", "Failed to update comment", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, response{
		Success: true,
		Message: "Comment updated successfully",
		Data:    c,
	})
}

func (a *API) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	c, err := a.comments.ByID(r.Context(), id)
	if errors.Is(err, store.ErrCommentNotFound) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Comment not found", "No comment found with id: "+id)
		return
	}
	if err != nil {
		a.logger.Error("fetch comment failed", zap.String("comment_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "DELETE_ERROR", "Failed to delete comment", err.Error())
		return
	}

	if err := a.comments.Delete(r.Context(), id); err != nil && !errors.Is(err, store.ErrCommentNotFound) {
		a.logger.Error("delete comment failed", zap.String("comment_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "DELETE_ERROR", "Failed to delete comment", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, response{
		Success: true,
		Message: "Comment deleted successfully",
		Data:    map[string]string{"id": c.ID, "text": c.Text},
	})
}
