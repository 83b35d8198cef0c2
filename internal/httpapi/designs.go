package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"designcollab/internal/design"
)

func (a *API) handleListDesigns(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 50)

	designs, total, err := a.designs.List(r.Context(), page, limit)
	if err != nil {
		a.logger.Error("list designs failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "FETCH_ERROR", "Failed to fetch designs", err.Error())
		return
	}

	totalPages := (total + limit - 1) / limit
	writeJSON(w, http.StatusOK, response{
		Success:    true,
		Count:      len(designs),
		Total:      total,
		Page:       page,
		TotalPages: totalPages,
		Data:       designs,
	})
}

func (a *API) handleGetDesign(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	d, err := a.designs.ByID(r.Context(), id)
	if errors.Is(err, design.ErrDesignNotFound) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Design not found", "No design found with id: "+id)
		return
	}
	if err != nil {
		a.logger.Error("fetch design failed", zap.String("design_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "FETCH_ERROR", "Failed to fetch design", err.Error())
		return
	}
	writeData(w, http.StatusOK, d)
}

type createDesignRequest struct {
	Name             string           `json:"name"`
	Description      string           `json:"description"`
	Width            int              `json:"width"`
	Height           int              `json:"height"`
	CanvasBackground string           `json:"canvasBackground"`
	Elements         []design.Element `json:"elements"`
}

func (a *API) handleCreateDesign(w http.ResponseWriter, r *http.Request) {
	var req createDesignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Failed to create design", err.Error())
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Failed to create design", "name is required")
		return
	}

	d := &design.Design{
		ID:               uuid.NewString(),
		Name:             req.Name,
		Description:      req.Description,
		Width:            req.Width,
		Height:           req.Height,
		CanvasBackground: req.CanvasBackground,
		Elements:         req.Elements,
	}
	if err := a.designs.Create(r.Context(), d); err != nil {
		a.logger.Error("create design failed", zap.Error(err))
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Failed to create design", err.Error())
		return
	}
	writeData(w, http.StatusCreated, d)
}

func (a *API) handleUpdateDesign(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var fields map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeError(w, http.StatusBadRequest, "UPDATE_ERROR", "Failed to update design", err.Error())
		return
	}

	// Same validation pipeline as the real-time update path: unknown keys
	// dropped, strings sanitized, dimensions and colors range-checked.
	clean, err := a.fields.Clean(fields)
	if err != nil {
		writeError(w, http.StatusBadRequest, "UPDATE_ERROR", "Failed to update design", err.Error())
		return
	}

	d, err := a.designs.MergeFields(r.Context(), id, clean)
	if errors.Is(err, design.ErrDesignNotFound) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Design not found", "No design found with id: "+id)
		return
	}
	if err != nil {
		a.logger.Error("update design failed", zap.String("design_id", id), zap.Error(err))
		writeError(w, http.StatusBadRequest, "UPDATE_ERROR", "Failed to update design", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, response{
		Success: true,
		Message: "Design updated successfully",
		Data:    d,
	})
}

func (a *API) handleDeleteDesign(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	err := a.designs.Delete(r.Context(), id)
	if errors.Is(err, design.ErrDesignNotFound) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Design not found", "No design found with id: "+id)
		return
	}
	if err != nil {
		a.logger.Error("delete design failed", zap.String("design_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "DELETE_ERROR", "Failed to delete design", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, response{Success: true, Message: "Design deleted successfully"})
}

func queryInt(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
