package api

import (
	"context"
	"net/http"
	"strconv"

	"airportride/internal/entities"
	apperrors "airportride/internal/errors"

	"github.com/gorilla/mux"
)

type ReconciliationAdmin interface {
	ListReconciliations(ctx context.Context, status string, limit int) (entities.ReconciliationsList, error)
	RetryReconciliation(ctx context.Context, id int64) (entities.ReconciliationResponse, error)
}

type AdminHandler struct {
	Service ReconciliationAdmin
}

func NewAdminHandler(svc ReconciliationAdmin) *AdminHandler {
	return &AdminHandler{Service: svc}
}

func (h *AdminHandler) ListReconciliations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := 0
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, r, apperrors.ErrBadRequest("Invalid limit"))
			return
		}
		limit = n
	}
	list, err := h.Service.ListReconciliations(r.Context(), q.Get("status"), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *AdminHandler) RetryReconciliation(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, r, apperrors.ErrBadRequest("Invalid ID"))
		return
	}
	rec, err := h.Service.RetryReconciliation(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}
