package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/morozRed/lineage/internal/events"
	"github.com/morozRed/lineage/internal/family"
	"github.com/morozRed/lineage/internal/graph"
	"github.com/morozRed/lineage/internal/search"
	"github.com/morozRed/lineage/internal/state"
)

type handlers struct {
	svc     FamilyService
	logger  *zap.Logger
	version string
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": h.version,
	})
}

func (h *handlers) info(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.svc.Info())
}

func (h *handlers) tree(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.svc.View())
}

func (h *handlers) generations(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.svc.View().Generations)
}

func (h *handlers) parents(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.svc.PotentialParents())
}

func (h *handlers) listMembers(w http.ResponseWriter, r *http.Request) {
	if adults, _ := strconv.ParseBool(r.URL.Query().Get("adults")); adults {
		respondJSON(w, http.StatusOK, h.svc.PotentialParents())
		return
	}
	respondJSON(w, http.StatusOK, h.svc.ListAllMembers())
}

func (h *handlers) getMember(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "memberID")
	view, ok := h.memberView(id)
	if !ok {
		respondError(w, http.StatusNotFound, "NOT_FOUND", fmt.Sprintf("member %q not found", id))
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (h *handlers) createMember(w http.ResponseWriter, r *http.Request) {
	var person family.Person
	if !h.decodeJSON(w, r, &person) {
		return
	}
	person.ID = strings.TrimSpace(person.ID)
	person.Name = strings.TrimSpace(person.Name)
	if person.ID == "" {
		person.ID = family.NewID()
	}
	if msg := h.checkReferences(person.ID, &person.ParentID, &person.SpouseID); msg != "" {
		respondError(w, http.StatusBadRequest, "INVALID_REFERENCE", msg)
		return
	}

	if err := h.svc.Add(person); err != nil {
		h.respondMutationError(w, err)
		return
	}
	view, _ := h.memberView(person.ID)
	respondJSON(w, http.StatusCreated, view)
}

func (h *handlers) updateMember(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "memberID")
	var patch family.Patch
	if !h.decodeJSON(w, r, &patch) {
		return
	}
	if patch.IsEmpty() {
		respondError(w, http.StatusBadRequest, "EMPTY_UPDATE", "no fields to update")
		return
	}
	if err := patch.Validate(); err != nil {
		h.respondMutationError(w, err)
		return
	}
	if _, ok := h.svc.MemberByID(id); !ok {
		respondError(w, http.StatusNotFound, "NOT_FOUND", fmt.Sprintf("member %q not found", id))
		return
	}
	if msg := h.checkReferences(id, patch.ParentID, patch.SpouseID); msg != "" {
		respondError(w, http.StatusBadRequest, "INVALID_REFERENCE", msg)
		return
	}

	if !h.svc.Update(id, patch) {
		respondError(w, http.StatusNotFound, "NOT_FOUND", fmt.Sprintf("member %q not found", id))
		return
	}
	view, _ := h.memberView(id)
	respondJSON(w, http.StatusOK, view)
}

func (h *handlers) deleteMember(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "memberID")
	if !h.svc.Delete(id) {
		respondError(w, http.StatusNotFound, "NOT_FOUND", fmt.Sprintf("member %q not found", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		respondError(w, http.StatusBadRequest, "MISSING_QUERY", "query parameter q is required")
		return
	}
	limit, ok := intParam(w, r, "limit", search.DefaultLimit)
	if !ok {
		return
	}
	fuzzy, _ := strconv.ParseBool(r.URL.Query().Get("fuzzy"))

	results := h.svc.Search(query, limit, fuzzy)
	if results == nil {
		results = []search.Result{}
	}
	respondJSON(w, http.StatusOK, results)
}

func (h *handlers) path(w http.ResponseWriter, r *http.Request) {
	from := strings.TrimSpace(r.URL.Query().Get("from"))
	to := strings.TrimSpace(r.URL.Query().Get("to"))
	if from == "" || to == "" {
		respondError(w, http.StatusBadRequest, "MISSING_PARAMETER", "query parameters from and to are required")
		return
	}
	for _, id := range []string{from, to} {
		if _, ok := h.svc.MemberByID(id); !ok {
			respondError(w, http.StatusNotFound, "NOT_FOUND", fmt.Sprintf("member %q not found", id))
			return
		}
	}

	steps := h.svc.Path(from, to)
	if steps == nil {
		steps = []graph.PathStep{}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"found": len(steps) > 0,
		"steps": steps,
	})
}

func (h *handlers) upcoming(w http.ResponseWriter, r *http.Request) {
	days, ok := intParam(w, r, "days", events.DefaultWindowDays)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, h.svc.Upcoming(days))
}

func (h *handlers) export(w http.ResponseWriter, r *http.Request) {
	data, err := h.svc.Export()
	if err != nil {
		h.logger.Error("export failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "EXPORT_FAILED", "failed to export family data")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="family-tree.json"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *handlers) importSnapshot(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		respondError(w, http.StatusRequestEntityTooLarge, "BODY_TOO_LARGE", "request body too large")
		return
	}
	if err := h.svc.Import(data); err != nil {
		if errors.Is(err, state.ErrMalformedSnapshot) {
			respondError(w, http.StatusBadRequest, "MALFORMED_SNAPSHOT", err.Error())
			return
		}
		h.logger.Error("import failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "IMPORT_FAILED", "failed to import family data")
		return
	}
	respondJSON(w, http.StatusOK, h.svc.Info())
}

func (h *handlers) reset(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Reset(); err != nil {
		respondError(w, http.StatusInternalServerError, "RESET_INCOMPLETE", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, h.svc.Info())
}

func (h *handlers) memberView(id string) (graph.MemberView, bool) {
	return h.svc.Tree().MemberView(id, h.svc.Levels())
}

// checkReferences rejects parent or spouse ids that name no member or the
// member itself. Empty values clear a reference and are always allowed.
func (h *handlers) checkReferences(id string, parentID, spouseID *string) string {
	refs := []struct {
		field string
		value *string
	}{{"parentId", parentID}, {"spouseId", spouseID}}
	for _, r := range refs {
		field, ref := r.field, r.value
		if ref == nil {
			continue
		}
		*ref = strings.TrimSpace(*ref)
		if *ref == "" {
			continue
		}
		if *ref == id {
			return fmt.Sprintf("%s must not reference the member itself", field)
		}
		if _, ok := h.svc.MemberByID(*ref); !ok {
			return fmt.Sprintf("%s references unknown member %q", field, *ref)
		}
	}
	return ""
}

func (h *handlers) respondMutationError(w http.ResponseWriter, err error) {
	var verr *family.ValidationError
	switch {
	case errors.As(err, &verr):
		respondErrorWithDetails(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid member", verr.Fields)
	case errors.Is(err, family.ErrDuplicateID):
		respondError(w, http.StatusConflict, "DUPLICATE_ID", err.Error())
	default:
		h.logger.Error("mutation failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
	}
}

func (h *handlers) decodeJSON(w http.ResponseWriter, r *http.Request, target any) bool {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := decoder.Decode(target); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	return true
}

func intParam(w http.ResponseWriter, r *http.Request, name string, fallback int) (int, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return fallback, true
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		respondError(w, http.StatusBadRequest, "INVALID_PARAMETER", fmt.Sprintf("%s must be a positive integer", name))
		return 0, false
	}
	return value, true
}
