package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"fintech/internal/core"
	"fintech/internal/store"
)

var errInvalidSettings = errors.New("invalid settings")

func (s *Server) handleGetCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := store.Categories(r.Context(), s.store)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(cats).Write(w)
}

// validateCategories rejects blank and duplicate (case-insensitive) names.
func validateCategories(cats []core.Category) error {
	if len(cats) == 0 {
		return fmt.Errorf("%w: at least one category is required", errInvalidSettings)
	}
	seen := make(map[string]bool, len(cats))
	for i := range cats {
		cats[i].Name = sanitizeInput(cats[i].Name)
		if cats[i].Name == "" {
			return fmt.Errorf("%w: category %d has no name", errInvalidSettings, i+1)
		}
		key := strings.ToLower(cats[i].Name)
		if seen[key] {
			return fmt.Errorf("%w: duplicate category %q", errInvalidSettings, cats[i].Name)
		}
		seen[key] = true
	}
	return nil
}

func (s *Server) handlePutCategories(w http.ResponseWriter, r *http.Request) {
	var cats []core.Category
	if err := decodeJSON(w, r, &cats); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validateCategories(cats); err != nil {
		writeError(w, r, err)
		return
	}
	if err := store.SaveCategories(r.Context(), s.store, cats); err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(cats).Write(w)
}

// handleGetTaxSettings answers 404 when none are stored, meaning every
// category counts as deductible.
func (s *Server) handleGetTaxSettings(w http.ResponseWriter, r *http.Request) {
	ts, err := store.TaxSettings(r.Context(), s.store)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if ts == nil {
		NotFoundError("tax settings not configured").Write(w)
		return
	}
	NewJSONResponse().Body(ts).Write(w)
}

func (s *Server) handlePutTaxSettings(w http.ResponseWriter, r *http.Request) {
	var ts core.TaxSettings
	if err := decodeJSON(w, r, &ts); err != nil {
		writeError(w, r, err)
		return
	}
	if ts.DefaultTaxRate.Sign() < 0 || ts.DefaultTaxRate.Rounded() > 100 {
		writeError(w, r, fmt.Errorf("%w: defaultTaxRate must be between 0 and 100", errInvalidSettings))
		return
	}
	for i, c := range ts.AllowedCategories {
		ts.AllowedCategories[i] = sanitizeInput(c)
	}
	if ts.AllowedCategories == nil {
		ts.AllowedCategories = []string{}
	}
	if err := store.SaveTaxSettings(r.Context(), s.store, ts); err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(ts).Write(w)
}

func (s *Server) handleGetGeneralSettings(w http.ResponseWriter, r *http.Request) {
	gs, err := store.GeneralSettings(r.Context(), s.store)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(gs).Write(w)
}

func (s *Server) handlePutGeneralSettings(w http.ResponseWriter, r *http.Request) {
	var gs core.GeneralSettings
	if err := decodeJSON(w, r, &gs); err != nil {
		writeError(w, r, err)
		return
	}
	switch gs.Language {
	case "", "tr", "en":
	default:
		writeError(w, r, fmt.Errorf("%w: language must be tr or en", errInvalidSettings))
		return
	}
	gs = gs.WithDefaults()
	if err := store.SaveGeneralSettings(r.Context(), s.store, gs); err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(gs).Write(w)
}
