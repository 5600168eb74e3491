package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/wonny/varlytics/internal/contracts"
)

// maxBodyBytes bounds request bodies
const maxBodyBytes = 1 << 20

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// StatusFor maps the error taxonomy onto HTTP status codes
func StatusFor(err error) int {
	switch {
	case errors.Is(err, contracts.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, contracts.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, contracts.ErrInsufficientData), errors.Is(err, contracts.ErrModelFit):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// respondServiceError writes err with its mapped status. Internal failures
// are prefixed with the operation that failed.
func respondServiceError(w http.ResponseWriter, err error, operation string) {
	status := StatusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = fmt.Sprintf("%s: %s", operation, message)
	}
	respondError(w, status, message)
}

// queryInt reads an integer query parameter, def when absent
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", contracts.ErrValidation, name)
	}
	return v, nil
}

// queryUint reads an unsigned integer query parameter, 0 when absent
func queryUint(r *http.Request, name string) (uint64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", contracts.ErrValidation, name)
	}
	return v, nil
}

// queryBool reads a boolean query parameter, def when absent
func queryBool(r *http.Request, name string, def bool) (bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%w: %s must be a boolean", contracts.ErrValidation, name)
	}
	return v, nil
}

// simulationParams reads num_simulations, num_days and seed
func simulationParams(r *http.Request, defaultDays int) (contracts.SimulationParams, error) {
	var p contracts.SimulationParams
	var err error
	if p.NumSimulations, err = queryInt(r, "num_simulations", contracts.DefaultSimulations); err != nil {
		return p, err
	}
	if p.NumDays, err = queryInt(r, "num_days", defaultDays); err != nil {
		return p, err
	}
	if p.Seed, err = queryUint(r, "seed"); err != nil {
		return p, err
	}
	return p, p.Validate()
}
