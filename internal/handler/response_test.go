package handler

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"fleetflow/internal/fmcsa"
	"fleetflow/internal/repository"
	"fleetflow/internal/service"
)

func TestMapErrorToHTTPStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", repository.ErrNotFound, http.StatusNotFound},
		{"carrier not found", fmcsa.ErrCarrierNotFound, http.StatusNotFound},
		{"invalid weight", service.ErrInvalidWeight, http.StatusBadRequest},
		{"wrapped urgency", fmt.Errorf("%w: %q", service.ErrInvalidUrgency, "soon"), http.StatusBadRequest},
		{"invalid identifier", fmcsa.ErrInvalidIdentifier, http.StatusBadRequest},
		{"load not offered", service.ErrLoadNotOffered, http.StatusConflict},
		{"stale state", repository.ErrStaleState, http.StatusConflict},
		{"account busy", service.ErrAccountBusy, http.StatusConflict},
		{"wrong driver", service.ErrDriverNotAssignedToLoad, http.StatusForbidden},
		{"quota", fmcsa.ErrQuotaExceeded, http.StatusTooManyRequests},
		{"upstream", fmt.Errorf("search: %w", fmcsa.ErrUpstream), http.StatusBadGateway},
		{"no driver", service.ErrNoDriverAvailable, http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := mapErrorToHTTPStatus(tt.err); got != tt.want {
				t.Errorf("mapErrorToHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
