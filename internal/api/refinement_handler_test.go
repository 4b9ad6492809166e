package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/logoforge-api/internal/credit"
	"github.com/phrazzld/logoforge-api/internal/service"
)

func TestRefinementHandler_RefineUnit(t *testing.T) {
	fixedUserID := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	unitID := uuid.MustParse("22222222-2222-2222-2222-222222222222")
	fixedBatchID := uuid.MustParse("33333333-3333-3333-3333-333333333333")

	tests := []struct {
		name           string
		refineErr      error
		expectedStatus int
	}{
		{"accepted", nil, http.StatusAccepted},
		{"insufficient_credits", credit.ErrInsufficientCredits, http.StatusPaymentRequired},
		{"source_not_ready", service.ErrSourceNotReady, http.StatusConflict},
		{"unit_not_found", service.ErrUnitNotFound, http.StatusNotFound},
		{"setup_failure", service.ErrSetup, http.StatusInternalServerError},
		{"ledger_unavailable", credit.ErrLedgerUnavailable, http.StatusServiceUnavailable},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mock := &MockRefinementService{
				RefineUnitFn: func(ctx context.Context, userID, sourceUnitID uuid.UUID, instruction string) (uuid.UUID, error) {
					assert.Equal(t, fixedUserID, userID)
					assert.Equal(t, unitID, sourceUnitID)
					if tc.refineErr != nil {
						return uuid.Nil, tc.refineErr
					}
					return fixedBatchID, nil
				},
			}
			handler := NewRefinementHandler(mock, testAPILogger())

			router := chi.NewRouter()
			router.Post("/api/units/{id}/refinements", handler.RefineUnit)

			var body bytes.Buffer
			require.NoError(t, json.NewEncoder(&body).Encode(RefineRequest{Instruction: "make it bolder"}))
			req := withUser(httptest.NewRequest(http.MethodPost, "/api/units/"+unitID.String()+"/refinements", &body), fixedUserID)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tc.expectedStatus, rec.Code)

			if tc.expectedStatus == http.StatusAccepted {
				var resp BatchAcceptedResponse
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.Equal(t, fixedBatchID.String(), resp.BatchID)
				assert.Equal(t, "accepted", resp.Status)
			}
		})
	}
}

func TestRefinementHandler_EmptyInstructionAllowed(t *testing.T) {
	fixedUserID := uuid.New()
	unitID := uuid.New()

	var gotInstruction string
	mock := &MockRefinementService{
		RefineUnitFn: func(ctx context.Context, userID, sourceUnitID uuid.UUID, instruction string) (uuid.UUID, error) {
			gotInstruction = instruction
			return uuid.New(), nil
		},
	}
	handler := NewRefinementHandler(mock, testAPILogger())

	router := chi.NewRouter()
	router.Post("/api/units/{id}/refinements", handler.RefineUnit)

	// An empty instruction falls back to the default refinement request
	// downstream; the API accepts it.
	req := withUser(httptest.NewRequest(http.MethodPost, "/api/units/"+unitID.String()+"/refinements",
		bytes.NewBufferString(`{}`)), fixedUserID)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Empty(t, gotInstruction)
}
