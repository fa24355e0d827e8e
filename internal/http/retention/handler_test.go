package retention

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/spendly/internal/database"
	"github.com/MrJamesThe3rd/spendly/internal/identity"
	"github.com/MrJamesThe3rd/spendly/internal/retention"
)

func TestHandler_Sweep(t *testing.T) {
	now := time.Date(2024, time.October, 16, 12, 0, 0, 0, time.UTC)
	cutoff := time.Date(2023, time.October, 16, 0, 0, 0, 0, time.UTC)

	type testCase struct {
		name        string
		userID      string
		setupMock   func(m *retention.MockRepository)
		wantStatus  int
		wantDeleted int
	}

	tests := []testCase{
		{
			name:   "Deletes",
			userID: "u1",
			setupMock: func(m *retention.MockRepository) {
				m.EXPECT().DeleteExpensesBefore(gomock.Any(), "u1", cutoff).Return(4, nil)
			},
			wantStatus:  http.StatusOK,
			wantDeleted: 4,
		},
		{
			name:   "StoreUnavailable",
			userID: "u1",
			setupMock: func(m *retention.MockRepository) {
				m.EXPECT().DeleteExpensesBefore(gomock.Any(), "u1", cutoff).
					Return(0, database.Unavailable(errors.New("timeout")))
			},
			wantStatus: http.StatusServiceUnavailable,
		},
		{
			name:       "Unauthenticated",
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := retention.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			h := NewHandler(retention.NewSweeper(repo, slog.Default()))
			h.now = func() time.Time { return now }

			req := httptest.NewRequest(http.MethodPost, "/retention/sweep", nil)
			if tt.userID != "" {
				req = req.WithContext(identity.WithIdentity(req.Context(), identity.Identity{UserID: tt.userID}))
			}

			rec := httptest.NewRecorder()
			h.sweep(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantStatus == http.StatusOK {
				var body struct {
					Deleted int       `json:"deleted"`
					Cutoff  time.Time `json:"cutoff"`
				}
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
				assert.Equal(t, tt.wantDeleted, body.Deleted)
				assert.True(t, cutoff.Equal(body.Cutoff))
			}
		})
	}
}
