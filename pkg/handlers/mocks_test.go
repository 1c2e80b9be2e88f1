package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/sac-engine/pkg/audit"
	"github.com/ekaya-inc/sac-engine/pkg/auth"
	"github.com/ekaya-inc/sac-engine/pkg/config"
	"github.com/ekaya-inc/sac-engine/pkg/database"
	"github.com/ekaya-inc/sac-engine/pkg/models"
	"github.com/ekaya-inc/sac-engine/pkg/repositories"
	"github.com/ekaya-inc/sac-engine/pkg/services"
	"github.com/ekaya-inc/sac-engine/pkg/testhelpers"
)

// testServer is the full route table over a migrated SQLite database.
type testServer struct {
	db  *database.DB
	mux *http.ServeMux
}

func testConfig() *config.Config {
	return &config.Config{
		BaseURL: "http://localhost:3443",
		Env:     "test",
		Version: "test",
	}
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := zap.NewNop()
	db := testhelpers.NewSQLiteDB(t)
	records := repositories.NewRecordRepository(db, logger)

	tokens, err := auth.NewTokenManager(testhelpers.TestTokenSecret, testhelpers.TestTokenIssuer, time.Hour)
	require.NoError(t, err)
	authService := auth.NewAuthService(repositories.NewUserRepository(records), tokens, logger)
	authMiddleware := auth.NewMiddleware(authService, logger)
	auditor := audit.NewSecurityAuditor(logger)

	search, err := services.NewSearchService(records, db.Dialect, logger)
	require.NoError(t, err)
	dropdowns, err := services.NewDropdownService(records, db.Dialect, logger)
	require.NoError(t, err)

	mux := http.NewServeMux()
	NewHealthHandler(testConfig(), logger).RegisterRoutes(mux)
	NewAuthHandler(authService, auditor, testConfig(), logger).RegisterRoutes(mux, authMiddleware)
	NewAccountHandler(services.NewAccountService(records, logger), auditor, logger).RegisterRoutes(mux, authMiddleware)
	NewPolicyHandler(services.NewPolicyService(records, logger), auditor, logger).RegisterRoutes(mux, authMiddleware)
	NewHCMUserHandler(services.NewHCMUserService(records, logger), auditor, logger).RegisterRoutes(mux, authMiddleware)
	NewAffiliateHandler(services.NewAffiliateService(records, logger), auditor, logger).RegisterRoutes(mux)
	NewSearchHandler(search, dropdowns, auditor, logger).RegisterRoutes(mux, authMiddleware)
	for _, table := range []services.Table{
		services.LossRunDistributionTable,
		services.ClaimReviewDistributionTable,
		services.DeductBillDistributionTable,
	} {
		NewDistributionHandler(table, services.NewDistributionService(table, records, logger), auditor, logger).RegisterRoutes(mux, authMiddleware)
	}
	for _, table := range []services.Table{
		services.LossRunFrequencyTable,
		services.ClaimReviewFrequencyTable,
		services.DeductBillFrequencyTable,
	} {
		NewFrequencyHandler(table, services.NewFrequencyService(table, records, logger), auditor, logger).RegisterRoutes(mux, authMiddleware)
	}

	return &testServer{db: db, mux: mux}
}

func testUser(role string) *models.User {
	return &models.User{ID: 1, FirstName: "Dana", LastName: "Reyes", Email: "dana@example.com", Role: role, Branch: "NY"}
}

// do sends a request with an optional JSON body. A non-empty token is sent
// as a Bearer header.
func (s *testServer) do(t *testing.T, method, target string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}
