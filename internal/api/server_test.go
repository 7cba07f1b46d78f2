package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	mockscheduler "aimawatch/internal/scheduler/mock"
	"aimawatch/pkg/domain"
	"aimawatch/pkg/logger"
	"aimawatch/pkg/serrors"
	mockstorage "aimawatch/pkg/storage/mock"
)

var testJWTSecret = []byte("api-test-secret")

func TestMain(m *testing.M) {
	logger.Setup(logger.DevelopmentEnvironment)

	os.Exit(m.Run())
}

func newTestServer(t *testing.T) (*mockscheduler.MockService, *mockstorage.MockStorage, http.Handler) {
	t.Helper()

	ctrl := gomock.NewController(t)
	sched := mockscheduler.NewMockService(ctrl)
	st := mockstorage.NewMockStorage(ctrl)

	server, err := NewServer(Deps{Scheduler: sched, Storage: st}, Options{
		JWTSecret:      testJWTSecret,
		Addr:           ":0",
		RequestTimeout: time.Minute,
		MetricsPath:    "/metrics",
	})
	require.NoError(t, err)

	return sched, st, server.Handler
}

func signToken(t *testing.T, subject string) string {
	t.Helper()

	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testJWTSecret)
	require.NoError(t, err)

	return signed
}

func doRequest(handler http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	return rec
}

func TestHealth(t *testing.T) {
	_, _, handler := newTestServer(t)

	rec := doRequest(handler, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestCheck_success(t *testing.T) {
	sched, _, handler := newTestServer(t)

	fetchedAt := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	sched.EXPECT().CheckNow(gomock.Any(), domain.UserID(7)).
		Return(domain.StatusResult{
			Outcome:    domain.OutcomeSuccess,
			StatusText: "Pedido em análise",
			FetchedAt:  fetchedAt,
		}, nil)

	rec := doRequest(handler, http.MethodPost, "/v1/check", signToken(t, "7"))
	require.Equal(t, http.StatusOK, rec.Code)

	var result domain.StatusResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Equal(t, domain.OutcomeSuccess, result.Outcome)
	require.Equal(t, "Pedido em análise", result.StatusText)
}

func TestCheck_conflict(t *testing.T) {
	sched, _, handler := newTestServer(t)

	sched.EXPECT().CheckNow(gomock.Any(), domain.UserID(7)).
		Return(domain.StatusResult{}, serrors.With(serrors.ErrConflict, "in progress"))

	rec := doRequest(handler, http.MethodPost, "/v1/check", signToken(t, "7"))
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestCheck_unknownUser(t *testing.T) {
	sched, _, handler := newTestServer(t)

	sched.EXPECT().CheckNow(gomock.Any(), domain.UserID(404)).
		Return(domain.StatusResult{}, serrors.With(serrors.ErrNotFound, "user 404 not found"))

	rec := doRequest(handler, http.MethodPost, "/v1/check", signToken(t, "404"))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCheck_authRequired(t *testing.T) {
	_, _, handler := newTestServer(t)

	rec := doRequest(handler, http.MethodPost, "/v1/check", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCheck_rejectsForgedToken(t *testing.T) {
	_, _, handler := newTestServer(t)

	claims := jwt.RegisteredClaims{
		Subject:   "7",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte("wrong-secret"))
	require.NoError(t, err)

	rec := doRequest(handler, http.MethodPost, "/v1/check", forged)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCheck_rejectsExpiredToken(t *testing.T) {
	_, _, handler := newTestServer(t)

	claims := jwt.RegisteredClaims{
		Subject:   "7",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testJWTSecret)
	require.NoError(t, err)

	rec := doRequest(handler, http.MethodPost, "/v1/check", expired)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCheck_rejectsNonNumericSubject(t *testing.T) {
	_, _, handler := newTestServer(t)

	rec := doRequest(handler, http.MethodPost, "/v1/check", signToken(t, "alice"))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestStatus_success(t *testing.T) {
	_, st, handler := newTestServer(t)

	checkedAt := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	st.EXPECT().UserByID(gomock.Any(), domain.UserID(7)).Return(&domain.User{
		ID:            7,
		LastStatus:    "Pedido em análise",
		LastCheckedAt: checkedAt,
	}, nil)

	rec := doRequest(handler, http.MethodGet, "/v1/status", signToken(t, "7"))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp statusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "Pedido em análise", resp.LastStatus)
	require.NotNil(t, resp.LastCheckedAt)
	require.True(t, resp.LastCheckedAt.Equal(checkedAt))
}

func TestStatus_neverChecked(t *testing.T) {
	_, st, handler := newTestServer(t)

	st.EXPECT().UserByID(gomock.Any(), domain.UserID(7)).Return(&domain.User{ID: 7}, nil)

	rec := doRequest(handler, http.MethodGet, "/v1/status", signToken(t, "7"))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"lastStatus":""}`, rec.Body.String())
}

func TestStatus_unknownUser(t *testing.T) {
	_, st, handler := newTestServer(t)

	st.EXPECT().UserByID(gomock.Any(), domain.UserID(7)).Return(nil, nil)

	rec := doRequest(handler, http.MethodGet, "/v1/status", signToken(t, "7"))
	require.Equal(t, http.StatusNotFound, rec.Code)
}
