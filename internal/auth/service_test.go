package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/debemdeboas/editorial/internal/model"
)

type staticTokens map[model.EventID]string

func (s staticTokens) Authenticate(_ context.Context, event model.EventID, token string) bool {
	expected, ok := s[event]
	return ok && expected == token
}

func TestWithServiceToken(t *testing.T) {
	checker := staticTokens{"ev1": "secret"}

	testCases := []struct {
		name           string
		path           string
		authorization  string
		expectedStatus int
		expectService  bool
	}{
		{"No token", "/events/ev1/status", "", http.StatusOK, false},
		{"Valid token", "/events/ev1/status", "Bearer secret", http.StatusOK, true},
		{"Wrong token", "/events/ev1/status", "Bearer nope", http.StatusUnauthorized, false},
		{"Token of another event", "/events/ev2/status", "Bearer secret", http.StatusUnauthorized, false},
		{"Other scheme", "/events/ev1/status", "Basic c2VjcmV0", http.StatusOK, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var service bool
			var userID model.UserID

			mux := http.NewServeMux()
			mux.HandleFunc("/events/{event}/status", WithServiceToken(checker, func(w http.ResponseWriter, r *http.Request) {
				_, service = ServiceFromContext(r.Context())
				userID, _ = UserIDFromContext(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.authorization != "" {
				req.Header.Set("Authorization", tc.authorization)
			}
			recorder := httptest.NewRecorder()
			mux.ServeHTTP(recorder, req)

			if recorder.Code != tc.expectedStatus {
				t.Fatalf("Expected status %d, got %d", tc.expectedStatus, recorder.Code)
			}
			if service != tc.expectService {
				t.Errorf("Expected service=%v, got %v", tc.expectService, service)
			}
			if tc.expectService && userID != model.SystemUserID {
				t.Errorf(errExpectedUserIDGotAnother, model.SystemUserID, userID)
			}
		})
	}
}

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	if _, ok := UserIDFromContext(ctx); ok {
		t.Error("Expected no user in an empty context")
	}
	if _, ok := UserIDFromContext(ContextWithUserID(ctx, "")); ok {
		t.Error("Expected an empty user ID to count as anonymous")
	}

	ctx = ContextWithService(ctx, "ev1")
	if event, ok := ServiceFromContext(ctx); !ok || event != "ev1" {
		t.Errorf("Expected service of ev1, got %q", event)
	}
	if user, _ := UserIDFromContext(ctx); user != model.SystemUserID {
		t.Errorf(errExpectedUserIDGotAnother, model.SystemUserID, user)
	}
}
