package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo"

	"github.com/Shaik-Faizan-Ahmed/CollegeBusTracker-sub001/pkg/api/resource"
	"github.com/Shaik-Faizan-Ahmed/CollegeBusTracker-sub001/pkg/storage/memory"
	"github.com/Shaik-Faizan-Ahmed/CollegeBusTracker-sub001/pkg/tracking"
)

func newTestServer() *echo.Echo {
	store := memory.NewStore()
	hub := tracking.NewHub()
	ctrl := tracking.NewController(nil, store, hub, 24*time.Hour, 2*time.Hour)

	e := echo.New()
	NewHandler(nil, store, ctrl).RegisterRoutes(e)
	return e
}

func doJSON(e *echo.Echo, method, path, body string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestClaimThenConflict(t *testing.T) {
	e := newTestServer()

	rec := doJSON(e, http.MethodPost, "/api/v1/sessions",
		`{"busNumber":"12","latitude":17.3850,"longitude":78.4867}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	claim := resource.ClaimResponse{}
	if err := json.Unmarshal(rec.Body.Bytes(), &claim); err != nil {
		t.Fatalf("invalid claim response: %v", err)
	}
	if claim.SessionID == "" || claim.TrackerID == "" || claim.BusNumber != "12" {
		t.Errorf("unexpected claim response %+v", claim)
	}

	rec = doJSON(e, http.MethodPost, "/api/v1/sessions",
		`{"busNumber":"12","latitude":17.0,"longitude":78.0}`, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}

	conflict := resource.ConflictResponse{}
	if err := json.Unmarshal(rec.Body.Bytes(), &conflict); err != nil {
		t.Fatalf("invalid conflict response: %v", err)
	}
	if conflict.ExistingTracker.BusNumber != "12" {
		t.Errorf("expected existingTracker.busNumber 12, got %+v", conflict.ExistingTracker)
	}
}

func TestClaimValidation(t *testing.T) {
	e := newTestServer()

	cases := []struct {
		name string
		body string
	}{
		{"latitude out of range", `{"busNumber":"7","latitude":95,"longitude":10}`},
		{"missing latitude", `{"busNumber":"7","longitude":10}`},
		{"missing longitude", `{"busNumber":"7","latitude":10}`},
		{"empty bus number", `{"busNumber":"","latitude":10,"longitude":10}`},
		{"non-numeric latitude", `{"busNumber":"7","latitude":"abc","longitude":10}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(e, http.MethodPost, "/api/v1/sessions", tc.body, nil)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}

	// None of the rejected claims created a session
	rec := doJSON(e, http.MethodGet, "/api/v1/buses/7/session", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for bus 7, got %d", rec.Code)
	}
}

func TestClaimAcceptsNumericStrings(t *testing.T) {
	e := newTestServer()

	rec := doJSON(e, http.MethodPost, "/api/v1/sessions",
		`{"busNumber":"15","latitude":"17.3850","longitude":"78.4867"}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 for string coordinates, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestReleaseThenReclaim(t *testing.T) {
	e := newTestServer()

	rec := doJSON(e, http.MethodPost, "/api/v1/sessions",
		`{"busNumber":"3","latitude":17.0,"longitude":78.0}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	claim := resource.ClaimResponse{}
	if err := json.Unmarshal(rec.Body.Bytes(), &claim); err != nil {
		t.Fatalf("invalid claim response: %v", err)
	}

	header := http.Header{}
	header.Set(HeaderSessionID, claim.SessionID)
	rec = doJSON(e, http.MethodPost, "/api/v1/sessions/release", "", header)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	release := resource.ReleaseResponse{}
	if err := json.Unmarshal(rec.Body.Bytes(), &release); err != nil {
		t.Fatalf("invalid release response: %v", err)
	}
	if release.BusNumber != "3" {
		t.Errorf("expected released bus 3, got %s", release.BusNumber)
	}

	// Releasing again reports the session as gone
	rec = doJSON(e, http.MethodPost, "/api/v1/sessions/release", "", header)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 on double release, got %d", rec.Code)
	}

	// The bus is claimable again with a fresh session id
	rec = doJSON(e, http.MethodPost, "/api/v1/sessions",
		`{"busNumber":"3","latitude":17.0,"longitude":78.0}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 on reclaim, got %d", rec.Code)
	}
	second := resource.ClaimResponse{}
	if err := json.Unmarshal(rec.Body.Bytes(), &second); err != nil {
		t.Fatalf("invalid claim response: %v", err)
	}
	if second.SessionID == claim.SessionID {
		t.Errorf("session id was reused")
	}
}

func TestReleaseWithoutHeader(t *testing.T) {
	e := newTestServer()

	rec := doJSON(e, http.MethodPost, "/api/v1/sessions/release", "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without session header, got %d", rec.Code)
	}
}

func TestFetchSessionsAndBusSession(t *testing.T) {
	e := newTestServer()

	doJSON(e, http.MethodPost, "/api/v1/sessions", `{"busNumber":"1","latitude":10,"longitude":20}`, nil)
	doJSON(e, http.MethodPost, "/api/v1/sessions", `{"busNumber":"2","latitude":30,"longitude":40}`, nil)

	rec := doJSON(e, http.MethodGet, "/api/v1/sessions", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	list := resource.SessionListResource{}
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("invalid session list: %v", err)
	}
	if len(list.Members) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(list.Members))
	}
	if list.Members[0].BusNumber != "1" || list.Members[1].BusNumber != "2" {
		t.Errorf("session list not sorted by bus number: %+v", list.Members)
	}

	rec = doJSON(e, http.MethodGet, "/api/v1/buses/2/session", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	sess := resource.SessionResource{}
	if err := json.Unmarshal(rec.Body.Bytes(), &sess); err != nil {
		t.Fatalf("invalid session resource: %v", err)
	}
	if sess.Latitude != 30 || sess.Longitude != 40 {
		t.Errorf("unexpected session %+v", sess)
	}
}
