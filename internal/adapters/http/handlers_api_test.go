package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"weekendlog/internal/adapters/http/perf"
	"weekendlog/internal/adapters/storage"
	sessionStore "weekendlog/internal/adapters/storage/session"
	themeStore "weekendlog/internal/adapters/storage/theme"
	userStore "weekendlog/internal/adapters/storage/user"
	weekendStore "weekendlog/internal/adapters/storage/weekend"
	"weekendlog/internal/application/orchestrators"
	"weekendlog/internal/application/prompt"
)

// fakeKV is an in-memory kv port for handler tests.
type fakeKV struct {
	mu   sync.Mutex
	data map[string]string
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: make(map[string]string)}
}

func (f *fakeKV) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *fakeKV) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value
	return nil
}

func (f *fakeKV) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, key)
	return nil
}

var _ storage.KV = (*fakeKV)(nil)

// newTestServer wires a full mux over an in-memory kv and seeds the
// default admin. Returns the server and the wired stores.
func newTestServer(t *testing.T) (*httptest.Server, *Stores) {
	t.Helper()

	RateLimitPerSecond = 1000

	kv := newFakeKV()
	users := userStore.NewKVStore(kv)
	s := &Stores{
		UserStore:    users,
		EntryStore:   weekendStore.NewKVStore(kv),
		ThemeStore:   themeStore.NewKVStore(kv),
		SessionStore: sessionStore.NewKVStore(kv),
	}

	err := orchestrators.ExecuteSeedAdmin(context.Background(), orchestrators.SeedAdminInput{
		PSID:     "admin",
		Name:     "Admin User",
		Email:    "admin@example.com",
		Password: "admin123",
	}, orchestrators.RegisterDeps{UserStore: users})
	if err != nil {
		t.Fatalf("failed to seed admin: %v", err)
	}

	mux := NewMux("static", s, perf.NewCollector(perf.DefaultRingSize), prompt.NewModal())
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, s
}

// apiRequest performs a JSON request (which bypasses CSRF) with the given
// session cookie, returning the response.
func apiRequest(t *testing.T, srv *httptest.Server, method, path, cookie, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}
	client := &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

// loginAs logs in over the JSON API and returns the session cookie.
func loginAs(t *testing.T, srv *httptest.Server, psID, password string) string {
	t.Helper()
	resp := apiRequest(t, srv, "POST", "/login", "", `{"psId":"`+psID+`","password":"`+password+`"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login returned %d", resp.StatusCode)
	}
	for _, c := range resp.Cookies() {
		if c.Name == "weekendlog_session" {
			return c.Name + "=" + c.Value
		}
	}
	t.Fatal("no session cookie in login response")
	return ""
}

func TestLoginAPI(t *testing.T) {
	srv, _ := newTestServer(t)

	// Case-insensitive PS ID, correct password
	resp := apiRequest(t, srv, "POST", "/login", "", `{"psId":"ADMIN","password":"admin123"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login returned %d", resp.StatusCode)
	}
	var body struct {
		User struct {
			PSID    string `json:"psId"`
			IsAdmin bool   `json:"isAdmin"`
		} `json:"user"`
		ExpiresAt int64  `json:"expiresAt"`
		Theme     string `json:"theme"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode login response: %v", err)
	}
	if body.User.PSID != "admin" || !body.User.IsAdmin {
		t.Errorf("user = %+v", body.User)
	}
	if body.Theme != "light" {
		t.Errorf("theme = %q", body.Theme)
	}
	if until := time.UnixMilli(body.ExpiresAt).Sub(time.Now()); until < 55*time.Minute || until > 65*time.Minute {
		t.Errorf("expiry %v from now, want about 1h", until)
	}

	// Wrong password and unknown PS ID return the same message
	respWrong := apiRequest(t, srv, "POST", "/login", "", `{"psId":"admin","password":"nope"}`)
	respUnknown := apiRequest(t, srv, "POST", "/login", "", `{"psId":"ghost","password":"nope"}`)
	if respWrong.StatusCode != http.StatusUnauthorized || respUnknown.StatusCode != http.StatusUnauthorized {
		t.Fatalf("failed logins returned %d / %d", respWrong.StatusCode, respUnknown.StatusCode)
	}
	var e1, e2 map[string]string
	json.NewDecoder(respWrong.Body).Decode(&e1)
	json.NewDecoder(respUnknown.Body).Decode(&e2)
	if e1["error"] != e2["error"] {
		t.Errorf("login errors differ: %q vs %q", e1["error"], e2["error"])
	}
}

func TestLoginAPI_AppliesSavedTheme(t *testing.T) {
	srv, s := newTestServer(t)
	cookie := loginAs(t, srv, "admin", "admin123")

	// Save dark on the user record (and the slot)
	resp := apiRequest(t, srv, "POST", "/api/theme", cookie, `{"theme":"dark"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("set theme returned %d", resp.StatusCode)
	}

	// Drift the shared slot back to light, then log in again
	if err := s.ThemeStore.Set(context.Background(), "light"); err != nil {
		t.Fatalf("failed to reset theme slot: %v", err)
	}
	resp = apiRequest(t, srv, "POST", "/login", "", `{"psId":"admin","password":"admin123"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login returned %d", resp.StatusCode)
	}
	var body struct {
		Theme string `json:"theme"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode login response: %v", err)
	}
	if body.Theme != "dark" {
		t.Errorf("login theme = %q, want dark", body.Theme)
	}

	// The slot follows the logged-in user's preference
	theme, err := s.ThemeStore.Get(context.Background())
	if err != nil || theme != "dark" {
		t.Errorf("theme slot after login = (%q, %v), want dark", theme, err)
	}
}

func TestSessionAPI(t *testing.T) {
	srv, _ := newTestServer(t)

	// No cookie
	resp := apiRequest(t, srv, "GET", "/api/session", "", "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("anonymous session check returned %d", resp.StatusCode)
	}

	cookie := loginAs(t, srv, "admin", "admin123")
	resp = apiRequest(t, srv, "GET", "/api/session", cookie, "")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("session check returned %d", resp.StatusCode)
	}

	// Logout invalidates the session
	resp = apiRequest(t, srv, "POST", "/logout", cookie, "")
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("logout returned %d", resp.StatusCode)
	}
	resp = apiRequest(t, srv, "GET", "/api/session", cookie, "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("session survived logout: %d", resp.StatusCode)
	}
}

func TestRegisterAPI(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := apiRequest(t, srv, "POST", "/register", "",
		`{"psId":"ps1","name":"Jane","email":"jane@example.com","password":"Secure@123","confirmPassword":"Secure@123"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register returned %d", resp.StatusCode)
	}

	// The new account can log in
	loginAs(t, srv, "ps1", "Secure@123")

	// Duplicate PS ID conflicts
	resp = apiRequest(t, srv, "POST", "/register", "",
		`{"psId":"PS1","name":"Other","email":"other@example.com","password":"Secure@123","confirmPassword":"Secure@123"}`)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("duplicate register returned %d", resp.StatusCode)
	}

	// Weak password rejected
	resp = apiRequest(t, srv, "POST", "/register", "",
		`{"psId":"ps2","name":"Weak","email":"weak@example.com","password":"weakpass","confirmPassword":"weakpass"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("weak-password register returned %d", resp.StatusCode)
	}
}

func TestEntriesAPI(t *testing.T) {
	srv, _ := newTestServer(t)
	cookie := loginAs(t, srv, "admin", "admin123")

	date := time.Now().AddDate(0, 0, -1).Format("2006-01-02")

	// Add
	resp := apiRequest(t, srv, "POST", "/api/entries", cookie,
		`{"weekendDate":"`+date+`","compOffEarned":"yes","compOffDate":"`+date+`","expenseClaimed":"no"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add entry returned %d", resp.StatusCode)
	}

	// Duplicate date conflicts
	resp = apiRequest(t, srv, "POST", "/api/entries", cookie,
		`{"weekendDate":"`+date+`","compOffEarned":"no","compOffDate":"","expenseClaimed":"no"}`)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("duplicate entry returned %d", resp.StatusCode)
	}

	// List
	resp = apiRequest(t, srv, "GET", "/api/entries", cookie, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list entries returned %d", resp.StatusCode)
	}
	var list struct {
		Entries []struct {
			WeekendDate string `json:"weekendDate"`
			UserID      string `json:"userId"`
		} `json:"entries"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatalf("failed to decode list: %v", err)
	}
	if len(list.Entries) != 1 || list.Entries[0].WeekendDate != date || list.Entries[0].UserID != "admin" {
		t.Errorf("list = %+v", list.Entries)
	}

	// Cancelled delete changes nothing
	resp = apiRequest(t, srv, "DELETE", "/api/entries?weekendDate="+date+"&confirmed=false", cookie, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("cancelled delete returned %d", resp.StatusCode)
	}
	resp = apiRequest(t, srv, "GET", "/api/entries", cookie, "")
	list.Entries = nil
	json.NewDecoder(resp.Body).Decode(&list)
	if len(list.Entries) != 1 {
		t.Error("cancelled delete removed the entry")
	}

	// Confirmed delete removes it
	resp = apiRequest(t, srv, "DELETE", "/api/entries?weekendDate="+date+"&confirmed=true", cookie, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("confirmed delete returned %d", resp.StatusCode)
	}
	resp = apiRequest(t, srv, "GET", "/api/entries", cookie, "")
	list.Entries = nil
	json.NewDecoder(resp.Body).Decode(&list)
	if len(list.Entries) != 0 {
		t.Error("entry survived confirmed delete")
	}
}

func TestUsersAPI_AdminOnly(t *testing.T) {
	srv, _ := newTestServer(t)

	// Anonymous requests are redirected to login
	resp := apiRequest(t, srv, "GET", "/api/users", "", "")
	if resp.StatusCode != http.StatusSeeOther {
		t.Errorf("anonymous user list returned %d", resp.StatusCode)
	}

	cookie := loginAs(t, srv, "admin", "admin123")

	// Create
	resp = apiRequest(t, srv, "POST", "/api/users", cookie,
		`{"psId":"ps1","name":"Jane","email":"jane@example.com","password":"plain","isAdmin":false}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create user returned %d", resp.StatusCode)
	}

	// List excludes the viewer
	resp = apiRequest(t, srv, "GET", "/api/users", cookie, "")
	var list struct {
		Users []struct {
			PSID string `json:"psId"`
		} `json:"users"`
	}
	json.NewDecoder(resp.Body).Decode(&list)
	if len(list.Users) != 1 || list.Users[0].PSID != "ps1" {
		t.Errorf("user list = %+v", list.Users)
	}

	// Edit
	resp = apiRequest(t, srv, "PUT", "/api/users", cookie,
		`{"psId":"ps1","name":"Renamed","email":"jane@example.com","isAdmin":false,"newPassword":""}`)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("edit user returned %d", resp.StatusCode)
	}

	// Non-admins are forbidden. ps1 logs in and the admin's session is
	// displaced (last writer wins), so re-login as admin afterwards.
	userCookie := loginAs(t, srv, "ps1", "plain")
	resp = apiRequest(t, srv, "POST", "/api/users", userCookie,
		`{"psId":"ps2","name":"X","email":"x@example.com","password":"x","isAdmin":false}`)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("non-admin create returned %d", resp.StatusCode)
	}

	cookie = loginAs(t, srv, "admin", "admin123")

	// Confirmed delete
	resp = apiRequest(t, srv, "DELETE", "/api/users?psId=ps1&confirmed=true", cookie, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete user returned %d", resp.StatusCode)
	}
	resp = apiRequest(t, srv, "GET", "/api/users", cookie, "")
	list.Users = nil
	json.NewDecoder(resp.Body).Decode(&list)
	if len(list.Users) != 0 {
		t.Errorf("user list after delete = %+v", list.Users)
	}
}

func TestChangePasswordAPI_ForcesLogout(t *testing.T) {
	srv, _ := newTestServer(t)
	cookie := loginAs(t, srv, "admin", "admin123")

	resp := apiRequest(t, srv, "POST", "/api/password", cookie,
		`{"currentPassword":"admin123","newPassword":"Fresh@123","confirmPassword":"Fresh@123"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("change password returned %d", resp.StatusCode)
	}

	// Old session is gone
	resp = apiRequest(t, srv, "GET", "/api/session", cookie, "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("session survived password change: %d", resp.StatusCode)
	}

	// Old password no longer works, new one does
	resp = apiRequest(t, srv, "POST", "/login", "", `{"psId":"admin","password":"admin123"}`)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("old password still accepted: %d", resp.StatusCode)
	}
	loginAs(t, srv, "admin", "Fresh@123")
}

func TestThemeAPI(t *testing.T) {
	srv, s := newTestServer(t)
	cookie := loginAs(t, srv, "admin", "admin123")

	resp := apiRequest(t, srv, "POST", "/api/theme", cookie, `{"theme":"dark"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("set theme returned %d", resp.StatusCode)
	}

	theme, err := s.ThemeStore.Get(context.Background())
	if err != nil || theme != "dark" {
		t.Errorf("stored theme = (%q, %v)", theme, err)
	}

	// Unknown theme is rejected
	resp = apiRequest(t, srv, "POST", "/api/theme", cookie, `{"theme":"solarized"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("invalid theme returned %d", resp.StatusCode)
	}
}

func TestPromptAPI_ResolvesSuspendedDelete(t *testing.T) {
	srv, _ := newTestServer(t)
	cookie := loginAs(t, srv, "admin", "admin123")

	// Create a user to delete
	resp := apiRequest(t, srv, "POST", "/api/users", cookie,
		`{"psId":"doomed","name":"Doomed","email":"doomed@example.com","password":"x","isAdmin":false}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create user returned %d", resp.StatusCode)
	}

	// No prompt pending yet
	resp = apiRequest(t, srv, "GET", "/api/prompt", cookie, "")
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("idle prompt poll returned %d", resp.StatusCode)
	}

	// Delete WITHOUT a carried answer: the request suspends on the modal.
	// Plain client here since test helpers must not fail from a goroutine.
	deleteDone := make(chan int, 1)
	go func() {
		req, err := http.NewRequest("DELETE", srv.URL+"/api/users?psId=doomed", nil)
		if err != nil {
			deleteDone <- 0
			return
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Cookie", cookie)
		r, err := http.DefaultClient.Do(req)
		if err != nil {
			deleteDone <- 0
			return
		}
		r.Body.Close()
		deleteDone <- r.StatusCode
	}()

	// Poll until the dialog surfaces, then confirm it
	var req struct {
		ID         string `json:"id"`
		Kind       string `json:"kind"`
		WithCancel bool   `json:"withCancel"`
	}
	deadline := time.Now().Add(5 * time.Second)
	for {
		resp = apiRequest(t, srv, "GET", "/api/prompt", cookie, "")
		if resp.StatusCode == http.StatusOK {
			if err := json.NewDecoder(resp.Body).Decode(&req); err != nil {
				t.Fatalf("failed to decode prompt: %v", err)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("prompt never surfaced")
		}
		time.Sleep(10 * time.Millisecond)
	}
	if req.Kind != "warning" || !req.WithCancel {
		t.Errorf("prompt = %+v", req)
	}

	resp = apiRequest(t, srv, "POST", "/api/prompt", cookie, `{"id":"`+req.ID+`","confirmed":true}`)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("prompt resolve returned %d", resp.StatusCode)
	}

	select {
	case status := <-deleteDone:
		if status != http.StatusOK {
			t.Errorf("suspended delete returned %d", status)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("suspended delete never returned")
	}

	// Resolving again fails: the answer is consumed exactly once
	resp = apiRequest(t, srv, "POST", "/api/prompt", cookie, `{"id":"`+req.ID+`","confirmed":true}`)
	if resp.StatusCode != http.StatusGone {
		t.Errorf("second resolve returned %d", resp.StatusCode)
	}
}

func TestPerfAPI_AdminOnly(t *testing.T) {
	srv, _ := newTestServer(t)
	cookie := loginAs(t, srv, "admin", "admin123")

	resp := apiRequest(t, srv, "GET", "/api/perf", cookie, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("perf snapshot returned %d", resp.StatusCode)
	}
	var snap struct {
		TotalRequests int64
	}
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatalf("failed to decode snapshot: %v", err)
	}
	if snap.TotalRequests == 0 {
		t.Error("collector recorded nothing")
	}
}
