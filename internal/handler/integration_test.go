package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/okonek/traintrack/internal/domain"
	"github.com/okonek/traintrack/internal/realtime"
)

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newAPIClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("create cookie jar: %v", err)
	}
	return &http.Client{Jar: jar}
}

func doJSON(t *testing.T, client *http.Client, method, url string, body any) (*http.Response, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("%s %s: decode envelope: %v", method, url, err)
	}
	return resp, env
}

func signUp(t *testing.T, client *http.Client, srv *httptest.Server, email string) {
	t.Helper()
	resp, _ := doJSON(t, client, http.MethodPost, srv.URL+"/api/register", map[string]string{
		"email":        email,
		"display_name": "Integration User",
		"password":     "password123",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, client, http.MethodPost, srv.URL+"/api/login", map[string]string{
		"email":    email,
		"password": "password123",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: expected 200, got %d", resp.StatusCode)
	}
}

func TestIntegration_RegisterLoginLogout(t *testing.T) {
	srv := newTestServer(t)
	client := newAPIClient(t)

	// Register.
	resp, env := doJSON(t, client, http.MethodPost, srv.URL+"/api/register", map[string]string{
		"email":        "integ@example.com",
		"display_name": "Integration User",
		"password":     "password123",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d", resp.StatusCode)
	}
	if env.Status != "ok" {
		t.Fatalf("register: expected ok envelope, got %q", env.Status)
	}

	// Duplicate email conflicts.
	resp, _ = doJSON(t, client, http.MethodPost, srv.URL+"/api/register", map[string]string{
		"email":        "integ@example.com",
		"display_name": "Someone Else",
		"password":     "password456",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate register: expected 409, got %d", resp.StatusCode)
	}

	// Wrong password is rejected.
	resp, _ = doJSON(t, client, http.MethodPost, srv.URL+"/api/login", map[string]string{
		"email":    "integ@example.com",
		"password": "wrong-password",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad login: expected 401, got %d", resp.StatusCode)
	}

	// Login sets the auth cookie.
	resp, _ = doJSON(t, client, http.MethodPost, srv.URL+"/api/login", map[string]string{
		"email":    "integ@example.com",
		"password": "password123",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: expected 200, got %d", resp.StatusCode)
	}

	// Protected route now works.
	resp, _ = doJSON(t, client, http.MethodGet, srv.URL+"/api/schedules", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list schedules: expected 200, got %d", resp.StatusCode)
	}

	// Logout clears the cookie; protected route returns 401.
	resp, _ = doJSON(t, client, http.MethodPost, srv.URL+"/api/logout", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("logout: expected 200, got %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, client, http.MethodGet, srv.URL+"/api/schedules", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("after logout: expected 401, got %d", resp.StatusCode)
	}
}

func TestIntegration_ScheduleCRUD(t *testing.T) {
	srv := newTestServer(t)
	client := newAPIClient(t)
	signUp(t, client, srv, "crud@example.com")

	// Create with loosely typed goals; the stored schedule is coerced.
	resp, env := doJSON(t, client, http.MethodPost, srv.URL+"/api/schedules", map[string]any{
		"title":       "Base week",
		"description": "Easy volume",
		"days": []map[string]any{{
			"date": "2025-01-10",
			"sessions": []map[string]any{{
				"description":   "",
				"start_time":    "2025-01-10T06:00:00.000Z",
				"end_time":      "2025-01-10T08:00:00.000Z",
				"goal_steps":    "5000",
				"goal_distance": "3.5",
				"goal_calories": 300,
			}},
		}},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d (%s)", resp.StatusCode, env.Message)
	}

	var created domain.Schedule
	if err := json.Unmarshal(env.Data, &created); err != nil {
		t.Fatalf("decode created schedule: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("created schedule has no id")
	}
	sess := created.Days[0].Sessions[0]
	if sess.GoalSteps != 5000 || sess.GoalDistance != 3.5 || sess.GoalCalories != 300 {
		t.Fatalf("goals not coerced: %+v", sess)
	}
	if sess.Description != "Session" {
		t.Fatalf("blank description not defaulted: %q", sess.Description)
	}

	// Missing title is rejected.
	resp, _ = doJSON(t, client, http.MethodPost, srv.URL+"/api/schedules", map[string]any{
		"title": "  ",
	})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("blank title: expected 422, got %d", resp.StatusCode)
	}

	// List contains the schedule.
	resp, env = doJSON(t, client, http.MethodGet, srv.URL+"/api/schedules", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", resp.StatusCode)
	}
	var listed []domain.Schedule
	if err := json.Unmarshal(env.Data, &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != created.ID {
		t.Fatalf("unexpected list: %+v", listed)
	}

	// Update.
	scheduleURL := fmt.Sprintf("%s/api/schedules/%d", srv.URL, created.ID)
	resp, _ = doJSON(t, client, http.MethodPut, scheduleURL, map[string]any{
		"title": "Race week",
		"days":  created.Days,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update: expected 200, got %d", resp.StatusCode)
	}

	resp, env = doJSON(t, client, http.MethodGet, scheduleURL, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", resp.StatusCode)
	}
	var fetched domain.Schedule
	if err := json.Unmarshal(env.Data, &fetched); err != nil {
		t.Fatalf("decode fetched schedule: %v", err)
	}
	if fetched.Title != "Race week" {
		t.Fatalf("title not updated: %q", fetched.Title)
	}

	// A different account cannot touch it.
	other := newAPIClient(t)
	signUp(t, other, srv, "other@example.com")
	resp, _ = doJSON(t, other, http.MethodDelete, scheduleURL, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("foreign delete: expected 404, got %d", resp.StatusCode)
	}

	// Owner deletes.
	resp, _ = doJSON(t, client, http.MethodDelete, scheduleURL, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, client, http.MethodGet, scheduleURL, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("get after delete: expected 404, got %d", resp.StatusCode)
	}
}

func TestIntegration_Countdown(t *testing.T) {
	srv := newTestServer(t)
	client := newAPIClient(t)
	signUp(t, client, srv, "timer@example.com")

	// No countdown yet.
	resp, _ := doJSON(t, client, http.MethodGet, srv.URL+"/api/countdown", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("no countdown: expected 404, got %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, client, http.MethodPost, srv.URL+"/api/countdown", map[string]int{
		"duration_seconds": 600,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("start: expected 201, got %d", resp.StatusCode)
	}

	resp, env := doJSON(t, client, http.MethodGet, srv.URL+"/api/countdown", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("remaining: expected 200, got %d", resp.StatusCode)
	}
	var remaining struct {
		RemainingSeconds int `json:"remaining_seconds"`
	}
	if err := json.Unmarshal(env.Data, &remaining); err != nil {
		t.Fatalf("decode remaining: %v", err)
	}
	if remaining.RemainingSeconds <= 590 || remaining.RemainingSeconds > 600 {
		t.Fatalf("implausible remaining time: %d", remaining.RemainingSeconds)
	}

	// Zero duration is rejected.
	resp, _ = doJSON(t, client, http.MethodPost, srv.URL+"/api/countdown", map[string]int{
		"duration_seconds": 0,
	})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("zero duration: expected 422, got %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, client, http.MethodDelete, srv.URL+"/api/countdown", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("clear: expected 200, got %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, client, http.MethodGet, srv.URL+"/api/countdown", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("after clear: expected 404, got %d", resp.StatusCode)
	}
}

func TestIntegration_MetricsAndFeed(t *testing.T) {
	srv := newTestServer(t)
	client := newAPIClient(t)
	signUp(t, client, srv, "runner@example.com")

	// Ingest a batch.
	resp, _ := doJSON(t, client, http.MethodPost, srv.URL+"/api/metrics", map[string]any{
		"samples": []map[string]any{
			{"kind": "steps", "value": 4000, "recorded_at": "2025-01-10T08:00:00Z"},
			{"kind": "steps", "value": 2500, "recorded_at": "2025-01-10T18:00:00Z"},
			{"kind": "distance", "value": 5.5, "recorded_at": "2025-01-10T08:00:00Z"},
		},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("ingest: expected 201, got %d", resp.StatusCode)
	}

	// Empty batch is rejected.
	resp, _ = doJSON(t, client, http.MethodPost, srv.URL+"/api/metrics", map[string]any{
		"samples": []map[string]any{},
	})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("empty batch: expected 422, got %d", resp.StatusCode)
	}

	resp, env := doJSON(t, client, http.MethodGet, srv.URL+"/api/metrics/daily?date=2025-01-10", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("daily: expected 200, got %d", resp.StatusCode)
	}
	var summary domain.DailyMetricSummary
	if err := json.Unmarshal(env.Data, &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.Steps != 6500 || summary.DistanceKm != 5.5 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	// Publish a post; the feed is publicly readable.
	resp, _ = doJSON(t, client, http.MethodPost, srv.URL+"/api/feed", map[string]string{
		"body": "negative split today",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create post: expected 201, got %d", resp.StatusCode)
	}

	anon := &http.Client{}
	resp, env = doJSON(t, anon, http.MethodGet, srv.URL+"/api/feed", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("anonymous feed: expected 200, got %d", resp.StatusCode)
	}
	var posts []domain.Post
	if err := json.Unmarshal(env.Data, &posts); err != nil {
		t.Fatalf("decode posts: %v", err)
	}
	if len(posts) != 1 || posts[0].Body != "negative split today" {
		t.Fatalf("unexpected feed: %+v", posts)
	}
	if posts[0].AuthorName != "Integration User" {
		t.Fatalf("author name missing: %+v", posts[0])
	}
}

func TestIntegration_ChatOverRealtime(t *testing.T) {
	srv := newTestServer(t)

	sender := newAPIClient(t)
	receiver := newAPIClient(t)

	// Register the receiver first to learn their id.
	resp, env := doJSON(t, receiver, http.MethodPost, srv.URL+"/api/register", map[string]string{
		"email":        "bob@example.com",
		"display_name": "Bob",
		"password":     "password123",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register receiver: expected 201, got %d", resp.StatusCode)
	}
	var receiverInfo struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(env.Data, &receiverInfo); err != nil {
		t.Fatalf("decode receiver: %v", err)
	}
	resp, _ = doJSON(t, receiver, http.MethodPost, srv.URL+"/api/login", map[string]string{
		"email":    "bob@example.com",
		"password": "password123",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login receiver: expected 200, got %d", resp.StatusCode)
	}

	signUp(t, sender, srv, "ada@example.com")
	resp, _ = doJSON(t, sender, http.MethodPost, srv.URL+"/api/login", map[string]string{
		"email":    "ada@example.com",
		"password": "password123",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login sender: expected 200, got %d", resp.StatusCode)
	}
	var token string
	for _, c := range resp.Cookies() {
		if c.Name == "auth_token" {
			token = c.Value
		}
	}

	// Send one message over the realtime connection.
	gw := realtime.NewGateway(discardLogger())
	header := http.Header{}
	header.Set("Cookie", "auth_token="+token)
	if err := gw.Connect(srv.URL, realtime.Options{RequestHeader: header}); err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer gw.Disconnect()

	gw.EmitEvent("chat", "message", map[string]any{
		"receiver_id": receiverInfo.ID,
		"body":        "see you at the track",
	})

	// The hub persists chat frames, so history shows up over REST.
	historyURL := fmt.Sprintf("%s/api/chats/%d", srv.URL, receiverInfo.ID)
	deadline := time.Now().Add(2 * time.Second)
	for {
		resp, env = doJSON(t, sender, http.MethodGet, historyURL, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("history: expected 200, got %d", resp.StatusCode)
		}
		var msgs []domain.ChatMessage
		if err := json.Unmarshal(env.Data, &msgs); err != nil {
			t.Fatalf("decode history: %v", err)
		}
		if len(msgs) == 1 {
			if msgs[0].Body != "see you at the track" || msgs[0].ReceiverID != receiverInfo.ID {
				t.Fatalf("unexpected message: %+v", msgs[0])
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("chat message never persisted")
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestIntegration_RealtimeScheduleEvents(t *testing.T) {
	srv := newTestServer(t)
	client := newAPIClient(t)

	// Obtain the auth cookie the websocket handshake needs.
	resp, _ := doJSON(t, client, http.MethodPost, srv.URL+"/api/register", map[string]string{
		"email":        "live@example.com",
		"display_name": "Live User",
		"password":     "password123",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, client, http.MethodPost, srv.URL+"/api/login", map[string]string{
		"email":    "live@example.com",
		"password": "password123",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: expected 200, got %d", resp.StatusCode)
	}
	var token string
	for _, c := range resp.Cookies() {
		if c.Name == "auth_token" {
			token = c.Value
		}
	}
	if token == "" {
		t.Fatal("login did not set auth_token cookie")
	}

	// An unauthenticated upgrade is rejected.
	gw := realtime.NewGateway(discardLogger())
	if err := gw.Connect(srv.URL, realtime.Options{ReconnectionAttempts: 1}); err == nil {
		t.Fatal("expected unauthenticated connect to fail")
	}

	header := http.Header{}
	header.Set("Cookie", "auth_token="+token)
	if err := gw.Connect(srv.URL, realtime.Options{RequestHeader: header}); err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer gw.Disconnect()

	received := make(chan json.RawMessage, 1)
	gw.AddListener("schedule", func(data json.RawMessage) {
		received <- data
	})

	// A schedule mutation over HTTP reaches the websocket listener.
	resp, _ = doJSON(t, client, http.MethodPost, srv.URL+"/api/schedules", map[string]any{
		"title": "Broadcast me",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create schedule: expected 201, got %d", resp.StatusCode)
	}

	select {
	case data := <-received:
		var schedule domain.Schedule
		if err := json.Unmarshal(data, &schedule); err != nil {
			t.Fatalf("decode event payload: %v", err)
		}
		if schedule.Title != "Broadcast me" {
			t.Fatalf("unexpected event payload: %+v", schedule)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("schedule event never arrived")
	}
}
