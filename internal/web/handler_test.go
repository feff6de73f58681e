package web

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfman30/booking-wizard/internal/wizard"
	"github.com/wolfman30/booking-wizard/pkg/logging"
	"golang.org/x/net/websocket"
)

var fixedNow = time.Date(2026, time.October, 18, 15, 30, 0, 0, time.UTC)

// lockedBuffer lets the test read logs written by server goroutines.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type testEnv struct {
	srv    *httptest.Server
	client *http.Client
	logs   *lockedBuffer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logs := &lockedBuffer{}
	logger := logging.NewWithWriter(logs, "info")
	machine := wizard.NewMachine(time.UTC, func() time.Time { return fixedNow })
	mgr := wizard.NewManager(machine, wizard.NewMemoryStore(0), logger)

	srv := httptest.NewServer(NewHandler(mgr, logger).Routes())
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &testEnv{srv: srv, client: &http.Client{Jar: jar}, logs: logs}
}

func (e *testEnv) get(t *testing.T, path string) (int, string) {
	t.Helper()
	resp, err := e.client.Get(e.srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func (e *testEnv) post(t *testing.T, path string, form url.Values) (int, string) {
	t.Helper()
	resp, err := e.client.PostForm(e.srv.URL+path, form)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func (e *testEnv) state(t *testing.T) stateView {
	t.Helper()
	code, body := e.get(t, "/api/state")
	require.Equal(t, http.StatusOK, code)
	var v stateView
	require.NoError(t, json.Unmarshal([]byte(body), &v))
	return v
}

func (e *testEnv) toContactStep(t *testing.T) {
	t.Helper()
	code, _ := e.post(t, "/service", url.Values{"service_id": {"1"}})
	require.Equal(t, http.StatusOK, code)
	code, _ = e.post(t, "/date", url.Values{"date": {"2026-10-18"}})
	require.Equal(t, http.StatusOK, code)
	code, _ = e.post(t, "/time", url.Values{"time": {"09:00"}})
	require.Equal(t, http.StatusOK, code)
}

func contactForm(name, email, phone string) url.Values {
	return url.Values{"name": {name}, "email": {email}, "phone": {phone}}
}

func TestPageStartsAtServiceSelection(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.client.Get(env.srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))
	require.NotEmpty(t, resp.Cookies())
	assert.Equal(t, SessionCookie, resp.Cookies()[0].Name)
	assert.True(t, resp.Cookies()[0].HttpOnly)

	page := string(body)
	assert.Contains(t, page, `data-step="1"`)
	assert.Contains(t, page, "Select a Service")
	for _, name := range []string{"Dental Checkup", "Root Canal", "Teeth Whitening"} {
		assert.Contains(t, page, name)
	}
	assert.Contains(t, page, "₹1500")
	assert.NotContains(t, page, "service selected")
}

func TestDentalCheckupBooking(t *testing.T) {
	env := newTestEnv(t)

	code, page := env.post(t, "/service", url.Values{"service_id": {"1"}})
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, page, `data-step="2"`)
	assert.Contains(t, page, `title="Today"`)
	assert.Contains(t, page, `title="Tomorrow"`)
	assert.Contains(t, page, `title="Tue, Oct 20"`)
	assert.Contains(t, page, `value="11:00" class="slot" disabled`)

	code, page = env.post(t, "/date", url.Values{"date": {"2026-10-18"}})
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, page, `data-step="2"`)

	code, page = env.post(t, "/time", url.Values{"time": {"09:00"}})
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, page, `data-step="3"`)
	assert.Contains(t, page, "<div>Dental Checkup</div>")
	assert.Contains(t, page, "<div>Today</div>")
	assert.Contains(t, page, "<div>09:00</div>")

	code, page = env.post(t, "/contact", contactForm("Jane Doe", "jane@x.com", "555-0100"))
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, page, `data-step="4"`)
	assert.Contains(t, page, `<span id="confirm-service">Dental Checkup</span>`)
	assert.Contains(t, page, `<span id="confirm-date">October 18, 2026</span>`)
	assert.Contains(t, page, `<span id="confirm-time">09:00</span>`)
	assert.Contains(t, page, `<span id="confirm-duration">30 min</span>`)

	assert.Contains(t, env.logs.String(), `"msg":"appointment submitted"`)
	assert.Contains(t, env.logs.String(), `"email":"jane@x.com"`)
}

func TestUnavailableSlotKeepsStep(t *testing.T) {
	env := newTestEnv(t)
	env.post(t, "/service", url.Values{"service_id": {"2"}})

	code, page := env.post(t, "/time", url.Values{"time": {"11:00"}})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Contains(t, page, "That time slot is not available.")

	st := env.state(t)
	assert.Equal(t, 2, st.Step)
	assert.Empty(t, st.Time)
}

func TestSubmitWithMissingFieldStaysOnContact(t *testing.T) {
	env := newTestEnv(t)
	env.toContactStep(t)

	code, page := env.post(t, "/contact", contactForm("Jane Doe", "jane@x.com", ""))
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Contains(t, page, `data-step="3"`)
	assert.Contains(t, page, "Please fill in your phone number.")
	assert.Contains(t, page, `value="Jane Doe"`)

	st := env.state(t)
	assert.Equal(t, 3, st.Step)
	assert.NotContains(t, env.logs.String(), "appointment submitted")
}

func TestSubmitWithMalformedEmail(t *testing.T) {
	env := newTestEnv(t)
	env.toContactStep(t)

	code, page := env.post(t, "/contact", contactForm("Jane Doe", "jane", "555"))
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Contains(t, page, "Please enter a valid email address.")
}

func TestRestartShowsFreshServiceSelection(t *testing.T) {
	env := newTestEnv(t)
	env.toContactStep(t)
	env.post(t, "/contact", contactForm("Jane Doe", "jane@x.com", "555-0100"))

	code, page := env.post(t, "/restart", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, page, `data-step="1"`)
	assert.NotContains(t, page, "service selected")

	st := env.state(t)
	assert.Equal(t, 1, st.Step)
	assert.Nil(t, st.Service)
	assert.Empty(t, st.Date)
	assert.Empty(t, st.Time)
	assert.Empty(t, st.Name)
}

func TestRejectedInputs(t *testing.T) {
	env := newTestEnv(t)

	code, _ := env.post(t, "/time", url.Values{"time": {"09:00"}})
	assert.Equal(t, http.StatusConflict, code)

	code, _ = env.post(t, "/service", url.Values{"service_id": {"abc"}})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = env.post(t, "/service", url.Values{"service_id": {"9"}})
	assert.Equal(t, http.StatusBadRequest, code)

	env.post(t, "/service", url.Values{"service_id": {"1"}})

	code, _ = env.post(t, "/date", url.Values{"date": {"18-10-2026"}})
	assert.Equal(t, http.StatusBadRequest, code)

	code, page := env.post(t, "/date", url.Values{"date": {"2026-11-30"}})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Contains(t, page, "within the next 7 days")

	code, _ = env.post(t, "/time", url.Values{"time": {"13:00"}})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = env.post(t, "/time", url.Values{})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = env.post(t, "/restart", nil)
	assert.Equal(t, http.StatusConflict, code)
}

func TestContactFieldBinding(t *testing.T) {
	env := newTestEnv(t)
	env.toContactStep(t)

	code, body := env.post(t, "/contact/field", url.Values{"field": {"name"}, "value": {"Ja"}})
	require.Equal(t, http.StatusOK, code)

	var st stateView
	require.NoError(t, json.Unmarshal([]byte(body), &st))
	assert.Equal(t, "Ja", st.Name)
	assert.Equal(t, 3, st.Step)
	assert.Equal(t, "Today", st.DateLabel)

	code, _ = env.post(t, "/contact/field", url.Values{"field": {"address"}, "value": {"x"}})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestMalformedCookieIsReplaced(t *testing.T) {
	env := newTestEnv(t)
	req, err := http.NewRequest(http.MethodGet, env.srv.URL+"/", nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "not-a-uuid"})

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.NotEmpty(t, resp.Cookies())
	assert.NotEqual(t, "not-a-uuid", resp.Cookies()[0].Value)
}

func TestWebSocketFieldUpdates(t *testing.T) {
	env := newTestEnv(t)
	env.toContactStep(t)

	base, err := url.Parse(env.srv.URL)
	require.NoError(t, err)
	cookies := env.client.Jar.Cookies(base)
	require.NotEmpty(t, cookies)

	cfg, err := websocket.NewConfig("ws"+strings.TrimPrefix(env.srv.URL, "http")+"/ws", env.srv.URL)
	require.NoError(t, err)
	cfg.Header = http.Header{"Cookie": {cookies[0].String()}}

	conn, err := websocket.DialConfig(cfg)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, websocket.JSON.Send(conn, inboundFrame{Type: "field", Field: "email", Value: "jane@x.com"}))
	var out outboundFrame
	require.NoError(t, websocket.JSON.Receive(conn, &out))
	assert.Equal(t, "state", out.Type)
	require.NotNil(t, out.State)
	assert.Equal(t, "jane@x.com", out.State.Email)

	require.NoError(t, websocket.JSON.Send(conn, inboundFrame{Type: "field", Field: "fax", Value: "1"}))
	require.NoError(t, websocket.JSON.Receive(conn, &out))
	assert.Equal(t, "error", out.Type)

	require.NoError(t, websocket.JSON.Send(conn, inboundFrame{Type: "ping"}))
	require.NoError(t, websocket.JSON.Receive(conn, &out))
	assert.Equal(t, "pong", out.Type)

	assert.Equal(t, "jane@x.com", env.state(t).Email)
}

func TestWebSocketRequiresSession(t *testing.T) {
	env := newTestEnv(t)
	resp, err := http.Get(env.srv.URL + "/ws")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCookielessActionsDoNotOutliveSessionTTL(t *testing.T) {
	var mu sync.Mutex
	now := fixedNow
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}

	store := wizard.NewMemoryStore(2*time.Hour, wizard.WithMemoryClock(clock))
	machine := wizard.NewMachine(time.UTC, func() time.Time { return fixedNow })
	mgr := wizard.NewManager(machine, store, logging.New("error"))
	routes := NewHandler(mgr, nil).Routes()

	for i := 0; i < 200; i++ {
		req := httptest.NewRequest(http.MethodPost, "/service", strings.NewReader("service_id=1"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rr := httptest.NewRecorder()
		routes.ServeHTTP(rr, req)
		require.Equal(t, http.StatusSeeOther, rr.Code)
	}
	assert.Equal(t, 200, store.Len())

	mu.Lock()
	now = now.Add(72 * time.Hour)
	mu.Unlock()

	assert.Equal(t, 200, store.Sweep())
	assert.Equal(t, 0, store.Len())
}
