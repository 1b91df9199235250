package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobbygenerik/stream-transcribe-server/internal/session"
	"github.com/bobbygenerik/stream-transcribe-server/internal/testutil"
)

func newTestRouter(t *testing.T) (*gin.Engine, *session.Manager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	manager := session.NewManager(session.Options{
		SessionsDir:      t.TempDir(),
		PollInterval:     10 * time.Millisecond,
		SubscriberBuffer: 8,
		SourceFactory: func(ctx context.Context, streamURL, dir string, chunkSeconds int) (session.Source, error) {
			return &testutil.MockSource{}, nil
		},
	}, &testutil.MockTranscriber{}, &testutil.MockTranslator{})

	t.Cleanup(manager.StopAll)
	return New(manager).Router(), manager
}

func startTestSession(t *testing.T, router *gin.Engine) string {
	t.Helper()

	body := `{"stream_url": "rtmp://example/stream", "target_lang": "en", "chunk_seconds": 8}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/sessions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	id, _ := resp["id"].(string)
	require.NotEmpty(t, id)
	return id
}

func TestStartSession(t *testing.T) {
	router, _ := newTestRouter(t)

	body := `{"stream_url": "rtmp://example/stream", "target_lang": "fr"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/sessions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "running", resp["status"])
	assert.Equal(t, "fr", resp["target_language"])
	assert.EqualValues(t, 8, resp["chunk_seconds"], "chunk_seconds should default to 8")
	assert.Contains(t, resp["subtitles_url"], "/subtitles.vtt")
}

func TestStartSessionRejectsBadRequest(t *testing.T) {
	router, _ := newTestRouter(t)

	for name, body := range map[string]string{
		"missing stream_url": `{"target_lang": "en"}`,
		"negative duration":  `{"stream_url": "rtmp://x", "chunk_seconds": -1}`,
	} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/sessions", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, name)
	}
}

func TestGetSession(t *testing.T) {
	router, _ := newTestRouter(t)
	id := startTestSession(t, router)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/sessions/"+id, nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/sessions/unknown", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListSessions(t *testing.T) {
	router, _ := newTestRouter(t)
	startTestSession(t, router)
	startTestSession(t, router)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/sessions", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Sessions []map[string]any `json:"sessions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Sessions, 2)
}

func TestStopSession(t *testing.T) {
	router, _ := newTestRouter(t)
	id := startTestSession(t, router)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/sessions/"+id+"/stop", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	// Idempotent second stop.
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/sessions/"+id+"/stop", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/sessions/unknown/stop", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUploadAndFetchSubtitles(t *testing.T) {
	router, _ := newTestRouter(t)
	id := startTestSession(t, router)

	// Not ready before any caption is persisted.
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/sessions/"+id+"/subtitles.vtt", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/sessions/"+id+"/segments", bytes.NewReader([]byte("fake-wav")))
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var upload map[string]int
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &upload))
	assert.Equal(t, 0, upload["index"])

	testutil.WaitForCondition(t, func() bool {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/sessions/"+id+"/subtitles.vtt", nil))
		return w.Code == http.StatusOK
	}, 2*time.Second)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/sessions/"+id+"/subtitles.vtt", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/vtt")
	assert.Contains(t, w.Body.String(), "WEBVTT")
	assert.Contains(t, w.Body.String(), "00:00:00.000 --> 00:00:08.000")
	assert.Contains(t, w.Body.String(), "mock transcription")
}

func TestCleanupSession(t *testing.T) {
	router, _ := newTestRouter(t)
	id := startTestSession(t, router)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/sessions/"+id, nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/sessions/"+id, nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWebSocketReceivesNewCaptions(t *testing.T) {
	router, manager := newTestRouter(t)
	id := startTestSession(t, router)

	srv := httptest.NewServer(router)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/sessions/" + id + "/live"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	// The viewer is subscribed once the connection is up; captions produced
	// afterwards must reach it.
	sess, err := manager.Get(id)
	require.NoError(t, err)
	testutil.WaitForCondition(t, func() bool {
		return sess.Broadcaster().SubscriberCount() == 1
	}, 2*time.Second)

	_, err = manager.Upload(id, []byte("fake-wav"))
	require.NoError(t, err)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var entry struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	}
	require.NoError(t, conn.ReadJSON(&entry))
	assert.Equal(t, 0.0, entry.Start)
	assert.Equal(t, 8.0, entry.End)
	assert.Equal(t, "mock transcription", entry.Text)
}

func TestWebSocketUnknownSession(t *testing.T) {
	router, _ := newTestRouter(t)

	srv := httptest.NewServer(router)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/sessions/unknown/live"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
