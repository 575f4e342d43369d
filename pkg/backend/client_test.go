package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	mu    sync.Mutex
	kinds []string
}

func (r *recordingObserver) ObserveBackendCall(_ string, kind string, _ int, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kinds = append(r.kinds, kind)
}

func TestProcessOutlineForwardsMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, PathOutline, r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "CS101", r.FormValue("moduleId"))
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "outline.pdf", header.Filename)
		assert.Equal(t, "application/pdf", header.Header.Get("Content-Type"))
		body, _ := io.ReadAll(file)
		assert.Equal(t, "%PDF-1.4", string(body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"summary":"Intro to CS"}`))
	}))
	defer srv.Close()

	obs := &recordingObserver{}
	client := New(srv.URL+"/", WithObserver(obs))
	res, err := client.ProcessOutline(context.Background(), "CS101", File{
		Name:        "outline.pdf",
		ContentType: "application/pdf",
		Content:     strings.NewReader("%PDF-1.4"),
	})
	require.NoError(t, err)
	assert.Equal(t, KindOk, res.Kind)
	assert.JSONEq(t, `{"summary":"Intro to CS"}`, string(res.Body))
	assert.Equal(t, []string{"ok"}, obs.kinds)
}

func TestProcessSlidesRelaysStructuredError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, PathSlides, r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "Week 1", r.FormValue("topic"))
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"bad pdf"}`))
	}))
	defer srv.Close()

	res, err := New(srv.URL).ProcessSlides(context.Background(), "CS101", "Week 1", File{
		Name:        "w1.pdf",
		ContentType: "application/pdf",
		Content:     strings.NewReader("%PDF"),
	})
	require.NoError(t, err)
	assert.Equal(t, KindStructuredError, res.Kind)
	assert.Equal(t, http.StatusInternalServerError, res.Status)
	assert.Equal(t, "bad pdf", res.Message)
}

func TestChatSendsEmptyHistoryArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, PathChat, r.URL.Path)
		var payload map[string]json.RawMessage
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.JSONEq(t, `[]`, string(payload["chatHistory"]))
		_, _ = w.Write([]byte(`{"answer":"42"}`))
	}))
	defer srv.Close()

	res, err := New(srv.URL).Chat(context.Background(), ChatRequest{Message: "q", Topic: "t", ModuleID: "CS101"})
	require.NoError(t, err)
	assert.True(t, res.OK())
}

func TestUnreachableBackend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	obs := &recordingObserver{}
	_, err := New(url, WithObserver(obs)).Chat(context.Background(), ChatRequest{Message: "q"})
	require.ErrorIs(t, err, ErrUnreachable)
	assert.Equal(t, []string{"transport_error"}, obs.kinds)
}
