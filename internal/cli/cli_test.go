package cli

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-portal-api/internal/dto"
	"github.com/noah-isme/course-portal-api/internal/models"
	"github.com/noah-isme/course-portal-api/internal/upload"
	"github.com/noah-isme/course-portal-api/pkg/client"
)

type fakePortal struct {
	mu         sync.Mutex
	modules    []models.Module
	outline    *dto.OutlineResponse
	outlineErr error
	slide      *models.SlideReference
	slideErr   error
	uploads    []string
	uploadErr  error
	answer     string
	deleted    []string
}

func (f *fakePortal) ListModules(ctx context.Context, filter models.ModuleFilter) ([]models.Module, error) {
	return f.modules, nil
}

func (f *fakePortal) CreateModule(ctx context.Context, req dto.CreateModuleRequest) (*models.Module, error) {
	m := models.Module{ID: req.ID(), Name: req.Name, Year: req.Year, Term: req.Term}
	f.modules = append(f.modules, m)
	return &m, nil
}

func (f *fakePortal) DeleteModule(ctx context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakePortal) Terms(ctx context.Context) ([]models.TermOption, error) {
	return []models.TermOption{{Year: "2025", Term: "Mich", Label: "2025 Mich"}}, nil
}

func (f *fakePortal) Outline(ctx context.Context, moduleID string) (*dto.OutlineResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.outline, f.outlineErr
}

func (f *fakePortal) SlideLink(ctx context.Context, moduleID, topic string) (*models.SlideReference, error) {
	return f.slide, f.slideErr
}

func (f *fakePortal) UploadOutline(ctx context.Context, moduleID string, file client.File) error {
	_, _ = io.Copy(io.Discard, file.Content)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads = append(f.uploads, "outline:"+moduleID+":"+file.Name)
	if f.uploadErr == nil {
		f.outline = &dto.OutlineResponse{ModuleID: moduleID, Outline: models.ExtractionResult{Topics: []string{"Sorting", "Graphs"}}}
		f.outlineErr = nil
	}
	return f.uploadErr
}

func (f *fakePortal) UploadSlides(ctx context.Context, moduleID, topic string, file client.File) error {
	f.uploads = append(f.uploads, "slides:"+moduleID+":"+topic)
	if f.uploadErr == nil {
		f.slide = &models.SlideReference{ModuleID: moduleID, Topic: topic, URL: "http://files/" + topic + ".pdf", ExpiresAt: time.Now().Add(time.Hour)}
		f.slideErr = nil
	}
	return f.uploadErr
}

func (f *fakePortal) Chat(ctx context.Context, req dto.ChatRequest) (string, error) {
	return f.answer, nil
}

func run(t *testing.T, portal *fakePortal, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := &App{Portal: portal, Limits: upload.Limits{}, In: strings.NewReader(stdin), Out: &out}
	cmd := NewRootCommand(app)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

var notFound = &client.APIError{Status: http.StatusNotFound, Code: "NOT_FOUND", Message: "No outline uploaded for this module yet"}

func TestModuleShowNotFoundOffersUpload(t *testing.T) {
	out, err := run(t, &fakePortal{outlineErr: notFound}, "", "module", "show", "CS404")
	require.NoError(t, err)
	assert.Contains(t, out, "No course outline uploaded yet.")
	assert.Contains(t, out, "portal upload outline CS404")
	assert.NotContains(t, out, "[error]")
}

func TestModuleShowErrorKeepsUpload(t *testing.T) {
	portal := &fakePortal{outlineErr: &client.APIError{Status: 500, Message: "Failed to load outline"}}
	out, err := run(t, portal, "", "module", "show", "CS101")
	require.NoError(t, err)
	assert.Contains(t, out, "[error] Failed to load outline")
	assert.Contains(t, out, "portal upload outline CS101")
}

func TestModuleShowRendersOutline(t *testing.T) {
	portal := &fakePortal{
		modules: []models.Module{{ID: "CS101", Name: "Intro", Year: "2025", Term: "Mich"}},
		outline: &dto.OutlineResponse{ModuleID: "CS101", Outline: models.ExtractionResult{
			Summary:     "Foundations",
			Lecturers:   []models.Lecturer{{Name: "Dr. Ada", Email: "ada@uni.edu"}},
			Topics:      []string{"Sorting"},
			Assessments: []models.Assessment{{Method: "Exam", Weighting: 60}},
			Textbook:    &models.Textbook{Title: "Algorithms", Edition: "4th", Authors: []string{"Sedgewick"}},
		}},
	}
	out, err := run(t, portal, "", "module", "show", "CS101")
	require.NoError(t, err)
	assert.Contains(t, out, "CS101  Intro (2025 Mich)")
	assert.Contains(t, out, "Dr. Ada <ada@uni.edu>")
	assert.Contains(t, out, "1. Sorting")
	assert.Contains(t, out, "Exam: 60%")
	assert.Contains(t, out, "Algorithms, 4th edition by Sedgewick")
	assert.NotContains(t, out, "portal upload outline")
}

func TestTopicShowNotFound(t *testing.T) {
	slideErr := &client.APIError{Status: http.StatusNotFound, Code: client.NotFoundCode, Message: "No slides uploaded for this topic yet"}
	out, err := run(t, &fakePortal{slideErr: slideErr}, "", "topic", "show", "CS101", "Graphs")
	require.NoError(t, err)
	assert.Contains(t, out, "No slides uploaded for this topic yet.")
	assert.NotContains(t, out, "[error]")
}

func TestTopicShowBareNotFoundIsAnError(t *testing.T) {
	slideErr := &client.APIError{Status: http.StatusNotFound, Message: "Request failed (status: 404)"}
	out, err := run(t, &fakePortal{slideErr: slideErr}, "", "topic", "show", "CS101", "Graphs")
	require.NoError(t, err)
	assert.Contains(t, out, "[error]")
	assert.NotContains(t, out, "No slides uploaded for this topic yet.")
	assert.Contains(t, out, "portal upload slides")
}

func TestModulesListAndAdd(t *testing.T) {
	portal := &fakePortal{}
	out, err := run(t, portal, "", "modules", "add", "CS101", "Intro", "2025", "Mich")
	require.NoError(t, err)
	assert.Contains(t, out, "Module added: CS101")

	out, err = run(t, portal, "", "modules", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "CS101")
	assert.Contains(t, out, "Intro")

	_, err = run(t, portal, "", "modules", "delete", "CS101")
	require.NoError(t, err)
	assert.Equal(t, []string{"CS101"}, portal.deleted)
}

func writeFile(t *testing.T, name string, size int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, append([]byte("%PDF-1.4\n"), bytes.Repeat([]byte("x"), size)...), 0o600))
	return path
}

func TestUploadRejectedFileNeverReachesPortal(t *testing.T) {
	portal := &fakePortal{}
	out, err := run(t, portal, "", "upload", "outline", "CS101", writeFile(t, "notes.txt", 20*1024))
	require.Error(t, err)
	assert.Contains(t, out, "Rejected: type mismatch")
	assert.Empty(t, portal.uploads)

	_, err = run(t, portal, "", "upload", "outline", "CS101", writeFile(t, "tiny.pdf", 10))
	require.Error(t, err)
	assert.Contains(t, err.Error(), upload.ReasonTooSmall)
	assert.Empty(t, portal.uploads)
}

func TestUploadOutlineRefreshesFromStore(t *testing.T) {
	portal := &fakePortal{outlineErr: notFound}
	out, err := run(t, portal, "", "upload", "outline", "CS101", writeFile(t, "outline.pdf", 20*1024), writeFile(t, "ignored.pdf", 20*1024))
	require.NoError(t, err)
	assert.Equal(t, []string{"outline:CS101:outline.pdf"}, portal.uploads)
	assert.Contains(t, out, "1. Sorting")
	assert.Contains(t, out, "2. Graphs")
}

func TestUploadFailureShowsServerMessage(t *testing.T) {
	portal := &fakePortal{uploadErr: &client.APIError{Status: 500, Message: "bad pdf"}}
	out, err := run(t, portal, "", "upload", "slides", "CS101", "Sorting", writeFile(t, "deck.pdf", 20*1024))
	require.Error(t, err)
	assert.Contains(t, out, "Upload failed: bad pdf")
}

func TestChatRepl(t *testing.T) {
	out, err := run(t, &fakePortal{answer: "Quicksort partitions."}, "what is quicksort?\n/quit\n", "chat", "CS101", "Sorting")
	require.NoError(t, err)
	assert.Contains(t, out, "assistant: thinking…")
	assert.Contains(t, out, "assistant: Quicksort partitions.")
}
