package httpserver

import (
	"bytes"
	"context"
	"encoding/base64"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/domain"
	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/extract"
	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/repository"
	pstemporal "github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/temporal"
)

// ---------------------------------------------------------------------------
// Tests: submitPaper (JSON reference)
// ---------------------------------------------------------------------------

func TestSubmitPaper_DOIResolution(t *testing.T) {
	resolver := &mockResolver{
		workFn: func(_ context.Context, doi string) (*extract.Work, error) {
			if doi != "10.1000/attention" {
				t.Errorf("expected DOI 10.1000/attention, got %q", doi)
			}
			return &extract.Work{
				DOI:      "10.1000/attention",
				Title:    "Attention Is All You Need",
				Abstract: "We propose the Transformer.",
				Authors:  []domain.Author{{Name: "Vaswani"}},
				Year:     2017,
				URL:      "https://example.org/attention",
			}, nil
		},
	}

	var capturedInput pstemporal.PipelineWorkflowInput
	wfClient := &mockWorkflowClient{
		startFn: func(_ context.Context, input pstemporal.PipelineWorkflowInput, _ interface{}) (string, string, error) {
			capturedInput = input
			return "wf-test", "run-test", nil
		},
	}
	srv := newTestHTTPServer(wfClient, &mockPaperRepo{}, &mockTopicRepo{}, &mockSummaryRepo{}, resolver)

	body := `{"doi":"10.1000/attention","generate_audio":true}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/papers", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	rr := serveHTTP(srv, req)

	if rr.Code != http.StatusAccepted {
		t.Fatalf("expected status 202, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp paperSubmitResponse
	decodeBody(t, rr, &resp)
	if resp.Title != "Attention Is All You Need" {
		t.Errorf("expected resolved title, got %q", resp.Title)
	}

	if len(capturedInput.Papers) != 1 {
		t.Fatalf("expected 1 submission, got %d", len(capturedInput.Papers))
	}
	sub := capturedInput.Papers[0]
	if sub.DOI != "10.1000/attention" {
		t.Errorf("expected DOI to be passed through, got %q", sub.DOI)
	}
	if sub.Source != domain.SourceKindDOI {
		t.Errorf("expected source doi, got %q", sub.Source)
	}
	if sub.PublicationYear != 2017 {
		t.Errorf("expected resolved year 2017, got %d", sub.PublicationYear)
	}
	if len(sub.Authors) != 1 || sub.Authors[0].Name != "Vaswani" {
		t.Errorf("expected resolved authors, got %+v", sub.Authors)
	}
	if !capturedInput.GenerateAudio {
		t.Error("expected generate_audio to be passed through")
	}
	if capturedInput.Query != "" {
		t.Errorf("expected no discovery query for direct submission, got %q", capturedInput.Query)
	}
}

func TestSubmitPaper_UnresolvableDOI(t *testing.T) {
	resolver := &mockResolver{
		workFn: func(_ context.Context, _ string) (*extract.Work, error) {
			return nil, domain.NewNotFoundError("work", "10.1000/missing")
		},
	}
	srv := newTestHTTPServer(&mockWorkflowClient{}, &mockPaperRepo{}, &mockTopicRepo{}, &mockSummaryRepo{}, resolver)

	body := `{"doi":"10.1000/missing"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/papers", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	rr := serveHTTP(srv, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestSubmitPaper_URLRequiresTitle(t *testing.T) {
	srv := newTestHTTPServer(&mockWorkflowClient{}, &mockPaperRepo{}, &mockTopicRepo{}, &mockSummaryRepo{}, &mockResolver{})

	body := `{"url":"https://example.org/paper.pdf"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/papers", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	rr := serveHTTP(srv, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestSubmitPaper_URLWithTitle(t *testing.T) {
	var capturedInput pstemporal.PipelineWorkflowInput
	wfClient := &mockWorkflowClient{
		startFn: func(_ context.Context, input pstemporal.PipelineWorkflowInput, _ interface{}) (string, string, error) {
			capturedInput = input
			return "wf-test", "run-test", nil
		},
	}
	srv := newTestHTTPServer(wfClient, &mockPaperRepo{}, &mockTopicRepo{}, &mockSummaryRepo{}, &mockResolver{})

	body := `{"title":"Deep Residual Learning","url":"https://example.org/resnet.pdf","topics":["Computer Vision"]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/papers", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	rr := serveHTTP(srv, req)

	if rr.Code != http.StatusAccepted {
		t.Fatalf("expected status 202, got %d: %s", rr.Code, rr.Body.String())
	}
	sub := capturedInput.Papers[0]
	if sub.Source != domain.SourceKindURL {
		t.Errorf("expected source url, got %q", sub.Source)
	}
	if sub.SourceURL != "https://example.org/resnet.pdf" {
		t.Errorf("expected source URL to be passed through, got %q", sub.SourceURL)
	}
	if len(capturedInput.Topics) != 1 || capturedInput.Topics[0] != "Computer Vision" {
		t.Errorf("expected topics to be passed through, got %+v", capturedInput.Topics)
	}
}

func TestSubmitPaper_NoSource(t *testing.T) {
	srv := newTestHTTPServer(&mockWorkflowClient{}, &mockPaperRepo{}, &mockTopicRepo{}, &mockSummaryRepo{}, &mockResolver{})

	body := `{"title":"A Paper Without Any Source"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/papers", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	rr := serveHTTP(srv, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", rr.Code, rr.Body.String())
	}
}

// ---------------------------------------------------------------------------
// Tests: submitPaper (multipart upload)
// ---------------------------------------------------------------------------

func buildUploadRequest(t *testing.T, filename, title string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("title", title); err != nil {
		t.Fatalf("failed to write title field: %v", err)
	}
	if err := mw.WriteField("topics", "Machine Learning, Genomics"); err != nil {
		t.Fatalf("failed to write topics field: %v", err)
	}
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatalf("failed to write file content: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/papers", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestSubmitPaper_Upload(t *testing.T) {
	var capturedInput pstemporal.PipelineWorkflowInput
	wfClient := &mockWorkflowClient{
		startFn: func(_ context.Context, input pstemporal.PipelineWorkflowInput, _ interface{}) (string, string, error) {
			capturedInput = input
			return "wf-test", "run-test", nil
		},
	}
	srv := newTestHTTPServer(wfClient, &mockPaperRepo{}, &mockTopicRepo{}, &mockSummaryRepo{}, &mockResolver{})
	srv.uploadsDir = t.TempDir()

	content := []byte("%PDF-1.4 fake paper body")
	req := buildUploadRequest(t, "paper.pdf", "An Uploaded Paper", content)
	rr := serveHTTP(srv, req)

	if rr.Code != http.StatusAccepted {
		t.Fatalf("expected status 202, got %d: %s", rr.Code, rr.Body.String())
	}

	if len(capturedInput.Papers) != 1 {
		t.Fatalf("expected 1 submission, got %d", len(capturedInput.Papers))
	}
	sub := capturedInput.Papers[0]
	if sub.Source != domain.SourceKindUpload {
		t.Errorf("expected source upload, got %q", sub.Source)
	}
	if sub.Title != "An Uploaded Paper" {
		t.Errorf("expected title to be passed through, got %q", sub.Title)
	}
	if sub.LocalPath == "" {
		t.Fatal("expected local path to be set")
	}

	stored, err := os.ReadFile(sub.LocalPath)
	if err != nil {
		t.Fatalf("failed to read stored upload: %v", err)
	}
	if !bytes.Equal(stored, content) {
		t.Error("stored upload does not match submitted content")
	}

	if len(capturedInput.Topics) != 2 {
		t.Errorf("expected 2 topics from form field, got %+v", capturedInput.Topics)
	}
}

func TestSubmitPaper_UploadRejectsUnknownExtension(t *testing.T) {
	srv := newTestHTTPServer(&mockWorkflowClient{}, &mockPaperRepo{}, &mockTopicRepo{}, &mockSummaryRepo{}, &mockResolver{})
	srv.uploadsDir = t.TempDir()

	req := buildUploadRequest(t, "paper.exe", "A Suspicious Upload", []byte("MZ"))
	rr := serveHTTP(srv, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestSubmitPaper_UploadRequiresTitle(t *testing.T) {
	srv := newTestHTTPServer(&mockWorkflowClient{}, &mockPaperRepo{}, &mockTopicRepo{}, &mockSummaryRepo{}, &mockResolver{})
	srv.uploadsDir = t.TempDir()

	req := buildUploadRequest(t, "paper.pdf", "", []byte("%PDF-1.4"))
	rr := serveHTTP(srv, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", rr.Code, rr.Body.String())
	}
}

// ---------------------------------------------------------------------------
// Tests: listPapers
// ---------------------------------------------------------------------------

func TestListPapers_StatusFilterAndPagination(t *testing.T) {
	now := time.Now()
	papers := []*domain.Paper{
		{ID: uuid.New(), Title: "Paper One", Status: domain.PaperStatusSummarized, CreatedAt: now, UpdatedAt: now},
		{ID: uuid.New(), Title: "Paper Two", Status: domain.PaperStatusSummarized, CreatedAt: now, UpdatedAt: now},
	}

	var capturedFilter repository.PaperFilter
	paperRepo := &mockPaperRepo{
		listFn: func(_ context.Context, filter repository.PaperFilter) ([]*domain.Paper, int64, error) {
			capturedFilter = filter
			return papers, 10, nil
		},
	}
	srv := newTestHTTPServer(&mockWorkflowClient{}, paperRepo, &mockTopicRepo{}, &mockSummaryRepo{}, &mockResolver{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/papers?status=summarized&page_size=2", nil)
	rr := serveHTTP(srv, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	if capturedFilter.Status == nil || *capturedFilter.Status != domain.PaperStatusSummarized {
		t.Errorf("expected summarized status filter, got %+v", capturedFilter.Status)
	}
	if capturedFilter.Limit != 2 {
		t.Errorf("expected limit 2, got %d", capturedFilter.Limit)
	}

	var resp paperListResponse
	decodeBody(t, rr, &resp)
	if len(resp.Papers) != 2 {
		t.Errorf("expected 2 papers, got %d", len(resp.Papers))
	}
	if resp.TotalCount != 10 {
		t.Errorf("expected total count 10, got %d", resp.TotalCount)
	}
	if resp.NextPageToken == "" {
		t.Fatal("expected next page token for a partial listing")
	}

	decoded, err := base64.URLEncoding.DecodeString(resp.NextPageToken)
	if err != nil {
		t.Fatalf("next page token is not valid base64: %v", err)
	}
	offset, err := strconv.Atoi(string(decoded))
	if err != nil || offset != 2 {
		t.Errorf("expected token to encode offset 2, got %q", decoded)
	}
}

func TestListPapers_SecondPage(t *testing.T) {
	var capturedFilter repository.PaperFilter
	paperRepo := &mockPaperRepo{
		listFn: func(_ context.Context, filter repository.PaperFilter) ([]*domain.Paper, int64, error) {
			capturedFilter = filter
			return nil, 3, nil
		},
	}
	srv := newTestHTTPServer(&mockWorkflowClient{}, paperRepo, &mockTopicRepo{}, &mockSummaryRepo{}, &mockResolver{})

	token := base64.URLEncoding.EncodeToString([]byte("2"))
	req := httptest.NewRequest(http.MethodGet, "/api/v1/papers?page_size=2&page_token="+token, nil)
	rr := serveHTTP(srv, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if capturedFilter.Offset != 2 {
		t.Errorf("expected offset 2, got %d", capturedFilter.Offset)
	}

	var resp paperListResponse
	decodeBody(t, rr, &resp)
	if resp.NextPageToken != "" {
		t.Errorf("expected no next page token on the final page, got %q", resp.NextPageToken)
	}
}

func TestListPapers_UnknownStatus(t *testing.T) {
	srv := newTestHTTPServer(&mockWorkflowClient{}, &mockPaperRepo{}, &mockTopicRepo{}, &mockSummaryRepo{}, &mockResolver{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/papers?status=bogus", nil)
	rr := serveHTTP(srv, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestListPapers_MalformedPageToken(t *testing.T) {
	srv := newTestHTTPServer(&mockWorkflowClient{}, &mockPaperRepo{}, &mockTopicRepo{}, &mockSummaryRepo{}, &mockResolver{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/papers?page_token=%21%21%21", nil)
	rr := serveHTTP(srv, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", rr.Code, rr.Body.String())
	}
}

// ---------------------------------------------------------------------------
// Tests: getPaper / getPaperSummary
// ---------------------------------------------------------------------------

func TestGetPaper_Success(t *testing.T) {
	paperID := uuid.New()
	paperRepo := &mockPaperRepo{
		getByIDFn: func(_ context.Context, id uuid.UUID) (*domain.Paper, error) {
			if id != paperID {
				t.Errorf("expected paper ID %s, got %s", paperID, id)
			}
			return &domain.Paper{
				ID:     paperID,
				Title:  "Attention Is All You Need",
				DOI:    "10.1000/attention",
				Status: domain.PaperStatusSummarized,
			}, nil
		},
	}
	srv := newTestHTTPServer(&mockWorkflowClient{}, paperRepo, &mockTopicRepo{}, &mockSummaryRepo{}, &mockResolver{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/papers/"+paperID.String(), nil)
	rr := serveHTTP(srv, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp paperResponse
	decodeBody(t, rr, &resp)
	if resp.ID != paperID.String() {
		t.Errorf("expected paper ID %s, got %s", paperID, resp.ID)
	}
	if resp.Status != string(domain.PaperStatusSummarized) {
		t.Errorf("expected summarized status, got %q", resp.Status)
	}
}

func TestGetPaper_NotFound(t *testing.T) {
	srv := newTestHTTPServer(&mockWorkflowClient{}, &mockPaperRepo{}, &mockTopicRepo{}, &mockSummaryRepo{}, &mockResolver{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/papers/"+uuid.New().String(), nil)
	rr := serveHTTP(srv, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestGetPaperSummary_Success(t *testing.T) {
	paperID := uuid.New()
	summaryRepo := &mockSummaryRepo{
		getForPaperFn: func(_ context.Context, id uuid.UUID) (*domain.Summary, error) {
			return &domain.Summary{
				ID:      uuid.New(),
				Type:    domain.SummaryTypeIndividual,
				Content: "A summary of the paper.",
				PaperID: &id,
			}, nil
		},
	}
	srv := newTestHTTPServer(&mockWorkflowClient{}, &mockPaperRepo{}, &mockTopicRepo{}, summaryRepo, &mockResolver{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/papers/"+paperID.String()+"/summary", nil)
	rr := serveHTTP(srv, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp summaryResponse
	decodeBody(t, rr, &resp)
	if resp.Type != string(domain.SummaryTypeIndividual) {
		t.Errorf("expected individual summary, got %q", resp.Type)
	}
	if resp.PaperID != paperID.String() {
		t.Errorf("expected paper_id %s, got %s", paperID, resp.PaperID)
	}
}
