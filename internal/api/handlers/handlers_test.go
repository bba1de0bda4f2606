package handlers

import (
	"bytes"
	"chat-rag/internal/app"
	"chat-rag/internal/config"
	"chat-rag/internal/repository/db"
	"chat-rag/internal/service/llm"
	"chat-rag/internal/testutil"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
)

const tenMiB = 10 * 1024 * 1024

type testDeps struct {
	store    *testutil.MockStore
	provider *testutil.MockCompletionProvider
	sender   *testutil.MockSender
	config   *app.Config
}

func newTestDeps(t *testing.T) *testDeps {
	t.Helper()
	deps := &testDeps{
		store:    &testutil.MockStore{},
		provider: &testutil.MockCompletionProvider{},
		sender:   &testutil.MockSender{Result: true},
	}
	appConfig := &config.AppConfig{
		Upload: config.UploadConfig{MaxFileBytes: tenMiB, TempDir: t.TempDir()},
		Models: testutil.NewMockModelsConfig(),
	}
	deps.config = app.NewConfig(deps.store, appConfig, deps.provider, deps.sender)
	return deps
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("error body %q is not JSON: %v", rec.Body.String(), err)
	}
	return resp.Error
}

func jsonRequest(method, target string, body any) *http.Request {
	var buf bytes.Buffer
	json.NewEncoder(&buf).Encode(body)
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// multipartUpload builds a body with one file part
func multipartUpload(t *testing.T, field, filename, contentType string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, field, filename))
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("CreatePart() error = %v", err)
	}
	part.Write(content)
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/documents", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

// configuredStore answers configs and documents selects like a seeded database
func (d *testDeps) configuredStore(configs, documents []db.Record) {
	d.store.SelectFunc = func(ctx context.Context, table db.Table, opts db.QueryOptions) ([]db.Record, error) {
		if table == db.TableConfigs {
			return configs, nil
		}
		return documents, nil
	}
	d.store.InsertFunc = func(ctx context.Context, table db.Table, record db.Record) (db.Record, error) {
		return record, nil
	}
}

func (d *testDeps) answer(text string, err error) {
	d.provider.CompleteFunc = func(ctx context.Context, req llm.CompletionRequest) (string, error) {
		return text, err
	}
}
