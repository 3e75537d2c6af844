package handler

import (
	"net/http"
	"strings"
	"testing"

	"github.com/emagodi/contracts/internal/requisition/testutil"
)

func uploadFiles(t *testing.T, env *testEnv, reqID string, files map[string]string) []interface{} {
	t.Helper()
	w := testutil.DoMultipart(env.router, "POST", "/api/v1/requisitions/"+reqID+"/upload", "files", files, nil, env.token)
	if w.Code != http.StatusCreated {
		t.Fatalf("upload: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	return dataList(t, testutil.ParseResponse(w))
}

func TestAttachmentHandler_UploadListRename(t *testing.T) {
	env := setupRequisitionTest(t)
	id := createRequisition(t, env, map[string]interface{}{})

	added := uploadFiles(t, env, id, map[string]string{
		"quote.txt":   "quote",
		"invoice.txt": "invoice",
		"terms.txt":   "terms",
	})
	if len(added) != 3 {
		t.Fatalf("expected 3 attachments, got %d", len(added))
	}

	w := testutil.DoRequest(env.router, "GET", "/api/v1/attachments/requisition/"+id+"?page=1&page_size=2", nil, env.token)
	if w.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", w.Code)
	}
	data := dataMap(t, testutil.ParseResponse(w))
	if items := data["items"].([]interface{}); len(items) != 2 {
		t.Fatalf("expected 2 items on page 1, got %d", len(items))
	}
	pagination := data["pagination"].(map[string]interface{})
	if pagination["total"] != float64(3) || pagination["total_pages"] != float64(2) {
		t.Fatalf("unexpected pagination %v", pagination)
	}

	attID := added[0].(map[string]interface{})["id"].(string)
	w = testutil.DoRequest(env.router, "PUT", "/api/v1/attachments/"+attID+"/rename?new_name=renamed.txt", nil, env.token)
	if w.Code != http.StatusOK {
		t.Fatalf("rename: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	renamed := dataMap(t, testutil.ParseResponse(w))
	if renamed["file_name"] != "renamed.txt" || renamed["version"] != float64(2) {
		t.Fatalf("unexpected rename result %v", renamed)
	}

	w = testutil.DoRequest(env.router, "PUT", "/api/v1/attachments/"+attID+"/rename", nil, env.token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("rename without name: expected 400, got %d", w.Code)
	}
}

func TestAttachmentHandler_UploadWithoutFiles(t *testing.T) {
	env := setupRequisitionTest(t)
	id := createRequisition(t, env, map[string]interface{}{})

	w := testutil.DoMultipart(env.router, "POST", "/api/v1/requisitions/"+id+"/upload", "files", nil, map[string]string{"note": "x"}, env.token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}

	w = testutil.DoMultipart(env.router, "POST", "/api/v1/requisitions/missing/upload", "file", map[string]string{"a.txt": "a"}, nil, env.token)
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown requisition: expected 404, got %d", w.Code)
	}
}

func TestAttachmentHandler_DownloadViewDelete(t *testing.T) {
	env := setupRequisitionTest(t)
	id := createRequisition(t, env, map[string]interface{}{})
	added := uploadFiles(t, env, id, map[string]string{"quote.txt": "the quote"})
	att := added[0].(map[string]interface{})
	attID := att["id"].(string)

	w := testutil.DoRequest(env.router, "GET", "/api/v1/attachments/"+attID+"/download", nil, env.token)
	if w.Code != http.StatusOK || w.Body.String() != "the quote" {
		t.Fatalf("download: %d %q", w.Code, w.Body.String())
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.HasPrefix(cd, "attachment;") {
		t.Fatalf("unexpected disposition %q", cd)
	}

	w = testutil.DoRequest(env.router, "GET", "/api/v1/attachments/"+attID+"/view", nil, env.token)
	if cd := w.Header().Get("Content-Disposition"); !strings.HasPrefix(cd, "inline;") {
		t.Fatalf("unexpected disposition %q", cd)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("unexpected content type %q", ct)
	}

	w = testutil.DoRequest(env.router, "DELETE", "/api/v1/attachments/"+attID, nil, env.token)
	if w.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", w.Code)
	}
	if env.store.Has(att["file_path"].(string)) {
		t.Fatal("stored file should be removed")
	}

	w = testutil.DoRequest(env.router, "GET", "/api/v1/attachments/"+attID+"/download", nil, env.token)
	if w.Code != http.StatusNotFound {
		t.Fatalf("download after delete: expected 404, got %d", w.Code)
	}
}

func TestSignatureHandler(t *testing.T) {
	env := setupRequisitionTest(t)

	w := testutil.DoMultipart(env.router, "POST", "/api/v1/signatures", "file",
		map[string]string{"md.png": "sig"}, map[string]string{"email": "md@example.com"}, env.token)
	if w.Code != http.StatusCreated {
		t.Fatalf("upload signature: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	sigID := dataMap(t, testutil.ParseResponse(w))["id"].(string)

	w = testutil.DoMultipart(env.router, "POST", "/api/v1/signatures", "file",
		map[string]string{"md.png": "sig"}, map[string]string{"email": "md@example.com"}, env.token)
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate signature: expected 409, got %d", w.Code)
	}

	w = testutil.DoRequest(env.router, "GET", "/api/v1/signatures/email/md@example.com", nil, env.token)
	if w.Code != http.StatusOK || dataMap(t, testutil.ParseResponse(w))["id"] != sigID {
		t.Fatalf("get by email: %d %s", w.Code, w.Body.String())
	}

	w = testutil.DoRequest(env.router, "DELETE", "/api/v1/signatures/"+sigID, nil, env.token)
	if w.Code != http.StatusOK {
		t.Fatalf("delete signature: expected 200, got %d", w.Code)
	}

	w = testutil.DoRequest(env.router, "GET", "/api/v1/signatures", nil, env.token)
	if w.Code != http.StatusNotFound {
		t.Fatalf("empty signature list: expected 404, got %d", w.Code)
	}
}
