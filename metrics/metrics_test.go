package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddlewareRecordsRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.GET("/api/files/:fileId", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/api/files/:fileId", "204"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/files/abc", nil))

	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/api/files/:fileId", "204"))
	if after-before != 1 {
		t.Fatalf("expected one request recorded, got %v", after-before)
	}
}

func TestRecordObjectStoreOperationStatus(t *testing.T) {
	okBefore := testutil.ToFloat64(objectStoreOperations.WithLabelValues("delete", "success"))
	errBefore := testutil.ToFloat64(objectStoreOperations.WithLabelValues("delete", "error"))

	RecordObjectStoreOperation("delete", time.Millisecond, true)
	RecordObjectStoreOperation("delete", time.Millisecond, false)
	RecordObjectStoreOperation("delete", time.Millisecond, false)

	if got := testutil.ToFloat64(objectStoreOperations.WithLabelValues("delete", "success")) - okBefore; got != 1 {
		t.Fatalf("expected 1 success, got %v", got)
	}
	if got := testutil.ToFloat64(objectStoreOperations.WithLabelValues("delete", "error")) - errBefore; got != 2 {
		t.Fatalf("expected 2 errors, got %v", got)
	}
}

func TestHandlerServesExposition(t *testing.T) {
	RecordTrashPurged(3)

	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "cloudify_trash_purged_items_total") {
		t.Fatalf("expected trash counter in exposition")
	}
}
