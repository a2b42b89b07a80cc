package metrics

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestResult(t *testing.T) {
	if Result(nil) != ResultOK {
		t.Error("nil error should be ok")
	}
	if Result(errors.New("x")) != ResultError {
		t.Error("non-nil error should be error")
	}
}

func TestHandlerExposesCollectors(t *testing.T) {
	before := testutil.ToFloat64(Renders)
	Renders.Inc()
	if got := testutil.ToFloat64(Renders); got != before+1 {
		t.Fatalf("Renders = %v, want %v", got, before+1)
	}

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "pagelayout_renders_total") {
		t.Error("renders counter missing from exposition")
	}
}
