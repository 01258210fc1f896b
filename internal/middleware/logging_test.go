package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLoggerPassesRequestThrough(t *testing.T) {
	var gotMethod string
	handler := Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"a7c4"}`))
	}))

	req := httptest.NewRequest(http.MethodPost, "/admin/api/products", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if gotMethod != http.MethodPost {
		t.Errorf("method: got %q, want POST", gotMethod)
	}
	if rr.Code != http.StatusCreated {
		t.Errorf("status: got %d, want 201", rr.Code)
	}
	if rr.Body.String() != `{"id":"a7c4"}` {
		t.Errorf("body: got %q", rr.Body.String())
	}
}

func TestResponseWriterStatusCapture(t *testing.T) {
	t.Run("explicit WriteHeader wins", func(t *testing.T) {
		rw := &responseWriter{ResponseWriter: httptest.NewRecorder(), statusCode: http.StatusOK}
		rw.WriteHeader(http.StatusNotFound)
		rw.WriteHeader(http.StatusInternalServerError) // ignored, first write wins
		rw.Write([]byte(`{"error":"Product not found."}`))

		if rw.statusCode != http.StatusNotFound {
			t.Errorf("statusCode: got %d, want 404", rw.statusCode)
		}
	})

	t.Run("bare Write defaults to 200", func(t *testing.T) {
		rw := &responseWriter{ResponseWriter: httptest.NewRecorder(), statusCode: http.StatusOK}
		n, err := rw.Write([]byte(`{"data":[]}`))
		if err != nil {
			t.Fatalf("Write: %v", err)
		}
		if n != len(`{"data":[]}`) {
			t.Errorf("wrote %d bytes", n)
		}
		if rw.statusCode != http.StatusOK || !rw.written {
			t.Errorf("statusCode=%d written=%v, want 200/true", rw.statusCode, rw.written)
		}
	})
}

// flushRecorder counts Flush calls, standing in for the real connection
// behind an event stream response.
type flushRecorder struct {
	*httptest.ResponseRecorder
	flushes int
}

func (f *flushRecorder) Flush() { f.flushes++ }

func TestLoggerPreservesFlusher(t *testing.T) {
	handler := Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			t.Fatal("wrapped writer lost http.Flusher")
		}
		w.Write([]byte("event: catalog\ndata: {}\n\n"))
		flusher.Flush()
	}))

	rec := &flushRecorder{ResponseRecorder: httptest.NewRecorder()}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/events/products", nil)
	handler.ServeHTTP(rec, req)

	if rec.flushes == 0 {
		t.Error("Flush never reached the underlying writer")
	}
}
