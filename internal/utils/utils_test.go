package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWriteJSON(t *testing.T) {
	t.Run("sets content-type and status", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteJSON(w, http.StatusOK, map[string]string{"key": "value"})

		if got := w.Header().Get("Content-Type"); got != "application/json; charset=utf-8" {
			t.Errorf("Content-Type = %q; want application/json; charset=utf-8", got)
		}
		if w.Code != http.StatusOK {
			t.Errorf("Code = %d; want %d", w.Code, http.StatusOK)
		}
	})

	t.Run("encodes body as JSON", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteJSON(w, http.StatusCreated, map[string]float64{"temperature": 21.5})

		var got map[string]float64
		if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
			t.Fatalf("body is not valid JSON: %v", err)
		}
		if got["temperature"] != 21.5 {
			t.Errorf("body[temperature] = %v; want 21.5", got["temperature"])
		}
	})
}

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()
	status := http.StatusBadRequest
	WriteError(w, status, "invalid input")

	if w.Code != status {
		t.Errorf("Code = %d; want %d", w.Code, status)
	}
	var got map[string]any
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("body is not valid JSON: %v", err)
	}
	if got["error"] != http.StatusText(status) {
		t.Errorf("error = %q; want %q", got["error"], http.StatusText(status))
	}
	if got["message"] != "invalid input" {
		t.Errorf("message = %q; want invalid input", got["message"])
	}
}

func TestWriteErrorMessage(t *testing.T) {
	w := httptest.NewRecorder()
	WriteErrorMessage(w, http.StatusNotFound, "No data available")

	if w.Code != http.StatusNotFound {
		t.Errorf("Code = %d; want %d", w.Code, http.StatusNotFound)
	}

	var got map[string]any
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("body is not valid JSON: %v", err)
	}
	if len(got) != 1 || got["error"] != "No data available" {
		t.Errorf("body = %v; want only error=No data available", got)
	}
}

func TestWriteStatus(t *testing.T) {
	w := httptest.NewRecorder()
	WriteStatus(w, http.StatusCreated, "Data saved")

	if w.Code != http.StatusCreated {
		t.Errorf("Code = %d; want %d", w.Code, http.StatusCreated)
	}
	var got map[string]string
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("body is not valid JSON: %v", err)
	}
	if got["status"] != "success" || got["message"] != "Data saved" {
		t.Errorf("body = %v", got)
	}
}
