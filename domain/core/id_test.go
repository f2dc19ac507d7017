package core

import (
	"errors"
	"testing"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 10000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}

	if len(ids) != numIDs {
		t.Errorf("Expected %d unique IDs, got %d", numIDs, len(ids))
	}
}

// TestIDShort tests the log-friendly suffix
func TestIDShort(t *testing.T) {
	if got := ID("abc").Short(); got != "abc" {
		t.Errorf("Expected 'abc', got '%s'", got)
	}
	if got := ID("0190e0c2-7f3a-7d4e-9a51-1234abcd5678").Short(); got != "abcd5678" {
		t.Errorf("Expected 'abcd5678', got '%s'", got)
	}
}

// TestErrorHelpers tests that constructed errors keep their sentinel
func TestErrorHelpers(t *testing.T) {
	if !IsMissingElementError(NewMissingElementError("pitch", "lowest_key")) {
		t.Error("Expected missing element error to match ErrMissingElement")
	}
	if !IsMalformedRowError(NewMalformedRowError("A4", 3, 8)) {
		t.Error("Expected malformed row error to match ErrMalformedRow")
	}
	if !IsTransportError(NewTransportError("emit", errors.New("broken pipe"))) {
		t.Error("Expected transport error to match ErrTransport")
	}
	if !IsTransportError(ErrNotConnected) {
		t.Error("Expected ErrNotConnected to be a transport error")
	}
	if IsTransportError(ErrMalformedRow) {
		t.Error("Did not expect ErrMalformedRow to be a transport error")
	}
}
