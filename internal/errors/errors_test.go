package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"stringcalc/domain/core"
)

func TestMissingElement(t *testing.T) {
	err := MissingElement("lowest_key", "pitch")

	assert.Equal(t, CodeMissingElement, GetCode(err))
	assert.True(t, core.IsMissingElementError(err))
	assert.Equal(t, []string{"lowest_key", "pitch"}, MissingIDs(err))
	assert.Contains(t, err.Error(), "lowest_key, pitch")
}

func TestWrapKeepsCodeAndChain(t *testing.T) {
	wrapped := Wrap(MissingElement("pitch"), "update instrument")

	assert.Equal(t, CodeMissingElement, GetCode(wrapped))
	assert.Equal(t, []string{"pitch"}, MissingIDs(wrapped))
	assert.Contains(t, wrapped.Error(), "update instrument")
}

func TestWrapPlainError(t *testing.T) {
	wrapped := Wrap(stderrors.New("boom"), "context")
	assert.Equal(t, CodeInternalError, GetCode(wrapped))
	assert.Nil(t, Wrap(nil, "context"))
	assert.Nil(t, MissingIDs(wrapped))
}

func TestTransportAndMalformed(t *testing.T) {
	err := TransportError(core.ErrNotConnected)
	assert.Equal(t, CodeTransportError, GetCode(err))
	assert.True(t, core.IsTransportError(err))

	row := MalformedRow("A4", 3)
	assert.Equal(t, CodeMalformedRow, GetCode(row))
	assert.True(t, core.IsMalformedRowError(row))
	assert.Contains(t, row.Error(), `"A4": 3 fields, want 8`)

	empty := EmptyRowKey()
	assert.Equal(t, CodeMalformedRow, GetCode(empty))
	assert.True(t, core.IsMalformedRowError(empty))
}

func TestGetCodeUnknown(t *testing.T) {
	assert.Equal(t, "UNKNOWN", GetCode(stderrors.New("plain")))
	assert.Equal(t, CodeConfigInvalid, GetCode(ConfigInvalid("bad port")))
}
