package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuplicateKeyError(t *testing.T) {
	err := NewDuplicateKeyError("epic", []string{"FID=7 SSR=3", "FID=9 SSR=1"})

	assert.Contains(t, err.Error(), "epic")
	assert.Contains(t, err.Error(), "FID=7 SSR=3")
	assert.True(t, stderrors.Is(err, ErrDuplicateKey))
	assert.True(t, IsDuplicateKey(err))
	assert.False(t, IsNotFound(err))
}

func TestSpecNotFoundError(t *testing.T) {
	err := NewSpecNotFoundError([]string{"enct.sex", "lab.crp"})

	assert.Contains(t, err.Error(), "enct.sex")
	assert.Contains(t, err.Error(), "lab.crp")
	assert.True(t, stderrors.Is(err, ErrSpecNotFound))
}

func TestConfigError(t *testing.T) {
	inner := New("bad mapping")
	err := NewConfigError("fieldspec", "mapping table malformed", inner)

	assert.Contains(t, err.Error(), "fieldspec")
	assert.True(t, IsConfigError(err))
	assert.True(t, stderrors.Is(err, inner))
}

func TestConfigErrorWithoutComponent(t *testing.T) {
	err := NewConfigError("", "something broke", nil)
	assert.Equal(t, "configuration error: something broke", err.Error())
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("top_n", -1, "must be positive")

	assert.Contains(t, err.Error(), "top_n")
	assert.True(t, IsValidationError(err))
}

func TestIOError(t *testing.T) {
	inner := New("permission denied")
	err := NewIOError("read", "/data/export.csv", inner)

	require.Contains(t, err.Error(), "/data/export.csv")
	assert.True(t, stderrors.Is(err, inner))
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, "context"))

	inner := New("boom")
	wrapped := Wrap(inner, "loading catalog")
	assert.Equal(t, "loading catalog: boom", wrapped.Error())
	assert.True(t, stderrors.Is(wrapped, inner))

	wrappedf := Wrapf(inner, "loading %s", "catalog")
	assert.Equal(t, "loading catalog: boom", wrappedf.Error())
}
