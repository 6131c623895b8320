package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

var errSample = New(KindValidation, "sample", "sample failure")

func TestKindOf_WrappedSentinel(t *testing.T) {
	err := fmt.Errorf("creating card: %w", errSample)

	assert.Equal(t, KindValidation, KindOf(err))
	assert.True(t, errors.Is(err, errSample))
}

func TestKindOf_PlainErrorIsServer(t *testing.T) {
	assert.Equal(t, KindServer, KindOf(errors.New("boom")))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(KindValidation))
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(KindAuthentication))
	assert.Equal(t, http.StatusForbidden, HTTPStatus(KindForbidden))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(KindNotFound))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(KindConflict))
	assert.Equal(t, http.StatusTooManyRequests, HTTPStatus(KindRateLimited))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(KindDecryption))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(KindServer))
}

func TestPublic_HidesServerDetails(t *testing.T) {
	code, msg := Public(Wrap(KindServer, "storage", "insert failed", errors.New("connection reset by peer")))
	assert.Equal(t, "server_error", code)
	assert.Equal(t, "Server error", msg)

	code, msg = Public(fmt.Errorf("outer: %w", errSample))
	assert.Equal(t, "sample", code)
	assert.Equal(t, "sample failure", msg)
}
