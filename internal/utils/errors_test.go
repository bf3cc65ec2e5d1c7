package utils

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorMessages(t *testing.T) {
	plain := NewNotFoundError("question")
	assert.Equal(t, "question not found", plain.Error())

	cause := errors.New("connection refused")
	wrapped := NewQueryFailedError("list questions", cause)
	assert.Equal(t, "query failed: list questions: connection refused", wrapped.Error())
	assert.ErrorIs(t, wrapped, cause)
}

func TestIsErrorCodeThroughWrapping(t *testing.T) {
	err := fmt.Errorf("handling request: %w", NewInvalidSearchTypeError("subreddit"))

	assert.True(t, IsErrorCode(err, ErrInvalidSearchType))
	assert.False(t, IsErrorCode(err, ErrNotFound))
	assert.False(t, IsErrorCode(errors.New("plain"), ErrNotFound))
}

func TestAppErrorToHTTPStatus(t *testing.T) {
	cases := []struct {
		code   string
		status int
	}{
		{ErrNotFound, http.StatusNotFound},
		{ErrInvalidInput, http.StatusBadRequest},
		{ErrInvalidSearchType, http.StatusBadRequest},
		{ErrUnauthorized, http.StatusUnauthorized},
		{ErrUpstream, http.StatusBadGateway},
		{ErrQueryFailed, http.StatusInternalServerError},
		{"SOMETHING_ELSE", http.StatusInternalServerError},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.status, AppErrorToHTTPStatus(tc.code), tc.code)
	}
}

func TestUpstreamErrorNamesTheService(t *testing.T) {
	err := NewUpstreamError("booking", errors.New("status 500"))
	assert.Contains(t, err.Error(), "booking")
	assert.True(t, IsErrorCode(err, ErrUpstream))
}
