package apierr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{ErrInvalid("x"), http.StatusBadRequest},
		{ErrInvalidState("x"), http.StatusBadRequest},
		{ErrNotFound("x"), http.StatusNotFound},
		{ErrForbidden("x"), http.StatusForbidden},
		{ErrUnauthorized("x"), http.StatusUnauthorized},
		{ErrConflict("x"), http.StatusConflict},
		{ErrInternal("x"), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ToHTTPStatus(c.err), c.err.Error())
	}
}

func TestCodeOfWrappedError(t *testing.T) {
	err := fmt.Errorf("fetch rental: %w", ErrNotFound("rental not found"))
	assert.Equal(t, CodeNotFound, CodeOf(err))
	assert.Equal(t, http.StatusNotFound, ToHTTPStatus(err))
}

func TestBodyEnvelope(t *testing.T) {
	raw, err := json.Marshal(BodyFrom(ErrConflict("product already booked")))
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":{"code":"CONFLICT","message":"product already booked"}}`, string(raw))
}
