package utils

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParseWithFallback(t *testing.T) {
	t.Setenv("POS_TEST_VALUE", "set")

	require.Equal(t, "set", ParseWithFallback("POS_TEST_VALUE", "fallback"))
	require.Equal(t, "fallback", ParseWithFallback("POS_TEST_MISSING", "fallback"))
}

func TestHTTPStatus(t *testing.T) {
	errMissing := errors.New("missing")
	errBusy := errors.New("busy")

	mappings := []StatusMapping{
		{Err: errMissing, Status: http.StatusNotFound},
		{Err: errBusy, Status: http.StatusConflict},
	}

	require.Equal(t, http.StatusNotFound, HTTPStatus(fmt.Errorf("wrap: %w", errMissing), mappings...))
	require.Equal(t, http.StatusConflict, HTTPStatus(errBusy, mappings...))
	require.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("other"), mappings...))
}

func TestFormatValidationError(t *testing.T) {
	type input struct {
		Axis  string `validate:"required,oneof=delivery_status payment_status"`
		Money int64  `validate:"gte=0"`
	}

	err := validator.New().Struct(input{Axis: "colour", Money: -1})
	require.Error(t, err)

	errs := FormatValidationError(err)
	require.Equal(t, "axis must be one of [delivery_status payment_status]", errs["axis"])
	require.Equal(t, "money must be greater than or equal to 0", errs["money"])

	require.Equal(t, map[string]string{"request": "boom"}, FormatValidationError(errors.New("boom")))
}

func TestExecuteWithBreaker_OpensAfterFailures(t *testing.T) {
	cb := NewBreaker("test", zap.NewNop())
	failure := errors.New("down")

	for i := 0; i < 5; i++ {
		_, err := ExecuteWithBreaker(cb, func() (int, error) { return 0, failure })
		require.ErrorIs(t, err, failure)
	}

	_, err := ExecuteWithBreaker(cb, func() (int, error) { return 1, nil })
	require.ErrorIs(t, err, gobreaker.ErrOpenState)
}

func TestExecuteWithBreaker_ReturnsValue(t *testing.T) {
	cb := NewBreaker("test", zap.NewNop())

	v, err := ExecuteWithBreaker(cb, func() (string, error) { return "ok", nil })
	require.NoError(t, err)
	require.Equal(t, "ok", v)
}
