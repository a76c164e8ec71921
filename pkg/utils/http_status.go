package utils

import (
	"errors"
	"net/http"
)

type StatusMapping struct {
	Err    error
	Status int
}

// HTTPStatus returns the status of the first mapping whose error matches err, or 500.
func HTTPStatus(err error, mappings ...StatusMapping) int {
	for _, m := range mappings {
		if errors.Is(err, m.Err) {
			return m.Status
		}
	}

	return http.StatusInternalServerError
}
