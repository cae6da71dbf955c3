package httpadapter

import (
	"errors"
	"net/http"
	"testing"

	"github.com/kirillkom/docgraph/internal/core/domain"
)

func TestMapErrorToHTTPStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"invalid input", domain.WrapError(domain.ErrInvalidInput, "op", errors.New("x")), http.StatusBadRequest},
		{"project not found", domain.WrapError(domain.ErrProjectNotFound, "op", errors.New("x")), http.StatusNotFound},
		{"document not found", domain.WrapError(domain.ErrDocumentNotFound, "op", errors.New("x")), http.StatusNotFound},
		{"graph not found", domain.WrapError(domain.ErrGraphNotFound, "op", errors.New("x")), http.StatusNotFound},
		{"classification", domain.WrapError(domain.ErrClassification, "op", errors.New("x")), http.StatusBadGateway},
		{"temporary", domain.WrapError(domain.ErrTemporary, "op", errors.New("x")), http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := mapErrorToHTTPStatus(tc.err); got != tc.want {
				t.Fatalf("mapErrorToHTTPStatus() = %d, want %d", got, tc.want)
			}
		})
	}
}
