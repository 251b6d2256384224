package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wayfarer-travel/wayfarer/internal/crud"
)

func TestServiceErrorStatusMapping(t *testing.T) {
	cases := []struct {
		code crud.Code
		want int
	}{
		{crud.CodeValidation, http.StatusBadRequest},
		{crud.CodeUnauthorized, http.StatusUnauthorized},
		{crud.CodeForbidden, http.StatusForbidden},
		{crud.CodeNotFound, http.StatusNotFound},
		{crud.CodeConflict, http.StatusConflict},
		{crud.CodeInternal, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(string(tc.code), func(t *testing.T) {
			rec := httptest.NewRecorder()
			ServiceError(rec, crud.Errorf(tc.code, "boom"))
			require.Equal(t, tc.want, rec.Code)
			require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		})
	}
}

func TestServiceErrorHidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	ServiceError(rec, crud.Errorf(crud.CodeInternal, "pq: connection refused"))

	var body ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Empty(t, body.Detail)
	require.Equal(t, string(crud.CodeInternal), body.Title)
}

func TestServiceErrorIncludesValidationFields(t *testing.T) {
	rec := httptest.NewRecorder()
	ServiceError(rec, &crud.Error{
		Code:    crud.CodeValidation,
		Message: "invalid input",
		Details: map[string]any{"Title": "required"},
	})

	var body ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "required", body.Fields["Title"])
}

func TestServiceErrorOmitsFieldsForOtherCodes(t *testing.T) {
	rec := httptest.NewRecorder()
	ServiceError(rec, &crud.Error{
		Code:    crud.CodeInternal,
		Message: "internal error",
		Details: map[string]any{"cause": "secret"},
	})

	var body ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Nil(t, body.Fields)
}

func TestDecodeJSONRejectsUnknownFields(t *testing.T) {
	var target struct {
		Name string `json:"name"`
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x","extra":true}`))
	require.Error(t, DecodeJSON(req, &target))

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x"}`))
	require.NoError(t, DecodeJSON(req, &target))
	require.Equal(t, "x", target.Name)
}
