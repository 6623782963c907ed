package webserver

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	ID   int64  `json:"id,string"`
	Name string `json:"name" validate:"required"`
}

func newContext(body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestJSONSerializer(t *testing.T) {
	c, rec := newContext(`{"id":"1234567890123456789","name":"sumak"}`)
	var s sample
	require.NoError(t, JSONSerializer{}.Deserialize(c, &s))
	assert.Equal(t, int64(1234567890123456789), s.ID)
	assert.Equal(t, "sumak", s.Name)

	require.NoError(t, JSONSerializer{}.Serialize(c, s, ""))
	assert.JSONEq(t, `{"id":"1234567890123456789","name":"sumak"}`, rec.Body.String())
}

func TestJSONSerializerBadBody(t *testing.T) {
	c, _ := newContext(`{"id":`)
	var s sample
	err := JSONSerializer{}.Deserialize(c, &s)
	require.Error(t, err)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestValidator(t *testing.T) {
	v := NewValidator()
	assert.NoError(t, v.Validate(&sample{Name: "kekik"}))
	assert.Error(t, v.Validate(&sample{}))
}
