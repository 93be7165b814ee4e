package httpserver

import (
	"bytes"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

type pushEntityRequest struct {
	Host string `json:"host" validate:"required,max=255"`
	ID   string `json:"id,omitempty" validate:"omitempty,max=255"`
}

func TestDecode_RejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest("POST", "/entities/push", bytes.NewBufferString(`{"host":"example.com","bogus":1}`))
	var dst pushEntityRequest
	err := Decode(req, &dst)
	require.Error(t, err)
}

func TestDecode_RejectsTrailingData(t *testing.T) {
	req := httptest.NewRequest("POST", "/entities/push", bytes.NewBufferString(`{"host":"example.com"}{"host":"other.com"}`))
	var dst pushEntityRequest
	err := Decode(req, &dst)
	require.Error(t, err)
}

func TestValidate_RequiredField(t *testing.T) {
	errs := Validate(&pushEntityRequest{})
	require.NotEmpty(t, errs)
	require.Equal(t, "host", errs[0].Field)
}

func TestValidate_PassesValidInput(t *testing.T) {
	errs := Validate(&pushEntityRequest{Host: "example.com"})
	require.Empty(t, errs)
}
