package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"plain", Input("risk must be a number"), "[INPUT_ERROR] risk must be a number"},
		{"with cause", Parsing("bad analysis file", fmt.Errorf("line 3")), "[PARSING_ERROR] bad analysis file: line 3"},
		{"unit", Unit("furlong"), `[UNIT_ERROR] unknown unit "furlong"`},
		{"not found", NotFound("analysis", "abc"), "[NOT_FOUND] analysis not found: abc"},
		{"not supported", NotSupported("pdf to stdout"), "[NOT_SUPPORTED] operation not supported: pdf to stdout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestIsTypeFollowsWrapping(t *testing.T) {
	base := Config("cannot read config", fmt.Errorf("permission denied"))
	wrapped := fmt.Errorf("startup: %w", base)

	assert.True(t, IsType(wrapped, TypeConfig))
	assert.False(t, IsType(wrapped, TypeInput))
	assert.False(t, IsType(fmt.Errorf("plain"), TypeConfig))
	assert.False(t, IsType(nil, TypeConfig))
}

func TestUnwrapExposesCause(t *testing.T) {
	cause := fmt.Errorf("eof")
	err := Internal("render failed", cause)

	assert.True(t, stderrors.Is(err, cause))
	assert.True(t, err.Is(TypeInternal))
}

func TestUnitCarriesContext(t *testing.T) {
	err := Unit("parsec")
	require.NotNil(t, err.Context)
	assert.Equal(t, "parsec", err.Context["unit"])

	err.WithContext("field", "uut.unit")
	assert.Len(t, err.Context, 2)
}
