package foundation

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hydessg/hyde/internal/foundation/errors"
)

func TestValidatorChain_CollectsAllFailures(t *testing.T) {
	chain := NewValidatorChain(NotBlank("name")).
		Add(OneOf("name", []string{"a", "b"}))

	res := chain.Validate("")
	require.False(t, res.Valid)
	require.Len(t, res.Errors, 2)
	require.Equal(t, "required", res.Errors[0].Code)
	require.Equal(t, "one_of", res.Errors[1].Code)

	require.True(t, chain.Validate("a").Valid)
}

func TestAtLeast(t *testing.T) {
	v := AtLeast("depth", 1)
	require.True(t, v(1).Valid)
	res := v(0)
	require.False(t, res.Valid)
	require.Equal(t, "field 'depth': must be at least 1", res.Errors[0].Error())
}

func TestToError(t *testing.T) {
	require.NoError(t, Valid().ToError("ok"))

	err := Invalid(NewFieldError("paths.data", "reserved", "must start with _", "data")).ToError("invalid configuration")
	require.Error(t, err)
	classified, ok := errors.AsClassified(err)
	require.True(t, ok)
	require.Equal(t, errors.CategoryValidation, classified.Category())
	problems, _ := classified.Context().GetString("problems")
	require.Equal(t, "field 'paths.data': must start with _", problems)
}
