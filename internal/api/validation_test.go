package api

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

func TestBindingErrors(t *testing.T) {
	type form struct {
		Email  string `validate:"required,email"`
		Tokens int64  `validate:"gt=0"`
	}

	err := validator.New().Struct(form{Email: "nope", Tokens: -1})
	errs := BindingErrors(err)

	assert.Len(t, errs, 2)
	assert.Equal(t, "Email", errs[0].Field)
	assert.Equal(t, "Email must be a valid email address", errs[0].Message)
	assert.Equal(t, "Tokens must be greater than 0", errs[1].Message)
}

func TestBindingErrors_NonValidationError(t *testing.T) {
	assert.Nil(t, BindingErrors(errors.New("unexpected EOF")))
}
