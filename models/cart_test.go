package models

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

// Zero and negative quantities must pass validation; they are the removal
// path, not invalid input.
func TestUpdateCartQuantityAllowsZeroAndNegative(t *testing.T) {
	validate := validator.New()

	assert.NoError(t, validate.Struct(UpdateCartQuantityRequest{Quantity: 0}))
	assert.NoError(t, validate.Struct(UpdateCartQuantityRequest{Quantity: -1}))
	assert.NoError(t, validate.Struct(UpdateCartQuantityRequest{Quantity: 3}))
}
