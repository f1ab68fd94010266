package utils

import (
	"testing"

	"github.com/akhil-ks/shopnest/models"
	"github.com/stretchr/testify/assert"
)

func validAddress() models.Address {
	return models.Address{
		Line1:      "12 MG Road",
		City:       "Kochi",
		State:      "Kerala",
		Country:    "India",
		PostalCode: "682001",
	}
}

func TestValidateShippingAddressAccepted(t *testing.T) {
	errs := ValidateShippingAddress(validAddress())
	assert.Empty(t, errs)
}

func TestValidateShippingAddressLine2Optional(t *testing.T) {
	addr := validAddress()
	addr.Line2 = ""
	assert.Empty(t, ValidateShippingAddress(addr))
}

func TestValidateShippingAddressRequiredFields(t *testing.T) {
	cases := []struct {
		field  string
		mutate func(*models.Address)
	}{
		{"line1", func(a *models.Address) { a.Line1 = "" }},
		{"city", func(a *models.Address) { a.City = "   " }},
		{"state", func(a *models.Address) { a.State = "" }},
		{"country", func(a *models.Address) { a.Country = "\t" }},
		{"postal_code", func(a *models.Address) { a.PostalCode = "" }},
	}
	for _, tc := range cases {
		addr := validAddress()
		tc.mutate(&addr)
		errs := ValidateShippingAddress(addr)
		if assert.Len(t, errs, 1, tc.field) {
			assert.Equal(t, tc.field, errs[0].Field)
		}
	}
}

func TestValidateShippingAddressPostalCodeFormat(t *testing.T) {
	addr := validAddress()
	addr.PostalCode = "68-2001"
	errs := ValidateShippingAddress(addr)
	if assert.Len(t, errs, 1) {
		assert.Equal(t, "postal_code", errs[0].Field)
	}
}

func TestValidateShippingAddressCollectsAllErrors(t *testing.T) {
	errs := ValidateShippingAddress(models.Address{})
	assert.Len(t, errs, 5)
	assert.Contains(t, errs.Error(), "line1")
	assert.Contains(t, errs.Error(), "postal_code")
}

func TestValidateQuantity(t *testing.T) {
	assert.NoError(t, ValidateQuantity(1))
	assert.Error(t, ValidateQuantity(0))
	assert.Error(t, ValidateQuantity(-3))
}
