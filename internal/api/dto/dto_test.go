package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/spec-kit/shop-service/pkg/util/errorutil"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	short := "abc"
	empty := ""
	negative := -0.5
	tests := []struct {
		name    string
		payload any
		fields  []string
	}{
		{name: "valid login", payload: &LoginRequest{Email: "a@b.co", Password: "x"}},
		{name: "login missing fields", payload: &LoginRequest{}, fields: []string{"email", "password"}},
		{name: "bad email", payload: &UserRegisterRequest{Name: "A", Email: "nope", Password: "secret1"}, fields: []string{"email"}},
		{name: "optional short password", payload: &UserUpdateRequest{Password: &short}, fields: []string{"password"}},
		{name: "empty update", payload: &UserUpdateRequest{}},
		{name: "present but empty user fields", payload: &UserUpdateRequest{Name: &empty, Email: &empty, Password: &empty}, fields: []string{"name", "email", "password"}},
		{name: "present but empty product name", payload: &ProductUpdateRequest{Name: &empty, CategoryID: &empty}, fields: []string{"name", "category"}},
		{name: "negative product price update", payload: &ProductUpdateRequest{Price: &negative}, fields: []string{"price"}},
		{name: "empty product description is allowed", payload: &ProductUpdateRequest{Description: &empty}},
		{name: "product category must be an id", payload: &ProductCreateRequest{Name: "Lamp", CategoryID: "x"}, fields: []string{"category"}},
		{name: "negative price", payload: &ProductCreateRequest{Name: "Lamp", Price: -1, CategoryID: "6f1c1f7e-4c1a-4c55-9c1b-0c6b1f1f1f1f"}, fields: []string{"price"}},
		{name: "order status", payload: &OrderStatusRequest{Status: "shipped"}, fields: []string{"status"}},
		{name: "order status with space", payload: &OrderStatusRequest{Status: "is paid"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := Validate(tt.payload)
			if len(tt.fields) == 0 {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			de := apperrors.ToDomainError(err)
			assert.Equal(t, apperrors.CodeValidation, de.Code)
			for _, f := range tt.fields {
				assert.Contains(t, de.Details, f)
			}
		})
	}
}
