package submission

import (
	"testing"

	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestValidateContact(t *testing.T) {
	tests := []struct {
		name    string
		contact domain.Contact
		fields  []string
	}{
		{"valid", domain.Contact{Name: "Jo", Email: "jo@example.com", Phone: "5551234567"}, nil},
		{"formatted phone", domain.Contact{Name: "Jo", Email: "jo@example.co.uk", Phone: "+1 (555) 123-4567"}, nil},
		{"empty", domain.Contact{}, []string{"name", "email", "phone"}},
		{"blank name", domain.Contact{Name: "  ", Email: "jo@example.com", Phone: "5551234567"}, []string{"name"}},
		{"bad email", domain.Contact{Name: "Jo", Email: "bad", Phone: "5551234567"}, []string{"email"}},
		{"email without tld", domain.Contact{Name: "Jo", Email: "jo@example", Phone: "5551234567"}, []string{"email"}},
		{"email with space", domain.Contact{Name: "Jo", Email: "j o@example.com", Phone: "5551234567"}, []string{"email"}},
		{"short phone", domain.Contact{Name: "Jo", Email: "jo@example.com", Phone: "555-1234"}, []string{"phone"}},
		{"phone with extension", domain.Contact{Name: "Jo", Email: "jo@example.com", Phone: "+1 555 123 4567 x89"}, nil},
		{"phone with slashes", domain.Contact{Name: "Jo", Email: "jo@example.com", Phone: "555/123/4567"}, nil},
		{"vanity phone", domain.Contact{Name: "Jo", Email: "jo@example.com", Phone: "1-800-FLOWERS"}, []string{"phone"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateContact(tt.contact)
			var fields []string
			for _, e := range errs {
				fields = append(fields, e.Field)
				assert.NotEmpty(t, e.Message)
			}
			assert.Equal(t, tt.fields, fields)
		})
	}
}
