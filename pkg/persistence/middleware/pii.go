package middleware

import (
	"context"
	"regexp"

	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/domain"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/ports"
)

// Mask replaces redacted values.
const Mask = "***"

// Contact fields can be targeted with these pseudo keys.
const (
	ContactName  = "contact.name"
	ContactEmail = "contact.email"
	ContactPhone = "contact.phone"
)

type piiMiddleware struct {
	next     ports.SubmissionStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks answers whose key matches one
// of the patterns before the payload reaches the submission store. Contact
// fields are matched as "contact.name", "contact.email" and "contact.phone".
func NewPIIMiddleware(patternStrings []string) SubmissionMiddleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.SubmissionStore) ports.SubmissionStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}
}

func (m *piiMiddleware) Store(ctx context.Context, p domain.Payload) (domain.Receipt, error) {
	// The caller keeps using its payload, so mask a copy.
	p.Answers = p.Answers.Clone()
	p.Contact = m.maskContact(p.Contact)

	for key, v := range p.Answers {
		if v.Kind == domain.KindContact && v.Contact != nil {
			c := m.maskContact(*v.Contact)
			p.Answers[key] = domain.ContactValue(c)
			continue
		}
		if m.matches(key) {
			p.Answers[key] = domain.TextValue(Mask)
		}
	}
	return m.next.Store(ctx, p)
}

func (m *piiMiddleware) maskContact(c domain.Contact) domain.Contact {
	if c.Name != "" && m.matches(ContactName) {
		c.Name = Mask
	}
	if c.Email != "" && m.matches(ContactEmail) {
		c.Email = Mask
	}
	if c.Phone != "" && m.matches(ContactPhone) {
		c.Phone = Mask
	}
	return c
}

func (m *piiMiddleware) matches(key string) bool {
	for _, p := range m.patterns {
		if p.MatchString(key) {
			return true
		}
	}
	return false
}
