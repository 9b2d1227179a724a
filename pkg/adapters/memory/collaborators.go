package memory

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/internal/logging"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/domain"
)

// SubmissionStore keeps payloads in memory, deduplicated by submission id.
type SubmissionStore struct {
	mu       sync.Mutex
	payloads []domain.Payload
	index    map[string]int
}

// NewSubmissionStore creates an empty SubmissionStore.
func NewSubmissionStore() *SubmissionStore {
	return &SubmissionStore{index: make(map[string]int)}
}

// Store records the payload. A retry with the same submission id replaces the earlier record.
func (s *SubmissionStore) Store(ctx context.Context, p domain.Payload) (domain.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return domain.Receipt{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	p.Answers = p.Answers.Clone()
	if i, ok := s.index[p.SubmissionID]; ok {
		s.payloads[i] = p
		return domain.Receipt{ID: p.SubmissionID, Message: "updated"}, nil
	}
	s.index[p.SubmissionID] = len(s.payloads)
	s.payloads = append(s.payloads, p)
	return domain.Receipt{ID: p.SubmissionID, Message: "stored"}, nil
}

// Payloads returns the stored payloads in arrival order.
func (s *SubmissionStore) Payloads() []domain.Payload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.payloads)
}

// Notification is one message captured by Notifier.
type Notification struct {
	Recipient       string
	FlowType        string
	Contact         domain.Contact
	Recommendations []domain.Candidate
}

// Notifier implements both notification ports by logging and recording the
// messages instead of delivering them. It is the default for local runs.
type Notifier struct {
	Operator string

	mu     sync.Mutex
	sent   []Notification
	logger *slog.Logger
}

// NewNotifier creates a Notifier that reports operator messages as sent to operator.
func NewNotifier(operator string, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Notifier{Operator: operator, logger: logger}
}

// NotifyOperator records the operator notification.
func (n *Notifier) NotifyOperator(ctx context.Context, c domain.Contact, flowType string) error {
	n.logger.Info("operator notification", "to", n.Operator, "flow", flowType, "respondent", c.Name)
	n.record(Notification{Recipient: n.Operator, FlowType: flowType, Contact: c})
	return nil
}

// NotifyRespondent records the respondent confirmation.
func (n *Notifier) NotifyRespondent(ctx context.Context, c domain.Contact, recs []domain.Candidate) error {
	n.logger.Info("respondent confirmation", "to", c.Email, "recommendations", len(recs))
	n.record(Notification{Recipient: c.Email, Contact: c, Recommendations: slices.Clone(recs)})
	return nil
}

// Sent returns the recorded notifications.
func (n *Notifier) Sent() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return slices.Clone(n.sent)
}

func (n *Notifier) record(msg Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
}
