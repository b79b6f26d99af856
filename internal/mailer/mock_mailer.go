package mailer

import (
	"sync"
)

// Email is a message captured by MockMailer, rendered from the same
// templates the SMTP mailer uses.
type Email struct {
	Recipient    string
	TemplateFile string
	Data         any
	Subject      string
	PlainBody    string
}

// MockMailer records emails instead of delivering them. A template that
// fails to render makes Send fail, as it would in production.
type MockMailer struct {
	mu      sync.RWMutex
	emails  []Email
	sendErr error
}

func NewMockMailer() *MockMailer {
	return &MockMailer{
		emails: make([]Email, 0),
	}
}

func (m *MockMailer) Send(recipient, templateFile string, data any) error {
	msg, err := Render(recipient, templateFile, data)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sendErr != nil {
		return m.sendErr
	}

	m.emails = append(m.emails, Email{
		Recipient:    recipient,
		TemplateFile: templateFile,
		Data:         data,
		Subject:      msg.Subject,
		PlainBody:    msg.PlainBody,
	})

	return nil
}

// FailWith makes every following Send return err, like an unreachable SMTP
// server. Pass nil to deliver again.
func (m *MockMailer) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sendErr = err
}

func (m *MockMailer) GetSentEmails() []Email {
	m.mu.RLock()
	defer m.mu.RUnlock()

	emails := make([]Email, len(m.emails))
	copy(emails, m.emails)
	return emails
}

// Reset drops recorded emails and clears any injected failure.
func (m *MockMailer) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.emails = make([]Email, 0)
	m.sendErr = nil
}
