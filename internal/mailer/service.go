package mailer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/modelhub-api/apiserver/internal/mq"
)

// Job kinds carried on the outbound email channel.
const (
	JobVerification    = "verification"
	JobPasswordReset   = "password_reset"
	JobContactResponse = "contact_response"
)

// Job is the envelope published to the email queue. Only the fields
// relevant to the job kind are populated.
type Job struct {
	Kind      string `json:"kind"`
	To        string `json:"to"`
	Code      string `json:"code,omitempty"`
	Token     string `json:"token,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Message   string `json:"message,omitempty"`
	Response  string `json:"response,omitempty"`
}

// Sender delivers a rendered message. Satisfied by SMTPSender.
type Sender interface {
	Send(to, subject, htmlBody string) error
}

// Service dispatches email jobs. When a queue is configured jobs are
// published to the email channel and delivered by RunWorker; otherwise
// they are sent directly on a background goroutine.
type Service struct {
	sender      Sender
	queue       *mq.MQ
	channel     string
	projectName string
	logger      *slog.Logger
}

// NewService constructs the email dispatch service. Pass a nil queue
// for direct in-process delivery.
func NewService(sender Sender, queue *mq.MQ, channel, projectName string, logger *slog.Logger) *Service {
	return &Service{
		sender:      sender,
		queue:       queue,
		channel:     channel,
		projectName: projectName,
		logger:      logger,
	}
}

// SendVerification dispatches an account verification code email.
func (s *Service) SendVerification(ctx context.Context, to, code string) {
	s.dispatch(ctx, Job{Kind: JobVerification, To: to, Code: code})
}

// SendPasswordReset dispatches a password reset token email.
func (s *Service) SendPasswordReset(ctx context.Context, to, token string) {
	s.dispatch(ctx, Job{Kind: JobPasswordReset, To: to, Token: token})
}

// SendContactResponse dispatches an admin response to a contact form
// submission.
func (s *Service) SendContactResponse(ctx context.Context, to, firstName, lastName, message, response string) {
	s.dispatch(ctx, Job{
		Kind:      JobContactResponse,
		To:        to,
		FirstName: firstName,
		LastName:  lastName,
		Message:   message,
		Response:  response,
	})
}

func (s *Service) dispatch(ctx context.Context, job Job) {
	if s.queue == nil {
		go func() {
			if err := s.deliver(job); err != nil {
				s.logger.Error("email delivery failed", "kind", job.Kind, "to", job.To, "error", err)
			}
		}()
		return
	}

	data, err := json.Marshal(job)
	if err != nil {
		s.logger.Error("marshal email job", "kind", job.Kind, "error", err)
		return
	}
	if _, err := s.queue.Publish(ctx, s.channel, data, map[string]string{"kind": job.Kind}); err != nil {
		s.logger.Error("publish email job", "kind", job.Kind, "to", job.To, "error", err)
	}
}

// RunWorker consumes email jobs from the queue and delivers them. It
// blocks until the context is canceled.
func (s *Service) RunWorker(ctx context.Context) error {
	if s.queue == nil {
		<-ctx.Done()
		return nil
	}

	s.logger.Info("email worker started", "channel", s.channel)
	return s.queue.Subscribe(ctx, s.channel, func(ctx context.Context, msg mq.Message) error {
		var job Job
		if err := json.Unmarshal(msg.Data, &job); err != nil {
			// Malformed jobs would redeliver forever; drop them.
			s.logger.Error("drop malformed email job", "message_id", msg.ID, "error", err)
			return nil
		}
		if err := s.deliver(job); err != nil {
			s.logger.Error("email delivery failed", "kind", job.Kind, "to", job.To, "error", err)
			return err
		}
		s.logger.Info("email delivered", "kind", job.Kind, "to", job.To)
		return nil
	})
}

func (s *Service) deliver(job Job) error {
	var (
		subject string
		body    string
		err     error
	)

	switch job.Kind {
	case JobVerification:
		subject = fmt.Sprintf("Account Verification for %s", s.projectName)
		body, err = renderTemplate(verificationTmpl, struct {
			ProjectName string
			Code        string
		}{s.projectName, job.Code})
	case JobPasswordReset:
		subject = fmt.Sprintf("Password Reset for %s", s.projectName)
		body, err = renderTemplate(resetPasswordTmpl, struct {
			ProjectName string
			Token       string
		}{s.projectName, job.Token})
	case JobContactResponse:
		subject = fmt.Sprintf("Response to Your Inquiry - %s", s.projectName)
		body, err = renderTemplate(contactResponseTmpl, struct {
			ProjectName string
			FirstName   string
			LastName    string
			Message     string
			Response    string
		}{s.projectName, job.FirstName, job.LastName, job.Message, job.Response})
	default:
		return fmt.Errorf("unknown email job kind %q", job.Kind)
	}
	if err != nil {
		return err
	}

	return s.sender.Send(job.To, subject, body)
}
