// Package relay drives the outbound call sequence for one submission.
package relay

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mmmuzammal/framer-outseta-webhook/internal/config"
	"github.com/mmmuzammal/framer-outseta-webhook/internal/crm"
	"github.com/mmmuzammal/framer-outseta-webhook/internal/model"
)

// DefaultBillingFrequency is used when the submission carries no term.
const DefaultBillingFrequency = "Monthly"

// Service processes one validated submission against the CRM.
type Service interface {
	Process(ctx context.Context, sub model.Submission) (*model.RelayResult, error)
}

type service struct {
	log *zap.Logger
	cfg *config.Config
	crm crm.Client
}

// New creates a new relay Service.
func New(cfg *config.Config, client crm.Client, log *zap.Logger) Service {
	return &service{log: log, cfg: cfg, crm: client}
}

// Process runs the call sequence strictly in order: person, then newsletter,
// then account + subscription, then support ticket. Later steps reference
// identifiers returned by earlier ones, so there is no fan-out. The first
// failure aborts the rest; records already created remotely stay in place.
func (s *service) Process(ctx context.Context, sub model.Submission) (*model.RelayResult, error) {
	person, err := s.crm.CreatePerson(ctx, crm.PersonFromSubmission(sub))
	if err != nil {
		return nil, err
	}
	personUID := uid(person)
	s.log.Info("person created", zap.String("uid", personUID), zap.String("email", sub.Email))

	result := &model.RelayResult{Person: person}

	if sub.Newsletter && s.cfg.NewsletterListUID != "" {
		if _, err := s.crm.AddSubscriber(ctx, s.cfg.NewsletterListUID, crm.PersonFromSubmission(sub)); err != nil {
			return nil, err
		}
		s.log.Info("newsletter subscriber added", zap.String("list", s.cfg.NewsletterListUID))
	}

	if planUID := s.cfg.PlanUIDs[sub.Plan]; planUID != "" {
		account, err := s.crm.CreateAccount(ctx, sub.FullName(), personUID)
		if err != nil {
			return nil, err
		}

		term := sub.Term
		if term == "" {
			term = DefaultBillingFrequency
		}
		subscription, err := s.crm.CreateSubscription(ctx, uid(account), planUID, term)
		if err != nil {
			return nil, err
		}

		s.log.Info("subscription created",
			zap.String("plan", sub.Plan),
			zap.String("account", uid(account)),
			zap.String("frequency", term))
		result.Account = account
		result.Subscription = subscription
	}

	if s.cfg.SupportTickets && sub.FormType != "" {
		title := fmt.Sprintf("New %s from %s", sub.FormType, sub.Email)
		body := sub.Message
		if body == "" {
			body = "Form submission"
		}
		if _, err := s.crm.CreateTicket(ctx, title, body, personUID); err != nil {
			return nil, err
		}
		s.log.Info("support ticket created", zap.String("formType", sub.FormType))
	}

	return result, nil
}

func uid(record map[string]any) string {
	v, _ := record["Uid"].(string)
	return v
}
