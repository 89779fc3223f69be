// Package crm talks to the Outseta API.
package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/mmmuzammal/framer-outseta-webhook/internal/apperror"
	"github.com/mmmuzammal/framer-outseta-webhook/internal/model"
)

// Person is the outbound create/update payload for a contact.
type Person struct {
	Email     string
	FirstName string
	LastName  string
	Phone     string
	Note      string
	Custom    map[string]string
}

// PersonFromSubmission maps the canonical submission onto a Person.
func PersonFromSubmission(sub model.Submission) Person {
	return Person{
		Email:     sub.Email,
		FirstName: sub.FirstName,
		LastName:  sub.LastName,
		Phone:     sub.Phone,
		Note:      sub.Message,
		Custom:    sub.Custom,
	}
}

func (p Person) payload() map[string]any {
	body := map[string]any{
		"Email":     p.Email,
		"FirstName": p.FirstName,
		"LastName":  p.LastName,
	}
	if p.Phone != "" {
		body["PhoneMobile"] = p.Phone
	}
	if p.Note != "" {
		body["Note"] = p.Note
	}
	for k, v := range p.Custom {
		if _, taken := body[k]; !taken {
			body[k] = v
		}
	}
	return body
}

// Client defines the Outseta operations the relay performs. Responses come
// back as the decoded JSON object; bodies that are not JSON objects are
// wrapped as {"raw": <text>} instead of failing.
type Client interface {
	CreatePerson(ctx context.Context, p Person) (map[string]any, error)
	AddSubscriber(ctx context.Context, listUID string, p Person) (map[string]any, error)
	CreateAccount(ctx context.Context, name, personUID string) (map[string]any, error)
	CreateSubscription(ctx context.Context, accountUID, planUID, frequency string) (map[string]any, error)
	CreateTicket(ctx context.Context, title, body, personUID string) (map[string]any, error)
}

type clientImpl struct {
	baseURL   string
	apiKey    string
	apiSecret string
	http      *http.Client
	log       *zap.Logger
}

// NewClient creates a new Outseta client.
func NewClient(baseURL, apiKey, apiSecret string, log *zap.Logger) Client {
	return &clientImpl{
		baseURL:   baseURL,
		apiKey:    apiKey,
		apiSecret: apiSecret,
		http:      &http.Client{},
		log:       log,
	}
}

func (c *clientImpl) CreatePerson(ctx context.Context, p Person) (map[string]any, error) {
	return c.post(ctx, "/people", p.payload())
}

func (c *clientImpl) AddSubscriber(ctx context.Context, listUID string, p Person) (map[string]any, error) {
	path := fmt.Sprintf("/marketing/lists/%s/subscribers", url.PathEscape(listUID))
	return c.post(ctx, path, map[string]any{
		"Email":     p.Email,
		"FirstName": p.FirstName,
		"LastName":  p.LastName,
	})
}

func (c *clientImpl) CreateAccount(ctx context.Context, name, personUID string) (map[string]any, error) {
	return c.post(ctx, "/accounts", map[string]any{
		"Name":              name,
		"PrimaryContactUid": personUID,
	})
}

func (c *clientImpl) CreateSubscription(ctx context.Context, accountUID, planUID, frequency string) (map[string]any, error) {
	return c.post(ctx, "/billing/subscriptions", map[string]any{
		"AccountUid":       accountUID,
		"PlanUid":          planUID,
		"BillingFrequency": frequency,
	})
}

func (c *clientImpl) CreateTicket(ctx context.Context, title, body, personUID string) (map[string]any, error) {
	return c.post(ctx, "/support/tickets", map[string]any{
		"Title":     title,
		"Body":      body,
		"PersonUid": personUID,
	})
}

func (c *clientImpl) post(ctx context.Context, path string, payload map[string]any) (map[string]any, error) {
	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling payload for %s: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(jsonPayload))
	if err != nil {
		return nil, fmt.Errorf("creating request for %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Outseta %s:%s", c.apiKey, c.apiSecret))

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error("outseta request failed", zap.String("path", path), zap.Error(err))
		return nil, &apperror.UpstreamError{Endpoint: path}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.log.Error("outseta response read failed", zap.String("path", path), zap.Error(err))
		return nil, &apperror.UpstreamError{Endpoint: path, Status: resp.StatusCode}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Error("outseta returned non-2xx",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode))
		return nil, &apperror.UpstreamError{
			Endpoint: path,
			Status:   resp.StatusCode,
			Body:     snippet(body),
		}
	}

	var decoded map[string]any
	if err := json.Unmarshal(body, &decoded); err != nil {
		// The API occasionally answers with plain text on success paths.
		return map[string]any{"raw": string(body)}, nil
	}
	return decoded, nil
}

func snippet(body []byte) string {
	const max = 512
	if len(body) > max {
		return string(body[:max])
	}
	return string(body)
}
