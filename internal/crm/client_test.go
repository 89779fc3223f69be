package crm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"

	"github.com/mmmuzammal/framer-outseta-webhook/internal/apperror"
	"github.com/mmmuzammal/framer-outseta-webhook/internal/model"
)

type recordedRequest struct {
	Path    string
	Auth    string
	Payload map[string]any
}

func newMockOutseta(t *testing.T, status int, respBody string) (*httptest.Server, *[]recordedRequest) {
	t.Helper()
	var requests []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		_ = json.NewDecoder(r.Body).Decode(&payload)
		requests = append(requests, recordedRequest{
			Path:    r.URL.Path,
			Auth:    r.Header.Get("Authorization"),
			Payload: payload,
		})
		w.WriteHeader(status)
		_, _ = w.Write([]byte(respBody))
	}))
	t.Cleanup(srv.Close)
	return srv, &requests
}

func TestCreatePerson(t *testing.T) {
	srv, requests := newMockOutseta(t, http.StatusOK, `{"Uid":"p1","Email":"a@b.com"}`)
	c := NewClient(srv.URL, "key", "secret", zaptest.NewLogger(t))

	person := PersonFromSubmission(model.Submission{
		FirstName: "A",
		LastName:  "B",
		Email:     "a@b.com",
		Phone:     "+49301234",
		Message:   "call me",
		Custom:    map[string]string{"company": "ACME"},
	})
	resp, err := c.CreatePerson(context.Background(), person)

	assert.NoError(t, err)
	assert.Equal(t, "p1", resp["Uid"])

	assert.Len(t, *requests, 1)
	req := (*requests)[0]
	assert.Equal(t, "/people", req.Path)
	assert.Equal(t, "Outseta key:secret", req.Auth)
	assert.Equal(t, "a@b.com", req.Payload["Email"])
	assert.Equal(t, "A", req.Payload["FirstName"])
	assert.Equal(t, "B", req.Payload["LastName"])
	assert.Equal(t, "+49301234", req.Payload["PhoneMobile"])
	assert.Equal(t, "call me", req.Payload["Note"])
	assert.Equal(t, "ACME", req.Payload["company"])
}

func TestAddSubscriber(t *testing.T) {
	srv, requests := newMockOutseta(t, http.StatusOK, `{}`)
	c := NewClient(srv.URL, "key", "secret", zaptest.NewLogger(t))

	_, err := c.AddSubscriber(context.Background(), "list-1", Person{Email: "a@b.com", FirstName: "A"})

	assert.NoError(t, err)
	assert.Equal(t, "/marketing/lists/list-1/subscribers", (*requests)[0].Path)
	assert.Equal(t, "a@b.com", (*requests)[0].Payload["Email"])
}

func TestCreateAccountAndSubscription(t *testing.T) {
	srv, requests := newMockOutseta(t, http.StatusOK, `{"Uid":"x"}`)
	c := NewClient(srv.URL, "key", "secret", zaptest.NewLogger(t))

	_, err := c.CreateAccount(context.Background(), "A B", "p1")
	assert.NoError(t, err)
	_, err = c.CreateSubscription(context.Background(), "acc1", "plan-base", "Monthly")
	assert.NoError(t, err)

	assert.Equal(t, "/accounts", (*requests)[0].Path)
	assert.Equal(t, "A B", (*requests)[0].Payload["Name"])
	assert.Equal(t, "p1", (*requests)[0].Payload["PrimaryContactUid"])

	assert.Equal(t, "/billing/subscriptions", (*requests)[1].Path)
	assert.Equal(t, "acc1", (*requests)[1].Payload["AccountUid"])
	assert.Equal(t, "plan-base", (*requests)[1].Payload["PlanUid"])
	assert.Equal(t, "Monthly", (*requests)[1].Payload["BillingFrequency"])
}

func TestCreateTicket(t *testing.T) {
	srv, requests := newMockOutseta(t, http.StatusOK, `{}`)
	c := NewClient(srv.URL, "key", "secret", zaptest.NewLogger(t))

	_, err := c.CreateTicket(context.Background(), "New contact from a@b.com", "hello", "p1")

	assert.NoError(t, err)
	assert.Equal(t, "/support/tickets", (*requests)[0].Path)
	assert.Equal(t, "New contact from a@b.com", (*requests)[0].Payload["Title"])
	assert.Equal(t, "hello", (*requests)[0].Payload["Body"])
	assert.Equal(t, "p1", (*requests)[0].Payload["PersonUid"])
}

func TestPost_NonJSONResponseWrappedUnderRaw(t *testing.T) {
	srv, _ := newMockOutseta(t, http.StatusOK, "OK")
	c := NewClient(srv.URL, "key", "secret", zaptest.NewLogger(t))

	resp, err := c.CreatePerson(context.Background(), Person{Email: "a@b.com"})

	assert.NoError(t, err)
	assert.Equal(t, "OK", resp["raw"])
}

func TestPost_Non2xxReturnsUpstreamError(t *testing.T) {
	srv, _ := newMockOutseta(t, http.StatusUnprocessableEntity, `{"Message":"bad email"}`)
	c := NewClient(srv.URL, "key", "secret", zaptest.NewLogger(t))

	_, err := c.CreatePerson(context.Background(), Person{Email: "nope"})

	var upstream *apperror.UpstreamError
	assert.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusUnprocessableEntity, upstream.Status)
	assert.Equal(t, "/people", upstream.Endpoint)
	assert.Contains(t, upstream.Body, "bad email")
}

func TestPost_NetworkFailureReturnsUpstreamError(t *testing.T) {
	srv, _ := newMockOutseta(t, http.StatusOK, `{}`)
	srv.Close()
	c := NewClient(srv.URL, "key", "secret", zaptest.NewLogger(t))

	_, err := c.CreatePerson(context.Background(), Person{Email: "a@b.com"})

	var upstream *apperror.UpstreamError
	assert.True(t, errors.As(err, &upstream))
	assert.Equal(t, 0, upstream.Status)
}
