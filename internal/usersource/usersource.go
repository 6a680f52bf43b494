// Package usersource fetches the user collection from the remote placeholder
// API. The whole collection comes back from a single GET; no paging or
// authentication parameters are sent.
package usersource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/patric-chuzhbe/useradmin/internal/models"
)

var (
	// ErrUnexpectedStatus is returned for any non-2xx response.
	ErrUnexpectedStatus = errors.New("unexpected response status")

	// ErrMalformedPayload is returned when the body is not a JSON array of users.
	ErrMalformedPayload = errors.New("malformed users payload")
)

// Source is a resty-backed client of the remote users endpoint.
type Source struct {
	client *resty.Client
	url    string
}

type InitOption func(*initOptions)

type initOptions struct {
	timeout time.Duration
	client  *resty.Client
}

// WithTimeout bounds every fetch. Zero keeps the default of no timeout.
func WithTimeout(timeout time.Duration) InitOption {
	return func(options *initOptions) {
		options.timeout = timeout
	}
}

// WithClient replaces the underlying resty client.
func WithClient(client *resty.Client) InitOption {
	return func(options *initOptions) {
		options.client = client
	}
}

func New(url string, optionsProto ...InitOption) *Source {
	options := &initOptions{
		timeout: 0,
		client:  nil,
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	client := options.client
	if client == nil {
		client = resty.New()
	}
	client.SetHeader("Accept", "application/json")
	if options.timeout > 0 {
		client.SetTimeout(options.timeout)
	}

	return &Source{
		client: client,
		url:    url,
	}
}

// URL returns the endpoint the source reads from.
func (s *Source) URL() string {
	return s.url
}

// FetchUsers downloads the full collection. The returned slice is never nil
// on success.
func (s *Source) FetchUsers(ctx context.Context) ([]models.User, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		Get(s.url)
	if err != nil {
		return nil, fmt.Errorf("fetching users: %w", err)
	}

	if !resp.IsSuccess() {
		return nil, fmt.Errorf(
			"%w: request failed with status code %d",
			ErrUnexpectedStatus,
			resp.StatusCode(),
		)
	}

	users := []models.User{}
	if err := json.Unmarshal(resp.Body(), &users); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if users == nil {
		users = []models.User{}
	}

	return users, nil
}
