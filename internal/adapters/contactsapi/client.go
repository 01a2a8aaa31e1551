package contactsapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"contactmanager/internal/domain"
)

// contactsPath is the collection path of the contacts API. The trailing slash is part of the contract.
const contactsPath = "/api/contacts/"

type httpContactClient struct {
	client  *http.Client
	baseURL string
}

// NewHTTPClient returns a domain.ContactClient that calls the contacts API at baseURL.
// A failed call is never retried.
func NewHTTPClient(client *http.Client, baseURL string) domain.ContactClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &httpContactClient{client: client, baseURL: strings.TrimSuffix(baseURL, "/")}
}

func (c *httpContactClient) ListContacts(ctx context.Context) ([]domain.ContactRecord, error) {
	var out []domain.ContactRecord
	if err := c.do(ctx, "list", http.MethodGet, c.baseURL+contactsPath, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.ContactRecord{}
	}
	return out, nil
}

func (c *httpContactClient) GetContact(ctx context.Context, id string) (domain.ContactRecord, error) {
	var out domain.ContactRecord
	err := c.do(ctx, "get", http.MethodGet, c.contactURL(id), nil, &out)
	return out, err
}

func (c *httpContactClient) CreateContact(ctx context.Context, fields domain.ContactFields) (domain.ContactRecord, error) {
	var out domain.ContactRecord
	err := c.do(ctx, "create", http.MethodPost, c.baseURL+contactsPath, fields, &out)
	return out, err
}

func (c *httpContactClient) UpdateContact(ctx context.Context, id string, fields domain.ContactFields) (domain.ContactRecord, error) {
	var out domain.ContactRecord
	err := c.do(ctx, "update", http.MethodPut, c.contactURL(id), fields, &out)
	return out, err
}

func (c *httpContactClient) DeleteContact(ctx context.Context, id string) error {
	return c.do(ctx, "delete", http.MethodDelete, c.contactURL(id), nil, nil)
}

func (c *httpContactClient) contactURL(id string) string {
	return c.baseURL + contactsPath + url.PathEscape(id)
}

// do sends one request. body is JSON-encoded when non-nil; the response is decoded into out when non-nil.
func (c *httpContactClient) do(ctx context.Context, op, method, target string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode %s request: %w", op, err)
		}
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return &domain.RemoteError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))
		return &domain.RemoteError{Op: op, StatusCode: resp.StatusCode}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &domain.RemoteError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}
