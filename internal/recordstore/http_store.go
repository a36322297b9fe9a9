package recordstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
)

const productsPath = "/products"

// maxErrorBody bounds how much of an error answer is drained before closing.
const maxErrorBody = 64 << 10

// HTTPStore talks to a REST record store exposing a /products collection.
type HTTPStore struct {
	client  *http.Client
	baseURL string
}

var _ Store = (*HTTPStore)(nil)

// NewHTTPStore creates a store client for baseURL, e.g. http://localhost:3150.
func NewHTTPStore(client *http.Client, baseURL string) *HTTPStore {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPStore{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// List issues GET /products.
func (s *HTTPStore) List(ctx context.Context) ([]Product, error) {
	var products []Product
	if err := s.do(ctx, http.MethodGet, productsPath, nil, &products); err != nil {
		return nil, err
	}
	if products == nil {
		products = []Product{}
	}
	return products, nil
}

// Get issues GET /products/{id}.
func (s *HTTPStore) Get(ctx context.Context, id int) (*Product, error) {
	var product Product
	if err := s.do(ctx, http.MethodGet, itemPath(id), nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// Post issues POST /products with the full product, id included.
func (s *HTTPStore) Post(ctx context.Context, product Product) (*Product, error) {
	var stored Product
	if err := s.do(ctx, http.MethodPost, productsPath, product, &stored); err != nil {
		return nil, err
	}
	return &stored, nil
}

// Patch issues PATCH /products/{id} with the full product.
func (s *HTTPStore) Patch(ctx context.Context, product Product) (*Product, error) {
	var stored Product
	if err := s.do(ctx, http.MethodPatch, itemPath(product.ID), product, &stored); err != nil {
		return nil, err
	}
	return &stored, nil
}

// Delete issues DELETE /products/{id}.
func (s *HTTPStore) Delete(ctx context.Context, id int) error {
	return s.do(ctx, http.MethodDelete, itemPath(id), nil, nil)
}

func itemPath(id int) string {
	return productsPath + "/" + strconv.Itoa(id)
}

// do sends one JSON request and decodes the answer into out when out is not nil.
func (s *HTTPStore) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build %s %s request: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("record store %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Method: method, Path: path, Status: resp.StatusCode}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s %s answer: %w", method, path, err)
	}
	return nil
}
