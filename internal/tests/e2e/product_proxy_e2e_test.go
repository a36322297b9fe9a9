// Package e2e provides end-to-end tests for the product proxy.
// The suite uses `testcontainers-go` to run a json-server container as the real record store,
// and `testify/suite` for lifecycle management (`SetupSuite`, `TearDownSuite`, `SetupTest`).
//
// Key features of the test suite:
//   - A json-server container is started with testdata/db.json as its database.
//   - The actual application handler is run in an `httptest.Server`.
//   - Before each test the products collection is reset to the seed records.
//   - Test coverage includes:
//   - Happy path CRUD operations against /product.
//   - Count based id assignment on create.
//   - Partial updates, including zero values.
//   - Status mapping for absent ids and invalid bodies.
package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/abgdnv/productproxy/internal/app"
	"github.com/abgdnv/productproxy/internal/recordstore"
	"github.com/abgdnv/productproxy/internal/service"
	"github.com/abgdnv/productproxy/pkg/bootstrap"
	"github.com/abgdnv/productproxy/pkg/config"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// skipE2ETests is the environment variable that can be set to skip E2E tests.
const skipE2ETests = "PRODUCT_SKIP_E2E_TESTS"

// productURL is the base URL of the product resource.
const productURL = "/product"

var seedProducts = []recordstore.Product{
	{ID: 1, Description: "Holaa", Price: 200, Stock: 1},
	{ID: 2, Description: "Chau", Price: 100, Stock: 30},
}

// ProductProxyE2ESuite is a test suite for end-to-end tests of the product proxy.
type ProductProxyE2ESuite struct {
	suite.Suite                            // Embedding testify's suite for structured testing
	storeContainer testcontainers.Container // json-server container acting as the record store
	store          *recordstore.HTTPStore   // direct client of the record store, used to reset and inspect state
	server         *httptest.Server         // HTTP server for the product proxy
	httpClient     *http.Client             // HTTP client for making requests to the server
	logger         *slog.Logger             // Logger for the test suite
	ctx            context.Context          // Context for the test suite
}

// SetupSuite starts the json-server container and the application under test.
func (s *ProductProxyE2ESuite) SetupSuite() {
	s.ctx = context.Background()
	s.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	wd, _ := os.Getwd()
	dbFile := filepath.Join(wd, "testdata", "db.json")

	// 1. Start json-server with the seed database. Wait until the collection answers.
	var err error
	s.storeContainer, err = testcontainers.GenericContainer(s.ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "clue/json-server:latest",
			ExposedPorts: []string{"80/tcp"},
			Files: []testcontainers.ContainerFile{{
				HostFilePath:      dbFile,
				ContainerFilePath: "/data/db.json",
				FileMode:          0o644,
			}},
			WaitingFor: wait.ForHTTP("/products").WithPort("80/tcp").WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	require.NoError(s.T(), err, "Failed to run json-server container")

	// 2. Build the record store URL
	endpoint, err := s.storeContainer.PortEndpoint(s.ctx, "80/tcp", "http")
	require.NoError(s.T(), err, "Failed to get json-server endpoint")

	// 3. Wire the application against the container
	storeCfg := config.RecordStoreConfig{Mode: config.RecordStoreModeHTTP, URL: endpoint, Timeout: 5 * time.Second}
	store, err := app.NewRecordStore(storeCfg, s.logger)
	require.NoError(s.T(), err, "Failed to create record store")
	deps := app.SetupDependencies(store, nil, nil, s.logger)

	s.store = recordstore.NewHTTPStore(bootstrap.NewStoreClient(storeCfg, s.logger), endpoint)
	s.server = httptest.NewServer(app.SetupHttpHandler(deps))
	s.httpClient = s.server.Client()
	s.logger.Info("E2E test server started", "url", s.server.URL, "recordstore", endpoint)
}

// TearDownSuite cleans up resources after all tests in the suite have run.
func (s *ProductProxyE2ESuite) TearDownSuite() {
	s.logger.Info("Tearing down E2E suite...")
	if s.server != nil {
		s.server.Close()
	}
	if s.storeContainer != nil {
		if err := s.storeContainer.Terminate(s.ctx); err != nil {
			s.logger.Warn("Failed to terminate json-server container", "error", err)
		}
	}
}

// SetupTest resets the record store to the seed products.
func (s *ProductProxyE2ESuite) SetupTest() {
	products, err := s.store.List(s.ctx)
	require.NoError(s.T(), err, "Failed to list products")
	for _, p := range products {
		require.NoError(s.T(), s.store.Delete(s.ctx, p.ID), "Failed to delete product %d", p.ID)
	}
	for _, p := range seedProducts {
		_, err := s.store.Post(s.ctx, p)
		require.NoError(s.T(), err, "Failed to seed product %d", p.ID)
	}
}

func TestProductProxyE2E(t *testing.T) {
	// Skip integration tests if the environment variable is set
	if os.Getenv(skipE2ETests) == "1" {
		t.Skip("Skipping integration tests based on " + skipE2ETests + " env var")
	}
	suite.Run(t, new(ProductProxyE2ESuite))
}

// --------------------------------------------------------------------------
// ---------- Payload structures and Helper methods for E2E tests -----------
// --------------------------------------------------------------------------

// doRequest makes an HTTP request to the proxy.
// Returns the response body as a byte slice and the HTTP status code.
func (s *ProductProxyE2ESuite) doRequest(method, url string, payload any) ([]byte, int) {
	s.T().Helper()
	var body io.Reader
	if payload != nil {
		if raw, ok := payload.(string); ok {
			body = bytes.NewBufferString(raw)
		} else {
			payloadBytes, err := json.Marshal(payload)
			require.NoError(s.T(), err)
			body = bytes.NewBuffer(payloadBytes)
		}
	}

	req, err := http.NewRequestWithContext(s.ctx, method, s.server.URL+url, body)
	require.NoError(s.T(), err, "Failed to create HTTP request")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	require.NoError(s.T(), err, "HTTP request failed")
	defer func() {
		require.NoError(s.T(), resp.Body.Close(), "Failed to close response body")
	}()

	bodyBytes, err := io.ReadAll(resp.Body)
	require.NoError(s.T(), err, "Failed to read response body")
	return bodyBytes, resp.StatusCode
}

// doAndDecodeProduct makes a request and decodes a ProductDto on success.
func (s *ProductProxyE2ESuite) doAndDecodeProduct(method, url string, payload any) (service.ProductDto, int) {
	s.T().Helper()
	bodyBytes, statusCode := s.doRequest(method, url, payload)
	var product service.ProductDto
	if statusCode == http.StatusOK || statusCode == http.StatusCreated {
		require.NoError(s.T(), json.Unmarshal(bodyBytes, &product), "Failed to decode product response")
	}
	return product, statusCode
}

func itemURL(id int) string {
	return fmt.Sprintf("%s/%d", productURL, id)
}

// --------------------------------------------------------------
// ---------------------- E2E test methods ----------------------
// --------------------------------------------------------------

func (s *ProductProxyE2ESuite) TestFindAll_E2E() {
	// when
	bodyBytes, statusCode := s.doRequest(http.MethodGet, productURL, nil)

	// then
	s.Require().Equal(http.StatusOK, statusCode)
	var products []service.ProductDto
	s.Require().NoError(json.Unmarshal(bodyBytes, &products))
	s.Require().Equal([]service.ProductDto{
		{ID: 1, Description: "Holaa", Price: 200, Stock: 1},
		{ID: 2, Description: "Chau", Price: 100, Stock: 30},
	}, products)
}

func (s *ProductProxyE2ESuite) TestFindByID_E2E() {
	testCases := []struct {
		name         string
		id           int
		expectedCode int
		expected     service.ProductDto
	}{
		{name: "Find Product By ID - Found", id: 2, expectedCode: http.StatusOK, expected: service.ProductDto{ID: 2, Description: "Chau", Price: 100, Stock: 30}},
		{name: "Find Product By ID - Not Found", id: 1500, expectedCode: http.StatusNotFound},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			// when
			found, statusCode := s.doAndDecodeProduct(http.MethodGet, itemURL(tc.id), nil)
			// then
			s.Require().Equal(tc.expectedCode, statusCode)
			s.Require().Equal(tc.expected, found)
		})
	}
}

func (s *ProductProxyE2ESuite) TestCreate_E2E() {
	// when
	created, statusCode := s.doAndDecodeProduct(http.MethodPost, productURL, `{"description":"X","price":10,"stock":5}`)

	// then
	s.Require().Equal(http.StatusCreated, statusCode)
	expected := service.ProductDto{ID: 3, Description: "X", Price: 10, Stock: 5}
	s.Require().Equal(expected, created)
	stored, err := s.store.Get(s.ctx, 3)
	s.Require().NoError(err)
	s.Require().Equal(recordstore.Product{ID: 3, Description: "X", Price: 10, Stock: 5}, *stored)
}

func (s *ProductProxyE2ESuite) TestCreate_InvalidBody_E2E() {
	testCases := []struct {
		name    string
		payload string
	}{
		{name: "Create Product - Empty Description", payload: `{"description":"","price":10,"stock":5}`},
		{name: "Create Product - Missing Price", payload: `{"description":"X","stock":5}`},
		{name: "Create Product - Malformed JSON", payload: `{"description":`},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			// when
			_, statusCode := s.doRequest(http.MethodPost, productURL, tc.payload)
			// then
			s.Require().Equal(http.StatusBadRequest, statusCode)
			products, err := s.store.List(s.ctx)
			s.Require().NoError(err)
			s.Require().Len(products, len(seedProducts))
		})
	}
}

func (s *ProductProxyE2ESuite) TestUpdate_E2E() {
	testCases := []struct {
		name         string
		id           int
		payload      string
		expectedCode int
		expected     service.ProductDto
	}{
		{
			name:         "Update Product - Price Only",
			id:           1,
			payload:      `{"price":50}`,
			expectedCode: http.StatusOK,
			expected:     service.ProductDto{ID: 1, Description: "Holaa", Price: 50, Stock: 1},
		},
		{
			name:         "Update Product - Zero Stock",
			id:           2,
			payload:      `{"stock":0}`,
			expectedCode: http.StatusOK,
			expected:     service.ProductDto{ID: 2, Description: "Chau", Price: 100, Stock: 0},
		},
		{name: "Update Product - Absent ID", id: 1500, payload: `{"price":50}`, expectedCode: http.StatusBadRequest},
		{name: "Update Product - Null Body", id: 1, payload: `null`, expectedCode: http.StatusBadRequest},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.SetupTest()
			// when
			updated, statusCode := s.doAndDecodeProduct(http.MethodPatch, itemURL(tc.id), tc.payload)
			// then
			s.Require().Equal(tc.expectedCode, statusCode)
			s.Require().Equal(tc.expected, updated)
			if tc.expectedCode == http.StatusOK {
				stored, err := s.store.Get(s.ctx, tc.id)
				s.Require().NoError(err)
				s.Require().Equal(tc.expected.Stock, stored.Stock)
				s.Require().Equal(tc.expected.Price, stored.Price)
			}
		})
	}
}

func (s *ProductProxyE2ESuite) TestDelete_E2E() {
	// when
	removed, statusCode := s.doAndDecodeProduct(http.MethodDelete, itemURL(2), nil)
	_, secondStatus := s.doRequest(http.MethodDelete, itemURL(2), nil)

	// then
	s.Require().Equal(http.StatusOK, statusCode)
	s.Require().Equal(service.ProductDto{ID: 2, Description: "Chau", Price: 100, Stock: 30}, removed)
	s.Require().Equal(http.StatusNotFound, secondStatus)
	_, getStatus := s.doRequest(http.MethodGet, itemURL(2), nil)
	s.Require().Equal(http.StatusNotFound, getStatus)
}
