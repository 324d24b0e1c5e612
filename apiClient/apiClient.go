// Package apiclient to provide methods to send HTTP requests
// to the product catalog service.
package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

const (
	// DefaultCatalogURL is the default endpoint listing catalog products.
	DefaultCatalogURL = "https://dummyjson.com/products?limit=100"
)

var errHTTPUnexpectedStatusCode = errors.New("unexpected http status code")
var errHTTPBasePathFormatting = errors.New("error formatting HTTP base path")
var errHTTPBodyUnmarshall = errors.New("errror unmarshalling HTTP response body")
var errHTTPCatalogAPI = errors.New("error returned from catalog api")

// APIClient manages the endpoints of the catalog API.
type APIClient struct {
	// a pointer to the http client to use.
	HTTPClient *http.Client
	// the url of the product listing.
	BasePath *url.URL
}

// HTTPUnexpectedStatusCodeError is a error wrapper.
func HTTPUnexpectedStatusCodeError(statusCode int) error {
	return fmt.Errorf("%w, %d", errHTTPUnexpectedStatusCode, statusCode)
}

func HTTPBasePathFormattingError(basePath string) error {
	return fmt.Errorf("%w, %s", errHTTPBasePathFormatting, basePath)
}

func HTTPBodyUnmarshallError(baseErr error) error {
	return fmt.Errorf("%w, %w", errHTTPBodyUnmarshall, baseErr)
}

func HTTPCatalogAPIError(errorMsg string) error {
	return fmt.Errorf("%w, %s", errHTTPCatalogAPI, errorMsg)
}

// NewAPIClient creates a new APIClient.
func NewAPIClient(httpClient *http.Client, basePath string) (*APIClient, error) {
	// Use a default http client if none is provided.
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	basePathURL, err := url.Parse(basePath)
	if err != nil || basePathURL.Scheme == "" || basePathURL.Host == "" {
		return nil, HTTPBasePathFormattingError(basePath)
	}

	return &APIClient{
		HTTPClient: httpClient,
		BasePath:   basePathURL,
	}, nil
}

// Product is one product of the catalog listing.
type Product struct {
	ID       int     `json:"id"`
	Title    string  `json:"title"`
	Category string  `json:"category"`
	Brand    *string `json:"brand,omitempty"`
	Rating   float64 `json:"rating"`
}

// ProductsResponse is the body returned by the product listing.
type ProductsResponse struct {
	Products []Product `json:"products"`
	Total    int       `json:"total,omitempty"`
	Skip     int       `json:"skip,omitempty"`
	Limit    int       `json:"limit,omitempty"`
}

// DebugMessageResponse represents a debug message attached to an HTTP response.
type DebugMessageResponse struct {
	Message string `json:"message,omitempty"`
}

// GetProducts sends a GET request to the product listing.
func (c *APIClient) GetProducts(ctx context.Context) (*http.Response, *ProductsResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BasePath.String(), nil)
	if err != nil {
		return nil, nil, fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Add("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return resp, nil, fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	// Handle response based on status code.
	if resp.StatusCode == http.StatusOK {
		return productsResponseUnmarshall(resp)
	} else if resp.StatusCode >= http.StatusBadRequest {
		var debugMsg DebugMessageResponse

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return resp, nil, fmt.Errorf("error reading response body for error: %w", err)
		}

		// Not every error body is JSON.
		if err := json.Unmarshal(body, &debugMsg); err != nil || debugMsg.Message == "" {
			return resp, nil, HTTPUnexpectedStatusCodeError(resp.StatusCode)
		}

		return resp, nil, HTTPCatalogAPIError(debugMsg.Message)
	}

	return resp, nil, HTTPUnexpectedStatusCodeError(resp.StatusCode)
}

// productsResponseUnmarshall reads the http response and unmarshalls the result.
// Return an error if one exists.
func productsResponseUnmarshall(resp *http.Response) (*http.Response, *ProductsResponse, error) {
	var result ProductsResponse

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp, nil, fmt.Errorf("error reading response body: %w", err)
	}

	err = json.Unmarshal(body, &result)
	if err != nil {
		return resp, nil, HTTPBodyUnmarshallError(err)
	}

	return resp, &result, nil
}
