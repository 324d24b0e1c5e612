package apiclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAPIClient(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{name: "valid url", path: DefaultCatalogURL},
		{name: "missing scheme", path: "dummyjson.com/products", wantErr: true},
		{name: "unparseable", path: "http://[::1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewAPIClient(nil, tt.path)
			if tt.wantErr {
				require.ErrorIs(t, err, errHTTPBasePathFormatting)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, client.HTTPClient, "a default http client is set")
		})
	}
}

func TestGetProducts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "100", r.URL.Query().Get("limit"), "the limit query is forwarded")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"products":[
			{"id":101,"title":"Widget","category":"tools","brand":"Acme","rating":4.5},
			{"id":7,"title":"Gadget","category":"toys","rating":3}
		],"total":2,"skip":0,"limit":100}`))
	}))
	defer server.Close()

	client, err := NewAPIClient(server.Client(), server.URL+"/products?limit=100")
	require.NoError(t, err)

	resp, result, err := client.GetProducts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, result.Products, 2)

	first := result.Products[0]
	assert.Equal(t, 101, first.ID)
	assert.Equal(t, "tools", first.Category)
	require.NotNil(t, first.Brand)
	assert.Equal(t, "Acme", *first.Brand)
	assert.Equal(t, 4.5, first.Rating)
	assert.Nil(t, result.Products[1].Brand, "a missing brand decodes as nil")
}

func TestGetProducts_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "api message", status: http.StatusBadRequest, body: `{"message":"bad limit"}`, wantErr: errHTTPCatalogAPI},
		{name: "plain server error", status: http.StatusInternalServerError, body: "oops", wantErr: errHTTPUnexpectedStatusCode},
		{name: "no content", status: http.StatusNoContent, body: "", wantErr: errHTTPUnexpectedStatusCode},
		{name: "malformed body", status: http.StatusOK, body: `{"products":`, wantErr: errHTTPBodyUnmarshall},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client, err := NewAPIClient(server.Client(), server.URL)
			require.NoError(t, err)

			_, _, err = client.GetProducts(context.Background())
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestGetProducts_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client, err := NewAPIClient(nil, url)
	require.NoError(t, err)

	_, _, err = client.GetProducts(context.Background())
	assert.Error(t, err, "a closed server is an error")
}
