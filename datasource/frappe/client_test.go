package frappe

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"testing"

	"github.com/c360/docgraph/datasource"
	"github.com/c360/docgraph/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pingHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"message":"ping"}`)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:    "valid minimal",
			config:  Config{BaseURL: "http://localhost:8000"},
			wantErr: false,
		},
		{
			name: "valid with credentials",
			config: Config{
				BaseURL:   "http://erp.example.com",
				APIKey:    "key",
				APISecret: "secret",
			},
			wantErr: false,
		},
		{
			name:    "missing base URL",
			config:  Config{},
			wantErr: true,
		},
		{
			name:    "malformed base URL",
			config:  Config{BaseURL: "http://[::1"},
			wantErr: true,
		},
		{
			name:    "timeout too large",
			config:  Config{BaseURL: "http://localhost:8000", Timeout: 301},
			wantErr: true,
		},
		{
			name:    "negative timeout",
			config:  Config{BaseURL: "http://localhost:8000", Timeout: -1},
			wantErr: true,
		},
		{
			name:    "retry count too large",
			config:  Config{BaseURL: "http://localhost:8000", RetryCount: 11},
			wantErr: true,
		},
		{
			name:    "negative list limit",
			config:  Config{BaseURL: "http://localhost:8000", ListLimit: -1},
			wantErr: true,
		},
		{
			name:    "discovery port out of range",
			config:  Config{BaseURL: "http://localhost:8000", DiscoveryPorts: []int{70000}},
			wantErr: true,
		},
		{
			name:    "key without secret",
			config:  Config{BaseURL: "http://localhost:8000", APIKey: "key"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsInvalid(err), "validation errors should classify as invalid")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "http://localhost:8000", cfg.BaseURL)
	assert.Equal(t, 30, cfg.Timeout)
	assert.Equal(t, 3, cfg.RetryCount)
	assert.Equal(t, 500, cfg.ListLimit)
	assert.Equal(t, []int{8000, 8001, 8080, 9000}, cfg.DiscoveryPorts)
	assert.NoError(t, cfg.Validate())
}

func TestNewClient_InvalidConfig(t *testing.T) {
	_, err := NewClient(Config{})
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}

func TestNewClient_FillsDefaults(t *testing.T) {
	client, err := NewClient(Config{BaseURL: "http://localhost:8000/"})
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000", client.BaseURL(), "trailing slash trimmed")
	assert.Equal(t, DefaultConfig().ListLimit, client.cfg.ListLimit)
	assert.Equal(t, DefaultConfig().Timeout, client.cfg.Timeout)
	assert.Equal(t, DefaultConfig().DiscoveryPorts, client.cfg.DiscoveryPorts)
}

func TestClient_CheckConnection(t *testing.T) {
	server := httptest.NewServer(pingHandler())
	defer server.Close()

	client, err := NewClient(Config{BaseURL: server.URL, Timeout: 5})
	require.NoError(t, err)

	status, err := client.CheckConnection(context.Background())
	require.NoError(t, err)

	assert.True(t, status.Connected)
	assert.Equal(t, "api", status.Method)
	assert.Equal(t, server.URL, status.Detail)
	assert.Equal(t, 1, status.InstancesFound)
}

func TestClient_CheckConnection_PortDiscovery(t *testing.T) {
	server := httptest.NewServer(pingHandler())
	defer server.Close()

	serverURL, err := url.Parse(server.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(serverURL.Port())
	require.NoError(t, err)

	// The configured instance is dead; discovery should adopt the
	// test server's port instead.
	client, err := NewClient(Config{
		BaseURL:        "http://localhost:1",
		Timeout:        5,
		DiscoveryPorts: []int{port},
	})
	require.NoError(t, err)

	status, err := client.CheckConnection(context.Background())
	require.NoError(t, err)

	assert.True(t, status.Connected)
	assert.Equal(t, "api", status.Method)
	assert.Equal(t, 1, status.InstancesFound)
	assert.Equal(t, fmt.Sprintf("http://localhost:%d", port), client.BaseURL())
}

func TestClient_CheckConnection_NoInstance(t *testing.T) {
	client, err := NewClient(Config{
		BaseURL:        "http://localhost:1",
		Timeout:        5,
		DiscoveryPorts: []int{1},
	})
	require.NoError(t, err)

	status, err := client.CheckConnection(context.Background())
	require.NoError(t, err, "an unreachable backend is a status, not an error")

	assert.False(t, status.Connected)
	assert.Empty(t, status.Method)
	assert.Equal(t, 0, status.InstancesFound)
	assert.Contains(t, status.Detail, "no instance reachable")
}

func TestClient_ListTypes(t *testing.T) {
	var mu sync.Mutex
	var gotAuth, gotLimit string

	mux := http.NewServeMux()
	mux.HandleFunc("/api/resource/DocType", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		gotAuth = r.Header.Get("Authorization")
		gotLimit = r.URL.Query().Get("limit_page_length")
		mu.Unlock()
		fmt.Fprint(w, `{"data":[{"name":"Customer"},{"name":""},{"name":"Sales Order"}]}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client, err := NewClient(Config{
		BaseURL:   server.URL,
		APIKey:    "key",
		APISecret: "secret",
		ListLimit: 25,
		Timeout:   5,
	})
	require.NoError(t, err)

	types, err := client.ListTypes(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"Customer", "Sales Order"}, types, "blank names are dropped")

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "token key:secret", gotAuth)
	assert.Equal(t, "25", gotLimit)
}

func TestClient_GetSchema(t *testing.T) {
	var mu sync.Mutex
	var gotPath string

	mux := http.NewServeMux()
	mux.HandleFunc("/api/resource/DocType/", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		gotPath = r.URL.Path
		mu.Unlock()
		fmt.Fprint(w, `{"data":{
			"name": "Sales Order",
			"module": "Selling",
			"custom": 0,
			"is_virtual": 0,
			"is_submittable": 1,
			"has_web_view": 0,
			"fields": [
				{"fieldname": "customer", "fieldtype": "Link", "options": "Customer"},
				{"fieldname": "items", "fieldtype": "Table", "options": "Sales Order Item"},
				{"fieldname": "notes", "fieldtype": "Text"}
			]
		}}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client, err := NewClient(Config{BaseURL: server.URL, Timeout: 5})
	require.NoError(t, err)

	schema, err := client.GetSchema(context.Background(), "Sales Order")
	require.NoError(t, err)

	assert.Equal(t, "Sales Order", schema.Name)
	assert.Equal(t, "Selling", schema.Module)
	assert.False(t, schema.Custom)
	assert.False(t, schema.Virtual)
	assert.True(t, schema.Submittable)
	require.Equal(t, 3, schema.FieldCount())
	assert.Equal(t, datasource.Field{Name: "customer", Kind: datasource.FieldKindLink, Target: "Customer"}, schema.Fields[0])
	assert.Equal(t, datasource.Field{Name: "items", Kind: datasource.FieldKindTable, Target: "Sales Order Item"}, schema.Fields[1])

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "/api/resource/DocType/Sales Order", gotPath)
}

func TestClient_GetSchema_Empty(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/resource/DocType/", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"data":{}}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client, err := NewClient(Config{BaseURL: server.URL, Timeout: 5})
	require.NoError(t, err)

	_, err = client.GetSchema(context.Background(), "Ghost Type")
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrEmptySchema))
	assert.True(t, errors.IsInvalid(err))
}

func TestClient_GetSchema_MissingTypeName(t *testing.T) {
	client, err := NewClient(Config{BaseURL: "http://localhost:1"})
	require.NoError(t, err)

	_, err = client.GetSchema(context.Background(), "")
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}

func TestClient_SampleRecords(t *testing.T) {
	var mu sync.Mutex
	var gotQuery url.Values

	mux := http.NewServeMux()
	mux.HandleFunc("/api/resource/Customer", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		gotQuery = r.URL.Query()
		mu.Unlock()
		fmt.Fprint(w, `{"data":[
			{"name": "CUST-0001", "customer_name": "Acme Corp", "docstatus": 0},
			{"name": "CUST-0002", "customer_name": "Globex", "docstatus": 1}
		]}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client, err := NewClient(Config{BaseURL: server.URL, Timeout: 5})
	require.NoError(t, err)

	records, err := client.SampleRecords(context.Background(), "Customer", 10)
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, "CUST-0001", records[0].Name())
	assert.Equal(t, "Acme Corp", records[0].String("customer_name"))
	assert.Equal(t, 1, records[1].Int("docstatus"))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "10", gotQuery.Get("limit_page_length"))
	assert.Equal(t, `["*"]`, gotQuery.Get("fields"), "full documents are requested")
}

func TestClient_SampleRecords_InvalidLimit(t *testing.T) {
	client, err := NewClient(Config{BaseURL: "http://localhost:1"})
	require.NoError(t, err)

	_, err = client.SampleRecords(context.Background(), "Customer", 0)
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}

func TestClient_ClientErrorNotRetried(t *testing.T) {
	calls := 0
	var mu sync.Mutex

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		mu.Lock()
		calls++
		mu.Unlock()
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer server.Close()

	client, err := NewClient(Config{BaseURL: server.URL, Timeout: 5, RetryCount: 3})
	require.NoError(t, err)

	_, err = client.ListTypes(context.Background())
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrBadStatus))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, calls, "4xx responses must not be retried")
}

func TestClient_ServerErrorRetried(t *testing.T) {
	calls := 0
	var mu sync.Mutex

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		mu.Lock()
		calls++
		current := calls
		mu.Unlock()

		if current < 3 {
			http.Error(w, "temporarily broken", http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, `{"data":[{"name":"Customer"}]}`)
	}))
	defer server.Close()

	client, err := NewClient(Config{BaseURL: server.URL, Timeout: 5, RetryCount: 2})
	require.NoError(t, err)

	types, err := client.ListTypes(context.Background())
	require.NoError(t, err, "request should succeed once the backend recovers")

	assert.Equal(t, []string{"Customer"}, types)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 3, calls)
}
