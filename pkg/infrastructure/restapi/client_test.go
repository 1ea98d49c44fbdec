package restapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/pkg/domain/model"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	logger, _ := test.NewNullLogger()
	return NewClient(Config{
		BaseURL:       srv.URL + "/",
		Timeout:       time.Second,
		ReadAttempts:  3,
		RetryInterval: time.Millisecond,
	}, logger)
}

func TestClientReads(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/products":
			if r.URL.Query().Get("categoryId") == "2" {
				_, _ = io.WriteString(w, `[{"id":"b1","categoryId":"2","name":"Wool Beanie","price":499}]`)
				return
			}
			_, _ = io.WriteString(w, `[{"id":1,"categoryId":1,"name":"Trucker Cap","price":799},{"id":"b1","categoryId":"2","name":"Wool Beanie","price":499}]`)
		case "/products/1":
			_, _ = io.WriteString(w, `{"id":1,"name":"Trucker Cap","price":799,"colors":["black"]}`)
		case "/categories":
			_, _ = io.WriteString(w, `[{"id":1,"name":"Caps"}]`)
		case "/users":
			_, _ = io.WriteString(w, `[{"id":"u1","email":"asha@example.com","purchaseHistory":[{"total":"10"}]}]`)
		default:
			http.NotFound(w, r)
		}
	})
	ctx := context.Background()

	t.Run("Products decode numeric and string ids", func(t *testing.T) {
		products, err := client.ListProducts(ctx)
		require.NoError(t, err)
		require.Len(t, products, 2)
		assert.Equal(t, model.ID("1"), products[0].ID)
		assert.Equal(t, model.ID("1"), products[0].CategoryID)
		assert.Equal(t, model.ID("b1"), products[1].ID)
	})

	t.Run("By category", func(t *testing.T) {
		products, err := client.ListProductsByCategory(ctx, "2")
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, "Wool Beanie", products[0].Name)
	})

	t.Run("Single product", func(t *testing.T) {
		product, err := client.GetProduct(ctx, "1")
		require.NoError(t, err)
		assert.Equal(t, []string{"black"}, product.Colors)
	})

	t.Run("Missing product", func(t *testing.T) {
		_, err := client.GetProduct(ctx, "404")
		assert.ErrorIs(t, err, model.ErrProductNotFound)
	})

	t.Run("Categories and users", func(t *testing.T) {
		categories, err := client.ListCategories(ctx)
		require.NoError(t, err)
		assert.Equal(t, []model.Category{{ID: "1", Name: "Caps"}}, categories)

		users, err := client.ListUsers(ctx)
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Len(t, users[0].PurchaseHistory, 1)
	})

	t.Run("Ping", func(t *testing.T) {
		assert.NoError(t, client.Ping(ctx))
	})
}

func TestClientRetries(t *testing.T) {
	t.Run("Transient failures are retried", func(t *testing.T) {
		var calls atomic.Int32
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			_, _ = io.WriteString(w, `[]`)
		})

		_, err := client.ListCategories(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("Attempts are bounded", func(t *testing.T) {
		var calls atomic.Int32
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusBadGateway)
		})

		_, err := client.ListProducts(context.Background())
		var netErr *model.NetworkError
		require.ErrorAs(t, err, &netErr)
		assert.Equal(t, http.StatusBadGateway, netErr.StatusCode)
		assert.True(t, netErr.Retryable())
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("Client errors are not retried", func(t *testing.T) {
		var calls atomic.Int32
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusBadRequest)
		})

		_, err := client.ListUsers(context.Background())
		var netErr *model.NetworkError
		require.ErrorAs(t, err, &netErr)
		assert.False(t, netErr.Retryable())
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("Not found is not retried", func(t *testing.T) {
		var calls atomic.Int32
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			http.NotFound(w, r)
		})

		_, err := client.GetProduct(context.Background(), "9")
		assert.ErrorIs(t, err, model.ErrProductNotFound)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("Writes are sent once", func(t *testing.T) {
		var calls atomic.Int32
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusServiceUnavailable)
		})

		_, err := client.CreateProduct(context.Background(), model.Product{Name: "Visor"})
		var netErr *model.NetworkError
		require.ErrorAs(t, err, &netErr)
		assert.Equal(t, int32(1), calls.Load())
	})
}

func TestClientTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	logger, _ := test.NewNullLogger()
	client := NewClient(Config{BaseURL: srv.URL, Timeout: 20 * time.Millisecond, ReadAttempts: 1}, logger)

	_, err := client.ListCategories(context.Background())
	var netErr *model.NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Zero(t, netErr.StatusCode)
	assert.True(t, netErr.Retryable())
}

func TestClientWrites(t *testing.T) {
	var got struct {
		method string
		path   string
		body   map[string]any
	}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got.method, got.path = r.Method, r.URL.Path
		got.body = nil
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&got.body)
		}
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/products":
			_, _ = io.WriteString(w, `{"id":42,"name":"Visor","price":299}`)
		case r.Method == http.MethodPut:
			_, _ = io.WriteString(w, `{"id":5,"name":"Renamed"}`)
		case r.Method == http.MethodPatch && r.URL.Path == "/users/u1":
			_, _ = io.WriteString(w, `{"id":"u1","firstName":"Ashwini","email":"asha@example.com"}`)
		case r.Method == http.MethodPost && r.URL.Path == "/categories":
			_, _ = io.WriteString(w, `{"id":"c9","name":"Visors"}`)
		case r.Method == http.MethodDelete && r.URL.Path == "/users/404":
			http.NotFound(w, r)
		case r.Method == http.MethodDelete:
			w.WriteHeader(http.StatusOK)
		}
	})
	ctx := context.Background()

	t.Run("Create leaves the id to the data source", func(t *testing.T) {
		saved, err := client.CreateProduct(ctx, model.Product{Name: "Visor", Price: 299})
		require.NoError(t, err)
		assert.Equal(t, model.ID("42"), saved.ID)
		assert.Equal(t, http.MethodPost, got.method)
		assert.NotContains(t, got.body, "id")
		assert.Equal(t, "Visor", got.body["name"])
	})

	t.Run("Update", func(t *testing.T) {
		saved, err := client.UpdateProduct(ctx, "5", model.Product{Name: "Renamed"})
		require.NoError(t, err)
		assert.Equal(t, "Renamed", saved.Name)
		assert.Equal(t, "/products/5", got.path)
		assert.Equal(t, 5.0, got.body["id"])
	})

	t.Run("Patch sends only set fields", func(t *testing.T) {
		first := "Ashwini"
		saved, err := client.PatchUser(ctx, "u1", model.UserPatch{FirstName: &first})
		require.NoError(t, err)
		assert.Equal(t, "Ashwini", saved.FirstName)
		assert.Equal(t, map[string]any{"firstName": "Ashwini"}, got.body)
	})

	t.Run("Category create and delete", func(t *testing.T) {
		saved, err := client.CreateCategory(ctx, model.Category{Name: "Visors"})
		require.NoError(t, err)
		assert.Equal(t, model.ID("c9"), saved.ID)
		require.NoError(t, client.DeleteCategory(ctx, saved.ID))
		assert.Equal(t, "/categories/c9", got.path)
	})

	t.Run("Deletes", func(t *testing.T) {
		require.NoError(t, client.DeleteProduct(ctx, "5"))
		assert.Equal(t, http.MethodDelete, got.method)
		assert.ErrorIs(t, client.DeleteUser(ctx, "404"), model.ErrUserNotFound)
	})
}
