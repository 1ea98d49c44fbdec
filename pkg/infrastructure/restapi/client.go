package restapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"storefront/pkg/domain/model"
)

var _ model.AdminRepository = &Client{}

type Config struct {
	BaseURL string
	Timeout time.Duration
	// ReadAttempts bounds how many times an idempotent GET is tried.
	ReadAttempts  uint
	RetryInterval time.Duration
}

// Client talks to the REST data source. Reads are retried with exponential
// backoff; writes are sent exactly once.
type Client struct {
	baseURL       string
	http          *http.Client
	readAttempts  uint
	retryInterval time.Duration
	logger        log.FieldLogger
}

func NewClient(cfg Config, logger log.FieldLogger) *Client {
	if cfg.ReadAttempts == 0 {
		cfg.ReadAttempts = 1
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = backoff.DefaultInitialInterval
	}
	return &Client{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		http:          &http.Client{Timeout: cfg.Timeout},
		readAttempts:  cfg.ReadAttempts,
		retryInterval: cfg.RetryInterval,
		logger:        logger,
	}
}

func (c *Client) ListProducts(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := c.get(ctx, "/products", &products, nil)
	return products, err
}

func (c *Client) ListProductsByCategory(ctx context.Context, categoryID model.ID) ([]model.Product, error) {
	var products []model.Product
	path := "/products?" + url.Values{"categoryId": {string(categoryID)}}.Encode()
	err := c.get(ctx, path, &products, nil)
	return products, err
}

func (c *Client) GetProduct(ctx context.Context, id model.ID) (*model.Product, error) {
	var product model.Product
	if err := c.get(ctx, "/products/"+url.PathEscape(string(id)), &product, model.ErrProductNotFound); err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *Client) ListCategories(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	err := c.get(ctx, "/categories", &categories, nil)
	return categories, err
}

func (c *Client) ListUsers(ctx context.Context) ([]model.AdminUser, error) {
	var users []model.AdminUser
	err := c.get(ctx, "/users", &users, nil)
	return users, err
}

// Ping reports whether the data source answers at all.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/categories", nil, nil, nil)
	return err
}

// newProduct leaves the id out so the data source assigns one.
type newProduct struct {
	model.Product
	ID *model.ID `json:"id,omitempty"`
}

func (c *Client) CreateProduct(ctx context.Context, product model.Product) (*model.Product, error) {
	body := newProduct{Product: product}
	if product.ID != "" {
		body.ID = &product.ID
	}
	var saved model.Product
	if _, err := c.do(ctx, http.MethodPost, "/products", body, &saved, nil); err != nil {
		return nil, err
	}
	return &saved, nil
}

func (c *Client) UpdateProduct(ctx context.Context, id model.ID, product model.Product) (*model.Product, error) {
	product.ID = id
	var saved model.Product
	if _, err := c.do(ctx, http.MethodPut, "/products/"+url.PathEscape(string(id)), product, &saved, model.ErrProductNotFound); err != nil {
		return nil, err
	}
	return &saved, nil
}

func (c *Client) DeleteProduct(ctx context.Context, id model.ID) error {
	_, err := c.do(ctx, http.MethodDelete, "/products/"+url.PathEscape(string(id)), nil, nil, model.ErrProductNotFound)
	return err
}

type newCategory struct {
	model.Category
	ID *model.ID `json:"id,omitempty"`
}

func (c *Client) CreateCategory(ctx context.Context, category model.Category) (*model.Category, error) {
	body := newCategory{Category: category}
	if category.ID != "" {
		body.ID = &category.ID
	}
	var saved model.Category
	if _, err := c.do(ctx, http.MethodPost, "/categories", body, &saved, nil); err != nil {
		return nil, err
	}
	return &saved, nil
}

func (c *Client) DeleteCategory(ctx context.Context, id model.ID) error {
	_, err := c.do(ctx, http.MethodDelete, "/categories/"+url.PathEscape(string(id)), nil, nil, model.ErrCategoryNotFound)
	return err
}

func (c *Client) PatchUser(ctx context.Context, id model.ID, patch model.UserPatch) (*model.AdminUser, error) {
	var saved model.AdminUser
	if _, err := c.do(ctx, http.MethodPatch, "/users/"+url.PathEscape(string(id)), patch, &saved, model.ErrUserNotFound); err != nil {
		return nil, err
	}
	return &saved, nil
}

func (c *Client) DeleteUser(ctx context.Context, id model.ID) error {
	_, err := c.do(ctx, http.MethodDelete, "/users/"+url.PathEscape(string(id)), nil, nil, model.ErrUserNotFound)
	return err
}

// get retries transient failures. Not-found and decode errors end the
// retry loop at once.
func (c *Client) get(ctx context.Context, path string, out any, notFound error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.retryInterval

	attempt := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempt++
		_, err := c.do(ctx, http.MethodGet, path, nil, out, notFound)
		if err == nil {
			return struct{}{}, nil
		}

		var netErr *model.NetworkError
		if !errors.As(err, &netErr) || !netErr.Retryable() {
			return struct{}{}, backoff.Permanent(err)
		}
		c.logger.WithError(err).WithFields(log.Fields{"path": path, "attempt": attempt}).Warn("data source read failed")
		return struct{}{}, err
	}, backoff.WithBackOff(policy), backoff.WithMaxTries(c.readAttempts))

	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		return permanent.Unwrap()
	}
	return err
}

func (c *Client) do(ctx context.Context, method, path string, in, out any, notFound error) (int, error) {
	op := method + " " + path

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return 0, errors.Wrapf(err, "%s: encode request", op)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, errors.Wrapf(err, "%s: build request", op)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, &model.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound && notFound != nil:
		return resp.StatusCode, notFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, &model.NetworkError{Op: op, StatusCode: resp.StatusCode}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, &model.NetworkError{Op: op, Err: err}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return resp.StatusCode, nil
	}
	if err = json.Unmarshal(data, out); err != nil {
		return resp.StatusCode, errors.Wrapf(err, "%s: decode response", op)
	}
	return resp.StatusCode, nil
}
