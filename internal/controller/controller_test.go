package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandookluxe/storefront/internal/cart"
	"github.com/sandookluxe/storefront/internal/checkout"
	"github.com/sandookluxe/storefront/internal/payment"
	"github.com/sandookluxe/storefront/internal/pricing"
	"github.com/sandookluxe/storefront/internal/product"
	"github.com/sandookluxe/storefront/internal/storage"
)

type providerFunc func(c context.Context, req payment.Request) (payment.Result, error)

func (f providerFunc) Charge(c context.Context, req payment.Request) (payment.Result, error) {
	return f(c, req)
}

func newTestServer(t *testing.T, providers map[payment.Method]payment.Provider) *httptest.Server {
	t.Helper()

	directory, err := product.NewEmbeddedDirectory()
	require.NoError(t, err)

	policy := pricing.DefaultPolicy()
	carts := cart.NewManager(storage.NewMemory(), 30*time.Minute)
	flows := checkout.NewManager(policy, providers, "INR", time.Second, 30*time.Minute)

	router := mux.NewRouter()
	AttachProductController(router, directory)
	AttachCartController(router, carts, directory, policy)
	AttachCheckoutController(router, carts, flows)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func newSessionClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func doJSON(
	t *testing.T,
	client *http.Client,
	method, url string,
	body interface{},
) (int, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Buffer
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewBuffer(payload)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	decoded := map[string]interface{}{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp.StatusCode, decoded
}

func data(t *testing.T, body map[string]interface{}) map[string]interface{} {
	t.Helper()
	d, ok := body["data"].(map[string]interface{})
	require.True(t, ok, "response has no data object: %v", body)
	return d
}

func TestProductEndpoints(t *testing.T) {
	server := newTestServer(t, nil)
	client := newSessionClient(t)

	status, body := doJSON(t, client, http.MethodGet, server.URL+"/products", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, data(t, body)["products"], 8)

	status, body = doJSON(t, client, http.MethodGet, server.URL+"/products/4", nil)
	require.Equal(t, http.StatusOK, status)
	found := data(t, body)["product"].(map[string]interface{})
	assert.Equal(t, "Solitaire Diamond Ring", found["name"])

	status, _ = doJSON(t, client, http.MethodGet, server.URL+"/products/999", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, body = doJSON(
		t,
		client,
		http.MethodGet,
		server.URL+"/products/category/necklaces",
		nil,
	)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, data(t, body)["products"], 2)

	status, body = doJSON(t, client, http.MethodGet, server.URL+"/products/search?q=jhumka", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, data(t, body)["products"], 1)
}

func TestCartEndpoints(t *testing.T) {
	server := newTestServer(t, nil)
	client := newSessionClient(t)

	status, body := doJSON(
		t,
		client,
		http.MethodPost,
		server.URL+"/cart/items",
		map[string]int64{"productId": 1},
	)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, data(t, body)["itemCount"])

	status, body = doJSON(
		t,
		client,
		http.MethodPost,
		server.URL+"/cart/items",
		map[string]int64{"productId": 1},
	)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 2, data(t, body)["itemCount"])
	assert.Len(t, data(t, body)["items"], 1)

	status, _ = doJSON(
		t,
		client,
		http.MethodPost,
		server.URL+"/cart/items",
		map[string]int64{"productId": 999},
	)
	assert.Equal(t, http.StatusNotFound, status)

	status, body = doJSON(
		t,
		client,
		http.MethodPut,
		server.URL+"/cart/items/1",
		map[string]int64{"quantity": 5},
	)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 5, data(t, body)["itemCount"])

	status, body = doJSON(t, client, http.MethodGet, server.URL+"/cart", nil)
	require.Equal(t, http.StatusOK, status)
	quote := data(t, body)["quote"].(map[string]interface{})
	// 5 x 48500 clears the free shipping threshold
	assert.Equal(t, "0", quote["shipping"])

	status, body = doJSON(
		t,
		client,
		http.MethodPut,
		server.URL+"/cart/items/1",
		map[string]int64{"quantity": 0},
	)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 0, data(t, body)["itemCount"])
}

func TestCartIsScopedPerSession(t *testing.T) {
	server := newTestServer(t, nil)
	first := newSessionClient(t)
	second := newSessionClient(t)

	status, _ := doJSON(
		t,
		first,
		http.MethodPost,
		server.URL+"/cart/items",
		map[string]int64{"productId": 1},
	)
	require.Equal(t, http.StatusOK, status)

	status, body := doJSON(t, second, http.MethodGet, server.URL+"/cart", nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 0, data(t, body)["itemCount"])
}

func TestCheckoutRejectsEmptyCart(t *testing.T) {
	server := newTestServer(t, nil)
	client := newSessionClient(t)

	status, body := doJSON(t, client, http.MethodPost, server.URL+"/checkout", nil)

	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "/cart", body["redirect"])
}

func TestCheckoutHappyPath(t *testing.T) {
	providers := map[payment.Method]payment.Provider{
		payment.MethodCard: providerFunc(
			func(context.Context, payment.Request) (payment.Result, error) {
				return payment.Result{ProviderPaymentID: "ch_1", Status: "succeeded"}, nil
			},
		),
	}
	server := newTestServer(t, providers)
	client := newSessionClient(t)

	status, _ := doJSON(
		t,
		client,
		http.MethodPost,
		server.URL+"/cart/items",
		map[string]int64{"productId": 2},
	)
	require.Equal(t, http.StatusOK, status)

	status, body := doJSON(t, client, http.MethodPost, server.URL+"/checkout", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "shipping", data(t, body)["step"])

	status, body = doJSON(
		t,
		client,
		http.MethodPost,
		server.URL+"/checkout/shipping",
		map[string]string{
			"firstName": "Meera",
			"lastName":  "Iyer",
			"email":     "meera@example.com",
			"phone":     "+919876543210",
			"address":   "14 Temple Street",
			"city":      "Chennai",
			"state":     "Tamil Nadu",
			"pincode":   "600004",
			"country":   "India",
		},
	)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "payment", data(t, body)["step"])

	status, body = doJSON(
		t,
		client,
		http.MethodPost,
		server.URL+"/checkout/payment",
		map[string]string{
			"method":     "card",
			"nameOnCard": "Meera Iyer",
			"cardNumber": "4242424242424242",
			"expiryDate": "12/27",
			"cvv":        "123",
		},
	)
	require.Equal(t, http.StatusOK, status)
	order := data(t, body)["order"].(map[string]interface{})
	assert.Equal(t, "confirmed", order["status"])
	assert.Equal(t, "card", order["paymentMethod"])

	status, body = doJSON(t, client, http.MethodGet, server.URL+"/cart", nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 0, data(t, body)["itemCount"])

	// completed flow is dropped; a fresh checkout would be required
	status, _ = doJSON(t, client, http.MethodGet, server.URL+"/checkout", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestCheckoutPaymentFailureKeepsCart(t *testing.T) {
	providers := map[payment.Method]payment.Provider{
		payment.MethodUPI: providerFunc(
			func(context.Context, payment.Request) (payment.Result, error) {
				return payment.Result{}, payment.ErrCancelled
			},
		),
	}
	server := newTestServer(t, providers)
	client := newSessionClient(t)

	status, _ := doJSON(
		t,
		client,
		http.MethodPost,
		server.URL+"/cart/items",
		map[string]int64{"productId": 2},
	)
	require.Equal(t, http.StatusOK, status)

	status, _ = doJSON(t, client, http.MethodPost, server.URL+"/checkout", nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = doJSON(
		t,
		client,
		http.MethodPost,
		server.URL+"/checkout/shipping",
		map[string]string{
			"firstName": "Meera",
			"lastName":  "Iyer",
			"email":     "meera@example.com",
			"phone":     "+919876543210",
			"address":   "14 Temple Street",
			"city":      "Chennai",
			"state":     "Tamil Nadu",
			"pincode":   "600004",
		},
	)
	require.Equal(t, http.StatusOK, status)

	status, body := doJSON(
		t,
		client,
		http.MethodPost,
		server.URL+"/checkout/payment",
		map[string]string{"method": "upi"},
	)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, true, body["retryable"])

	status, body = doJSON(t, client, http.MethodGet, server.URL+"/cart", nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, data(t, body)["itemCount"])

	status, body = doJSON(t, client, http.MethodGet, server.URL+"/checkout", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "payment", data(t, body)["step"])
}

func TestCheckoutBackTransition(t *testing.T) {
	server := newTestServer(t, nil)
	client := newSessionClient(t)

	status, _ := doJSON(
		t,
		client,
		http.MethodPost,
		server.URL+"/cart/items",
		map[string]int64{"productId": 3},
	)
	require.Equal(t, http.StatusOK, status)

	status, _ = doJSON(t, client, http.MethodPost, server.URL+"/checkout", nil)
	require.Equal(t, http.StatusOK, status)

	// back is only valid from the payment step
	status, _ = doJSON(t, client, http.MethodPost, server.URL+"/checkout/back", nil)
	assert.Equal(t, http.StatusConflict, status)

	status, _ = doJSON(
		t,
		client,
		http.MethodPost,
		server.URL+"/checkout/shipping",
		map[string]string{
			"firstName": "Meera",
			"lastName":  "Iyer",
			"email":     "meera@example.com",
			"phone":     "+919876543210",
			"address":   "14 Temple Street",
			"city":      "Chennai",
			"state":     "Tamil Nadu",
			"pincode":   "600004",
		},
	)
	require.Equal(t, http.StatusOK, status)

	status, body := doJSON(t, client, http.MethodPost, server.URL+"/checkout/back", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "shipping", data(t, body)["step"])
	shipping := data(t, body)["shipping"].(map[string]interface{})
	assert.Equal(t, "meera@example.com", shipping["email"])
}
