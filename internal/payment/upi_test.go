package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func upiGateway(t *testing.T, paymentStatus string) (*httptest.Server, *Request) {
	t.Helper()
	received := &Request{}
	server := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/orders":
				json.NewEncoder(w).Encode(map[string]string{"id": "order_1"})
			case "/payments":
				require.NoError(t, json.NewDecoder(r.Body).Decode(received))
				json.NewEncoder(w).Encode(map[string]string{
					"id":     "pay_1",
					"status": paymentStatus,
				})
			default:
				t.Fatalf("unexpected path %s", r.URL.Path)
			}
		}),
	)
	return server, received
}

func TestUPIChargeCreatesOrderFirst(t *testing.T) {
	server, received := upiGateway(t, "completed")
	defer server.Close()

	client := NewUPIClient(server.URL)
	result, err := client.Charge(context.Background(), Request{
		Amount:   decimal.NewFromInt(2860),
		Currency: "INR",
	})

	require.NoError(t, err)
	assert.Equal(t, "pay_1", result.ProviderPaymentID)
	assert.Equal(t, "completed", result.Status)
	assert.Equal(t, "order_1", received.OrderID)
	assert.Equal(t, "2860", received.Amount.String())
}

func TestUPIChargeReusesGivenOrder(t *testing.T) {
	server, received := upiGateway(t, "completed")
	defer server.Close()

	client := NewUPIClient(server.URL)
	_, err := client.Charge(context.Background(), Request{
		Amount:  decimal.NewFromInt(2860),
		OrderID: "order_existing",
	})

	require.NoError(t, err)
	assert.Equal(t, "order_existing", received.OrderID)
}

func TestUPIChargeCancelled(t *testing.T) {
	server, _ := upiGateway(t, "cancelled")
	defer server.Close()

	client := NewUPIClient(server.URL)
	_, err := client.Charge(context.Background(), Request{Amount: decimal.NewFromInt(100)})

	assert.ErrorIs(t, err, ErrCancelled)
}

func TestUPIChargeGatewayFailure(t *testing.T) {
	server, _ := upiGateway(t, "failed")
	defer server.Close()

	client := NewUPIClient(server.URL)
	_, err := client.Charge(context.Background(), Request{Amount: decimal.NewFromInt(100)})

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCancelled)
}

func TestUPICreateOrderRejectsEmptyID(t *testing.T) {
	server := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]string{"message": "amount required"})
		}),
	)
	defer server.Close()

	client := NewUPIClient(server.URL)
	_, err := client.CreateOrder(context.Background(), Request{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "amount required")
}
