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

func TestCardChargeSuccess(t *testing.T) {
	var received Request
	server := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "/charges", r.URL.Path)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
			json.NewEncoder(w).Encode(map[string]string{
				"id":     "ch_1",
				"status": "succeeded",
			})
		}),
	)
	defer server.Close()

	client := NewCardClient(server.URL)
	result, err := client.Charge(context.Background(), Request{
		Amount:   decimal.NewFromInt(12300),
		Currency: "INR",
		Customer: Customer{FirstName: "Meera", Email: "meera@example.com"},
	})

	require.NoError(t, err)
	assert.Equal(t, "ch_1", result.ProviderPaymentID)
	assert.Equal(t, "succeeded", result.Status)
	assert.Equal(t, "12300", received.Amount.String())
	assert.Equal(t, "INR", received.Currency)
}

func TestCardChargeDeclined(t *testing.T) {
	server := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusPaymentRequired)
			json.NewEncoder(w).Encode(map[string]string{
				"status":  "failed",
				"message": "card declined",
			})
		}),
	)
	defer server.Close()

	client := NewCardClient(server.URL)
	_, err := client.Charge(context.Background(), Request{Amount: decimal.NewFromInt(100)})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "card declined")
}

func TestCardChargeUnreachableGateway(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close()

	client := NewCardClient(server.URL)
	_, err := client.Charge(context.Background(), Request{Amount: decimal.NewFromInt(100)})

	require.Error(t, err)
}
