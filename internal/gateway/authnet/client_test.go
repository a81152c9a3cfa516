package authnet

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardgate.io/app/internal/modules/payments"
)

func TestNew_EnvironmentSelection(t *testing.T) {
	t.Run("sandbox", func(t *testing.T) {
		c, err := New(Config{Environment: EnvSandbox})
		require.NoError(t, err)
		assert.Equal(t, endpoints[EnvSandbox], c.url)
	})

	t.Run("production", func(t *testing.T) {
		c, err := New(Config{Environment: EnvProduction})
		require.NoError(t, err)
		assert.Equal(t, endpoints[EnvProduction], c.url)
	})

	t.Run("unknown environment", func(t *testing.T) {
		_, err := New(Config{Environment: "staging"})
		assert.Error(t, err)
	})

	t.Run("base url override wins", func(t *testing.T) {
		c, err := New(Config{BaseURL: "http://localhost:9999"})
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:9999", c.url)
	})
}

func TestClient_SubmitTransaction(t *testing.T) {
	var captured map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &captured))

		_, _ = w.Write([]byte(`{
			"transactionResponse": {
				"responseCode": "1",
				"transId": "40000123456",
				"messages": [{"code": "1", "description": "This transaction has been approved."}]
			},
			"messages": {
				"resultCode": "Ok",
				"message": [{"code": "I00001", "text": "Successful."}]
			}
		}`))
	}))
	defer srv.Close()

	c, err := New(Config{
		BaseURL:        srv.URL,
		LoginID:        "login-1",
		TransactionKey: "key-1",
	})
	require.NoError(t, err)

	resp, err := c.SubmitTransaction(context.Background(), payments.TransactionRequest{
		Kind:   payments.KindAuthCapture,
		Amount: 100.50,
		Card: &payments.CardDetails{
			Number:   "4111111111111111",
			ExpMonth: 3,
			ExpYear:  2030,
			CVV:      "123",
		},
	})
	require.NoError(t, err)

	assert.True(t, resp.Approved())
	assert.Equal(t, "40000123456", resp.TransID)
	assert.Equal(t, "1", resp.ResponseCode)
	require.Len(t, resp.TxnMessages, 1)
	assert.Equal(t, "This transaction has been approved.", resp.TxnMessages[0].Text)

	envelope := captured["createTransactionRequest"].(map[string]any)
	authPart := envelope["merchantAuthentication"].(map[string]any)
	assert.Equal(t, "login-1", authPart["name"])
	assert.Equal(t, "key-1", authPart["transactionKey"])

	txnPart := envelope["transactionRequest"].(map[string]any)
	assert.Equal(t, payments.KindAuthCapture, txnPart["transactionType"])
	assert.Equal(t, 100.50, txnPart["amount"])

	card := txnPart["payment"].(map[string]any)["creditCard"].(map[string]any)
	assert.Equal(t, "4111111111111111", card["cardNumber"])
	assert.Equal(t, "03-2030", card["expirationDate"], "expiry is MM-YYYY")
}

func TestClient_SubmitTransaction_VoidOmitsAmountAndCard(t *testing.T) {
	var captured map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &captured))
		_, _ = w.Write([]byte(`{"messages": {"resultCode": "Ok", "message": []}, "transactionResponse": {"transId": "1", "messages": [{"code": "1", "description": "ok"}]}}`))
	}))
	defer srv.Close()

	c, err := New(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = c.SubmitTransaction(context.Background(), payments.TransactionRequest{
		Kind:             payments.KindVoid,
		RefTransactionID: "40000123456",
	})
	require.NoError(t, err)

	txnPart := captured["createTransactionRequest"].(map[string]any)["transactionRequest"].(map[string]any)
	_, hasAmount := txnPart["amount"]
	assert.False(t, hasAmount)
	_, hasPayment := txnPart["payment"]
	assert.False(t, hasPayment)
	assert.Equal(t, "40000123456", txnPart["refTransId"])
}

func TestClient_SubmitTransaction_TransportFailures(t *testing.T) {
	t.Run("non-200 status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		c, err := New(Config{BaseURL: srv.URL})
		require.NoError(t, err)

		_, err = c.SubmitTransaction(context.Background(), payments.TransactionRequest{Kind: payments.KindVoid})
		assert.Error(t, err)
	})

	t.Run("unreachable server", func(t *testing.T) {
		c, err := New(Config{BaseURL: "http://127.0.0.1:1"})
		require.NoError(t, err)

		_, err = c.SubmitTransaction(context.Background(), payments.TransactionRequest{Kind: payments.KindVoid})
		assert.Error(t, err)
	})
}
