// Package authnet is the wire adapter for the Authorize.Net-style
// JSON gateway. The orchestrator only sees the payments.Gateway
// interface; everything request/response-shaped lives here.
package authnet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"cardgate.io/app/internal/modules/payments"
)

const (
	EnvSandbox    = "sandbox"
	EnvProduction = "production"
)

var endpoints = map[string]string{
	EnvSandbox:    "https://apitest.authorize.net/xml/v1/request.api",
	EnvProduction: "https://api.authorize.net/xml/v1/request.api",
}

// Config carries the merchant credentials and the environment
// explicitly; there is no package-level mode switch.
type Config struct {
	Environment    string // sandbox|production
	LoginID        string
	TransactionKey string
	BaseURL        string        // overrides the environment endpoint (tests)
	Timeout        time.Duration // zero => 30s
}

type Client struct {
	cfg  Config
	http *http.Client
	url  string
}

func New(cfg Config) (*Client, error) {
	url := cfg.BaseURL
	if url == "" {
		var ok bool
		url, ok = endpoints[cfg.Environment]
		if !ok {
			return nil, fmt.Errorf("authnet: unknown environment %q", cfg.Environment)
		}
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: timeout},
		url:  url,
	}, nil
}

// wire types

type merchantAuthentication struct {
	Name           string `json:"name"`
	TransactionKey string `json:"transactionKey"`
}

type creditCard struct {
	CardNumber     string `json:"cardNumber"`
	ExpirationDate string `json:"expirationDate"` // MM-YYYY
	CardCode       string `json:"cardCode,omitempty"`
}

type paymentElement struct {
	CreditCard creditCard `json:"creditCard"`
}

type transactionRequest struct {
	TransactionType string          `json:"transactionType"`
	Amount          float64         `json:"amount,omitempty"`
	Payment         *paymentElement `json:"payment,omitempty"`
	RefTransID      string          `json:"refTransId,omitempty"`
}

type createTransactionRequest struct {
	MerchantAuthentication merchantAuthentication `json:"merchantAuthentication"`
	TransactionRequest     transactionRequest     `json:"transactionRequest"`
}

type requestEnvelope struct {
	CreateTransactionRequest createTransactionRequest `json:"createTransactionRequest"`
}

type wireMessage struct {
	Code        string `json:"code"`
	Text        string `json:"text"`
	Description string `json:"description"`
}

type wireError struct {
	ErrorCode string `json:"errorCode"`
	ErrorText string `json:"errorText"`
}

type wireTransactionResponse struct {
	ResponseCode string        `json:"responseCode"`
	TransID      string        `json:"transId"`
	Messages     []wireMessage `json:"messages"`
	Errors       []wireError   `json:"errors"`
}

type responseEnvelope struct {
	TransactionResponse wireTransactionResponse `json:"transactionResponse"`
	Messages            struct {
		ResultCode string        `json:"resultCode"`
		Message    []wireMessage `json:"message"`
	} `json:"messages"`
}

// SubmitTransaction posts one createTransactionRequest and maps the
// envelope back. Transport and decode failures are returned as errors;
// the orchestrator treats them as gateway faults.
func (c *Client) SubmitTransaction(ctx context.Context, req payments.TransactionRequest) (payments.TransactionResponse, error) {
	wire := requestEnvelope{
		CreateTransactionRequest: createTransactionRequest{
			MerchantAuthentication: merchantAuthentication{
				Name:           c.cfg.LoginID,
				TransactionKey: c.cfg.TransactionKey,
			},
			TransactionRequest: transactionRequest{
				TransactionType: req.Kind,
				Amount:          req.Amount,
				RefTransID:      req.RefTransactionID,
			},
		},
	}
	if req.Card != nil {
		wire.CreateTransactionRequest.TransactionRequest.Payment = &paymentElement{
			CreditCard: creditCard{
				CardNumber:     req.Card.Number,
				ExpirationDate: fmt.Sprintf("%02d-%04d", req.Card.ExpMonth, req.Card.ExpYear),
				CardCode:       req.Card.CVV,
			},
		}
	}

	body, err := json.Marshal(wire)
	if err != nil {
		return payments.TransactionResponse{}, fmt.Errorf("authnet: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return payments.TransactionResponse{}, fmt.Errorf("authnet: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return payments.TransactionResponse{}, fmt.Errorf("authnet: submit: %w", err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return payments.TransactionResponse{}, fmt.Errorf("authnet: read response: %w", err)
	}
	if httpResp.StatusCode != http.StatusOK {
		return payments.TransactionResponse{}, fmt.Errorf("authnet: unexpected status %d", httpResp.StatusCode)
	}

	var env responseEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return payments.TransactionResponse{}, fmt.Errorf("authnet: decode response: %w", err)
	}

	return mapResponse(env), nil
}

func mapResponse(env responseEnvelope) payments.TransactionResponse {
	out := payments.TransactionResponse{
		ResultCode:   env.Messages.ResultCode,
		TransID:      env.TransactionResponse.TransID,
		ResponseCode: env.TransactionResponse.ResponseCode,
	}
	for _, m := range env.Messages.Message {
		out.Messages = append(out.Messages, payments.Message{Code: m.Code, Text: m.Text})
	}
	for _, m := range env.TransactionResponse.Messages {
		text := m.Description
		if text == "" {
			text = m.Text
		}
		out.TxnMessages = append(out.TxnMessages, payments.Message{Code: m.Code, Text: text})
	}
	for _, e := range env.TransactionResponse.Errors {
		out.TxnErrors = append(out.TxnErrors, payments.Message{Code: e.ErrorCode, Text: e.ErrorText})
	}
	return out
}
