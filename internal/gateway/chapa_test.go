package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"travel-booking/internal/data/entity"

	"go.uber.org/zap"
)

const testRef = entity.BookingReference("BKG-20300101-ABCDEF12")

func newTestClient(t *testing.T, handler http.HandlerFunc) *ChapaClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewChapaClient(ChapaConfig{
		BaseURL:     srv.URL,
		SecretKey:   "CHASECK_TEST",
		CallbackURL: "https://example.com/api/payments/verify",
		ReturnURL:   "https://example.com/done",
		Title:       "Booking",
		Timeout:     time.Second,
	}, zap.NewNop())
}

func initRequest() InitializeRequest {
	return InitializeRequest{
		Reference: testRef,
		Amount:    entity.MustParseMoney("300.00"),
		Currency:  "ETB",
		Email:     "guest@example.com",
		FirstName: "Abebe",
		LastName:  "Kebede",
	}
}

func TestInitializeSendsProtocolFields(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/transaction/initialize" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer CHASECK_TEST" {
			t.Errorf("Authorization = %q", got)
		}

		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		want := map[string]string{
			"amount":               "300.00",
			"currency":             "ETB",
			"email":                "guest@example.com",
			"first_name":           "Abebe",
			"last_name":            "Kebede",
			"tx_ref":               testRef.String(),
			"callback_url":         "https://example.com/api/payments/verify",
			"return_url":           "https://example.com/done",
			"customization[title]": "Booking",
		}
		for k, v := range want {
			if body[k] != v {
				t.Errorf("body[%q] = %q, want %q", k, body[k], v)
			}
		}

		w.Write([]byte(`{"status":"success","message":"Hosted Link","data":{"checkout_url":"https://checkout.chapa.co/pay/abc"}}`))
	})

	checkout, err := client.Initialize(context.Background(), initRequest())
	if err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if checkout.CheckoutURL != "https://checkout.chapa.co/pay/abc" {
		t.Errorf("CheckoutURL = %q", checkout.CheckoutURL)
	}
}

func TestInitializeRejectsBadResponses(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"non-success status", http.StatusBadRequest, `{"status":"failed","message":{"email":["invalid"]},"data":null}`},
		{"success marker missing", http.StatusOK, `{"message":"ok","data":{"checkout_url":"https://x.test/pay"}}`},
		{"malformed body", http.StatusOK, `<html>bad gateway</html>`},
		{"no checkout url", http.StatusOK, `{"status":"success","data":{}}`},
		{"wrong echoed reference", http.StatusOK, `{"status":"success","data":{"checkout_url":"https://x.test/pay","tx_ref":"OTHER"}}`},
		{"server error", http.StatusBadGateway, `{"status":"success","data":{"checkout_url":"https://x.test/pay"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := client.Initialize(context.Background(), initRequest())
			var gwErr *Error
			if !errors.As(err, &gwErr) {
				t.Fatalf("Initialize() error = %v, want *Error", err)
			}
			if gwErr.Op != opInitialize {
				t.Errorf("Op = %q, want %q", gwErr.Op, opInitialize)
			}
		})
	}
}

func TestInitializeTimesOut(t *testing.T) {
	release := make(chan struct{})
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)
	client.http.Timeout = 50 * time.Millisecond

	_, err := client.Initialize(context.Background(), initRequest())
	var gwErr *Error
	if !errors.As(err, &gwErr) {
		t.Fatalf("Initialize() error = %v, want *Error", err)
	}
	if gwErr.Detail != "timed out" {
		t.Errorf("Detail = %q, want timed out", gwErr.Detail)
	}
}

func TestVerify(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus TransactionStatus
		wantTxID   string
		wantAmount string
		wantErr    bool
	}{
		{
			name:       "success with numeric amount",
			status:     http.StatusOK,
			body:       `{"status":"success","data":{"status":"success","tx_ref":"BKG-20300101-ABCDEF12","reference":"AP7x9","amount":300,"currency":"ETB"}}`,
			wantStatus: TransactionSuccess,
			wantTxID:   "AP7x9",
			wantAmount: "300.00",
		},
		{
			name:       "success with string amount and no provider reference",
			status:     http.StatusOK,
			body:       `{"status":"success","data":{"status":"success","amount":"300.00"}}`,
			wantStatus: TransactionSuccess,
			wantTxID:   testRef.String(),
			wantAmount: "300.00",
		},
		{
			name:       "provider says failed",
			status:     http.StatusOK,
			body:       `{"status":"success","data":{"status":"failed"}}`,
			wantStatus: TransactionFailed,
		},
		{
			name:       "unknown transaction",
			status:     http.StatusNotFound,
			body:       `{"status":"failed","message":"Invalid transaction or Transaction not found","data":null}`,
			wantStatus: TransactionFailed,
		},
		{
			name:       "still pending",
			status:     http.StatusOK,
			body:       `{"status":"success","data":{"status":"pending"}}`,
			wantStatus: TransactionPending,
		},
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"status":"failed","message":"Invalid API Key"}`, wantErr: true},
		{name: "malformed", status: http.StatusOK, body: `not json`, wantErr: true},
		{name: "unknown data status", status: http.StatusOK, body: `{"status":"success","data":{"status":"weird"}}`, wantErr: true},
		{name: "garbage amount", status: http.StatusOK, body: `{"status":"success","data":{"status":"success","amount":"abc"}}`, wantErr: true},
		{name: "mismatched tx_ref", status: http.StatusOK, body: `{"status":"success","data":{"status":"success","tx_ref":"BKG-OTHER"}}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if !strings.HasSuffix(r.URL.Path, "/transaction/verify/"+testRef.String()) {
					t.Errorf("path = %s", r.URL.Path)
				}
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			tx, err := client.Verify(context.Background(), testRef)
			if tt.wantErr {
				var gwErr *Error
				if !errors.As(err, &gwErr) {
					t.Fatalf("Verify() error = %v, want *Error", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Verify() error = %v", err)
			}
			if tx.Status != tt.wantStatus {
				t.Errorf("Status = %s, want %s", tx.Status, tt.wantStatus)
			}
			if tt.wantTxID != "" && tx.TransactionID != tt.wantTxID {
				t.Errorf("TransactionID = %q, want %q", tx.TransactionID, tt.wantTxID)
			}
			if tt.wantAmount != "" && (tx.Amount == nil || tx.Amount.String() != tt.wantAmount) {
				t.Errorf("Amount = %v, want %s", tx.Amount, tt.wantAmount)
			}
		})
	}
}
