package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"travel-booking/internal/data/entity"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	opInitialize = "initialize"
	opVerify     = "verify"

	statusSuccess = "success"

	// bodies larger than this are not a Chapa response
	maxBodyBytes = 1 << 20
)

type ChapaConfig struct {
	BaseURL     string
	SecretKey   string
	CallbackURL string
	ReturnURL   string
	Title       string
	Description string
	Timeout     time.Duration
}

type ChapaClient struct {
	cfg    ChapaConfig
	http   *http.Client
	tracer trace.Tracer
	log    *zap.Logger
}

func NewChapaClient(cfg ChapaConfig, log *zap.Logger) *ChapaClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &ChapaClient{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		tracer: otel.Tracer("travel-booking/gateway"),
		log:    log.With(zap.String("gateway", "chapa")),
	}
}

type initializePayload struct {
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	TxRef       string `json:"tx_ref"`
	CallbackURL string `json:"callback_url,omitempty"`
	ReturnURL   string `json:"return_url,omitempty"`
	Title       string `json:"customization[title],omitempty"`
	Description string `json:"customization[description],omitempty"`
}

type envelope struct {
	Status  string          `json:"status"`
	Message json.RawMessage `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type initializeData struct {
	CheckoutURL string `json:"checkout_url"`
	TxRef       string `json:"tx_ref"`
}

type verifyData struct {
	Status    string      `json:"status"`
	TxRef     string      `json:"tx_ref"`
	Reference string      `json:"reference"`
	Amount    *flexAmount `json:"amount"`
	Currency  string      `json:"currency"`
}

// flexAmount accepts the amount as a JSON number or a numeric string.
type flexAmount struct {
	value entity.Money
}

func (a *flexAmount) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	m, err := entity.ParseMoney(s)
	if err != nil {
		return err
	}
	a.value = m
	return nil
}

// message renders Chapa's message field, which is either a string or an
// object of field errors.
func (e *envelope) message() string {
	if len(e.Message) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(e.Message, &s); err == nil {
		return s
	}
	return string(e.Message)
}

// Initialize opens a checkout session for the given booking reference.
func (c *ChapaClient) Initialize(ctx context.Context, req InitializeRequest) (*Checkout, error) {
	ctx, span := c.tracer.Start(ctx, "chapa.initialize", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(attribute.String("booking.reference", req.Reference.String()))

	payload := initializePayload{
		Amount:      req.Amount.String(),
		Currency:    req.Currency,
		Email:       req.Email,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		TxRef:       req.Reference.String(),
		CallbackURL: c.cfg.CallbackURL,
		ReturnURL:   c.cfg.ReturnURL,
		Title:       c.cfg.Title,
		Description: c.cfg.Description,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, c.fail(span, &Error{Op: opInitialize, Detail: "encode request", Err: err})
	}

	status, env, err := c.do(ctx, opInitialize, http.MethodPost, c.cfg.BaseURL+"/transaction/initialize", body)
	if err != nil {
		return nil, c.fail(span, err)
	}

	if status >= http.StatusMultipleChoices || env.Status != statusSuccess {
		return nil, c.fail(span, &Error{
			Op:     opInitialize,
			Detail: fmt.Sprintf("provider returned %d %q: %s", status, env.Status, env.message()),
		})
	}

	var data initializeData
	if len(env.Data) == 0 || json.Unmarshal(env.Data, &data) != nil {
		return nil, c.fail(span, &Error{Op: opInitialize, Detail: "response has no data object"})
	}
	if _, err := url.ParseRequestURI(data.CheckoutURL); err != nil || data.CheckoutURL == "" {
		return nil, c.fail(span, &Error{Op: opInitialize, Detail: "response has no valid checkout_url", Err: err})
	}
	if data.TxRef != "" && data.TxRef != req.Reference.String() {
		return nil, c.fail(span, &Error{
			Op:     opInitialize,
			Detail: fmt.Sprintf("provider echoed reference %q, want %q", data.TxRef, req.Reference),
		})
	}

	c.log.Info("Checkout initialized",
		zap.String("reference", req.Reference.String()),
		zap.String("amount", req.Amount.String()),
	)

	return &Checkout{Reference: req.Reference, CheckoutURL: data.CheckoutURL}, nil
}

// Verify fetches the provider's status for reference. A provider answer of
// "failed" is a Transaction with TransactionFailed, not an error.
func (c *ChapaClient) Verify(ctx context.Context, reference entity.BookingReference) (*Transaction, error) {
	ctx, span := c.tracer.Start(ctx, "chapa.verify", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(attribute.String("booking.reference", reference.String()))

	endpoint := c.cfg.BaseURL + "/transaction/verify/" + url.PathEscape(reference.String())
	status, env, err := c.do(ctx, opVerify, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, c.fail(span, err)
	}

	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden,
		status == http.StatusTooManyRequests, status >= http.StatusInternalServerError:
		return nil, c.fail(span, &Error{
			Op:     opVerify,
			Detail: fmt.Sprintf("provider returned %d: %s", status, env.message()),
		})
	case env.Status == "":
		return nil, c.fail(span, &Error{Op: opVerify, Detail: "response has no status marker"})
	case env.Status != statusSuccess:
		// the provider answers unknown or declined transactions with a failed envelope
		return &Transaction{Reference: reference, Status: TransactionFailed, Message: env.message()}, nil
	}

	var data verifyData
	if len(env.Data) == 0 || json.Unmarshal(env.Data, &data) != nil {
		return nil, c.fail(span, &Error{Op: opVerify, Detail: "response has no valid data object"})
	}
	if data.TxRef != "" && data.TxRef != reference.String() {
		return nil, c.fail(span, &Error{
			Op:     opVerify,
			Detail: fmt.Sprintf("provider returned reference %q, want %q", data.TxRef, reference),
		})
	}

	tx := &Transaction{
		Reference:     reference,
		TransactionID: data.Reference,
		Currency:      data.Currency,
		Message:       env.message(),
	}
	if tx.TransactionID == "" {
		tx.TransactionID = reference.String()
	}
	if data.Amount != nil {
		amount := data.Amount.value
		tx.Amount = &amount
	}

	switch strings.ToLower(data.Status) {
	case "success", "successful", "completed":
		tx.Status = TransactionSuccess
	case "failed", "cancelled", "canceled", "reversed":
		tx.Status = TransactionFailed
	case "pending":
		tx.Status = TransactionPending
	default:
		return nil, c.fail(span, &Error{
			Op:     opVerify,
			Detail: fmt.Sprintf("unknown transaction status %q", data.Status),
		})
	}

	span.SetAttributes(attribute.String("payment.status", string(tx.Status)))
	return tx, nil
}

func (c *ChapaClient) do(ctx context.Context, op, method, endpoint string, body []byte) (int, *envelope, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return 0, nil, &Error{Op: op, Detail: "build request", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.SecretKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		detail := "transport failure"
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			detail = "timed out"
		}
		return 0, nil, &Error{Op: op, Detail: detail, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return resp.StatusCode, nil, &Error{Op: op, Detail: "read response", Err: err}
	}

	c.log.Debug("Provider responded",
		zap.String("op", op),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return resp.StatusCode, nil, &Error{
			Op:     op,
			Detail: fmt.Sprintf("malformed response body (status %d)", resp.StatusCode),
			Err:    err,
		}
	}

	return resp.StatusCode, &env, nil
}

func (c *ChapaClient) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	c.log.Warn("Gateway call failed", zap.Error(err))
	return err
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
