package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	maxPreviewImages       = 3
	maxHealthIssuesPreview = 100
)

// Client клиент платежного провайдера с API в стиле Stripe Checkout
type Client struct {
	baseURL    string
	secretKey  string
	currency   string
	successURL string
	cancelURL  string
	httpClient *http.Client
}

// Config параметры подключения к провайдеру
type Config struct {
	BaseURL    string
	SecretKey  string
	Currency   string
	SuccessURL string // {bookingId} заменяется на id записи
	CancelURL  string // {doctorId} заменяется на id врача
	Timeout    time.Duration
}

// NewClient создает новый экземпляр клиента платежного провайдера
func NewClient(cfg Config) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		secretKey:  cfg.SecretKey,
		currency:   cfg.Currency,
		successURL: cfg.SuccessURL,
		cancelURL:  cfg.CancelURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// CreateCheckoutSession создает сессию оплаты записи
func (c *Client) CreateCheckoutSession(ctx context.Context, in CheckoutRequest) (*CheckoutSession, error) {
	form := c.buildForm(in)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/checkout/sessions", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Idempotency-Key", in.BookingID.String())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to execute request: %v", ErrProviderRejected, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var e errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return nil, fmt.Errorf("%w: status %d: %s", ErrProviderRejected, resp.StatusCode, e.Error.Message)
	}

	var session CheckoutSession
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}
	if session.ID == "" {
		return nil, fmt.Errorf("%w: session id is empty", ErrInvalidResponse)
	}

	return &session, nil
}

// buildForm собирает тело запроса: позиция приема врача и бесплатные позиции для отчетов и жалоб
func (c *Client) buildForm(in CheckoutRequest) url.Values {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Add("payment_method_types[]", "card")
	form.Set("success_url", strings.ReplaceAll(c.successURL, "{bookingId}", in.BookingID.String()))
	form.Set("cancel_url", strings.ReplaceAll(c.cancelURL, "{doctorId}", in.DoctorID.String()))
	form.Set("client_reference_id", in.BookingID.String())
	if in.CustomerEmail != "" {
		form.Set("customer_email", in.CustomerEmail)
	}

	item := 0
	c.addItem(form, item, int64(math.Round(in.TicketPrice*100)), in.DoctorName, in.DoctorBio, photoList(in.DoctorPhoto))
	item++

	if len(in.ReportURLs) > 0 {
		images := in.ReportURLs
		if len(images) > maxPreviewImages {
			images = images[:maxPreviewImages]
		}
		c.addItem(form, item, 0, "Medical Reports", "Uploaded medical reports for consultation", images)
		item++
	}

	if issues := strings.TrimSpace(in.HealthIssues); issues != "" {
		c.addItem(form, item, 0, "Health Issues", preview(issues, maxHealthIssuesPreview), nil)
	}

	return form
}

func (c *Client) addItem(form url.Values, i int, amount int64, name, description string, images []string) {
	prefix := "line_items[" + strconv.Itoa(i) + "]"
	form.Set(prefix+"[quantity]", "1")
	form.Set(prefix+"[price_data][currency]", c.currency)
	form.Set(prefix+"[price_data][unit_amount]", strconv.FormatInt(amount, 10))
	form.Set(prefix+"[price_data][product_data][name]", name)
	if description != "" {
		form.Set(prefix+"[price_data][product_data][description]", description)
	}
	for j, img := range images {
		form.Set(prefix+"[price_data][product_data][images]["+strconv.Itoa(j)+"]", img)
	}
}

func photoList(photo string) []string {
	if photo == "" {
		return nil
	}
	return []string{photo}
}

func preview(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "..."
}
