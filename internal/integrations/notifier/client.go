package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client клиент SMS провайдера с API в стиле Twilio Messages
type Client struct {
	baseURL            string
	accountSID         string
	authToken          string
	from               string
	defaultCountryCode string
	httpClient         *http.Client
	log                Logger
}

// Config параметры подключения к провайдеру
type Config struct {
	BaseURL            string
	AccountSID         string
	AuthToken          string
	From               string
	DefaultCountryCode string
	Timeout            time.Duration
}

// NewClient создает новый экземпляр клиента SMS провайдера
func NewClient(cfg Config, log Logger) *Client {
	return &Client{
		baseURL:            strings.TrimRight(cfg.BaseURL, "/"),
		accountSID:         cfg.AccountSID,
		authToken:          cfg.AuthToken,
		from:               cfg.From,
		defaultCountryCode: cfg.DefaultCountryCode,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		log: log,
	}
}

// SendSMS отправляет сообщение; номер без "+" дополняется кодом страны по умолчанию
func (c *Client) SendSMS(ctx context.Context, to, body string) error {
	phone := FormatPhone(to, c.defaultCountryCode)
	if phone == "" {
		return ErrNoPhone
	}

	form := url.Values{}
	form.Set("To", phone)
	form.Set("From", c.from)
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", c.baseURL, url.PathEscape(c.accountSID))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.accountSID, c.authToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to execute request: %v", ErrDeliveryFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var e errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return fmt.Errorf("%w: status %d, code %d: %s", ErrDeliveryFailed, resp.StatusCode, e.Code, e.Message)
	}

	var msg messageResponse
	if err := json.NewDecoder(resp.Body).Decode(&msg); err != nil {
		c.log.Warn("SMS sent to %s but response could not be decoded: %v", phone, err)
		return nil
	}

	c.log.Info("SMS sent to %s, sid=%s, status=%s", phone, msg.SID, msg.Status)
	return nil
}

// FormatPhone приводит номер к международному формату
func FormatPhone(phone, defaultCountryCode string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" || strings.HasPrefix(phone, "+") {
		return phone
	}
	return defaultCountryCode + phone
}
