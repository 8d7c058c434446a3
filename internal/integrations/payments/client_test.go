package payments

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCheckoutSession(t *testing.T) {
	bookingID, doctorID := uuid.New(), uuid.New()
	var (
		gotAuth string
		form    map[string]string
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, r.ParseForm())
		form = map[string]string{}
		for k, v := range r.PostForm {
			form[k] = v[0]
		}
		w.Write([]byte(`{"id":"cs_test_1","url":"https://pay.test/cs_test_1"}`))
	}))
	defer srv.Close()

	client := NewClient(Config{
		BaseURL:    srv.URL,
		SecretKey:  "sk_test",
		Currency:   "usd",
		SuccessURL: "https://app.test/checkout-success?bookingId={bookingId}",
		CancelURL:  "https://app.test/doctors/{doctorId}",
		Timeout:    time.Second,
	})

	session, err := client.CreateCheckoutSession(t.Context(), CheckoutRequest{
		BookingID:    bookingID,
		DoctorID:     doctorID,
		DoctorName:   "Dr. House",
		TicketPrice:  19.99,
		ReportURLs:   []string{"a", "b", "c", "d"},
		HealthIssues: strings.Repeat("x", 120),
	})

	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", session.ID)
	assert.Equal(t, "Bearer sk_test", gotAuth)
	assert.Equal(t, "https://app.test/checkout-success?bookingId="+bookingID.String(), form["success_url"])
	assert.Equal(t, "https://app.test/doctors/"+doctorID.String(), form["cancel_url"])
	assert.Equal(t, bookingID.String(), form["client_reference_id"])
	assert.Equal(t, "1999", form["line_items[0][price_data][unit_amount]"])
	assert.Equal(t, "0", form["line_items[1][price_data][unit_amount]"])
	assert.Equal(t, "c", form["line_items[1][price_data][product_data][images][2]"])
	assert.NotContains(t, form, "line_items[1][price_data][product_data][images][3]")
	assert.Equal(t, strings.Repeat("x", 100)+"...", form["line_items[2][price_data][product_data][description]"])
}

func TestCreateCheckoutSession_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{"error":{"type":"card_error","message":"declined"}}`))
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL, Timeout: time.Second})

	_, err := client.CreateCheckoutSession(t.Context(), CheckoutRequest{BookingID: uuid.New()})

	assert.ErrorIs(t, err, ErrProviderRejected)
	assert.Contains(t, err.Error(), "declined")
}
