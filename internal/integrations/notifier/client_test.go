package notifier

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-DoctorBooking/pkg/logger"
)

func TestFormatPhone(t *testing.T) {
	assert.Equal(t, "+919876543210", FormatPhone("9876543210", "+91"))
	assert.Equal(t, "+15550001", FormatPhone(" +15550001 ", "+91"))
	assert.Equal(t, "", FormatPhone("  ", "+91"))
}

func TestSendSMS(t *testing.T) {
	var (
		gotPath, gotTo, gotBody, gotUser, gotPass string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUser, gotPass, _ = r.BasicAuth()
		require.NoError(t, r.ParseForm())
		gotTo = r.PostForm.Get("To")
		gotBody = r.PostForm.Get("Body")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"sid":"SM1","status":"queued"}`))
	}))
	defer srv.Close()

	client := NewClient(Config{
		BaseURL:            srv.URL,
		AccountSID:         "AC1",
		AuthToken:          "tok",
		From:               "+10000000000",
		DefaultCountryCode: "+91",
		Timeout:            time.Second,
	}, logger.NewNop())

	err := client.SendSMS(t.Context(), "9876543210", "Hi, Ann")

	require.NoError(t, err)
	assert.Equal(t, "/2010-04-01/Accounts/AC1/Messages.json", gotPath)
	assert.Equal(t, "+919876543210", gotTo)
	assert.Equal(t, "Hi, Ann", gotBody)
	assert.Equal(t, "AC1", gotUser)
	assert.Equal(t, "tok", gotPass)
}

func TestSendSMS_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code":21211,"message":"invalid To"}`))
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL, AccountSID: "AC1", Timeout: time.Second}, logger.NewNop())

	err := client.SendSMS(t.Context(), "+1", "x")
	assert.ErrorIs(t, err, ErrDeliveryFailed)

	err = client.SendSMS(t.Context(), "", "x")
	assert.ErrorIs(t, err, ErrNoPhone)
}
