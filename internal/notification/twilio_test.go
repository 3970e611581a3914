package notification

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTwilioSenderPostsForm(t *testing.T) {
	var got struct {
		path, user, pass, to, from, body string
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.path = r.URL.Path
		got.user, got.pass, _ = r.BasicAuth()
		_ = r.ParseForm()
		got.to, got.from, got.body = r.PostForm.Get("To"), r.PostForm.Get("From"), r.PostForm.Get("Body")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"sid":"SM1"}`))
	}))
	defer srv.Close()

	sender, err := NewTwilioSender(TwilioConfig{AccountSID: "AC1", AuthToken: "tok", From: "+18005551212", BaseURL: srv.URL})
	require.NoError(t, err)

	err = sender.Send(context.Background(), Message{To: "+16502530000", Body: "Good morning!"})
	require.NoError(t, err)

	assert.Equal(t, "/2010-04-01/Accounts/AC1/Messages.json", got.path)
	assert.Equal(t, "AC1", got.user)
	assert.Equal(t, "tok", got.pass)
	assert.Equal(t, "+16502530000", got.to)
	assert.Equal(t, "+18005551212", got.from)
	assert.Equal(t, "Good morning!", got.body)
}

func TestTwilioSenderReportsProviderErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"invalid To"}`))
	}))
	defer srv.Close()

	sender, err := NewTwilioSender(TwilioConfig{AccountSID: "AC1", AuthToken: "tok", From: "+18005551212", BaseURL: srv.URL})
	require.NoError(t, err)

	err = sender.Send(context.Background(), Message{To: "bad", Body: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}

func TestNewTwilioSenderRequiresCredentials(t *testing.T) {
	_, err := NewTwilioSender(TwilioConfig{AccountSID: "AC1"})
	assert.Error(t, err)
}

func TestLoggerSenderNilSafe(t *testing.T) {
	var s *LoggerSender
	assert.NoError(t, s.Send(context.Background(), Message{To: "+16502530000"}))
}
