package testkit

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/rigparts/pkg/mail"
	"github.com/shashiranjanraj/rigparts/pkg/response"
)

type note struct {
	ID   uint
	Body string
}

func TestDB_IsolatedPerTest(t *testing.T) {
	a := DB(t, &note{})
	b := DB(t, &note{})

	require.NoError(t, a.Create(&note{Body: "x"}).Error)

	var n int64
	b.Model(&note{}).Count(&n)
	assert.Zero(t, n)
}

func TestRequest_DecodesEnvelope(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response.Success(w, map[string]string{"auth": r.Header.Get("Authorization")})
	})

	res := NewRequest(http.MethodGet, "/").Bearer("tok").Do(h)
	assert.Equal(t, http.StatusOK, res.Code)

	var data map[string]string
	res.Decode(t, &data)
	assert.Equal(t, "Bearer tok", data["auth"])
}

func TestMockTransport(t *testing.T) {
	mt := NewMockTransport().On("https://api.test/", MockResponse{Status: 201, Body: `{}`})
	client := &http.Client{Transport: mt}

	resp, err := client.Get("https://api.test/things")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, 201, resp.StatusCode)

	_, err = client.Get("https://other.test/")
	assert.Error(t, err)
	assert.Len(t, mt.Calls(), 2)
}

func TestMailbox(t *testing.T) {
	box := NewMailbox().Reject("bad@x.test")
	ctx := context.Background()

	require.NoError(t, box.Send(ctx, mail.Message{To: []string{"ok@x.test"}, Subject: "hi"}))
	assert.ErrorIs(t, box.Send(ctx, mail.Message{To: []string{"bad@x.test"}}), ErrMailRejected)
	assert.Len(t, box.To("ok@x.test"), 1)
	assert.Len(t, box.Sent(), 1)
}
