package main

import (
	"bitbucket.org/sotavant/quick-swapp/internal/auth"
	"bitbucket.org/sotavant/quick-swapp/internal/conversation"
	"bitbucket.org/sotavant/quick-swapp/internal/inbox"
	"bitbucket.org/sotavant/quick-swapp/internal/models"
	"bitbucket.org/sotavant/quick-swapp/internal/store"
	"bitbucket.org/sotavant/quick-swapp/internal/store/memory"
	"bitbucket.org/sotavant/quick-swapp/internal/store/mock"
	"bytes"
	"compress/gzip"
	"encoding/json"
	"github.com/gin-gonic/gin"
	"github.com/go-resty/resty/v2"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

var testSecret = []byte("test-secret")

const (
	testItem    = "5d0b7a52-8f0e-4c1a-9e57-2f6c3c1d9a10"
	testMacbook = "c3a1e9f0-6b2d-4d8e-a7f4-1b5c9e0d2f83"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func bearer(t *testing.T, user models.UserID) string {
	t.Helper()
	token, err := auth.Issue(testSecret, user, time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestAPI(t *testing.T) {
	ctrl := gomock.NewController(t)
	s := mock.NewMockStore(ctrl)

	t1 := time.Now().Add(-time.Hour)
	messages := []models.Message{
		{ID: "m1", ConversationID: "k1", SenderID: "u2", ReceiverID: "u1", Body: "Hello", CreatedAt: t1},
		{ID: "m2", ConversationID: "k1", SenderID: "u2", ReceiverID: "u1", Body: "Still there?", CreatedAt: t1.Add(time.Minute)},
	}

	s.EXPECT().
		ListMessages(gomock.Any(), models.UserID("u1")).
		Return(messages, nil).
		AnyTimes()
	s.EXPECT().
		FindConversation(gomock.Any(), models.UserID("u1"), models.UserID("u2"), models.ItemID(testItem)).
		Return(models.ConversationID(""), store.ErrNotFound).
		AnyTimes()

	appInstance := newApp(inbox.New(s, memory.New(), nil))
	srv := httptest.NewServer(newRouter(appInstance, testSecret))
	defer srv.Close()

	testCases := []struct {
		name         string
		method       string
		path         string
		auth         string
		body         string
		expectedCode int
		expectedBody string
	}{
		{
			name:         "no_token",
			method:       http.MethodGet,
			path:         "/api/unread",
			expectedCode: http.StatusUnauthorized,
		},
		{
			name:         "bad_token",
			method:       http.MethodGet,
			path:         "/api/unread",
			auth:         "Bearer garbage",
			expectedCode: http.StatusUnauthorized,
		},
		{
			name:         "unread",
			method:       http.MethodGet,
			path:         "/api/unread",
			auth:         bearer(t, "u1"),
			expectedCode: http.StatusOK,
			expectedBody: `{"unread":2}`,
		},
		{
			name:         "start_conversation",
			method:       http.MethodPost,
			path:         "/api/conversations",
			auth:         bearer(t, "u1"),
			body:         `{"participant_id": "u2", "item_id": "` + testItem + `"}`,
			expectedCode: http.StatusOK,
			expectedBody: `{"conversation_id":"` + testItem + `:u1:u2"}`,
		},
		{
			name:         "start_conversation_with_bad_item",
			method:       http.MethodPost,
			path:         "/api/conversations",
			auth:         bearer(t, "u1"),
			body:         `{"participant_id": "u2", "item_id": "u3"}`,
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "start_conversation_with_self",
			method:       http.MethodPost,
			path:         "/api/conversations",
			auth:         bearer(t, "u1"),
			body:         `{"participant_id": "u1"}`,
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "start_conversation_without_body",
			method:       http.MethodPost,
			path:         "/api/conversations",
			auth:         bearer(t, "u1"),
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "send_empty_message",
			method:       http.MethodPost,
			path:         "/api/messages",
			auth:         bearer(t, "u1"),
			body:         `{"receiver_id": "u2", "message": "   "}`,
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"message cannot be empty"}`,
		},
		{
			name:         "send_too_long_message",
			method:       http.MethodPost,
			path:         "/api/messages",
			auth:         bearer(t, "u1"),
			body:         `{"receiver_id": "u2", "message": "` + strings.Repeat("a", 501) + `"}`,
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "unknown_route",
			method:       http.MethodGet,
			path:         "/api/nope",
			auth:         bearer(t, "u1"),
			expectedCode: http.StatusNotFound,
		},
		{
			name:         "healthz",
			method:       http.MethodGet,
			path:         "/healthz",
			expectedCode: http.StatusOK,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := resty.New().R()
			r.Method = tc.method
			r.URL = srv.URL + tc.path

			if tc.auth != "" {
				r.SetHeader("Authorization", tc.auth)
			}
			if len(tc.body) > 0 {
				r.SetHeader("Content-Type", "application/json")
				r.SetBody(tc.body)
			}

			resp, err := r.Send()
			assert.NoError(t, err, "error making request")

			assert.Equal(t, tc.expectedCode, resp.StatusCode(), "unexpected status code")
			if tc.expectedBody != "" {
				assert.JSONEq(t, tc.expectedBody, string(resp.Body()))
			}
		})
	}
}

func TestConversationFlow(t *testing.T) {
	mem := memory.New()
	appInstance := newApp(inbox.New(mem, mem, nil))
	srv := httptest.NewServer(newRouter(appInstance, testSecret))
	defer srv.Close()

	seller, buyer := bearer(t, "seller"), bearer(t, "buyer")
	client := resty.New().SetBaseURL(srv.URL)

	var sent models.Message
	resp, err := client.R().
		SetHeader("Authorization", buyer).
		SetBody(models.SendMessageRequest{ReceiverID: "seller", ItemID: testMacbook, Body: "Is the MacBook still available?"}).
		SetResult(&sent).
		Post("/api/messages")
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode())
	assert.Equal(t, conversation.DeriveKey("buyer", "seller", testMacbook), sent.ConversationID)

	var badge models.UnreadResponse
	resp, err = client.R().SetHeader("Authorization", seller).SetResult(&badge).Get("/api/unread")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Equal(t, 1, badge.Unread)

	var summaries []models.ConversationSummary
	resp, err = client.R().SetHeader("Authorization", seller).SetResult(&summaries).Get("/api/conversations")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())
	require.Len(t, summaries, 1)
	assert.Equal(t, models.UserID("buyer"), summaries[0].OtherParticipant)
	assert.Equal(t, 1, summaries[0].Unread)

	var thread []models.Message
	resp, err = client.R().
		SetHeader("Authorization", seller).
		SetResult(&thread).
		Get("/api/conversations/" + string(sent.ConversationID) + "/messages")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())
	require.Len(t, thread, 1)
	assert.Equal(t, sent.ID, thread[0].ID)

	resp, err = client.R().SetHeader("Authorization", seller).SetResult(&badge).Get("/api/unread")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Equal(t, 0, badge.Unread)

	resp, err = client.R().
		SetHeader("Authorization", bearer(t, "stranger")).
		Get("/api/conversations/" + string(sent.ConversationID) + "/messages")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode())
}

func TestGzipCompression(t *testing.T) {
	mem := memory.New()
	appInstance := newApp(inbox.New(mem, mem, nil))
	srv := httptest.NewServer(newRouter(appInstance, testSecret))
	defer srv.Close()

	requestBody := `{
		"participant_id": "u2",
		"item_id": "` + testItem + `"
	}`

	successBody := `{
		"conversation_id": "` + testItem + `:u1:u2"
	}`

	t.Run("sends_gzip", func(t *testing.T) {
		buf := bytes.NewBuffer(nil)
		zb := gzip.NewWriter(buf)
		_, err := zb.Write([]byte(requestBody))
		require.NoError(t, err)
		err = zb.Close()
		require.NoError(t, err)

		r := httptest.NewRequest("POST", srv.URL+"/api/conversations", buf)
		r.RequestURI = ""
		r.Header.Set("Authorization", bearer(t, "u1"))
		r.Header.Set("Content-Type", "application/json")
		r.Header.Set("Content-Encoding", "gzip")
		r.Header.Set("Accept-Encoding", "0")

		resp, err := http.DefaultClient.Do(r)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		defer func(Body io.ReadCloser) {
			err := Body.Close()
			require.NoError(t, err)
		}(resp.Body)

		b, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.JSONEq(t, successBody, string(b))
	})

	t.Run("accept_gzip", func(t *testing.T) {
		buf := bytes.NewBufferString(requestBody)
		r := httptest.NewRequest("POST", srv.URL+"/api/conversations", buf)
		r.RequestURI = ""
		r.Header.Set("Authorization", bearer(t, "u1"))
		r.Header.Set("Content-Type", "application/json")
		r.Header.Set("Accept-Encoding", "gzip")

		resp, err := http.DefaultClient.Do(r)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, "gzip", resp.Header.Get("Content-Encoding"))

		defer resp.Body.Close()

		zr, err := gzip.NewReader(resp.Body)
		require.NoError(t, err)

		b, err := io.ReadAll(zr)
		require.NoError(t, err)

		var got models.StartConversationResponse
		require.NoError(t, json.Unmarshal(b, &got))
		require.JSONEq(t, successBody, string(b))
	})
}
