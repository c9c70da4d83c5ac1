package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"amity-social/pkg/errs"
)

func TestChatroomGatewayCreate(t *testing.T) {
	var gotAuth string
	var gotBody map[string]int64

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/create/", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]int64{"id": 42})
	}))
	defer srv.Close()

	gateway := NewChatroomGateway(srv.URL + "/")
	chatroomID, err := gateway.CreateChatroom(context.Background(), 3, 5, "tok")
	require.NoError(t, err)
	require.Equal(t, int64(42), chatroomID)
	require.Equal(t, "Bearer tok", gotAuth)
	require.Equal(t, int64(3), gotBody["user1_id"])
	require.Equal(t, int64(5), gotBody["user2_id"])
}

func TestChatroomGatewayCreateFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	gateway := NewChatroomGateway(srv.URL + "/")
	_, err := gateway.CreateChatroom(context.Background(), 3, 5, "tok")
	require.ErrorIs(t, err, errs.ErrChatroomCreationFailed)
}

func TestChatroomGatewayDelete(t *testing.T) {
	var gotBody map[string]int64

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/delete/", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	gateway := NewChatroomGateway(srv.URL + "/")
	require.NoError(t, gateway.DeleteChatroom(context.Background(), 42, "tok"))
	require.Equal(t, int64(42), gotBody["chatroom_id"])
}

func TestChatroomGatewayDeleteFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	gateway := NewChatroomGateway(srv.URL + "/")
	err := gateway.DeleteChatroom(context.Background(), 42, "tok")
	require.ErrorIs(t, err, errs.ErrChatroomDeletionFailed)
}

func TestChatroomGatewayUnreachable(t *testing.T) {
	gateway := NewChatroomGateway("http://127.0.0.1:1/chat/")

	_, err := gateway.CreateChatroom(context.Background(), 1, 2, "tok")
	require.ErrorIs(t, err, errs.ErrChatroomCreationFailed)
}
