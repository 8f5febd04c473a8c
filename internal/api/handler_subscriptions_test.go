package api

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutSubscriptionValidation(t *testing.T) {
	router, _ := setupRouter(t)

	t.Run("Empty body", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPut, "/api/subscriptions", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Unknown role", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPut, "/api/subscriptions", gin.H{
			"endpoint": "https://example.com/push",
			"p256dh":   "key",
			"auth":     "auth",
			"role":     "admin",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSubscriptionRoundTrip(t *testing.T) {
	router, db := setupRouter(t)
	seedBooking(t, db, 7, "pending")
	seedBooking(t, db, 8, "pending")

	w := doJSON(t, router, http.MethodPut, "/api/subscriptions", gin.H{
		"endpoint":            "https://example.com/push",
		"p256dh":              "key",
		"auth":                "auth",
		"role":                "installer",
		"subscribed_bookings": []int64{7, 8},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/subscriptions?endpoint=https://example.com/push", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"role":"installer","subscribed_bookings":[7,8]}`, w.Body.String())

	// Replacing the subscription narrows the watched bookings.
	w = doJSON(t, router, http.MethodPut, "/api/subscriptions", gin.H{
		"endpoint":            "https://example.com/push",
		"p256dh":              "key2",
		"auth":                "auth2",
		"role":                "installer",
		"subscribed_bookings": []int64{8},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/subscriptions?endpoint=https://example.com/push", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"role":"installer","subscribed_bookings":[8]}`, w.Body.String())

	w = doJSON(t, router, http.MethodDelete, "/api/subscriptions", gin.H{
		"endpoint": "https://example.com/push",
	})
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/subscriptions?endpoint=https://example.com/push", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetVAPIDPublicKey(t *testing.T) {
	router, _ := setupRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/vapid_public_key", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"public_key":"test-key"}`, w.Body.String())
}
