package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sagaasachin/MaanClothing/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestGetCart_Success(t *testing.T) {
	userID := primitive.NewObjectID()
	cart := &fakeCart{view: &domain.CartView{
		UserID: userID,
		Lines: []domain.CartLine{
			{Product: domain.Product{ID: primitive.NewObjectID(), Name: "Shirt"}, Quantity: 2,
				UnitPrice: decimal.NewFromInt(100), Subtotal: decimal.NewFromInt(200)},
		},
		Subtotal: decimal.NewFromInt(200),
	}}

	handler := NewCartHandler(cart, 5*time.Second)
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("GET", "/", nil)
	request = request.WithContext(WithUserID(request.Context(), userID))

	handler.GetCart(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	var response domain.CartView
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&response))
	assert.Equal(t, userID, response.UserID)
	require.Len(t, response.Lines, 1)
	assert.True(t, response.Subtotal.Equal(decimal.NewFromInt(200)))
}

func TestGetCart_Unauthorized(t *testing.T) {
	handler := NewCartHandler(&fakeCart{}, 5*time.Second)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("GET", "/", nil)

	handler.GetCart(recorder, request)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	var response ErrorResponse
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&response))
	assert.Equal(t, "unauthorized", response.Code)
}

func TestAddItem_ExplicitQuantity(t *testing.T) {
	userID, productID := primitive.NewObjectID(), primitive.NewObjectID()
	cart := &fakeCart{}
	handler := NewCartHandler(cart, 5*time.Second)

	body := `{"productId":"` + productID.Hex() + `","quantity":4}`
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("POST", "/", strings.NewReader(body))
	request = request.WithContext(WithUserID(request.Context(), userID))

	handler.AddItem(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	require.Len(t, cart.calls, 1)
	assert.Equal(t, 4, cart.calls[0].quantity)
}
