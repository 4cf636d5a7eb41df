package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"rentwheels-backend/internal/models"
	"rentwheels-backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// paidBookingStore serves only the payment verification path; the embedded
// interface panics if anything else is called.
type paidBookingStore struct {
	services.BookingStore
	booking *models.Booking
}

func (s *paidBookingStore) MarkPaid(id string, paymentRef string) (*models.Booking, error) {
	s.booking.Paid = true
	s.booking.PaymentRef = paymentRef
	return s.booking, nil
}

func setupPaymentRouter(t *testing.T) (*gin.Engine, *models.Booking) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	booking := &models.Booking{ID: primitive.NewObjectID(), TotalPrice: 4500}
	service := services.NewBookingService(&paidBookingStore{booking: booking}, nil, nil)
	handler := NewPaymentHandler(service)

	router := gin.New()
	router.POST("/api/v1/payments/:id/verify", handler.VerifyPayment)
	return router, booking
}

func TestVerifyPayment_EmptyBody(t *testing.T) {
	router, booking := setupPaymentRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/"+booking.ID.Hex()+"/verify", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, booking.Paid)
	assert.True(t, strings.HasPrefix(booking.PaymentRef, "pay_"))
}

func TestVerifyPayment_WithReference(t *testing.T) {
	router, booking := setupPaymentRouter(t)

	body := strings.NewReader(`{"paymentRef":"order_settled_001"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/"+booking.ID.Hex()+"/verify", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "order_settled_001", booking.PaymentRef)
}

func TestVerifyPayment_MalformedBody(t *testing.T) {
	router, booking := setupPaymentRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/"+booking.ID.Hex()+"/verify", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, booking.Paid)
}
