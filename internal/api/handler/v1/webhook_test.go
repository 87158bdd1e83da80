package v1

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/lestade/fanzone-api/internal/api/handler/v1/response"
	"github.com/lestade/fanzone-api/internal/domain"
	"github.com/lestade/fanzone-api/internal/repository"
	"github.com/lestade/fanzone-api/internal/repository/dao"
	"github.com/lestade/fanzone-api/internal/service"
)

const testWebhookSecret = "test-webhook-secret"

func newWebhookTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%v?mode=memory&cache=shared", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, dao.InitTables(db))

	return db
}

func newWebhookTestRouter(t *testing.T, db *gorm.DB) (*gin.Engine, *service.LoyaltyService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	loyaltySvc := service.NewLoyaltyService(repository.NewLoyaltyRepository(dao.NewLoyaltyDAO(db)))
	handler := NewWebhookHandler(testWebhookSecret, loyaltySvc)

	router := gin.New()
	router.POST("/webhooks/pos", handler.HandlePOSEvent)

	return router, loyaltySvc
}

func linkWebhookAccount(t *testing.T, db *gorm.DB, posRef string) domain.User {
	t.Helper()
	ctx := context.Background()

	userRepo := repository.NewUserRepository(dao.NewUserDAO(db))
	user, err := userRepo.Create(ctx, domain.User{
		Email:    posRef + "@example.com",
		Password: "hashed-password",
		Name:     "Webhook User",
		Role:     "customer",
	})
	require.NoError(t, err)

	loyaltyRepo := repository.NewLoyaltyRepository(dao.NewLoyaltyDAO(db))
	account, err := loyaltyRepo.GetOrCreateAccount(ctx, user.ID)
	require.NoError(t, err)
	require.NoError(t, loyaltyRepo.LinkAccountPOSRef(ctx, account.ID, posRef))

	return user
}

func signBody(body []byte) string {
	mac := hmac.New(sha256.New, []byte(testWebhookSecret))
	mac.Write(body)

	return hex.EncodeToString(mac.Sum(nil))
}

func postEvent(t *testing.T, router *gin.Engine, body []byte, signature string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/webhooks/pos", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set(SignatureHeader, signature)
	}

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	return recorder
}

func eventBody(t *testing.T, eventType, customerRef, orderRef string, amount float64) []byte {
	t.Helper()

	body, err := json.Marshal(map[string]interface{}{
		"type":         eventType,
		"customer_ref": customerRef,
		"order_ref":    orderRef,
		"amount":       amount,
	})
	require.NoError(t, err)

	return body
}

func decodeEventResponse(t *testing.T, recorder *httptest.ResponseRecorder) response.POSEventResponse {
	t.Helper()

	var resp response.POSEventResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))

	return resp
}

func TestHandlePOSEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects a missing or forged signature", func(t *testing.T) {
		db := newWebhookTestDB(t)
		router, loyaltySvc := newWebhookTestRouter(t, db)
		user := linkWebhookAccount(t, db, "POS-SIG")

		body := eventBody(t, "order.created", "POS-SIG", "ORD-1", 100)

		recorder := postEvent(t, router, body, "")
		require.Equal(t, http.StatusUnauthorized, recorder.Code)

		recorder = postEvent(t, router, body, "deadbeef")
		require.Equal(t, http.StatusUnauthorized, recorder.Code)

		account, err := loyaltySvc.GetAccount(ctx, user.ID)
		require.NoError(t, err)
		require.Zero(t, account.TotalPoints)
	})

	t.Run("credits the account and absorbs redelivery", func(t *testing.T) {
		db := newWebhookTestDB(t)
		router, loyaltySvc := newWebhookTestRouter(t, db)
		user := linkWebhookAccount(t, db, "POS-OK")

		body := eventBody(t, "order.created", "POS-OK", "ORD-1", 125)

		recorder := postEvent(t, router, body, signBody(body))
		require.Equal(t, http.StatusOK, recorder.Code)

		resp := decodeEventResponse(t, recorder)
		require.Equal(t, "applied", resp.Status)
		require.True(t, resp.Applied)
		require.Equal(t, 12, resp.PointsDelta)

		recorder = postEvent(t, router, body, signBody(body))
		require.Equal(t, http.StatusOK, recorder.Code)

		resp = decodeEventResponse(t, recorder)
		require.Equal(t, "already_applied", resp.Status)
		require.False(t, resp.Applied)

		account, err := loyaltySvc.GetAccount(ctx, user.ID)
		require.NoError(t, err)
		require.Equal(t, 12, account.TotalPoints)
		require.Equal(t, 1, account.VisitCount)
	})

	t.Run("ignores anonymous and unknown customers", func(t *testing.T) {
		db := newWebhookTestDB(t)
		router, _ := newWebhookTestRouter(t, db)

		body := eventBody(t, "order.created", "", "ORD-ANON", 50)
		recorder := postEvent(t, router, body, signBody(body))
		require.Equal(t, http.StatusOK, recorder.Code)
		require.Equal(t, "ignored", decodeEventResponse(t, recorder).Status)

		body = eventBody(t, "order.created", "POS-GHOST", "ORD-GHOST", 50)
		recorder = postEvent(t, router, body, signBody(body))
		require.Equal(t, http.StatusOK, recorder.Code)
		require.Equal(t, "ignored", decodeEventResponse(t, recorder).Status)
	})

	t.Run("reverses a deleted order exactly once", func(t *testing.T) {
		db := newWebhookTestDB(t)
		router, loyaltySvc := newWebhookTestRouter(t, db)
		user := linkWebhookAccount(t, db, "POS-DEL")

		created := eventBody(t, "order.created", "POS-DEL", "ORD-1", 200)
		recorder := postEvent(t, router, created, signBody(created))
		require.Equal(t, http.StatusOK, recorder.Code)

		deleted := eventBody(t, "order.deleted", "POS-DEL", "ORD-1", 0)
		recorder = postEvent(t, router, deleted, signBody(deleted))
		require.Equal(t, http.StatusOK, recorder.Code)

		resp := decodeEventResponse(t, recorder)
		require.Equal(t, "applied", resp.Status)
		require.Equal(t, -20, resp.PointsDelta)

		account, err := loyaltySvc.GetAccount(ctx, user.ID)
		require.NoError(t, err)
		require.Zero(t, account.TotalPoints)
		require.Zero(t, account.VisitCount)

		recorder = postEvent(t, router, deleted, signBody(deleted))
		require.Equal(t, http.StatusOK, recorder.Code)
		require.Equal(t, "already_reversed", decodeEventResponse(t, recorder).Status)
	})

	t.Run("rejects malformed payloads", func(t *testing.T) {
		db := newWebhookTestDB(t)
		router, _ := newWebhookTestRouter(t, db)

		body := []byte(`{"type":"order.updated","order_ref":"ORD-1"}`)
		recorder := postEvent(t, router, body, signBody(body))
		require.Equal(t, http.StatusBadRequest, recorder.Code)

		body = []byte(`not json`)
		recorder = postEvent(t, router, body, signBody(body))
		require.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}
