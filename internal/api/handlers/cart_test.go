package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/coffeehaus/storefront/internal/api/handlers"
	"github.com/coffeehaus/storefront/internal/models"
	repository "github.com/coffeehaus/storefront/internal/repositories"
	service "github.com/coffeehaus/storefront/internal/services"
	"github.com/coffeehaus/storefront/internal/testutils"
	"github.com/coffeehaus/storefront/internal/utils/response"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCartHandlerTest() (*handlers.CartHandler, repository.CartStore) {
	store := repository.NewMemoryCartStore()
	cartHandler := handlers.NewCartHandler(service.NewCartService(store))

	return cartHandler, store
}

func addItemBody(t *testing.T, req models.AddItemRequest) *bytes.Buffer {
	t.Helper()

	body, err := json.Marshal(req)
	require.NoError(t, err)

	return bytes.NewBuffer(body)
}

func decodeAPIResponse(t *testing.T, recorder *httptest.ResponseRecorder) *response.APIResponse {
	t.Helper()

	var resp response.APIResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))

	return &resp
}

func TestCartHandler_AddItem(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		cartHandler, _ := setupCartHandlerTest()
		userID := uuid.New()

		body := addItemBody(t, models.AddItemRequest{
			ProductID: 42, Name: "latte", UnitPrice: "3.50", Quantity: 2,
		})
		req := testutils.CreateTestRequestWithContext(http.MethodPost, "/api/v1/cart/items", body, userID, nil)
		recorder := httptest.NewRecorder()

		cartHandler.AddItem()(recorder, req)

		assert.Equal(t, http.StatusOK, recorder.Code)

		resp := decodeAPIResponse(t, recorder)
		assert.True(t, resp.Success)
		assert.NotNil(t, resp.Data)
	})

	t.Run("Failure - Unauthenticated", func(t *testing.T) {
		cartHandler, _ := setupCartHandlerTest()

		body := addItemBody(t, models.AddItemRequest{
			ProductID: 42, Name: "latte", UnitPrice: "3.50", Quantity: 2,
		})
		req := testutils.CreateTestRequestWithoutContext(http.MethodPost, "/api/v1/cart/items", body, nil)
		recorder := httptest.NewRecorder()

		cartHandler.AddItem()(recorder, req)

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("Failure - Invalid Body", func(t *testing.T) {
		cartHandler, _ := setupCartHandlerTest()

		req := testutils.CreateTestRequestWithContext(http.MethodPost, "/api/v1/cart/items",
			bytes.NewBufferString("{"), uuid.New(), nil)
		recorder := httptest.NewRecorder()

		cartHandler.AddItem()(recorder, req)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("Failure - Unparseable Price", func(t *testing.T) {
		cartHandler, _ := setupCartHandlerTest()

		body := addItemBody(t, models.AddItemRequest{
			ProductID: 42, Name: "latte", UnitPrice: "free", Quantity: 2,
		})
		req := testutils.CreateTestRequestWithContext(http.MethodPost, "/api/v1/cart/items", body, uuid.New(), nil)
		recorder := httptest.NewRecorder()

		cartHandler.AddItem()(recorder, req)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("Failure - Zero Quantity On Absent Line", func(t *testing.T) {
		cartHandler, _ := setupCartHandlerTest()

		body := addItemBody(t, models.AddItemRequest{
			ProductID: 42, Name: "latte", UnitPrice: "3.50", Quantity: 0,
		})
		req := testutils.CreateTestRequestWithContext(http.MethodPost, "/api/v1/cart/items", body, uuid.New(), nil)
		recorder := httptest.NewRecorder()

		cartHandler.AddItem()(recorder, req)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)

		resp := decodeAPIResponse(t, recorder)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "NOT_IN_CART", resp.Error.Code)
	})
}

func TestCartHandler_GetCart(t *testing.T) {
	cartHandler, _ := setupCartHandlerTest()
	userID := uuid.New()

	// Seed via the add endpoint.
	body := addItemBody(t, models.AddItemRequest{
		ProductID: 42, Name: "latte", UnitPrice: "3.50", Quantity: 2,
	})
	addReq := testutils.CreateTestRequestWithContext(http.MethodPost, "/api/v1/cart/items", body, userID, nil)
	cartHandler.AddItem()(httptest.NewRecorder(), addReq)

	req := testutils.CreateTestRequestWithContext(http.MethodGet, "/api/v1/cart", nil, userID, nil)
	recorder := httptest.NewRecorder()

	cartHandler.GetCart()(recorder, req)

	assert.Equal(t, http.StatusOK, recorder.Code)

	resp := decodeAPIResponse(t, recorder)
	require.True(t, resp.Success)

	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)

	var snapshot models.CartSnapshot
	require.NoError(t, json.Unmarshal(data, &snapshot))
	assert.Equal(t, 2, snapshot.ItemCount)
	require.Contains(t, snapshot.Items, "42")
}

func TestCartHandler_AdjustItem(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		cartHandler, _ := setupCartHandlerTest()
		userID := uuid.New()

		body := addItemBody(t, models.AddItemRequest{
			ProductID: 42, Name: "latte", UnitPrice: "3.50", Quantity: 3,
		})
		addReq := testutils.CreateTestRequestWithContext(http.MethodPost, "/api/v1/cart/items", body, userID, nil)
		cartHandler.AddItem()(httptest.NewRecorder(), addReq)

		adjustBody, err := json.Marshal(models.AdjustItemRequest{ProductID: 42, Delta: -1})
		require.NoError(t, err)

		req := testutils.CreateTestRequestWithContext(http.MethodPatch, "/api/v1/cart/items",
			bytes.NewBuffer(adjustBody), userID, nil)
		recorder := httptest.NewRecorder()

		cartHandler.AdjustItem()(recorder, req)

		assert.Equal(t, http.StatusOK, recorder.Code)
	})

	t.Run("Failure - Zero Delta", func(t *testing.T) {
		cartHandler, _ := setupCartHandlerTest()

		// The validator rejects a zero delta before the service runs.
		adjustBody := []byte(`{"product_id": 42, "delta": 0}`)
		req := testutils.CreateTestRequestWithContext(http.MethodPatch, "/api/v1/cart/items",
			bytes.NewBuffer(adjustBody), uuid.New(), nil)
		recorder := httptest.NewRecorder()

		cartHandler.AdjustItem()(recorder, req)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}

func TestCartHandler_RemoveItem(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		cartHandler, _ := setupCartHandlerTest()
		userID := uuid.New()

		body := addItemBody(t, models.AddItemRequest{
			ProductID: 42, Name: "latte", UnitPrice: "3.50", Quantity: 1,
		})
		addReq := testutils.CreateTestRequestWithContext(http.MethodPost, "/api/v1/cart/items", body, userID, nil)
		cartHandler.AddItem()(httptest.NewRecorder(), addReq)

		req := testutils.CreateTestRequestWithContext(http.MethodDelete, "/api/v1/cart/items/42", nil, userID,
			map[string]string{"id": "42"})
		recorder := httptest.NewRecorder()

		cartHandler.RemoveItem()(recorder, req)

		assert.Equal(t, http.StatusOK, recorder.Code)
	})

	t.Run("Failure - Bad Product ID", func(t *testing.T) {
		cartHandler, _ := setupCartHandlerTest()

		req := testutils.CreateTestRequestWithContext(http.MethodDelete, "/api/v1/cart/items/abc", nil, uuid.New(),
			map[string]string{"id": "abc"})
		recorder := httptest.NewRecorder()

		cartHandler.RemoveItem()(recorder, req)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}

func TestCartHandler_ClearCart(t *testing.T) {
	cartHandler, _ := setupCartHandlerTest()
	userID := uuid.New()

	req := testutils.CreateTestRequestWithContext(http.MethodDelete, "/api/v1/cart", nil, userID, nil)
	recorder := httptest.NewRecorder()

	cartHandler.ClearCart()(recorder, req)

	assert.Equal(t, http.StatusOK, recorder.Code)
}
