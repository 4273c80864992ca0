package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"tienda/internal/app"
	"tienda/internal/config"
	"tienda/internal/database"
	"tienda/internal/models"
	"tienda/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	adminEmail = "admin@tienda.mx"
	sessionURL = "https://checkout.stripe.test/c/pay/cs_test_123"
)

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreateCheckoutSession(ctx context.Context, req services.PaymentSessionRequest) (*services.PaymentSession, error) {
	args := m.Called(ctx, req)
	session, _ := args.Get(0).(*services.PaymentSession)
	return session, args.Error(1)
}

type testEnv struct {
	app      *fiber.App
	stores   *database.Stores
	gateway  *MockGateway
	identity *services.IdentityService
}

// setupApp builds the full application over an in-memory SQLite database
// seeded with three products: p1, p2 and p3.
func setupApp(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	stores, err := database.Open(ctx, &config.Config{
		DBDriver:    config.DriverSQLite,
		DatabaseDSN: "file:" + uuid.New().String() + "?mode=memory&cache=shared",
	})
	require.NoError(t, err, "failed to open in-memory database")
	t.Cleanup(func() { stores.Close(ctx) })

	return setupAppWithStores(t, stores)
}

// setupAppWithStores builds the application over stores after seeding p1, p2 and p3.
func setupAppWithStores(t *testing.T, stores *database.Stores) *testEnv {
	t.Helper()
	seedProductsForTest(t, stores)

	gateway := new(MockGateway)
	identity := services.NewIdentityService("test_jwt_secret", "https://identity.test/", []string{adminEmail})
	svc := app.Services{
		Products: services.NewProductService(stores.Products),
		Orders:   services.NewOrderService(stores.Orders),
		Profiles: services.NewProfileService(stores.Profiles),
		Checkout: services.NewCheckoutService(stores.Products, stores.Orders, gateway, nil, "mxn", "http://localhost:3000"),
		Identity: identity,
	}

	return &testEnv{
		app:      app.New(svc, app.Options{}),
		stores:   stores,
		gateway:  gateway,
		identity: identity,
	}
}

func seedProductsForTest(t *testing.T, stores *database.Stores) {
	products := []models.Product{
		{ID: "p1", Name: "Taza", Description: "Taza de barro", Price: decimal.NewFromInt(100), Category: "Cocina", Photo: "/img/taza.jpg"},
		{ID: "p2", Name: "Rebozo", Description: "Rebozo de algodón", Price: decimal.NewFromInt(250), Category: "Textiles", Photo: "/img/rebozo.jpg"},
		{ID: "p3", Name: "Café", Description: "Café de Chiapas", Price: decimal.RequireFromString("12.50"), Category: "Despensa", Photo: "/img/cafe.jpg"},
	}
	for i := range products {
		require.NoError(t, stores.Products.Create(context.Background(), &products[i]))
	}
}

func (e *testEnv) token(t *testing.T, subject, email string) string {
	t.Helper()
	token, err := e.identity.IssueToken(models.AuthenticatedIdentity{Subject: subject, Email: email}, time.Hour)
	require.NoError(t, err)
	return token
}

func (e *testEnv) adminToken(t *testing.T) string {
	return e.token(t, "auth0|admin", adminEmail)
}

func (e *testEnv) do(t *testing.T, method, target string, body interface{}, token string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(jsonBody)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.app.Test(req, -1) // -1 for no timeout
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (e *testEnv) checkout(t *testing.T, form url.Values, origin string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/checkout", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func (e *testEnv) storedOrders(t *testing.T) []models.Order {
	t.Helper()
	orders, err := e.stores.Orders.GetAll(context.Background())
	require.NoError(t, err)
	return orders
}

func contactForm(products string) url.Values {
	return url.Values{
		"email":    {"ana@example.com"},
		"name":     {"Ana"},
		"address":  {"Av. Juárez 10"},
		"city":     {"CDMX"},
		"products": {products},
	}
}

// TestMain runs setup and teardown for all tests
func TestMain(m *testing.M) {
	// Suppress logging during tests for cleaner output
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func TestHealth(t *testing.T) {
	env := setupApp(t)

	resp := env.do(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]interface{}
	decode(t, resp, &body)
	assert.Equal(t, "healthy", body["status"])
}

func TestGetProducts(t *testing.T) {
	env := setupApp(t)

	resp := env.do(t, http.MethodGet, "/products", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var products []models.Product
	decode(t, resp, &products)
	assert.Len(t, products, 3)

	resp = env.do(t, http.MethodGet, "/products?ids=p3,,p1,p3", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	products = nil
	decode(t, resp, &products)
	ids := []string{}
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	assert.ElementsMatch(t, []string{"p1", "p3"}, ids)

	resp = env.do(t, http.MethodGet, "/products?ids=,,", nil, "")
	products = nil
	decode(t, resp, &products)
	assert.Len(t, products, 3, "a blank filter returns the whole catalog")

	resp = env.do(t, http.MethodGet, "/products/p2", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var raw map[string]interface{}
	decode(t, resp, &raw)
	assert.Equal(t, "Rebozo", raw["nombre"])
	assert.Equal(t, float64(250), raw["precio"])

	resp = env.do(t, http.MethodGet, "/products/missing", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAdminProductCRUD(t *testing.T) {
	env := setupApp(t)
	token := env.adminToken(t)

	newProduct := map[string]interface{}{
		"nombre":      "Sombrero",
		"descripcion": "Sombrero de palma",
		"precio":      320.5,
		"categoria":   "Accesorios",
		"foto":        "/img/sombrero.jpg",
	}
	resp := env.do(t, http.MethodPost, "/admin/edit-product", newProduct, token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created models.Product
	decode(t, resp, &created)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Sombrero", created.Name)
	assert.True(t, decimal.RequireFromString("320.5").Equal(created.Price))

	// Missing field
	resp = env.do(t, http.MethodPost, "/admin/edit-product", map[string]interface{}{"nombre": "Sin precio"}, token)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var validation map[string]interface{}
	decode(t, resp, &validation)
	assert.Equal(t, "Validation failed", validation["message"])
	assert.Contains(t, validation["errors"], "precio")

	// Update
	updated := map[string]interface{}{
		"_id":         created.ID,
		"nombre":      "Sombrero charro",
		"descripcion": "Sombrero de fieltro",
		"precio":      980,
		"categoria":   "Accesorios",
		"foto":        "/img/charro.jpg",
	}
	resp = env.do(t, http.MethodPut, "/admin/edit-product", updated, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updatedProduct models.Product
	decode(t, resp, &updatedProduct)
	assert.Equal(t, created.ID, updatedProduct.ID)
	assert.Equal(t, "Sombrero charro", updatedProduct.Name)

	// Update without _id
	delete(updated, "_id")
	resp = env.do(t, http.MethodPut, "/admin/edit-product", updated, token)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Update unknown product
	updated["_id"] = "does-not-exist"
	resp = env.do(t, http.MethodPut, "/admin/edit-product", updated, token)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Delete, twice
	for i := 0; i < 2; i++ {
		resp = env.do(t, http.MethodDelete, "/admin/edit-product", map[string]string{"_id": created.ID}, token)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	}
	resp = env.do(t, http.MethodGet, "/products/"+created.ID, nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Delete without _id
	resp = env.do(t, http.MethodDelete, "/admin/edit-product", nil, token)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Unsupported verb
	resp = env.do(t, http.MethodGet, "/admin/edit-product", nil, token)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Equal(t, "POST, PUT, DELETE", resp.Header.Get("Allow"))
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	env := setupApp(t)
	customer := env.token(t, "auth0|ana", "ana@example.com")
	body := map[string]string{"_id": "p1"}

	resp := env.do(t, http.MethodDelete, "/admin/edit-product", body, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = env.do(t, http.MethodDelete, "/admin/edit-product", body, "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = env.do(t, http.MethodDelete, "/admin/edit-product", body, customer)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/orders", nil, customer)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// The product is still there
	resp = env.do(t, http.MethodGet, "/products/p1", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestProfileEndpoints(t *testing.T) {
	env := setupApp(t)
	token := env.token(t, "auth0|ana", "ana@example.com")

	resp := env.do(t, http.MethodGet, "/profile", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/profile", nil, token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "null", strings.TrimSpace(string(raw)))

	resp = env.do(t, http.MethodPost, "/profile", map[string]string{"name": "Ana"}, token)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	input := map[string]string{"name": "Ana", "email": "ana@example.com", "address": "Av. Juárez 10", "postalCode": "06000"}
	resp = env.do(t, http.MethodPost, "/profile", input, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var first models.Profile
	decode(t, resp, &first)
	assert.Equal(t, "auth0|ana", first.Subject)
	assert.Equal(t, "06000", first.PostalCode)

	resp = env.do(t, http.MethodPost, "/profile", input, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var second models.Profile
	decode(t, resp, &second)
	assert.Equal(t, first.ID, second.ID, "saving the same input keeps a single record")

	resp = env.do(t, http.MethodGet, "/profile", nil, token)
	var fetched models.Profile
	decode(t, resp, &fetched)
	assert.Equal(t, first.ID, fetched.ID)
	assert.Equal(t, "Ana", fetched.Name)

	// Another identity sees its own, empty profile
	other := env.token(t, "auth0|luis", "luis@example.com")
	resp = env.do(t, http.MethodGet, "/profile", nil, other)
	raw, err = io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "null", strings.TrimSpace(string(raw)))

	resp = env.do(t, http.MethodPut, "/profile", input, token)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Equal(t, "GET, POST", resp.Header.Get("Allow"))

	// Authentication is checked before the method
	resp = env.do(t, http.MethodPut, "/profile", input, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCheckoutRedirectsToPaymentPage(t *testing.T) {
	env := setupApp(t)
	env.gateway.On("CreateCheckoutSession", mock.Anything, mock.MatchedBy(func(req services.PaymentSessionRequest) bool {
		return req.CustomerEmail == "ana@example.com" &&
			req.SuccessURL == "https://tienda.example/?success=true" &&
			req.CancelURL == "https://tienda.example/?canceled=true" &&
			len(req.Items) == 2
	})).Return(&services.PaymentSession{ID: "cs_test_123", URL: sessionURL}, nil).Once()

	resp := env.checkout(t, contactForm("p1,p2,p1"), "https://tienda.example")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, sessionURL, resp.Header.Get("Location"))
	env.gateway.AssertExpectations(t)

	orders := env.storedOrders(t)
	require.Len(t, orders, 1)
	order := orders[0]
	assert.False(t, order.Paid)
	assert.Equal(t, "Ana", order.Name)
	assert.Equal(t, "CDMX", order.City)

	quantities := map[string]int{}
	for _, item := range order.Items {
		quantities[item.ProductID] = item.Quantity
		assert.Equal(t, "mxn", item.Currency)
	}
	assert.Equal(t, map[string]int{"p1": 2, "p2": 1}, quantities)
	assert.True(t, decimal.NewFromInt(450).Equal(order.Total()))

	sent := env.gateway.Calls[0].Arguments.Get(1).(services.PaymentSessionRequest)
	assert.Equal(t, order.ID, sent.OrderID)

	// The admin order listing shows the stored order
	resp = env.do(t, http.MethodGet, "/orders", nil, env.adminToken(t))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var listed []models.Order
	decode(t, resp, &listed)
	require.Len(t, listed, 1)
	assert.Equal(t, order.ID, listed[0].ID)

	resp = env.do(t, http.MethodGet, "/orders/"+order.ID, nil, env.adminToken(t))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCheckoutAcceptsJSON(t *testing.T) {
	env := setupApp(t)
	env.gateway.On("CreateCheckoutSession", mock.Anything, mock.MatchedBy(func(req services.PaymentSessionRequest) bool {
		return req.SuccessURL == "http://localhost:3000/?success=true"
	})).Return(&services.PaymentSession{ID: "cs_test_456", URL: sessionURL}, nil).Once()

	body := map[string]string{
		"email": "ana@example.com", "name": "Ana", "address": "Av. Juárez 10", "city": "CDMX", "products": "p3",
	}
	resp := env.do(t, http.MethodPost, "/checkout", body, "")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	env.gateway.AssertExpectations(t)
}

func TestCheckoutRejectsBadInput(t *testing.T) {
	env := setupApp(t)

	resp := env.checkout(t, contactForm(" , ,"), "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	form := contactForm("p1")
	form.Set("email", "not-an-email")
	resp = env.checkout(t, form, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.checkout(t, contactForm("p1,ghost"), "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	assert.Empty(t, env.storedOrders(t), "rejected checkouts store nothing")
	env.gateway.AssertNotCalled(t, "CreateCheckoutSession", mock.Anything, mock.Anything)

	resp = env.do(t, http.MethodGet, "/checkout", nil, "")
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Equal(t, "POST", resp.Header.Get("Allow"))
}

func TestCheckoutPaymentFailureLeavesUnpaidOrder(t *testing.T) {
	env := setupApp(t)
	env.gateway.On("CreateCheckoutSession", mock.Anything, mock.Anything).
		Return(nil, errors.New("stripe: connection reset")).Once()

	resp := env.checkout(t, contactForm("p2"), "https://tienda.example")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Empty(t, resp.Header.Get("Location"))

	orders := env.storedOrders(t)
	require.Len(t, orders, 1)
	assert.False(t, orders[0].Paid)
}

func TestCheckoutOrdersKeepTheirContactDetails(t *testing.T) {
	env := setupAppWithStores(t, database.NewMemoryStores())
	env.gateway.On("CreateCheckoutSession", mock.Anything, mock.Anything).
		Return(&services.PaymentSession{ID: "cs_test_789", URL: sessionURL}, nil)

	first := contactForm("p1")
	first.Set("name", "AAAAAAAAAAAA")
	first.Set("city", "Oaxaca")
	resp := env.checkout(t, first, "")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	for i := 0; i < 20; i++ {
		later := contactForm("p2")
		later.Set("name", "ZZZZZZZZZZZZ")
		later.Set("city", "Puebla")
		resp = env.checkout(t, later, "")
		require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	}

	names := map[string]int{}
	cities := map[string]int{}
	for _, order := range env.storedOrders(t) {
		names[order.Name]++
		cities[order.City]++
	}
	assert.Equal(t, map[string]int{"AAAAAAAAAAAA": 1, "ZZZZZZZZZZZZ": 20}, names)
	assert.Equal(t, map[string]int{"Oaxaca": 1, "Puebla": 20}, cities)
}
