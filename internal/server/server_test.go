package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	authdomain "github.com/smallbiznis/backoffice/internal/auth/domain"
	"github.com/smallbiznis/backoffice/internal/clock"
	customerrepo "github.com/smallbiznis/backoffice/internal/customer/repository"
	customerservice "github.com/smallbiznis/backoffice/internal/customer/service"
	dashboarddomain "github.com/smallbiznis/backoffice/internal/dashboard/domain"
	dashboardrepo "github.com/smallbiznis/backoffice/internal/dashboard/repository"
	dashboardservice "github.com/smallbiznis/backoffice/internal/dashboard/service"
	documentrepo "github.com/smallbiznis/backoffice/internal/document/repository"
	documentservice "github.com/smallbiznis/backoffice/internal/document/service"
	inventoryrepo "github.com/smallbiznis/backoffice/internal/inventory/repository"
	inventoryservice "github.com/smallbiznis/backoffice/internal/inventory/service"
	"github.com/smallbiznis/backoffice/internal/observability"
	productrepo "github.com/smallbiznis/backoffice/internal/product/repository"
	productservice "github.com/smallbiznis/backoffice/internal/product/service"
	profilerepo "github.com/smallbiznis/backoffice/internal/profile/repository"
	profileservice "github.com/smallbiznis/backoffice/internal/profile/service"
	"github.com/smallbiznis/backoffice/internal/ratelimit"
	referencerepo "github.com/smallbiznis/backoffice/internal/reference/repository"
	referenceservice "github.com/smallbiznis/backoffice/internal/reference/service"
	"github.com/smallbiznis/backoffice/internal/testutil"
	"github.com/smallbiznis/backoffice/internal/usageguard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeAuthService struct {
	password string
	logins   int
}

func (f *fakeAuthService) CreateUser(ctx context.Context, req authdomain.CreateUserRequest) (*authdomain.User, error) {
	return &authdomain.User{ID: snowflake.ID(200), Username: req.Username, Email: req.Email}, nil
}

func (f *fakeAuthService) Login(ctx context.Context, req authdomain.LoginRequest) (*authdomain.User, error) {
	f.logins++
	if req.Password != f.password {
		return nil, authdomain.ErrInvalidCredentials
	}
	return &authdomain.User{ID: snowflake.ID(200), Username: req.Login, Role: authdomain.RoleAdmin, Active: true}, nil
}

func (f *fakeAuthService) ChangePassword(ctx context.Context, req authdomain.ChangePasswordRequest) error {
	if req.OldPassword != f.password {
		return authdomain.ErrInvalidCredentials
	}
	if len(req.NewPassword) < 8 {
		return authdomain.ErrWeakPassword
	}
	f.password = req.NewPassword
	return nil
}

type mockDashboardService struct {
	mock.Mock
}

func (m *mockDashboardService) Stats(ctx context.Context) (dashboarddomain.Stats, error) {
	args := m.Called(ctx)
	return args.Get(0).(dashboarddomain.Stats), args.Error(1)
}

type testServer struct {
	db     *gorm.DB
	node   *snowflake.Node
	router *gin.Engine
	auth   *fakeAuthService
}

func newTestServer(t *testing.T) testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conn := testutil.NewDB(t)
	node := testutil.NewNode(t)
	log := zap.NewNop()
	settings := testutil.Settings(nil)
	guard := usageguard.New(log)

	dashboard := dashboardservice.New(dashboardservice.Params{
		DB:       conn,
		Log:      log,
		Repo:     dashboardrepo.Provide(),
		Clock:    clock.New(),
		Settings: settings,
	})
	inventory := inventoryservice.New(inventoryservice.Params{
		DB:          conn,
		Log:         log,
		GenID:       node,
		Repo:        inventoryrepo.Provide(),
		Settings:    settings,
		Invalidator: dashboard,
	})
	engine := documentservice.NewEngine(documentservice.Params{
		DB:          conn,
		Log:         log,
		GenID:       node,
		Repo:        documentrepo.Provide(),
		Inventory:   inventory,
		Clock:       clock.New(),
		Invalidator: dashboard,
	})
	refParams := referenceservice.Params{
		DB:    conn,
		Log:   log,
		GenID: node,
		Repo:  referencerepo.Provide(),
		Guard: guard,
	}
	auth := &fakeAuthService{password: "correct-horse"}

	router := NewEngine(observability.Config{}, nil)
	NewServer(ServerParams{
		Gin:     router,
		Authsvc: auth,
		CustomerSvc: customerservice.New(customerservice.Params{
			DB:          conn,
			Log:         log,
			GenID:       node,
			Repo:        customerrepo.Provide(),
			Guard:       guard,
			Invalidator: dashboard,
		}),
		ProductSvc: productservice.New(productservice.Params{
			DB:          conn,
			Log:         log,
			GenID:       node,
			Repo:        productrepo.Provide(),
			Inventory:   inventory,
			Invalidator: dashboard,
		}),
		CategorySvc:  referenceservice.NewCategoryService(refParams),
		UnitSvc:      referenceservice.NewUnitService(refParams),
		InvoiceSvc:   documentservice.NewInvoiceService(engine),
		QuotationSvc: documentservice.NewQuotationService(engine),
		InventorySvc: inventory,
		DashboardSvc: dashboard,
		ProfileSvc: profileservice.New(profileservice.Params{
			DB:   conn,
			Log:  log,
			Repo: profilerepo.Provide(),
		}),
		LoginLimiter: &ratelimit.LoginLimiter{},
	})

	return testServer{db: conn, node: node, router: router, auth: auth}
}

type apiResponse struct {
	Success    bool              `json:"success"`
	Data       json.RawMessage   `json:"data"`
	Message    string            `json:"message"`
	Error      string            `json:"error"`
	Errors     []ValidationError `json:"errors"`
	Pagination *struct {
		Page       int   `json:"page"`
		Limit      int   `json:"limit"`
		Total      int64 `json:"total"`
		TotalPages int   `json:"totalPages"`
	} `json:"pagination"`
}

func (ts testServer) do(t *testing.T, method, path, body string) (int, apiResponse) {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)

	var resp apiResponse
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	}
	return rec.Code, resp
}

func dataID(t *testing.T, resp apiResponse) snowflake.ID {
	t.Helper()

	var payload struct {
		ID snowflake.ID `json:"id"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &payload))
	require.NotZero(t, payload.ID)
	return payload.ID
}

func (ts testServer) createCustomer(t *testing.T, name, email string) snowflake.ID {
	t.Helper()

	code, resp := ts.do(t, http.MethodPost, "/api/customers", fmt.Sprintf(`{"name":%q,"email":%q}`, name, email))
	require.Equal(t, http.StatusCreated, code, resp.Message)
	return dataID(t, resp)
}

func (ts testServer) createProduct(t *testing.T, sku string, stock int) snowflake.ID {
	t.Helper()

	body := fmt.Sprintf(`{"name":"Product %s","sku":%q,"unit":"pcs","price":"10.00","cost":"6.00","stock_quantity":"%d","min_stock":"1"}`, sku, sku, stock)
	code, resp := ts.do(t, http.MethodPost, "/api/products", body)
	require.Equal(t, http.StatusCreated, code, resp.Message)
	return dataID(t, resp)
}

func invoiceBody(number string, customerID, productID snowflake.ID, qty int) string {
	return fmt.Sprintf(`{
		"invoice": {"number":%q,"customer_id":"%s","issue_date":"2024-05-02","due_date":"2024-06-01","subtotal":"%d0","total":"%d0"},
		"items": [{"product_id":"%s","quantity":"%d","unit_price":"10","total":"%d0"}]
	}`, number, customerID, qty, qty, productID, qty, qty)
}

func TestHealthAndUnknownRoute(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	code, resp := ts.do(t, http.MethodGet, "/api/suppliers", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.False(t, resp.Success)
	assert.Equal(t, "not_found", resp.Error)
}

func TestInvoiceLifecycleOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	customerID := ts.createCustomer(t, "Acme", "ops@acme.test")
	productID := ts.createProduct(t, "BOLT-1", 10)

	code, resp := ts.do(t, http.MethodPost, "/api/invoices", invoiceBody("INV-001", customerID, productID, 3))
	require.Equal(t, http.StatusCreated, code, resp.Message)
	assert.True(t, resp.Success)
	invoiceID := dataID(t, resp)
	assert.True(t, testutil.Stock(t, ts.db, productID).Equal(decimal.NewFromInt(7)))

	code, resp = ts.do(t, http.MethodGet, "/api/invoices/"+invoiceID.String(), "")
	require.Equal(t, http.StatusOK, code)
	var doc struct {
		Number  string `json:"number"`
		DueDate string `json:"due_date"`
		Items   []struct {
			ProductSKU string `json:"product_sku"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &doc))
	assert.Equal(t, "INV-001", doc.Number)
	assert.True(t, strings.HasPrefix(doc.DueDate, "2024-06-01"))
	require.Len(t, doc.Items, 1)
	assert.Equal(t, "BOLT-1", doc.Items[0].ProductSKU)

	code, resp = ts.do(t, http.MethodPost, "/api/invoices", invoiceBody("INV-001", customerID, productID, 1))
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "conflict", resp.Error)

	code, resp = ts.do(t, http.MethodPost, "/api/invoices", invoiceBody("INV-002", customerID, productID, 50))
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "insufficient stock", resp.Message)
	assert.True(t, testutil.Stock(t, ts.db, productID).Equal(decimal.NewFromInt(7)))

	code, resp = ts.do(t, http.MethodPatch, "/api/invoices/"+invoiceID.String()+"/status", `{"status":"paid"}`)
	require.Equal(t, http.StatusOK, code)

	code, resp = ts.do(t, http.MethodGet, "/api/invoices?status=paid", "")
	require.Equal(t, http.StatusOK, code)
	require.NotNil(t, resp.Pagination)
	assert.Equal(t, int64(1), resp.Pagination.Total)

	code, _ = ts.do(t, http.MethodDelete, "/api/invoices/"+invoiceID.String(), "")
	require.Equal(t, http.StatusOK, code)
	assert.True(t, testutil.Stock(t, ts.db, productID).Equal(decimal.NewFromInt(10)))

	code, _ = ts.do(t, http.MethodGet, "/api/invoices/"+invoiceID.String(), "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestInvoiceValidationErrors(t *testing.T) {
	ts := newTestServer(t)
	customerID := ts.createCustomer(t, "Acme", "")

	body := fmt.Sprintf(`{"invoice":{"number":"INV-1","customer_id":"%s"},"items":[]}`, customerID)
	code, resp := ts.do(t, http.MethodPost, "/api/invoices", body)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "validation_error", resp.Error)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "empty_items", resp.Errors[0].Code)

	code, resp = ts.do(t, http.MethodPost, "/api/invoices", `{"items":[]}`)
	assert.Equal(t, http.StatusBadRequest, code)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "invoice", resp.Errors[0].Field)

	code, resp = ts.do(t, http.MethodPost, "/api/invoices", `{"invoice":`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "invalid_request", resp.Errors[0].Code)

	code, resp = ts.do(t, http.MethodGet, "/api/invoices/not-a-number", "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "invalid_id", resp.Errors[0].Code)
	assert.Equal(t, "id", resp.Errors[0].Field)
}

func TestCustomerDeleteRefusedWhileReferenced(t *testing.T) {
	ts := newTestServer(t)
	customerID := ts.createCustomer(t, "Acme", "ops@acme.test")
	productID := ts.createProduct(t, "BOLT-1", 10)

	code, _ := ts.do(t, http.MethodPost, "/api/invoices", invoiceBody("INV-001", customerID, productID, 1))
	require.Equal(t, http.StatusCreated, code)

	code, resp := ts.do(t, http.MethodGet, "/api/customers/"+customerID.String()+"/usage", "")
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"canDelete":false,"usageDetails":["1 invoice(s)"]}`, string(resp.Data))

	code, resp = ts.do(t, http.MethodDelete, "/api/customers/"+customerID.String(), "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Cannot delete customer", resp.Error)
	assert.Equal(t, "Customer is being used in: 1 invoice(s)", resp.Message)
	assert.Equal(t, int64(1), testutil.Count(t, ts.db, "customers", "id = ?", customerID))
}

func TestQuotationConvertOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	customerID := ts.createCustomer(t, "Acme", "")
	productID := ts.createProduct(t, "BOLT-1", 10)

	body := fmt.Sprintf(`{
		"quotation": {"number":"Q-001","customer_id":"%s","expiry_date":"2024-06-30","subtotal":"20","total":"20"},
		"items": [{"product_id":"%s","quantity":"2","unit_price":"10","total":"20"}]
	}`, customerID, productID)
	code, resp := ts.do(t, http.MethodPost, "/api/quotations", body)
	require.Equal(t, http.StatusCreated, code, resp.Message)
	quotationID := dataID(t, resp)
	assert.True(t, testutil.Stock(t, ts.db, productID).Equal(decimal.NewFromInt(10)))

	code, resp = ts.do(t, http.MethodPost, "/api/quotations/"+quotationID.String()+"/convert", `{"number":"INV-100"}`)
	require.Equal(t, http.StatusCreated, code, resp.Message)
	assert.True(t, testutil.Stock(t, ts.db, productID).Equal(decimal.NewFromInt(8)))
	assert.Equal(t, int64(1), testutil.Count(t, ts.db, "quotations", "id = ? AND status = ?", quotationID, "accepted"))

	code, resp = ts.do(t, http.MethodPost, "/api/quotations/"+quotationID.String()+"/convert", `{"number":"INV-101"}`)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "quotation cannot be converted", resp.Message)
}

func TestListPaginationIsClamped(t *testing.T) {
	ts := newTestServer(t)
	for i := 0; i < 3; i++ {
		ts.createCustomer(t, fmt.Sprintf("Customer %d", i), "")
	}

	code, resp := ts.do(t, http.MethodGet, "/api/customers?limit=5000&page=0", "")
	require.Equal(t, http.StatusOK, code)
	require.NotNil(t, resp.Pagination)
	assert.Equal(t, 1000, resp.Pagination.Limit)
	assert.Equal(t, 1, resp.Pagination.Page)
	assert.Equal(t, int64(3), resp.Pagination.Total)

	code, resp = ts.do(t, http.MethodGet, "/api/customers?limit=2&page=2", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 2, resp.Pagination.TotalPages)
	var customers []json.RawMessage
	require.NoError(t, json.Unmarshal(resp.Data, &customers))
	assert.Len(t, customers, 1)

	code, resp = ts.do(t, http.MethodGet, "/api/customers?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "invalid_limit", resp.Errors[0].Code)
}

func TestReferenceDataRoutes(t *testing.T) {
	ts := newTestServer(t)

	code, resp := ts.do(t, http.MethodPost, "/api/units", `{"name":"pcs","symbol":"pc"}`)
	require.Equal(t, http.StatusCreated, code)
	unitID := dataID(t, resp)

	code, resp = ts.do(t, http.MethodPost, "/api/units", `{"name":"pcs"}`)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "name already exists", resp.Message)

	ts.createProduct(t, "BOLT-1", 0)

	code, resp = ts.do(t, http.MethodDelete, "/api/units/"+unitID.String(), "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Cannot delete unit", resp.Error)

	code, resp = ts.do(t, http.MethodPost, "/api/categories", `{"name":"Hardware"}`)
	require.Equal(t, http.StatusCreated, code)
	categoryID := dataID(t, resp)

	code, resp = ts.do(t, http.MethodGet, "/api/categories/"+categoryID.String()+"/usage", "")
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"canDelete":true,"usageDetails":[]}`, string(resp.Data))

	code, _ = ts.do(t, http.MethodDelete, "/api/categories/"+categoryID.String(), "")
	assert.Equal(t, http.StatusOK, code)

	code, _ = ts.do(t, http.MethodGet, "/api/categories/"+categoryID.String(), "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestInventoryRoutes(t *testing.T) {
	ts := newTestServer(t)
	productID := ts.createProduct(t, "BOLT-1", 5)

	body := fmt.Sprintf(`{"product_id":"%s","type":"in","quantity":"4","reference_type":"purchase","notes":"restock"}`, productID)
	code, resp := ts.do(t, http.MethodPost, "/api/inventory/adjustments", body)
	require.Equal(t, http.StatusCreated, code, resp.Message)
	assert.True(t, testutil.Stock(t, ts.db, productID).Equal(decimal.NewFromInt(9)))

	body = fmt.Sprintf(`{"product_id":"%s","type":"out","quantity":"20","reference_type":"adjustment"}`, productID)
	code, _ = ts.do(t, http.MethodPost, "/api/inventory/adjustments", body)
	assert.Equal(t, http.StatusConflict, code)

	code, resp = ts.do(t, http.MethodGet, "/api/inventory/transactions?product_id="+productID.String(), "")
	require.Equal(t, http.StatusOK, code)
	require.NotNil(t, resp.Pagination)
	assert.Equal(t, int64(2), resp.Pagination.Total)
}

func TestDashboardStats(t *testing.T) {
	ts := newTestServer(t)
	customerID := ts.createCustomer(t, "Acme", "")
	productID := ts.createProduct(t, "BOLT-1", 10)
	code, _ := ts.do(t, http.MethodPost, "/api/invoices", invoiceBody("INV-001", customerID, productID, 2))
	require.Equal(t, http.StatusCreated, code)

	code, resp := ts.do(t, http.MethodGet, "/api/dashboard/stats", "")
	require.Equal(t, http.StatusOK, code)
	var stats struct {
		TotalInvoices  int64 `json:"total_invoices"`
		TotalCustomers int64 `json:"total_customers"`
		TotalProducts  int64 `json:"total_products"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &stats))
	assert.Equal(t, int64(1), stats.TotalInvoices)
	assert.Equal(t, int64(1), stats.TotalCustomers)
	assert.Equal(t, int64(1), stats.TotalProducts)
}

func TestProfileRoutes(t *testing.T) {
	ts := newTestServer(t)

	code, _ := ts.do(t, http.MethodGet, "/api/profile", "")
	assert.Equal(t, http.StatusNotFound, code)

	code, resp := ts.do(t, http.MethodPut, "/api/profile", `{"company_name":"Toko Maju","currency":"idr","default_tax_rate":"11"}`)
	require.Equal(t, http.StatusOK, code, resp.Message)

	code, resp = ts.do(t, http.MethodGet, "/api/profile", "")
	require.Equal(t, http.StatusOK, code)
	var profile struct {
		CompanyName string `json:"company_name"`
		Currency    string `json:"currency"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &profile))
	assert.Equal(t, "Toko Maju", profile.CompanyName)
	assert.Equal(t, "IDR", profile.Currency)

	code, resp = ts.do(t, http.MethodPut, "/api/profile", `{"company_name":"Toko Maju","default_tax_rate":"150"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "invalid_tax_rate", resp.Errors[0].Code)
}

func TestLoginRoutes(t *testing.T) {
	ts := newTestServer(t)

	code, resp := ts.do(t, http.MethodPost, "/api/auth/login", `{"username":"admin","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "unauthorized", resp.Error)

	code, resp = ts.do(t, http.MethodPost, "/api/auth/login", `{"email":"admin@example.com","password":"correct-horse"}`)
	require.Equal(t, http.StatusOK, code)
	var user struct {
		Username     string `json:"username"`
		PasswordHash string `json:"password_hash"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &user))
	assert.Equal(t, "admin@example.com", user.Username)
	assert.Empty(t, user.PasswordHash)

	code, resp = ts.do(t, http.MethodPost, "/api/auth/login", `{"password":"correct-horse"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, 2, ts.auth.logins)

	code, resp = ts.do(t, http.MethodPost, "/api/auth/change-password", `{"username":"admin","current_password":"correct-horse","new_password":"short"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "weak_password", resp.Errors[0].Code)

	code, _ = ts.do(t, http.MethodPost, "/api/auth/change-password", `{"username":"admin","current_password":"correct-horse","new_password":"battery-staple"}`)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "battery-staple", ts.auth.password)
}

func TestUnexpectedErrorsAreHidden(t *testing.T) {
	gin.SetMode(gin.TestMode)

	dashboard := &mockDashboardService{}
	dashboard.On("Stats", mock.Anything).Return(dashboarddomain.Stats{}, errors.New("pq: connection reset by peer"))

	router := NewEngine(observability.Config{}, nil)
	NewServer(ServerParams{Gin: router, DashboardSvc: dashboard})
	ts := testServer{router: router}

	code, resp := ts.do(t, http.MethodGet, "/api/dashboard/stats", "")
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.False(t, resp.Success)
	assert.Equal(t, "internal_error", resp.Error)
	assert.Equal(t, "internal server error", resp.Message)
	dashboard.AssertExpectations(t)
}
