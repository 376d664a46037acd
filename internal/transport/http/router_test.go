package httptransport

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/icnevudila/crm-sub011/internal/activity"
	"github.com/icnevudila/crm-sub011/internal/approval"
	"github.com/icnevudila/crm-sub011/internal/assist"
	authhandler "github.com/icnevudila/crm-sub011/internal/auth/handler"
	"github.com/icnevudila/crm-sub011/internal/auth/models"
	authservice "github.com/icnevudila/crm-sub011/internal/auth/service"
	sessionstore "github.com/icnevudila/crm-sub011/internal/auth/store/session"
	userstore "github.com/icnevudila/crm-sub011/internal/auth/store/user"
	"github.com/icnevudila/crm-sub011/internal/auth/token"
	"github.com/icnevudila/crm-sub011/internal/company"
	"github.com/icnevudila/crm-sub011/internal/customer"
	"github.com/icnevudila/crm-sub011/internal/deal"
	"github.com/icnevudila/crm-sub011/internal/invoice"
	"github.com/icnevudila/crm-sub011/internal/notification"
	"github.com/icnevudila/crm-sub011/internal/platform/authz"
	"github.com/icnevudila/crm-sub011/internal/platform/health"
	"github.com/icnevudila/crm-sub011/internal/quote"
	"github.com/icnevudila/crm-sub011/internal/report"
	"github.com/icnevudila/crm-sub011/internal/shipment"
	"github.com/icnevudila/crm-sub011/internal/task"
	"github.com/icnevudila/crm-sub011/internal/ticket"
	"github.com/icnevudila/crm-sub011/internal/vendor"
	id "github.com/icnevudila/crm-sub011/pkg/domain"
)

const testPassword = "hunter2!"

// RouterSuite exercises the wired HTTP surface end to end against the
// in-memory stores: authentication, tenant scoping, and the permission table.
type RouterSuite struct {
	suite.Suite
	router http.Handler

	companyA id.CompanyID
	companyB id.CompanyID
}

func (s *RouterSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	companies := company.NewInMemory()
	users := userstore.NewInMemory()
	customers := customer.NewInMemory()
	deals := deal.NewInMemory()
	invoices := invoice.NewInMemory()
	quotes := quote.NewInMemory()
	tickets := ticket.NewInMemory()

	now := time.Now()
	s.companyA = s.seedCompany(companies, "Acme", now)
	s.companyB = s.seedCompany(companies, "Globex", now)

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	s.Require().NoError(err)
	seedUser := func(email string, companyID id.CompanyID, role authz.Role) {
		s.Require().NoError(users.Create(context.Background(), &models.User{
			ID:           id.NewUserID(),
			CompanyID:    companyID,
			Email:        email,
			Name:         email,
			Role:         role,
			PasswordHash: string(hash),
			Status:       models.UserActive,
			CreatedAt:    now,
		}))
	}
	seedUser("admin.a@acme.example", s.companyA, authz.RoleAdmin)
	seedUser("admin.b@globex.example", s.companyB, authz.RoleAdmin)
	seedUser("support.a@acme.example", s.companyA, authz.RoleSupport)
	s.Require().NoError(users.Create(context.Background(), &models.User{
		ID:           id.NewUserID(),
		Email:        "root@crm.example",
		Name:         "root",
		Role:         authz.RoleSuperAdmin,
		PasswordHash: string(hash),
		Status:       models.UserActive,
		CreatedAt:    now,
	}))

	s.seedCustomer(customers, s.companyA, "Northwind")
	s.seedCustomer(customers, s.companyA, "Initech")
	s.seedCustomer(customers, s.companyB, "Stark")

	codec := token.NewCodec("test-secret")
	companySvc := company.NewService(companies, logger)
	authSvc := authservice.New(users, sessionstore.NewInMemory(), companySvc, codec, time.Hour, logger)

	recorder := activity.NewService(activity.NewInMemory(), logger)
	notifier := notification.NewService(notification.NewInMemory(), logger)

	customerSvc := customer.NewService(customers, recorder, logger)
	vendorSvc := vendor.NewService(vendor.NewInMemory(), recorder, logger)
	dealSvc := deal.NewService(deals, customers, recorder, notifier, logger)
	invoiceSvc := invoice.NewService(invoices, customers, recorder, logger)
	quoteSvc := quote.NewService(quotes, customers, invoiceSvc, recorder, logger)
	shipmentSvc := shipment.NewService(shipment.NewInMemory(), customers, recorder, logger)
	taskSvc := task.NewService(task.NewInMemory(), recorder, notifier, logger)
	ticketSvc := ticket.NewService(tickets, recorder, notifier, logger)
	approvalSvc := approval.NewService(approval.NewInMemory(), recorder, notifier, logger)
	reportSvc := report.NewService(report.NewInMemoryCache(), customers, deals, invoices, tickets, time.Hour, logger)
	assistSvc := assist.NewService(nil, customers, deals, logger)

	s.router = NewRouter(Handlers{
		Auth:         authhandler.New(authSvc, logger),
		Company:      company.NewHandler(companySvc, logger),
		Customer:     customer.NewHandler(customerSvc, logger),
		Vendor:       vendor.NewHandler(vendorSvc, logger),
		Deal:         deal.NewHandler(dealSvc, logger),
		Quote:        quote.NewHandler(quoteSvc, logger),
		Invoice:      invoice.NewHandler(invoiceSvc, logger),
		Shipment:     shipment.NewHandler(shipmentSvc, logger),
		Task:         task.NewHandler(taskSvc, logger),
		Ticket:       ticket.NewHandler(ticketSvc, logger),
		Approval:     approval.NewHandler(approvalSvc, logger),
		Notification: notification.NewHandler(notifier, logger),
		Activity:     activity.NewHandler(recorder, logger),
		Report:       report.NewHandler(reportSvc, logger),
		Assist:       assist.NewHandler(assistSvc, logger),
		Health:       health.New("test"),
	}, codec, authSvc, logger)
}

func (s *RouterSuite) seedCompany(store company.Store, name string, now time.Time) id.CompanyID {
	c := &company.Company{
		ID:        id.NewCompanyID(),
		Name:      name,
		Status:    company.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.Require().NoError(store.CreateIfNameAvailable(context.Background(), c))
	return c.ID
}

func (s *RouterSuite) seedCustomer(store customer.Store, companyID id.CompanyID, name string) {
	s.Require().NoError(store.Create(context.Background(), &customer.Customer{
		ID:        id.NewCustomerID(),
		CompanyID: companyID,
		Name:      name,
	}))
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) login(email string) *http.Cookie {
	body, err := json.Marshal(map[string]string{"email": email, "password": testPassword})
	s.Require().NoError(err)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Require().Equal(http.StatusOK, rec.Code, "login should succeed: %s", rec.Body.String())

	for _, c := range rec.Result().Cookies() {
		if c.Name == token.CookieName {
			return c
		}
	}
	s.Require().FailNow("login response carries no session cookie")
	return nil
}

func (s *RouterSuite) do(method, path string, cookie *http.Cookie, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *RouterSuite) TestUnauthenticatedRequestsAreRejected() {
	rec := s.do(http.MethodGet, "/customers", nil, nil)
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *RouterSuite) TestHealthIsPublic() {
	rec := s.do(http.MethodGet, "/health/live", nil, nil)
	s.Equal(http.StatusOK, rec.Code)
}

func (s *RouterSuite) TestLoginListLogoutFlow() {
	cookie := s.login("admin.a@acme.example")

	rec := s.do(http.MethodGet, "/customers", cookie, nil)
	s.Require().Equal(http.StatusOK, rec.Code)

	var payload struct {
		Customers []struct {
			Name string `json:"name"`
		} `json:"customers"`
	}
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &payload))
	s.Len(payload.Customers, 2, "tenant A sees only its own customers")
	for _, c := range payload.Customers {
		s.NotEqual("Stark", c.Name, "tenant B data must not leak")
	}

	rec = s.do(http.MethodPost, "/auth/logout", cookie, nil)
	s.Require().Equal(http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/customers", cookie, nil)
	s.Equal(http.StatusUnauthorized, rec.Code, "a logged-out session must be rejected")
}

func (s *RouterSuite) TestSuperAdminSeesAllTenants() {
	cookie := s.login("root@crm.example")

	rec := s.do(http.MethodGet, "/customers", cookie, nil)
	s.Require().Equal(http.StatusOK, rec.Code)

	var payload struct {
		Customers []json.RawMessage `json:"customers"`
	}
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &payload))
	s.Len(payload.Customers, 3)
}

func (s *RouterSuite) TestCompanyManagementIsSuperAdminOnly() {
	admin := s.login("admin.a@acme.example")
	rec := s.do(http.MethodGet, "/companies", admin, nil)
	s.Equal(http.StatusForbidden, rec.Code)

	root := s.login("root@crm.example")
	rec = s.do(http.MethodGet, "/companies", root, nil)
	s.Equal(http.StatusOK, rec.Code)
}

func (s *RouterSuite) TestPermissionTableGovernsWrites() {
	support := s.login("support.a@acme.example")

	// Support may read customers but not write deals.
	rec := s.do(http.MethodGet, "/customers", support, nil)
	s.Equal(http.StatusOK, rec.Code)

	body, _ := json.Marshal(map[string]any{"title": "Side deal", "customerId": id.NewCustomerID().String()})
	rec = s.do(http.MethodPost, "/deals", support, body)
	s.Equal(http.StatusForbidden, rec.Code)

	// Reports are off-limits for support entirely.
	rec = s.do(http.MethodGet, "/reports/overview", support, nil)
	s.Equal(http.StatusForbidden, rec.Code)
}

func (s *RouterSuite) TestAssistUnconfiguredAnswers503() {
	admin := s.login("admin.a@acme.example")
	body, _ := json.Marshal(map[string]string{"customerId": id.NewCustomerID().String()})
	rec := s.do(http.MethodPost, "/assist/followup-email", admin, body)
	s.Equal(http.StatusServiceUnavailable, rec.Code)
}

func (s *RouterSuite) TestReportEndpointMarksCacheState() {
	admin := s.login("admin.a@acme.example")

	rec := s.do(http.MethodGet, "/reports/customer_summary", admin, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var first report.Result
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &first))
	s.False(first.Cached)

	rec = s.do(http.MethodGet, "/reports/customer_summary", admin, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var second report.Result
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &second))
	s.True(second.Cached)
	s.JSONEq(string(first.Data), string(second.Data))
}
