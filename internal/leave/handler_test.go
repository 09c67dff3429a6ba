package leave_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/frahmantamala/leave-request/internal"
	"github.com/frahmantamala/leave-request/internal/auth"
	leaveDatamodel "github.com/frahmantamala/leave-request/internal/core/datamodel/leave"
	"github.com/frahmantamala/leave-request/internal/leave"
	"github.com/frahmantamala/leave-request/internal/leave/gormstore"
	"github.com/frahmantamala/leave-request/internal/storage"
	"github.com/frahmantamala/leave-request/internal/transport"
	"github.com/frahmantamala/leave-request/internal/transport/rest"
	"github.com/frahmantamala/leave-request/internal/user"
	userstore "github.com/frahmantamala/leave-request/internal/user/gormstore"
	"github.com/frahmantamala/leave-request/web"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type testApp struct {
	router http.Handler
	store  *storage.Store
}

func newTestApp(notifier leave.Notifier, calendar leave.EventCreator) testApp {
	ctx := context.Background()

	store, err := storage.Open(internal.DatabaseConfig{
		Driver: "sqlite",
		Source: filepath.Join(GinkgoT().TempDir(), "leave.db"),
	}, testLogger)
	Expect(err).NotTo(HaveOccurred())
	DeferCleanup(store.Close)

	Expect(store.Initialize(ctx, internal.DefaultUserConfig{
		Email:    "admin@x.com",
		Password: "admin-password",
	})).To(Succeed())

	tmpl, err := web.Templates()
	Expect(err).NotTo(HaveOccurred())
	base := transport.NewBaseHandler(testLogger).WithTemplates(tmpl)

	service := leave.NewService(gormstore.NewLeaveRepository(store.DB()), notifier, calendar,
		leave.Config{Recipients: []string{"hr@x.com"}, Location: time.UTC}, testLogger)

	users := userstore.NewUserRepository(store.DB())
	authService := auth.NewService(users, auth.NewJWTTokenGenerator("test-secret-key-0123456789", time.Hour), testLogger)

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, store.SQL(), store.Dialect(), rest.Handlers{
		Leave: leave.NewHandler(base, service),
		Auth:  auth.NewHandler(base, authService),
		User:  user.NewHandler(base, user.NewService(users)),
	}, testLogger)

	return testApp{router: router, store: store}
}

func (a testApp) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a testApp) submit(form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/apply", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return a.do(req)
}

func (a testApp) rows() []leaveDatamodel.LeaveApplication {
	var rows []leaveDatamodel.LeaveApplication
	Expect(a.store.DB().Order("id").Find(&rows).Error).To(Succeed())
	return rows
}

func janeForm() url.Values {
	return url.Values{
		"name":         {"Jane Doe"},
		"email":        {"jane@x.com"},
		"leave_days":   {"3"},
		"leave_period": {"2024-05-01..2024-05-03"},
		"reason":       {"vacation"},
	}
}

var _ = Describe("Handler", func() {
	var (
		notifier *fakeNotifier
		cal      *fakeCalendar
		app      testApp
	)

	BeforeEach(func() {
		notifier = &fakeNotifier{}
		cal = &fakeCalendar{}
		app = newTestApp(notifier, cal)
	})

	Describe("GET /", func() {
		It("should render the form", func() {
			rec := app.do(httptest.NewRequest(http.MethodGet, "/", nil))
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Header().Get("Content-Type")).To(HavePrefix("text/html"))
			Expect(rec.Body.String()).To(ContainSubstring(`action="/apply"`))
			Expect(rec.Body.String()).To(ContainSubstring(`name="leave_period"`))
		})
	})

	Describe("GET /ping", func() {
		It("should answer with a plaintext pong", func() {
			rec := app.do(httptest.NewRequest(http.MethodGet, "/ping", nil))
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(ContainSubstring("Pong"))
		})
	})

	Describe("POST /apply", func() {
		It("should record Jane Doe's application and confirm it", func() {
			rec := app.submit(janeForm())

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(ContainSubstring("Jane Doe"))
			Expect(rec.Body.String()).To(ContainSubstring("pending"))

			rows := app.rows()
			Expect(rows).To(HaveLen(1))
			Expect(rows[0].Name).To(Equal("Jane Doe"))
			Expect(rows[0].Status).To(Equal("pending"))

			sent := notifier.sent()
			Expect(sent).To(HaveLen(1))
			Expect(sent[0].To).To(Equal([]string{"hr@x.com"}))
			Expect(sent[0].Text).To(ContainSubstring("Jane Doe"))
			Expect(sent[0].Text).To(ContainSubstring("2024-05-01..2024-05-03"))

			calls := cal.recorded()
			Expect(calls).To(HaveLen(1))
			Expect(calls[0].Summary).To(ContainSubstring("Jane Doe"))
		})

		It("should re-render the form for an empty name", func() {
			form := janeForm()
			form.Set("name", "")

			rec := app.submit(form)

			Expect(rec.Code).To(Equal(http.StatusUnprocessableEntity))
			Expect(rec.Body.String()).To(ContainSubstring("name is required"))
			Expect(rec.Body.String()).To(ContainSubstring(`value="jane@x.com"`))
			Expect(app.rows()).To(BeEmpty())
			Expect(notifier.sent()).To(BeEmpty())
			Expect(cal.recorded()).To(BeEmpty())
		})

		It("should return the same page when the notification cannot be scheduled", func() {
			expected := app.submit(janeForm())

			failing := newTestApp(&fakeNotifier{err: errBoom}, &fakeCalendar{})
			rec := failing.submit(janeForm())

			Expect(rec.Code).To(Equal(expected.Code))
			Expect(rec.Body.String()).To(Equal(expected.Body.String()))
			Expect(failing.rows()).To(HaveLen(1))
		})

		It("should report partial success when the calendar fails", func() {
			cal.err = errBoom

			rec := app.submit(janeForm())

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(ContainSubstring("calendar sync did not complete"))

			rows := app.rows()
			Expect(rows).To(HaveLen(1))
			Expect(rows[0].Status).To(Equal("pending"))
			Expect(rows[0].LeavePeriod).To(Equal("2024-05-01..2024-05-03"))
		})

		It("should render the error page when the store is unavailable", func() {
			Expect(app.store.Close()).To(Succeed())

			rec := app.submit(janeForm())

			Expect(rec.Code).To(Equal(http.StatusInternalServerError))
			Expect(rec.Body.String()).To(ContainSubstring("could not be saved"))
			Expect(notifier.sent()).To(BeEmpty())
		})
	})

	Describe("admin API", func() {
		var token string

		login := func(password string) *httptest.ResponseRecorder {
			body := `{"email":"admin@x.com","password":"` + password + `"}`
			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			return app.do(req)
		}

		authed := func(method, path string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(method, path, nil)
			req.Header.Set("Authorization", "Bearer "+token)
			return app.do(req)
		}

		BeforeEach(func() {
			Expect(app.submit(janeForm()).Code).To(Equal(http.StatusOK))

			rec := login("admin-password")
			Expect(rec.Code).To(Equal(http.StatusOK))

			var tokens auth.AuthTokens
			Expect(json.Unmarshal(rec.Body.Bytes(), &tokens)).To(Succeed())
			token = tokens.AccessToken
		})

		It("should refuse a wrong password", func() {
			Expect(login("wrong").Code).To(Equal(http.StatusUnauthorized))
		})

		It("should require a token", func() {
			rec := app.do(httptest.NewRequest(http.MethodGet, "/api/v1/applications", nil))
			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		})

		It("should list applications", func() {
			rec := authed(http.MethodGet, "/api/v1/applications?status=pending")
			Expect(rec.Code).To(Equal(http.StatusOK))

			var resp leave.ListResponse
			Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Applications).To(HaveLen(1))
			Expect(resp.Applications[0].Name).To(Equal("Jane Doe"))
		})

		It("should return the current user", func() {
			rec := authed(http.MethodGet, "/api/v1/users/me")
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(ContainSubstring("admin@x.com"))
			Expect(rec.Body.String()).NotTo(ContainSubstring("$2a$"))
		})

		It("should approve once and then conflict", func() {
			rec := authed(http.MethodPatch, "/api/v1/applications/1/approve")
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(ContainSubstring(`"status":"approved"`))

			rec = authed(http.MethodPatch, "/api/v1/applications/1/reject")
			Expect(rec.Code).To(Equal(http.StatusConflict))

			Expect(app.rows()[0].Status).To(Equal("approved"))

			sent := notifier.sent()
			Expect(sent).To(HaveLen(2))
			Expect(sent[1].To).To(Equal([]string{"jane@x.com"}))
		})

		It("should return 404 for an unknown application", func() {
			Expect(authed(http.MethodGet, "/api/v1/applications/99").Code).To(Equal(http.StatusNotFound))
		})

		It("should return 400 for a malformed id", func() {
			Expect(authed(http.MethodGet, "/api/v1/applications/abc").Code).To(Equal(http.StatusBadRequest))
		})
	})
})
