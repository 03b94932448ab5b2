package client

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/legalcms/backend/internal/db"
	"github.com/legalcms/backend/internal/models"
	"github.com/legalcms/backend/internal/repository"
	"github.com/legalcms/backend/internal/routes"
	"github.com/legalcms/backend/internal/services"
	"github.com/legalcms/backend/internal/session"
	"github.com/legalcms/backend/internal/storage"
)

type seeded struct {
	url    string
	admin  string
	staff  string
	client string
}

func newServer(t *testing.T) seeded {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb, err := db.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	store, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	svc := services.New(repository.NewGormRepositories(gdb), services.Options{
		Issuer:         session.NewIssuer("client-test", time.Hour),
		Store:          store,
		Location:       time.UTC,
		MaxUploadBytes: 1 << 20,
	})

	ids := map[models.UserRole]string{}
	for _, u := range []services.UserInput{
		{Name: "Ada Admin", Email: "admin@firm.test", Password: "password123", Role: models.RoleAdmin},
		{Name: "Sam Staff", Email: "staff@firm.test", Password: "password123", Role: models.RoleStaff},
		{Name: "Cleo Client", Email: "client@firm.test", Password: "password123", Role: models.RoleClient},
	} {
		created, err := svc.Users.Create(context.Background(), u)
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
		ids[u.Role] = created.ID
	}

	srv := httptest.NewServer(routes.NewRouter(routes.Dependencies{DB: gdb, Services: svc}))
	t.Cleanup(srv.Close)
	return seeded{url: srv.URL, admin: ids[models.RoleAdmin], staff: ids[models.RoleStaff], client: ids[models.RoleClient]}
}

func TestClientErrors(t *testing.T) {
	s := newServer(t)
	ctx := context.Background()
	c := New(s.url)

	_, err := c.Login(ctx, "staff@firm.test", "password123", "client")
	if StatusOf(err) != http.StatusForbidden {
		t.Fatalf("expected 403, got %v", err)
	}
	if err.(*APIError).Message != "Invalid credentials" {
		t.Errorf("message = %q", err.(*APIError).Message)
	}

	if _, err := c.Cases(ctx, CaseFilter{}); StatusOf(err) != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %v", err)
	}

	h, err := c.Health(ctx)
	if err != nil || h.Status != "ok" {
		t.Fatalf("health = %+v, %v", h, err)
	}
}

func TestClientWorkflow(t *testing.T) {
	s := newServer(t)
	ctx := context.Background()
	c := New(s.url)

	sess, err := c.Login(ctx, "staff@firm.test", "password123", "practitioner")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if sess.Role != "STAFF" || c.Token() == "" {
		t.Fatalf("unexpected session %+v", sess)
	}

	cs, err := c.CreateCase(ctx, CaseInput{CaseNumber: "C-1", Title: "Lease", Description: "d", ClientID: s.client, StaffID: s.staff})
	if err != nil {
		t.Fatalf("create case: %v", err)
	}
	if cs.Client == nil || cs.Client.Name != "Cleo Client" {
		t.Errorf("missing client summary: %+v", cs.Client)
	}

	start := time.Date(2024, 5, 6, 10, 0, 0, 0, time.UTC)
	appt, err := c.CreateAppointment(ctx, AppointmentInput{
		Title: "Intake", Description: "first meeting", Date: start, Duration: 60,
		ClientID: s.client, StaffID: s.staff, CaseID: cs.ID,
	})
	if err != nil {
		t.Fatalf("create appointment: %v", err)
	}
	if appt.Case == nil || appt.Case.CaseNumber != "C-1" {
		t.Errorf("missing case summary: %+v", appt.Case)
	}

	_, err = c.CreateAppointment(ctx, AppointmentInput{
		Title: "Overlap", Description: "x", Date: start.Add(30 * time.Minute), Duration: 30,
		ClientID: s.client, StaffID: s.staff,
	})
	if StatusOf(err) != http.StatusBadRequest {
		t.Fatalf("expected conflict 400, got %v", err)
	}

	list, err := c.Appointments(ctx, AppointmentFilter{Date: "2024-05-06"})
	if err != nil || len(list) != 1 {
		t.Fatalf("appointments on day = %d, %v", len(list), err)
	}

	doc, err := c.UploadDocument(ctx, cs.ID, "Lease", "lease.txt", strings.NewReader("lease terms"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	link, body, err := c.DownloadDocument(ctx, doc.ID)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	if link != "" || body == nil {
		t.Fatalf("expected streamed body from local storage")
	}
	data, _ := io.ReadAll(body)
	body.Close()
	if string(data) != "lease terms" {
		t.Errorf("downloaded %q", data)
	}

	if _, err := c.SendMessage(ctx, s.client, "See you Monday"); err != nil {
		t.Fatalf("send: %v", err)
	}
	msgs, err := c.Messages(ctx, s.client)
	if err != nil || len(msgs) != 1 || msgs[0].SenderID != sess.ID {
		t.Fatalf("messages = %+v, %v", msgs, err)
	}

	if err := c.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if c.Token() != "" {
		t.Errorf("token kept after logout")
	}
}

func TestDataStoreRefreshesAfterMutations(t *testing.T) {
	s := newServer(t)
	ctx := context.Background()
	store := NewDataStore(New(s.url))

	user, err := store.Login(ctx, "staff@firm.test", "password123", "practitioner")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.Email != "staff@firm.test" {
		t.Fatalf("current user = %+v", user)
	}
	if len(store.Users()) != 3 {
		t.Errorf("users cached = %d, want 3", len(store.Users()))
	}
	if _, ok := store.FindUserByID(s.client); !ok {
		t.Errorf("client not found in cache")
	}

	cs, err := store.CreateCase(ctx, CaseInput{CaseNumber: "C-7", Title: "Will", Description: "d", ClientID: s.client, StaffID: s.staff})
	if err != nil {
		t.Fatalf("create case: %v", err)
	}
	if len(store.Cases()) != 1 {
		t.Fatalf("cases cached = %d, want 1", len(store.Cases()))
	}

	closed := "Closed"
	if _, err := store.UpdateCase(ctx, cs.ID, CaseUpdate{Status: &closed}); err != nil {
		t.Fatalf("update case: %v", err)
	}
	if got := store.Cases()[0].Status; got != "Closed" {
		t.Errorf("cached status = %q", got)
	}

	copied := store.Cases()
	copied[0].Title = "mutated"
	copied[0].Client.Name = "mutated"
	if fresh := store.Cases()[0]; fresh.Title == "mutated" || fresh.Client.Name == "mutated" {
		t.Errorf("cache shares state with callers")
	}

	if _, err := store.UploadDocument(ctx, cs.ID, "", "will.txt", strings.NewReader("last will")); err != nil {
		t.Fatalf("upload: %v", err)
	}
	if len(store.DocumentsForCase(cs.ID)) != 1 {
		t.Errorf("documents for case = %d", len(store.DocumentsForCase(cs.ID)))
	}

	if err := store.DeleteCase(ctx, cs.ID); err != nil {
		t.Fatalf("delete case: %v", err)
	}
	if len(store.Cases()) != 0 {
		t.Errorf("case still cached after delete")
	}

	if err := store.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if store.CurrentUser() != nil || len(store.Documents()) != 0 {
		t.Errorf("cache not cleared on logout")
	}
}

func TestDataStoreClientSeesOwnCases(t *testing.T) {
	s := newServer(t)
	ctx := context.Background()

	staff := NewDataStore(New(s.url))
	if _, err := staff.Login(ctx, "staff@firm.test", "password123", "practitioner"); err != nil {
		t.Fatal(err)
	}
	if _, err := staff.CreateCase(ctx, CaseInput{CaseNumber: "C-1", Title: "t", Description: "d", ClientID: s.client, StaffID: s.staff}); err != nil {
		t.Fatal(err)
	}
	if _, err := staff.CreateCase(ctx, CaseInput{CaseNumber: "C-2", Title: "t", Description: "d", ClientID: s.admin, StaffID: s.staff}); err != nil {
		t.Fatal(err)
	}

	client := NewDataStore(New(s.url))
	if _, err := client.Login(ctx, "client@firm.test", "password123", "client"); err != nil {
		t.Fatalf("client login: %v", err)
	}
	cases := client.Cases()
	if len(cases) != 1 || cases[0].CaseNumber != "C-1" {
		t.Fatalf("client cases = %+v", cases)
	}
	if len(client.Users()) != 0 {
		t.Errorf("client should not cache the user list")
	}
}
