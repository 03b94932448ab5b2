package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/legalcms/backend/internal/db"
	"github.com/legalcms/backend/internal/models"
	"github.com/legalcms/backend/internal/repository"
)

// backends returns a fresh store per implementation so each behaviour is
// checked against GORM and the in-memory store alike.
func backends(t *testing.T) map[string]repository.Repositories {
	t.Helper()
	gdb, err := db.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return map[string]repository.Repositories{
		"gorm":   repository.NewGormRepositories(gdb),
		"memory": repository.NewMemoryStore().Repositories(),
	}
}

func mustUser(t *testing.T, repos repository.Repositories, email string, role models.UserRole) *models.User {
	t.Helper()
	u := &models.User{Name: email, Email: email, Password: "hash", Role: role}
	if err := repos.Users.Create(context.Background(), u); err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return u
}

func at(hour, minute int) time.Time {
	return time.Date(2024, 3, 4, hour, minute, 0, 0, time.UTC)
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	for name, repos := range backends(t) {
		t.Run(name, func(t *testing.T) {
			admin := mustUser(t, repos, "admin@firm.test", models.RoleAdmin)
			mustUser(t, repos, "client@firm.test", models.RoleClient)

			if admin.ID == "" {
				t.Fatal("expected generated id")
			}
			dup := &models.User{Name: "x", Email: "admin@firm.test", Password: "h", Role: models.RoleStaff}
			if err := repos.Users.Create(ctx, dup); !errors.Is(err, repository.ErrDuplicate) {
				t.Fatalf("expected ErrDuplicate, got %v", err)
			}

			got, err := repos.Users.GetByEmail(ctx, "admin@firm.test")
			if err != nil || got.ID != admin.ID {
				t.Fatalf("GetByEmail: %v %+v", err, got)
			}
			if _, err := repos.Users.GetByID(ctx, "missing"); !errors.Is(err, repository.ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}

			clients, err := repos.Users.List(ctx, repository.UserFilter{Role: models.RoleClient})
			if err != nil || len(clients) != 1 || clients[0].Email != "client@firm.test" {
				t.Fatalf("List(role=CLIENT) = %+v, %v", clients, err)
			}

			if err := repos.Users.UpdatePassword(ctx, admin.ID, "new-hash"); err != nil {
				t.Fatalf("UpdatePassword: %v", err)
			}
			if got, _ := repos.Users.GetByID(ctx, admin.ID); got.Password != "new-hash" {
				t.Errorf("password not updated")
			}
			if err := repos.Users.UpdatePassword(ctx, "missing", "h"); !errors.Is(err, repository.ErrNotFound) {
				t.Errorf("expected ErrNotFound, got %v", err)
			}

			byID, err := repos.Users.GetByIDs(ctx, []string{admin.ID, "missing"})
			if err != nil || len(byID) != 1 {
				t.Fatalf("GetByIDs = %v, %v", byID, err)
			}
		})
	}
}

func TestCases(t *testing.T) {
	ctx := context.Background()
	for name, repos := range backends(t) {
		t.Run(name, func(t *testing.T) {
			staff := mustUser(t, repos, "staff@firm.test", models.RoleStaff)
			client := mustUser(t, repos, "client@firm.test", models.RoleClient)

			c1 := &models.Case{CaseNumber: "C-1", Title: "One", Description: "d", ClientID: client.ID, StaffID: staff.ID}
			if err := repos.Cases.Create(ctx, c1); err != nil {
				t.Fatalf("create: %v", err)
			}
			if c1.Status != models.CaseStatusOpen {
				t.Errorf("expected default status Open, got %q", c1.Status)
			}
			c2 := &models.Case{CaseNumber: "C-2", Title: "Two", Description: "d", Status: models.CaseStatusClosed, ClientID: client.ID, StaffID: staff.ID}
			if err := repos.Cases.Create(ctx, c2); err != nil {
				t.Fatalf("create: %v", err)
			}
			dup := &models.Case{CaseNumber: "C-1", Title: "x", Description: "d", ClientID: client.ID, StaffID: staff.ID}
			if err := repos.Cases.Create(ctx, dup); !errors.Is(err, repository.ErrDuplicate) {
				t.Fatalf("expected ErrDuplicate, got %v", err)
			}

			open, err := repos.Cases.List(ctx, repository.CaseFilter{Status: models.CaseStatusOpen, ClientID: client.ID})
			if err != nil || len(open) != 1 || open[0].ID != c1.ID {
				t.Fatalf("List(open) = %+v, %v", open, err)
			}

			c1.Title = "Renamed"
			c1.Status = models.CaseStatusInProgress
			if err := repos.Cases.Update(ctx, c1); err != nil {
				t.Fatalf("update: %v", err)
			}
			got, err := repos.Cases.GetByCaseNumber(ctx, "C-1")
			if err != nil || got.Title != "Renamed" || got.Status != models.CaseStatusInProgress {
				t.Fatalf("after update got %+v, %v", got, err)
			}

			all, err := repos.Cases.List(ctx, repository.CaseFilter{})
			if err != nil || len(all) != 2 || all[0].ID != c1.ID {
				t.Fatalf("expected most recently updated first, got %+v", all)
			}

			c2.CaseNumber = "C-1"
			if err := repos.Cases.Update(ctx, c2); !errors.Is(err, repository.ErrDuplicate) {
				t.Fatalf("expected ErrDuplicate on number clash, got %v", err)
			}

			if err := repos.Cases.Delete(ctx, c1.ID); err != nil {
				t.Fatalf("delete: %v", err)
			}
			if err := repos.Cases.Delete(ctx, c1.ID); !errors.Is(err, repository.ErrNotFound) {
				t.Fatalf("expected ErrNotFound on second delete, got %v", err)
			}
			ghost := &models.Case{ID: c1.ID, CaseNumber: "C-9", Title: "t", Description: "d"}
			if err := repos.Cases.Update(ctx, ghost); !errors.Is(err, repository.ErrNotFound) {
				t.Fatalf("expected ErrNotFound updating deleted case, got %v", err)
			}
		})
	}
}

func TestAppointments(t *testing.T) {
	ctx := context.Background()
	for name, repos := range backends(t) {
		t.Run(name, func(t *testing.T) {
			caseID := "case-1"
			mk := func(staff string, start time.Time, status models.AppointmentStatus) *models.Appointment {
				a := &models.Appointment{
					Title: "Meeting", Description: "d", Date: start, Duration: 60,
					Status: status, ClientID: "client", StaffID: staff, CaseID: &caseID,
				}
				if err := repos.Appointments.Create(ctx, a); err != nil {
					t.Fatalf("create: %v", err)
				}
				return a
			}
			late := mk("S1", at(15, 0), models.AppointmentStatusScheduled)
			early := mk("S1", at(9, 0), models.AppointmentStatusScheduled)
			mk("S1", at(11, 0), models.AppointmentStatusCancelled)
			mk("S2", at(9, 0), models.AppointmentStatusCompleted)
			nextDay := mk("S1", at(9, 0).AddDate(0, 0, 1), models.AppointmentStatusScheduled)

			list, err := repos.Appointments.List(ctx, repository.AppointmentFilter{StaffID: "S1"})
			if err != nil || len(list) != 4 {
				t.Fatalf("List(S1) = %d, %v", len(list), err)
			}
			if list[0].ID != early.ID || list[len(list)-1].ID != nextDay.ID {
				t.Errorf("expected ascending date order")
			}

			day := repository.CalendarDay(at(13, 0), time.UTC)
			today, err := repos.Appointments.List(ctx, repository.AppointmentFilter{Day: &day, CaseID: caseID})
			if err != nil || len(today) != 4 {
				t.Fatalf("List(day) = %d, %v", len(today), err)
			}

			active, err := repos.Appointments.ListActiveByStaff(ctx, "S1", at(16, 0))
			if err != nil {
				t.Fatalf("ListActiveByStaff: %v", err)
			}
			if len(active) != 2 {
				t.Fatalf("expected 2 active appointments before 16:00, got %d", len(active))
			}

			late.Status = models.AppointmentStatusCancelled
			late.CaseID = nil
			if err := repos.Appointments.Update(ctx, late); err != nil {
				t.Fatalf("update: %v", err)
			}
			got, err := repos.Appointments.GetByID(ctx, late.ID)
			if err != nil || got.Status != models.AppointmentStatusCancelled || got.CaseID != nil {
				t.Fatalf("after update got %+v, %v", got, err)
			}
			if !got.Date.Equal(at(15, 0)) {
				t.Errorf("date changed on update: %v", got.Date)
			}

			if err := repos.Appointments.Delete(ctx, early.ID); err != nil {
				t.Fatalf("delete: %v", err)
			}
			if _, err := repos.Appointments.GetByID(ctx, early.ID); !errors.Is(err, repository.ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
		})
	}
}

func TestDocuments(t *testing.T) {
	ctx := context.Background()
	for name, repos := range backends(t) {
		t.Run(name, func(t *testing.T) {
			older := &models.Document{Name: "a", OriginalName: "a.pdf", FilePath: "/a", FileSize: 1, MimeType: "application/pdf",
				CaseID: "case-1", UploadedBy: "u1", UploadedAt: at(9, 0)}
			newer := &models.Document{Name: "b", OriginalName: "b.pdf", FilePath: "/b", FileSize: 2, MimeType: "application/pdf",
				CaseID: "case-1", UploadedBy: "u2", UploadedAt: at(10, 0)}
			other := &models.Document{Name: "c", OriginalName: "c.pdf", FilePath: "/c", FileSize: 3, MimeType: "application/pdf",
				CaseID: "case-2", UploadedBy: "u1"}
			for _, d := range []*models.Document{older, newer, other} {
				if err := repos.Documents.Create(ctx, d); err != nil {
					t.Fatalf("create: %v", err)
				}
			}
			if other.UploadedAt.IsZero() {
				t.Error("expected uploadedAt to default")
			}

			docs, err := repos.Documents.List(ctx, repository.DocumentFilter{CaseID: "case-1"})
			if err != nil || len(docs) != 2 || docs[0].ID != newer.ID {
				t.Fatalf("expected newest first, got %+v, %v", docs, err)
			}
			mine, err := repos.Documents.List(ctx, repository.DocumentFilter{CaseID: "case-1", UploadedBy: "u1"})
			if err != nil || len(mine) != 1 || mine[0].ID != older.ID {
				t.Fatalf("conjunctive filter failed: %+v, %v", mine, err)
			}
			if err := repos.Documents.Delete(ctx, older.ID); err != nil {
				t.Fatalf("delete: %v", err)
			}
			if err := repos.Documents.Delete(ctx, older.ID); !errors.Is(err, repository.ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
		})
	}
}

func TestChat(t *testing.T) {
	ctx := context.Background()
	for name, repos := range backends(t) {
		t.Run(name, func(t *testing.T) {
			send := func(from, to, content string, ts time.Time) {
				m := &models.ChatMessage{SenderID: from, RecipientID: to, Content: content, Timestamp: ts}
				if err := repos.Chat.Create(ctx, m); err != nil {
					t.Fatalf("send: %v", err)
				}
			}
			send("a", "b", "second", at(10, 5))
			send("b", "a", "first", at(10, 0))
			send("a", "c", "elsewhere", at(10, 1))
			send("a", "b", "third", at(10, 9))

			conv, err := repos.Chat.Conversation(ctx, "b", "a")
			if err != nil || len(conv) != 3 {
				t.Fatalf("Conversation = %d, %v", len(conv), err)
			}
			if conv[0].Content != "first" || conv[2].Content != "third" {
				t.Errorf("expected ascending timestamps, got %q..%q", conv[0].Content, conv[2].Content)
			}

			n, err := repos.Chat.MarkRead(ctx, "b", "a")
			if err != nil || n != 2 {
				t.Fatalf("MarkRead = %d, %v", n, err)
			}
			n, err = repos.Chat.MarkRead(ctx, "b", "a")
			if err != nil || n != 0 {
				t.Fatalf("second MarkRead = %d, %v", n, err)
			}
		})
	}
}

func TestCalendarDay(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	// 23:30 UTC on the 4th is 01:30 on the 5th at UTC+2.
	day := repository.CalendarDay(time.Date(2024, 3, 4, 23, 30, 0, 0, time.UTC), loc)
	wantFrom := time.Date(2024, 3, 4, 22, 0, 0, 0, time.UTC)
	if !day.From.Equal(wantFrom) || !day.To.Equal(wantFrom.Add(24*time.Hour)) {
		t.Fatalf("unexpected range %v - %v", day.From, day.To)
	}
	if !day.Contains(wantFrom) || day.Contains(day.To) {
		t.Error("day range must be half-open")
	}
}
