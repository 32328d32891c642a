package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"movienight-go/internal/models"
)

func newMovieNightFixture() (MovieNightService, *fakeMovieNightRepo) {
	users := newFakeUserRepo(
		testUser("alice", "alice@example.com"),
		testUser("bob", "bob@example.com"),
	)
	nightRepo := newFakeMovieNightRepo()
	attendance := NewAttendanceService(users, newFakeAttendanceRepo())
	return NewMovieNightService(nightRepo, attendance), nightRepo
}

func nightInput(title string, date time.Time) MovieNightInput {
	return MovieNightInput{
		MovieTitle:    title,
		ScheduledDate: date,
		StartTime:     "20:00",
		Genre:         "sci-fi",
	}
}

func TestCreateAndGetMovieNight(t *testing.T) {
	ctx := context.Background()
	svc, _ := newMovieNightFixture()

	created, err := svc.Create(ctx, "alice", nightInput("Alien", tomorrow()))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("created movie night has no id")
	}
	if created.UserID != "alice" {
		t.Errorf("UserID = %s, want alice", created.UserID)
	}

	details, err := svc.Get(ctx, "alice", created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if details.MovieNight.MovieTitle != "Alien" {
		t.Errorf("MovieTitle = %s, want Alien", details.MovieNight.MovieTitle)
	}
	if !details.IsOwner {
		t.Error("IsOwner should be true")
	}
}

func TestMovieNightScopedToOwner(t *testing.T) {
	ctx := context.Background()
	svc, _ := newMovieNightFixture()

	created, err := svc.Create(ctx, "alice", nightInput("Alien", tomorrow()))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Another user's id reads as not found, for Get, Update and Delete alike.
	if _, err := svc.Get(ctx, "bob", created.ID); !errors.Is(err, ErrMovieNightNotFound) {
		t.Fatalf("Get as bob: expected ErrMovieNightNotFound, got %v", err)
	}
	if _, err := svc.Update(ctx, "bob", created.ID, nightInput("Heat", tomorrow())); !errors.Is(err, ErrMovieNightNotFound) {
		t.Fatalf("Update as bob: expected ErrMovieNightNotFound, got %v", err)
	}
	if err := svc.Delete(ctx, "bob", created.ID); !errors.Is(err, ErrMovieNightNotFound) {
		t.Fatalf("Delete as bob: expected ErrMovieNightNotFound, got %v", err)
	}
}

func TestUpdateMovieNight(t *testing.T) {
	ctx := context.Background()
	svc, _ := newMovieNightFixture()

	created, err := svc.Create(ctx, "alice", nightInput("Alien", tomorrow()))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := svc.Update(ctx, "alice", created.ID, MovieNightInput{
		MovieTitle:    "Aliens",
		ScheduledDate: tomorrow(),
		StartTime:     "21:30",
		Notes:         "director's cut",
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.MovieTitle != "Aliens" || updated.StartTime != "21:30" {
		t.Errorf("updated = %+v, want new title and start time", updated)
	}
}

func TestDeleteMovieNight(t *testing.T) {
	ctx := context.Background()
	svc, _ := newMovieNightFixture()

	created, err := svc.Create(ctx, "alice", nightInput("Alien", tomorrow()))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := svc.Delete(ctx, "alice", created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Get(ctx, "alice", created.ID); !errors.Is(err, ErrMovieNightNotFound) {
		t.Fatalf("Get after delete: expected ErrMovieNightNotFound, got %v", err)
	}
}

func TestListUpcomingAndPast(t *testing.T) {
	ctx := context.Background()
	svc, _ := newMovieNightFixture()

	if _, err := svc.Create(ctx, "alice", nightInput("Alien", tomorrow())); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Create(ctx, "alice", nightInput("Heat", time.Now().AddDate(0, 0, -7))); err != nil {
		t.Fatalf("Create: %v", err)
	}

	assertTitles := func(nights []models.MovieNight, want ...string) {
		t.Helper()
		if len(nights) != len(want) {
			t.Fatalf("got %d nights, want %d", len(nights), len(want))
		}
		for i, n := range nights {
			if n.MovieTitle != want[i] {
				t.Errorf("night[%d] = %s, want %s", i, n.MovieTitle, want[i])
			}
		}
	}

	upcoming, err := svc.ListUpcoming(ctx, "alice")
	if err != nil {
		t.Fatalf("ListUpcoming: %v", err)
	}
	assertTitles(upcoming, "Alien")

	past, err := svc.ListPast(ctx, "alice")
	if err != nil {
		t.Fatalf("ListPast: %v", err)
	}
	assertTitles(past, "Heat")

	all, err := svc.List(ctx, "alice")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("List returned %d nights, want 2", len(all))
	}
}
