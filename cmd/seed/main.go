package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"hornethelper/internal/config"
	"hornethelper/internal/logging"
	"hornethelper/internal/model"
	"hornethelper/internal/repository"
	"hornethelper/internal/service"
)

var demoUsers = []*model.User{
	{UID: "demo-alex", DisplayName: "Alex Rivera", Email: "alex@example.edu", Major: "Computer Science"},
	{UID: "demo-jordan", DisplayName: "Jordan Lee", Email: "jordan@example.edu", Major: "Biological Sciences"},
	{UID: "demo-sam", DisplayName: "Sam Patel", Email: "sam@example.edu", Major: model.DefaultMajor},
}

type demoSession struct {
	kind     model.SessionKind
	owner    int
	joiners  []int
	course   string
	location string
	capacity int
	days     int
	hour     int
}

var demoSessions = []demoSession{
	{kind: model.KindDuo, owner: 0, course: "Data Structures", location: "William C. Jason Library", days: 1, hour: 14},
	{kind: model.KindDuo, owner: 1, joiners: []int{2}, course: "Cell Biology", location: "Luna I. Mishoe Science Center", days: 2, hour: 10},
	{kind: model.KindGroup, owner: 2, joiners: []int{0, 1}, course: "Calculus II", location: "William C. Jason Library", capacity: 3, days: 3, hour: 18},
	{kind: model.KindGroup, owner: 0, course: "Discrete Math", location: "Conrad Hall", capacity: 6, days: 5, hour: 16},
}

func main() {
	cfg := config.Load()
	logger := logging.Setup(os.Stdout, "hornet-seed")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Error("Failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	defer client.Disconnect(ctx)

	db := client.Database(cfg.MongoDatabase)
	userRepo := repository.NewUserRepo(db)
	sessionRepo := repository.NewSessionRepo(db)
	calendarSvc := service.NewCalendarService(repository.NewCalendarRepo(db))

	for _, u := range demoUsers {
		if _, err := userRepo.Upsert(ctx, u); err != nil {
			logger.Error("Failed to seed user", "uid", u.UID, "error", err)
			os.Exit(1)
		}
		if err := userRepo.UpdateMajor(ctx, u.UID, u.Major); err != nil {
			logger.Warn("Failed to set major", "uid", u.UID, "error", err)
		}
	}

	today := time.Now()
	for _, d := range demoSessions {
		if err := seedSession(ctx, sessionRepo, calendarSvc, d, today); err != nil {
			logger.Error("Failed to seed session", "course", d.course, "error", err)
			os.Exit(1)
		}
	}

	logger.Info("Seed complete", "users", len(demoUsers), "sessions", len(demoSessions))
}

func seedSession(ctx context.Context, repo repository.SessionRepo, calendarSvc *service.CalendarService, d demoSession, today time.Time) error {
	capacity, err := model.CapacityFor(d.kind, d.capacity)
	if err != nil {
		return err
	}
	day := today.AddDate(0, 0, d.days)
	start := time.Date(day.Year(), day.Month(), day.Day(), d.hour, 0, 0, 0, time.Local)

	owner := demoUsers[d.owner].Summary()
	session := &model.Session{
		Kind:         d.kind,
		Course:       d.course,
		Major:        demoUsers[d.owner].Major,
		Location:     d.location,
		DateTime:     start.Format("2006-01-02T15:04"),
		OwnerUserID:  owner.UID,
		Participants: []model.Participant{owner},
		Capacity:     capacity,
		Active:       true,
	}
	if err := repo.Create(ctx, session); err != nil {
		return err
	}
	if err := calendarSvc.Add(ctx, session, owner.UID); err != nil {
		return err
	}

	for _, i := range d.joiners {
		p := demoUsers[i].Summary()
		updated, err := repo.AddParticipant(ctx, d.kind, session.ID, p)
		if err != nil {
			return err
		}
		if err := calendarSvc.Add(ctx, updated, p.UID); err != nil {
			return err
		}
	}

	slog.Info("Seeded session", "kind", d.kind, "id", session.ID, "course", d.course)
	return nil
}
