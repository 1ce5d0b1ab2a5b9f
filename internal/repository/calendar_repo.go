package repository

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"hornethelper/internal/model"
)

// ErrConflict is returned when a versioned write loses a race with another writer
var ErrConflict = errors.New("document was modified concurrently")

// CalendarRepo stores one calendar document per user
type CalendarRepo interface {
	// Get never returns nil; a user without a document gets an empty calendar at version 0
	Get(ctx context.Context, uid string) (*model.Calendar, error)
	// Save writes the whole calendar if nobody else wrote since it was read
	Save(ctx context.Context, cal *model.Calendar) error
}

// Mongo field names cannot safely hold the "." in fractional time keys,
// so the nested map is flattened to a list of entries.
type calendarEntry struct {
	Date  string              `bson:"date"`
	Time  string              `bson:"time"`
	Event model.CalendarEvent `bson:"event"`
}

type calendarDoc struct {
	UserID    string          `bson:"_id"`
	Entries   []calendarEntry `bson:"entries"`
	Version   int64           `bson:"version"`
	UpdatedAt time.Time       `bson:"updatedAt"`
}

type calendarRepo struct {
	collection *mongo.Collection
}

// NewCalendarRepo creates a new calendar repository
func NewCalendarRepo(db *mongo.Database) CalendarRepo {
	return &calendarRepo{
		collection: db.Collection("calendars"),
	}
}

func (r *calendarRepo) Get(ctx context.Context, uid string) (*model.Calendar, error) {
	var doc calendarDoc
	err := r.collection.FindOne(ctx, bson.M{"_id": uid}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return &model.Calendar{UserID: uid, Events: model.CalendarEvents{}}, nil
	}
	if err != nil {
		return nil, err
	}
	return fromCalendarDoc(&doc), nil
}

func (r *calendarRepo) Save(ctx context.Context, cal *model.Calendar) error {
	doc := toCalendarDoc(cal)
	doc.Version = cal.Version + 1
	doc.UpdatedAt = time.Now().UTC()

	if cal.Version == 0 {
		_, err := r.collection.InsertOne(ctx, doc)
		if mongo.IsDuplicateKeyError(err) {
			return ErrConflict
		}
		if err != nil {
			return err
		}
		cal.Version = doc.Version
		return nil
	}

	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": cal.UserID, "version": cal.Version}, doc)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrConflict
	}
	cal.Version = doc.Version
	return nil
}

func toCalendarDoc(cal *model.Calendar) *calendarDoc {
	doc := &calendarDoc{UserID: cal.UserID, Entries: []calendarEntry{}}
	for date, day := range cal.Events {
		for key, ev := range day {
			doc.Entries = append(doc.Entries, calendarEntry{Date: date, Time: key, Event: ev})
		}
	}
	sort.Slice(doc.Entries, func(i, j int) bool {
		if doc.Entries[i].Date != doc.Entries[j].Date {
			return doc.Entries[i].Date < doc.Entries[j].Date
		}
		return doc.Entries[i].Time < doc.Entries[j].Time
	})
	return doc
}

func fromCalendarDoc(doc *calendarDoc) *model.Calendar {
	events := model.CalendarEvents{}
	for _, e := range doc.Entries {
		day, ok := events[e.Date]
		if !ok {
			day = make(map[string]model.CalendarEvent)
			events[e.Date] = day
		}
		day[e.Time] = e.Event
	}
	return &model.Calendar{UserID: doc.UserID, Events: events, Version: doc.Version}
}
