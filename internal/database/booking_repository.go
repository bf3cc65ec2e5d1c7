// internal/database/booking_repository.go
package database

import (
	"context"
	"time"

	"med-overflow/internal/models"
	"med-overflow/internal/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// BookingDocument represents the MongoDB schema for a booking record
type BookingDocument struct {
	ID        string    `bson:"_id"`
	Type      string    `bson:"type"`
	CreatedAt time.Time `bson:"createdAt"`
}

// SaveBooking records a visit-type selection.
func (m *MongoDB) SaveBooking(ctx context.Context, bookingType string) (*models.Booking, error) {
	doc := BookingDocument{
		ID:        uuid.New().String(),
		Type:      bookingType,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := m.Bookings.InsertOne(ctx, doc); err != nil {
		return nil, utils.NewQueryFailedError("save booking", err)
	}

	id, _ := uuid.Parse(doc.ID)
	return &models.Booking{ID: id, Type: doc.Type, CreatedAt: doc.CreatedAt}, nil
}

// ListBookings returns bookings, newest first.
func (m *MongoDB) ListBookings(ctx context.Context) ([]models.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := m.Bookings.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, utils.NewQueryFailedError("list bookings", err)
	}
	defer cursor.Close(ctx)

	var docs []BookingDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, utils.NewQueryFailedError("decode bookings", err)
	}

	bookings := make([]models.Booking, 0, len(docs))
	for _, doc := range docs {
		id, err := uuid.Parse(doc.ID)
		if err != nil {
			continue
		}
		bookings = append(bookings, models.Booking{ID: id, Type: doc.Type, CreatedAt: doc.CreatedAt})
	}
	return bookings, nil
}
