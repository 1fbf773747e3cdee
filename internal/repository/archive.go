package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/zhouzirui/shopmate/backend/internal/model/chat"
)

// ArchivedMessage is a transcript line persisted for the support desk.
type ArchivedMessage struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	SessionID string             `bson:"session_id" json:"sessionId"`
	MessageID string             `bson:"message_id" json:"messageId"`
	Role      chat.Role          `bson:"role" json:"role"`
	Content   string             `bson:"content" json:"content"`
	Page      string             `bson:"page,omitempty" json:"page,omitempty"`
	SentAt    time.Time          `bson:"sent_at" json:"sentAt"`
}

// ArchivedHandoff records a visitor's request for a human agent.
type ArchivedHandoff struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	SessionID   string             `bson:"session_id" json:"sessionId"`
	Page        string             `bson:"page,omitempty" json:"page,omitempty"`
	RequestedAt time.Time          `bson:"requested_at" json:"requestedAt"`
}

// WidgetArchive persists transcripts and handoff requests to MongoDB.
type WidgetArchive struct {
	messages *mongo.Collection
	handoffs *mongo.Collection
}

// NewWidgetArchive binds the archive to its collections.
func NewWidgetArchive(db *mongo.Database) *WidgetArchive {
	return &WidgetArchive{
		messages: db.Collection("widget_messages"),
		handoffs: db.Collection("widget_handoffs"),
	}
}

// AddMessage appends one transcript line.
func (a *WidgetArchive) AddMessage(ctx context.Context, msg ArchivedMessage) error {
	msg.ID = primitive.NewObjectID()
	if msg.SentAt.IsZero() {
		msg.SentAt = time.Now()
	}
	_, err := a.messages.InsertOne(ctx, msg)
	return err
}

// MessagesBySession returns a session's archived transcript in send order.
func (a *WidgetArchive) MessagesBySession(ctx context.Context, sessionID string) ([]ArchivedMessage, error) {
	opts := options.Find().SetSort(bson.D{{Key: "sent_at", Value: 1}})
	cursor, err := a.messages.Find(ctx, bson.M{"session_id": sessionID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []ArchivedMessage
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// AddHandoff records that a session asked for a human agent.
func (a *WidgetArchive) AddHandoff(ctx context.Context, handoff ArchivedHandoff) error {
	handoff.ID = primitive.NewObjectID()
	if handoff.RequestedAt.IsZero() {
		handoff.RequestedAt = time.Now()
	}
	_, err := a.handoffs.InsertOne(ctx, handoff)
	return err
}

// Handoffs lists pending handoff requests, newest first.
func (a *WidgetArchive) Handoffs(ctx context.Context, limit int64) ([]ArchivedHandoff, error) {
	opts := options.Find().SetSort(bson.D{{Key: "requested_at", Value: -1}})
	if limit > 0 {
		opts = opts.SetLimit(limit)
	}
	cursor, err := a.handoffs.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []ArchivedHandoff
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}
