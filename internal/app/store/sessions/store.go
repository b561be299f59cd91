// internal/app/store/sessions/store.go
package sessions

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// End reasons recorded on closed sessions.
const (
	EndLogout   = "logout"
	EndExpired  = "expired"
	EndInactive = "inactive"
	EndRevoked  = "revoked" // backend rejected the token
)

// ErrNotFound is returned when a session does not exist or is no longer active.
var ErrNotFound = errors.New("session not found")

// Session is the server-side half of a signed-in browser session. The
// cookie only carries the session ID; the API token lives here, sealed.
type Session struct {
	ID     primitive.ObjectID `bson:"_id,omitempty"`
	UserID string             `bson:"user_id"`
	Role   string             `bson:"role"`

	SealedToken string `bson:"sealed_token"`

	// Timing
	LoginAt      time.Time  `bson:"login_at"`
	LastActiveAt time.Time  `bson:"last_active_at"`
	ExpiresAt    time.Time  `bson:"expires_at"`
	LogoutAt     *time.Time `bson:"logout_at,omitempty"`

	// How did session end?
	EndReason string `bson:"end_reason,omitempty"`

	// Context
	IP        string `bson:"ip"`
	UserAgent string `bson:"user_agent,omitempty"`

	// Computed on session close
	DurationSecs int64 `bson:"duration_secs,omitempty"`
}

// Collection is the MongoDB collection holding session records.
const Collection = "sessions"

// Store persists sessions in MongoDB.
type Store struct {
	c *mongo.Collection
}

// New creates a new sessions Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

// IndexModels lists the indexes the sessions collection needs.
// indexes.EnsureAll reconciles them at startup.
func IndexModels() []mongo.IndexModel {
	return []mongo.IndexModel{
		// Cleanup sweeps
		{
			Keys:    bson.D{{Key: "logout_at", Value: 1}, {Key: "last_active_at", Value: -1}},
			Options: options.Index().SetName("idx_sessions_active"),
		},
		{
			Keys:    bson.D{{Key: "logout_at", Value: 1}, {Key: "expires_at", Value: 1}},
			Options: options.Index().SetName("idx_sessions_expiry"),
		},
		// User session history
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "login_at", Value: -1}},
			Options: options.Index().SetName("idx_sessions_user"),
		},
	}
}

// Create inserts a new open session. ID, LoginAt and LastActiveAt are
// filled in when zero.
func (s *Store) Create(ctx context.Context, sess Session) (Session, error) {
	now := time.Now().UTC()
	if sess.ID.IsZero() {
		sess.ID = primitive.NewObjectID()
	}
	if sess.LoginAt.IsZero() {
		sess.LoginAt = now
	}
	if sess.LastActiveAt.IsZero() {
		sess.LastActiveAt = sess.LoginAt
	}
	sess.LogoutAt = nil
	sess.EndReason = ""

	if _, err := s.c.InsertOne(ctx, sess); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// GetActive returns an open, unexpired session.
func (s *Store) GetActive(ctx context.Context, id string) (Session, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return Session{}, ErrNotFound
	}

	var sess Session
	err = s.c.FindOne(ctx, bson.M{
		"_id":        oid,
		"logout_at":  nil,
		"expires_at": bson.M{"$gt": time.Now().UTC()},
	}).Decode(&sess)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Session{}, ErrNotFound
	}
	return sess, err
}

// Touch bumps last_active_at on an open session.
// Returns ErrNotFound if the session is closed or missing.
func (s *Store) Touch(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": oid, "logout_at": nil},
		bson.M{"$set": bson.M{"last_active_at": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Close ends a session with the given reason and calculates duration.
// Closing an already-closed session is a no-op.
func (s *Store) Close(ctx context.Context, id, reason string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	now := time.Now().UTC()

	var sess Session
	err = s.c.FindOne(ctx, bson.M{"_id": oid}).Decode(&sess)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if sess.LogoutAt != nil {
		return nil
	}

	_, err = s.c.UpdateOne(ctx, bson.M{"_id": oid, "logout_at": nil}, bson.M{
		"$set": bson.M{
			"logout_at":     now,
			"end_reason":    reason,
			"duration_secs": int64(now.Sub(sess.LoginAt).Seconds()),
			"sealed_token":  "",
		},
	})
	return err
}

// GetByUser retrieves session history for a user, newest first.
func (s *Store) GetByUser(ctx context.Context, userID string, limit int64) ([]Session, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "login_at", Value: -1}}).
		SetLimit(limit)

	cur, err := s.c.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []Session
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CloseInactive closes open sessions idle for longer than threshold.
func (s *Store) CloseInactive(ctx context.Context, threshold time.Duration) (int64, error) {
	now := time.Now().UTC()
	return s.closeWhere(ctx,
		bson.M{"logout_at": nil, "last_active_at": bson.M{"$lt": now.Add(-threshold)}},
		EndInactive, now)
}

// CloseExpired closes open sessions whose expiry has passed.
func (s *Store) CloseExpired(ctx context.Context) (int64, error) {
	now := time.Now().UTC()
	return s.closeWhere(ctx,
		bson.M{"logout_at": nil, "expires_at": bson.M{"$lte": now}},
		EndExpired, now)
}

func (s *Store) closeWhere(ctx context.Context, filter bson.M, reason string, now time.Time) (int64, error) {
	result, err := s.c.UpdateMany(ctx, filter, bson.M{
		"$set": bson.M{
			"logout_at":    now,
			"end_reason":   reason,
			"sealed_token": "",
		},
	})
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}

// CountActive counts open sessions seen within the window.
func (s *Store) CountActive(ctx context.Context, window time.Duration) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{
		"logout_at":      nil,
		"last_active_at": bson.M{"$gte": time.Now().UTC().Add(-window)},
	})
}
