// internal/app/store/users/userstore.go
package userstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/teamlens/teamlens/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

var ErrDuplicateEmail = errors.New("a user with this email already exists")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return models.User{}, err
	}
	return u, nil
}

func (s *Store) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	filter := bson.M{"email": strings.ToLower(strings.TrimSpace(email))}
	if err := s.c.FindOne(ctx, filter).Decode(&u); err != nil {
		return models.User{}, err
	}
	return u, nil
}

func (s *Store) GetByResetToken(ctx context.Context, token string) (models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"reset_token": token}).Decode(&u); err != nil {
		return models.User{}, err
	}
	return u, nil
}

// FindByIDs returns the users that exist among the given ids. Missing
// ids are simply absent from the result; callers decide whether that
// matters.
func (s *Store) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// FindByEmails returns the users whose email is in the given list.
func (s *Store) FindByEmails(ctx context.Context, emails []string) ([]models.User, error) {
	if len(emails) == 0 {
		return nil, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"email": bson.M{"$in": emails}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Store) List(ctx context.Context) ([]models.User, error) {
	cur, err := s.c.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	now := time.Now().UTC()
	u.ID = primitive.NewObjectID()
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.CreatedAt = now
	u.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// UpdateInfo updates mutable profile fields. Back-reference lists are
// never writable through this path.
func (s *Store) UpdateInfo(ctx context.Context, id primitive.ObjectID, name string) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	if strings.TrimSpace(name) != "" {
		set["name"] = name
	}
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set})
	return err
}

// Delete removes a user by ID. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

/* ------------------------------------------------------------------ */
/* Back-reference maintenance (the weak side of the membership edges) */
/* ------------------------------------------------------------------ */

// AddGroupRef adds a group back-reference to each of the given users.
func (s *Store) AddGroupRef(ctx context.Context, userIDs []primitive.ObjectID, groupID primitive.ObjectID) error {
	if len(userIDs) == 0 {
		return nil
	}
	_, err := s.c.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": userIDs}},
		bson.M{"$addToSet": bson.M{"groups": groupID}})
	return err
}

// RemoveGroupRef pulls a group back-reference from each of the given users.
func (s *Store) RemoveGroupRef(ctx context.Context, userIDs []primitive.ObjectID, groupID primitive.ObjectID) error {
	if len(userIDs) == 0 {
		return nil
	}
	_, err := s.c.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": userIDs}},
		bson.M{"$pull": bson.M{"groups": groupID}})
	return err
}

// AddActivityRef adds an activity back-reference to each of the given users.
func (s *Store) AddActivityRef(ctx context.Context, userIDs []primitive.ObjectID, activityID primitive.ObjectID) error {
	if len(userIDs) == 0 {
		return nil
	}
	_, err := s.c.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": userIDs}},
		bson.M{"$addToSet": bson.M{"activities": activityID}})
	return err
}

// RemoveActivityRef pulls an activity back-reference from each of the given users.
func (s *Store) RemoveActivityRef(ctx context.Context, userIDs []primitive.ObjectID, activityID primitive.ObjectID) error {
	if len(userIDs) == 0 {
		return nil
	}
	_, err := s.c.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": userIDs}},
		bson.M{"$pull": bson.M{"activities": activityID}})
	return err
}

/* ------------------------------------------------------------------ */
/* Account lifecycle                                                  */
/* ------------------------------------------------------------------ */

// CompleteInvitedRegistration finalizes a temporary invited account:
// sets name and password, promotes to the student role, and clears the
// invitation token.
func (s *Store) CompleteInvitedRegistration(ctx context.Context, email, name, passwordHash string) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"email": strings.ToLower(strings.TrimSpace(email))},
		bson.M{
			"$unset": bson.M{"invitation_token": 1, "is_temporary": 1},
			"$set": bson.M{
				"name":       name,
				"role":       models.RoleStudent,
				"password":   passwordHash,
				"updated_at": time.Now().UTC(),
			},
		})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// SetResetToken stores a password-reset token on the user.
func (s *Store) SetResetToken(ctx context.Context, id primitive.ObjectID, token string) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{"reset_token": token, "updated_at": time.Now().UTC()},
	})
	return err
}

// ResetPassword replaces the password hash and clears the reset token.
func (s *Store) ResetPassword(ctx context.Context, id primitive.ObjectID, passwordHash string) (int64, error) {
	res, err := s.c.UpdateByID(ctx, id, bson.M{
		"$unset": bson.M{"reset_token": 1},
		"$set":   bson.M{"password": passwordHash, "updated_at": time.Now().UTC()},
	})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

/* ------------------------------------------------------------------ */
/* Questionnaire results                                              */
/* ------------------------------------------------------------------ */

// UpsertQuestionnaireResult stores a questionnaire result on the user,
// replacing any earlier result for the same questionnaire.
func (s *Store) UpsertQuestionnaireResult(ctx context.Context, userID, questionnaireID primitive.ObjectID, result string) error {
	now := time.Now().UTC()

	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": userID, "asked_questionnaires.questionnaire": questionnaireID},
		bson.M{"$set": bson.M{
			"asked_questionnaires.$.result":       result,
			"asked_questionnaires.$.completed_at": now,
			"updated_at":                          now,
		}})
	if err != nil {
		return err
	}
	if res.MatchedCount > 0 {
		return nil
	}

	res, err = s.c.UpdateByID(ctx, userID, bson.M{
		"$push": bson.M{"asked_questionnaires": models.AskedQuestionnaire{
			Questionnaire: questionnaireID,
			Result:        result,
			CompletedAt:   now,
		}},
		"$set": bson.M{"updated_at": now},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// FindUnanswered returns the users among ids that have no stored result
// for the given questionnaire.
func (s *Store) FindUnanswered(ctx context.Context, ids []primitive.ObjectID, questionnaireID primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := s.c.Find(ctx, bson.M{
		"_id": bson.M{"$in": ids},
		"asked_questionnaires": bson.M{"$not": bson.M{
			"$elemMatch": bson.M{"questionnaire": questionnaireID},
		}},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

/* ------------------------------------------------------------------ */
/* Notifications                                                      */
/* ------------------------------------------------------------------ */

// AppendNotification pushes a notification onto the user document.
func (s *Store) AppendNotification(ctx context.Context, userID primitive.ObjectID, n models.Notification) error {
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	res, err := s.c.UpdateByID(ctx, userID, bson.M{"$push": bson.M{"notifications": n}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// SetNotificationRead sets the read flag on one notification. Returns
// the matched count so callers can distinguish a missing notification.
func (s *Store) SetNotificationRead(ctx context.Context, userID, notificationID primitive.ObjectID, read bool) (int64, error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": userID, "notifications._id": notificationID},
		bson.M{"$set": bson.M{"notifications.$.read": read}})
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

// DeleteNotification removes one notification from the user document.
func (s *Store) DeleteNotification(ctx context.Context, userID, notificationID primitive.ObjectID) (int64, error) {
	res, err := s.c.UpdateByID(ctx, userID, bson.M{
		"$pull": bson.M{"notifications": bson.M{"_id": notificationID}},
	})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// ClearNotifications drops the whole notification list.
func (s *Store) ClearNotifications(ctx context.Context, userID primitive.ObjectID) error {
	res, err := s.c.UpdateByID(ctx, userID, bson.M{"$unset": bson.M{"notifications": 1}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
