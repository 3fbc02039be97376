package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/npkumar/social-coder/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type mongoPostRepository struct {
	coll *mongo.Collection
	inst instrument
}

// NewMongoPostRepository returns a PostRepository storing one document per post.
func NewMongoPostRepository(db *mongo.Database) PostRepository {
	return &mongoPostRepository{coll: db.Collection(PostsCollection), inst: newInstrument(systemMongo, PostsCollection)}
}

func (r *mongoPostRepository) Create(ctx context.Context, post *models.Post) (err error) {
	ctx, finish := r.inst.start(ctx, "create")
	defer func() { finish(err) }()

	if err = checkPost(post); err != nil {
		return err
	}
	doc, convErr := newPostDocument(post)
	if convErr != nil {
		return unavailable(convErr)
	}
	if _, err = r.coll.InsertOne(ctx, doc); err != nil {
		return translateMongoError(err)
	}
	r.inst.log.LogCreate(ctx, map[string]interface{}{"post_id": post.ID})
	return nil
}

func (r *mongoPostRepository) GetByID(ctx context.Context, id string) (_ *models.Post, err error) {
	ctx, finish := r.inst.start(ctx, "get")
	defer func() { finish(err) }()

	oid, idErr := objectID(id)
	if idErr != nil {
		return nil, ErrNotFound
	}
	var doc postDocument
	if err = r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		return nil, translateMongoError(err)
	}
	post := doc.toModel()
	if err = checkPost(post); err != nil {
		return nil, err
	}
	return post, nil
}

func (r *mongoPostRepository) List(ctx context.Context) (_ []*models.Post, err error) {
	ctx, finish := r.inst.start(ctx, "list")
	defer func() { finish(err) }()

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, translateMongoError(err)
	}
	var docs []postDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, translateMongoError(err)
	}

	posts := make([]*models.Post, 0, len(docs))
	for i := range docs {
		p := docs[i].toModel()
		if err = checkPost(p); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	r.inst.log.LogRead(ctx, map[string]interface{}{"count": len(posts)})
	return posts, nil
}

func (r *mongoPostRepository) Update(ctx context.Context, post *models.Post) (err error) {
	ctx, finish := r.inst.start(ctx, "update")
	defer func() { finish(err) }()

	if err = checkPost(post); err != nil {
		return err
	}
	doc, convErr := newPostDocument(post)
	if convErr != nil {
		return unavailable(convErr)
	}
	expected := post.Revision
	doc.Revision = expected + 1

	filter := bson.D{{Key: "_id", Value: doc.ID}, {Key: "revision", Value: expected}}
	res, err := r.coll.ReplaceOne(ctx, filter, doc)
	if err != nil {
		return translateMongoError(err)
	}
	if res.MatchedCount == 0 {
		n, countErr := r.coll.CountDocuments(ctx, bson.D{{Key: "_id", Value: doc.ID}})
		if countErr != nil {
			return translateMongoError(countErr)
		}
		if n == 0 {
			return ErrNotFound
		}
		return ErrConflict
	}

	post.Revision = doc.Revision
	r.inst.log.LogUpdate(ctx, map[string]interface{}{"post_id": post.ID, "revision": post.Revision})
	return nil
}

func (r *mongoPostRepository) Delete(ctx context.Context, id string) (err error) {
	ctx, finish := r.inst.start(ctx, "delete")
	defer func() { finish(err) }()

	oid, idErr := objectID(id)
	if idErr != nil {
		return ErrNotFound
	}
	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return translateMongoError(err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	r.inst.log.LogDelete(ctx, map[string]interface{}{"post_id": id})
	return nil
}

type mongoProfileRepository struct {
	coll *mongo.Collection
	inst instrument
}

// NewMongoProfileRepository returns a ProfileRepository on the profiles collection.
func NewMongoProfileRepository(db *mongo.Database) ProfileRepository {
	return &mongoProfileRepository{coll: db.Collection(ProfilesCollection), inst: newInstrument(systemMongo, ProfilesCollection)}
}

func (r *mongoProfileRepository) findOne(ctx context.Context, op string, filter bson.D) (_ *models.Profile, err error) {
	ctx, finish := r.inst.start(ctx, op)
	defer func() { finish(err) }()

	var doc profileDocument
	if err = r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, translateMongoError(err)
	}
	return doc.toModel(), nil
}

func (r *mongoProfileRepository) GetByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	oid, err := objectID(userID)
	if err != nil {
		return nil, ErrNotFound
	}
	return r.findOne(ctx, "get_by_user", bson.D{{Key: "user", Value: oid}})
}

func (r *mongoProfileRepository) GetByHandle(ctx context.Context, handle string) (*models.Profile, error) {
	return r.findOne(ctx, "get_by_handle", bson.D{{Key: "handle", Value: handle}})
}

func (r *mongoProfileRepository) List(ctx context.Context) (_ []*models.Profile, err error) {
	ctx, finish := r.inst.start(ctx, "list")
	defer func() { finish(err) }()

	cursor, err := r.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "date", Value: -1}}))
	if err != nil {
		return nil, translateMongoError(err)
	}
	var docs []profileDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, translateMongoError(err)
	}
	profiles := make([]*models.Profile, 0, len(docs))
	for i := range docs {
		profiles = append(profiles, docs[i].toModel())
	}
	return profiles, nil
}

func (r *mongoProfileRepository) Upsert(ctx context.Context, profile *models.Profile) (err error) {
	ctx, finish := r.inst.start(ctx, "upsert")
	defer func() { finish(err) }()

	doc, convErr := newProfileDocument(profile)
	if convErr != nil {
		return unavailable(convErr)
	}

	// Keep the stored _id when the profile already exists.
	var existing profileDocument
	findErr := r.coll.FindOne(ctx, bson.D{{Key: "user", Value: doc.User}}).Decode(&existing)
	switch {
	case findErr == nil:
		doc.ID = existing.ID
	case !errors.Is(findErr, mongo.ErrNoDocuments):
		return translateMongoError(findErr)
	}

	opts := options.Replace().SetUpsert(true)
	if _, err = r.coll.ReplaceOne(ctx, bson.D{{Key: "user", Value: doc.User}}, doc, opts); err != nil {
		return translateMongoError(err)
	}
	profile.ID = doc.ID.Hex()
	r.inst.log.LogUpdate(ctx, map[string]interface{}{"profile_id": profile.ID, "user_id": profile.User})
	return nil
}

func (r *mongoProfileRepository) DeleteByUserID(ctx context.Context, userID string) (err error) {
	ctx, finish := r.inst.start(ctx, "delete")
	defer func() { finish(err) }()

	oid, idErr := objectID(userID)
	if idErr != nil {
		return ErrNotFound
	}
	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "user", Value: oid}})
	if err != nil {
		return translateMongoError(err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	r.inst.log.LogDelete(ctx, map[string]interface{}{"user_id": userID})
	return nil
}

type mongoUserRepository struct {
	coll *mongo.Collection
	inst instrument
}

// NewMongoUserRepository returns a UserRepository on the users collection.
func NewMongoUserRepository(db *mongo.Database) UserRepository {
	return &mongoUserRepository{coll: db.Collection(UsersCollection), inst: newInstrument(systemMongo, UsersCollection)}
}

func (r *mongoUserRepository) Create(ctx context.Context, user *models.User) (err error) {
	ctx, finish := r.inst.start(ctx, "create")
	defer func() { finish(err) }()

	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if user.ID == "" {
		user.ID = models.NewID()
	}
	oid, idErr := objectID(user.ID)
	if idErr != nil {
		return unavailable(idErr)
	}
	doc := userDocument{
		ID:       oid,
		Name:     user.Name,
		Email:    user.Email,
		Password: user.Password,
		Avatar:   user.Avatar,
		Date:     user.Date,
	}
	if _, err = r.coll.InsertOne(ctx, doc); err != nil {
		return translateMongoError(err)
	}
	r.inst.log.LogCreate(ctx, map[string]interface{}{"user_id": user.ID})
	return nil
}

func (r *mongoUserRepository) findOne(ctx context.Context, op string, filter bson.D) (_ *models.User, err error) {
	ctx, finish := r.inst.start(ctx, op)
	defer func() { finish(err) }()

	var doc userDocument
	if err = r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, translateMongoError(err)
	}
	return doc.toModel(), nil
}

func (r *mongoUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, ErrNotFound
	}
	return r.findOne(ctx, "get", bson.D{{Key: "_id", Value: oid}})
}

func (r *mongoUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, "get_by_email", bson.D{{Key: "email", Value: strings.ToLower(strings.TrimSpace(email))}})
}

func (r *mongoUserRepository) Delete(ctx context.Context, id string) (err error) {
	ctx, finish := r.inst.start(ctx, "delete")
	defer func() { finish(err) }()

	oid, idErr := objectID(id)
	if idErr != nil {
		return ErrNotFound
	}
	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return translateMongoError(err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	r.inst.log.LogDelete(ctx, map[string]interface{}{"user_id": id})
	return nil
}

// NewMongoRepositories wires the MongoDB implementations onto db.
func NewMongoRepositories(db *mongo.Database) Repositories {
	return Repositories{
		Posts:    NewMongoPostRepository(db),
		Profiles: NewMongoProfileRepository(db),
		Users:    NewMongoUserRepository(db),
	}
}
