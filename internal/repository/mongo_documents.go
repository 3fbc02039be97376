package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/npkumar/social-coder/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

const systemMongo = "mongodb"

// Collection names.
const (
	PostsCollection    = "posts"
	ProfilesCollection = "profiles"
	UsersCollection    = "users"
)

type likeDocument struct {
	User bson.ObjectID `bson:"user"`
}

type commentDocument struct {
	ID     bson.ObjectID `bson:"_id"`
	Text   string        `bson:"text"`
	Name   string        `bson:"name"`
	Avatar string        `bson:"avatar"`
	User   bson.ObjectID `bson:"user"`
	Date   time.Time     `bson:"date"`
}

type postDocument struct {
	ID            bson.ObjectID     `bson:"_id"`
	Text          string            `bson:"text"`
	Name          string            `bson:"name"`
	Avatar        string            `bson:"avatar"`
	User          bson.ObjectID     `bson:"user"`
	Likes         []likeDocument    `bson:"likes"`
	Comments      []commentDocument `bson:"comments"`
	Date          time.Time         `bson:"date"`
	SchemaVersion int               `bson:"schema_version"`
	Revision      int64             `bson:"revision"`
}

type socialDocument struct {
	YouTube   string `bson:"youtube,omitempty"`
	Twitter   string `bson:"twitter,omitempty"`
	Facebook  string `bson:"facebook,omitempty"`
	LinkedIn  string `bson:"linkedin,omitempty"`
	Instagram string `bson:"instagram,omitempty"`
}

type profileDocument struct {
	ID             bson.ObjectID  `bson:"_id"`
	User           bson.ObjectID  `bson:"user"`
	Handle         string         `bson:"handle"`
	Company        string         `bson:"company,omitempty"`
	Website        string         `bson:"website,omitempty"`
	Location       string         `bson:"location,omitempty"`
	Status         string         `bson:"status"`
	Skills         []string       `bson:"skills"`
	Bio            string         `bson:"bio,omitempty"`
	GithubUsername string         `bson:"githubusername,omitempty"`
	Social         socialDocument `bson:"social"`
	Date           time.Time      `bson:"date"`
}

type userDocument struct {
	ID       bson.ObjectID `bson:"_id"`
	Name     string        `bson:"name"`
	Email    string        `bson:"email"`
	Password string        `bson:"password"`
	Avatar   string        `bson:"avatar"`
	Date     time.Time     `bson:"date"`
}

// errInvalidID marks a value that cannot be an ObjectID. Lookups treat it as a miss.
var errInvalidID = errors.New("invalid object id")

func objectID(hex string) (bson.ObjectID, error) {
	id, err := bson.ObjectIDFromHex(hex)
	if err != nil {
		return bson.NilObjectID, fmt.Errorf("%w: %q", errInvalidID, hex)
	}
	return id, nil
}

func newPostDocument(p *models.Post) (*postDocument, error) {
	id, err := objectID(p.ID)
	if err != nil {
		return nil, err
	}
	user, err := objectID(p.User)
	if err != nil {
		return nil, err
	}
	doc := &postDocument{
		ID:            id,
		Text:          p.Text,
		Name:          p.Name,
		Avatar:        p.Avatar,
		User:          user,
		Likes:         make([]likeDocument, 0, len(p.Likes)),
		Comments:      make([]commentDocument, 0, len(p.Comments)),
		Date:          p.Date,
		SchemaVersion: p.SchemaVersion,
		Revision:      p.Revision,
	}
	for _, l := range p.Likes {
		u, err := objectID(l.User)
		if err != nil {
			return nil, err
		}
		doc.Likes = append(doc.Likes, likeDocument{User: u})
	}
	for _, c := range p.Comments {
		cid, err := objectID(c.ID)
		if err != nil {
			return nil, err
		}
		u, err := objectID(c.User)
		if err != nil {
			return nil, err
		}
		doc.Comments = append(doc.Comments, commentDocument{
			ID: cid, Text: c.Text, Name: c.Name, Avatar: c.Avatar, User: u, Date: c.Date,
		})
	}
	return doc, nil
}

func (d *postDocument) toModel() *models.Post {
	p := &models.Post{
		ID:            d.ID.Hex(),
		Text:          d.Text,
		Name:          d.Name,
		Avatar:        d.Avatar,
		User:          d.User.Hex(),
		Likes:         make([]models.Like, 0, len(d.Likes)),
		Comments:      make([]models.Comment, 0, len(d.Comments)),
		Date:          d.Date,
		SchemaVersion: d.SchemaVersion,
		Revision:      d.Revision,
	}
	if d.User.IsZero() {
		p.User = ""
	}
	for _, l := range d.Likes {
		p.Likes = append(p.Likes, models.Like{User: l.User.Hex()})
	}
	for _, c := range d.Comments {
		p.Comments = append(p.Comments, models.Comment{
			ID: c.ID.Hex(), Text: c.Text, Name: c.Name, Avatar: c.Avatar, User: c.User.Hex(), Date: c.Date,
		})
	}
	return p
}

func newProfileDocument(p *models.Profile) (*profileDocument, error) {
	user, err := objectID(p.User)
	if err != nil {
		return nil, err
	}
	id := bson.NewObjectID()
	if p.ID != "" {
		if id, err = objectID(p.ID); err != nil {
			return nil, err
		}
	}
	skills := p.Skills
	if skills == nil {
		skills = []string{}
	}
	return &profileDocument{
		ID:             id,
		User:           user,
		Handle:         p.Handle,
		Company:        p.Company,
		Website:        p.Website,
		Location:       p.Location,
		Status:         p.Status,
		Skills:         skills,
		Bio:            p.Bio,
		GithubUsername: p.GithubUsername,
		Social: socialDocument{
			YouTube:   p.Social.YouTube,
			Twitter:   p.Social.Twitter,
			Facebook:  p.Social.Facebook,
			LinkedIn:  p.Social.LinkedIn,
			Instagram: p.Social.Instagram,
		},
		Date: p.Date,
	}, nil
}

func (d *profileDocument) toModel() *models.Profile {
	p := &models.Profile{
		ID:             d.ID.Hex(),
		User:           d.User.Hex(),
		Handle:         d.Handle,
		Company:        d.Company,
		Website:        d.Website,
		Location:       d.Location,
		Status:         d.Status,
		Skills:         d.Skills,
		Bio:            d.Bio,
		GithubUsername: d.GithubUsername,
		Social: models.Social{
			YouTube:   d.Social.YouTube,
			Twitter:   d.Social.Twitter,
			Facebook:  d.Social.Facebook,
			LinkedIn:  d.Social.LinkedIn,
			Instagram: d.Social.Instagram,
		},
		Date: d.Date,
	}
	normalizeProfile(p)
	return p
}

func (d *userDocument) toModel() *models.User {
	return &models.User{
		ID:       d.ID.Hex(),
		Name:     d.Name,
		Email:    d.Email,
		Password: d.Password,
		Avatar:   d.Avatar,
		Date:     d.Date,
	}
}

// translateMongoError maps driver errors onto the package sentinels.
func translateMongoError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments), errors.Is(err, errInvalidID):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return ErrDuplicate
	default:
		return unavailable(err)
	}
}
