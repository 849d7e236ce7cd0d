package faqrepo

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/yanqian/faq-kb/internal/domain/faq"
)

// MongoRepository implements faq.Repository on a MongoDB collection.
type MongoRepository struct {
	collection *mongo.Collection
}

// NewMongoRepository constructs the repository.
func NewMongoRepository(collection *mongo.Collection) *MongoRepository {
	return &MongoRepository{collection: collection}
}

// EnsureIndexes creates the department index used by FindByDepartment.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "department", Value: 1}},
	})
	return err
}

// FindAll implements faq.Repository.
func (r *MongoRepository) FindAll(ctx context.Context) ([]faq.Record, error) {
	return r.find(ctx, bson.D{})
}

// FindByDepartment implements faq.Repository.
func (r *MongoRepository) FindByDepartment(ctx context.Context, department string) ([]faq.Record, error) {
	return r.find(ctx, bson.D{{Key: "department", Value: department}})
}

// Search implements faq.Repository by translating the terms into a
// case-insensitive look-ahead regex evaluated server side.
func (r *MongoRepository) Search(ctx context.Context, query faq.SearchQuery) ([]faq.Record, error) {
	if len(query.Terms) == 0 {
		return nil, nil
	}
	return r.find(ctx, searchFilter(query.Terms))
}

// Insert implements faq.Repository.
func (r *MongoRepository) Insert(ctx context.Context, record faq.Record) (faq.Record, error) {
	record = record.Clone()
	record.ID = uuid.NewString()
	if _, err := r.collection.InsertOne(ctx, record); err != nil {
		return faq.Record{}, err
	}
	return record, nil
}

// UpdateByID implements faq.Repository.
func (r *MongoRepository) UpdateByID(ctx context.Context, id string, patch faq.Patch) (faq.Record, bool, error) {
	set := patchDocument(patch)
	if len(set) == 0 {
		return faq.Record{}, false, errors.New("empty patch")
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var record faq.Record
	err := r.collection.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: id}}, bson.D{{Key: "$set", Value: set}}, opts).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return faq.Record{}, false, nil
	}
	if err != nil {
		return faq.Record{}, false, err
	}
	return record, true, nil
}

// DeleteByID implements faq.Repository.
func (r *MongoRepository) DeleteByID(ctx context.Context, id string) (faq.Record, bool, error) {
	var record faq.Record
	err := r.collection.FindOneAndDelete(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return faq.Record{}, false, nil
	}
	if err != nil {
		return faq.Record{}, false, err
	}
	return record, true, nil
}

func (r *MongoRepository) find(ctx context.Context, filter bson.D) ([]faq.Record, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var out []faq.Record
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// searchPattern builds one look-ahead per term so the terms may occur in any
// order. Terms are quoted so user input never acts as regex syntax.
func searchPattern(terms []string) string {
	var builder strings.Builder
	for _, term := range terms {
		builder.WriteString("(?=.*")
		builder.WriteString(regexp.QuoteMeta(term))
		builder.WriteString(")")
	}
	return builder.String()
}

func searchFilter(terms []string) bson.D {
	regex := primitive.Regex{Pattern: searchPattern(terms), Options: "is"}
	elemMatch := bson.D{{Key: "$elemMatch", Value: bson.D{{Key: "$regex", Value: regex}}}}
	return bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: "questionVariations", Value: elemMatch}},
		bson.D{{Key: "answers.text", Value: bson.D{{Key: "$regex", Value: regex}}}},
		bson.D{{Key: "entities", Value: elemMatch}},
		bson.D{{Key: "intent", Value: bson.D{{Key: "$regex", Value: regex}}}},
		bson.D{{Key: "context", Value: bson.D{{Key: "$regex", Value: regex}}}},
	}}}
}

func patchDocument(patch faq.Patch) bson.D {
	var set bson.D
	if patch.QuestionVariations != nil {
		set = append(set, bson.E{Key: "questionVariations", Value: nonNil(*patch.QuestionVariations)})
	}
	if patch.Answers != nil {
		set = append(set, bson.E{Key: "answers", Value: nonNil(*patch.Answers)})
	}
	if patch.Department != nil {
		set = append(set, bson.E{Key: "department", Value: *patch.Department})
	}
	if patch.Intent != nil {
		set = append(set, bson.E{Key: "intent", Value: *patch.Intent})
	}
	if patch.Entities != nil {
		set = append(set, bson.E{Key: "entities", Value: nonNil(*patch.Entities)})
	}
	if patch.Context != nil {
		set = append(set, bson.E{Key: "context", Value: *patch.Context})
	}
	return set
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

var _ faq.Repository = (*MongoRepository)(nil)
