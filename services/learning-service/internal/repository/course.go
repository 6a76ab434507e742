package repository

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/vasapolrittideah/elearning-api/services/learning-service/internal/model"
	"github.com/vasapolrittideah/elearning-api/shared/media"
)

// CourseRepository defines the interface for course-related database operations.
type CourseRepository interface {
	CreateCourse(ctx context.Context, course *model.Course) (*model.Course, error)
	GetCourse(ctx context.Context, id string) (*model.Course, error)
	ListCourses(ctx context.Context) ([]model.Course, error)
	UpdateCourse(ctx context.Context, id string, params UpdateCourseParams) (*model.Course, error)
}

// UpdateCourseParams defines the optional parameters for updating a course.
// Only the fields that are not nil will be updated.
type UpdateCourseParams struct {
	Name           *string
	Description    *string
	Price          *float64
	EstimatedPrice *float64
	Thumbnail      *media.Asset
	Tags           *string
	Level          *string
	DemoURL        *string
	Benefits       []model.Titled
	Prerequisites  []model.Titled
	Contents       []model.CourseContent
}

const courseCollection = "courses"

type courseMongoRepository struct {
	db *mongo.Database
}

func NewCourseMongoRepository(ctx context.Context, logger *zerolog.Logger, db *mongo.Database) CourseRepository {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	}

	if _, err := db.Collection(courseCollection).Indexes().CreateMany(ctx, indexes); err != nil {
		logger.Fatal().Err(err).Msg("failed to create course indexes")
	}

	return &courseMongoRepository{db: db}
}

func (r *courseMongoRepository) CreateCourse(ctx context.Context, course *model.Course) (*model.Course, error) {
	now := time.Now()
	course.CreatedAt = now
	course.UpdatedAt = now

	result, err := r.db.Collection(courseCollection).InsertOne(ctx, course)
	if err != nil {
		return nil, translateError(err)
	}

	if course.ID, err = insertedID(result); err != nil {
		return nil, err
	}

	return course, nil
}

func (r *courseMongoRepository) GetCourse(ctx context.Context, id string) (*model.Course, error) {
	objectID, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	result := r.db.Collection(courseCollection).FindOne(ctx, bson.M{"_id": objectID})
	return decodeOne[model.Course](result)
}

func (r *courseMongoRepository) ListCourses(ctx context.Context) ([]model.Course, error) {
	cursor, err := r.db.Collection(courseCollection).Find(
		ctx,
		bson.M{},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	courses := []model.Course{}
	if err := cursor.All(ctx, &courses); err != nil {
		return nil, err
	}

	return courses, nil
}

func (r *courseMongoRepository) UpdateCourse(
	ctx context.Context,
	id string,
	params UpdateCourseParams,
) (*model.Course, error) {
	objectID, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	updateMap := bson.M{}
	if params.Name != nil {
		updateMap["name"] = *params.Name
	}
	if params.Description != nil {
		updateMap["description"] = *params.Description
	}
	if params.Price != nil {
		updateMap["price"] = *params.Price
	}
	if params.EstimatedPrice != nil {
		updateMap["estimated_price"] = *params.EstimatedPrice
	}
	if params.Thumbnail != nil {
		updateMap["thumbnail"] = params.Thumbnail
	}
	if params.Tags != nil {
		updateMap["tags"] = *params.Tags
	}
	if params.Level != nil {
		updateMap["level"] = *params.Level
	}
	if params.DemoURL != nil {
		updateMap["demo_url"] = *params.DemoURL
	}
	if params.Benefits != nil {
		updateMap["benefits"] = params.Benefits
	}
	if params.Prerequisites != nil {
		updateMap["prerequisites"] = params.Prerequisites
	}
	if params.Contents != nil {
		updateMap["course_data"] = params.Contents
	}

	updateMap["updated_at"] = time.Now()

	result := r.db.Collection(courseCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": updateMap},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	return decodeOne[model.Course](result)
}
