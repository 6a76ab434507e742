package repository

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/vasapolrittideah/elearning-api/services/learning-service/internal/model"
)

// QuestionRepository defines the interface for the Q&A tables. Questions
// reference a course section and answers reference a question, so appends
// never rewrite the course document.
type QuestionRepository interface {
	CreateQuestion(ctx context.Context, question *model.Question) (*model.Question, error)
	GetQuestion(ctx context.Context, id string) (*model.Question, error)
	CreateAnswer(ctx context.Context, answer *model.Answer) (*model.Answer, error)
	ListThreads(ctx context.Context, courseID bson.ObjectID) ([]model.QuestionThread, error)
}

const (
	questionCollection = "questions"
	answerCollection   = "answers"
)

type questionMongoRepository struct {
	db *mongo.Database
}

func NewQuestionMongoRepository(ctx context.Context, logger *zerolog.Logger, db *mongo.Database) QuestionRepository {
	questionIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "course_id", Value: 1},
				{Key: "content_id", Value: 1},
				{Key: "created_at", Value: 1},
			},
		},
	}
	if _, err := db.Collection(questionCollection).Indexes().CreateMany(ctx, questionIndexes); err != nil {
		logger.Fatal().Err(err).Msg("failed to create question indexes")
	}

	answerIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "question_id", Value: 1}, {Key: "created_at", Value: 1}}},
	}
	if _, err := db.Collection(answerCollection).Indexes().CreateMany(ctx, answerIndexes); err != nil {
		logger.Fatal().Err(err).Msg("failed to create answer indexes")
	}

	return &questionMongoRepository{db: db}
}

func (r *questionMongoRepository) CreateQuestion(
	ctx context.Context,
	question *model.Question,
) (*model.Question, error) {
	question.CreatedAt = time.Now()

	result, err := r.db.Collection(questionCollection).InsertOne(ctx, question)
	if err != nil {
		return nil, translateError(err)
	}

	if question.ID, err = insertedID(result); err != nil {
		return nil, err
	}

	return question, nil
}

func (r *questionMongoRepository) GetQuestion(ctx context.Context, id string) (*model.Question, error) {
	objectID, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	result := r.db.Collection(questionCollection).FindOne(ctx, bson.M{"_id": objectID})
	return decodeOne[model.Question](result)
}

func (r *questionMongoRepository) CreateAnswer(ctx context.Context, answer *model.Answer) (*model.Answer, error) {
	answer.CreatedAt = time.Now()

	result, err := r.db.Collection(answerCollection).InsertOne(ctx, answer)
	if err != nil {
		return nil, translateError(err)
	}

	if answer.ID, err = insertedID(result); err != nil {
		return nil, err
	}

	return answer, nil
}

func (r *questionMongoRepository) ListThreads(
	ctx context.Context,
	courseID bson.ObjectID,
) ([]model.QuestionThread, error) {
	byCreated := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})

	cursor, err := r.db.Collection(questionCollection).Find(
		ctx,
		bson.M{"course_id": courseID},
		byCreated,
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var questions []model.Question
	if err := cursor.All(ctx, &questions); err != nil {
		return nil, err
	}

	threads := make([]model.QuestionThread, len(questions))
	if len(questions) == 0 {
		return threads, nil
	}

	questionIDs := make([]bson.ObjectID, len(questions))
	position := make(map[bson.ObjectID]int, len(questions))
	for i, q := range questions {
		questionIDs[i] = q.ID
		position[q.ID] = i
		threads[i] = model.QuestionThread{Question: q, Answers: []model.Answer{}}
	}

	answerCursor, err := r.db.Collection(answerCollection).Find(
		ctx,
		bson.M{"question_id": bson.M{"$in": questionIDs}},
		byCreated,
	)
	if err != nil {
		return nil, err
	}
	defer answerCursor.Close(ctx)

	var answers []model.Answer
	if err := answerCursor.All(ctx, &answers); err != nil {
		return nil, err
	}

	for _, a := range answers {
		if i, ok := position[a.QuestionID]; ok {
			threads[i].Answers = append(threads[i].Answers, a)
		}
	}

	return threads, nil
}
