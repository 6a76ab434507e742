package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Author identifies who wrote a question or an answer.
type Author struct {
	UserID string `bson:"user_id" json:"userId"`
	Name   string `bson:"name"    json:"name"`
	Email  string `bson:"email"   json:"-"`
}

// Question is a learner question on one course section.
type Question struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"_id"`
	CourseID  bson.ObjectID `bson:"course_id"     json:"courseId"`
	ContentID bson.ObjectID `bson:"content_id"    json:"contentId"`
	Author    Author        `bson:"author"        json:"author"`
	Text      string        `bson:"text"          json:"question"`
	CreatedAt time.Time     `bson:"created_at"    json:"createdAt"`
}

// Answer is a reply to a Question.
type Answer struct {
	ID         bson.ObjectID `bson:"_id,omitempty" json:"_id"`
	QuestionID bson.ObjectID `bson:"question_id"   json:"questionId"`
	Author     Author        `bson:"author"        json:"author"`
	Text       string        `bson:"text"          json:"answer"`
	CreatedAt  time.Time     `bson:"created_at"    json:"createdAt"`
}

// QuestionThread is a question with all of its answers.
type QuestionThread struct {
	Question
	Answers []Answer `json:"answers"`
}

// ContentThread is a full course section with its Q&A thread.
type ContentThread struct {
	CourseContent
	Questions []QuestionThread `json:"questions"`
}
