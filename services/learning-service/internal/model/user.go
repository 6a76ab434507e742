package model

import (
	"slices"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/vasapolrittideah/elearning-api/shared/media"
)

// Role is the authorization role of a user.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// OwnedCourse references a course the user has access to.
type OwnedCourse struct {
	CourseID string `bson:"course_id" json:"courseId"`
}

// User represents a learner or administrator account.
// PasswordHash is never serialized to JSON, so neither API responses nor
// session records carry it.
type User struct {
	ID           bson.ObjectID `bson:"_id,omitempty"  json:"_id"`
	Name         string        `bson:"name"           json:"name"`
	Email        string        `bson:"email"          json:"email"`
	PasswordHash string        `bson:"password_hash"  json:"-"`
	Avatar       *media.Asset  `bson:"avatar"         json:"avatar,omitempty"`
	Role         Role          `bson:"role"           json:"role"`
	Verified     bool          `bson:"verified"       json:"isVerified"`
	Courses      []OwnedCourse `bson:"courses"        json:"courses"`
	CreatedAt    time.Time     `bson:"created_at"     json:"createdAt"`
	UpdatedAt    time.Time     `bson:"updated_at"     json:"updatedAt"`
}

// OwnsCourse reports whether courseID is in the user's owned-course list.
func (u *User) OwnsCourse(courseID string) bool {
	return slices.ContainsFunc(u.Courses, func(c OwnedCourse) bool {
		return c.CourseID == courseID
	})
}

// HasRole reports whether the user's role is one of roles.
func (u *User) HasRole(roles ...Role) bool {
	return slices.Contains(roles, u.Role)
}
