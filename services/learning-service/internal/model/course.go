package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/vasapolrittideah/elearning-api/shared/media"
)

// CatalogCacheKey is the cache key of the browse projection of all courses.
const CatalogCacheKey = "allCourses"

// Titled is a single bullet such as a benefit or a prerequisite.
type Titled struct {
	Title string `bson:"title" json:"title"`
}

// Link is an external resource attached to a course section.
type Link struct {
	Title string `bson:"title" json:"title"`
	URL   string `bson:"url"   json:"url"`
}

// Review is a learner review of a course.
type Review struct {
	UserID  string  `bson:"user_id" json:"userId"`
	Name    string  `bson:"name"    json:"name"`
	Rating  float64 `bson:"rating"  json:"rating"`
	Comment string  `bson:"comment" json:"comment"`
}

// CourseContent is one section of a course. VideoURL, Links and Suggestion
// are learner-only.
type CourseContent struct {
	ID           bson.ObjectID `bson:"_id"           json:"_id"`
	Title        string        `bson:"title"         json:"title"`
	Description  string        `bson:"description"   json:"description"`
	VideoURL     string        `bson:"video_url"     json:"videoUrl"`
	VideoSection string        `bson:"video_section" json:"videoSection"`
	VideoLength  float64       `bson:"video_length"  json:"videoLength"`
	VideoPlayer  string        `bson:"video_player"  json:"videoPlayer"`
	Links        []Link        `bson:"links"         json:"links"`
	Suggestion   string        `bson:"suggestion"    json:"suggestion"`
}

// Course is the full course document as stored.
type Course struct {
	ID             bson.ObjectID   `bson:"_id,omitempty"   json:"_id"`
	Name           string          `bson:"name"            json:"name"`
	Description    string          `bson:"description"     json:"description"`
	Price          float64         `bson:"price"           json:"price"`
	EstimatedPrice float64         `bson:"estimated_price" json:"estimatedPrice"`
	Thumbnail      *media.Asset    `bson:"thumbnail"       json:"thumbnail,omitempty"`
	Tags           string          `bson:"tags"            json:"tags"`
	Level          string          `bson:"level"           json:"level"`
	DemoURL        string          `bson:"demo_url"        json:"demoUrl"`
	Benefits       []Titled        `bson:"benefits"        json:"benefits"`
	Prerequisites  []Titled        `bson:"prerequisites"   json:"prerequisites"`
	Reviews        []Review        `bson:"reviews"         json:"reviews"`
	Contents       []CourseContent `bson:"course_data"     json:"courseData"`
	Ratings        float64         `bson:"ratings"         json:"ratings"`
	PurchasedBy    int             `bson:"purchased_by"    json:"purchasedBy"`
	CreatedAt      time.Time       `bson:"created_at"      json:"createdAt"`
	UpdatedAt      time.Time       `bson:"updated_at"      json:"updatedAt"`
}

// ContentPreview is a course section without its learner-only fields.
type ContentPreview struct {
	ID           bson.ObjectID `json:"_id"`
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	VideoSection string        `json:"videoSection"`
	VideoLength  float64       `json:"videoLength"`
	VideoPlayer  string        `json:"videoPlayer"`
}

// CoursePreview is the browse projection of a course served to non-owners.
type CoursePreview struct {
	ID             bson.ObjectID    `json:"_id"`
	Name           string           `json:"name"`
	Description    string           `json:"description"`
	Price          float64          `json:"price"`
	EstimatedPrice float64          `json:"estimatedPrice"`
	Thumbnail      *media.Asset     `json:"thumbnail,omitempty"`
	Tags           string           `json:"tags"`
	Level          string           `json:"level"`
	DemoURL        string           `json:"demoUrl"`
	Benefits       []Titled         `json:"benefits"`
	Prerequisites  []Titled         `json:"prerequisites"`
	Reviews        []Review         `json:"reviews"`
	Contents       []ContentPreview `json:"courseData"`
	Ratings        float64          `json:"ratings"`
	PurchasedBy    int              `json:"purchasedBy"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

// Preview strips learner-only fields from the course.
func (c *Course) Preview() CoursePreview {
	contents := make([]ContentPreview, len(c.Contents))
	for i, content := range c.Contents {
		contents[i] = ContentPreview{
			ID:           content.ID,
			Title:        content.Title,
			Description:  content.Description,
			VideoSection: content.VideoSection,
			VideoLength:  content.VideoLength,
			VideoPlayer:  content.VideoPlayer,
		}
	}

	return CoursePreview{
		ID:             c.ID,
		Name:           c.Name,
		Description:    c.Description,
		Price:          c.Price,
		EstimatedPrice: c.EstimatedPrice,
		Thumbnail:      c.Thumbnail,
		Tags:           c.Tags,
		Level:          c.Level,
		DemoURL:        c.DemoURL,
		Benefits:       c.Benefits,
		Prerequisites:  c.Prerequisites,
		Reviews:        c.Reviews,
		Contents:       contents,
		Ratings:        c.Ratings,
		PurchasedBy:    c.PurchasedBy,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

// Content returns the section with the given id.
func (c *Course) Content(contentID bson.ObjectID) (*CourseContent, bool) {
	for i := range c.Contents {
		if c.Contents[i].ID == contentID {
			return &c.Contents[i], true
		}
	}
	return nil, false
}
