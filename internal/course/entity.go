// AngelaMos | 2026
// entity.go

package course

import (
	"time"
)

type Course struct {
	ID          string    `db:"id"          json:"id"`
	Name        string    `db:"name"        json:"name"`
	Description string    `db:"description" json:"description"`
	Holes       int       `db:"holes"       json:"holes"`
	Par         int       `db:"par"         json:"par"`
	Location    string    `db:"location"    json:"location"`
	CreatedAt   time.Time `db:"created_at"  json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"  json:"updated_at"`
}

type CreateCourseRequest struct {
	Name        string `json:"name"        validate:"required,min=1,max=120"`
	Description string `json:"description" validate:"max=5000"`
	Holes       int    `json:"holes"       validate:"required,oneof=9 18"`
	Par         int    `json:"par"         validate:"required,gt=0,lte=90"`
	Location    string `json:"location"    validate:"max=200"`
}
