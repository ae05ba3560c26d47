package submissions

import "time"

const (
	StatusNew       = "new"
	StatusReviewing = "reviewing"
	StatusClosed    = "closed"
)

var validStatuses = map[string]struct{}{
	StatusNew:       {},
	StatusReviewing: {},
	StatusClosed:    {},
}

func IsValidStatus(value string) bool {
	_, ok := validStatuses[value]
	return ok
}

// Entry is one answered field, in the order of the form definition.
type Entry struct {
	FieldID string `bson:"field_id" json:"field_id"`
	Label   string `bson:"label" json:"label"`
	Value   string `bson:"value" json:"value"`
}

type Submission struct {
	ID         string    `bson:"_id,omitempty" json:"id"`
	FormID     string    `bson:"form_id" json:"form_id"`
	FormTitle  string    `bson:"form_title" json:"form_title"`
	Entries    []Entry   `bson:"entries" json:"entries"`
	Email      string    `bson:"email,omitempty" json:"email,omitempty"`
	Name       string    `bson:"name,omitempty" json:"name,omitempty"`
	Status     string    `bson:"status" json:"status"`
	Locale     string    `bson:"locale,omitempty" json:"locale,omitempty"`
	Subsidiary string    `bson:"subsidiary,omitempty" json:"subsidiary,omitempty"`
	IP         string    `bson:"ip,omitempty" json:"-"`
	UserAgent  string    `bson:"user_agent,omitempty" json:"-"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time `bson:"updated_at" json:"updated_at"`
}

// Value returns the submitted value of a field.
func (s Submission) Value(fieldID string) string {
	for _, e := range s.Entries {
		if e.FieldID == fieldID {
			return e.Value
		}
	}
	return ""
}

type AdminStatusUpdateRequest struct {
	Status string `json:"status" validate:"required,oneof=new reviewing closed"`
}

type ListFilter struct {
	FormID string
	Status string
}
