package posts

// CreateInput is the strict payload accepted by Create.
type CreateInput struct {
	Title      string `json:"title" validate:"required,min=3,max=200"`
	Summary    string `json:"summary" validate:"max=500"`
	Body       string `json:"body" validate:"required,min=10"`
	Visibility string `json:"visibility" validate:"omitempty,oneof=DRAFT PRIVATE PUBLIC"`
}

// UpdateInput is the strict patch payload accepted by Update. Nil fields are
// left untouched.
type UpdateInput struct {
	Title      *string `json:"title" validate:"omitempty,min=3,max=200"`
	Summary    *string `json:"summary" validate:"omitempty,max=500"`
	Body       *string `json:"body" validate:"omitempty,min=10"`
	Visibility *string `json:"visibility" validate:"omitempty,oneof=DRAFT PRIVATE PUBLIC"`
}
