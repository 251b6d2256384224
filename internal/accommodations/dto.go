package accommodations

// CreateInput is the strict payload accepted by Create.
type CreateInput struct {
	Name          string  `json:"name" validate:"required,min=3,max=200"`
	Kind          string  `json:"kind" validate:"required,oneof=HOTEL HOSTEL GUESTHOUSE APARTMENT CAMPING"`
	Destination   string  `json:"destination" validate:"required,min=2,max=120"`
	Description   string  `json:"description" validate:"max=2000"`
	PricePerNight float64 `json:"price_per_night" validate:"gte=0,lte=100000"`
	Rating        int     `json:"rating" validate:"gte=0,lte=5"`
}

// UpdateInput is the strict patch payload accepted by Update.
type UpdateInput struct {
	Name          *string  `json:"name" validate:"omitempty,min=3,max=200"`
	Kind          *string  `json:"kind" validate:"omitempty,oneof=HOTEL HOSTEL GUESTHOUSE APARTMENT CAMPING"`
	Destination   *string  `json:"destination" validate:"omitempty,min=2,max=120"`
	Description   *string  `json:"description" validate:"omitempty,max=2000"`
	PricePerNight *float64 `json:"price_per_night" validate:"omitempty,gte=0,lte=100000"`
	Rating        *int     `json:"rating" validate:"omitempty,gte=0,lte=5"`
	Published     *bool    `json:"published" validate:"-"`
}
