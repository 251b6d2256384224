package users

import "log/slog"

// CreateInput is the strict payload accepted by Create.
type CreateInput struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Username string `json:"username" validate:"required,min=3,max=40,alphanum"`
	Name     string `json:"name" validate:"required,min=1,max=120"`
	Password string `json:"password" validate:"required,min=10,max=128"`
	Role     string `json:"role" validate:"omitempty,oneof=member editor admin"`
}

// LogValue keeps the password out of the pipeline's start log.
func (in CreateInput) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("email", in.Email),
		slog.String("username", in.Username),
		slog.String("role", in.Role),
	)
}

// UpdateInput is the strict patch payload accepted by Update.
type UpdateInput struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=120"`
	Password *string `json:"password" validate:"omitempty,min=10,max=128"`
	Role     *string `json:"role" validate:"omitempty,oneof=member editor admin"`
	IsActive *bool   `json:"is_active" validate:"-"`
}

// LogValue logs which fields the patch touches, never the password itself.
func (in UpdateInput) LogValue() slog.Value {
	attrs := []slog.Attr{slog.Bool("password", in.Password != nil)}
	if in.Name != nil {
		attrs = append(attrs, slog.String("name", *in.Name))
	}
	if in.Role != nil {
		attrs = append(attrs, slog.String("role", *in.Role))
	}
	if in.IsActive != nil {
		attrs = append(attrs, slog.Bool("is_active", *in.IsActive))
	}
	return slog.GroupValue(attrs...)
}
