package dto

// LoginRequest entrada para login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginResponse salida con token y usuario.
type LoginResponse struct {
	Token  string       `json:"token"`
	Tenant string       `json:"tenant"`
	User   UserResponse `json:"user"`
}

// UserResponse salida de usuario sin hash de contraseña.
type UserResponse struct {
	ID          string  `json:"id"`
	Email       string  `json:"email"`
	Name        string  `json:"name"`
	Role        string  `json:"role"`
	WarehouseID *string `json:"warehouse_id,omitempty"`
	Status      string  `json:"status"`
}
