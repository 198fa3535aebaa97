package handler

// --- Request / Response types ---

// userPayload documents the writable user fields. Handlers decode bodies into
// domain.UserPatch so that null and absent keys stay distinct.
type userPayload struct {
	Email     *string `json:"email"      example:"a@x.com"`
	Password  *string `json:"password"   example:"secret1"`
	FirstName *string `json:"first_name" example:"Ada"`
	LastName  *string `json:"last_name"  example:"Lovelace"`
	ContactNo *string `json:"contact_no" example:"+1 202 555 0143"`
	Address   *string `json:"address"    example:"12 St James's Square"`
	DOB       *string `json:"dob"        example:"1815-12-10"`
	Gender    *string `json:"gender"     example:"female"`
	RoleID    *string `json:"role_id"`
}

type userResponse struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	ContactNo *string `json:"contact_no"`
	Address   *string `json:"address"`
	DOB       *string `json:"dob"`
	Gender    *string `json:"gender"`
	RoleID    *string `json:"role_id"`
	Active    bool    `json:"active"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

type createUserEnvelope struct {
	Code    int          `json:"code"`
	Message string       `json:"message"`
	Data    userResponse `json:"data"`
}

type failureEnvelope struct {
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
}

type messageEnvelope struct {
	Message string `json:"message"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

type createRoleRequest struct {
	Name string `json:"name"`
	Key  string `json:"key"`
}

type roleResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Key       string `json:"key"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}
