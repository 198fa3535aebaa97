package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/user-accounts/internal/core/domain"
)

// --- Request → Service input ---

// decodePatch reads the request body as a user patch. An empty body is an
// empty patch. Non-string values come back as *domain.ValidationError; any
// other malformed body is a 400.
func decodePatch(c echo.Context) (domain.UserPatch, error) {
	patch := domain.UserPatch{}
	err := json.NewDecoder(c.Request().Body).Decode(&patch)
	switch {
	case err == nil, errors.Is(err, io.EOF):
		return patch, nil
	case isValidation(err):
		return nil, err
	default:
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
}

func isValidation(err error) bool {
	_, ok := domain.AsValidationError(err)
	return ok
}

// --- Service result → HTTP response ---

func toUserResponse(u *domain.User) userResponse {
	var dob *string
	if u.DOB != nil {
		s := u.DOB.Format(domain.DateLayout)
		dob = &s
	}
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		ContactNo: u.ContactNo,
		Address:   u.Address,
		DOB:       dob,
		Gender:    u.Gender,
		RoleID:    u.RoleID,
		Active:    u.Active,
		CreatedAt: u.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: u.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func toUserResponses(users []*domain.User) []userResponse {
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return out
}

func toRoleResponse(r *domain.Role) roleResponse {
	return roleResponse{
		ID:        r.ID,
		Name:      r.Name,
		Key:       r.Key,
		CreatedAt: r.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: r.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func toRoleResponses(roles []*domain.Role) []roleResponse {
	out := make([]roleResponse, 0, len(roles))
	for _, r := range roles {
		out = append(out, toRoleResponse(r))
	}
	return out
}
