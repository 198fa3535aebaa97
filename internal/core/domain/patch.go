package domain

import (
	"bytes"
	"encoding/json"
	"slices"
	"sort"
)

// UserField names a user attribute as it appears on the wire.
type UserField string

const (
	FieldEmail     UserField = "email"
	FieldPassword  UserField = "password"
	FieldFirstName UserField = "first_name"
	FieldLastName  UserField = "last_name"
	FieldContactNo UserField = "contact_no"
	FieldAddress   UserField = "address"
	FieldDOB       UserField = "dob"
	FieldGender    UserField = "gender"
	FieldRoleID    UserField = "role_id"
)

// Fields each operation is allowed to write. Anything else in a payload is
// dropped before validation.
var (
	RegistrationFields = []UserField{FieldEmail, FieldPassword, FieldRoleID}

	ProfileUpdateFields = []UserField{
		FieldEmail,
		FieldPassword,
		FieldFirstName,
		FieldLastName,
		FieldContactNo,
		FieldAddress,
		FieldDOB,
		FieldGender,
	}
)

// Permits reports whether field appears in allowed.
func Permits(allowed []UserField, field UserField) bool {
	return slices.Contains(allowed, field)
}

// UserPatch holds the keys supplied in an update payload. Absent keys are not
// in the map; keys supplied as null map to a Null optional.
type UserPatch map[UserField]Optional[string]

// Keys returns the supplied keys in a stable order.
func (p UserPatch) Keys() []UserField {
	keys := make([]UserField, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// UnmarshalJSON accepts strings, numbers (kept as their literal text) and
// null for every key. Any other JSON type is reported as a *ValidationError.
func (p *UserPatch) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := make(UserPatch, len(raw))
	var fieldErrs []FieldError
	for key, value := range raw {
		field := UserField(key)

		var opt Optional[string]
		if err := json.Unmarshal(value, &opt); err == nil {
			out[field] = opt
			continue
		}

		var num json.Number
		dec := json.NewDecoder(bytes.NewReader(value))
		dec.UseNumber()
		if err := dec.Decode(&num); err == nil {
			out[field] = Some(num.String())
			continue
		}

		fieldErrs = append(fieldErrs, FieldError{Field: key, Message: "must be a string"})
	}

	if ve := NewValidationError(fieldErrs); ve != nil {
		sort.Slice(ve.Fields, func(i, j int) bool { return ve.Fields[i].Field < ve.Fields[j].Field })
		return ve
	}

	*p = out
	return nil
}
