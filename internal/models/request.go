package models

import (
	"encoding/json"
	"sort"
)

// Submission field names. These are the only keys a profile payload may carry.
const (
	FieldName        = "name"
	FieldPassword    = "password"
	FieldDOB         = "dob"
	FieldAddress     = "address"
	FieldLat         = "latStr"
	FieldLong        = "longStr"
	FieldDescription = "description"
)

// MandatoryFields lists every field a create request must carry, in the
// order violations are reported.
var MandatoryFields = []string{
	FieldName,
	FieldPassword,
	FieldDOB,
	FieldAddress,
	FieldLat,
	FieldLong,
	FieldDescription,
}

// ProfileSubmission is a profile payload decoded onto the fixed schema. A nil
// field was absent from the payload.
type ProfileSubmission struct {
	Name        *string
	Password    *string
	DOB         *string
	Address     *string
	LatStr      *string
	LongStr     *string
	Description *string

	// Unknown holds keys outside the schema, sorted.
	Unknown []string
	// NonString holds schema keys whose value was not a JSON string, sorted.
	NonString []string
}

// Field returns the submitted value for a schema field name.
func (s *ProfileSubmission) Field(name string) *string {
	switch name {
	case FieldName:
		return s.Name
	case FieldPassword:
		return s.Password
	case FieldDOB:
		return s.DOB
	case FieldAddress:
		return s.Address
	case FieldLat:
		return s.LatStr
	case FieldLong:
		return s.LongStr
	case FieldDescription:
		return s.Description
	}
	return nil
}

func (s *ProfileSubmission) slot(name string) **string {
	switch name {
	case FieldName:
		return &s.Name
	case FieldPassword:
		return &s.Password
	case FieldDOB:
		return &s.DOB
	case FieldAddress:
		return &s.Address
	case FieldLat:
		return &s.LatStr
	case FieldLong:
		return &s.LongStr
	case FieldDescription:
		return &s.Description
	}
	return nil
}

// UnmarshalJSON decodes a JSON object onto the schema. It fails only when the
// payload is not an object; unknown keys and non-string values are recorded
// so the validator can report them alongside every other violation.
func (s *ProfileSubmission) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*s = ProfileSubmission{}
	for key, value := range raw {
		slot := s.slot(key)
		if slot == nil {
			s.Unknown = append(s.Unknown, key)
			continue
		}
		var str string
		if err := json.Unmarshal(value, &str); err != nil || string(value) == "null" {
			s.NonString = append(s.NonString, key)
			continue
		}
		*slot = &str
	}
	sort.Strings(s.Unknown)
	sort.Strings(s.NonString)
	return nil
}

// FriendRequest is the add-friend payload.
type FriendRequest struct {
	Password    *string `json:"password"`
	FriendToAdd *string `json:"friendToAdd"`
}

// PasswordRequest carries the password that authorizes a delete.
type PasswordRequest struct {
	Password *string `json:"password"`
}
