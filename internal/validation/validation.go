// Package validation parses raw request payloads into strict field
// structures. It only answers "is this request well-formed": unknown keys
// and wrongly-typed values are rejected, while business rules (ranges,
// enums, lengths) are left to the listing store on write.
package validation

import (
	"encoding/json"
	"sort"
	"strings"
	"time"

	"tradepost/internal/apperr"
	"tradepost/internal/models"
)

// ListingFields holds the recognized listing keys of a payload. Nil means
// the key was absent, which an update treats as "leave unchanged".
type ListingFields struct {
	Title        *string
	Description  *string
	Category     *string
	AskingPrice  *float64
	DeliveryType *DeliveryFields
}

type DeliveryFields struct {
	Shipping *bool
	Pickup   *bool
}

// UserFields holds the recognized registration keys of a payload.
type UserFields struct {
	Username    *string
	Email       *string
	Password    *string
	PhoneNumber *string
	BirthDate   *string
	Address     *AddressFields
}

type AddressFields struct {
	Country    *string
	City       *string
	PostalCode *string
}

type LoginFields struct {
	Username *string
	Password *string
}

func decodeStrict(body []byte, allowed []string) (map[string]json.RawMessage, error) {
	raw := map[string]json.RawMessage{}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &raw); err != nil {
			return nil, apperr.New(apperr.ErrInvalidShape, "malformed JSON body")
		}
	}

	var extras []string
	for key := range raw {
		known := false
		for _, name := range allowed {
			if key == name {
				known = true
				break
			}
		}
		if !known {
			extras = append(extras, key)
		}
	}
	if len(extras) > 0 {
		sort.Strings(extras)
		return nil, apperr.Newf(apperr.ErrInvalidShape, "extraneous fields in body: %s", strings.Join(extras, ", "))
	}

	return raw, nil
}

func unmarshalField(raw map[string]json.RawMessage, key string, dst any, want string) error {
	value, ok := raw[key]
	if !ok {
		return nil
	}
	if err := json.Unmarshal(value, dst); err != nil {
		return apperr.Newf(apperr.ErrInvalidShape, "%s must be %s", key, want)
	}
	return nil
}

// ParseListingFields destructures a listing payload. Every recognized key
// is optional here; create-time presence checks belong to the store.
func ParseListingFields(body []byte) (ListingFields, error) {
	var fields ListingFields

	raw, err := decodeStrict(body, []string{"title", "description", "category", "askingPrice", "deliveryType"})
	if err != nil {
		return fields, err
	}

	if err := unmarshalField(raw, "title", &fields.Title, "a string"); err != nil {
		return fields, err
	}
	if err := unmarshalField(raw, "description", &fields.Description, "a string"); err != nil {
		return fields, err
	}
	if err := unmarshalField(raw, "category", &fields.Category, "a string"); err != nil {
		return fields, err
	}
	if err := unmarshalField(raw, "askingPrice", &fields.AskingPrice, "a number"); err != nil {
		return fields, err
	}

	if value, ok := raw["deliveryType"]; ok {
		nested, err := decodeStrict(value, []string{"shipping", "pickup"})
		if err != nil {
			return fields, err
		}
		delivery := &DeliveryFields{}
		if err := unmarshalField(nested, "shipping", &delivery.Shipping, "a boolean"); err != nil {
			return fields, err
		}
		if err := unmarshalField(nested, "pickup", &delivery.Pickup, "a boolean"); err != nil {
			return fields, err
		}
		fields.DeliveryType = delivery
	}

	return fields, nil
}

// ParseUserFields destructures a registration payload.
func ParseUserFields(body []byte) (UserFields, error) {
	var fields UserFields

	raw, err := decodeStrict(body, []string{"username", "email", "password", "phoneNumber", "birthDate", "address"})
	if err != nil {
		return fields, err
	}

	if err := unmarshalField(raw, "username", &fields.Username, "a string"); err != nil {
		return fields, err
	}
	if err := unmarshalField(raw, "email", &fields.Email, "a string"); err != nil {
		return fields, err
	}
	if err := unmarshalField(raw, "password", &fields.Password, "a string"); err != nil {
		return fields, err
	}
	if err := unmarshalField(raw, "phoneNumber", &fields.PhoneNumber, "a string"); err != nil {
		return fields, err
	}
	if err := unmarshalField(raw, "birthDate", &fields.BirthDate, "a string"); err != nil {
		return fields, err
	}

	if value, ok := raw["address"]; ok {
		nested, err := decodeStrict(value, []string{"country", "city", "postalCode"})
		if err != nil {
			return fields, err
		}
		address := &AddressFields{}
		if err := unmarshalField(nested, "country", &address.Country, "a string"); err != nil {
			return fields, err
		}
		if err := unmarshalField(nested, "city", &address.City, "a string"); err != nil {
			return fields, err
		}
		if err := unmarshalField(nested, "postalCode", &address.PostalCode, "a string"); err != nil {
			return fields, err
		}
		fields.Address = address
	}

	return fields, nil
}

// ParseLoginFields destructures a login payload.
func ParseLoginFields(body []byte) (LoginFields, error) {
	var fields LoginFields

	raw, err := decodeStrict(body, []string{"username", "password"})
	if err != nil {
		return fields, err
	}

	if err := unmarshalField(raw, "username", &fields.Username, "a string"); err != nil {
		return fields, err
	}
	if err := unmarshalField(raw, "password", &fields.Password, "a string"); err != nil {
		return fields, err
	}

	return fields, nil
}

// PostedDateLayout is the only accepted postedDate format.
const PostedDateLayout = "2006-01-02"

// ParseSearchFilter extracts the recognized search filters. Unknown keys
// are ignored: a filter that is not understood simply does not narrow the
// search. Wrongly-typed string filters are domain errors, while a bad
// postedDate is a shape error, matching how the boundary reports them.
func ParseSearchFilter(body []byte) (models.SearchFilter, error) {
	var filter models.SearchFilter

	raw := map[string]json.RawMessage{}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &raw); err != nil {
			return filter, apperr.New(apperr.ErrInvalidShape, "malformed JSON body")
		}
	}

	for _, entry := range []struct {
		key string
		dst *string
	}{
		{"country", &filter.Country},
		{"city", &filter.City},
		{"category", &filter.Category},
	} {
		value, ok := raw[entry.key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(value, entry.dst); err != nil {
			return filter, apperr.Newf(apperr.ErrDomainValidation, "%s must be a string", entry.key)
		}
	}

	if value, ok := raw["postedDate"]; ok {
		var date string
		if err := json.Unmarshal(value, &date); err != nil {
			return filter, apperr.New(apperr.ErrInvalidShape, "postedDate must be a string in YYYY-MM-DD format")
		}
		if _, err := time.Parse(PostedDateLayout, date); err != nil {
			return filter, apperr.New(apperr.ErrInvalidShape, "postedDate must be in YYYY-MM-DD format")
		}
		filter.PostedDate = date
	}

	return filter, nil
}
