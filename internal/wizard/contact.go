package wizard

import "strings"

// ContactField names one of the three contact inputs.
type ContactField string

const (
	FieldName  ContactField = "name"
	FieldEmail ContactField = "email"
	FieldPhone ContactField = "phone"
)

// ContactFields lists the inputs in form order.
var ContactFields = []ContactField{FieldName, FieldEmail, FieldPhone}

// ParseContactField maps a form field name to a ContactField.
func ParseContactField(name string) (ContactField, error) {
	switch f := ContactField(strings.ToLower(strings.TrimSpace(name))); f {
	case FieldName, FieldEmail, FieldPhone:
		return f, nil
	default:
		return "", ErrUnknownField
	}
}

func (d Draft) withContact(field ContactField, value string) Draft {
	switch field {
	case FieldName:
		d.Name = value
	case FieldEmail:
		d.Email = value
	case FieldPhone:
		d.Phone = value
	}
	return d
}

// Contact returns the current value of a contact field.
func (d Draft) Contact(field ContactField) string {
	switch field {
	case FieldName:
		return d.Name
	case FieldEmail:
		return d.Email
	case FieldPhone:
		return d.Phone
	default:
		return ""
	}
}

// ValidateContact checks the required fields in form order and reports the first failure.
func ValidateContact(d Draft) error {
	for _, f := range ContactFields {
		if strings.TrimSpace(d.Contact(f)) == "" {
			return &ValidationError{Field: f, Err: ErrMissingContact}
		}
	}
	if !emailShaped(strings.TrimSpace(d.Email)) {
		return &ValidationError{Field: FieldEmail, Err: ErrInvalidEmail}
	}
	return nil
}

// emailShaped mirrors the browser's type=email check loosely: one "@" with
// text on both sides and no whitespace.
func emailShaped(v string) bool {
	if strings.ContainsAny(v, " \t\r\n") {
		return false
	}
	at := strings.Index(v, "@")
	if at <= 0 || at != strings.LastIndex(v, "@") || at == len(v)-1 {
		return false
	}
	return true
}
