package exhibition

import (
	"strconv"
	"strings"
)

// Categories and segments offered by the stall editor.
var (
	Categories = []string{"Food", "Jewelry", "Electronics", "Art", "Apparel", "Services", "Other"}
	Segments   = []string{"Basic", "Luxury", "Combo", "Premium"}
)

// FieldType selects the editor widget and value parsing for a custom field.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldNumber   FieldType = "number"
	FieldTextarea FieldType = "textarea"
)

// FieldDescriptor describes one custom stall field.
type FieldDescriptor struct {
	Key         string    `json:"key" mapstructure:"key"`
	Label       string    `json:"label" mapstructure:"label"`
	Type        FieldType `json:"type,omitempty" mapstructure:"type"`
	Required    bool      `json:"required,omitempty" mapstructure:"required"`
	Placeholder string    `json:"placeholder,omitempty" mapstructure:"placeholder"`

	// Validate returns a user-facing message, or "" when the value is acceptable.
	Validate func(v FieldValue, s *Stall) string `json:"-" mapstructure:"-"`
}

// FieldValue is a typed optional value of a custom field.
type FieldValue struct {
	Text   string   `json:"text,omitempty"`
	Number *float64 `json:"number,omitempty"`
}

// TextValue returns a text field value.
func TextValue(s string) FieldValue {
	return FieldValue{Text: s}
}

// NumberValue returns a numeric field value.
func NumberValue(n float64) FieldValue {
	return FieldValue{Number: &n}
}

// IsZero reports whether the value is unset.
func (v FieldValue) IsZero() bool {
	return v.Number == nil && v.Text == ""
}

func (v FieldValue) String() string {
	if v.Number != nil {
		return strconv.FormatFloat(*v.Number, 'f', -1, 64)
	}
	return v.Text
}

// Schema is the ordered list of custom fields a stall carries.
type Schema struct {
	// RequireNumber makes the stall number mandatory. When false an empty
	// number is replaced by a generated one on save.
	RequireNumber bool
	Fields        []FieldDescriptor
}

// DefaultSchema edits the built-in stall fields only and requires a number.
func DefaultSchema() *Schema {
	return &Schema{RequireNumber: true}
}

// NewSchema returns a schema made of custom fields. Base fields are hidden
// by editors and the number is generated when left empty.
func NewSchema(fields ...FieldDescriptor) *Schema {
	return &Schema{Fields: fields}
}

// ShowBaseFields reports whether editors should offer the built-in fields.
func (s *Schema) ShowBaseFields() bool {
	return s == nil || len(s.Fields) == 0
}

// Field returns the descriptor for key.
func (s *Schema) Field(key string) (FieldDescriptor, bool) {
	if s == nil {
		return FieldDescriptor{}, false
	}
	for _, f := range s.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return FieldDescriptor{}, false
}

// Parse converts raw editor input into a typed value for the field.
func (f FieldDescriptor) Parse(raw string) (FieldValue, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return FieldValue{}, ""
	}
	if f.Type == FieldNumber {
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return FieldValue{}, f.Label + " must be a number."
		}
		return NumberValue(n), ""
	}
	return TextValue(raw), ""
}

// Apply parses raw editor values into st.Extra. Parse failures are
// returned as field errors and leave the previous value in place.
func (s *Schema) Apply(st *Stall, raw map[string]string) FieldErrors {
	errs := FieldErrors{}
	if s == nil {
		return errs
	}
	for _, f := range s.Fields {
		in, ok := raw[f.Key]
		if !ok {
			continue
		}
		v, msg := f.Parse(in)
		if msg != "" {
			errs[f.Key] = msg
			continue
		}
		if st.Extra == nil {
			st.Extra = make(map[string]FieldValue)
		}
		if v.IsZero() {
			delete(st.Extra, f.Key)
		} else {
			st.Extra[f.Key] = v
		}
	}
	return errs
}

// Validate checks required fields and custom validators.
func (s *Schema) Validate(st *Stall) FieldErrors {
	errs := FieldErrors{}
	if s == nil {
		return errs
	}
	for _, f := range s.Fields {
		v := st.Extra[f.Key]
		if f.Required && v.IsZero() {
			errs[f.Key] = f.Label + " is required."
			continue
		}
		if f.Validate != nil {
			if msg := f.Validate(v, st); msg != "" {
				errs[f.Key] = msg
			}
		}
	}
	return errs
}
