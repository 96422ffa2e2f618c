package notion

import "encoding/json"

type PropertyType string

const (
	PropertyTitle          PropertyType = "title"
	PropertyRichText       PropertyType = "rich_text"
	PropertyNumber         PropertyType = "number"
	PropertySelect         PropertyType = "select"
	PropertyMultiSelect    PropertyType = "multi_select"
	PropertyStatus         PropertyType = "status"
	PropertyDate           PropertyType = "date"
	PropertyFormula        PropertyType = "formula"
	PropertyRelation       PropertyType = "relation"
	PropertyRollup         PropertyType = "rollup"
	PropertyPeople         PropertyType = "people"
	PropertyFiles          PropertyType = "files"
	PropertyCheckbox       PropertyType = "checkbox"
	PropertyURL            PropertyType = "url"
	PropertyEmail          PropertyType = "email"
	PropertyPhoneNumber    PropertyType = "phone_number"
	PropertyCreatedTime    PropertyType = "created_time"
	PropertyCreatedBy      PropertyType = "created_by"
	PropertyLastEditedTime PropertyType = "last_edited_time"
	PropertyLastEditedBy   PropertyType = "last_edited_by"
	PropertyUniqueID       PropertyType = "unique_id"
	PropertyVerification   PropertyType = "verification"
	PropertyButton         PropertyType = "button"
	PropertyUnsupported    PropertyType = "unsupported"
)

// PropertySchema is one column definition of a database.
type PropertySchema struct {
	ID   string       `json:"id"`
	Name string       `json:"name"`
	Type PropertyType `json:"type"`
}

type SelectOption struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

type DateValue struct {
	Start    string `json:"start"`
	End      string `json:"end,omitempty"`
	TimeZone string `json:"time_zone,omitempty"`
}

type User struct {
	ID     string `json:"id"`
	Name   string `json:"name,omitempty"`
	Person *struct {
		Email string `json:"email"`
	} `json:"person,omitempty"`
}

type Relation struct {
	ID string `json:"id"`
}

type FileRef struct {
	Name     string `json:"name"`
	Type     string `json:"type,omitempty"`
	External *Link  `json:"external,omitempty"`
	File     *Link  `json:"file,omitempty"`
}

func (f FileRef) URL() string {
	if f.External != nil && f.External.URL != "" {
		return f.External.URL
	}
	if f.File != nil {
		return f.File.URL
	}
	return ""
}

type FormulaValue struct {
	Type    string     `json:"type"`
	String  *string    `json:"string,omitempty"`
	Number  *float64   `json:"number,omitempty"`
	Boolean *bool      `json:"boolean,omitempty"`
	Date    *DateValue `json:"date,omitempty"`
}

type RollupValue struct {
	Type     string          `json:"type"`
	Number   *float64        `json:"number,omitempty"`
	Date     *DateValue      `json:"date,omitempty"`
	Array    []PropertyValue `json:"array,omitempty"`
	Function string          `json:"function,omitempty"`
}

type UniqueIDValue struct {
	Prefix *string `json:"prefix"`
	Number *int64  `json:"number"`
}

type VerificationValue struct {
	State      string `json:"state"`
	VerifiedBy *User  `json:"verified_by,omitempty"`
}

// PropertyValue is one cell of a page: the Type field names the populated member.
type PropertyValue struct {
	ID             string             `json:"id,omitempty"`
	Type           PropertyType       `json:"type"`
	Title          []RichText         `json:"title,omitempty"`
	RichText       []RichText         `json:"rich_text,omitempty"`
	Number         *float64           `json:"number,omitempty"`
	Select         *SelectOption      `json:"select,omitempty"`
	MultiSelect    []SelectOption     `json:"multi_select,omitempty"`
	Status         *SelectOption      `json:"status,omitempty"`
	Date           *DateValue         `json:"date,omitempty"`
	Formula        *FormulaValue      `json:"formula,omitempty"`
	Relation       []Relation         `json:"relation,omitempty"`
	HasMore        bool               `json:"has_more,omitempty"`
	Rollup         *RollupValue       `json:"rollup,omitempty"`
	People         []User             `json:"people,omitempty"`
	Files          []FileRef          `json:"files,omitempty"`
	Checkbox       bool               `json:"checkbox,omitempty"`
	URL            string             `json:"url,omitempty"`
	Email          string             `json:"email,omitempty"`
	PhoneNumber    string             `json:"phone_number,omitempty"`
	CreatedTime    string             `json:"created_time,omitempty"`
	CreatedBy      *User              `json:"created_by,omitempty"`
	LastEditedTime string             `json:"last_edited_time,omitempty"`
	LastEditedBy   *User              `json:"last_edited_by,omitempty"`
	UniqueID       *UniqueIDValue     `json:"unique_id,omitempty"`
	Verification   *VerificationValue `json:"verification,omitempty"`
}

// Properties maps a property name to its value. Decoding never fails on a single
// malformed value; such entries degrade to PropertyUnsupported.
type Properties map[string]PropertyValue

func (p *Properties) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Properties, len(raw))
	for name, msg := range raw {
		var v PropertyValue
		if err := json.Unmarshal(msg, &v); err != nil {
			v = PropertyValue{Type: PropertyUnsupported}
		}
		out[name] = v
	}
	*p = out
	return nil
}

// Title returns the plain text of the first title-typed property.
func (p Properties) Title() string {
	for _, v := range p {
		if v.Type == PropertyTitle {
			return PlainText(v.Title)
		}
	}
	return ""
}

// TitleKey returns the name of the title-typed property, if any.
func (p Properties) TitleKey() string {
	for k, v := range p {
		if v.Type == PropertyTitle {
			return k
		}
	}
	return ""
}
