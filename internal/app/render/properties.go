package render

import (
	"math"
	"strconv"
	"strings"

	"github.com/sleroq/notion2md/internal/domain/notion"
)

// PropertyText renders a property value as plain text. Values it does not
// understand render empty.
func PropertyText(p notion.PropertyValue) string {
	switch p.Type {
	case notion.PropertyTitle:
		return notion.PlainText(p.Title)
	case notion.PropertyRichText:
		return notion.PlainText(p.RichText)
	case notion.PropertyNumber:
		if p.Number == nil {
			return ""
		}
		return formatNumber(*p.Number)
	case notion.PropertySelect:
		return optionName(p.Select)
	case notion.PropertyStatus:
		return optionName(p.Status)
	case notion.PropertyMultiSelect:
		names := make([]string, 0, len(p.MultiSelect))
		for _, o := range p.MultiSelect {
			names = append(names, o.Name)
		}
		return strings.Join(names, ", ")
	case notion.PropertyDate:
		return formatDate(p.Date)
	case notion.PropertyCheckbox:
		return yesNo(p.Checkbox)
	case notion.PropertyURL:
		return p.URL
	case notion.PropertyEmail:
		return p.Email
	case notion.PropertyPhoneNumber:
		return p.PhoneNumber
	case notion.PropertyRelation:
		ids := make([]string, 0, len(p.Relation))
		for _, r := range p.Relation {
			ids = append(ids, r.ID)
		}
		out := strings.Join(ids, ", ")
		if p.HasMore {
			out += "..."
		}
		return out
	case notion.PropertyPeople:
		names := make([]string, 0, len(p.People))
		for _, u := range p.People {
			names = append(names, userName(&u))
		}
		return strings.Join(names, ", ")
	case notion.PropertyFiles:
		names := make([]string, 0, len(p.Files))
		for _, f := range p.Files {
			name := f.Name
			if name == "" {
				name = f.URL()
			}
			names = append(names, name)
		}
		return strings.Join(names, ", ")
	case notion.PropertyCreatedTime:
		return p.CreatedTime
	case notion.PropertyLastEditedTime:
		return p.LastEditedTime
	case notion.PropertyCreatedBy:
		return userName(p.CreatedBy)
	case notion.PropertyLastEditedBy:
		return userName(p.LastEditedBy)
	case notion.PropertyFormula:
		return formulaText(p.Formula)
	case notion.PropertyRollup:
		return rollupText(p.Rollup)
	case notion.PropertyUniqueID:
		return uniqueIDText(p.UniqueID)
	case notion.PropertyVerification:
		if p.Verification == nil {
			return ""
		}
		if p.Verification.VerifiedBy != nil {
			return p.Verification.State + " (" + userName(p.Verification.VerifiedBy) + ")"
		}
		return p.Verification.State
	default:
		return ""
	}
}

func formatNumber(n float64) string {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return ""
	}
	if n == math.Trunc(n) {
		return strconv.FormatFloat(n, 'f', 0, 64)
	}
	s := strconv.FormatFloat(n, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

func formatDate(d *notion.DateValue) string {
	if d == nil {
		return ""
	}
	if d.End != "" {
		return d.Start + " → " + d.End
	}
	return d.Start
}

func optionName(o *notion.SelectOption) string {
	if o == nil {
		return ""
	}
	return o.Name
}

func userName(u *notion.User) string {
	if u == nil {
		return ""
	}
	if u.Name != "" {
		return u.Name
	}
	return u.ID
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func formulaText(f *notion.FormulaValue) string {
	if f == nil {
		return ""
	}
	switch f.Type {
	case "string":
		if f.String != nil {
			return *f.String
		}
	case "number":
		if f.Number != nil {
			return formatNumber(*f.Number)
		}
	case "boolean":
		if f.Boolean != nil {
			return yesNo(*f.Boolean)
		}
	case "date":
		return formatDate(f.Date)
	}
	return ""
}

func rollupText(r *notion.RollupValue) string {
	if r == nil {
		return ""
	}
	switch r.Type {
	case "number":
		if r.Number != nil {
			return formatNumber(*r.Number)
		}
	case "date":
		return formatDate(r.Date)
	case "array":
		parts := make([]string, 0, len(r.Array))
		for _, item := range r.Array {
			if s := PropertyText(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	case "incomplete":
		return "[Incomplete Rollup]"
	case "unsupported":
		return "[Unsupported Rollup]"
	}
	return ""
}

func uniqueIDText(u *notion.UniqueIDValue) string {
	if u == nil || u.Number == nil {
		return ""
	}
	n := strconv.FormatInt(*u.Number, 10)
	if u.Prefix != nil && *u.Prefix != "" {
		return *u.Prefix + "-" + n
	}
	return n
}
