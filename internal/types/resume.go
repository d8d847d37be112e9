// Package types provides type definitions for structured data used throughout the resume-builder system.
package types

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// Section identifiers understood by the renderer and the paginator.
const (
	SectionPersonal   = "personal"
	SectionSummary    = "summary"
	SectionEmployment = "employment"
	SectionEducation  = "education"
	SectionSkills     = "skills"
	SectionLinks      = "links"

	// CustomSectionPrefix prefixes user-defined sections, e.g. "custom:Volunteering".
	CustomSectionPrefix = "custom:"
)

// DefaultActiveSections is the section order of a freshly created resume.
var DefaultActiveSections = []string{
	SectionSummary,
	SectionEmployment,
	SectionEducation,
	SectionSkills,
	SectionLinks,
}

// ResumeDocument is the authoritative resume content owned by an editing session.
type ResumeDocument struct {
	Name     string `json:"name" validate:"required,max=200"`
	Title    string `json:"title,omitempty" validate:"max=200"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	Phone    string `json:"phone,omitempty" validate:"max=50"`
	Location string `json:"location,omitempty" validate:"max=200"`

	// ActiveSections is the ordered list of sections that render and paginate.
	ActiveSections []string `json:"active_sections" validate:"dive,required"`

	Summary    string                   `json:"summary,omitempty"`
	Employment []Employment             `json:"employment,omitempty" validate:"dive"`
	Education  []Education              `json:"education,omitempty" validate:"dive"`
	Skills     []string                 `json:"skills,omitempty"`
	Links      []Link                   `json:"links,omitempty" validate:"dive"`
	Custom     map[string]CustomSection `json:"custom,omitempty" validate:"dive"`
}

// Employment is one entry of the employment history section.
type Employment struct {
	Company     string   `json:"company" validate:"required"`
	Role        string   `json:"role" validate:"required"`
	Location    string   `json:"location,omitempty"`
	StartDate   string   `json:"start_date,omitempty"`
	EndDate     string   `json:"end_date,omitempty"`
	Description string   `json:"description,omitempty"`
	Bullets     []string `json:"bullets,omitempty"`
}

// Education is one entry of the education section.
type Education struct {
	School    string `json:"school" validate:"required"`
	Degree    string `json:"degree,omitempty"`
	Field     string `json:"field,omitempty"`
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
	Details   string `json:"details,omitempty"`
}

// Link is a labelled URL (portfolio, GitHub, LinkedIn...).
type Link struct {
	Label string `json:"label" validate:"required"`
	URL   string `json:"url" validate:"required,url"`
}

// CustomSection is a user-defined block keyed by its name.
type CustomSection struct {
	Title string   `json:"title" validate:"required"`
	Body  string   `json:"body,omitempty"`
	Items []string `json:"items,omitempty"`
}

// Validate validates the ResumeDocument using the validator.
func (d *ResumeDocument) Validate() error {
	validate := validator.New()
	return validate.Struct(d)
}

// Clone returns a deep copy so renderers and measurers never share slices with the editor.
func (d *ResumeDocument) Clone() *ResumeDocument {
	if d == nil {
		return nil
	}
	c := *d
	c.ActiveSections = append([]string(nil), d.ActiveSections...)
	c.Skills = append([]string(nil), d.Skills...)
	c.Links = append([]Link(nil), d.Links...)
	c.Education = append([]Education(nil), d.Education...)
	if d.Employment != nil {
		c.Employment = make([]Employment, len(d.Employment))
		for i, e := range d.Employment {
			e.Bullets = append([]string(nil), e.Bullets...)
			c.Employment[i] = e
		}
	}
	if d.Custom != nil {
		c.Custom = make(map[string]CustomSection, len(d.Custom))
		for k, v := range d.Custom {
			v.Items = append([]string(nil), v.Items...)
			c.Custom[k] = v
		}
	}
	return &c
}

// IsCustomSection reports whether id names a user-defined section.
func IsCustomSection(id string) bool {
	return strings.HasPrefix(id, CustomSectionPrefix)
}

// CustomSectionName strips the custom prefix from a section id.
func CustomSectionName(id string) string {
	return strings.TrimPrefix(id, CustomSectionPrefix)
}

// IsKnownSection reports whether id is a built-in section or a custom section present in the document.
func (d *ResumeDocument) IsKnownSection(id string) bool {
	switch id {
	case SectionSummary, SectionEmployment, SectionEducation, SectionSkills, SectionLinks:
		return true
	}
	if IsCustomSection(id) {
		_, ok := d.Custom[CustomSectionName(id)]
		return ok
	}
	return false
}

// PaginatedSections returns ActiveSections without the personal block, which is pinned to the header.
func (d *ResumeDocument) PaginatedSections() []string {
	out := make([]string, 0, len(d.ActiveSections))
	for _, id := range d.ActiveSections {
		if id == SectionPersonal {
			continue
		}
		out = append(out, id)
	}
	return out
}
