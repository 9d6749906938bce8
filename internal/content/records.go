// Package content defines the five editable collections of the site and the
// client-side machinery that keeps them in sync with the backing store:
// typed resource clients, cached lists, and single-record edit sessions.
package content

import (
	"context"
	"strconv"
)

// Kind names one of the content collections. The value doubles as the
// backing table name.
type Kind string

const (
	KindServices   Kind = "services"
	KindEmployees  Kind = "employees"
	KindProjects   Kind = "projects"
	KindIndustries Kind = "industries"
	KindStats      Kind = "stats"
)

// Kinds returns the collections in dashboard tab order.
func Kinds() []Kind {
	return []Kind{KindServices, KindEmployees, KindProjects, KindIndustries, KindStats}
}

// Row is the wire shape a Backend speaks: column name to value. Value types
// are whatever the store's driver produced; Decode normalizes them.
type Row map[string]any

// Backend is the remote store behind the five collections. SelectAll returns
// rows ordered by sort_order ascending; Insert assigns the row id and returns
// the created row. Mutations are authorized server-side against the actor
// token carried in the context, never against client state.
type Backend interface {
	SelectAll(ctx context.Context, kind Kind) ([]Row, error)
	Insert(ctx context.Context, kind Kind, row Row) (Row, error)
	Update(ctx context.Context, kind Kind, id string, row Row) error
	Delete(ctx context.Context, kind Kind, id string) error
}

// Record is any row of one of the five collections.
type Record interface {
	RecordID() string
}

type Service struct {
	ID          string `json:"id"`
	Icon        string `json:"icon"`
	Title       string `json:"title"`
	Description string `json:"description"`
	SortOrder   int    `json:"sort_order"`
}

func (s Service) RecordID() string { return s.ID }

type Employee struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Position  string  `json:"position"`
	PhotoURL  *string `json:"photo_url"`
	SortOrder int     `json:"sort_order"`
}

func (e Employee) RecordID() string { return e.ID }

type Project struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	ImageURL    *string `json:"image_url"`
	Link        *string `json:"link"`
	SortOrder   int     `json:"sort_order"`
}

func (p Project) RecordID() string { return p.ID }

type Industry struct {
	ID        string `json:"id"`
	Icon      string `json:"icon"`
	Title     string `json:"title"`
	SortOrder int    `json:"sort_order"`
}

func (i Industry) RecordID() string { return i.ID }

type Stat struct {
	ID        string `json:"id"`
	Value     string `json:"value"`
	Label     string `json:"label"`
	SortOrder int    `json:"sort_order"`
}

func (s Stat) RecordID() string { return s.ID }

// FieldSpec describes one editable column of a collection, in form order.
type FieldSpec struct {
	Column   string
	Label    string
	Required bool
	Numeric  bool
	Textarea bool
}

// Collection ties a record type to its wire representation, its form fields,
// and its draft defaults.
type Collection[T Record] struct {
	Kind   Kind
	Fields []FieldSpec

	// New builds the default draft for a fresh record at the given rank.
	New func(rank int) T
	// Encode emits the editable columns, never the id.
	Encode func(T) Row
	// Decode reads a full row as returned by the backend.
	Decode func(Row) T
	// Set writes one form field into the record, coercing as needed.
	// Unknown columns are ignored.
	Set func(rec *T, column, value string)
	// Display picks the label and sub-line shown in list rows.
	Display func(T) (label, sub string)
}

var Services = Collection[Service]{
	Kind: KindServices,
	Fields: []FieldSpec{
		{Column: "icon", Label: "Icon name", Required: true},
		{Column: "title", Label: "Title", Required: true},
		{Column: "description", Label: "Description", Textarea: true},
		{Column: "sort_order", Label: "Sort order", Numeric: true},
	},
	New: func(rank int) Service { return Service{Icon: "Code2", SortOrder: rank} },
	Encode: func(s Service) Row {
		return Row{"icon": s.Icon, "title": s.Title, "description": s.Description, "sort_order": s.SortOrder}
	},
	Decode: func(r Row) Service {
		return Service{
			ID:          str(r, "id"),
			Icon:        str(r, "icon"),
			Title:       str(r, "title"),
			Description: str(r, "description"),
			SortOrder:   num(r, "sort_order"),
		}
	},
	Set: func(s *Service, column, value string) {
		switch column {
		case "icon":
			s.Icon = value
		case "title":
			s.Title = value
		case "description":
			s.Description = value
		case "sort_order":
			s.SortOrder = atoiOrZero(value)
		}
	},
	Display: func(s Service) (string, string) { return s.Title, s.Description },
}

var Employees = Collection[Employee]{
	Kind: KindEmployees,
	Fields: []FieldSpec{
		{Column: "name", Label: "Name", Required: true},
		{Column: "position", Label: "Position"},
		{Column: "photo_url", Label: "Photo URL"},
		{Column: "sort_order", Label: "Sort order", Numeric: true},
	},
	New: func(rank int) Employee { return Employee{SortOrder: rank} },
	Encode: func(e Employee) Row {
		return Row{"name": e.Name, "position": e.Position, "photo_url": optional(e.PhotoURL), "sort_order": e.SortOrder}
	},
	Decode: func(r Row) Employee {
		return Employee{
			ID:        str(r, "id"),
			Name:      str(r, "name"),
			Position:  str(r, "position"),
			PhotoURL:  nullable(r, "photo_url"),
			SortOrder: num(r, "sort_order"),
		}
	},
	Set: func(e *Employee, column, value string) {
		switch column {
		case "name":
			e.Name = value
		case "position":
			e.Position = value
		case "photo_url":
			e.PhotoURL = blankToNil(value)
		case "sort_order":
			e.SortOrder = atoiOrZero(value)
		}
	},
	Display: func(e Employee) (string, string) { return e.Name, e.Position },
}

var Projects = Collection[Project]{
	Kind: KindProjects,
	Fields: []FieldSpec{
		{Column: "title", Label: "Title", Required: true},
		{Column: "description", Label: "Description", Textarea: true},
		{Column: "image_url", Label: "Image URL"},
		{Column: "link", Label: "Link"},
		{Column: "sort_order", Label: "Sort order", Numeric: true},
	},
	New: func(rank int) Project { return Project{SortOrder: rank} },
	Encode: func(p Project) Row {
		return Row{"title": p.Title, "description": p.Description, "image_url": optional(p.ImageURL), "link": optional(p.Link), "sort_order": p.SortOrder}
	},
	Decode: func(r Row) Project {
		return Project{
			ID:          str(r, "id"),
			Title:       str(r, "title"),
			Description: str(r, "description"),
			ImageURL:    nullable(r, "image_url"),
			Link:        nullable(r, "link"),
			SortOrder:   num(r, "sort_order"),
		}
	},
	Set: func(p *Project, column, value string) {
		switch column {
		case "title":
			p.Title = value
		case "description":
			p.Description = value
		case "image_url":
			p.ImageURL = blankToNil(value)
		case "link":
			p.Link = blankToNil(value)
		case "sort_order":
			p.SortOrder = atoiOrZero(value)
		}
	},
	Display: func(p Project) (string, string) { return p.Title, p.Description },
}

var Industries = Collection[Industry]{
	Kind: KindIndustries,
	Fields: []FieldSpec{
		{Column: "icon", Label: "Icon name", Required: true},
		{Column: "title", Label: "Title", Required: true},
		{Column: "sort_order", Label: "Sort order", Numeric: true},
	},
	New: func(rank int) Industry { return Industry{Icon: "Building2", SortOrder: rank} },
	Encode: func(i Industry) Row {
		return Row{"icon": i.Icon, "title": i.Title, "sort_order": i.SortOrder}
	},
	Decode: func(r Row) Industry {
		return Industry{
			ID:        str(r, "id"),
			Icon:      str(r, "icon"),
			Title:     str(r, "title"),
			SortOrder: num(r, "sort_order"),
		}
	},
	Set: func(i *Industry, column, value string) {
		switch column {
		case "icon":
			i.Icon = value
		case "title":
			i.Title = value
		case "sort_order":
			i.SortOrder = atoiOrZero(value)
		}
	},
	Display: func(i Industry) (string, string) { return i.Title, i.Icon },
}

var Stats = Collection[Stat]{
	Kind: KindStats,
	Fields: []FieldSpec{
		{Column: "value", Label: "Value", Required: true},
		{Column: "label", Label: "Label", Required: true},
		{Column: "sort_order", Label: "Sort order", Numeric: true},
	},
	New: func(rank int) Stat { return Stat{SortOrder: rank} },
	Encode: func(s Stat) Row {
		return Row{"value": s.Value, "label": s.Label, "sort_order": s.SortOrder}
	},
	Decode: func(r Row) Stat {
		return Stat{
			ID:        str(r, "id"),
			Value:     str(r, "value"),
			Label:     str(r, "label"),
			SortOrder: num(r, "sort_order"),
		}
	},
	Set: func(s *Stat, column, value string) {
		switch column {
		case "value":
			s.Value = value
		case "label":
			s.Label = value
		case "sort_order":
			s.SortOrder = atoiOrZero(value)
		}
	},
	Display: func(s Stat) (string, string) { return s.Value, s.Label },
}

func str(r Row, column string) string {
	switch v := r[column].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	}
	return ""
}

func num(r Row, column string) int {
	switch v := r[column].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		return atoiOrZero(v)
	}
	return 0
}

func nullable(r Row, column string) *string {
	if r[column] == nil {
		return nil
	}
	return blankToNil(str(r, column))
}

func optional(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func blankToNil(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

// atoiOrZero is the loose numeric coercion used for form input: anything that
// does not parse as an integer becomes 0.
func atoiOrZero(v string) int {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}
