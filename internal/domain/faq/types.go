package faq

import (
	"bytes"
	"encoding/json"
)

// Answer is one reply variant embedded in a Record.
type Answer struct {
	Text     string `json:"text,omitempty" bson:"text,omitempty"`
	ImageURL string `json:"imageUrl,omitempty" bson:"imageUrl,omitempty"`
}

// Record is a stored FAQ entry.
type Record struct {
	ID                 string   `json:"id" bson:"_id"`
	QuestionVariations []string `json:"questionVariations" bson:"questionVariations"`
	Answers            []Answer `json:"answers" bson:"answers"`
	Department         string   `json:"department" bson:"department"`
	Intent             string   `json:"intent" bson:"intent"`
	Entities           []string `json:"entities" bson:"entities"`
	Context            string   `json:"context" bson:"context"`
}

// CreateRequest carries the raw create payload. Nil marks an absent field.
type CreateRequest struct {
	QuestionVariations []string `json:"questionVariations"`
	Answers            []Answer `json:"answers"`
	Department         *string  `json:"department"`
	Intent             *string  `json:"intent"`
	Entities           []string `json:"entities"`
	Context            *string  `json:"context"`
}

// Optional records whether a JSON key was present at all.
// A present key with a null value is Set with the zero Value.
type Optional[T any] struct {
	Value T
	Set   bool
}

// Some builds a set Optional.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

// UnmarshalJSON is only invoked for present keys, which is what flips Set.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		o.Value = zero
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

// MarshalJSON emits the value, or null when unset.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// UpdateRequest carries a partial update payload.
type UpdateRequest struct {
	QuestionVariations Optional[[]string] `json:"questionVariations"`
	Answers            Optional[[]Answer] `json:"answers"`
	Department         Optional[string]   `json:"department"`
	Intent             Optional[string]   `json:"intent"`
	Entities           Optional[[]string] `json:"entities"`
	Context            Optional[string]   `json:"context"`
}

// Patch is the normalized set of fields an update writes. Nil means untouched.
type Patch struct {
	QuestionVariations *[]string
	Answers            *[]Answer
	Department         *string
	Intent             *string
	Entities           *[]string
	Context            *string
}

// Empty reports whether the patch would change nothing.
func (p Patch) Empty() bool {
	return p.QuestionVariations == nil &&
		p.Answers == nil &&
		p.Department == nil &&
		p.Intent == nil &&
		p.Entities == nil &&
		p.Context == nil
}

// Apply returns a copy of r with the patch fields written over it.
func (p Patch) Apply(r Record) Record {
	out := r.Clone()
	if p.QuestionVariations != nil {
		out.QuestionVariations = append([]string(nil), (*p.QuestionVariations)...)
	}
	if p.Answers != nil {
		out.Answers = append([]Answer(nil), (*p.Answers)...)
	}
	if p.Department != nil {
		out.Department = *p.Department
	}
	if p.Intent != nil {
		out.Intent = *p.Intent
	}
	if p.Entities != nil {
		out.Entities = append([]string(nil), (*p.Entities)...)
	}
	if p.Context != nil {
		out.Context = *p.Context
	}
	return out
}

// Clone deep-copies the slices so callers cannot alias stored state.
func (r Record) Clone() Record {
	out := r
	out.QuestionVariations = append([]string(nil), r.QuestionVariations...)
	out.Answers = append([]Answer(nil), r.Answers...)
	out.Entities = append([]string(nil), r.Entities...)
	return out
}
