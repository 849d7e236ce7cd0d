package faq

import (
	"regexp"
	"strings"

	apperrors "github.com/yanqian/faq-kb/pkg/errors"
)

const (
	minQuestionVariations = 3
	minAnswers            = 2
	minEntities           = 1
)

// intentPattern requires alphanumeric segments joined by single underscores,
// at least two segments, no leading or trailing underscore.
var intentPattern = regexp.MustCompile(`^[a-zA-Z0-9]+(_[a-zA-Z0-9]+)+$`)

const intentFormatMessage = "intent must contain underscores (_) between words and cannot start or end with an underscore"

// ValidIntent reports whether intent matches the underscore-segmented format.
func ValidIntent(intent string) bool {
	return intentPattern.MatchString(intent)
}

func invalid(message string) error {
	return apperrors.Wrap(apperrors.CodeInvalidInput, message, nil)
}

func blank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

// BuildRecord validates a create payload and returns the normalized record
// ready for insertion. The ID is left for the repository to assign.
func BuildRecord(req CreateRequest) (Record, error) {
	if blank(req.Department) || req.QuestionVariations == nil || req.Answers == nil ||
		blank(req.Intent) || req.Entities == nil || blank(req.Context) {
		return Record{}, invalid("missing department, question variations, answers, intent, entities, or context")
	}
	if len(req.QuestionVariations) < minQuestionVariations {
		return Record{}, invalid("please provide at least 3 question variations")
	}
	if len(req.Answers) < minAnswers {
		return Record{}, invalid("please provide at least 2 answer variations")
	}
	if len(req.Entities) < minEntities {
		return Record{}, invalid("please provide at least 1 entity")
	}
	if !ValidIntent(*req.Intent) {
		return Record{}, invalid(intentFormatMessage)
	}

	return Record{
		QuestionVariations: append([]string(nil), req.QuestionVariations...),
		Answers:            append([]Answer(nil), req.Answers...),
		Department:         NormalizeDepartment(*req.Department),
		Intent:             *req.Intent,
		Entities:           NormalizeEntities(req.Entities),
		Context:            NormalizeContext(*req.Context),
	}, nil
}

// BuildPatch validates an update payload and returns the normalized patch.
// Only the intent format, a non-blank department and entity emptiness are
// enforced here.
func BuildPatch(req UpdateRequest) (Patch, error) {
	if req.Department.Set && NormalizeDepartment(req.Department.Value) == "" {
		return Patch{}, invalid("department cannot be empty")
	}
	if req.Intent.Set && !ValidIntent(req.Intent.Value) {
		return Patch{}, invalid(intentFormatMessage)
	}
	if req.Entities.Set && len(req.Entities.Value) == 0 {
		return Patch{}, invalid("at least one entity is required")
	}

	var patch Patch
	if req.QuestionVariations.Set {
		variations := append([]string{}, req.QuestionVariations.Value...)
		patch.QuestionVariations = &variations
	}
	if req.Answers.Set {
		answers := append([]Answer{}, req.Answers.Value...)
		patch.Answers = &answers
	}
	if req.Department.Set {
		department := NormalizeDepartment(req.Department.Value)
		patch.Department = &department
	}
	if req.Intent.Set {
		intent := req.Intent.Value
		patch.Intent = &intent
	}
	if req.Entities.Set {
		entities := NormalizeEntities(req.Entities.Value)
		patch.Entities = &entities
	}
	if req.Context.Set {
		context := NormalizeContext(req.Context.Value)
		patch.Context = &context
	}

	if patch.Empty() {
		return Patch{}, apperrors.Wrap(apperrors.CodeNoFields, "no fields to update", nil)
	}
	return patch, nil
}

// requireID trims id and rejects blanks.
func requireID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", invalid("id parameter is required")
	}
	return id, nil
}
