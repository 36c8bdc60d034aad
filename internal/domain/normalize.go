package domain

import "strings"

// Synonym tables for the enum-like fields. Loose client input (legacy
// frontends, imported data) is folded here and nowhere else, so the
// accepted surface stays documented in one place.

var questionTypeSynonyms = map[string]QuestionType{
	"short_text":      QuestionShortText,
	"short text":      QuestionShortText,
	"shorttext":       QuestionShortText,
	"text":            QuestionShortText,
	"input":           QuestionShortText,
	"long_text":       QuestionLongText,
	"long text":       QuestionLongText,
	"longtext":        QuestionLongText,
	"textarea":        QuestionLongText,
	"paragraph":       QuestionLongText,
	"multiple_choice": QuestionMultipleChoice,
	"multiple choice": QuestionMultipleChoice,
	"multiplechoice":  QuestionMultipleChoice,
	"single_choice":   QuestionMultipleChoice,
	"radio":           QuestionMultipleChoice,
	"choice":          QuestionMultipleChoice,
	"checkbox":        QuestionCheckbox,
	"checkboxes":      QuestionCheckbox,
	"multi_select":    QuestionCheckbox,
	"multi select":    QuestionCheckbox,
	"multiselect":     QuestionCheckbox,
	"rating":          QuestionRating,
	"rate":            QuestionRating,
	"scale":           QuestionRating,
	"stars":           QuestionRating,
}

var audienceSynonyms = map[string]Audience{
	"all":      AudienceAll,
	"any":      AudienceAll,
	"everyone": AudienceAll,
	"public":   AudienceAll,
	"student":  AudienceStudents,
	"students": AudienceStudents,
	"alumni":   AudienceAlumni,
	"alumnus":  AudienceAlumni,
	"alumnae":  AudienceAlumni,
	"alumna":   AudienceAlumni,
}

var statusSynonyms = map[string]SurveyStatus{
	"draft":     SurveyDraft,
	"pending":   SurveyDraft,
	"active":    SurveyActive,
	"published": SurveyActive,
	"open":      SurveyActive,
	"live":      SurveyActive,
	"archived":  SurveyArchived,
	"closed":    SurveyArchived,
	"inactive":  SurveyArchived,
}

func foldKey(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// NormalizeQuestionType folds a loose type string into a QuestionType.
// Unrecognized values default to short_text rather than failing, to
// tolerate legacy client payloads.
func NormalizeQuestionType(raw string) QuestionType {
	if t, ok := questionTypeSynonyms[foldKey(raw)]; ok {
		return t
	}
	return QuestionShortText
}

// NormalizeAudience folds a loose audience string; unknown values
// fall back to the widest bucket.
func NormalizeAudience(raw string) Audience {
	if a, ok := audienceSynonyms[foldKey(raw)]; ok {
		return a
	}
	return AudienceAll
}

// NormalizeStatus folds a loose status string; unknown values are
// treated as draft so a survey never accepts responses by accident.
func NormalizeStatus(raw string) SurveyStatus {
	if s, ok := statusSynonyms[foldKey(raw)]; ok {
		return s
	}
	return SurveyDraft
}

// AudienceForRole maps a principal role onto the audience bucket it
// satisfies. Unknown roles match only audience "all".
func AudienceForRole(role string) (Audience, bool) {
	switch foldKey(role) {
	case "student", "students":
		return AudienceStudents, true
	case "alumni", "alumnus", "alumnae", "alumna":
		return AudienceAlumni, true
	default:
		return "", false
	}
}

// AudienceMatchesRole reports whether a survey's audience admits the
// given role.
func AudienceMatchesRole(audience Audience, role string) bool {
	if audience == AudienceAll {
		return true
	}
	bucket, ok := AudienceForRole(role)
	return ok && bucket == audience
}
