package types

import (
	"slices"
	"strings"
)

// ResumeFile is an uploaded resume in binary form.
type ResumeFile struct {
	Data     []byte `json:"data"` // base64 in JSON
	MimeType string `json:"mimeType"`
	Name     string `json:"name"`
	Pages    int    `json:"pages,omitempty"` // 0 when unknown
}

// ResumeInput holds either pasted resume text or an uploaded file. At most
// one form is active; the session setters clear the other.
type ResumeInput struct {
	Text string      `json:"text,omitempty"`
	File *ResumeFile `json:"file,omitempty"`
}

func (r ResumeInput) HasFile() bool {
	return r.File != nil && len(r.File.Data) > 0
}

func (r ResumeInput) IsEmpty() bool {
	return !r.HasFile() && strings.TrimSpace(r.Text) == ""
}

// JobContext is the job target: a pasted description or a catalog role.
type JobContext struct {
	Description string `json:"description,omitempty"`
	Role        string `json:"role,omitempty"`
}

func (j JobContext) IsEmpty() bool {
	return strings.TrimSpace(j.Description) == "" && strings.TrimSpace(j.Role) == ""
}

// Roles is the closed catalog of target roles, in display order.
var Roles = []string{
	"Full Stack Developer",
	"Frontend Developer",
	"Backend Developer",
	"Data Scientist",
	"Product Manager",
	"UI/UX Designer",
	"DevOps Engineer",
	"QA Engineer",
	"Business Analyst",
	"Fresher / Entry Level",
}

func IsKnownRole(role string) bool {
	return slices.Contains(Roles, role)
}

// ScoreBand buckets an ATS score for display.
type ScoreBand string

const (
	BandLow    ScoreBand = "low"
	BandFair   ScoreBand = "fair"
	BandStrong ScoreBand = "strong"
)

// AnalysisResult is the model's ATS assessment of a resume against a job
// target.
type AnalysisResult struct {
	Score                  float64  `json:"score"` // 0-100
	Summary                string   `json:"summary"`
	MatchingKeywords       []string `json:"matchingKeywords"`
	MissingKeywords        []string `json:"missingKeywords"`
	FormattingIssues       []string `json:"formattingIssues"`
	ContentRecommendations []string `json:"contentRecommendations"`
}

func (a AnalysisResult) Band() ScoreBand {
	switch {
	case a.Score >= 75:
		return BandStrong
	case a.Score >= 50:
		return BandFair
	default:
		return BandLow
	}
}

type ContactInfo struct {
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	LinkedIn string `json:"linkedin,omitempty"`
	Website  string `json:"website,omitempty"`
	Location string `json:"location,omitempty"`
}

type Experience struct {
	Role     string   `json:"role"`
	Company  string   `json:"company"`
	Duration string   `json:"duration"`
	Details  []string `json:"details"`
}

type Education struct {
	Degree string `json:"degree"`
	School string `json:"school"`
	Year   string `json:"year"`
}

type Project struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
}

// ResumeDocument is the rewritten, editable resume.
type ResumeDocument struct {
	FullName    string       `json:"fullName"`
	ContactInfo ContactInfo  `json:"contactInfo"`
	Summary     string       `json:"summary"`
	Skills      []string     `json:"skills"`
	Experience  []Experience `json:"experience"`
	Education   []Education  `json:"education"`
	Projects    []Project    `json:"projects,omitempty"`
}

// Clone returns a deep copy of d.
func (d *ResumeDocument) Clone() *ResumeDocument {
	if d == nil {
		return nil
	}
	out := *d
	out.Skills = slices.Clone(d.Skills)
	if d.Experience != nil {
		out.Experience = make([]Experience, len(d.Experience))
		for i, exp := range d.Experience {
			exp.Details = slices.Clone(exp.Details)
			out.Experience[i] = exp
		}
	}
	out.Education = slices.Clone(d.Education)
	if d.Projects != nil {
		out.Projects = make([]Project, len(d.Projects))
		for i, p := range d.Projects {
			p.Technologies = slices.Clone(p.Technologies)
			out.Projects[i] = p
		}
	}
	return &out
}

// Normalize folds an empty projects list into nil so a document reads back
// from its JSON export unchanged.
func (d *ResumeDocument) Normalize() {
	if d != nil && len(d.Projects) == 0 {
		d.Projects = nil
	}
}

// OptimizeResult pairs an analysis with the resume rewritten from it.
type OptimizeResult struct {
	Analysis *AnalysisResult `json:"analysis"`
	Document *ResumeDocument `json:"document"`
}
