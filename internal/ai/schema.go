package ai

import "google.golang.org/genai"

func stringList(description string) *genai.Schema {
	return &genai.Schema{
		Type:        genai.TypeArray,
		Items:       &genai.Schema{Type: genai.TypeString},
		Description: description,
	}
}

// AnalysisSchema declares the JSON shape of an AnalysisResult.
func AnalysisSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"score":                  {Type: genai.TypeNumber, Description: "ATS compatibility score from 0 to 100"},
			"summary":                {Type: genai.TypeString, Description: "Brief summary of the analysis"},
			"matchingKeywords":       stringList("Keywords found in both resume and JD"),
			"missingKeywords":        stringList("Important keywords from JD missing in resume"),
			"formattingIssues":       stringList("List of potential formatting issues"),
			"contentRecommendations": stringList("Actionable advice to improve the resume"),
		},
		Required: []string{"score", "summary", "matchingKeywords", "missingKeywords", "formattingIssues", "contentRecommendations"},
	}
}

// ResumeDocumentSchema declares the JSON shape of a ResumeDocument.
func ResumeDocumentSchema() *genai.Schema {
	str := func() *genai.Schema { return &genai.Schema{Type: genai.TypeString} }

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"fullName": str(),
			"contactInfo": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"email":    str(),
					"phone":    str(),
					"linkedin": str(),
					"website":  str(),
					"location": str(),
				},
				Required: []string{"email", "phone"},
			},
			"summary": str(),
			"skills":  stringList(""),
			"experience": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"role":     str(),
						"company":  str(),
						"duration": str(),
						"details":  stringList(""),
					},
					Required: []string{"role", "company", "duration", "details"},
				},
			},
			"education": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"degree": str(),
						"school": str(),
						"year":   str(),
					},
					Required: []string{"degree", "school", "year"},
				},
			},
			"projects": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"name":         str(),
						"description":  str(),
						"technologies": stringList(""),
					},
				},
			},
		},
		Required: []string{"fullName", "contactInfo", "summary", "skills", "experience", "education"},
	}
}
