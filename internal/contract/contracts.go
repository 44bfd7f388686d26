package contract

// MinInputLength is the minimum length of a generation prompt and of
// refinement feedback.
const MinInputLength = 10

// GenerationRequest is what a caller submits to generate a new design.
type GenerationRequest struct {
	PromptText string `json:"promptText"`
}

// RefinementRequest is what a caller submits to revise an existing design.
type RefinementRequest struct {
	CurrentMarkup string `json:"currentMarkup"`
	CurrentStyle  string `json:"currentStyle"`
	Feedback      string `json:"feedback"`
}

// Artifact is a design as returned to callers: body markup and its style sheet.
type Artifact struct {
	Markup string `json:"markup"`
	Style  string `json:"style"`
}

// GenerationOutput is the shape the model returns for a new design.
type GenerationOutput struct {
	CSS    string `json:"css"`
	Design string `json:"design"`
}

// RefinementOutput is the shape the model returns for a revised design.
type RefinementOutput struct {
	HTML string `json:"html"`
	CSS  string `json:"css"`
}

// DomainOutput is the model's answer to a company domain lookup.
type DomainOutput struct {
	Domain string `json:"domain"`
}

// LogoQuery is the argument of the logo tool.
type LogoQuery struct {
	CompanyName string `json:"companyName"`
}

// FeedbackRequest asks for a summary of feedback on a design.
type FeedbackRequest struct {
	ResumeTemplate string `json:"resumeTemplate"`
	UserFeedback   string `json:"userFeedback"`
}

// FeedbackSummary is a condensed reading of feedback plus the template
// revised to address it.
type FeedbackSummary struct {
	Summary         string `json:"summary"`
	RefinedTemplate string `json:"refinedTemplate"`
}

var (
	GenerationInput = Contract{
		Name: "GenerationInput",
		Fields: []Field{{
			Name:        "promptText",
			Description: "Description of the resume design to create.",
			Required:    true,
			MinLength:   MinInputLength,
			Message:     "Prompt must be at least 10 characters long.",
		}},
	}

	GenerationResult = Contract{
		Name: "GenerationResult",
		Fields: []Field{
			{Name: "css", Description: "The complete CSS code for the resume.", Required: true},
			{Name: "design", Description: "The complete HTML markup for the resume.", Required: true},
		},
	}

	RefinementInput = Contract{
		Name: "RefinementInput",
		Fields: []Field{
			{Name: "currentMarkup", Description: "The HTML markup being revised.", Required: true},
			{Name: "currentStyle", Description: "The CSS being revised.", Required: true},
			{
				Name:        "feedback",
				Description: "What the user wants changed.",
				Required:    true,
				MinLength:   MinInputLength,
				Message:     "Feedback must be at least 10 characters long.",
			},
		},
	}

	RefinementResult = Contract{
		Name: "RefinementResult",
		Fields: []Field{
			{Name: "html", Description: "The complete revised HTML markup.", Required: true},
			{Name: "css", Description: "The complete revised CSS.", Required: true},
		},
	}

	CompanyDomain = Contract{
		Name: "CompanyDomain",
		Fields: []Field{{
			Name:        "domain",
			Description: "The company's primary website domain, e.g. google.com.",
			Required:    true,
		}},
	}

	LogoLookup = Contract{
		Name: "LogoLookup",
		Fields: []Field{{
			Name:        "companyName",
			Description: "The name of the company to get the logo for.",
			Required:    true,
			MinLength:   1,
		}},
	}

	LogoResult = Contract{
		Name: "LogoResult",
		Fields: []Field{{
			Name:        "url",
			Description: "The URL of the company logo, or empty when none was found.",
			URL:         true,
		}},
	}

	FeedbackInput = Contract{
		Name: "FeedbackInput",
		Fields: []Field{
			{Name: "resumeTemplate", Description: "The resume template the feedback is about.", Required: true, MinLength: 1},
			{
				Name:        "userFeedback",
				Description: "The user's feedback on the template.",
				Required:    true,
				MinLength:   MinInputLength,
				Message:     "Feedback must be at least 10 characters long.",
			},
		},
	}

	FeedbackResult = Contract{
		Name: "FeedbackResult",
		Fields: []Field{
			{Name: "summary", Description: "A short summary of the feedback.", Required: true},
			{Name: "refinedTemplate", Description: "The template revised to address the feedback.", Required: true},
		},
	}
)
