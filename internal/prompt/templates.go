package prompt

import "github.com/kalambet/vitae/internal/contract"

var Generation = mustTemplate("generateResumeTemplate", contract.GenerationResult, `You are an expert resume designer. You create print-ready resume templates as an HTML fragment plus a style sheet.

User request:
"""
{{.PromptText}}
"""

Work through these steps:

1. Company detection. Decide whether the request names a specific company or organization the resume is aimed at.

2. Branding. If a company is named, call the {{.LogoTool}} tool with the company name to get its logo URL, and choose colors and a visual style that reflect that company's brand. If the tool returns an empty string, continue without a logo. If no company is named, choose a professional palette that suits the request.

3. Markup (the "design" field). Return one HTML fragment with a single root element: <div class="resume">. Do not include <html>, <head>, <body>, <script> or <link> tags. Use a two-column layout: a primary column for summary, experience, projects and education, and a narrower secondary column for contact details, skills, languages and certifications. Fill every personal detail with clearly marked placeholder text such as "Your Name", "your.email@example.com", "Job Title", "Company Name" and "Start Date - End Date". If you received a logo URL, show it as an <img> in the header.

4. Style (the "css" field). Return complete CSS for that markup. Use system font stacks only: no @import, no web fonts, no external images other than the logo. Size the page to A4 (210mm x 297mm) and keep all content on one page. Keep body text at 9pt or larger and keep a contrast ratio of at least 4.5:1 between text and background. Include print rules so the page prints without browser margins.

5. Output. Respond with a JSON object with exactly two string fields, "css" and "design". Do not wrap code in markdown fences and do not add explanations.
`)

var Refinement = mustTemplate("refineResumeTemplate", contract.RefinementResult, `You are an expert resume designer. Revise the resume template below according to the user's feedback.

The user may have edited the markup by hand since it was generated. Treat the markup and CSS below as the current truth and keep every edit you are not asked to change.

Current HTML:
`+"```html"+`
{{.CurrentMarkup}}
`+"```"+`

Current CSS:
`+"```css"+`
{{.CurrentStyle}}
`+"```"+`

Feedback:
"""
{{.Feedback}}
"""

Rules:
- Modify the existing design in place. Do not start over with a new layout unless the feedback asks for it.
- Keep the single root <div class="resume"> and keep placeholder text and any content the user entered.
- Keep text readable: body text 9pt or larger, contrast ratio of at least 4.5:1.
- Keep the style self-contained: no @import, no web fonts, no scripts.
- Return the complete revised code, not a diff or a fragment of it.

Respond with a JSON object with exactly two string fields, "html" and "css". Do not wrap code in markdown fences and do not add explanations.
`)

var CompanyDomain = mustTemplate("findCompanyDomain", contract.CompanyDomain, `What is the official website domain of the company named "{{.CompanyName}}"?

Respond with a JSON object with one string field, "domain", holding only the bare domain name, for example "google.com" or "spotify.com". No scheme, no "www." prefix and no path.
`)

var FeedbackSummary = mustTemplate("summarizeResumeFeedback", contract.FeedbackResult, `You are a resume design expert. A user has given feedback on a resume template.

Resume template:
"""
{{.ResumeTemplate}}
"""

User feedback:
"""
{{.UserFeedback}}
"""

Summarize the feedback in two or three sentences, naming the concrete changes the user wants. Then apply those changes to the template and return the complete revised template.

Respond with a JSON object with two string fields, "summary" and "refinedTemplate". Do not wrap code in markdown fences.
`)
