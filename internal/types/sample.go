package types

import "fmt"

// SampleResume returns a filled-in resume used by the CLI's --sample flag and by tests.
// jobs controls the number of employment entries so callers can force multi-page layouts.
func SampleResume(jobs int) *ResumeDocument {
	doc := &ResumeDocument{
		Name:           "Alex Morgan",
		Title:          "Senior Backend Engineer",
		Email:          "alex.morgan@example.com",
		Phone:          "+1 555 0100",
		Location:       "Portland, OR",
		ActiveSections: append([]string(nil), DefaultActiveSections...),
		Summary: "Backend engineer with ten years of experience building distributed systems, " +
			"payment platforms and developer tooling. Comfortable owning services from design to on-call.",
		Education: []Education{
			{
				School:    "Oregon State University",
				Degree:    "B.Sc.",
				Field:     "Computer Science",
				StartDate: "2010",
				EndDate:   "2014",
			},
		},
		Skills: []string{"Go", "PostgreSQL", "Redis", "Kubernetes", "gRPC", "Terraform", "Kafka"},
		Links: []Link{
			{Label: "GitHub", URL: "https://github.com/alexmorgan"},
			{Label: "Blog", URL: "https://alexmorgan.dev"},
		},
	}
	for i := 0; i < jobs; i++ {
		doc.Employment = append(doc.Employment, Employment{
			Company:     fmt.Sprintf("Company %d", i+1),
			Role:        "Software Engineer",
			Location:    "Remote",
			StartDate:   fmt.Sprintf("%d", 2024-2*(i+1)),
			EndDate:     fmt.Sprintf("%d", 2024-2*i),
			Description: "Owned the billing and ledger services used by every product team.",
			Bullets: []string{
				"Cut p99 latency of the settlement API from 900ms to 120ms by batching ledger writes",
				"Led the migration of 40 services from a shared database to per-service schemas",
				"Mentored four engineers and ran the backend interview loop",
			},
		})
	}
	return doc
}
