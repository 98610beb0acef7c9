// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package content

import (
	"fmt"
	"strings"

	"github.com/pdiddy/pageforge/pkg/types"
)

// genericHeadlines is the templated fallback headline per narrative
// role, used when the oracle fails or its copy cannot be grounded.
// Fallback copy is deliberately safe: no invented facts, metrics, or
// names.
var genericHeadlines = map[types.NarrativeRole]string{
	types.RoleHook:       "%s",
	types.RoleProblem:    "The old way is holding you back",
	types.RoleSolution:   "A better way to get it done",
	types.RoleFeature:    "Everything you need, built in",
	types.RoleProof:      "Teams rely on %s",
	types.RoleObjection:  "Questions, answered",
	types.RoleTrust:      "Built for security and trust",
	types.RoleConversion: "Ready when you are",
}

// genericFieldValues is the fallback copy per content slot.
var genericFieldValues = map[string]string{
	"subheadline":  "See what it can do for your team.",
	"body":         "Explore the product and see how it fits your workflow.",
	"cta_label":    "Get started",
	"quote":        "It just works the way we need it to.",
	"feature_list": "Fast setup; Works with your stack; Clear pricing",
	"metric_list":  "Trusted by growing teams",
	"faq_list":     "How do I get started?; What does it cost?; Can I cancel anytime?",
	"plan_list":    "Starter; Growth; Enterprise",
}

// genericHeadline renders the fallback headline for a request.
func genericHeadline(req OracleRequest) string {
	tmpl, ok := genericHeadlines[req.Role]
	if !ok {
		tmpl = "%s"
	}
	title := req.PageTitle
	if title == "" {
		title = "Welcome"
	}
	if strings.Contains(tmpl, "%s") {
		return fmt.Sprintf(tmpl, title)
	}
	return tmpl
}

// genericField returns the fallback value for a content slot.
func genericField(name string) string {
	if v, ok := genericFieldValues[name]; ok {
		return v
	}
	return "Learn more"
}

// genericContent builds a full templated fallback for one request. The
// headline is always non-empty, whatever the grounding situation.
func genericContent(req OracleRequest) types.PopulatedContent {
	c := types.PopulatedContent{
		Headline: genericHeadline(req),
	}
	extra := make(map[string]string)
	for _, f := range req.RequiredFields {
		switch f {
		case "headline":
			// already set
		case "subheadline":
			c.Subheadline = genericFieldValues["subheadline"]
		case "body":
			c.Body = genericFieldValues["body"]
		default:
			extra[f] = genericField(f)
		}
	}
	if len(extra) > 0 {
		c.Fields = extra
	}
	return c
}
