package handler

import (
	"strings"

	dErrors "onboardly/pkg/domain-errors"
)

// CheckDomainRequest is the HTTP request body for POST /api/check-domain.
type CheckDomainRequest struct {
	DomainName string `json:"domainName"`
}

// Validate checks required-field presence. Format rules live in the
// evaluator so they apply to every caller.
func (r *CheckDomainRequest) Validate() error {
	r.DomainName = strings.TrimSpace(r.DomainName)
	if r.DomainName == "" {
		return dErrors.New(dErrors.CodeValidation, "domainName is required")
	}
	return nil
}
