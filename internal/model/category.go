package model

// ErrorCategory is one of the fixed error taxonomy labels. The label
// strings are part of the classification contract: the remote backend is
// instructed to return one of them verbatim.
type ErrorCategory string

const (
	CategoryTimeout       ErrorCategory = "Timeout Errors"
	CategoryNetwork       ErrorCategory = "Network/Connection Errors"
	CategoryAuth          ErrorCategory = "Authentication/Authorization Errors"
	CategoryNotFound      ErrorCategory = "Resource Not Found Errors"
	CategoryValidation    ErrorCategory = "Data Validation/Payload Errors"
	CategoryServer        ErrorCategory = "Internal Server Errors"
	CategoryLLM           ErrorCategory = "LLM Service Errors"
	CategoryQuery         ErrorCategory = "Query/Parameter Errors"
	CategoryException     ErrorCategory = "Application Exception Errors"
	CategoryConfig        ErrorCategory = "Service Configuration Errors"
	CategoryFormat        ErrorCategory = "Data Format Errors"
	CategoryStreaming     ErrorCategory = "Streaming Errors"
	CategoryLogging       ErrorCategory = "Request/Response Logging Errors"
	CategoryFeature       ErrorCategory = "Feature Configuration Errors"
	CategoryUncategorized ErrorCategory = "Other/Uncategorized Errors"
)

// Categories returns all fifteen labels in canonical order (the fourteen
// concrete categories plus the catch-all).
func Categories() []ErrorCategory {
	return []ErrorCategory{
		CategoryTimeout,
		CategoryNetwork,
		CategoryAuth,
		CategoryNotFound,
		CategoryValidation,
		CategoryServer,
		CategoryLLM,
		CategoryQuery,
		CategoryException,
		CategoryConfig,
		CategoryFormat,
		CategoryStreaming,
		CategoryLogging,
		CategoryFeature,
		CategoryUncategorized,
	}
}

// ValidCategory reports whether s is one of the known labels, exactly.
func ValidCategory(s string) bool {
	for _, c := range Categories() {
		if string(c) == s {
			return true
		}
	}
	return false
}

// Classification is the rich classifier result. SubCategory, Confidence,
// and Rationale are advisory display fields; only Category participates
// in aggregate counts.
type Classification struct {
	Category    ErrorCategory `json:"category"`
	SubCategory string        `json:"sub_category"`
	Confidence  float64       `json:"confidence"` // 0-100
	Rationale   string        `json:"rationale"`
}
