package classifier

import "github.com/crimson-sun/sawmill/internal/model"

// Rule binds one category to the lower-cased substrings that resolve it.
type Rule struct {
	Category model.ErrorCategory
	Keywords []string
}

// DefaultRules returns the built-in keyword table. The slice order is the
// tie-break policy: the first category whose keyword list matches wins,
// so two runs over the same message always agree. The table is built
// fresh per call and never mutated at runtime.
func DefaultRules() []Rule {
	return []Rule{
		{model.CategoryTimeout, []string{
			"timeout", "timed out", "deadline exceeded", "504", "gateway timeout",
			"request timeout", "connection timeout", "operation timeout", "time out",
			"timeout error", "timeout exception", "read timeout", "write timeout",
		}},
		{model.CategoryNetwork, []string{
			"connection failed", "connection refused", "connection aborted", "network unreachable",
			"econnreset", "remote end closed", "connection error", "socket error", "connection lost",
			"network error", "connection timeout", "connection reset", "connection dropped",
			"host unreachable", "socket timeout", "connection pool", "connection limit",
			"too many connections",
		}},
		{model.CategoryAuth, []string{
			"unauthorized", "permission denied", "authentication failed", "403", "forbidden",
			"invalid api key", "access denied", "unauthorized access", "auth failed", "login failed",
			"invalid credentials", "authentication error", "authorization failed", "access forbidden",
			"invalid token", "token expired", "session expired", "login required", "auth required",
		}},
		{model.CategoryNotFound, []string{
			"not found", "404", "no document selected", "contains no results",
			"resource not found", "file not found", "document not found", "page not found",
			"no such file or directory", "errno 2", "no results found", "empty result",
			"no data found", "missing resource", "resource missing", "not available",
			"no matching", "no records found", "empty response", "no document selected from research",
		}},
		{model.CategoryValidation, []string{
			"invalid data payload", "validation failed", "400", "bad request",
			"missing required field", "invalid payload", "malformed", "invalid input format",
			`got "doc" but expected`, `got "pdf" but expected`, "invalid format", "validation error",
			"invalid data", "invalid input", "invalid parameter", "invalid argument",
			"required field missing", "field validation", "data validation", "input validation",
			"invalid request", "malformed request", "bad payload", "invalid json", "region_id",
		}},
		{model.CategoryServer, []string{
			"internal server error", "500", "server error", "502", "bad gateway",
			"server overloaded", "service unavailable", "503",
			"server exception", "server failure", "internal error", "server timeout",
			"server busy", "service error", "backend error",
		}},
		{model.CategoryLLM, []string{
			"litellm", "serviceunavailableerror", "contextwindowexceed", "rate limit",
			"token length exceeds", "model is currently overloaded", "openai", "anthropic",
			"quota exceeded", "api error", "context window exceeded", "llm error", "ai error",
			"model error", "generation error", "inference error", "llm service error",
			"model unavailable", "model overloaded", "ai service error", "generation failed",
			"inference failed", "model timeout", "ai timeout", "llm timeout",
			"total token length exceeds", "allowed limit", "cannot process more than",
			"million tokens", "processing files larger than",
		}},
		{model.CategoryQuery, []string{
			"missing filtertype", "invalid query", "parameter", "sort_by", "invalid filter",
			"query error", "missing parameter", "invalid query parameter",
			"filter error", "search error", "query failed", "parameter error", "invalid sort",
			"invalid filter type", "query syntax error", "malformed query", "invalid search",
		}},
		{model.CategoryException, []string{
			"typeerror", "attributeerror", "keyerror", "valueerror", "nullpointerexception",
			"object has no attribute", "cannot unpack", "nonetype", "traceback",
			"an error occured", "error occured", "runtimeerror", "exception", "python error",
			"code error", "programming error", "application error", "software error",
			"bug", "crash", "fatal error", "critical error", "system error", "object has no len",
			"has no attribute", "object of type", "feature_flags",
		}},
		{model.CategoryConfig, []string{
			"model configuration unavailable", "failed to fetch model mapping",
			"configuration fetch failed", "invalid setup", "configuration error",
			"setup error", "config error", "initialization error", "startup error",
			"service configuration", "config missing", "invalid configuration",
			"configuration failed", "setup failed", "initialization failed",
		}},
		{model.CategoryFormat, []string{
			"json parse error", "xml parse error", "data structure mismatch",
			"unexpected token", "parse error", "format error", "parsing error",
			"malformed json", "json error", "xml error", "format mismatch",
			"data format error", "structure error", "schema error", "format validation",
		}},
		{model.CategoryStreaming, []string{
			"error raised while streaming", "stream interrupted", "streaming failed",
			"stream error", "streaming error", "stream timeout", "stream closed",
			"streaming timeout", "stream broken", "stream failure",
			"streaming interrupted", "stream failed", "raised while streaming",
		}},
		{model.CategoryLogging, []string{
			"requestid", "session_id", "query_id", `{"requestid":`, `{"session_id":`,
			"logging data", "request metadata", "response data", "session data",
			"request log", "response log", "audit log", "access log", "debug log",
		}},
		{model.CategoryFeature, []string{
			"feature flag error", "configuration unavailable", "feature not enabled",
			"feature disabled", "feature flag", "feature error", "feature unavailable",
			"feature not available", "feature configuration", "feature setup",
			"feature initialization", "feature failed", "feature timeout",
		}},
	}
}
