package sawmill

import "time"

type options struct {
	azureEndpoint   string
	azureKey        string
	azureDeployment string
	azureAPIVersion string
	geminiKey       string
	geminiModel     string
	ledgerPath      string
	maxResponse     float64
	pacing          time.Duration
	pacingSet       bool
}

// Option configures an Analyzer.
type Option func(*options)

// WithAzure configures the Azure OpenAI classification backend. All
// four values are required for the backend to activate.
func WithAzure(endpoint, apiKey, deployment, apiVersion string) Option {
	return func(o *options) {
		o.azureEndpoint = endpoint
		o.azureKey = apiKey
		o.azureDeployment = deployment
		o.azureAPIVersion = apiVersion
	}
}

// WithGemini configures the Gemini classification backend. model may be
// empty to use the default.
func WithGemini(apiKey, model string) Option {
	return func(o *options) {
		o.geminiKey = apiKey
		o.geminiModel = model
	}
}

// WithLedgerFile persists message classifications to the given JSON
// file across runs, so repeated analysis of the same data does not
// re-invoke the remote backend.
func WithLedgerFile(path string) Option {
	return func(o *options) { o.ledgerPath = path }
}

// WithMaxResponseTime overrides the response-time outlier cutoff.
// Default: 2000.
func WithMaxResponseTime(v float64) Option {
	return func(o *options) { o.maxResponse = v }
}

// WithPacing sets the delay inserted between groups of remote
// classification calls. Default: 100ms; zero disables pacing.
func WithPacing(d time.Duration) Option {
	return func(o *options) {
		o.pacing = d
		o.pacingSet = true
	}
}
