// Package roles maps the semantic column roles the pipeline understands
// onto the actual column names of a loaded table.
package roles

import (
	"strings"

	"github.com/crimson-sun/sawmill/internal/model"
)

// Role is a semantic column role.
type Role string

const (
	Date           Role = "date"
	Status         Role = "status"
	ResponseTime   Role = "response_time"
	UserID         Role = "user_id"
	LLMCost        Role = "llm_cost"
	Message        Role = "message"
	Service        Role = "service"
	ProcessName    Role = "process_name"
	RequestMode    Role = "request_mode"
	RedirectedMode Role = "redirected_mode"
)

// Roles maps each detected role to the column name bound to it.
// At most one column is bound per role.
type Roles map[Role]string

// Column returns the column name bound to the role, or "" if unbound.
func (r Roles) Column(role Role) string {
	return r[role]
}

// Has reports whether the role is bound.
func (r Roles) Has(role Role) bool {
	_, ok := r[role]
	return ok
}

// detectionPatterns lists, per role, the substrings probed against
// lower-cased, separator-stripped column names. Pattern order is a
// preference order: the first pattern that matches any column wins.
var detectionPatterns = []struct {
	role     Role
	patterns []string
}{
	{Date, []string{"date", "timestamp", "@timestamp", "time", "datetime"}},
	{Status, []string{"status", "@status", "response_status", "result"}},
	{ResponseTime, []string{"responsetime", "response_time", "totaltimetaken", "total_time_taken",
		"duration", "elapsed", "time_taken", "timetaken"}},
	{UserID, []string{"useruuid", "user_uuid", "uuid", "userid", "user_id", "clientid", "client_id"}},
	{LLMCost, []string{"meta.totalllmcost", "totalllmcost", "llmcost", "totalcost", "meta_totalllmcost",
		"meta.total_llm_cost", "total_llm_cost"}},
	{Message, []string{"message", "requestpayload.message", "requestpayloadmessage", "error_message", "@message"}},
	{Service, []string{"service", "service_name", "@service", "servicename", "source", "source_name", "@source", "sourcename"}},
	{ProcessName, []string{"processname", "process_name"}},
	{RequestMode, []string{"requestpayloadmode", "request_payload_mode", "requestpayload.mode", "resquestpayloadmode"}},
	{RedirectedMode, []string{"redirectedmode", "redirect_mode", "redirectionmode"}},
}

// Detect derives the role bindings for a table by pattern-matching its
// column names. Column names are lower-cased and stripped of spaces,
// underscores, and dots before the substring test, so "Response Time",
// "response_time", and "ResponseTime" all bind the response_time role.
func Detect(t *model.Table) Roles {
	normalized := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		normalized[i] = normalize(c)
	}

	out := Roles{}
	for _, entry := range detectionPatterns {
		for _, pattern := range entry.patterns {
			p := normalize(pattern)
			for i, col := range normalized {
				if strings.Contains(col, p) {
					out[entry.role] = t.Columns[i]
					break
				}
			}
			if out.Has(entry.role) {
				break
			}
		}
	}

	// When both a bare Message and a @Message column exist, prefer the
	// bare one: the @-prefixed variant carries transport metadata.
	if t.ColumnIndex("Message") >= 0 && t.ColumnIndex("@Message") >= 0 {
		out[Message] = "Message"
	}

	return out
}

func normalize(name string) string {
	s := strings.ToLower(name)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "_", "")
	s = strings.ReplaceAll(s, ".", "")
	return s
}
