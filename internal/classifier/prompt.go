package classifier

import "fmt"

// SystemPrompt primes the backend before the categorization request.
const SystemPrompt = "You are an expert error categorization system."

// BuildPrompt renders the categorization prompt for one error message.
// It enumerates all fifteen categories and pins the output to a single
// JSON object so the response parser has something deterministic to work
// with.
func BuildPrompt(errorMessage string) string {
	return fmt.Sprintf(promptTemplate, errorMessage)
}

const promptTemplate = `
You are an Expert Error Analysis Engine. Your task is to analyze web application error messages with high precision, providing a structured, multi-faceted categorization for deeper insights.

## 1. CATEGORY DEFINITIONS

1. Timeout Errors
- Description: Any error indicating that an operation did not complete within an expected timeframe.
- Sub-Categories: Request Timeout, Connection Timeout, Operation Timeout, Gateway Timeout.
- Examples: "Request timeout", "Connection timed out", "deadline exceeded", "504 Gateway Time-out"

2. Network/Connection Errors
- Description: Failures related to network connectivity, sockets, or the inability to establish a connection. Distinct from timeouts.
- Sub-Categories: Connection Refused, Connection Aborted, Host Not Found, Network Unreachable, Socket Error.
- Examples: "Connection Failed", "Network unreachable", "Connection aborted", "ECONNRESET", "Remote end closed without response"

3. Authentication/Authorization Errors
- Description: Errors related to user identity verification (authentication) or permission levels (authorization).
- Sub-Categories: Authentication Failed, Unauthorized Access, Permission Denied, Forbidden, Invalid Credentials.
- Examples: "Unauthorized", "Permission denied", "Authentication failed", "403 Forbidden", "Invalid API Key"

4. Resource Not Found Errors
- Description: Errors indicating that a requested resource, asset, or document could not be located.
- Sub-Categories: 404 Not Found, Document Not Found, File Not Found, No Results.
- Examples: "Not found", "No document selected", "Resource not found", "Contains no results"

5. Data Validation/Payload Errors
- Description: Errors caused by malformed, incorrect, or incomplete data sent by the client.
- Sub-Categories: Validation Failed, Bad Request, Invalid Payload, Missing Field.
- Examples: "Invalid data payload", "Validation failed", "400 Bad request", "Missing required field 'user_id'"

6. Internal Server Errors
- Description: General, non-specific server-side errors indicating a problem with the server's execution, but not a specific application-level exception. Often represented by 5xx status codes.
- Sub-Categories: 500 Internal Server Error, Server Overloaded, Bad Gateway.
- Examples: "Internal server error", "Server error", "500 error", "502 Bad Gateway"

7. LLM Service Errors
- Description: Errors originating specifically from a Large Language Model (LLM) service or library (e.g., OpenAI, Anthropic, LiteLLM).
- Sub-Categories: API Error, Rate Limit Error, Context Window Exceeded, Service Unavailable, Quota Exceeded.
- Examples: "litellm.ServiceUnavailableError", "ContextWindowExceededError", "RateLimitError", "Token length exceeds", "The model is currently overloaded"

8. Query/Parameter Errors
- Description: Errors related to the structure, syntax, or values of query parameters in a request.
- Sub-Categories: Invalid Query, Missing Parameter, Invalid Filter Type.
- Examples: "Missing filterType", "Invalid query", "Parameter 'sort_by' is not valid"

9. Application Exception Errors
- Description: Specific, unhandled exceptions originating from the application's code logic (e.g., Python, Node.js). Distinct from general Internal Server Errors.
- Sub-Categories: TypeError, AttributeError, NullPointerException, KeyError, ValueError.
- Examples: "TypeError: 'NoneType' object is not iterable", "AttributeError: 'object' has no attribute 'user'", "KeyError: 'config'"

10. Service Configuration Errors
- Description: Errors related to application setup, model mapping, or failure to fetch necessary configuration.
- Sub-Categories: Model Mapping Unavailable, Configuration Fetch Failed, Invalid Setup.
- Examples: "Model configuration unavailable", "Failed to fetch model mapping"

11. Data Format Errors
- Description: Errors that occur while parsing or processing data that does not conform to the expected format.
- Sub-Categories: JSON Parse Error, XML Parse Error, Invalid Data Structure.
- Examples: "JSON parse error: Unexpected token", "Invalid format", "Data structure mismatch"

12. Streaming Errors
- Description: Failures that occur during an active data stream.
- Sub-Categories: Stream Interrupted, Streaming Failed, Incomplete Stream.
- Examples: "Error raised while streaming", "Stream interrupted", "Streaming failed"

13. Request/Response Logging Errors
- Description: JSON objects or structured data containing request metadata, session information, or logging data rather than actual error messages.
- Sub-Categories: Request Metadata, Session Data, Logging Data, Response Data.
- Examples: JSON objects starting with {"RequestId":, {"session_id":, logging data structures

14. Feature Configuration Errors
- Description: Errors related to feature flags, configuration settings, or application feature management.
- Sub-Categories: Feature Flag Error, Configuration Unavailable, Feature Disabled.
- Examples: "Feature flag error", "Configuration unavailable", "Feature not enabled"

15. Other/Uncategorized Errors
- Description: Errors that do not fit into any of the above categories or are too ambiguous to categorize accurately.
- Sub-Categories: Unknown Error, Ambiguous Error, Unclassified Error.
- Examples: Generic error messages without clear context

## 2. INPUT
ERROR MESSAGE:
%s

OPTIONAL APPLICATION CONTEXT:
This error comes from a web application service that processes user requests and may interact with LLM services, databases, and external APIs.

## 3. ANALYSIS AND OUTPUT INSTRUCTIONS
Carefully analyze the ERROR MESSAGE and any provided APPLICATION CONTEXT.
Identify the most accurate Primary Category from the list above.
Determine a concise Sub-Category based on the specific keywords in the error message.
Assign a Confidence Score (0-100%%) representing your certainty in the categorization.
Write a brief, one-sentence Rationale explaining why you chose the category. If the error is ambiguous, note the second possibility here.

Return the output ONLY in the following JSON format:
{
  "PrimaryCategory": "...",
  "SubCategory": "...",
  "ConfidenceScore": ...,
  "Rationale": "..."
}

## 4. CRITICAL RULES
Your output MUST be a single, valid JSON object.
Do not add any text, explanation, markdown formatting, or code blocks before or after the JSON output.
Do not wrap the JSON in ` + "```json```" + ` or any other formatting.
PrimaryCategory must be one of the exact category names from the list.
SubCategory should be a specific term derived directly from the error message.
Be precise and prioritize the most direct root cause of the error.
ConfidenceScore must be a number between 0 and 100.
Rationale must be a single, clear sentence.
Output ONLY the raw JSON object, nothing else.`
