package observability

import "regexp"

var (
	reDSNPassword = regexp.MustCompile(`(?i)(://)([^:/@\s]+):([^@\s]+)(@)`)
	reBearer      = regexp.MustCompile(`(?i)(bearer\s+)([A-Za-z0-9._\-]+)`)
	reSecretPair  = regexp.MustCompile(`(?i)((?:password|api_key|apikey|token)=)([^\s&;]+)`)
	reOpenAIKey   = regexp.MustCompile(`\bsk-[A-Za-z0-9_\-]{8,}`)
)

// Mask hides credentials embedded in DSNs, headers and key=value pairs so
// the result can be logged or shown to an operator.
func Mask(s string) string {
	out := reDSNPassword.ReplaceAllString(s, "$1$2:***$4")
	out = reBearer.ReplaceAllString(out, "$1***")
	out = reSecretPair.ReplaceAllString(out, "$1***")
	out = reOpenAIKey.ReplaceAllString(out, "sk-***")
	return out
}
