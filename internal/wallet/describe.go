package wallet

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// redactedValue replaces private key members in Describe output.
const redactedValue = "[redacted]"

// privateJWKMembers are the RSA private-key members of a JWK (RFC 7518 §6.3.2).
var privateJWKMembers = []string{"d", "p", "q", "dp", "dq", "qi"}

// Describe pretty-prints wallet JSON for display. Private key members are
// replaced with a placeholder unless reveal is true.
func Describe(content string, reveal bool) (string, error) {
	if reveal {
		var buf bytes.Buffer
		if err := json.Indent(&buf, []byte(content), "", "  "); err != nil {
			return "", fmt.Errorf("wallet: content is not valid JSON: %w", err)
		}

		return buf.String(), nil
	}

	var members map[string]json.RawMessage
	if err := json.Unmarshal([]byte(content), &members); err != nil {
		return "", fmt.Errorf("wallet: content is not a JSON object: %w", err)
	}

	redacted, err := json.Marshal(redactedValue)
	if err != nil {
		return "", fmt.Errorf("wallet: encoding placeholder: %w", err)
	}

	for _, k := range privateJWKMembers {
		if _, ok := members[k]; ok {
			members[k] = redacted
		}
	}

	out, err := json.MarshalIndent(members, "", "  ")
	if err != nil {
		return "", fmt.Errorf("wallet: encoding: %w", err)
	}

	return string(out), nil
}
