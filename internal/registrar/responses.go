package registrar

// RawResponse covers both registrar response shapes observed in the wild:
// a flat shape with available=="1" and a pricing object, and a nested shape
// with response.avail=="yes" and response.price. Normalization into a
// boolean lives in the availability evaluator.
type RawResponse struct {
	Status    string        `json:"status"`
	Message   string        `json:"message,omitempty"`
	Available string        `json:"available,omitempty"`
	Response  *NestedResult `json:"response,omitempty"`
	Pricing   *Pricing      `json:"pricing,omitempty"`
}

// NestedResult is the nested response shape.
type NestedResult struct {
	Avail string `json:"avail,omitempty"`
	Price string `json:"price,omitempty"`
}

// Pricing is the flat shape's price block.
type Pricing struct {
	Registration string `json:"registration,omitempty"`
}

// Succeeded reports whether the registrar processed the request. A false
// value is a normal business outcome, not a transport error.
func (r *RawResponse) Succeeded() bool {
	return r.Status == "success" || r.Status == "ok"
}

const redactedPlaceholder = "[redacted]"

// Redact returns a copy of a request payload safe for diagnostic logging.
// Credential fields must never reach logs in cleartext.
func Redact(payload map[string]string) map[string]string {
	out := make(map[string]string, len(payload))
	for k, v := range payload {
		switch k {
		case "api_key", "api_secret", "token":
			out[k] = redactedPlaceholder
		default:
			out[k] = v
		}
	}
	return out
}
