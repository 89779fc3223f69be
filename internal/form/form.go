// Package form turns whatever body the forms platform sends into the
// canonical submission. Framer has shipped the same form as a JSON object,
// a JSON-encoded string and a urlencoded body across export versions, and
// field labels vary by site language, so both parsing and naming are
// resolved here and nowhere else.
package form

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"github.com/mmmuzammal/framer-outseta-webhook/internal/model"
)

// SecretKeys are body fields reserved for authentication. They are never
// canonicalized and never written to the custom-attribute bag.
var SecretKeys = []string{"webhook_secret", "secret"}

// aliasTable maps each canonical field to its accepted names, most specific
// first. Resolution is first non-empty value wins.
var aliasTable = []struct {
	canonical string
	aliases   []string
}{
	{"firstName", []string{"firstName", "FirstName", "first_name", "first", "Vorname", "vorname"}},
	{"lastName", []string{"lastName", "LastName", "last_name", "last", "Nachname", "nachname"}},
	{"name", []string{"name", "Name", "fullName", "full_name", "Ihr Name", "Vor- und Nachname"}},
	{"email", []string{"email", "Email", "E-Mail", "e-mail", "EMail", "E-Mail-Adresse"}},
	{"phone", []string{"phone", "Phone", "phoneNumber", "phone_number", "Telefon", "telefon", "Telefonnummer", "Handy"}},
	{"message", []string{"message", "Message", "notes", "comments", "Nachricht", "nachricht", "Anliegen"}},
	{"callbackWindow", []string{"callbackWindow", "callback_window", "callbackTime", "Rückrufzeit", "rueckrufzeit", "Wann dürfen wir anrufen?"}},
	{"plan", []string{"plan", "Plan", "package", "Tarif", "tarif", "Paket", "paket"}},
	{"term", []string{"term", "Term", "billingTerm", "billing_term", "Laufzeit", "laufzeit"}},
	{"newsletter", []string{"newsletterOptIn", "newsletter", "Newsletter", "newsletter_opt_in"}},
	{"formType", []string{"formType", "form_type", "formName", "form_name", "Formular"}},
}

// Parse produces a flat key/value map from a request body. It never fails:
// anything unparsable comes back as an empty map.
func Parse(body []byte, contentType string) map[string]string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return map[string]string{}
	}

	if strings.Contains(contentType, "application/x-www-form-urlencoded") {
		if m, ok := parseQuery(trimmed); ok {
			return m
		}
	}
	if m, ok := parseJSON(trimmed); ok {
		return m
	}
	if m, ok := parseQuery(trimmed); ok {
		return m
	}
	return map[string]string{}
}

func parseJSON(s string) (map[string]string, bool) {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, false
	}
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]string, len(val))
		for k, raw := range val {
			out[k] = stringify(raw)
		}
		return out, true
	case string:
		// Some platform versions double-encode: a JSON string holding
		// either another JSON object or a urlencoded body.
		if m, ok := parseJSON(val); ok {
			return m, true
		}
		if m, ok := parseQuery(val); ok {
			return m, true
		}
		return map[string]string{}, true
	default:
		return map[string]string{}, true
	}
}

func parseQuery(s string) (map[string]string, bool) {
	if !strings.Contains(s, "=") {
		return nil, false
	}
	values, err := url.ParseQuery(s)
	if err != nil || len(values) == 0 {
		return nil, false
	}
	out := make(map[string]string, len(values))
	for k, v := range values {
		if len(v) > 0 {
			out[k] = v[0]
		} else {
			out[k] = ""
		}
	}
	return out, true
}

func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// Canonical resolves field aliases into a model.Submission. Fields without
// a standard slot land in Custom; secret fields are dropped entirely.
func Canonical(fields map[string]string) model.Submission {
	resolved := make(map[string]string, len(aliasTable))
	consumed := make(map[string]bool)

	for _, entry := range aliasTable {
		for _, alias := range entry.aliases {
			consumed[alias] = true
		}
		for _, alias := range entry.aliases {
			if v := strings.TrimSpace(fields[alias]); v != "" {
				resolved[entry.canonical] = v
				break
			}
		}
	}
	for _, k := range SecretKeys {
		consumed[k] = true
	}

	sub := model.Submission{
		FirstName:      resolved["firstName"],
		LastName:       resolved["lastName"],
		Email:          resolved["email"],
		Phone:          resolved["phone"],
		Message:        resolved["message"],
		CallbackWindow: resolved["callbackWindow"],
		Plan:           strings.ToLower(resolved["plan"]),
		Term:           resolved["term"],
		Newsletter:     resolved["newsletter"] == "true" || resolved["newsletter"] == "on",
		FormType:       resolved["formType"],
	}

	if sub.FirstName == "" && sub.LastName == "" {
		if parts := strings.Fields(resolved["name"]); len(parts) > 0 {
			sub.FirstName = parts[0]
			sub.LastName = strings.Join(parts[1:], " ")
		}
	}

	for k, v := range fields {
		if consumed[k] || strings.TrimSpace(v) == "" {
			continue
		}
		if sub.Custom == nil {
			sub.Custom = make(map[string]string)
		}
		sub.Custom[k] = v
	}
	return sub
}
