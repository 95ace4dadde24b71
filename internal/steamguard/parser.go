// Package steamguard parses Steam Guard storage files and formats the
// recovered secrets for import into authenticator apps.
//
// The input is untrusted legacy storage: files may be NUL-padded, truncated
// or otherwise corrupted, so every field is recovered best-effort and
// absence is never an error.
package steamguard

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strings"

	"github.com/steamrescue/steamrescue/pkg/base32"
)

// Record holds whatever could be recovered from one candidate file. Every
// field except SourcePath is optional.
type Record struct {
	SourcePath     string
	AccountName    string
	SteamID        string
	URI            string
	SharedSecret   string // base64, as stored
	IdentitySecret string // base64, as stored
	TOTPSecret     string // base32, derived
}

// Found reports whether the record recovered anything worth showing.
func (r Record) Found() bool {
	return r.TOTPSecret != "" || r.SharedSecret != "" || r.IdentitySecret != "" || r.URI != ""
}

var (
	fieldPatterns = map[string]*regexp.Regexp{
		"uri":             regexp.MustCompile(`"uri"\s*:\s*"([^"]*)"`),
		"account_name":    regexp.MustCompile(`"account_name"\s*:\s*"([^"]*)"`),
		"steamid":         regexp.MustCompile(`"steamid"\s*:\s*"([^"]*)"`),
		"shared_secret":   regexp.MustCompile(`"shared_secret"\s*:\s*"([^"]*)"`),
		"identity_secret": regexp.MustCompile(`"identity_secret"\s*:\s*"([^"]*)"`),
	}

	secretPattern = regexp.MustCompile(`secret=([A-Z2-7]+)`)
)

// Parse recovers fields from the raw bytes of one candidate file.
func Parse(raw []byte) Record {
	text := cleanText(raw)

	rec := Record{}
	if !parseStructured(text, &rec) {
		parsePatterns(text, &rec)
	}
	rec.TOTPSecret = deriveTOTP(rec, text)
	return rec
}

// cleanText strips the NUL padding legacy storage inserts between records
// and discards invalid UTF-8 instead of failing on it.
func cleanText(raw []byte) string {
	stripped := bytes.ReplaceAll(raw, []byte{0}, nil)
	return strings.ToValidUTF8(string(stripped), "")
}

// parseStructured attempts a strict JSON parse and reads the known keys.
// Returns false if the text is not a JSON object.
func parseStructured(text string, rec *Record) bool {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	var doc map[string]any
	if err := dec.Decode(&doc); err != nil || doc == nil {
		return false
	}
	// Trailing garbage disqualifies the structured path; the pattern
	// scanner handles partially corrupted files.
	if _, err := dec.Token(); err != io.EOF {
		return false
	}

	rec.URI = stringField(doc, "uri")
	rec.AccountName = stringField(doc, "account_name")
	rec.SteamID = stringField(doc, "steamid")
	rec.SharedSecret = stringField(doc, "shared_secret")
	rec.IdentitySecret = stringField(doc, "identity_secret")
	return true
}

// stringField tolerates both string and numeric encodings (older app
// versions stored steamid as a bare number).
func stringField(doc map[string]any, key string) string {
	switch v := doc[key].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

// parsePatterns scans for each key independently; one key failing never
// affects the others.
func parsePatterns(text string, rec *Record) {
	fields := map[string]*string{
		"uri":             &rec.URI,
		"account_name":    &rec.AccountName,
		"steamid":         &rec.SteamID,
		"shared_secret":   &rec.SharedSecret,
		"identity_secret": &rec.IdentitySecret,
	}
	for key, target := range fields {
		if m := fieldPatterns[key].FindStringSubmatch(text); m != nil {
			*target = m[1]
		}
	}
}

// deriveTOTP recovers the base32 TOTP seed, trying in priority order:
// the secret parameter of the otpauth URI, a bare secret= occurrence in
// the text, and finally re-encoding the base64 shared_secret.
func deriveTOTP(rec Record, text string) string {
	if rec.URI != "" {
		// Pattern-scanned URIs still carry JSON escaping.
		unescaped := strings.ReplaceAll(rec.URI, `\/`, "/")
		if u, err := url.Parse(unescaped); err == nil {
			if s := u.Query().Get("secret"); s != "" {
				return s
			}
		}
	}

	if m := secretPattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}

	if rec.SharedSecret != "" {
		if decoded, err := base64.StdEncoding.DecodeString(rec.SharedSecret); err == nil && len(decoded) > 0 {
			return base32.Encode(decoded)
		}
	}
	return ""
}

// String renders the record for logs without exposing full secrets.
func (r Record) String() string {
	name := r.AccountName
	if name == "" {
		name = r.SteamID
	}
	if name == "" {
		name = "(unknown account)"
	}
	return fmt.Sprintf("%s (totp=%v shared=%v identity=%v uri=%v)",
		name, r.TOTPSecret != "", r.SharedSecret != "", r.IdentitySecret != "", r.URI != "")
}
