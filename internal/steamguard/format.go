package steamguard

import (
	"fmt"
	"strings"
)

// labelEscaper covers only the characters that break otpauth URI labels in
// practice; full percent-encoding would mangle names importers display.
var labelEscaper = strings.NewReplacer(
	" ", "%20",
	"@", "%40",
	":", "%3A",
	"/", "%2F",
)

// Label builds the account label shown by the authenticator app:
// "Steam:<account>" when the account name is known, the numeric id as a
// fallback, bare "Steam" otherwise.
func (r Record) Label() string {
	switch {
	case r.AccountName != "":
		return "Steam:" + r.AccountName
	case r.SteamID != "":
		return "Steam:" + r.SteamID
	default:
		return "Steam"
	}
}

// SteamURI renders the steam:// import form of the TOTP seed.
func (r Record) SteamURI() string {
	return "steam://" + r.TOTPSecret
}

// OtpauthURI renders the universal otpauth:// import form.
func (r Record) OtpauthURI() string {
	return fmt.Sprintf("otpauth://totp/%s?secret=%s&issuer=Steam",
		labelEscaper.Replace(r.Label()), r.TOTPSecret)
}
