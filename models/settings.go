package models

import (
	"encoding/base64"
	"encoding/json"
)

// UserSettings contains per-install customizable settings, carried in the
// addon URL path as a compact reversible encoding.
type UserSettings struct {
	LanguageCode   string `json:"languageCode"`
	HideLowQuality bool   `json:"hideLowQuality"`
}

// encodedSettings uses single-letter keys to keep the install URL short.
type encodedSettings struct {
	L string `json:"l"`
	H bool   `json:"h"`
}

// DefaultSettings returns the settings used when none are encoded in the path.
func DefaultSettings() UserSettings {
	return UserSettings{
		LanguageCode:   "en-US",
		HideLowQuality: false,
	}
}

// EncodeSettings serializes settings into the URL-safe form carried in the
// addon path.
func EncodeSettings(s UserSettings) string {
	enc := encodedSettings{L: s.LanguageCode, H: s.HideLowQuality}
	raw, _ := json.Marshal(enc)
	return base64.URLEncoding.EncodeToString(raw)
}

// DecodeSettings reverses EncodeSettings. Malformed or missing input falls
// back to defaults, never to an error.
func DecodeSettings(encoded string) UserSettings {
	if encoded == "" {
		return DefaultSettings()
	}
	raw, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		// Older installs used standard base64
		raw, err = base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return DefaultSettings()
		}
	}
	var enc encodedSettings
	if err := json.Unmarshal(raw, &enc); err != nil {
		return DefaultSettings()
	}
	out := UserSettings{LanguageCode: enc.L, HideLowQuality: enc.H}
	if out.LanguageCode == "" {
		out.LanguageCode = DefaultSettings().LanguageCode
	}
	return out
}
