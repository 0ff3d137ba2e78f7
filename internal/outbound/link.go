// Package outbound builds chat links that hand a quotation over to the
// buyer's messaging app.
package outbound

import (
	"net/url"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

const (
	DefaultRegion   = "IN"
	DefaultLinkBase = "https://wa.me/"
)

// Formatter turns a raw phone number and message into a chat link. It
// performs no network I/O.
type Formatter struct {
	region   string
	linkBase string
}

func NewFormatter(region, linkBase string) Formatter {
	region = strings.ToUpper(strings.TrimSpace(region))
	if region == "" {
		region = DefaultRegion
	}
	linkBase = strings.TrimSpace(linkBase)
	if linkBase == "" {
		linkBase = DefaultLinkBase
	}
	if !strings.HasSuffix(linkBase, "/") {
		linkBase += "/"
	}
	return Formatter{region: region, linkBase: linkBase}
}

// NormalizePhone returns the E.164 digits of raw without the leading "+",
// or "" when raw is not a possible and valid number for the region.
func (f Formatter) NormalizePhone(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	num, err := phonenumbers.Parse(raw, f.region)
	if err != nil {
		return ""
	}
	if !phonenumbers.IsPossibleNumber(num) || !phonenumbers.IsValidNumber(num) {
		return ""
	}
	return strings.TrimPrefix(phonenumbers.Format(num, phonenumbers.E164), "+")
}

// BuildLink addresses the chat to the phone number when it normalizes and
// leaves the recipient open otherwise.
func (f Formatter) BuildLink(phoneRaw, text string) string {
	return f.linkBase + f.NormalizePhone(phoneRaw) + "?text=" + EncodeText(text)
}

// EncodeText percent-encodes text for the query string; spaces become %20.
func EncodeText(text string) string {
	escaped := url.QueryEscape(text)
	return strings.NewReplacer("+", "%20", "%2F", "/").Replace(escaped)
}

func NormalizePhone(raw string) string {
	return NewFormatter(DefaultRegion, DefaultLinkBase).NormalizePhone(raw)
}

func BuildLink(phoneRaw, text string) string {
	return NewFormatter(DefaultRegion, DefaultLinkBase).BuildLink(phoneRaw, text)
}
