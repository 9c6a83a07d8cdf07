package utils

import (
	"net/url"
	"strings"
)

// TableNameFromQuery resolves the table name a check-in link points at.
//
// QR codes printed today encode the name in the main query string
// (`/?mesa=F1#/checkin`). Codes printed by the first batch put it inside the
// hash route instead (`/#/checkin?mesa=F1`); browsers never send the fragment,
// so clients forward it verbatim in a `hash` parameter. Both forms stay valid.
func TableNameFromQuery(query url.Values) string {
	if mesa := query.Get("mesa"); mesa != "" {
		return mesa
	}

	hash := strings.TrimPrefix(query.Get("hash"), "#")
	_, rawQuery, found := strings.Cut(hash, "?")
	if !found {
		return ""
	}
	params, err := url.ParseQuery(rawQuery)
	if err != nil {
		return ""
	}
	return params.Get("mesa")
}

// CheckInURL builds the customer-facing link a table's QR code encodes.
func CheckInURL(baseURL, tableName string) string {
	return strings.TrimSuffix(baseURL, "/") + "/?mesa=" + url.QueryEscape(tableName) + "#/checkin"
}

// QRImageURL points at the external QR rendering service for a check-in link.
func QRImageURL(checkInURL string) string {
	return "https://api.qrserver.com/v1/create-qr-code/?size=150x150&data=" + url.QueryEscape(checkInURL)
}
