package dashboard

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

func attribution(source string) string {
	return "Source: " + source
}

// withQuery appends query parameters to base, keeping any it already carries.
func withQuery(base string, params url.Values) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", &WidgetError{Kind: KindConfiguration, Message: "Widget endpoint is misconfigured.", Err: err}
	}
	q := u.Query()
	for key, values := range params {
		for _, v := range values {
			q.Add(key, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// withPath appends one escaped path segment to base.
func withPath(base, segment string) string {
	return strings.TrimRight(base, "/") + "/" + url.PathEscape(segment)
}

// roundHalfUp rounds to the nearest integer with halves rounded toward +Inf.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
