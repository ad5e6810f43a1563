package gmail

import (
	"errors"
	"net/http"
	"testing"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
)

func TestIsAuthError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"invalid_grant", &oauth2.RetrieveError{Response: &http.Response{StatusCode: http.StatusBadRequest}}, true},
		{"unauthorized token endpoint", &oauth2.RetrieveError{Response: &http.Response{StatusCode: http.StatusUnauthorized}}, true},
		{"forbidden token endpoint", &oauth2.RetrieveError{Response: &http.Response{StatusCode: http.StatusForbidden}}, true},
		{"token endpoint outage", &oauth2.RetrieveError{Response: &http.Response{StatusCode: http.StatusInternalServerError}}, false},
		{"api unauthorized", &googleapi.Error{Code: http.StatusUnauthorized}, true},
		{"api forbidden", &googleapi.Error{Code: http.StatusForbidden}, true},
		{"api rate limited", &googleapi.Error{Code: http.StatusTooManyRequests}, false},
		{"plain network error", errors.New("connection refused"), false},
		{"nil", nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsAuthError(tc.err); got != tc.want {
				t.Errorf("IsAuthError = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestParseFromHeader(t *testing.T) {
	cases := []struct {
		in          string
		wantName    string
		wantAddress string
	}{
		{"HDFC Bank <Alerts@HDFCBank.net>", "HDFC Bank", "alerts@hdfcbank.net"},
		{`"ICICI Bank" <alerts@icicibank.com>`, "ICICI Bank", "alerts@icicibank.com"},
		{"alerts@axisbank.com", "", "alerts@axisbank.com"},
		{"  bare@example.com  ", "", "bare@example.com"},
	}
	for _, tc := range cases {
		name, address := parseFromHeader(tc.in)
		if name != tc.wantName || address != tc.wantAddress {
			t.Errorf("parseFromHeader(%q) = (%q, %q), want (%q, %q)", tc.in, name, address, tc.wantName, tc.wantAddress)
		}
	}
}

func TestStripHTML(t *testing.T) {
	in := `<html><body><p>Rs.&nbsp;500 debited <b>at</b> Amazon &amp; Co</p></body></html>`
	want := "Rs. 500 debited at Amazon & Co"
	if got := stripHTML(in); got != want {
		t.Errorf("stripHTML = %q, want %q", got, want)
	}
}
