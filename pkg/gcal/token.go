package gcal

import (
	"context"
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
)

// TokenSourceFromFiles builds a self-refreshing TokenSource from an OAuth
// client-secrets file and a previously stored token file. The returned
// source refreshes the access token on expiry using the stored refresh
// token; callers never see the token format.
func TokenSourceFromFiles(credentialsPath, tokenPath string) (oauth2.TokenSource, error) {
	secrets, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, eris.Wrap(err, "gcal: read credentials file")
	}

	cfg, err := google.ConfigFromJSON(secrets, calendar.CalendarScope)
	if err != nil {
		return nil, eris.Wrap(err, "gcal: parse credentials file")
	}

	tokenBytes, err := os.ReadFile(tokenPath)
	if err != nil {
		return nil, eris.Wrap(err, "gcal: read token file")
	}

	var tok oauth2.Token
	if err := json.Unmarshal(tokenBytes, &tok); err != nil {
		return nil, eris.Wrap(err, "gcal: parse token file")
	}

	return cfg.TokenSource(context.Background(), &tok), nil
}
