package lib

import (
	"context"
	"errors"

	"eventreg/src/config"

	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

var ErrSheetsNotConfigured = errors.New("GOOGLE_SHEETS_SPREADSHEET_ID, GOOGLE_SHEETS_CLIENT_EMAIL and GOOGLE_SHEETS_PRIVATE_KEY must be set")

// GAPICreateSheetsService authenticates as a service account. Extra options
// are appended last so callers can redirect the endpoint.
func GAPICreateSheetsService(ctx context.Context, cfg config.SheetsConfig, opts ...option.ClientOption) (*sheets.Service, error) {
	if cfg.SpreadsheetID == "" || cfg.ClientEmail == "" || cfg.PrivateKey == "" {
		return nil, ErrSheetsNotConfigured
	}
	conf := &jwt.Config{
		Email:      cfg.ClientEmail,
		PrivateKey: []byte(cfg.PrivateKey),
		Scopes:     []string{sheets.SpreadsheetsScope},
		TokenURL:   google.JWTTokenURL,
	}
	clientOpts := append([]option.ClientOption{option.WithHTTPClient(conf.Client(ctx))}, opts...)
	return sheets.NewService(ctx, clientOpts...)
}
