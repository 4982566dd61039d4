// Package settings reads the single company_settings row that drives
// storefront policy: the free-shipping threshold and the WhatsApp number the
// handoff targets.
package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// CompanySettings is the subset of the settings row the storefront core
// consumes. Branding and policy text stay in the admin surface.
type CompanySettings struct {
	ID                    string  `json:"id"`
	TradingName           string  `json:"nome_fantasia"`
	Email                 string  `json:"email"`
	Phone                 string  `json:"telefone"`
	WhatsApp              string  `json:"whatsapp"`
	FreeShippingThreshold float64 `json:"frete_gratis_acima"`
	LogoURL               string  `json:"logo_url"`
	BannerURL             string  `json:"banner_url"`
}

// Defaults used when no settings row exists yet.
type Defaults struct {
	FreeShippingThreshold float64
	WhatsApp              string
}

// Store loads settings from Postgres.
type Store struct {
	db       *sql.DB
	defaults Defaults
}

func NewStore(db *sql.DB, defaults Defaults) *Store {
	return &Store{db: db, defaults: defaults}
}

// Load returns the settings row, falling back to configured defaults when
// the table is empty so a fresh install still checks out.
func (s *Store) Load(ctx context.Context) (CompanySettings, error) {
	row := psql.Select("id", "nome_fantasia", "email", "telefone", "whatsapp", "frete_gratis_acima", "logo_url", "banner_url").
		From("company_settings").
		Limit(1).
		RunWith(s.db).
		QueryRowContext(ctx)

	var (
		cs        CompanySettings
		logoURL   sql.NullString
		bannerURL sql.NullString
	)
	err := row.Scan(&cs.ID, &cs.TradingName, &cs.Email, &cs.Phone, &cs.WhatsApp, &cs.FreeShippingThreshold, &logoURL, &bannerURL)
	if errors.Is(err, sql.ErrNoRows) {
		return CompanySettings{
			FreeShippingThreshold: s.defaults.FreeShippingThreshold,
			WhatsApp:              s.defaults.WhatsApp,
		}, nil
	}
	if err != nil {
		return CompanySettings{}, fmt.Errorf("load company settings: %w", err)
	}
	cs.LogoURL = logoURL.String
	cs.BannerURL = bannerURL.String

	if cs.FreeShippingThreshold <= 0 {
		cs.FreeShippingThreshold = s.defaults.FreeShippingThreshold
	}
	if cs.WhatsApp == "" {
		cs.WhatsApp = s.defaults.WhatsApp
	}
	return cs, nil
}
