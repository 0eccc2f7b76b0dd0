package service

import (
	"fmt"

	"github.com/okian/stride/internal/auth"
	"github.com/okian/stride/internal/config"
	"github.com/okian/stride/internal/domain/model"
	"github.com/okian/stride/internal/domain/ranking"
)

// OptionsFromConfig translates loaded configuration into service options.
func OptionsFromConfig(cfg *config.Config) ([]Option, error) {
	cats := make([]model.Category, 0, len(cfg.Categories))
	for _, c := range cfg.Categories {
		cats = append(cats, model.NormalizeCategory(c))
	}

	issuer, err := auth.NewIssuer(cfg.AdminSecret, auth.WithTTL(cfg.TokenTTL()))
	if err != nil {
		return nil, fmt.Errorf("token issuer: %w", err)
	}

	return []Option{
		WithRankingOptions(
			ranking.WithCategories(cats...),
			ranking.WithMeetPlaceholder(cfg.MeetPlaceholder),
			ranking.WithTieBreak(ranking.ParseTieBreak(cfg.TieBreak)),
		),
		WithFetchTimeout(cfg.FetchTimeout()),
		WithIssuer(issuer),
		WithCredentials(auth.Credentials{Username: cfg.AdminUsername, Password: cfg.AdminPassword}),
	}, nil
}
