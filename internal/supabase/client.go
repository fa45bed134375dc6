package supabase

import (
	"fmt"

	"github.com/supabase-community/supabase-go"

	"fims-backend/internal/config"
	"fims-backend/internal/models"
)

type Client struct {
	Supabase *supabase.Client
	Config   *config.Config
}

func NewClient(cfg *config.Config) (*Client, error) {
	client, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabasePublishableKey, nil)
	if err != nil {
		return nil, err
	}

	return &Client{
		Supabase: client,
		Config:   cfg,
	}, nil
}

// ListCategories fetches the fixed inspection-type catalog through PostgREST.
func (c *Client) ListCategories() ([]models.Category, error) {
	var categories []models.Category
	_, err := c.Supabase.From("fims_categories").
		Select("id,name,form_type", "", false).
		ExecuteTo(&categories)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}
