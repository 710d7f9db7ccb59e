package review

import (
	"context"

	"github.com/ifuryst/reelcheck/internal/models"
	"github.com/ifuryst/reelcheck/internal/service/airtable"
)

// Table is the slice of the record store the review logic depends on.
// *airtable.Table satisfies it.
type Table interface {
	List(ctx context.Context, opts airtable.ListOptions) ([]models.Record, error)
	Get(ctx context.Context, id string) (*models.Record, error)
	Update(ctx context.Context, id string, fields map[string]any) (*models.Record, error)
}

// Tables groups the four tables a campaign review reads.
type Tables struct {
	Influencers Table
	Posts       Table
	Errors      Table
	Campaigns   Table
}
