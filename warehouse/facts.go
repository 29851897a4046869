package warehouse

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/gallerops/dwpipe/constants"
	h "github.com/gallerops/dwpipe/helper"
	"github.com/gallerops/dwpipe/logger"
	"github.com/gallerops/dwpipe/rdbms/shared"
)

// factMeasureCols are the fact columns rewritten on every run, in bind order.
var factMeasureCols = []string{
	"date_key", "artwork_key", "artist_key", "exhibition_key", "exhibitor_key",
	"collection_key", "location_key", "policy_key",
	"estimated_value", "insured_amount", "loan_flag", "restoration_count", "review_count", "avg_rating",
}

// FactBuilder derives one fact row per artwork-exhibition pairing, resolving
// dimension keys against the current dimension rows and recomputing measures
// from the source on every run.
type FactBuilder struct {
	log logger.Logger
	db  shared.Connector
	src *Reader
	ups *Upserter
}

func NewFactBuilder(log logger.Logger, db shared.Connector, src *Reader, ups *Upserter) *FactBuilder {
	return &FactBuilder{log: log, db: db, src: src, ups: ups}
}

// Build recomputes the fact table from the artwork-exhibition join table.
// Existing facts are updated in place keyed on (artwork_id, exhibition_id) so
// re-runs never produce duplicates.
func (f *FactBuilder) Build(ctx context.Context) (int, error) {
	links, err := f.src.ArtworkExhibitions(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "unable to read artwork-exhibition pairings")
	}
	for _, link := range links {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		if err := f.buildOne(ctx, link); err != nil {
			return 0, err
		}
	}
	return len(links), nil
}

func (f *FactBuilder) buildOne(ctx context.Context, link ArtworkExhibition) error {
	// Resolve the conformed dimension keys from the current dimension rows.
	var artworkKey, artistKey int64
	var collectionKey, locationKey, estimatedValue interface{}
	row := f.db.QueryRowContext(ctx,
		"select artwork_key, artist_key, collection_key, location_key, estimated_value from dim_artwork where artwork_id = ? and is_current = 1",
		link.ArtworkID)
	if err := row.Scan(&artworkKey, &artistKey, &collectionKey, &locationKey, &estimatedValue); err != nil {
		if err == sql.ErrNoRows {
			return errors.Errorf("fact row references artwork %v with no current dimension row", link.ArtworkID)
		}
		return errors.Wrapf(err, "unable to resolve dimension keys for artwork %v", link.ArtworkID)
	}
	var exhibitionKey, exhibitorKey int64
	var startDate string
	row = f.db.QueryRowContext(ctx,
		"select exhibition_key, exhibitor_key, start_date from dim_exhibition where exhibition_id = ? and is_current = 1",
		link.ExhibitionID)
	if err := row.Scan(&exhibitionKey, &exhibitorKey, &startDate); err != nil {
		if err == sql.ErrNoRows {
			return errors.Errorf("fact row references exhibition %v with no current dimension row", link.ExhibitionID)
		}
		return errors.Wrapf(err, "unable to resolve dimension keys for exhibition %v", link.ExhibitionID)
	}
	start, err := parseTime(startDate)
	if err != nil {
		return errors.Wrapf(err, "bad start_date %q on exhibition %v", startDate, link.ExhibitionID)
	}
	dateKey, err := EnsureDate(ctx, f.log, f.db, start)
	if err != nil {
		return errors.Wrapf(err, "unable to ensure date row for exhibition %v", link.ExhibitionID)
	}

	// Measures come straight from the source so re-runs reflect its current state.
	insured, err := f.src.InsuredAmountForArtwork(ctx, link.ArtworkID)
	if err != nil {
		return errors.Wrapf(err, "unable to total insured amount for artwork %v", link.ArtworkID)
	}
	policyID, err := f.src.FirstPolicyForArtwork(ctx, link.ArtworkID)
	if err != nil {
		return errors.Wrapf(err, "unable to find policy for artwork %v", link.ArtworkID)
	}
	policyKey, err := f.ups.type1Key(ctx, policyDim, policyID)
	if err != nil {
		return errors.Wrapf(err, "artwork %v insurance references a missing policy", link.ArtworkID)
	}
	onLoan, err := f.src.HasLoanForArtwork(ctx, link.ArtworkID)
	if err != nil {
		return errors.Wrapf(err, "unable to check loans for artwork %v", link.ArtworkID)
	}
	loanFlag := 0
	if onLoan {
		loanFlag = 1
	}
	restorations, err := f.src.RestorationCountForArtwork(ctx, link.ArtworkID)
	if err != nil {
		return errors.Wrapf(err, "unable to count restorations for artwork %v", link.ArtworkID)
	}
	reviewCount, avgRating, err := f.src.ReviewStatsForArtwork(ctx, link.ArtworkID)
	if err != nil {
		return errors.Wrapf(err, "unable to read review stats for artwork %v", link.ArtworkID)
	}

	measures := []interface{}{
		dateKey, artworkKey, artistKey, exhibitionKey, exhibitorKey,
		collectionKey, locationKey, policyKey,
		estimatedValue, insured, loanFlag, restorations, reviewCount, nullFloat64Arg(avgRating),
	}
	return f.upsertFact(ctx, link, measures)
}

// upsertFact writes the fact row, updating in place when the pairing exists.
func (f *FactBuilder) upsertFact(ctx context.Context, link ArtworkExhibition, measures []interface{}) error {
	var factKey int64
	err := f.db.QueryRowContext(ctx,
		"select fact_key from fact_artwork_exhibition where artwork_id = ? and exhibition_id = ?",
		link.ArtworkID, link.ExhibitionID).Scan(&factKey)
	if err != nil && err != sql.ErrNoRows {
		return errors.Wrapf(err, "unable to look up fact for artwork %v exhibition %v", link.ArtworkID, link.ExhibitionID)
	}
	if err == nil { // if the pairing already has a fact row...
		gen := f.db.GetDmlGenerator().NewUpdateGenerator(&shared.SqlStatementGeneratorConfig{
			Log:             f.log,
			OutputTable:     constants.TableFactArtworkExhibition,
			TargetKeyCols:   h.TokensToOrderedMap("fact_key:fact_key"),
			TargetOtherCols: h.TokensToOrderedMap(attrOrderedMap(factMeasureCols...)),
		})
		args := append(append([]interface{}{}, measures...), factKey)
		if _, err := f.db.ExecContext(ctx, gen.GetStatement(), args...); err != nil {
			return errors.Wrapf(err, "unable to update fact %v", factKey)
		}
		return nil
	}
	if err := f.db.QueryRowContext(ctx, "select coalesce(max(fact_key),0)+1 from fact_artwork_exhibition").Scan(&factKey); err != nil {
		return errors.Wrap(err, "unable to allocate fact key")
	}
	cols := append([]string{"artwork_id", "exhibition_id"}, factMeasureCols...)
	gen := f.db.GetDmlGenerator().NewInsertGenerator(&shared.SqlStatementGeneratorConfig{
		Log:             f.log,
		OutputTable:     constants.TableFactArtworkExhibition,
		TargetKeyCols:   h.TokensToOrderedMap("fact_key:fact_key"),
		TargetOtherCols: h.TokensToOrderedMap(attrOrderedMap(cols...)),
	})
	args := make([]interface{}, 0, len(measures)+3)
	args = append(args, factKey, link.ArtworkID, link.ExhibitionID)
	args = append(args, measures...)
	if _, err := f.db.ExecContext(ctx, gen.GetStatement(), args...); err != nil {
		return errors.Wrapf(err, "unable to insert fact for artwork %v exhibition %v", link.ArtworkID, link.ExhibitionID)
	}
	return nil
}
