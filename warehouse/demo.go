package warehouse

import (
	"context"

	"github.com/pkg/errors"

	"github.com/gallerops/dwpipe/logger"
	"github.com/gallerops/dwpipe/rdbms/shared"
)

// demoRows seeds a small gallery so a fresh install has something to sync.
// All rows share one updated_at so a later incremental run sees them as old.
var demoRows = []struct {
	stmt string
	args [][]interface{}
}{
	{"insert into artists (id, full_name, nationality, birth_year, death_year, updated_at) values (?,?,?,?,?,?)", [][]interface{}{
		{1, "Berthe Deniau", "French", 1867, 1943, demoStamp},
		{2, "Anton Kalda", "Estonian", 1921, nil, demoStamp},
		{3, "Mirela Costa", "Portuguese", 1958, nil, demoStamp},
	}},
	{"insert into collections (id, name, category, updated_at) values (?,?,?,?)", [][]interface{}{
		{1, "Permanent Collection", "Painting", demoStamp},
		{2, "Works on Paper", "Drawing", demoStamp},
	}},
	{"insert into locations (id, name, building, room, updated_at) values (?,?,?,?,?)", [][]interface{}{
		{1, "Main Gallery", "North Wing", "G1", demoStamp},
		{2, "Print Room", "North Wing", "P2", demoStamp},
		{3, "Vault", "Basement", nil, demoStamp},
	}},
	{"insert into exhibitors (id, name, country, exhibitor_type, updated_at) values (?,?,?,?,?)", [][]interface{}{
		{1, "City Museum of Art", "FR", "Museum", demoStamp},
		{2, "Galerie Nord", "DE", "Gallery", demoStamp},
	}},
	{"insert into policies (id, provider, policy_number, coverage_type, updated_at) values (?,?,?,?,?)", [][]interface{}{
		{1, "ArtSure", "AS-1001", "AllRisk", demoStamp},
		{2, "Mutuelle Beaux-Arts", "MB-2207", "TransitOnly", demoStamp},
	}},
	{"insert into artworks (id, title, artist_id, creation_year, medium, collection_id, location_id, estimated_value, updated_at) values (?,?,?,?,?,?,?,?,?)", [][]interface{}{
		{1, "Harbour at Dusk", 1, 1902, "Oil on canvas", 1, 1, 250000.0, demoStamp},
		{2, "Study of Hands", 1, 1899, "Charcoal", 2, 2, 18000.0, demoStamp},
		{3, "Composition IX", 2, 1954, "Oil on board", 1, 1, 90000.0, demoStamp},
		{4, "Tagus Light", 3, 1991, "Acrylic", 1, 3, 42000.0, demoStamp},
	}},
	{"insert into exhibitions (id, name, exhibitor_id, start_date, end_date, updated_at) values (?,?,?,?,?,?)", [][]interface{}{
		{1, "Northern Light", 1, "2026-03-01 00:00:00", "2026-05-31 00:00:00", demoStamp},
		{2, "Lines and Shadows", 2, "2026-06-15 00:00:00", nil, demoStamp},
	}},
	{"insert into artwork_exhibitions (artwork_id, exhibition_id, updated_at) values (?,?,?)", [][]interface{}{
		{1, 1, demoStamp},
		{3, 1, demoStamp},
		{2, 2, demoStamp},
		{4, 2, demoStamp},
	}},
	{"insert into insurance (id, artwork_id, policy_id, insured_amount, start_date, end_date, updated_at) values (?,?,?,?,?,?,?)", [][]interface{}{
		{1, 1, 1, 250000.0, "2026-01-01 00:00:00", nil, demoStamp},
		{2, 1, 2, 50000.0, "2026-02-01 00:00:00", nil, demoStamp},
		{3, 3, 1, 90000.0, "2026-01-01 00:00:00", nil, demoStamp},
	}},
	{"insert into loans (id, artwork_id, borrower, loan_start, loan_end, updated_at) values (?,?,?,?,?,?)", [][]interface{}{
		{1, 3, "Galerie Nord", "2026-06-01 00:00:00", nil, demoStamp},
	}},
	{"insert into restorations (id, artwork_id, description, restored_at, updated_at) values (?,?,?,?,?)", [][]interface{}{
		{1, 1, "Varnish removal", "2025-09-12 00:00:00", demoStamp},
		{2, 1, "Frame repair", "2025-11-03 00:00:00", demoStamp},
	}},
	{"insert into reviews (id, artwork_id, rating, comment, updated_at) values (?,?,?,?,?)", [][]interface{}{
		{1, 1, 4.5, "Luminous", demoStamp},
		{2, 1, 5.0, nil, demoStamp},
		{3, 4, 3.0, "Uneven", demoStamp},
	}},
	{"insert into visitors (id, full_name, email, membership_type, updated_at) values (?,?,?,?,?)", [][]interface{}{
		{1, "Jamie Okafor", "jamie@example.org", "Annual", demoStamp},
		{2, "Lucia Ferrante", nil, "Day", demoStamp},
	}},
	{"insert into staff (id, full_name, job_title, hire_date, updated_at) values (?,?,?,?,?)", [][]interface{}{
		{1, "Noor al-Hashimi", "Registrar", "2019-04-01 00:00:00", demoStamp},
		{2, "Peter Lindqvist", "Conservator", "2015-10-12 00:00:00", demoStamp},
	}},
}

const demoStamp = "2026-01-15 09:00:00"

// SeedDemoSource fills an empty OLTP schema with the demo gallery.
func SeedDemoSource(ctx context.Context, log logger.Logger, db shared.Connector) error {
	for _, group := range demoRows {
		for _, args := range group.args {
			if _, err := db.ExecContext(ctx, group.stmt, args...); err != nil {
				return errors.Wrapf(err, "unable to seed demo row via %q", group.stmt)
			}
		}
	}
	log.Info("seeded demo gallery source data")
	return nil
}
