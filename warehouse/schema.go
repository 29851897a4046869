package warehouse

import (
	"context"

	"github.com/pkg/errors"

	"github.com/gallerops/dwpipe/constants"
	"github.com/gallerops/dwpipe/logger"
	"github.com/gallerops/dwpipe/rdbms/shared"
)

// WarehouseTables lists every star-schema table in dependency order.
var WarehouseTables = []string{
	constants.TableDimDate,
	constants.TableDimArtist,
	constants.TableDimCollection,
	constants.TableDimLocation,
	constants.TableDimExhibitor,
	constants.TableDimPolicy,
	constants.TableDimArtwork,
	constants.TableDimExhibition,
	constants.TableDimInsurance,
	constants.TableDimVisitor,
	constants.TableDimStaff,
	constants.TableFactArtworkExhibition,
}

// warehouseDdl holds one create-table statement per warehouse table. The DDL
// avoids engine-specific auto-increment since all surrogate keys are allocated
// by the pipeline, so the same statements run on MySQL and SQLite.
var warehouseDdl = map[string]string{
	constants.TableDimDate: `create table if not exists dim_date (
		date_key integer primary key,
		calendar_date text not null,
		year integer not null,
		quarter integer not null,
		month integer not null,
		month_name text not null,
		day_of_month integer not null,
		day_of_week integer not null,
		day_name text not null,
		is_weekend integer not null
	)`,
	constants.TableDimArtist: `create table if not exists dim_artist (
		artist_key integer primary key,
		artist_id integer not null,
		full_name text not null,
		nationality text not null,
		birth_year integer,
		death_year integer,
		effective_start text not null,
		effective_end text,
		is_current integer not null
	)`,
	constants.TableDimCollection: `create table if not exists dim_collection (
		collection_key integer primary key,
		collection_id integer not null,
		name text not null,
		category text not null
	)`,
	constants.TableDimLocation: `create table if not exists dim_location (
		location_key integer primary key,
		location_id integer not null,
		name text not null,
		building text,
		room text
	)`,
	constants.TableDimExhibitor: `create table if not exists dim_exhibitor (
		exhibitor_key integer primary key,
		exhibitor_id integer not null,
		name text not null,
		country text not null,
		exhibitor_type text not null
	)`,
	constants.TableDimPolicy: `create table if not exists dim_policy (
		policy_key integer primary key,
		policy_id integer not null,
		provider text not null,
		policy_number text,
		coverage_type text not null
	)`,
	constants.TableDimArtwork: `create table if not exists dim_artwork (
		artwork_key integer primary key,
		artwork_id integer not null,
		title text not null,
		artist_key integer not null,
		creation_year integer,
		medium text not null,
		collection_key integer,
		location_key integer,
		estimated_value real,
		effective_start text not null,
		effective_end text,
		is_current integer not null
	)`,
	constants.TableDimExhibition: `create table if not exists dim_exhibition (
		exhibition_key integer primary key,
		exhibition_id integer not null,
		name text not null,
		exhibitor_key integer not null,
		start_date text not null,
		end_date text,
		effective_start text not null,
		effective_end text,
		is_current integer not null
	)`,
	constants.TableDimInsurance: `create table if not exists dim_insurance (
		insurance_key integer primary key,
		insurance_id integer not null,
		artwork_id integer not null,
		policy_key integer,
		insured_amount real not null,
		start_date text not null,
		end_date text,
		effective_start text not null,
		effective_end text,
		is_current integer not null
	)`,
	constants.TableDimVisitor: `create table if not exists dim_visitor (
		visitor_key integer primary key,
		visitor_id integer not null,
		full_name text not null,
		email text,
		membership_type text not null,
		effective_start text not null,
		effective_end text,
		is_current integer not null
	)`,
	constants.TableDimStaff: `create table if not exists dim_staff (
		staff_key integer primary key,
		staff_id integer not null,
		full_name text not null,
		job_title text not null,
		hire_date text,
		effective_start text not null,
		effective_end text,
		is_current integer not null
	)`,
	constants.TableFactArtworkExhibition: `create table if not exists fact_artwork_exhibition (
		fact_key integer primary key,
		date_key integer not null,
		artwork_key integer not null,
		artist_key integer not null,
		exhibition_key integer not null,
		exhibitor_key integer not null,
		collection_key integer,
		location_key integer,
		policy_key integer,
		artwork_id integer not null,
		exhibition_id integer not null,
		estimated_value real,
		insured_amount real not null,
		loan_flag integer not null,
		restoration_count integer not null,
		review_count integer not null,
		avg_rating real
	)`,
}

// CreateWarehouseTables provisions the full star schema plus the run log.
func CreateWarehouseTables(ctx context.Context, log logger.Logger, db shared.Connector) error {
	for _, table := range WarehouseTables {
		log.Debug("creating warehouse table ", table)
		if _, err := db.ExecContext(ctx, warehouseDdl[table]); err != nil {
			return errors.Wrapf(err, "unable to create warehouse table %v", table)
		}
	}
	return CreateRunLogTable(ctx, db)
}

// CreateWarehouseTable provisions a single named warehouse table. Used by
// tests and by partial-provisioning setups.
func CreateWarehouseTable(ctx context.Context, db shared.Connector, table string) error {
	ddl, ok := warehouseDdl[table]
	if !ok {
		return errors.Errorf("unknown warehouse table %v", table)
	}
	_, err := db.ExecContext(ctx, ddl)
	return err
}

// sourceDdl provisions the OLTP schema used by the demo installer and tests.
// Production deployments read an existing gallery database instead.
var sourceDdl = []string{
	`create table if not exists artists (
		id integer primary key,
		full_name text not null,
		nationality text,
		birth_year integer,
		death_year integer,
		updated_at text not null
	)`,
	`create table if not exists collections (
		id integer primary key,
		name text not null,
		category text,
		updated_at text not null
	)`,
	`create table if not exists locations (
		id integer primary key,
		name text not null,
		building text,
		room text,
		updated_at text not null
	)`,
	`create table if not exists exhibitors (
		id integer primary key,
		name text not null,
		country text,
		exhibitor_type text,
		updated_at text not null
	)`,
	`create table if not exists policies (
		id integer primary key,
		provider text not null,
		policy_number text,
		coverage_type text,
		updated_at text not null
	)`,
	`create table if not exists artworks (
		id integer primary key,
		title text not null,
		artist_id integer not null,
		creation_year integer,
		medium text,
		collection_id integer,
		location_id integer,
		estimated_value real,
		updated_at text not null
	)`,
	`create table if not exists exhibitions (
		id integer primary key,
		name text not null,
		exhibitor_id integer not null,
		start_date text not null,
		end_date text,
		updated_at text not null
	)`,
	`create table if not exists artwork_exhibitions (
		artwork_id integer not null,
		exhibition_id integer not null,
		updated_at text not null,
		primary key (artwork_id, exhibition_id)
	)`,
	`create table if not exists insurance (
		id integer primary key,
		artwork_id integer not null,
		policy_id integer,
		insured_amount real not null,
		start_date text not null,
		end_date text,
		updated_at text not null
	)`,
	`create table if not exists loans (
		id integer primary key,
		artwork_id integer not null,
		borrower text,
		loan_start text,
		loan_end text,
		updated_at text not null
	)`,
	`create table if not exists restorations (
		id integer primary key,
		artwork_id integer not null,
		description text,
		restored_at text,
		updated_at text not null
	)`,
	`create table if not exists reviews (
		id integer primary key,
		artwork_id integer not null,
		rating real not null,
		comment text,
		updated_at text not null
	)`,
	`create table if not exists visitors (
		id integer primary key,
		full_name text not null,
		email text,
		membership_type text,
		updated_at text not null
	)`,
	`create table if not exists staff (
		id integer primary key,
		full_name text not null,
		job_title text,
		hire_date text,
		updated_at text not null
	)`,
}

// CreateSourceTables provisions an empty OLTP schema.
func CreateSourceTables(ctx context.Context, log logger.Logger, db shared.Connector) error {
	for _, ddl := range sourceDdl {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return errors.Wrap(err, "unable to create source table")
		}
	}
	return nil
}
