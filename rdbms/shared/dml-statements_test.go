package shared

import (
	"testing"

	"github.com/sirupsen/logrus"

	h "github.com/gallerops/dwpipe/helper"
)

func newTestConfig(log *logrus.Logger) *SqlStatementGeneratorConfig {
	return &SqlStatementGeneratorConfig{
		Log:             log,
		OutputSchema:    "",
		OutputTable:     "dim_artist",
		TargetKeyCols:   h.TokensToOrderedMap("artist_id:id"),
		TargetOtherCols: h.TokensToOrderedMap("full_name:name,nationality:nationality"),
	}
}

func TestSqlInsertTxt(t *testing.T) {
	log := logrus.New()
	dml := &DmlGeneratorTxt{}
	o := dml.NewInsertGenerator(newTestConfig(log))
	expected := "insert into dim_artist (artist_id,full_name,nationality) values (?,?,?)"
	if got := o.GetStatement(); got != expected {
		t.Fatalf("expected %q, got %q", expected, got)
	}
	// A second call must return the cached statement unchanged.
	if got := o.GetStatement(); got != expected {
		t.Fatalf("expected cached statement %q, got %q", expected, got)
	}
}

func TestSqlUpdateTxt(t *testing.T) {
	log := logrus.New()
	dml := &DmlGeneratorTxt{}
	o := dml.NewUpdateGenerator(newTestConfig(log))
	expected := "update dim_artist set full_name = ?,nationality = ? where artist_id = ?"
	if got := o.GetStatement(); got != expected {
		t.Fatalf("expected %q, got %q", expected, got)
	}
}

func TestSqlDeleteTxt(t *testing.T) {
	log := logrus.New()
	dml := &DmlGeneratorTxt{}
	o := dml.NewDeleteGenerator(newTestConfig(log))
	expected := "delete from dim_artist where artist_id = ?"
	if got := o.GetStatement(); got != expected {
		t.Fatalf("expected %q, got %q", expected, got)
	}
}

func TestSqlSelectTxt(t *testing.T) {
	log := logrus.New()
	dml := &DmlGeneratorTxt{}
	o := dml.NewSelectGenerator(newTestConfig(log))
	expected := "select artist_id,full_name,nationality from dim_artist where artist_id = ?"
	if got := o.GetStatement(); got != expected {
		t.Fatalf("expected %q, got %q", expected, got)
	}
}

func TestSqlWithSchema(t *testing.T) {
	log := logrus.New()
	dml := &DmlGeneratorTxt{}
	cfg := newTestConfig(log)
	cfg.OutputSchema = "gallery_dw"
	o := dml.NewDeleteGenerator(cfg)
	expected := "delete from gallery_dw.dim_artist where artist_id = ?"
	if got := o.GetStatement(); got != expected {
		t.Fatalf("expected %q, got %q", expected, got)
	}
}
