package actions

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/gallerops/dwpipe/analytics"
	"github.com/gallerops/dwpipe/constants"
	"github.com/gallerops/dwpipe/logger"
	"github.com/gallerops/dwpipe/warehouse"
)

type WebServerResponse uint32

const (
	Okay WebServerResponse = iota + 1
	Error
)

func (w WebServerResponse) MarshalJSON() ([]byte, error) {
	var retval string
	switch w {
	case Okay:
		retval = "ok"
	case Error:
		retval = "error"
	default:
		err := fmt.Errorf("unhandled WebServerResponse value in MarshalJSON() conversion")
		return nil, err
	}
	return json.Marshal(retval)
}

type ResponseSimple struct {
	ServerStatus WebServerResponse `json:"status"`
}

type ResponseError struct {
	Status  WebServerResponse `json:"status"`
	Message string            `json:"message"`
}

type ResponseReport struct {
	Status WebServerResponse `json:"status"`
	Report interface{}       `json:"report"`
}

type ResponseSync struct {
	Status WebServerResponse            `json:"status"`
	Result *warehouse.PropagationResult `json:"result"`
}

type ResponseValidate struct {
	Status WebServerResponse          `json:"status"`
	Result *warehouse.IntegrityResult `json:"result"`
}

func GetHandlerHealth(log logger.Logger) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		respond(log, w, http.StatusOK, ResponseSimple{ServerStatus: Okay})
	}
}

func GetHandlerStopServer(log logger.Logger, chanStopServer chan string) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Info("Stop requested via HTTP")
		respond(log, w, http.StatusOK, ResponseSimple{ServerStatus: Okay})
		chanStopServer <- "stop"
	}
}

// GetHandlerExhibitionValue serves the exhibition value summary. Optional
// "from" and "to" parameters (YYYY-MM-DD) bound the report by exhibition date.
func GetHandlerExhibitionValue(state *webServerState) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		dates, err := parseDateRange(r)
		if err != nil {
			respond(state.log, w, http.StatusBadRequest, ResponseError{Status: Error, Message: err.Error()})
			return
		}
		report, err := state.reports.ExhibitionValueSummary(r.Context(), dates)
		respondReport(state.log, w, report, err)
	}
}

// parseDateRange reads optional from/to query parameters into a DateRange.
func parseDateRange(r *http.Request) (analytics.DateRange, error) {
	var dates analytics.DateRange
	for _, bound := range []struct {
		param  string
		target *sql.NullTime
	}{
		{"from", &dates.From},
		{"to", &dates.To},
	} {
		v := r.URL.Query().Get(bound.param)
		if v == "" {
			continue
		}
		t, err := time.Parse(constants.TimeFormatDate, v)
		if err != nil {
			return analytics.DateRange{}, fmt.Errorf("invalid %v date %q: expected %v", bound.param, v, constants.TimeFormatDate)
		}
		*bound.target = sql.NullTime{Time: t, Valid: true}
	}
	return dates, nil
}

func GetHandlerTopArtists(state *webServerState) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit")) // 0 falls back to the service default.
		report, err := state.reports.TopArtistsByInsuredAmount(r.Context(), limit)
		respondReport(state.log, w, report, err)
	}
}

func GetHandlerMonthlyActivity(state *webServerState) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		year, err := strconv.Atoi(r.URL.Query().Get("year"))
		if err != nil {
			year = time.Now().UTC().Year()
		}
		report, err := state.reports.MonthlyActivityTrend(r.Context(), year)
		respondReport(state.log, w, report, err)
	}
}

func GetHandlerValidate(state *webServerState) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		result := state.validator.Validate(r.Context())
		status := Okay
		if !result.IsValid {
			status = Error
		}
		respond(state.log, w, http.StatusOK, ResponseValidate{Status: status, Result: result})
	}
}

// GetHandlerSync launches a propagation using the server's own connections.
// Mode is supplied via the "mode" query parameter and defaults to incremental.
func GetHandlerSync(state *webServerState) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		mode := r.URL.Query().Get("mode")
		if mode == "" {
			mode = constants.RunModeIncremental
		}
		if mode != constants.RunModeFull && mode != constants.RunModeIncremental {
			respond(state.log, w, http.StatusBadRequest, ResponseError{Status: Error, Message: fmt.Sprintf("unknown sync mode %q", mode)})
			return
		}
		runner := warehouse.NewRunner(&warehouse.RunnerConfig{
			Log: state.log, Source: state.source, Target: state.target, Mode: mode,
		})
		result := runner.RunPropagation(r.Context())
		state.reports.InvalidateCache() // reports should see the fresh load.
		status := Okay
		if result.Status != constants.RunStatusSuccess {
			status = Error
		}
		respond(state.log, w, http.StatusOK, ResponseSync{Status: status, Result: result})
	}
}

func respondReport(log logger.Logger, w http.ResponseWriter, report interface{}, err error) {
	if err != nil {
		httpStatus := http.StatusInternalServerError
		if errors.Is(err, analytics.ErrNotProvisioned) {
			httpStatus = http.StatusServiceUnavailable
		}
		respond(log, w, httpStatus, ResponseError{Status: Error, Message: err.Error()})
		return
	}
	respond(log, w, http.StatusOK, ResponseReport{Status: Okay, Report: report})
}

func respond(log logger.Logger, w http.ResponseWriter, httpStatus int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("unable to write HTTP response: ", err)
	}
}
