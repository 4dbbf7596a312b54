package internal

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	httptransport "github.com/go-kit/kit/transport/http"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/schema"
	"github.com/kardianos/osext"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"

	"github.com/derWhity/gigboard/internal/ctxhelper"
	"github.com/derWhity/gigboard/internal/log"
	"github.com/derWhity/gigboard/internal/models"
)

const (
	apiBasePath = "/api"
	idPattern   = "{id:[0-9]+}"

	headerRequestID = "X-Request-ID"
)

// Layouts accepted for the start time of a show
var startTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
}

// Defines an error that defines the HTTP status that should be returned
type httpStatuser interface {
	Status() int
}

// Defines an error that returns a machine-readable error code
type errorCoder interface {
	ErrorCode() string
}

// Defines an error that contains a data field with additional information
type dataBearer interface {
	Data() interface{}
}

type errorResponse struct {
	basicResponse
	// The error code
	Error   string      `json:"error"`
	Message string      `json:"errorMessage"`
	Details interface{} `json:"errorDetails,omitempty"`
}

// The fields of a show as they arrive from the client. The start time is parsed separately since it may come in
// several formats
type showInput struct {
	ArtistID  uint   `json:"artist_id" schema:"artist_id"`
	VenueID   uint   `json:"venue_id" schema:"venue_id"`
	StartTime string `json:"start_time" schema:"start_time"`
}

// formDecoder decodes HTML form submissions into the input structs
var formDecoder = newFormDecoder()

func newFormDecoder() *schema.Decoder {
	dec := schema.NewDecoder()
	dec.IgnoreUnknownKeys(true)
	// Checkboxes send "y" or "on" when checked
	dec.RegisterConverter(false, func(value string) reflect.Value {
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "", "false", "0", "off", "n", "no":
			return reflect.ValueOf(false)
		}
		return reflect.ValueOf(true)
	})
	return dec
}

// MakeHTTPHandler creates the main HTTP handler for the Gigboard service
func MakeHTTPHandler(
	vs VenueService,
	as ArtistService,
	ss ShowService,
	logger *logrus.Entry,
) http.Handler {
	r := mux.NewRouter()

	options := []httptransport.ServerOption{
		httptransport.ServerErrorEncoder(encodeError),
		httptransport.ServerBefore(makeContextInjector(logger)),
		httptransport.ServerAfter(setRequestIDHeader),
		httptransport.ServerFinalizer(makeRequestLogger(logger)),
	}

	// -- Venue service --------------------------------
	{
		vEp := MakeVenueEndpoints(vs)

		// ListByLocation
		r.Methods(http.MethodGet).Path(apiBasePath + "/venues").Handler(httptransport.NewServer(
			vEp.ListByLocation,
			decodeNilRequest,
			encodeJSONResponse,
			options...,
		))

		// Search
		r.Methods(http.MethodGet, http.MethodPost).Path(apiBasePath + "/venues/search").Handler(httptransport.NewServer(
			vEp.Search,
			decodeSearchRequest,
			encodeJSONResponse,
			options...,
		))

		// Get
		r.Methods(http.MethodGet).Path(apiBasePath + "/venues/" + idPattern).Handler(httptransport.NewServer(
			vEp.Get,
			decodeIDFromPath,
			encodeJSONResponse,
			options...,
		))

		// Create
		r.Methods(http.MethodPost).Path(apiBasePath + "/venues").Handler(httptransport.NewServer(
			vEp.Create,
			decodeVenueFields,
			encodeJSONResponse,
			options...,
		))

		// Update
		update := httptransport.NewServer(
			vEp.Update,
			decodeVenueUpdate,
			encodeJSONResponse,
			options...,
		)
		r.Methods(http.MethodPut).Path(apiBasePath + "/venues/" + idPattern).Handler(update)
		r.Methods(http.MethodPost).Path(apiBasePath + "/venues/" + idPattern + "/edit").Handler(update)

		// Delete
		r.Methods(http.MethodDelete).Path(apiBasePath + "/venues/" + idPattern).Handler(httptransport.NewServer(
			vEp.Delete,
			decodeIDFromPath,
			encodeJSONResponse,
			options...,
		))
	}

	// -- Artist service -------------------------------
	{
		aEp := MakeArtistEndpoints(as)

		// List
		r.Methods(http.MethodGet).Path(apiBasePath + "/artists").Handler(httptransport.NewServer(
			aEp.List,
			decodeNilRequest,
			encodeJSONResponse,
			options...,
		))

		// Search
		r.Methods(http.MethodGet, http.MethodPost).Path(apiBasePath + "/artists/search").Handler(httptransport.NewServer(
			aEp.Search,
			decodeSearchRequest,
			encodeJSONResponse,
			options...,
		))

		// Get
		r.Methods(http.MethodGet).Path(apiBasePath + "/artists/" + idPattern).Handler(httptransport.NewServer(
			aEp.Get,
			decodeIDFromPath,
			encodeJSONResponse,
			options...,
		))

		// Create
		r.Methods(http.MethodPost).Path(apiBasePath + "/artists").Handler(httptransport.NewServer(
			aEp.Create,
			decodeArtistFields,
			encodeJSONResponse,
			options...,
		))

		// Update
		update := httptransport.NewServer(
			aEp.Update,
			decodeArtistUpdate,
			encodeJSONResponse,
			options...,
		)
		r.Methods(http.MethodPut).Path(apiBasePath + "/artists/" + idPattern).Handler(update)
		r.Methods(http.MethodPost).Path(apiBasePath + "/artists/" + idPattern + "/edit").Handler(update)
	}

	// -- Show service ---------------------------------
	{
		sEp := MakeShowEndpoints(ss)

		// List
		r.Methods(http.MethodGet).Path(apiBasePath + "/shows").Handler(httptransport.NewServer(
			sEp.List,
			decodeNilRequest,
			encodeJSONResponse,
			options...,
		))

		// Create
		r.Methods(http.MethodPost).Path(apiBasePath + "/shows").Handler(httptransport.NewServer(
			sEp.Create,
			decodeShow,
			encodeJSONResponse,
			options...,
		))
	}

	// Simple alive answer for checking if HTTP can be reached
	r.Methods(http.MethodGet).Path("/alive").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		data := map[string]bool{"ok": true}
		json.NewEncoder(w).Encode(data)
	})

	// Plain file service for the UI serving everything from the "ui" folder right beside the application executable
	execDir, err := osext.ExecutableFolder()
	if err != nil {
		logger.WithError(err).Warn("Cannot determine executable folder - not serving the UI")
		return r
	}
	uiDir := filepath.Join(execDir, "ui")
	r.Methods(http.MethodGet).PathPrefix("/").Handler(http.FileServer(http.Dir(uiDir)))

	return r
}

// decodeNilRequest just does nothing with the request. It is used for endpoints that don't need anything to be passed
func decodeNilRequest(_ context.Context, r *http.Request) (request interface{}, err error) {
	return nil, nil
}

// isJSONRequest checks if the request body is declared as JSON
func isJSONRequest(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "application/json"
}

// decodeBody reads the request body into target - either from JSON or from a submitted form
func decodeBody(r *http.Request, target interface{}) error {
	if isJSONRequest(r) {
		if err := json.NewDecoder(r.Body).Decode(target); err != nil {
			return MakeError(
				http.StatusBadRequest,
				ErrCodeIllegalJSON,
				fmt.Sprintf("Failed to decode JSON body: %v", err),
			)
		}
		return nil
	}
	if err := r.ParseForm(); err != nil {
		return MakeError(
			http.StatusBadRequest,
			ErrCodeIllegalForm,
			fmt.Sprintf("Failed to parse form: %v", err),
		)
	}
	if err := formDecoder.Decode(target, r.PostForm); err != nil {
		return MakeErrorWithData(
			http.StatusBadRequest,
			ErrCodeIllegalForm,
			"Failed to decode form values",
			err,
		)
	}
	return nil
}

// decodeSearchRequest decodes the search term either from the GET variable "search" or the form field "search_term"
func decodeSearchRequest(_ context.Context, r *http.Request) (request interface{}, err error) {
	search := Search{Search: r.URL.Query().Get("search")}
	if r.Method != http.MethodPost {
		return search, nil
	}
	if isJSONRequest(r) {
		var body struct {
			SearchTerm string `json:"search_term"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return nil, MakeError(
				http.StatusBadRequest,
				ErrCodeIllegalJSON,
				fmt.Sprintf("Failed to decode JSON body: %v", err),
			)
		}
		search.Search = body.SearchTerm
		return search, nil
	}
	if err := r.ParseForm(); err != nil {
		return nil, MakeError(
			http.StatusBadRequest,
			ErrCodeIllegalForm,
			fmt.Sprintf("Failed to parse form: %v", err),
		)
	}
	if vals, ok := r.PostForm["search_term"]; ok && len(vals) > 0 {
		search.Search = vals[0]
	}
	return search, nil
}

// decodeVenueFields reads the fields of a venue from the request's body
func decodeVenueFields(_ context.Context, r *http.Request) (interface{}, error) {
	var fields models.VenueFields
	if err := decodeBody(r, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// Decodes the fields of a venue from an update request where the ID of the venue is in the path
func decodeVenueUpdate(ctx context.Context, r *http.Request) (interface{}, error) {
	id, err := getUintFromPath("id", r)
	if err != nil {
		return nil, err
	}
	fields, err := decodeVenueFields(ctx, r)
	if err != nil {
		return nil, err
	}
	return venueUpdateRequest{ID: id, Fields: fields.(models.VenueFields)}, nil
}

// decodeArtistFields reads the fields of an artist from the request's body
func decodeArtistFields(_ context.Context, r *http.Request) (interface{}, error) {
	var fields models.ArtistFields
	if err := decodeBody(r, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// Decodes the fields of an artist from an update request where the ID of the artist is in the path
func decodeArtistUpdate(ctx context.Context, r *http.Request) (interface{}, error) {
	id, err := getUintFromPath("id", r)
	if err != nil {
		return nil, err
	}
	fields, err := decodeArtistFields(ctx, r)
	if err != nil {
		return nil, err
	}
	return artistUpdateRequest{ID: id, Fields: fields.(models.ArtistFields)}, nil
}

// decodeShow reads a new show from the request's body
func decodeShow(_ context.Context, r *http.Request) (interface{}, error) {
	var in showInput
	if err := decodeBody(r, &in); err != nil {
		return nil, err
	}
	show := models.Show{ArtistID: in.ArtistID, VenueID: in.VenueID}
	if raw := strings.TrimSpace(in.StartTime); raw != "" {
		t, err := parseStartTime(raw)
		if err != nil {
			return nil, MakeErrorWithData(
				http.StatusBadRequest,
				ErrCodeValidationFailed,
				fmt.Sprintf("Start time '%s' has an unknown format", raw),
				map[string]string{"start_time": "datetime"},
			)
		}
		show.StartTime = t
	}
	return show, nil
}

// parseStartTime parses a show's start time in one of the accepted layouts. Times without zone are taken as UTC
func parseStartTime(value string) (time.Time, error) {
	var err error
	for _, layout := range startTimeLayouts {
		var t time.Time
		if t, err = time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

// getUintFromPath is a helper function that gets a uint from the given path variable
func getUintFromPath(varname string, r *http.Request) (uint, error) {
	errmsg := fmt.Sprintf("Value for '%s' is no valid unsigned integer", varname)
	vars := mux.Vars(r)
	str, ok := vars[varname]
	if !ok {
		return 0, MakeError(http.StatusBadRequest, ErrCodeInvalidUint, errmsg)
	}
	id, err := strconv.ParseUint(str, 10, 64)
	if err != nil {
		return 0, MakeError(http.StatusBadRequest, ErrCodeInvalidUint, errmsg)
	}
	return uint(id), nil
}

// Decodes an ID from the "id" path variable provided by GoRilla
func decodeIDFromPath(ctx context.Context, r *http.Request) (interface{}, error) {
	return getUintFromPath("id", r)
}

// Encodes a typical JSON response
func encodeJSONResponse(ctx context.Context, w http.ResponseWriter, response interface{}) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	return json.NewEncoder(w).Encode(response)
}

// Builds an error response based on the incoming error
func encodeError(ctx context.Context, err error, w http.ResponseWriter) {
	if err == nil {
		panic("encodeError with nil error")
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if id := ctxhelper.RequestID(ctx); id != "" {
		w.Header().Set(headerRequestID, id)
	}
	if st, ok := err.(httpStatuser); ok {
		w.WriteHeader(st.Status())
	} else {
		w.WriteHeader(http.StatusInternalServerError)
	}
	ret := errorResponse{
		basicResponse: basicResponse{false, nil},
		Message:       err.Error(),
		Error:         ErrCodeUnknown,
	}
	if cd, ok := err.(errorCoder); ok {
		ret.Error = cd.ErrorCode()
	}
	if db, ok := err.(dataBearer); ok {
		if data := db.Data(); data != nil {
			if err, ok := data.(error); ok {
				ret.Details = err.Error()
			} else {
				ret.Details = data
			}
		}
	}
	json.NewEncoder(w).Encode(&ret)
}

// makeContextInjector returns a function that puts a request-scoped logger and the request's ID into the context
func makeContextInjector(logger *logrus.Entry) httptransport.RequestFunc {
	return func(ctx context.Context, r *http.Request) context.Context {
		id := strings.TrimSpace(r.Header.Get(headerRequestID))
		if id == "" {
			id = uuid.New().String()
		}
		ctx = context.WithValue(ctx, ctxhelper.KeyRequestID, id)
		return ctxhelper.WithLogger(ctx, logger.WithFields(logrus.Fields{
			log.FldRequest: id,
			log.FldMethod:  r.Method,
			log.FldPath:    r.URL.Path,
		}))
	}
}

// setRequestIDHeader hands the request's ID back to the client
func setRequestIDHeader(ctx context.Context, w http.ResponseWriter) context.Context {
	if id := ctxhelper.RequestID(ctx); id != "" {
		w.Header().Set(headerRequestID, id)
	}
	return ctx
}

// makeRequestLogger returns a function that logs every finished request with its response status
func makeRequestLogger(logger *logrus.Entry) httptransport.ServerFinalizerFunc {
	return func(ctx context.Context, code int, r *http.Request) {
		entry := logger.WithFields(logrus.Fields{
			log.FldRequest: ctxhelper.RequestID(ctx),
			log.FldMethod:  r.Method,
			log.FldPath:    r.URL.Path,
			log.FldStatus:  code,
		})
		if code >= http.StatusInternalServerError {
			entry.Warn("Request failed")
			return
		}
		entry.Debug("Request handled")
	}
}
