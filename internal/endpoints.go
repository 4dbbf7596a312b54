package internal

import (
	"fmt"

	"github.com/go-kit/kit/endpoint"
	"golang.org/x/net/context"

	"github.com/derWhity/gigboard/internal/models"
)

// VenueEndpoints is a collection of endpoints to the venue service
type VenueEndpoints struct {
	ListByLocation endpoint.Endpoint
	Search         endpoint.Endpoint
	Get            endpoint.Endpoint
	Create         endpoint.Endpoint
	Update         endpoint.Endpoint
	Delete         endpoint.Endpoint
}

// ArtistEndpoints is a collection of endpoints to the artist service
type ArtistEndpoints struct {
	List   endpoint.Endpoint
	Search endpoint.Endpoint
	Get    endpoint.Endpoint
	Create endpoint.Endpoint
	Update endpoint.Endpoint
}

// ShowEndpoints is a collection of endpoints to the show service
type ShowEndpoints struct {
	List   endpoint.Endpoint
	Create endpoint.Endpoint
}

// The base for all responses which always contains an "ok" property to show if the call was successful and a
// data element containing the result of the request
type basicResponse struct {
	OK   bool        `json:"ok"`
	Data interface{} `json:"data,omitempty"`
}

// The result of a search together with the number of matches
type searchResponse struct {
	Count      uint        `json:"count"`
	SearchTerm string      `json:"search_term"`
	Data       interface{} `json:"data"`
}

// A request to overwrite the fields of a venue
type venueUpdateRequest struct {
	ID     uint
	Fields models.VenueFields
}

// A request to overwrite the fields of an artist
type artistUpdateRequest struct {
	ID     uint
	Fields models.ArtistFields
}

// -- Venues -----------------------------------------------------------------------------------------------------------

// MakeVenueEndpoints builds the endpoints needed to communicate with the venue service
func MakeVenueEndpoints(s VenueService) VenueEndpoints {
	return VenueEndpoints{
		ListByLocation: LogCalls("venues.listByLocation")(makeListVenuesByLocationEndpoint(s)),
		Search:         LogCalls("venues.search")(makeSearchVenuesEndpoint(s)),
		Get:            LogCalls("venues.get")(makeGetVenueEndpoint(s)),
		Create:         LogCalls("venues.create")(makeCreateVenueEndpoint(s)),
		Update:         LogCalls("venues.update")(makeUpdateVenueEndpoint(s)),
		Delete:         LogCalls("venues.delete")(makeDeleteVenueEndpoint(s)),
	}
}

func makeListVenuesByLocationEndpoint(s VenueService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		areas, err := s.ListByLocation(ctx)
		if err != nil {
			return nil, err
		}
		return basicResponse{true, areas}, nil
	}
}

func makeSearchVenuesEndpoint(s VenueService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		se, ok := request.(Search)
		if !ok {
			return nil, fmt.Errorf("illegal search parameter")
		}
		list, count, err := s.Search(ctx, &se)
		if err != nil {
			return nil, err
		}
		return basicResponse{true, searchResponse{count, se.Search, list}}, nil
	}
}

func makeGetVenueEndpoint(s VenueService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		id, ok := request.(uint)
		if !ok {
			return nil, fmt.Errorf("illegal venue ID")
		}
		v, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		return basicResponse{true, v}, nil
	}
}

func makeCreateVenueEndpoint(s VenueService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		fields, ok := request.(models.VenueFields)
		if !ok {
			return nil, fmt.Errorf("illegal venue parameter")
		}
		v, err := s.Create(ctx, fields)
		if err != nil {
			return nil, err
		}
		return basicResponse{true, v}, nil
	}
}

func makeUpdateVenueEndpoint(s VenueService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req, ok := request.(venueUpdateRequest)
		if !ok {
			return nil, fmt.Errorf("illegal venue update request")
		}
		v, err := s.Update(ctx, req.ID, req.Fields)
		if err != nil {
			return nil, err
		}
		return basicResponse{true, v}, nil
	}
}

func makeDeleteVenueEndpoint(s VenueService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		id, ok := request.(uint)
		if !ok {
			return nil, fmt.Errorf("illegal venue ID")
		}
		if err := s.Delete(ctx, id); err != nil {
			return nil, err
		}
		return basicResponse{true, nil}, nil
	}
}

// -- Artists ----------------------------------------------------------------------------------------------------------

// MakeArtistEndpoints builds the endpoints needed to communicate with the artist service
func MakeArtistEndpoints(s ArtistService) ArtistEndpoints {
	return ArtistEndpoints{
		List:   LogCalls("artists.list")(makeListArtistsEndpoint(s)),
		Search: LogCalls("artists.search")(makeSearchArtistsEndpoint(s)),
		Get:    LogCalls("artists.get")(makeGetArtistEndpoint(s)),
		Create: LogCalls("artists.create")(makeCreateArtistEndpoint(s)),
		Update: LogCalls("artists.update")(makeUpdateArtistEndpoint(s)),
	}
}

func makeListArtistsEndpoint(s ArtistService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		list, err := s.List(ctx)
		if err != nil {
			return nil, err
		}
		return basicResponse{true, list}, nil
	}
}

func makeSearchArtistsEndpoint(s ArtistService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		se, ok := request.(Search)
		if !ok {
			return nil, fmt.Errorf("illegal search parameter")
		}
		list, count, err := s.Search(ctx, &se)
		if err != nil {
			return nil, err
		}
		return basicResponse{true, searchResponse{count, se.Search, list}}, nil
	}
}

func makeGetArtistEndpoint(s ArtistService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		id, ok := request.(uint)
		if !ok {
			return nil, fmt.Errorf("illegal artist ID")
		}
		a, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		return basicResponse{true, a}, nil
	}
}

func makeCreateArtistEndpoint(s ArtistService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		fields, ok := request.(models.ArtistFields)
		if !ok {
			return nil, fmt.Errorf("illegal artist parameter")
		}
		a, err := s.Create(ctx, fields)
		if err != nil {
			return nil, err
		}
		return basicResponse{true, a}, nil
	}
}

func makeUpdateArtistEndpoint(s ArtistService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req, ok := request.(artistUpdateRequest)
		if !ok {
			return nil, fmt.Errorf("illegal artist update request")
		}
		a, err := s.Update(ctx, req.ID, req.Fields)
		if err != nil {
			return nil, err
		}
		return basicResponse{true, a}, nil
	}
}

// -- Shows ------------------------------------------------------------------------------------------------------------

// MakeShowEndpoints builds the endpoints needed to communicate with the show service
func MakeShowEndpoints(s ShowService) ShowEndpoints {
	return ShowEndpoints{
		List:   LogCalls("shows.list")(makeListShowsEndpoint(s)),
		Create: LogCalls("shows.create")(makeCreateShowEndpoint(s)),
	}
}

func makeListShowsEndpoint(s ShowService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		list, err := s.List(ctx)
		if err != nil {
			return nil, err
		}
		return basicResponse{true, list}, nil
	}
}

func makeCreateShowEndpoint(s ShowService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		show, ok := request.(models.Show)
		if !ok {
			return nil, fmt.Errorf("illegal show parameter")
		}
		created, err := s.Create(ctx, show)
		if err != nil {
			return nil, err
		}
		return basicResponse{true, created}, nil
	}
}
