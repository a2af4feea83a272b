package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	kitlog "github.com/go-kit/kit/log"
	"github.com/go-kit/kit/transport"
	kithttp "github.com/go-kit/kit/transport/http"

	"github.com/soundline/ferryops/ferry"
	"github.com/soundline/ferryops/harbour"
	"github.com/soundline/ferryops/postgres"
	"github.com/soundline/ferryops/route"
	"github.com/soundline/ferryops/traveler"
)

// MakeHandler returns a new handler for the catalog service
func MakeHandler(set Set, logger kitlog.Logger) http.Handler {
	r := mux.NewRouter()

	opts := []kithttp.ServerOption{
		kithttp.ServerErrorHandler(transport.NewLogErrorHandler(logger)),
		kithttp.ServerErrorEncoder(encodeError),
	}

	addFerryHandler := kithttp.NewServer(set.AddFerryEndpoint, decodeAddFerryRequest, encodeResponse, opts...)
	findFerryHandler := kithttp.NewServer(set.FindFerryEndpoint, decodeFindFerryRequest, encodeResponse, opts...)
	listFerriesHandler := kithttp.NewServer(set.ListFerriesEndpoint, decodeListFerriesRequest, encodeResponse, opts...)
	deleteFerryHandler := kithttp.NewServer(set.DeleteFerryEndpoint, decodeDeleteFerryRequest, encodeResponse, opts...)
	updateCapacityHandler := kithttp.NewServer(set.UpdateCapacityEndpoint, decodeUpdateCapacityRequest, encodeResponse, opts...)
	addRouteHandler := kithttp.NewServer(set.AddRouteEndpoint, decodeAddRouteRequest, encodeResponse, opts...)
	listRoutesHandler := kithttp.NewServer(set.ListRoutesEndpoint, decodeListRoutesRequest, encodeResponse, opts...)
	deleteRouteHandler := kithttp.NewServer(set.DeleteRouteEndpoint, decodeDeleteRouteRequest, encodeResponse, opts...)
	updatePriceHandler := kithttp.NewServer(set.UpdatePriceEndpoint, decodeUpdatePriceRequest, encodeResponse, opts...)
	listHarboursHandler := kithttp.NewServer(set.ListHarboursEndpoint, decodeListHarboursRequest, encodeResponse, opts...)
	addTravelerHandler := kithttp.NewServer(set.AddTravelerEndpoint, decodeAddTravelerRequest, encodeResponse, opts...)
	updateTravelerHandler := kithttp.NewServer(set.UpdateTravelerEndpoint, decodeUpdateTravelerRequest, encodeResponse, opts...)
	deleteTravelerHandler := kithttp.NewServer(set.DeleteTravelerEndpoint, decodeDeleteTravelerRequest, encodeResponse, opts...)
	listTravelersHandler := kithttp.NewServer(set.ListTravelersEndpoint, decodeListTravelersRequest, encodeResponse, opts...)

	r.Handle("/catalog/v1/ferries", addFerryHandler).Methods("POST")
	r.Handle("/catalog/v1/ferries", listFerriesHandler).Methods("GET")
	r.Handle("/catalog/v1/ferries/{id}", findFerryHandler).Methods("GET")
	r.Handle("/catalog/v1/ferries/{id}", deleteFerryHandler).Methods("DELETE")
	r.Handle("/catalog/v1/ferries/{id}/capacity", updateCapacityHandler).Methods("PUT")
	r.Handle("/catalog/v1/routes", addRouteHandler).Methods("POST")
	r.Handle("/catalog/v1/routes", listRoutesHandler).Methods("GET")
	r.Handle("/catalog/v1/routes/{id}", deleteRouteHandler).Methods("DELETE")
	r.Handle("/catalog/v1/routes/{id}/price", updatePriceHandler).Methods("PUT")
	r.Handle("/catalog/v1/harbours", listHarboursHandler).Methods("GET")
	r.Handle("/catalog/v1/travelers", addTravelerHandler).Methods("POST")
	r.Handle("/catalog/v1/travelers", listTravelersHandler).Methods("GET")
	r.Handle("/catalog/v1/travelers/{id}", updateTravelerHandler).Methods("PUT")
	r.Handle("/catalog/v1/travelers/{id}", deleteTravelerHandler).Methods("DELETE")

	return r
}

var errBadRoute = errors.New("bad route")

func decodeAddFerryRequest(_ context.Context, r *http.Request) (interface{}, error) {
	var body struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Capacity int    `json:"capacity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, err
	}
	return addFerryRequest{ID: ferry.ID(body.ID), Name: body.Name, Capacity: body.Capacity}, nil
}

func decodeFindFerryRequest(_ context.Context, r *http.Request) (interface{}, error) {
	id, ok := mux.Vars(r)["id"]
	if !ok {
		return nil, errBadRoute
	}
	return findFerryRequest{ID: ferry.ID(id)}, nil
}

func decodeListFerriesRequest(_ context.Context, r *http.Request) (interface{}, error) {
	return listFerriesRequest{}, nil
}

func decodeDeleteFerryRequest(_ context.Context, r *http.Request) (interface{}, error) {
	id, ok := mux.Vars(r)["id"]
	if !ok {
		return nil, errBadRoute
	}
	return deleteFerryRequest{ID: ferry.ID(id)}, nil
}

func decodeUpdateCapacityRequest(_ context.Context, r *http.Request) (interface{}, error) {
	id, ok := mux.Vars(r)["id"]
	if !ok {
		return nil, errBadRoute
	}
	var body struct {
		Capacity int `json:"capacity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, err
	}
	return updateCapacityRequest{ID: ferry.ID(id), Capacity: body.Capacity}, nil
}

func decodeAddRouteRequest(_ context.Context, r *http.Request) (interface{}, error) {
	var body struct {
		ID          string  `json:"id"`
		Origin      string  `json:"origin"`
		Destination string  `json:"destination"`
		BasePrice   float64 `json:"base_price"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, err
	}
	return addRouteRequest{
		ID:          route.ID(body.ID),
		Origin:      harbour.Code(body.Origin),
		Destination: harbour.Code(body.Destination),
		BasePrice:   body.BasePrice,
	}, nil
}

func decodeListRoutesRequest(_ context.Context, r *http.Request) (interface{}, error) {
	return listRoutesRequest{}, nil
}

func decodeDeleteRouteRequest(_ context.Context, r *http.Request) (interface{}, error) {
	id, ok := mux.Vars(r)["id"]
	if !ok {
		return nil, errBadRoute
	}
	return deleteRouteRequest{ID: route.ID(id)}, nil
}

func decodeUpdatePriceRequest(_ context.Context, r *http.Request) (interface{}, error) {
	id, ok := mux.Vars(r)["id"]
	if !ok {
		return nil, errBadRoute
	}
	var body struct {
		Price float64 `json:"price"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, err
	}
	return updatePriceRequest{ID: route.ID(id), Price: body.Price}, nil
}

func decodeListHarboursRequest(_ context.Context, r *http.Request) (interface{}, error) {
	return listHarboursRequest{}, nil
}

func decodeAddTravelerRequest(_ context.Context, r *http.Request) (interface{}, error) {
	var body struct {
		ID          string `json:"id"`
		Kind        string `json:"kind"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, err
	}
	return addTravelerRequest{ID: traveler.ID(body.ID), Kind: stringToKind(body.Kind), Description: body.Description}, nil
}

func decodeUpdateTravelerRequest(_ context.Context, r *http.Request) (interface{}, error) {
	id, ok := mux.Vars(r)["id"]
	if !ok {
		return nil, errBadRoute
	}
	var body struct {
		Kind        string `json:"kind"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, err
	}
	return updateTravelerRequest{ID: traveler.ID(id), Kind: stringToKind(body.Kind), Description: body.Description}, nil
}

func decodeDeleteTravelerRequest(_ context.Context, r *http.Request) (interface{}, error) {
	id, ok := mux.Vars(r)["id"]
	if !ok {
		return nil, errBadRoute
	}
	return deleteTravelerRequest{ID: traveler.ID(id)}, nil
}

func decodeListTravelersRequest(_ context.Context, r *http.Request) (interface{}, error) {
	return listTravelersRequest{}, nil
}

func stringToKind(s string) traveler.Kind {
	kinds := map[string]traveler.Kind{
		traveler.Passenger.String(): traveler.Passenger,
		traveler.Vehicle.String():   traveler.Vehicle,
	}
	return kinds[s]
}

func encodeResponse(ctx context.Context, w http.ResponseWriter, response interface{}) error {
	if e, ok := response.(errorer); ok && e.error() != nil {
		encodeError(ctx, e.error(), w)
		return nil
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	return json.NewEncoder(w).Encode(response)
}

type errorer interface {
	error() error
}

// encode errors from business-logic
func encodeError(_ context.Context, err error, w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	switch {
	case errors.Is(err, ferry.ErrUnknown), errors.Is(err, harbour.ErrUnknown),
		errors.Is(err, route.ErrUnknown), errors.Is(err, traveler.ErrUnknown):
		w.WriteHeader(http.StatusNotFound)
	case errors.Is(err, ErrInvalidArgument), errors.Is(err, route.ErrSameHarbour),
		errors.Is(err, route.ErrNegativePrice):
		w.WriteHeader(http.StatusBadRequest)
	case errors.Is(err, ErrDuplicate), errors.Is(err, ErrFerryInUse),
		errors.Is(err, ErrRouteInUse), errors.Is(err, ErrTravelerInUse),
		errors.Is(err, ErrCapacityBelowBooked):
		w.WriteHeader(http.StatusConflict)
	case errors.Is(err, postgres.ErrUnavailable):
		w.WriteHeader(http.StatusServiceUnavailable)
	default:
		w.WriteHeader(http.StatusInternalServerError)
	}
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": err.Error(),
	})
}
