package gtfsjson

import (
	"fmt"

	"github.com/gtfsjson/gtfsjson/constants"
	"github.com/gtfsjson/gtfsjson/warnings"
)

// Index holds read-only lookups over a Static feed. Every list keeps the
// source order of the underlying table and lookups on unknown keys return
// empty results.
type Index struct {
	static *Static

	stopTimesByTrip  map[string][]StopTime
	tripsByRoute     map[string][]Trip
	shapePoints      map[string][]ShapePoint
	firstStopsByStop map[string][]StopTime

	tripById        map[string]*Trip
	routeById       map[string]*Route
	waypointByRoute map[string]string
}

func NewIndex(static *Static) *Index {
	idx := &Index{
		static:           static,
		stopTimesByTrip:  map[string][]StopTime{},
		tripsByRoute:     map[string][]Trip{},
		shapePoints:      map[string][]ShapePoint{},
		firstStopsByStop: map[string][]StopTime{},
		tripById:         map[string]*Trip{},
		routeById:        map[string]*Route{},
		waypointByRoute:  map[string]string{},
	}
	for _, stopTime := range static.StopTimes {
		idx.stopTimesByTrip[stopTime.TripId] = append(idx.stopTimesByTrip[stopTime.TripId], stopTime)
		if stopTime.StopSequence == 1 {
			idx.firstStopsByStop[stopTime.StopId] = append(idx.firstStopsByStop[stopTime.StopId], stopTime)
		}
	}
	for i := range static.Trips {
		trip := &static.Trips[i]
		idx.tripsByRoute[trip.RouteId] = append(idx.tripsByRoute[trip.RouteId], *trip)
		if _, ok := idx.tripById[trip.Id]; !ok {
			idx.tripById[trip.Id] = trip
		}
	}
	for _, point := range static.Shapes {
		idx.shapePoints[point.ShapeId] = append(idx.shapePoints[point.ShapeId], point)
	}
	for i := range static.Routes {
		route := &static.Routes[i]
		if _, ok := idx.routeById[route.Id]; !ok {
			idx.routeById[route.Id] = route
		}
	}
	for _, waypoint := range static.Waypoints {
		if _, ok := idx.waypointByRoute[waypoint.RouteId]; !ok {
			idx.waypointByRoute[waypoint.RouteId] = waypoint.Name
		}
	}
	return idx
}

func (idx *Index) Static() *Static {
	return idx.static
}

func (idx *Index) StopTimesForTrip(tripId string) []StopTime {
	return idx.stopTimesByTrip[tripId]
}

func (idx *Index) TripsForRoute(routeId string) []Trip {
	return idx.tripsByRoute[routeId]
}

func (idx *Index) ShapePoints(shapeId string) []ShapePoint {
	return idx.shapePoints[shapeId]
}

// FirstStopTimesAt returns the stop times with stop sequence 1 at the stop.
func (idx *Index) FirstStopTimesAt(stopId string) []StopTime {
	return idx.firstStopsByStop[stopId]
}

// Trip returns the first trip with the ID.
func (idx *Index) Trip(tripId string) (*Trip, bool) {
	trip, ok := idx.tripById[tripId]
	return trip, ok
}

// Route returns the first route with the ID.
func (idx *Index) Route(routeId string) (*Route, bool) {
	route, ok := idx.routeById[routeId]
	return route, ok
}

// Waypoint returns the name of the first waypoint listed for the route, or
// the empty string.
func (idx *Index) Waypoint(routeId string) string {
	return idx.waypointByRoute[routeId]
}

// CheckReferences reports stop times pointing at unknown trips (once per trip,
// identified as "trip:sequence"), trips pointing at unknown routes or shapes,
// and services with more than one calendar.txt row. The document is built the same way whether or not these exist; the
// result is only meant for logging.
func (idx *Index) CheckReferences() []warnings.StaticWarning {
	var result []warnings.StaticWarning
	seen := map[string]bool{}
	for _, stopTime := range idx.static.StopTimes {
		if _, ok := idx.tripById[stopTime.TripId]; ok || seen[stopTime.TripId] {
			continue
		}
		seen[stopTime.TripId] = true
		result = append(result, warnings.DanglingReference{
			FileName: constants.StopTimesFile,
			Entity:   constants.StopTime,
			ID:       fmt.Sprintf("%s:%d", stopTime.TripId, stopTime.StopSequence),
			Target:   constants.Trip,
			TargetID: stopTime.TripId,
		})
	}
	for _, trip := range idx.static.Trips {
		if _, ok := idx.routeById[trip.RouteId]; !ok {
			result = append(result, warnings.DanglingReference{
				FileName: constants.TripsFile,
				Entity:   constants.Trip,
				ID:       trip.Id,
				Target:   constants.Route,
				TargetID: trip.RouteId,
			})
		}
		if _, ok := idx.shapePoints[trip.ShapeId]; trip.ShapeId != "" && !ok {
			result = append(result, warnings.DanglingReference{
				FileName: constants.TripsFile,
				Entity:   constants.Trip,
				ID:       trip.Id,
				Target:   constants.Shape,
				TargetID: trip.ShapeId,
			})
		}
	}
	calendars := map[string]bool{}
	for _, calendar := range idx.static.Calendars {
		if calendars[calendar.ServiceId] {
			result = append(result, warnings.DuplicateCalendar{ServiceID: calendar.ServiceId})
		}
		calendars[calendar.ServiceId] = true
	}
	return result
}
