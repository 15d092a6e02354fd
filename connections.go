package gtfsjson

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// MaxConnectionWait is the longest wait, in minutes, between arriving at a
// terminal and the departure of a connecting trip.
const MaxConnectionWait = 60

type ConnectionOptions struct {
	// Enabled turns connection inference on. When false ResolveConnections
	// always returns nothing.
	Enabled bool
}

// Connection is a trip on another route that starts at the stop where a trip
// ends, shortly after it arrives.
type Connection struct {
	RouteId   string
	Headsign  string
	TripId    string
	Time      TimeOfDay
	ShortName string
}

// ResolveConnections finds the onward connections available at the trip's
// terminal stop.
//
// The terminal stop is the trip's last stop time in source order, not the one
// with the highest stop sequence. A candidate is any other trip whose stop time
// with sequence 1 is at the terminal stop; its arrival time there is taken as
// its departure. Candidates qualify when they depart strictly after the
// terminal arrival and at most MaxConnectionWait minutes later, comparing
// minutes of the day without wrapping past midnight. Candidates on the same
// route and candidates whose trip is not in trips.txt are skipped.
//
// At most one connection is returned per route: the earliest, with ties going
// to the first candidate seen. Connections are sorted by route ID.
func ResolveConnections(idx *Index, trip Trip, opts ConnectionOptions) []Connection {
	if !opts.Enabled {
		return nil
	}
	stopTimes := idx.StopTimesForTrip(trip.Id)
	if len(stopTimes) == 0 {
		return nil
	}
	terminal := stopTimes[len(stopTimes)-1]
	arrival, _ := ParseTimeOfDay(terminal.ArrivalTime)

	type candidate struct {
		trip *Trip
		time TimeOfDay
	}
	earliest := map[string]candidate{}
	for _, stopTime := range idx.FirstStopTimesAt(terminal.StopId) {
		if stopTime.TripId == trip.Id {
			continue
		}
		departure, _ := ParseTimeOfDay(stopTime.ArrivalTime)
		wait := departure.Minutes() - arrival.Minutes()
		if wait <= 0 || wait > MaxConnectionWait {
			continue
		}
		connecting, ok := idx.Trip(stopTime.TripId)
		if !ok || connecting.RouteId == trip.RouteId {
			continue
		}
		if current, ok := earliest[connecting.RouteId]; ok && !departure.Before(current.time) {
			continue
		}
		earliest[connecting.RouteId] = candidate{trip: connecting, time: departure}
	}

	routeIds := maps.Keys(earliest)
	slices.Sort(routeIds)
	connections := make([]Connection, 0, len(routeIds))
	for _, routeId := range routeIds {
		c := earliest[routeId]
		var shortName string
		if route, ok := idx.Route(routeId); ok {
			shortName = route.ShortName
		}
		connections = append(connections, Connection{
			RouteId:   routeId,
			Headsign:  c.trip.Headsign,
			TripId:    c.trip.Id,
			Time:      c.time,
			ShortName: shortName,
		})
	}
	return connections
}
