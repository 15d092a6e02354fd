package gtfsjson

import (
	"golang.org/x/exp/slices"
)

// LoopDestination names the single vector of a route whose trips have no headsigns.
const LoopDestination = "Loop"

// Vector is the group of a route's trips heading to one destination.
type Vector struct {
	Destination string
	Trips       []Trip
	// ShapeId is the shape of the first trip of the group before sorting.
	ShapeId string
}

// GroupTrips splits the trips of a route into one vector per distinct
// non-empty headsign, in order of first appearance. If none of the trips has a
// headsign the route gets a single LoopDestination vector holding every trip.
// A route without trips gets no vectors.
//
// Each vector is ordered by the arrival time of its trips' first stop times.
// Trips without stop times have no start time: they stay where they are and
// the other trips are sorted around them.
func GroupTrips(idx *Index, routeId string) []Vector {
	trips := idx.TripsForRoute(routeId)
	if len(trips) == 0 {
		return nil
	}
	var destinations []string
	seen := map[string]bool{}
	for _, trip := range trips {
		if trip.Headsign == "" || seen[trip.Headsign] {
			continue
		}
		seen[trip.Headsign] = true
		destinations = append(destinations, trip.Headsign)
	}

	if len(destinations) == 0 {
		return []Vector{newVector(idx, LoopDestination, slices.Clone(trips))}
	}
	vectors := make([]Vector, 0, len(destinations))
	for _, destination := range destinations {
		var matching []Trip
		for _, trip := range trips {
			if trip.Headsign == destination {
				matching = append(matching, trip)
			}
		}
		vectors = append(vectors, newVector(idx, destination, matching))
	}
	return vectors
}

func newVector(idx *Index, destination string, trips []Trip) Vector {
	v := Vector{
		Destination: destination,
		Trips:       trips,
	}
	if len(trips) > 0 {
		v.ShapeId = trips[0].ShapeId
	}
	sortByStartTime(idx, v.Trips)
	return v
}

// sortByStartTime stably sorts the trips that have a start time and writes them
// back into the positions those trips held, leaving the others in place.
func sortByStartTime(idx *Index, trips []Trip) {
	type timedTrip struct {
		trip  Trip
		start TimeOfDay
	}
	var positions []int
	var timed []timedTrip
	for i, trip := range trips {
		start, ok := StartTime(idx, trip.Id)
		if !ok {
			continue
		}
		positions = append(positions, i)
		timed = append(timed, timedTrip{trip: trip, start: start})
	}
	slices.SortStableFunc(timed, func(a, b timedTrip) int {
		return a.start.Minutes() - b.start.Minutes()
	})
	for i, position := range positions {
		trips[position] = timed[i].trip
	}
}

// StartTime returns the arrival time of the trip's first stop time in source
// order. It returns false if the trip has no stop times.
func StartTime(idx *Index, tripId string) (TimeOfDay, bool) {
	stopTimes := idx.StopTimesForTrip(tripId)
	if len(stopTimes) == 0 {
		return TimeOfDay{}, false
	}
	t, _ := ParseTimeOfDay(stopTimes[0].ArrivalTime)
	return t, true
}
