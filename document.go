package gtfsjson

import (
	"encoding/json"
	"io"

	"github.com/gtfsjson/gtfsjson/polyline"
)

// Document is the JSON output. The field order of each node type is the key
// order of the serialized object, and slices are never nil so that empty
// lists serialize as [].
type Document struct {
	Agencies  []AgencyNode   `json:"agencies"`
	Routes    []RouteNode    `json:"routes"`
	Stops     []StopNode     `json:"stops"`
	Calendars []CalendarNode `json:"calendars"`
}

type AgencyNode struct {
	Id       string `json:"id"`
	Name     string `json:"name"`
	Url      string `json:"url"`
	Timezone string `json:"timezone"`
	Phone    string `json:"phone"`
	Lang     string `json:"lang"`
}

type RouteNode struct {
	Id        string       `json:"id"`
	Agency    string       `json:"agency"`
	ShortName string       `json:"shortName"`
	LongName  string       `json:"longName"`
	ColorCode string       `json:"colorCode"`
	Waypoint  string       `json:"waypoint"`
	Vectors   []VectorNode `json:"vectors"`
}

type VectorNode struct {
	Destination string     `json:"destination"`
	Trips       []TripNode `json:"trips"`
	// Polyline is nil when the vector has no trips.
	Polyline *string `json:"polyline,omitempty"`
}

type TripNode struct {
	TripId      string           `json:"tripId"`
	CalId       string           `json:"calId"`
	Stops       []StopTimeNode   `json:"stops"`
	Connections []ConnectionNode `json:"connections"`
}

type StopTimeNode struct {
	Id   string `json:"id"`
	Time string `json:"time"`
	Seq  int    `json:"seq"`
}

type ConnectionNode struct {
	RouteId   string `json:"routeId"`
	Headsign  string `json:"headsign"`
	TripId    string `json:"tripId"`
	ShortName string `json:"shortName"`
	Time      string `json:"time"`
}

type StopNode struct {
	Id   string  `json:"id"`
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

type CalendarNode struct {
	ServiceId        string   `json:"serviceId"`
	Days             [7]int   `json:"days"`
	StartDate        string   `json:"startDate"`
	EndDate          string   `json:"endDate"`
	AddExceptions    []string `json:"addExceptions"`
	RemoveExceptions []string `json:"removeExceptions"`
}

type BuildOptions struct {
	Connections ConnectionOptions
}

// BuildDocument assembles the document for the indexed feed.
//
// Routes without trips are left out. Calendars are limited to the service IDs
// used by at least one trip.
func BuildDocument(idx *Index, opts BuildOptions) *Document {
	static := idx.Static()
	doc := &Document{
		Agencies:  make([]AgencyNode, 0, len(static.Agencies)),
		Routes:    make([]RouteNode, 0, len(static.Routes)),
		Stops:     make([]StopNode, 0, len(static.Stops)),
		Calendars: []CalendarNode{},
	}
	for _, agency := range static.Agencies {
		doc.Agencies = append(doc.Agencies, AgencyNode{
			Id:       agency.Id,
			Name:     agency.Name,
			Url:      agency.Url,
			Timezone: agency.Timezone,
			Phone:    agency.Phone,
			Lang:     agency.Language,
		})
	}
	for _, route := range static.Routes {
		if node, ok := buildRoute(idx, route, opts); ok {
			doc.Routes = append(doc.Routes, node)
		}
	}
	for _, stop := range static.Stops {
		doc.Stops = append(doc.Stops, StopNode{
			Id:   stop.Id,
			Name: stop.Name,
			Lat:  stop.Latitude,
			Lng:  stop.Longitude,
		})
	}
	doc.Calendars = buildCalendars(static)
	return doc
}

func buildRoute(idx *Index, route Route, opts BuildOptions) (RouteNode, bool) {
	vectors := GroupTrips(idx, route.Id)
	if len(vectors) == 0 {
		return RouteNode{}, false
	}
	node := RouteNode{
		Id:        route.Id,
		Agency:    route.AgencyId,
		ShortName: route.ShortName,
		LongName:  route.LongName,
		ColorCode: route.Color,
		Waypoint:  idx.Waypoint(route.Id),
		Vectors:   make([]VectorNode, 0, len(vectors)),
	}
	for _, vector := range vectors {
		vectorNode := VectorNode{
			Destination: vector.Destination,
			Trips:       make([]TripNode, 0, len(vector.Trips)),
		}
		for _, trip := range vector.Trips {
			vectorNode.Trips = append(vectorNode.Trips, buildTrip(idx, trip, opts))
		}
		if len(vector.Trips) > 0 {
			encoded := EncodeShape(idx.ShapePoints(vector.ShapeId))
			vectorNode.Polyline = &encoded
		}
		node.Vectors = append(node.Vectors, vectorNode)
	}
	return node, true
}

func buildTrip(idx *Index, trip Trip, opts BuildOptions) TripNode {
	stopTimes := idx.StopTimesForTrip(trip.Id)
	node := TripNode{
		TripId:      trip.Id,
		CalId:       trip.ServiceId,
		Stops:       make([]StopTimeNode, 0, len(stopTimes)),
		Connections: []ConnectionNode{},
	}
	for _, stopTime := range stopTimes {
		node.Stops = append(node.Stops, StopTimeNode{
			Id:   stopTime.StopId,
			Time: stopTime.ArrivalTime,
			Seq:  stopTime.StopSequence,
		})
	}
	for _, connection := range ResolveConnections(idx, trip, opts.Connections) {
		node.Connections = append(node.Connections, ConnectionNode{
			RouteId:   connection.RouteId,
			Headsign:  connection.Headsign,
			TripId:    connection.TripId,
			ShortName: connection.ShortName,
			Time:      connection.Time.String(),
		})
	}
	return node
}

// buildCalendars returns the calendar.txt rows of the services referenced by
// trips, in calendar.txt order, followed by referenced services that only
// appear in calendar_dates.txt (or nowhere), in trips.txt order. Only the first
// calendar.txt row of a service is used.
func buildCalendars(static *Static) []CalendarNode {
	var referenced []string
	isReferenced := map[string]bool{}
	for _, trip := range static.Trips {
		if !isReferenced[trip.ServiceId] {
			isReferenced[trip.ServiceId] = true
			referenced = append(referenced, trip.ServiceId)
		}
	}
	added := map[string][]string{}
	removed := map[string][]string{}
	for _, calendarDate := range static.CalendarDates {
		switch calendarDate.ExceptionType {
		case ExceptionType_Added:
			added[calendarDate.ServiceId] = append(added[calendarDate.ServiceId], calendarDate.Date)
		case ExceptionType_Removed:
			removed[calendarDate.ServiceId] = append(removed[calendarDate.ServiceId], calendarDate.Date)
		}
	}
	newNode := func(serviceId string) CalendarNode {
		return CalendarNode{
			ServiceId:        serviceId,
			AddExceptions:    append([]string{}, added[serviceId]...),
			RemoveExceptions: append([]string{}, removed[serviceId]...),
		}
	}

	nodes := []CalendarNode{}
	emitted := map[string]bool{}
	for _, calendar := range static.Calendars {
		if !isReferenced[calendar.ServiceId] || emitted[calendar.ServiceId] {
			continue
		}
		emitted[calendar.ServiceId] = true
		node := newNode(calendar.ServiceId)
		for i, runs := range calendar.Days {
			if runs {
				node.Days[i] = 1
			}
		}
		node.StartDate = calendar.StartDate
		node.EndDate = calendar.EndDate
		nodes = append(nodes, node)
	}
	for _, serviceId := range referenced {
		if !emitted[serviceId] {
			nodes = append(nodes, newNode(serviceId))
		}
	}
	return nodes
}

// EncodeShape encodes the shape points, in the order given, as a polyline.
func EncodeShape(points []ShapePoint) string {
	coords := make([]polyline.Point, 0, len(points))
	for _, p := range points {
		coords = append(coords, polyline.Point{Latitude: p.Latitude, Longitude: p.Longitude})
	}
	return polyline.Encode(coords)
}

// Encode writes the document as tab-indented JSON. Strings are escaped as JSON
// requires, which doubles any backslash in a polyline, and HTML characters are
// left as is.
func (d *Document) Encode(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "\t")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(d)
}
