// Package gtfsjson turns a GTFS static feed into a single JSON document describing
// each route's destinations, trips, onward connections and shape polylines.
package gtfsjson

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"strconv"
	"time"

	"github.com/gtfsjson/gtfsjson/constants"
	"github.com/gtfsjson/gtfsjson/csv"
	"github.com/gtfsjson/gtfsjson/warnings"
	"golang.org/x/exp/slices"
)

// Static contains the parsed content of a GTFS static feed.
//
// Every slice is in source order. Nothing in this package modifies a Static
// after ParseStatic returns.
type Static struct {
	Agencies      []Agency
	Stops         []Stop
	Waypoints     []Waypoint
	Routes        []Route
	Trips         []Trip
	StopTimes     []StopTime
	Shapes        []ShapePoint
	Calendars     []Calendar
	CalendarDates []CalendarDate

	// Warnings lists problems that were worked around while loading.
	Warnings []warnings.StaticWarning
}

// Agency corresponds to a single row in the agency.txt file.
type Agency struct {
	Id       string
	Name     string
	Url      string
	Timezone string
	Phone    string
	Language string
}

type Stop struct {
	Id          string
	Code        string
	Name        string
	Description string
	Latitude    float64
	Longitude   float64
}

// Waypoint is a row of the non-standard waypoints.txt file: a label shown
// alongside a route.
type Waypoint struct {
	Id      string
	RouteId string
	Name    string
}

type Route struct {
	Id          string
	AgencyId    string
	ShortName   string
	LongName    string
	Description string
	Type        RouteType
	Url         string
	Color       string
	TextColor   string
}

type Trip struct {
	RouteId   string
	ServiceId string
	Id        string
	Headsign  string
	ShapeId   string
}

// StopTime is a row of stop_times.txt. Arrival and departure times keep only
// their hour and minute components; malformed times are empty.
type StopTime struct {
	TripId        string
	ArrivalTime   string
	DepartureTime string
	StopId        string
	StopSequence  int
}

type ShapePoint struct {
	ShapeId   string
	Latitude  float64
	Longitude float64
	Sequence  int
}

// Calendar is a row of calendar.txt. Days runs Monday to Sunday and dates are
// formatted YYYY-MM-DD.
type Calendar struct {
	ServiceId string
	Days      [7]bool
	StartDate string
	EndDate   string
}

type CalendarDate struct {
	ServiceId     string
	Date          string
	ExceptionType ExceptionType
}

// ParseStatic reads the feed tables from fsys.
//
// Missing tables are treated as empty and malformed numbers and dates are read
// as zero values; both are recorded in Static.Warnings. An error is only
// returned when a table fails part way through being read.
func ParseStatic(fsys fs.FS) (*Static, error) {
	result := &Static{}
	for _, table := range []struct {
		fileName constants.StaticFile
		opts     csv.Options
		action   func(file *csv.File)
	}{
		{
			constants.AgencyFile,
			csv.Options{},
			func(file *csv.File) {
				result.Agencies = parseAgencies(file, result)
			},
		},
		{
			constants.WaypointsFile,
			csv.Options{},
			func(file *csv.File) {
				result.Waypoints = parseWaypoints(file, result)
			},
		},
		{
			constants.StopsFile,
			csv.Options{SkipComments: true},
			func(file *csv.File) {
				result.Stops = parseStops(file, result)
			},
		},
		{
			constants.StopTimesFile,
			csv.Options{SkipComments: true},
			func(file *csv.File) {
				result.StopTimes = parseStopTimes(file, result)
			},
		},
		{
			constants.CalendarFile,
			csv.Options{},
			func(file *csv.File) {
				result.Calendars = parseCalendars(file, result)
			},
		},
		{
			constants.CalendarDatesFile,
			csv.Options{},
			func(file *csv.File) {
				result.CalendarDates = parseCalendarDates(file, result)
			},
		},
		{
			constants.TripsFile,
			csv.Options{},
			func(file *csv.File) {
				result.Trips = parseTrips(file, result)
			},
		},
		{
			constants.ShapesFile,
			csv.Options{},
			func(file *csv.File) {
				result.Shapes = parseShapes(file, result)
			},
		},
		{
			constants.RoutesFile,
			csv.Options{},
			func(file *csv.File) {
				result.Routes = parseRoutes(file, result)
			},
		},
	} {
		file, warning := readCsvFile(fsys, table.fileName, table.opts)
		if warning != nil {
			result.Warnings = append(result.Warnings, warning)
			continue
		}
		table.action(file)
		if missing := file.MissingRequiredColumns(); len(missing) > 0 {
			result.Warnings = append(result.Warnings, warnings.MissingColumns{
				FileName: table.fileName,
				Columns:  missing,
			})
		}
		if err := file.Close(); err != nil {
			return nil, fmt.Errorf("failed to read %q: %w", table.fileName, err)
		}
	}
	return result, nil
}

func readCsvFile(fsys fs.FS, fileName constants.StaticFile, opts csv.Options) (*csv.File, warnings.StaticWarning) {
	content, err := fsys.Open(string(fileName))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, warnings.MissingFile{FileName: fileName}
	}
	if err != nil {
		return nil, warnings.MissingFile{FileName: fileName, Err: err}
	}
	f, err := csv.New(fileName, content, opts)
	if err != nil {
		return nil, warnings.MissingFile{FileName: fileName, Err: err}
	}
	return f, nil
}

func parseAgencies(file *csv.File, result *Static) []Agency {
	idColumn := file.OptionalColumn("agency_id")
	nameColumn := file.RequiredColumn("agency_name")
	urlColumn := file.OptionalColumn("agency_url")
	timezoneColumn := file.OptionalColumn("agency_timezone")
	phoneColumn := file.OptionalColumn("agency_phone")
	langColumn := file.OptionalColumn("agency_lang")

	var agencies []Agency
	for file.NextRow() {
		agencies = append(agencies, Agency{
			Id:       idColumn.Read(),
			Name:     nameColumn.Read(),
			Url:      urlColumn.Read(),
			Timezone: timezoneColumn.Read(),
			Phone:    phoneColumn.Read(),
			Language: langColumn.Read(),
		})
		result.checkRow(file)
	}
	return agencies
}

func parseWaypoints(file *csv.File, result *Static) []Waypoint {
	idColumn := file.OptionalColumn("waypoint_id")
	routeIdColumn := file.RequiredColumn("route_id")
	nameColumn := file.RequiredColumn("waypoint_name")

	var waypoints []Waypoint
	for file.NextRow() {
		waypoints = append(waypoints, Waypoint{
			Id:      idColumn.Read(),
			RouteId: routeIdColumn.Read(),
			Name:    nameColumn.Read(),
		})
		result.checkRow(file)
	}
	return waypoints
}

func parseStops(file *csv.File, result *Static) []Stop {
	idColumn := file.RequiredColumn("stop_id")
	codeColumn := file.OptionalColumn("stop_code")
	nameColumn := file.OptionalColumn("stop_name")
	descColumn := file.OptionalColumn("stop_desc")
	latColumn := file.RequiredColumn("stop_lat")
	lonColumn := file.RequiredColumn("stop_lon")

	var stops []Stop
	for file.NextRow() {
		stops = append(stops, Stop{
			Id:          idColumn.Read(),
			Code:        codeColumn.Read(),
			Name:        nameColumn.Read(),
			Description: descColumn.Read(),
			Latitude:    result.parseFloat64(file, "stop_lat", latColumn.Read()),
			Longitude:   result.parseFloat64(file, "stop_lon", lonColumn.Read()),
		})
		result.checkRow(file)
	}
	return stops
}

func parseStopTimes(file *csv.File, result *Static) []StopTime {
	tripIdColumn := file.RequiredColumn("trip_id")
	arrivalColumn := file.RequiredColumn("arrival_time")
	departureColumn := file.OptionalColumn("departure_time")
	stopIdColumn := file.RequiredColumn("stop_id")
	sequenceColumn := file.RequiredColumn("stop_sequence")

	var stopTimes []StopTime
	for file.NextRow() {
		stopTimes = append(stopTimes, StopTime{
			TripId:        tripIdColumn.Read(),
			ArrivalTime:   result.parseTime(file, "arrival_time", arrivalColumn.Read()),
			DepartureTime: result.parseTime(file, "departure_time", departureColumn.Read()),
			StopId:        stopIdColumn.Read(),
			StopSequence:  result.parseInt(file, "stop_sequence", sequenceColumn.Read()),
		})
		result.checkRow(file)
	}
	return stopTimes
}

var weekdayColumns = [7]string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

func parseCalendars(file *csv.File, result *Static) []Calendar {
	serviceIdColumn := file.RequiredColumn("service_id")
	var dayColumns [7]csv.RequiredColumn
	for i, name := range weekdayColumns {
		dayColumns[i] = file.RequiredColumn(name)
	}
	startDateColumn := file.RequiredColumn("start_date")
	endDateColumn := file.RequiredColumn("end_date")

	var calendars []Calendar
	for file.NextRow() {
		calendar := Calendar{
			ServiceId: serviceIdColumn.Read(),
			StartDate: result.parseDate(file, "start_date", startDateColumn.Read()),
			EndDate:   result.parseDate(file, "end_date", endDateColumn.Read()),
		}
		for i := range dayColumns {
			calendar.Days[i] = dayColumns[i].Read() == "1"
		}
		calendars = append(calendars, calendar)
		result.checkRow(file)
	}
	return calendars
}

func parseCalendarDates(file *csv.File, result *Static) []CalendarDate {
	serviceIdColumn := file.RequiredColumn("service_id")
	dateColumn := file.RequiredColumn("date")
	exceptionTypeColumn := file.RequiredColumn("exception_type")

	var calendarDates []CalendarDate
	for file.NextRow() {
		calendarDates = append(calendarDates, CalendarDate{
			ServiceId:     serviceIdColumn.Read(),
			Date:          result.parseDate(file, "date", dateColumn.Read()),
			ExceptionType: parseExceptionType(result.parseInt(file, "exception_type", exceptionTypeColumn.Read())),
		})
		result.checkRow(file)
	}
	return calendarDates
}

func parseTrips(file *csv.File, result *Static) []Trip {
	routeIdColumn := file.RequiredColumn("route_id")
	serviceIdColumn := file.RequiredColumn("service_id")
	tripIdColumn := file.RequiredColumn("trip_id")
	headsignColumn := file.OptionalColumn("trip_headsign")
	shapeIdColumn := file.OptionalColumn("shape_id")

	var trips []Trip
	for file.NextRow() {
		trips = append(trips, Trip{
			RouteId:   routeIdColumn.Read(),
			ServiceId: serviceIdColumn.Read(),
			Id:        tripIdColumn.Read(),
			Headsign:  headsignColumn.Read(),
			ShapeId:   shapeIdColumn.Read(),
		})
		result.checkRow(file)
	}
	return trips
}

func parseShapes(file *csv.File, result *Static) []ShapePoint {
	idColumn := file.RequiredColumn("shape_id")
	latColumn := file.RequiredColumn("shape_pt_lat")
	lonColumn := file.RequiredColumn("shape_pt_lon")
	sequenceColumn := file.OptionalColumn("shape_pt_sequence")

	var points []ShapePoint
	for file.NextRow() {
		points = append(points, ShapePoint{
			ShapeId:   idColumn.Read(),
			Latitude:  result.parseFloat64(file, "shape_pt_lat", latColumn.Read()),
			Longitude: result.parseFloat64(file, "shape_pt_lon", lonColumn.Read()),
			Sequence:  result.parseInt(file, "shape_pt_sequence", sequenceColumn.Read()),
		})
		result.checkRow(file)
	}
	return points
}

func parseRoutes(file *csv.File, result *Static) []Route {
	idColumn := file.RequiredColumn("route_id")
	agencyIdColumn := file.OptionalColumn("agency_id")
	shortNameColumn := file.OptionalColumn("route_short_name")
	longNameColumn := file.OptionalColumn("route_long_name")
	descriptionColumn := file.OptionalColumn("route_desc")
	typeColumn := file.OptionalColumn("route_type")
	urlColumn := file.OptionalColumn("route_url")
	colorColumn := file.OptionalColumn("route_color")
	textColorColumn := file.OptionalColumn("route_text_color")

	var routes []Route
	for file.NextRow() {
		routes = append(routes, Route{
			Id:          idColumn.Read(),
			AgencyId:    agencyIdColumn.Read(),
			ShortName:   shortNameColumn.Read(),
			LongName:    longNameColumn.Read(),
			Description: descriptionColumn.Read(),
			Type:        parseRouteType(typeColumn.Read()),
			Url:         urlColumn.Read(),
			Color:       colorColumn.Read(),
			TextColor:   textColorColumn.Read(),
		})
		result.checkRow(file)
	}
	return routes
}

func (s *Static) malformed(file *csv.File, column, raw string) {
	s.Warnings = append(s.Warnings, warnings.MalformedField{
		FileName: file.Name(),
		Row:      file.RowNumber(),
		Column:   column,
		Value:    raw,
	})
}

func (s *Static) parseFloat64(file *csv.File, column, raw string) float64 {
	if raw == "" {
		return 0
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		s.malformed(file, column, raw)
		return 0
	}
	return f
}

func (s *Static) parseInt(file *csv.File, column, raw string) int {
	if raw == "" {
		return 0
	}
	i, err := strconv.Atoi(raw)
	if err != nil {
		s.malformed(file, column, raw)
		return 0
	}
	return i
}

// parseTime keeps the hour and minute parts of a stop_times.txt time.
func (s *Static) parseTime(file *csv.File, column, raw string) string {
	if raw == "" {
		return ""
	}
	t := truncateTime(raw)
	if _, ok := ParseTimeOfDay(t); !ok {
		s.malformed(file, column, raw)
		return ""
	}
	return t
}

// checkRow records the required cells of the current row that were empty.
func (s *Static) checkRow(file *csv.File) {
	missing := file.MissingRowKeys()
	if len(missing) == 0 {
		return
	}
	s.Warnings = append(s.Warnings, warnings.MissingValues{
		FileName: file.Name(),
		Row:      file.RowNumber(),
		Columns:  slices.Clone(missing),
		Content:  slices.Clone(file.RowContent()),
	})
}

// parseDate converts a YYYYMMDD date to YYYY-MM-DD.
func (s *Static) parseDate(file *csv.File, column, raw string) string {
	if raw == "" {
		return ""
	}
	t, err := time.Parse("20060102", raw)
	if err != nil {
		s.malformed(file, column, raw)
		return ""
	}
	return t.Format("2006-01-02")
}
