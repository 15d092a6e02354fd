package constants

type StaticFile string

const (
	AgencyFile        StaticFile = "agency.txt"
	StopsFile         StaticFile = "stops.txt"
	WaypointsFile     StaticFile = "waypoints.txt"
	TripsFile         StaticFile = "trips.txt"
	RoutesFile        StaticFile = "routes.txt"
	StopTimesFile     StaticFile = "stop_times.txt"
	ShapesFile        StaticFile = "shapes.txt"
	CalendarFile      StaticFile = "calendar.txt"
	CalendarDatesFile StaticFile = "calendar_dates.txt"
)

type ScheduleEnity string

const (
	Route    ScheduleEnity = "route"
	Trip     ScheduleEnity = "trip"
	StopTime ScheduleEnity = "stop_time"
	Shape    ScheduleEnity = "shape"
)
