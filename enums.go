package gtfsjson

// RouteType describes the type of a route.
//
// This is a Go representation of the enum described in the `route_type` field of `routes.txt`.
type RouteType int32

const (
	RouteType_Tram       RouteType = 0
	RouteType_Subway     RouteType = 1
	RouteType_Rail       RouteType = 2
	RouteType_Bus        RouteType = 3
	RouteType_Ferry      RouteType = 4
	RouteType_CableTram  RouteType = 5
	RouteType_AerialLift RouteType = 6
	RouteType_Funicular  RouteType = 7
	RouteType_TrolleyBus RouteType = 11
	RouteType_Monorail   RouteType = 12

	RouteType_Unknown RouteType = 10000
)

func parseRouteType(s string) RouteType {
	switch s {
	case "0":
		return RouteType_Tram
	case "1":
		return RouteType_Subway
	case "2":
		return RouteType_Rail
	case "3":
		return RouteType_Bus
	case "4":
		return RouteType_Ferry
	case "5":
		return RouteType_CableTram
	case "6":
		return RouteType_AerialLift
	case "7":
		return RouteType_Funicular
	case "11":
		return RouteType_TrolleyBus
	case "12":
		return RouteType_Monorail
	default:
		return RouteType_Unknown
	}
}

func (t RouteType) String() string {
	switch t {
	case RouteType_Tram:
		return "TRAM"
	case RouteType_Subway:
		return "SUBWAY"
	case RouteType_Rail:
		return "RAIL"
	case RouteType_Bus:
		return "BUS"
	case RouteType_Ferry:
		return "FERRY"
	case RouteType_CableTram:
		return "CABLE_TRAM"
	case RouteType_AerialLift:
		return "AERIAL_LIFT"
	case RouteType_Funicular:
		return "FUNICULAR"
	case RouteType_TrolleyBus:
		return "TROLLEY_BUS"
	case RouteType_Monorail:
		return "MONORAIL"
	default:
		return "UNKNOWN"
	}
}

// ExceptionType is the `exception_type` field of `calendar_dates.txt`.
type ExceptionType int32

const (
	ExceptionType_Unknown ExceptionType = 0
	ExceptionType_Added   ExceptionType = 1
	ExceptionType_Removed ExceptionType = 2
)

func parseExceptionType(i int) ExceptionType {
	switch i {
	case 1:
		return ExceptionType_Added
	case 2:
		return ExceptionType_Removed
	default:
		return ExceptionType_Unknown
	}
}
