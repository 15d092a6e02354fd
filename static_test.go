package gtfsjson

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/gtfsjson/gtfsjson/constants"
	"github.com/gtfsjson/gtfsjson/internal/testutil"
	"github.com/gtfsjson/gtfsjson/warnings"
)

// newFeed returns a feed in which every table is present but has only a header.
func newFeed() *testutil.FeedBuilder {
	return testutil.NewFeedBuilder().
		Add("agency.txt", "agency_id,agency_name,agency_url,agency_timezone").
		Add("waypoints.txt", "waypoint_id,route_id,waypoint_name").
		Add("stops.txt", "stop_id,stop_name,stop_lat,stop_lon").
		Add("stop_times.txt", "trip_id,arrival_time,departure_time,stop_id,stop_sequence").
		Add("calendar.txt", "service_id,monday,tuesday,wednesday,thursday,friday,saturday,sunday,start_date,end_date").
		Add("calendar_dates.txt", "service_id,date,exception_type").
		Add("trips.txt", "route_id,service_id,trip_id,trip_headsign,shape_id").
		Add("shapes.txt", "shape_id,shape_pt_lat,shape_pt_lon,shape_pt_sequence").
		Add("routes.txt", "route_id,agency_id,route_short_name,route_long_name,route_type,route_color")
}

func parse(t *testing.T, b *testutil.FeedBuilder) *Static {
	t.Helper()
	static, err := ParseStatic(b.FS())
	if err != nil {
		t.Fatalf("ParseStatic() err = %s, want nil", err)
	}
	return static
}

func TestParseStatic(t *testing.T) {
	for _, tc := range []struct {
		desc     string
		feed     *testutil.FeedBuilder
		expected *Static
	}{
		{
			desc:     "only headers",
			feed:     newFeed(),
			expected: &Static{},
		},
		{
			desc: "agency with all fields",
			feed: newFeed().Add(
				"agency.txt",
				"agency_id,agency_name,agency_url,agency_timezone,agency_phone,agency_lang",
				"a,Metro,https://metro.example,America/New_York,555-0100,en",
			),
			expected: &Static{
				Agencies: []Agency{
					{
						Id:       "a",
						Name:     "Metro",
						Url:      "https://metro.example",
						Timezone: "America/New_York",
						Phone:    "555-0100",
						Language: "en",
					},
				},
			},
		},
		{
			desc: "stops with comments and quoted fields",
			feed: newFeed().Add(
				"stops.txt",
				"stop_id,stop_name,stop_lat,stop_lon",
				"// northbound platforms",
				"",
				`s1,"Main St, North",40.5,-73.25`,
				"   ",
				"s2,Second,41,-74",
			),
			expected: &Static{
				Stops: []Stop{
					{Id: "s1", Name: "Main St, North", Latitude: 40.5, Longitude: -73.25},
					{Id: "s2", Name: "Second", Latitude: 41, Longitude: -74},
				},
			},
		},
		{
			desc: "stop times keep hours and minutes",
			feed: newFeed().Add(
				"stop_times.txt",
				"trip_id,arrival_time,departure_time,stop_id,stop_sequence",
				"t1,08:05:00,08:06:30,s1,1",
				"// a comment",
				"t1,25:10:30,,s2,2",
				"t1,7:05:00,7:05:00,s3,3",
			),
			expected: &Static{
				StopTimes: []StopTime{
					{TripId: "t1", ArrivalTime: "08:05", DepartureTime: "08:06", StopId: "s1", StopSequence: 1},
					{TripId: "t1", ArrivalTime: "25:10", StopId: "s2", StopSequence: 2},
					{TripId: "t1", ArrivalTime: "7:05", DepartureTime: "7:05", StopId: "s3", StopSequence: 3},
				},
			},
		},
		{
			desc: "calendars and calendar dates",
			feed: newFeed().Add(
				"calendar.txt",
				"service_id,monday,tuesday,wednesday,thursday,friday,saturday,sunday,start_date,end_date",
				"weekday,1,1,1,1,1,0,0,20240101,20241231",
			).Add(
				"calendar_dates.txt",
				"service_id,date,exception_type",
				"weekday,20240704,2",
				"weekday,20240706,1",
			),
			expected: &Static{
				Calendars: []Calendar{
					{
						ServiceId: "weekday",
						Days:      [7]bool{true, true, true, true, true, false, false},
						StartDate: "2024-01-01",
						EndDate:   "2024-12-31",
					},
				},
				CalendarDates: []CalendarDate{
					{ServiceId: "weekday", Date: "2024-07-04", ExceptionType: ExceptionType_Removed},
					{ServiceId: "weekday", Date: "2024-07-06", ExceptionType: ExceptionType_Added},
				},
			},
		},
		{
			desc: "routes trips shapes and waypoints",
			feed: newFeed().Add(
				"routes.txt",
				"route_id,agency_id,route_short_name,route_long_name,route_type,route_color",
				"r1,a,1,First Avenue,3,FF0000",
				"r2,,,,x,",
			).Add(
				"trips.txt",
				"route_id,service_id,trip_id,trip_headsign,shape_id",
				"r1,weekday,t1,Uptown,sh1",
			).Add(
				"shapes.txt",
				"shape_id,shape_pt_lat,shape_pt_lon,shape_pt_sequence",
				"sh1,40.1,-73.1,1",
				"sh1,40.2,-73.2,2",
			).Add(
				"waypoints.txt",
				"waypoint_id,route_id,waypoint_name",
				"w1,r1,via Midtown",
			),
			expected: &Static{
				Routes: []Route{
					{Id: "r1", AgencyId: "a", ShortName: "1", LongName: "First Avenue", Type: RouteType_Bus, Color: "FF0000"},
					{Id: "r2", Type: RouteType_Unknown},
				},
				Trips: []Trip{
					{RouteId: "r1", ServiceId: "weekday", Id: "t1", Headsign: "Uptown", ShapeId: "sh1"},
				},
				Shapes: []ShapePoint{
					{ShapeId: "sh1", Latitude: 40.1, Longitude: -73.1, Sequence: 1},
					{ShapeId: "sh1", Latitude: 40.2, Longitude: -73.2, Sequence: 2},
				},
				Waypoints: []Waypoint{
					{Id: "w1", RouteId: "r1", Name: "via Midtown"},
				},
			},
		},
		{
			desc: "malformed fields read as zero values",
			feed: newFeed().Add(
				"stops.txt",
				"stop_id,stop_name,stop_lat,stop_lon",
				"s1,A,40.5,-73",
				"s2,B,abc,NaN",
			).Add(
				"calendar.txt",
				"service_id,monday,tuesday,wednesday,thursday,friday,saturday,sunday,start_date,end_date",
				"c,0,0,0,0,0,1,1,2024-01-01,20240630",
			),
			expected: &Static{
				Stops: []Stop{
					{Id: "s1", Name: "A", Latitude: 40.5, Longitude: -73},
					{Id: "s2", Name: "B"},
				},
				Calendars: []Calendar{
					{
						ServiceId: "c",
						Days:      [7]bool{false, false, false, false, false, true, true},
						EndDate:   "2024-06-30",
					},
				},
				Warnings: []warnings.StaticWarning{
					warnings.MalformedField{FileName: constants.StopsFile, Row: 2, Column: "stop_lat", Value: "abc"},
					warnings.MalformedField{FileName: constants.StopsFile, Row: 2, Column: "stop_lon", Value: "NaN"},
					warnings.MalformedField{FileName: constants.CalendarFile, Row: 1, Column: "start_date", Value: "2024-01-01"},
				},
			},
		},
		{
			desc: "empty required cells and malformed times",
			feed: newFeed().Add(
				"stop_times.txt",
				"trip_id,arrival_time,departure_time,stop_id,stop_sequence",
				",08:00:00,,s1,1",
				"t1,bad,8:15:00,s2,2",
			),
			expected: &Static{
				StopTimes: []StopTime{
					{ArrivalTime: "08:00", StopId: "s1", StopSequence: 1},
					{TripId: "t1", DepartureTime: "8:15", StopId: "s2", StopSequence: 2},
				},
				Warnings: []warnings.StaticWarning{
					warnings.MissingValues{
						FileName: constants.StopTimesFile,
						Row:      1,
						Columns:  []string{"trip_id"},
						Content:  []string{"", "08:00:00", "", "s1", "1"},
					},
					warnings.MalformedField{FileName: constants.StopTimesFile, Row: 2, Column: "arrival_time", Value: "bad"},
				},
			},
		},
		{
			desc: "missing required column",
			feed: newFeed().Add(
				"trips.txt",
				"route_id,trip_id",
				"r1,t1",
			),
			expected: &Static{
				Trips: []Trip{
					{RouteId: "r1", Id: "t1"},
				},
				Warnings: []warnings.StaticWarning{
					warnings.MissingColumns{FileName: constants.TripsFile, Columns: []string{"service_id"}},
				},
			},
		},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			actual := parse(t, tc.feed)
			if diff := cmp.Diff(tc.expected, actual); diff != "" {
				t.Errorf("ParseStatic() got = %v, want = %v, diff = %s", actual, tc.expected, diff)
			}
		})
	}
}

func TestParseStatic_MissingFiles(t *testing.T) {
	actual := parse(t, testutil.NewFeedBuilder().Add("routes.txt", "route_id", "r1"))

	var expected []warnings.StaticWarning
	for _, fileName := range []constants.StaticFile{
		constants.AgencyFile,
		constants.WaypointsFile,
		constants.StopsFile,
		constants.StopTimesFile,
		constants.CalendarFile,
		constants.CalendarDatesFile,
		constants.TripsFile,
		constants.ShapesFile,
	} {
		expected = append(expected, warnings.MissingFile{FileName: fileName})
	}
	if diff := cmp.Diff(expected, actual.Warnings); diff != "" {
		t.Errorf("Warnings diff = %s", diff)
	}
	if diff := cmp.Diff([]Route{{Id: "r1", Type: RouteType_Unknown}}, actual.Routes); diff != "" {
		t.Errorf("Routes diff = %s", diff)
	}
}

func TestParseStatic_EmptyFile(t *testing.T) {
	actual := parse(t, newFeed().Add("shapes.txt"))

	if len(actual.Warnings) != 1 {
		t.Fatalf("got %d warnings, want 1: %v", len(actual.Warnings), actual.Warnings)
	}
	w := actual.Warnings[0]
	if w.File() != constants.ShapesFile || w.Kind() != "missing_file" {
		t.Errorf("got warning %s/%s, want %s/missing_file", w.File(), w.Kind(), constants.ShapesFile)
	}
}

func TestLoadFeed(t *testing.T) {
	feed := newFeed().Add(
		"agency.txt",
		"agency_id,agency_name,agency_url,agency_timezone",
		"a,Metro,https://metro.example,UTC",
	)
	expected := []Agency{{Id: "a", Name: "Metro", Url: "https://metro.example", Timezone: "UTC"}}

	t.Run("zip archive", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "feed.zip")
		if err := os.WriteFile(path, feed.Zip(), 0644); err != nil {
			t.Fatal(err)
		}
		static, err := LoadFeed(path)
		if err != nil {
			t.Fatalf("LoadFeed() err = %s, want nil", err)
		}
		if diff := cmp.Diff(expected, static.Agencies); diff != "" {
			t.Errorf("Agencies diff = %s", diff)
		}
		if len(static.Warnings) != 0 {
			t.Errorf("got warnings %v, want none", static.Warnings)
		}
	})

	t.Run("directory", func(t *testing.T) {
		dir := t.TempDir()
		for name, file := range feed.FS() {
			if err := os.WriteFile(filepath.Join(dir, name), file.Data, 0644); err != nil {
				t.Fatal(err)
			}
		}
		static, err := LoadFeed(dir)
		if err != nil {
			t.Fatalf("LoadFeed() err = %s, want nil", err)
		}
		if diff := cmp.Diff(expected, static.Agencies); diff != "" {
			t.Errorf("Agencies diff = %s", diff)
		}
	})

	t.Run("not a feed", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "feed.txt")
		if err := os.WriteFile(path, []byte("hello"), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadFeed(path); err == nil {
			t.Errorf("LoadFeed() err = nil, want an error")
		}
	})

	t.Run("missing path", func(t *testing.T) {
		if _, err := LoadFeed(filepath.Join(t.TempDir(), "nothing")); err == nil {
			t.Errorf("LoadFeed() err = nil, want an error")
		}
	})
}
