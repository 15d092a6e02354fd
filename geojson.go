package gtfsjson

import (
	geojson "github.com/paulmach/go.geojson"
)

// VectorFeatures returns one LineString feature per route vector whose
// representative shape has points. Coordinates are [longitude, latitude] as
// GeoJSON requires.
func VectorFeatures(idx *Index) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, route := range idx.Static().Routes {
		for _, vector := range GroupTrips(idx, route.Id) {
			points := idx.ShapePoints(vector.ShapeId)
			if len(points) == 0 {
				continue
			}
			coordinates := make([][]float64, 0, len(points))
			for _, p := range points {
				coordinates = append(coordinates, []float64{p.Longitude, p.Latitude})
			}
			feature := geojson.NewLineStringFeature(coordinates)
			feature.SetProperty("routeId", route.Id)
			feature.SetProperty("shortName", route.ShortName)
			feature.SetProperty("destination", vector.Destination)
			feature.SetProperty("shapeId", vector.ShapeId)
			feature.SetProperty("trips", len(vector.Trips))
			if route.Color != "" {
				feature.SetProperty("stroke", "#"+route.Color)
			}
			fc.AddFeature(feature)
		}
	}
	return fc
}
