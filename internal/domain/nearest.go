package domain

// Match pairs a reference site with its distance from a target point.
type Match struct {
	Site           ReferenceSite `json:"site"`
	DistanceMeters float64       `json:"distance_m"`
}

// Nearest returns the site closest to target. Ties keep the first site in
// input order. An empty collection is not an error: it returns ok=false.
// Sites whose own coordinates are out of range are ignored; an out-of-range
// target is rejected with ErrInvalidCoordinate.
func Nearest(target Coordinate, sites []ReferenceSite) (match Match, ok bool, err error) {
	if err := target.Validate(); err != nil {
		return Match{}, false, err
	}

	for _, site := range sites {
		if site.Coordinate.Validate() != nil {
			continue
		}
		d := haversine(target, site.Coordinate)
		if !ok || d < match.DistanceMeters {
			match = Match{Site: site, DistanceMeters: d}
			ok = true
		}
	}
	return match, ok, nil
}
