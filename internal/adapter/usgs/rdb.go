package usgs

import (
	"bufio"
	"bytes"
	"strconv"
	"strings"

	"github.com/rotv/coordinate-validator/internal/domain"
)

// RDB column positions of the NWIS site service.
const (
	colSiteNo = 1
	colName   = 2
	colLat    = 4
	colLon    = 5
)

// ParseRDB extracts monitoring sites from an NWIS tab-delimited RDB
// document. Only data rows (agency "USGS") are read; rows that are short or
// carry unparsable coordinates are skipped. File order is preserved.
func ParseRDB(data []byte) []domain.ReferenceSite {
	var sites []domain.ReferenceSite
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if !strings.HasPrefix(line, "USGS") {
			continue
		}
		cols := strings.Split(line, "\t")
		if len(cols) <= colLon {
			continue
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(cols[colLat]), 64)
		if err != nil {
			continue
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(cols[colLon]), 64)
		if err != nil {
			continue
		}
		sites = append(sites, domain.ReferenceSite{
			ID:         strings.TrimSpace(cols[colSiteNo]),
			Name:       strings.TrimSpace(cols[colName]),
			Coordinate: domain.Coordinate{Lat: lat, Lon: lon},
		})
	}
	return sites
}
