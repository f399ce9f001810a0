package spatial

// Base32 encoding for geohash
const base32 = "0123456789bcdefghjkmnpqrstuvwxyz"

// EncodeGeohash encodes latitude and longitude into a geohash string
// precision: number of characters in the geohash (1-12)
func EncodeGeohash(lat, lon float64, precision int) string {
	if precision < 1 {
		precision = 1
	}
	if precision > 12 {
		precision = 12
	}

	latRange := [2]float64{-90.0, 90.0}
	lonRange := [2]float64{-180.0, 180.0}

	geohash := make([]byte, 0, precision)
	even := true
	bits, ch := 0, 0

	for len(geohash) < precision {
		if even {
			mid := (lonRange[0] + lonRange[1]) / 2
			if lon > mid {
				ch |= 1 << (4 - bits)
				lonRange[0] = mid
			} else {
				lonRange[1] = mid
			}
		} else {
			mid := (latRange[0] + latRange[1]) / 2
			if lat > mid {
				ch |= 1 << (4 - bits)
				latRange[0] = mid
			} else {
				latRange[1] = mid
			}
		}
		even = !even

		if bits < 4 {
			bits++
			continue
		}
		geohash = append(geohash, base32[ch])
		bits, ch = 0, 0
	}

	return string(geohash)
}

// GeohashBounds returns the bounding box of a geohash cell
// Returns (minLat, minLon, maxLat, maxLon)
func GeohashBounds(geohash string) (float64, float64, float64, float64) {
	latRange := [2]float64{-90.0, 90.0}
	lonRange := [2]float64{-180.0, 180.0}

	isLon := true
	for i := 0; i < len(geohash); i++ {
		idx := indexOfBase32(geohash[i])
		if idx == -1 {
			continue
		}

		for mask := 16; mask > 0; mask >>= 1 {
			r := &latRange
			if isLon {
				r = &lonRange
			}
			mid := (r[0] + r[1]) / 2
			if idx&mask != 0 {
				r[0] = mid
			} else {
				r[1] = mid
			}
			isLon = !isLon
		}
	}

	return latRange[0], lonRange[0], latRange[1], lonRange[1]
}

// GeohashCovering returns the cell containing the point plus its 8 neighbours.
// Any point within one cell size of (lat, lon) falls in one of them.
func GeohashCovering(lat, lon float64, precision int) []string {
	center := EncodeGeohash(lat, lon, precision)
	minLat, minLon, maxLat, maxLon := GeohashBounds(center)
	latDelta := maxLat - minLat
	lonDelta := maxLon - minLon
	cLat := (minLat + maxLat) / 2
	cLon := (minLon + maxLon) / 2

	seen := map[string]bool{center: true}
	cells := []string{center}
	for dLat := -1; dLat <= 1; dLat++ {
		for dLon := -1; dLon <= 1; dLon++ {
			newLat := cLat + float64(dLat)*latDelta
			newLon := cLon + float64(dLon)*lonDelta

			if newLat > 90 {
				newLat = 90
			}
			if newLat < -90 {
				newLat = -90
			}
			if newLon > 180 {
				newLon -= 360
			}
			if newLon < -180 {
				newLon += 360
			}

			cell := EncodeGeohash(newLat, newLon, precision)
			if !seen[cell] {
				seen[cell] = true
				cells = append(cells, cell)
			}
		}
	}

	return cells
}

// approximate cell heights at the equator, indexed by precision
var geohashCellSizes = [...]float64{0, 5000000, 625000, 123000, 19500, 3900, 610, 120, 19, 3.7, 0.6, 0.12, 0.019}

// GeohashPrecisionForDistance returns the finest precision whose cell is still
// at least distanceMeters tall, so a covering search stays within one ring.
func GeohashPrecisionForDistance(distanceMeters float64) int {
	for precision := 12; precision >= 1; precision-- {
		if geohashCellSizes[precision] >= distanceMeters {
			return precision
		}
	}
	return 1
}

// indexOfBase32 finds the index of a character in the base32 alphabet
func indexOfBase32(ch byte) int {
	for i := 0; i < len(base32); i++ {
		if base32[i] == ch {
			return i
		}
	}
	return -1
}
