package kv

import (
	"math"

	"github.com/hivellm/synap/internal/durability"
)

// Geo values reuse the SortedSet machinery: each member's score is its
// interleaved lon/lat geohash bits as a float64, so GEO-Add is just ZAdd
// under a different kind tag and range queries fall back to a linear
// distance scan.
const earthRadiusMeters = 6372797.560856

// geohashScore interleaves normalized longitude/latitude bits into a single
// 52-bit integer, matching the classic geohash-as-zset-score encoding.
func geohashScore(lon, lat float64) float64 {
	latOffset := (lat + 90.0) / 180.0
	lonOffset := (lon + 180.0) / 360.0
	latBits := uint64(latOffset * (1 << 26))
	lonBits := uint64(lonOffset * (1 << 26))

	var score uint64
	for i := 0; i < 26; i++ {
		score |= ((latBits >> i) & 1) << uint(2*i)
		score |= ((lonBits >> i) & 1) << uint(2*i+1)
	}
	return float64(score)
}

// GeoAdd records member's position in the geo set at key.
func (s *Store) GeoAdd(key, member string, lon, lat float64) (isNew bool, err error) {
	if lon < -180 || lon > 180 || lat < -90 || lat > 90 {
		return false, errInvalidArgument("longitude/latitude out of range")
	}
	sh := s.shardFor(key)
	now := s.now()

	sh.mu.Lock()
	defer sh.mu.Unlock()

	e, ok := sh.entries[key]
	if ok && e.expired(now) {
		ok = false
	}
	var prevSize int64
	if ok {
		if e.kind != KindGeo {
			return false, errWrongType(key, e.kind, KindGeo)
		}
		prevSize = e.sizeEstimate()
	} else {
		e = newEntry(KindGeo)
		e.zset = newSortedSet()
		sh.entries[key] = e
	}

	score := geohashScore(lon, lat)
	isNew = e.zset.add(member, score)
	e.version++
	e.touch(now)
	s.adjustMemory(e.sizeEstimate() - prevSize)
	s.record(durability.OpSortedSetAdd, zsetPayload{Key: key, Member: member, Score: score})
	return isNew, nil
}

func scoreToLonLat(score float64) (lon, lat float64) {
	bits := uint64(score)
	var latBits, lonBits uint64
	for i := 0; i < 26; i++ {
		latBits |= ((bits >> uint(2*i)) & 1) << i
		lonBits |= ((bits >> uint(2*i+1)) & 1) << i
	}
	lat = float64(latBits)/(1<<26)*180.0 - 90.0
	lon = float64(lonBits)/(1<<26)*360.0 - 180.0
	return lon, lat
}

// GeoPos returns the stored longitude/latitude of member.
func (s *Store) GeoPos(key, member string) (lon, lat float64, found bool, err error) {
	sh := s.shardFor(key)
	now := s.now()

	sh.mu.RLock()
	defer sh.mu.RUnlock()

	e, ok := s.getLive(sh, key, now)
	if !ok {
		return 0, 0, false, nil
	}
	if e.kind != KindGeo {
		return 0, 0, false, errWrongType(key, e.kind, KindGeo)
	}
	score, ok := e.zset.score(member)
	if !ok {
		return 0, 0, false, nil
	}
	lon, lat = scoreToLonLat(score)
	return lon, lat, true, nil
}

func haversineMeters(lon1, lat1, lon2, lat2 float64) float64 {
	rad := math.Pi / 180.0
	lat1r, lat2r := lat1*rad, lat2*rad
	dLat := (lat2 - lat1) * rad
	dLon := (lon2 - lon1) * rad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1r)*math.Cos(lat2r)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMeters * c
}

// GeoDist returns the great-circle distance in meters between two members.
func (s *Store) GeoDist(key, member1, member2 string) (meters float64, found bool, err error) {
	lon1, lat1, ok1, err := s.GeoPos(key, member1)
	if err != nil || !ok1 {
		return 0, false, err
	}
	lon2, lat2, ok2, err := s.GeoPos(key, member2)
	if err != nil || !ok2 {
		return 0, false, err
	}
	return haversineMeters(lon1, lat1, lon2, lat2), true, nil
}

// GeoRadiusMember is one match from a GeoRadius query.
type GeoRadiusMember struct {
	Member     string
	Lon, Lat   float64
	DistMeters float64
}

// GeoRadius returns every member within radiusMeters of (lon, lat), sorted
// by ascending distance. It scans every member in the set since geo sets are
// expected to stay small relative to the string/hash key space.
func (s *Store) GeoRadius(key string, lon, lat, radiusMeters float64) ([]GeoRadiusMember, error) {
	sh := s.shardFor(key)
	now := s.now()

	sh.mu.RLock()
	defer sh.mu.RUnlock()

	e, ok := s.getLive(sh, key, now)
	if !ok {
		return nil, nil
	}
	if e.kind != KindGeo {
		return nil, errWrongType(key, e.kind, KindGeo)
	}

	var out []GeoRadiusMember
	for _, m := range e.zset.view() {
		mLon, mLat := scoreToLonLat(m.Score)
		d := haversineMeters(lon, lat, mLon, mLat)
		if d <= radiusMeters {
			out = append(out, GeoRadiusMember{Member: m.Member, Lon: mLon, Lat: mLat, DistMeters: d})
		}
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1].DistMeters > out[j].DistMeters; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out, nil
}
