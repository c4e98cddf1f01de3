package legacy

import (
	"fmt"
	"strconv"
	"strings"
)

// Key prefixes routing to the conceptually different index types stored in
// the one ordered keyspace.
const (
	pagePrefix     = "page/"
	termPrefix     = "term/"
	titlePrefix    = "title/"
	urlPrefix      = "url/"
	domainPrefix   = "domain/"
	tagPrefix      = "tag/"
	visitPrefix    = "visit/"
	bookmarkPrefix = "bookmark/"
)

// timestampWidth zero-pads event timestamps so that their keys sort
// lexicographically in chronological order. Thirteen digits cover Unix
// millisecond timestamps until the year 2286.
const timestampWidth = 13

func pageKey(id string) string      { return pagePrefix + id }
func termKey(t string) string       { return termPrefix + t }
func titleKey(t string) string      { return titlePrefix + t }
func urlTermKey(t string) string    { return urlPrefix + t }
func domainKey(d string) string     { return domainPrefix + d }
func tagKey(t string) string        { return tagPrefix + t }
func visitKey(ts int64) string      { return visitPrefix + padTimestamp(ts) }
func bookmarkKey(ts int64) string   { return bookmarkPrefix + padTimestamp(ts) }

// padTimestamp renders ts fixed-width for lexicographic ordering.
func padTimestamp(ts int64) string {
	return fmt.Sprintf("%0*d", timestampWidth, ts)
}

// stripKeyType removes the index-type prefix from a key, leaving the bare
// term, ID, or timestamp string.
func stripKeyType(key string) string {
	if i := strings.IndexByte(key, '/'); i != -1 {
		return key[i+1:]
	}
	return key
}

// timestampOfKey parses the timestamp out of a visit or bookmark key.
func timestampOfKey(key string) int64 {
	ts, err := strconv.ParseInt(stripKeyType(key), 10, 64)
	if err != nil {
		return 0
	}
	return ts
}

// prefixUpperBound returns the smallest key greater than every key with
// the given prefix, for use as an exclusive iteration bound.
func prefixUpperBound(prefix string) []byte {
	return append([]byte(prefix), 0xff)
}
