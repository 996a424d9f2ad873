package cache

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// KeySeparator delimits the route prefix from the parameter digest. Keys
// keep the route readable for debugging while hashing the combinatorial
// parameter space down to a fixed width.
const KeySeparator = "::"

// NamespaceVersion pairs a namespace with the version observed when the
// key was built.
type NamespaceVersion struct {
	Namespace string
	Version   int64
}

// Key builds the cache key for a route, its normalized query parameters,
// and the current versions of every namespace the handler reads.
//
// Two requests that differ only in parameter order, surrounding
// whitespace, or blank parameters produce the same key. Two requests
// separated by a namespace bump never do.
func Key(route string, query url.Values, versions []NamespaceVersion) string {
	d := xxhash.New()
	d.WriteString(canonicalQuery(query))
	d.WriteString("|")
	d.WriteString(versionTag(versions))
	return route + KeySeparator + strconv.FormatUint(d.Sum64(), 16)
}

// canonicalQuery renders query parameters in a deterministic form:
// keys sorted, values trimmed and sorted per key, blank values dropped.
func canonicalQuery(query url.Values) string {
	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		values := make([]string, 0, len(query[k]))
		for _, v := range query[k] {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			values = append(values, v)
		}
		if len(values) == 0 {
			continue
		}
		sort.Strings(values)
		for _, v := range values {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(k)
			b.WriteByte('=')
			b.WriteString(v)
		}
	}
	return b.String()
}

func versionTag(versions []NamespaceVersion) string {
	if len(versions) == 0 {
		return ""
	}
	sorted := make([]NamespaceVersion, len(versions))
	copy(sorted, versions)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Namespace < sorted[j].Namespace
	})

	var b strings.Builder
	for i, nv := range sorted {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(nv.Namespace)
		b.WriteByte('=')
		b.WriteString(strconv.FormatInt(nv.Version, 10))
	}
	return b.String()
}
