// internal/app/system/datatable/deps.go
package datatable

import (
	"fmt"
	"hash/fnv"
	"strconv"
)

// DepsParam is the query parameter pager links use to carry the
// dependency fingerprint between requests.
const DepsParam = "dk"

// DepsKey fingerprints a dependency list. Equal lists give equal keys.
func DepsKey(deps ...any) string {
	if len(deps) == 0 {
		return ""
	}
	h := fnv.New64a()
	for _, d := range deps {
		fmt.Fprintf(h, "%T=%#v\x1f", d, d)
	}
	return strconv.FormatUint(h.Sum64(), 36)
}
