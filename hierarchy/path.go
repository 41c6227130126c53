package hierarchy

import (
	"strconv"
	"strings"
)

// childPath appends a capturable node's disambiguated segment name to
// its parent's path (spec §3: "File and folder nodes have no #; inner
// nodes append their identifier segments"). The first inner segment
// under a FILE (or FOLDER) introduces the `#`; deeper nesting appends
// with `.`.
func childPath(parentPath, segment string) string {
	if strings.Contains(parentPath, "#") {
		return parentPath + "." + segment
	}
	return parentPath + "#" + segment
}

// disambiguate assigns the stable "#name[2]", "#name[3]", ... suffix
// spec §4.4 requires for sibling captures sharing a name, in source
// order. seen is scoped to one parent's direct captured children.
func disambiguate(seen map[string]int, name string) string {
	seen[name]++
	if n := seen[name]; n > 1 {
		return name + "[" + strconv.Itoa(n) + "]"
	}
	return name
}
