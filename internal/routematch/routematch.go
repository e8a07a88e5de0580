// Package routematch matches an (method, path) request against a configured
// route table: first-match-wins on path, distinguishing a path hit with no
// matching method (method-not-allowed) from no path hit at all (not-found).
package routematch

import "strings"

// Outcome distinguishes the three possible results of a match.
type Outcome int

const (
	// NotFound means no route's path template matched the request path.
	NotFound Outcome = iota
	// MethodNotAllowed means at least one route's path matched but none
	// with the request method.
	MethodNotAllowed
	// Matched means a route matched on both path and method.
	Matched
)

// Entry is the subset of route configuration the matcher needs: a path
// template and a canonical uppercase method.
type Entry struct {
	Template string
	Method   string
}

// Result is the outcome of matching one request against the table.
type Result struct {
	Outcome Outcome
	Index   int               // index of the matched entry, valid only when Outcome == Matched
	Params  map[string]string // captured :param values, valid only when Outcome == Matched
}

// splitPath splits a path on '/', discarding a single leading empty segment
// (from the leading slash) and a single trailing empty segment (a trailing
// slash), so "/a/b" and "/a/b/" split identically.
func splitPath(path string) []string {
	segments := strings.Split(path, "/")
	if len(segments) > 0 && segments[0] == "" {
		segments = segments[1:]
	}
	if len(segments) > 0 && segments[len(segments)-1] == "" {
		segments = segments[:len(segments)-1]
	}
	return segments
}

// matchTemplate reports whether path matches template, returning captured
// :param bindings on success.
func matchTemplate(template, path string) (map[string]string, bool) {
	tplSegs := splitPath(template)
	pathSegs := splitPath(path)
	if len(tplSegs) != len(pathSegs) {
		return nil, false
	}

	var params map[string]string
	for i, tplSeg := range tplSegs {
		pathSeg := pathSegs[i]
		if strings.HasPrefix(tplSeg, ":") {
			name := tplSeg[1:]
			if pathSeg == "" {
				return nil, false
			}
			if params == nil {
				params = make(map[string]string)
			}
			params[name] = pathSeg
			continue
		}
		if tplSeg != pathSeg {
			return nil, false
		}
	}
	return params, true
}

// Match scans entries in definition order. The first entry whose template
// matches path is a path-hit; among path-hits, the first whose method
// equals (case-insensitively) method is the result. If at least one
// path-hit exists but none has a matching method, Match reports
// MethodNotAllowed. If no path-hits exist, it reports NotFound.
func Match(entries []Entry, method, path string) Result {
	method = strings.ToUpper(method)

	type hit struct {
		index  int
		params map[string]string
	}
	var hits []hit

	for i, e := range entries {
		params, ok := matchTemplate(e.Template, path)
		if !ok {
			continue
		}
		hits = append(hits, hit{index: i, params: params})
		if strings.ToUpper(e.Method) == method {
			return Result{Outcome: Matched, Index: i, Params: params}
		}
	}

	if len(hits) > 0 {
		return Result{Outcome: MethodNotAllowed}
	}
	return Result{Outcome: NotFound}
}
