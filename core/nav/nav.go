// Package nav builds breadcrumb trails and UI stacks for detail views of
// resources that live in a parent/child hierarchy. Entries are constructed
// fresh per view activation and are not mutated after being returned.
package nav

import (
	"errors"
	"net/url"
	"strings"

	"github.com/artpar/pagekit/core/endpoint"
)

// ErrMissingParentData is returned when Build is invoked with fewer parent
// values than the endpoint's parent chain has levels. This is a caller
// contract violation and should not be recovered.
var ErrMissingParentData = errors.New("nav: parent values shorter than parent chain")

// Named exposes a display name for breadcrumb titles.
type Named interface {
	DisplayName() string
}

// Entry is one navigable segment of a breadcrumb trail. URL is empty on the
// terminal entry for the current item.
type Entry struct {
	Title string
	URL   string
}

// Trail is a breadcrumb sequence ordered root-to-current.
type Trail []Entry

// Stack holds entries for strict ancestors only, used for alternate
// navigation affordances such as a sidebar.
type Stack []Entry

// Build walks the endpoint's parent chain and derives the breadcrumb trail
// and UI stack for a detail view.
//
// parents supplies the actual ancestor records, ordered from the immediate
// parent outward to the root; each must expose a display name. baseURL is
// the URL path of the current resource collection, e.g.
// "/gadgets/42/widgets". currentLabel titles the terminal entry and may be
// empty (e.g. "New" for an unsaved item).
//
// Two trailing path segments are stripped per ancestor level: the first
// yields the ancestor's own detail URL (tagged with a tab query parameter
// selecting the child collection), the second the ancestor's collection URL.
func Build(ep *endpoint.Descriptor, parents []Named, currentLabel, baseURL string) (Trail, Stack, error) {
	trail := Trail{{Title: ep.Title(), URL: fragment(baseURL)}}
	var stack Stack

	path := baseURL
	level := 0
	for p := ep.Parent; p != nil; p = p.Parent {
		if level >= len(parents) {
			return nil, nil, ErrMissingParentData
		}

		itemPath, tab := splitLast(path)
		collectionPath, _ := splitLast(itemPath)

		parentEntry := Entry{
			Title: parents[level].DisplayName(),
			URL:   fragment(itemPath) + "?tab=" + url.QueryEscape(tab),
		}
		stack = prepend(stack, parentEntry)
		trail = prepend(trail, parentEntry)
		trail = prepend(trail, Entry{Title: p.Title(), URL: fragment(collectionPath)})

		path = collectionPath
		level++
	}

	trail = append(trail, Entry{Title: currentLabel})
	return trail, stack, nil
}

// splitLast removes the trailing path segment, returning the remainder and
// the removed segment.
func splitLast(path string) (rest, last string) {
	path = strings.TrimSuffix(path, "/")
	i := strings.LastIndex(path, "/")
	if i < 0 {
		return "", path
	}
	return path[:i], path[i+1:]
}

// fragment prefixes a path for hash-based routing.
func fragment(path string) string {
	return "#" + path
}

func prepend[S ~[]Entry](s S, e Entry) S {
	return append(S{e}, s...)
}
