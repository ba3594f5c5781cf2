// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package hypermedia navigates the API's link graph one GET at a time.
//
// Every document is a list of Items; each Item carries typed Links. Callers
// pick a link by Relation and follow it to the next list, or fetch its body
// raw (snapshots).
package hypermedia

// Relation names the purpose of a link. Matching is exact and case-sensitive.
type Relation string

const (
	RelFeaturesList  Relation = "http://api.sportingsolutions.com/rels/features/list"
	RelResourcesList Relation = "http://api.sportingsolutions.com/rels/resources/list"
	RelSnapshot      Relation = "http://api.sportingsolutions.com/rels/snapshot"
	RelStreamAMQP    Relation = "http://api.sportingsolutions.com/rels/stream/amqp"
	// RelAMQP marks the broker URI inside a stream document.
	RelAMQP Relation = "amqp"
)

// Link is one typed edge of the graph.
type Link struct {
	Relation Relation `json:"Relation"`
	Href     string   `json:"Href"`
}

// Item is a node of the graph: a service, feature, resource or stream endpoint.
type Item struct {
	Name    string   `json:"Name"`
	Content *Summary `json:"Content,omitempty"`
	Links   []Link   `json:"Links"`
}

// Summary is the resource content published alongside the links.
type Summary struct {
	ID          string         `json:"Id"`
	Date        string         `json:"Date,omitempty"`
	StartTime   string         `json:"StartTime,omitempty"`
	Sequence    int            `json:"Sequence"`
	MatchStatus int            `json:"MatchStatus"`
	Tags        map[string]any `json:"Tags,omitempty"`
}

// Find returns the first link with relation rel, in list order.
func Find(links []Link, rel Relation) (Link, bool) {
	for _, l := range links {
		if l.Relation == rel {
			return l, true
		}
	}
	return Link{}, false
}

// FindInItems searches the links of each item in order.
func FindInItems(items []Item, rel Relation) (Link, bool) {
	for _, it := range items {
		if l, ok := Find(it.Links, rel); ok {
			return l, true
		}
	}
	return Link{}, false
}

// ShortName returns the last path segment of a relation URI, for labels.
func (r Relation) ShortName() string {
	s := string(r)
	const marker = "/rels/"
	for i := len(s) - len(marker); i >= 0; i-- {
		if s[i:i+len(marker)] == marker {
			return s[i+len(marker):]
		}
	}
	return s
}
