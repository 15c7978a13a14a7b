// Package links detects meeting URLs in calendar events.
package links

import (
	"os/exec"
	"regexp"

	"github.com/cpuguy83/calgrid/internal/calendar"
)

type service struct {
	name    string
	pattern *regexp.Regexp
}

// Known meeting services, checked before the generic URL pattern.
var services = []service{
	{"Zoom", regexp.MustCompile(`https?://[\w.-]*zoom\.us/j/[\w?=&-]+`)},
	{"Teams", regexp.MustCompile(`https?://teams\.microsoft\.com/l/meetup-join/[\w%/-]+`)},
	{"Meet", regexp.MustCompile(`https?://meet\.google\.com/[\w-]+`)},
	{"Webex", regexp.MustCompile(`https?://[\w.-]*\.webex\.com/[\w./-]+`)},
}

var genericURL = regexp.MustCompile(`https?://[^\s<>"]+`)

// Link is a URL found in an event.
type Link struct {
	URL     string
	Service string // "Zoom", "Teams", "Meet", "Webex" or "Link"
}

// Detect finds the best link in an event. The location is checked before the
// description, and known meeting services win over generic URLs.
func Detect(e calendar.Event) (Link, bool) {
	for _, text := range []string{e.Location, e.Description} {
		if l, ok := detectService(text); ok {
			return l, true
		}
	}
	for _, text := range []string{e.Location, e.Description} {
		if url := genericURL.FindString(text); url != "" {
			return Link{URL: url, Service: "Link"}, true
		}
	}
	return Link{}, false
}

func detectService(text string) (Link, bool) {
	if text == "" {
		return Link{}, false
	}
	for _, s := range services {
		if url := s.pattern.FindString(text); url != "" {
			return Link{URL: url, Service: s.name}, true
		}
	}
	return Link{}, false
}

// IsMeeting reports whether the link belongs to a known meeting service.
func (l Link) IsMeeting() bool {
	return l.Service != "" && l.Service != "Link"
}

// Open opens a URL in the default browser using xdg-open.
func Open(url string) error {
	return exec.Command("xdg-open", url).Start()
}
