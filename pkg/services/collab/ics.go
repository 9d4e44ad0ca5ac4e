package collab

import (
	"bufio"
	"bytes"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/mynaparrot/meethub-server/pkg/domain"
	"github.com/teambition/rrule-go"
)

const calendarMime = "text/calendar"

var icsLayouts = []string{"20060102T150405Z", "20060102T150405", "20060102"}

type icsProp struct {
	name   string
	params map[string]string
	value  string
}

// ParseICS turns the VEVENTs of an iCalendar file into schedule requests.
// Anything that is not text/calendar is rejected.
func ParseICS(data []byte) ([]*domain.ScheduleMeetingRequest, error) {
	mt := mimetype.Detect(data)
	if !mt.Is(calendarMime) {
		return nil, domain.NewValidationFault("unsupported import file type %s", mt.String())
	}

	var (
		reqs  []*domain.ScheduleMeetingRequest
		event []icsProp
		inEvt bool
	)
	for _, line := range unfold(data) {
		p, ok := parseProp(line)
		if !ok {
			continue
		}
		switch {
		case p.name == "BEGIN" && strings.EqualFold(p.value, "VEVENT"):
			inEvt, event = true, nil
		case p.name == "END" && strings.EqualFold(p.value, "VEVENT"):
			inEvt = false
			req, err := eventToRequest(event)
			if err != nil {
				return nil, err
			}
			reqs = append(reqs, req)
		case inEvt:
			event = append(event, p)
		}
	}
	if len(reqs) == 0 {
		return nil, domain.NewValidationFault("import file has no events")
	}
	return reqs, nil
}

// unfold joins continuation lines (RFC 5545 3.1).
func unfold(data []byte) []string {
	var lines []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		l := strings.TrimRight(sc.Text(), "\r")
		if (strings.HasPrefix(l, " ") || strings.HasPrefix(l, "\t")) && len(lines) > 0 {
			lines[len(lines)-1] += l[1:]
			continue
		}
		lines = append(lines, l)
	}
	return lines
}

func parseProp(line string) (icsProp, bool) {
	head, value, ok := strings.Cut(line, ":")
	if !ok {
		return icsProp{}, false
	}
	parts := strings.Split(head, ";")
	p := icsProp{
		name:   strings.ToUpper(parts[0]),
		params: make(map[string]string, len(parts)-1),
		value:  value,
	}
	for _, param := range parts[1:] {
		k, v, _ := strings.Cut(param, "=")
		p.params[strings.ToUpper(k)] = strings.Trim(v, `"`)
	}
	return p, true
}

func unescape(v string) string {
	r := strings.NewReplacer(`\n`, "\n", `\N`, "\n", `\,`, ",", `\;`, ";", `\\`, `\`)
	return r.Replace(v)
}

func parseICSTime(p icsProp) (time.Time, string, error) {
	tz := p.params["TZID"]
	loc := time.UTC
	if tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			return time.Time{}, "", domain.NewValidationFault("unknown timezone %q", tz)
		}
		loc = l
	}
	for _, layout := range icsLayouts {
		if t, err := time.ParseInLocation(layout, p.value, loc); err == nil {
			return t, tz, nil
		}
	}
	return time.Time{}, "", domain.NewValidationFault("invalid %s %q", p.name, p.value)
}

func eventToRequest(props []icsProp) (*domain.ScheduleMeetingRequest, error) {
	req := new(domain.ScheduleMeetingRequest)
	var start, end time.Time
	for _, p := range props {
		switch p.name {
		case "SUMMARY":
			req.Title = unescape(p.value)
		case "DESCRIPTION":
			req.Description = unescape(p.value)
		case "DTSTART":
			t, tz, err := parseICSTime(p)
			if err != nil {
				return nil, err
			}
			start = t
			req.Timezone = tz
		case "DTEND":
			t, _, err := parseICSTime(p)
			if err != nil {
				return nil, err
			}
			end = t
		case "ATTENDEE":
			email := strings.TrimPrefix(strings.TrimPrefix(p.value, "mailto:"), "MAILTO:")
			req.Participants = append(req.Participants, domain.MeetingParticipant{
				Email: email,
				Name:  p.params["CN"],
			})
		case "RRULE":
			if err := applyRRule(req, p.value); err != nil {
				return nil, err
			}
		}
	}
	if start.IsZero() {
		return nil, domain.NewValidationFault("event %q has no DTSTART", req.Title)
	}
	req.ScheduledDate = start.Format(domain.DateLayout)
	req.ScheduledTime = start.Format(domain.TimeLayout)
	if !end.IsZero() && end.After(start) {
		req.Duration = int64(end.Sub(start) / time.Minute)
	}
	return req, nil
}

func applyRRule(req *domain.ScheduleMeetingRequest, value string) error {
	opt, err := rrule.StrToROption(value)
	if err != nil {
		return domain.NewValidationFault("invalid RRULE %q", value)
	}
	switch opt.Freq {
	case rrule.DAILY:
		req.RecurrencePattern = domain.RecurrenceDaily
	case rrule.WEEKLY:
		req.RecurrencePattern = domain.RecurrenceWeekly
	case rrule.MONTHLY:
		req.RecurrencePattern = domain.RecurrenceMonthly
	case rrule.YEARLY:
		req.RecurrencePattern = domain.RecurrenceYearly
	default:
		return domain.NewValidationFault("unsupported recurrence %q", value)
	}
	req.IsRecurring = true
	if opt.Count > 0 {
		c := int64(opt.Count)
		req.RecurrenceCount = &c
	}
	if !opt.Until.IsZero() {
		u := opt.Until.UTC().Format(domain.DateLayout)
		req.RecurrenceEndDate = &u
	}
	return nil
}
