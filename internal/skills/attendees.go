package skills

import (
	"context"
	"fmt"

	"github.com/ziadkadry99/cal-pilot/internal/calendar"
	"github.com/ziadkadry99/cal-pilot/internal/extraction"
)

// DisambiguateAttendees turns the attendees the user mentioned into
// concrete records with emails. A stated email is kept as-is; a bare
// name is looked up in the user's contacts and resolved to the
// contact's primary email, falling back to the first one on file. A
// name with no matching contact stays email-less so the required-field
// check can ask the user for it.
func (d *Deps) DisambiguateAttendees(ctx context.Context, userID, eventID string, params []extraction.AttendeeParam) ([]calendar.Attendee, error) {
	attendees := make([]calendar.Attendee, 0, len(params))
	for _, p := range params {
		a := calendar.Attendee{
			UserID:  userID,
			EventID: eventID,
			Name:    p.Name,
		}
		if p.Email != "" {
			a.Emails = []calendar.EmailEntry{{Value: p.Email, Primary: true}}
			attendees = append(attendees, a)
			continue
		}

		contact, err := d.Contacts.ByName(ctx, userID, p.Name)
		if err != nil {
			return nil, fmt.Errorf("looking up contact %q: %w", p.Name, err)
		}
		if contact != nil {
			if contact.Name != "" {
				a.Name = contact.Name
			}
			a.ContactID = contact.ID
			if email := contact.PrimaryEmail(); email != "" {
				a.Emails = []calendar.EmailEntry{{Value: email, Primary: true}}
			}
		}
		attendees = append(attendees, a)
	}
	return attendees, nil
}

// AttendeeEmails collects the resolvable email of each attendee,
// skipping ones that still have none.
func AttendeeEmails(attendees []calendar.Attendee) []string {
	var emails []string
	for _, a := range attendees {
		for _, e := range a.Emails {
			if e.Primary && e.Value != "" {
				emails = append(emails, e.Value)
				break
			}
		}
	}
	return emails
}
