package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/neomorfeo/waterorder/internal/domain"
)

var t0 = time.Date(2030, 1, 10, 10, 10, 0, 0, time.UTC)

func TestNewOrderID(t *testing.T) {
	start := time.Date(2020, 1, 16, 10, 10, 10, 0, time.UTC)
	if got, want := domain.NewOrderID("MYFARM", start), "MYFARM:20200116101010"; got != want {
		t.Errorf("NewOrderID = %q, want %q", got, want)
	}
}

func TestNewOrderID_RendersUTC(t *testing.T) {
	plusTwo := time.FixedZone("UTC+2", 2*60*60)

	local := time.Date(2031, 1, 1, 10, 0, 0, 0, plusTwo)
	utc := time.Date(2031, 1, 1, 10, 0, 0, 0, time.UTC)

	if got, want := domain.NewOrderID("F", local), "F:20310101080000"; got != want {
		t.Errorf("NewOrderID(+02:00) = %q, want %q", got, want)
	}
	if got, want := domain.NewOrderID("F", utc), "F:20310101100000"; got != want {
		t.Errorf("NewOrderID(Z) = %q, want %q", got, want)
	}
	if domain.NewOrderID("F", local) != domain.NewOrderID("F", local.UTC()) {
		t.Error("same instant in different zones produced different ids")
	}
}

func TestNewOrder_NormalizesStartToUTC(t *testing.T) {
	start := time.Date(2031, 1, 1, 10, 0, 0, 0, time.FixedZone("UTC-5", -5*60*60))

	order := domain.NewOrder(domain.Candidate{FarmID: "F", StartDateTime: start, Duration: time.Hour})

	if order.StartDateTime.Location() != time.UTC {
		t.Errorf("StartDateTime location = %v, want UTC", order.StartDateTime.Location())
	}
	if !order.StartDateTime.Equal(start) {
		t.Errorf("StartDateTime = %v, want instant %v", order.StartDateTime, start)
	}
	if order.ID != "F:20310101150000" {
		t.Errorf("ID = %q, want %q", order.ID, "F:20310101150000")
	}
}

func TestNewOrder(t *testing.T) {
	order := domain.NewOrder(domain.Candidate{
		FarmID:        "farm-1",
		StartDateTime: t0,
		Duration:      time.Hour,
	})

	if order.ID != "farm-1:20300110101000" {
		t.Errorf("ID = %q, want %q", order.ID, "farm-1:20300110101000")
	}
	if order.Status != domain.StatusRequested {
		t.Errorf("Status = %q, want %q", order.Status, domain.StatusRequested)
	}
	if !order.EndDateTime().Equal(t0.Add(time.Hour)) {
		t.Errorf("EndDateTime = %v, want %v", order.EndDateTime(), t0.Add(time.Hour))
	}
}

func TestCandidate_Validate(t *testing.T) {
	cases := []struct {
		name      string
		candidate domain.Candidate
		field     string
	}{
		{"valid", domain.Candidate{FarmID: "f", StartDateTime: t0.Add(time.Minute), Duration: time.Hour}, ""},
		{"zero duration", domain.Candidate{FarmID: "f", StartDateTime: t0.Add(time.Minute)}, ""},
		{"blank farm", domain.Candidate{FarmID: "  ", StartDateTime: t0.Add(time.Minute)}, "farmId"},
		{"missing start", domain.Candidate{FarmID: "f"}, "startDateTime"},
		{"start now", domain.Candidate{FarmID: "f", StartDateTime: t0}, "startDateTime"},
		{"start in past", domain.Candidate{FarmID: "f", StartDateTime: t0.Add(-time.Second)}, "startDateTime"},
		{"negative duration", domain.Candidate{FarmID: "f", StartDateTime: t0.Add(time.Minute), Duration: -time.Second}, "duration"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.candidate.Validate(t0)
			if tc.field == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var inErr *domain.InputError
			if !errors.As(err, &inErr) {
				t.Fatalf("expected InputError, got %v", err)
			}
			if inErr.Field != tc.field {
				t.Errorf("Field = %q, want %q", inErr.Field, tc.field)
			}
		})
	}
}

func TestOrder_Overlaps(t *testing.T) {
	existing := domain.Order{StartDateTime: t0, Duration: time.Hour}

	cases := []struct {
		name     string
		start    time.Time
		duration time.Duration
		want     bool
	}{
		{"inside", t0.Add(30 * time.Minute), 10 * time.Minute, true},
		{"starts inside", t0.Add(30 * time.Minute), 2 * time.Hour, true},
		{"ends inside", t0.Add(-time.Hour), 90 * time.Minute, true},
		{"contains existing", t0.Add(-time.Minute), 2 * time.Hour, true},
		{"touches end", t0.Add(time.Hour), time.Minute, true},
		{"touches start", t0.Add(-time.Minute), time.Minute, true},
		{"after", t0.Add(time.Hour + time.Second), time.Minute, false},
		{"before", t0.Add(-time.Hour), 59 * time.Minute, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			candidate := domain.Order{StartDateTime: tc.start, Duration: tc.duration}
			if got := candidate.Overlaps(existing); got != tc.want {
				t.Errorf("Overlaps = %v, want %v", got, tc.want)
			}
			if got := existing.Overlaps(candidate); got != tc.want {
				t.Errorf("reverse Overlaps = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestStatus_Message(t *testing.T) {
	statuses := []domain.Status{
		domain.StatusRequested,
		domain.StatusInProgress,
		domain.StatusDelivered,
		domain.StatusCancelled,
	}
	seen := make(map[string]bool)
	for _, s := range statuses {
		msg := s.Message()
		if msg == "" || msg == domain.Status("bogus").Message() {
			t.Errorf("status %q has no dedicated message", s)
		}
		if seen[msg] {
			t.Errorf("status %q reuses message %q", s, msg)
		}
		seen[msg] = true
	}
}

func TestStatus_Terminal(t *testing.T) {
	if domain.StatusRequested.Terminal() || domain.StatusInProgress.Terminal() {
		t.Error("REQUESTED and IN_PROGRESS must not be terminal")
	}
	if !domain.StatusDelivered.Terminal() || !domain.StatusCancelled.Terminal() {
		t.Error("DELIVERED and CANCELLED must be terminal")
	}
}

func TestTransitions_ValidPaths(t *testing.T) {
	cases := []struct {
		event domain.Event
		src   domain.Status
		dst   domain.Status
	}{
		{domain.EventStartDelivery, domain.StatusRequested, domain.StatusInProgress},
		{domain.EventCompleteDelivery, domain.StatusInProgress, domain.StatusDelivered},
		{domain.EventCancel, domain.StatusRequested, domain.StatusCancelled},
	}

	for _, tc := range cases {
		found := false
		for _, tr := range domain.Transitions {
			if tr.Event == tc.event && tr.Src == tc.src && tr.Dst == tc.dst {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("missing transition: %q from %q → %q", tc.event, tc.src, tc.dst)
		}
	}
}

func TestTransitions_InvalidPaths(t *testing.T) {
	invalid := []struct {
		event domain.Event
		src   domain.Status
	}{
		{domain.EventCancel, domain.StatusInProgress},
		{domain.EventCancel, domain.StatusDelivered},
		{domain.EventCancel, domain.StatusCancelled},
		{domain.EventStartDelivery, domain.StatusCancelled},
		{domain.EventCompleteDelivery, domain.StatusRequested},
	}

	for _, tc := range invalid {
		for _, tr := range domain.Transitions {
			if tr.Event == tc.event && tr.Src == tc.src {
				t.Errorf("unexpected transition: %q from %q should not exist", tc.event, tc.src)
			}
		}
	}
}

func TestEvent_Destination(t *testing.T) {
	dst, ok := domain.EventCompleteDelivery.Destination()
	if !ok || dst != domain.StatusDelivered {
		t.Errorf("Destination = (%q, %v), want (%q, true)", dst, ok, domain.StatusDelivered)
	}
	if _, ok := domain.EventPlace.Destination(); ok {
		t.Error("EventPlace should have no destination")
	}
}
