package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/dockwise/scheduling-portal/internal/domain"
)

func validEmailPayload() domain.EmailPayload {
	return domain.EmailPayload{
		To:               "ops@acme.com",
		ConfirmationCode: "HC46",
		Event:            domain.EmailConfirmation,
		Schedule: domain.ScheduleSnapshot{
			ID:                  46,
			Status:              "scheduled",
			StartTime:           time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
			EndTime:             time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC),
			FacilityName:        "Harbor City DC",
			DockName:            "Dock 3",
			AppointmentTypeName: "Live Unload",
		},
	}
}

func TestNewEmailJob(t *testing.T) {
	t.Run("valid payload builds an email job", func(t *testing.T) {
		j, err := domain.NewEmailJob(2, validEmailPayload())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if j.Kind != domain.KindEmail {
			t.Fatalf("expected kind=email, got %s", j.Kind)
		}
		if j.Email == nil || j.Realtime != nil || j.Push != nil {
			t.Fatal("expected only the email payload to be set")
		}
		if j.ScheduleID == nil || *j.ScheduleID != 46 {
			t.Fatal("expected schedule id to be copied from the snapshot")
		}
		if err := j.Validate(); err != nil {
			t.Fatalf("valid job failed validation: %v", err)
		}
	})

	t.Run("missing tenant rejected", func(t *testing.T) {
		if _, err := domain.NewEmailJob(0, validEmailPayload()); err != domain.ErrMissingTenant {
			t.Fatalf("expected ErrMissingTenant, got %v", err)
		}
	})

	t.Run("unassigned event tag rejected", func(t *testing.T) {
		p := validEmailPayload()
		p.Event = ""
		if _, err := domain.NewEmailJob(2, p); err != domain.ErrInvalidEmailEvent {
			t.Fatalf("expected ErrInvalidEmailEvent, got %v", err)
		}
	})
}

func TestNewRealtimeJob(t *testing.T) {
	j, err := domain.NewRealtimeJob(5, domain.RealtimePayload{
		EventType: "notification_created",
		Data:      map[string]any{"id": "n-1"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if j.Kind != domain.KindRealtime || j.Realtime == nil {
		t.Fatal("expected a realtime job with its payload set")
	}

	if _, err := domain.NewRealtimeJob(5, domain.RealtimePayload{}); err != domain.ErrMissingEventType {
		t.Fatalf("expected ErrMissingEventType, got %v", err)
	}
}

func TestValidate_PayloadKindMismatch(t *testing.T) {
	j, _ := domain.NewEmailJob(2, validEmailPayload())

	t.Run("extra payload for another kind rejected", func(t *testing.T) {
		bad := j
		bad.Realtime = &domain.RealtimePayload{EventType: "x"}
		if err := bad.Validate(); err != domain.ErrPayloadMismatch {
			t.Fatalf("expected ErrPayloadMismatch, got %v", err)
		}
	})

	t.Run("kind flipped away from payload rejected", func(t *testing.T) {
		bad := j
		bad.Kind = domain.KindPush
		if err := bad.Validate(); err != domain.ErrPayloadMismatch {
			t.Fatalf("expected ErrPayloadMismatch, got %v", err)
		}
	})

	t.Run("no payload at all rejected", func(t *testing.T) {
		bad := j
		bad.Email = nil
		if err := bad.Validate(); err != domain.ErrPayloadMismatch {
			t.Fatalf("expected ErrPayloadMismatch, got %v", err)
		}
	})

	t.Run("unknown kind rejected", func(t *testing.T) {
		bad := j
		bad.Kind = "fax"
		if err := bad.Validate(); err != domain.ErrUnknownJobKind {
			t.Fatalf("expected ErrUnknownJobKind, got %v", err)
		}
	})
}

func TestJob_JSONRoundTrip(t *testing.T) {
	j, _ := domain.NewEmailJob(2, validEmailPayload())

	raw, err := json.Marshal(j)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded domain.NotificationJob
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if err := decoded.Validate(); err != nil {
		t.Fatalf("decoded job failed validation: %v", err)
	}
	if decoded.Email.ConfirmationCode != "HC46" {
		t.Fatalf("payload lost in round trip: %+v", decoded.Email)
	}
}

func TestClassifyEmailEvent_Precedence(t *testing.T) {
	old1 := time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC)
	old2 := old1.Add(time.Hour)
	hours := 2

	tests := []struct {
		name     string
		mutate   func(*domain.EmailPayload)
		expected domain.EmailEventKind
	}{
		{"plain scheduled snapshot → confirmation", func(p *domain.EmailPayload) {}, domain.EmailConfirmation},
		{"cancelled status → cancellation", func(p *domain.EmailPayload) {
			p.Schedule.Status = "cancelled"
		}, domain.EmailCancellation},
		{"old times → reschedule", func(p *domain.EmailPayload) {
			p.OldStartTime, p.OldEndTime = &old1, &old2
		}, domain.EmailReschedule},
		{"reminder horizon → reminder", func(p *domain.EmailPayload) {
			p.HoursUntilAppointment = &hours
		}, domain.EmailReminder},
		{"reminder wins over reschedule", func(p *domain.EmailPayload) {
			p.HoursUntilAppointment = &hours
			p.OldStartTime, p.OldEndTime = &old1, &old2
		}, domain.EmailReminder},
		{"reschedule wins over cancellation", func(p *domain.EmailPayload) {
			p.OldStartTime, p.OldEndTime = &old1, &old2
			p.Schedule.Status = "cancelled"
		}, domain.EmailReschedule},
		{"only one old time present falls through", func(p *domain.EmailPayload) {
			p.OldStartTime = &old1
		}, domain.EmailConfirmation},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := validEmailPayload()
			p.Event = ""
			tc.mutate(&p)
			if got := domain.ClassifyEmailEvent(p); got != tc.expected {
				t.Fatalf("expected %s, got %s", tc.expected, got)
			}
		})
	}
}

func TestPriority(t *testing.T) {
	if domain.PriorityNormal.Weight() != 5 || domain.PriorityUrgent.Weight() != 10 {
		t.Fatal("priority weights must be 5 (normal) and 10 (urgent)")
	}
	if domain.PriorityNormal.Concurrency() != 5 || domain.PriorityUrgent.Concurrency() != 10 {
		t.Fatal("worker concurrency must be 5 (normal) and 10 (urgent)")
	}
}

func TestUrgency_QueuePriority(t *testing.T) {
	tests := []struct {
		urgency  domain.Urgency
		expected domain.Priority
	}{
		{domain.UrgencyCritical, domain.PriorityUrgent},
		{domain.UrgencyUrgent, domain.PriorityUrgent},
		{domain.UrgencyWarning, domain.PriorityNormal},
		{domain.UrgencyInfo, domain.PriorityNormal},
		{domain.Urgency("banana"), domain.PriorityNormal},
		{domain.Urgency(""), domain.PriorityNormal},
	}
	for _, tc := range tests {
		if got := tc.urgency.QueuePriority(); got != tc.expected {
			t.Fatalf("urgency %q: expected %s, got %s", tc.urgency, tc.expected, got)
		}
	}
}

func TestRetryPolicy_Backoff(t *testing.T) {
	normal := domain.NormalRetryPolicy()
	if normal.MaxAttempts != 3 || normal.InitialDelay != 2000*time.Millisecond {
		t.Fatalf("unexpected normal policy: %+v", normal)
	}
	urgent := domain.UrgentRetryPolicy()
	if urgent.MaxAttempts != 5 || urgent.InitialDelay != 1000*time.Millisecond {
		t.Fatalf("unexpected urgent policy: %+v", urgent)
	}

	t.Run("exponential from the base delay", func(t *testing.T) {
		for attempt, want := range map[int]time.Duration{
			1: 2 * time.Second,
			2: 4 * time.Second,
			3: 8 * time.Second,
		} {
			if got := normal.Backoff(attempt); got != want {
				t.Fatalf("attempt %d: expected %v, got %v", attempt, want, got)
			}
		}
	})

	t.Run("attempt below one clamps to the base", func(t *testing.T) {
		if got := urgent.Backoff(0); got != time.Second {
			t.Fatalf("expected 1s, got %v", got)
		}
	})
}
