package audit

import (
	"context"
	"testing"
)

func TestService_AppendRequiresTypeAndActor(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)

	if err := svc.Append(context.Background(), Event{Type: EventTypeAdminAction}); err == nil {
		t.Fatalf("expected error for missing actor")
	}
	if err := svc.Append(context.Background(), Event{ActorUserID: "u"}); err == nil {
		t.Fatalf("expected error for missing type")
	}
}

func TestService_AppendsImmutableEvents(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)

	if err := svc.LogAdminAction(context.Background(), "u", "admin", "1.2.3.4", "did something", "{}"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	evs := repo.Events()
	if len(evs) != 1 {
		t.Fatalf("expected 1 event")
	}
	if evs[0].IPAddress != "1.2.3.4" {
		t.Fatalf("expected ip captured")
	}
	if evs[0].Type != EventTypeAdminAction {
		t.Fatalf("expected admin_action")
	}
	if evs[0].ID == "" || evs[0].CreatedAt.IsZero() {
		t.Fatalf("id and timestamp not assigned")
	}
}

func TestService_RecordCampaignControl(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)

	svc.RecordCampaignControl(context.Background(), "u1", "camp-1", "pause")

	evs := repo.Events()
	if len(evs) != 1 {
		t.Fatalf("expected 1 event")
	}
	e := evs[0]
	if e.Type != EventTypeCampaignControl || e.ActorUserID != "u1" || e.CampaignID != "camp-1" || e.Action != "pause" {
		t.Fatalf("event = %+v", e)
	}
}
