package services

import (
	"context"
	"sort"
	"testing"

	"github.com/tbourn/chegaja-engine/internal/domain"
	"github.com/tbourn/chegaja-engine/internal/events"
)

func TestStatusChangeEffects_SameStatusProducesNothing(t *testing.T) {
	before := domain.Order{ID: "o1", ClientID: "c1", ProviderID: "p1", Status: domain.StatusAccepted}
	after := before
	after.Title = "edited"
	if effs := StatusChangeEffects(before, after); len(effs) != 0 {
		t.Fatalf("expected no effects, got %d", len(effs))
	}
}

func TestStatusChangeEffects_ComparesRawValues(t *testing.T) {
	before := domain.Order{ID: "o1", ClientID: "c1", Status: domain.StatusAccepted}
	after := before
	after.Status = domain.StatusAccepted + " "
	effs := StatusChangeEffects(before, after)
	if len(effs) != 1 {
		t.Fatalf("whitespace-only change should notify the client, got %d effects", len(effs))
	}
	if n := effs[0].(events.Notify); n.Notification.Status != after.Status {
		t.Fatalf("status = %q; want %q", n.Notification.Status, after.Status)
	}
}

func TestStatusChangeEffects_Recipients(t *testing.T) {
	cases := []struct {
		name  string
		after domain.Order
		want  []string
	}{
		{"assigned notifies both", domain.Order{ID: "o1", ClientID: "c1", ProviderID: "p1", Status: domain.StatusInProgress}, []string{"c1", "p1"}},
		{"unassigned notifies client", domain.Order{ID: "o1", ClientID: "c1", Status: domain.StatusCanceled}, []string{"c1"}},
		{"no client notifies nobody", domain.Order{ID: "o1", ProviderID: "p1", Status: domain.StatusCanceled}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			eff := &recordingEffects{}
			n := &OrderNotifier{Effects: eff}
			if err := n.OnOrderUpdated(context.Background(), domain.Order{ID: "o1", Status: domain.StatusAccepted}, tc.after); err != nil {
				t.Fatalf("OnOrderUpdated: %v", err)
			}
			var got []string
			for _, x := range eff.notifies() {
				got = append(got, x.UserID)
				if x.Notification.Title != titleOrderUpdated || x.Notification.Status != tc.after.Status {
					t.Fatalf("unexpected notification %+v", x.Notification)
				}
				if x.Notification.Data["status"] != tc.after.Status || x.Notification.Data["pedidoId"] != "o1" {
					t.Fatalf("unexpected data %+v", x.Notification.Data)
				}
			}
			sort.Strings(got)
			if len(got) != len(tc.want) {
				t.Fatalf("recipients = %v; want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("recipients = %v; want %v", got, tc.want)
				}
			}
			if tc.want == nil && eff.calls != 0 {
				t.Fatalf("nothing must be applied without recipients")
			}
		})
	}
}

func TestStatusBody(t *testing.T) {
	if got := StatusBody(domain.StatusCompleted); got != "Serviço concluído." {
		t.Fatalf("StatusBody(completed) = %q", got)
	}
	if got := StatusBody(domain.StatusAwaitingClient); got != "Recebeste uma proposta de preço." {
		t.Fatalf("StatusBody(awaiting) = %q", got)
	}
	if got := StatusBody("em_disputa"); got != "Estado: em_disputa" {
		t.Fatalf("StatusBody(unknown) = %q", got)
	}
}
