package push

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"gorm.io/gorm"

	"github.com/tbourn/chegaja-engine/internal/domain"
)

// ---- fakes ----

type memEndpoints struct {
	mu      sync.Mutex
	tokens  map[string][]string
	listErr error
	retired [][]string
}

func (m *memEndpoints) ListEndpoints(_ context.Context, _ *gorm.DB, userID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	return append([]string(nil), m.tokens[userID]...), nil
}

func (m *memEndpoints) RetireEndpoints(_ context.Context, _ *gorm.DB, userID string, tokens []string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.retired = append(m.retired, tokens)
	drop := map[string]bool{}
	for _, t := range tokens {
		drop[t] = true
	}
	var keep []string
	var n int64
	for _, t := range m.tokens[userID] {
		if drop[t] {
			n++
			continue
		}
		keep = append(keep, t)
	}
	m.tokens[userID] = keep
	return n, nil
}

type memInbox struct {
	mu   sync.Mutex
	err  error
	recs []domain.Notification
}

func (m *memInbox) CreateNotification(_ context.Context, _ *gorm.DB, n *domain.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.recs = append(m.recs, *n)
	return nil
}

type fakeGateway struct {
	mu      sync.Mutex
	reasons map[string]string // token -> failure reason; absent = success
	failOn  string            // a batch containing this token fails entirely
	batches [][]string
	msgs    []Message
}

func (g *fakeGateway) SendMulticast(_ context.Context, msg Message, tokens []string) ([]Result, error) {
	g.mu.Lock()
	g.batches = append(g.batches, append([]string(nil), tokens...))
	g.msgs = append(g.msgs, msg)
	g.mu.Unlock()

	out := make([]Result, len(tokens))
	for i, t := range tokens {
		if t == g.failOn {
			return nil, errors.New("gateway unavailable")
		}
		out[i] = Result{Token: t, Success: true, MessageID: "m-" + t}
		if r, ok := g.reasons[t]; ok {
			out[i] = Result{Token: t, Reason: r}
		}
	}
	return out, nil
}

func tokensN(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("tok-%04d", i)
	}
	return out
}

// ---- tests ----

func TestDispatch_RetiresOnlyDeadTokens(t *testing.T) {
	eps := &memEndpoints{tokens: map[string][]string{"u1": {"dead", "invalid", "flaky", "ok"}}}
	gw := &fakeGateway{reasons: map[string]string{
		"dead":    ReasonNotRegistered,
		"invalid": ReasonInvalidToken,
		"flaky":   ReasonInternal,
	}}
	inbox := &memInbox{}
	f := &Fanout{Endpoints: eps, Inbox: inbox, Gateway: gw, ProductName: "ChegaJá"}

	before := testutil.ToFloat64(pushRetired)
	if err := f.Dispatch(context.Background(), "u1", Notification{Type: domain.NotificationOrderStatus, Body: "x"}); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	left := eps.tokens["u1"]
	sort.Strings(left)
	if fmt.Sprint(left) != "[flaky ok]" {
		t.Fatalf("remaining tokens = %v; want [flaky ok]", left)
	}
	if len(eps.retired) != 1 {
		t.Fatalf("expected a single retire call, got %d", len(eps.retired))
	}
	if got := testutil.ToFloat64(pushRetired) - before; got != 2 {
		t.Fatalf("retired counter delta = %v; want 2", got)
	}
	if len(inbox.recs) != 1 || inbox.recs[0].UserID != "u1" {
		t.Fatalf("expected one in-app record, got %+v", inbox.recs)
	}
}

func TestDispatch_BatchesOf500(t *testing.T) {
	eps := &memEndpoints{tokens: map[string][]string{"u1": tokensN(1201)}}
	gw := &fakeGateway{}
	f := &Fanout{Endpoints: eps, Gateway: gw}

	if err := f.Dispatch(context.Background(), "u1", Notification{Title: "t"}); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	var sizes []int
	seen := map[string]bool{}
	for _, b := range gw.batches {
		sizes = append(sizes, len(b))
		for _, tok := range b {
			if seen[tok] {
				t.Fatalf("token %s sent twice", tok)
			}
			seen[tok] = true
		}
	}
	sort.Ints(sizes)
	if fmt.Sprint(sizes) != "[201 500 500]" {
		t.Fatalf("batch sizes = %v; want [201 500 500]", sizes)
	}
	if len(seen) != 1201 {
		t.Fatalf("delivered %d distinct tokens; want 1201", len(seen))
	}
}

func TestDispatch_FailedBatchDoesNotBlockOthers(t *testing.T) {
	toks := tokensN(10)
	eps := &memEndpoints{tokens: map[string][]string{"u1": toks}}
	gw := &fakeGateway{
		failOn:  toks[0],
		reasons: map[string]string{toks[9]: ReasonNotRegistered},
	}
	f := &Fanout{Endpoints: eps, Gateway: gw, BatchSize: 3}

	if err := f.Dispatch(context.Background(), "u1", Notification{Title: "t"}); err != nil {
		t.Fatalf("batch failure must not surface: %v", err)
	}
	if len(gw.batches) != 4 {
		t.Fatalf("expected 4 batches attempted, got %d", len(gw.batches))
	}
	for _, tok := range eps.tokens["u1"] {
		if tok == toks[9] {
			t.Fatalf("dead token in a healthy batch should still be retired")
		}
	}
	if len(eps.tokens["u1"]) != 9 {
		t.Fatalf("only the dead token may be removed, left %d", len(eps.tokens["u1"]))
	}
}

func TestDispatch_NoEndpoints_RecordsInAppOnly(t *testing.T) {
	eps := &memEndpoints{tokens: map[string][]string{}}
	gw := &fakeGateway{}
	inbox := &memInbox{}
	f := &Fanout{Endpoints: eps, Inbox: inbox, Gateway: gw}

	if err := f.Dispatch(context.Background(), "u1", Notification{Title: "hi"}); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if len(gw.batches) != 0 {
		t.Fatalf("gateway must not be called without endpoints")
	}
	if len(inbox.recs) != 1 {
		t.Fatalf("in-app record must still be written")
	}
}

func TestDispatch_InboxFailureSwallowed(t *testing.T) {
	eps := &memEndpoints{tokens: map[string][]string{"u1": {"a"}}}
	gw := &fakeGateway{}
	f := &Fanout{Endpoints: eps, Inbox: &memInbox{err: errors.New("db down")}, Gateway: gw}

	if err := f.Dispatch(context.Background(), "u1", Notification{Title: "hi"}); err != nil {
		t.Fatalf("inbox failure must not surface: %v", err)
	}
	if len(gw.batches) != 1 {
		t.Fatalf("push must still be sent")
	}
}

func TestDispatch_ListFailureReturned(t *testing.T) {
	eps := &memEndpoints{listErr: errors.New("boom")}
	f := &Fanout{Endpoints: eps, Gateway: &fakeGateway{}}
	if err := f.Dispatch(context.Background(), "u1", Notification{}); err == nil {
		t.Fatalf("expected list error")
	}
}

func TestDispatch_PayloadNormalization(t *testing.T) {
	eps := &memEndpoints{tokens: map[string][]string{"u1": {"a"}}}
	gw := &fakeGateway{}
	inbox := &memInbox{}
	f := &Fanout{Endpoints: eps, Inbox: inbox, Gateway: gw, ProductName: "ChegaJá"}

	n := Notification{
		Type:     domain.NotificationNewOrder,
		Body:     "in-app body",
		PushBody: "push body",
		OrderID:  "o1",
		Data:     map[string]any{"pedidoId": "o1", "openChat": true, "n": 3, "price": 49.9, "nil": nil},
	}
	if err := f.Dispatch(context.Background(), "u1", n); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	msg := gw.msgs[0]
	if msg.Title != "ChegaJá" {
		t.Fatalf("title = %q; want product name", msg.Title)
	}
	if msg.Body != "push body" {
		t.Fatalf("body = %q; want push override", msg.Body)
	}
	want := map[string]string{"pedidoId": "o1", "openChat": "true", "n": "3", "price": "49.9", "nil": "", "type": domain.NotificationNewOrder}
	if fmt.Sprint(msg.Data) != fmt.Sprint(want) {
		t.Fatalf("data = %v; want %v", msg.Data, want)
	}
	if inbox.recs[0].Body != "in-app body" || inbox.recs[0].OrderID != "o1" {
		t.Fatalf("in-app record = %+v", inbox.recs[0])
	}
}

func TestBatches(t *testing.T) {
	if got := Batches(nil, 500); len(got) != 0 {
		t.Fatalf("expected no batches for no tokens, got %d", len(got))
	}
	got := Batches(tokensN(5), 2)
	if len(got) != 3 || len(got[2]) != 1 {
		t.Fatalf("unexpected batches %v", got)
	}
	if got := Batches(tokensN(3), 0); len(got) != 1 {
		t.Fatalf("size 0 should fall back to max batch size")
	}
}

func TestStringifyData_Nested(t *testing.T) {
	out := StringifyData(map[string]any{"m": map[string]any{"a": 1}, "s": []string{"x"}})
	if out["m"] != `{"a":1}` || out["s"] != `["x"]` {
		t.Fatalf("unexpected %v", out)
	}
}

func TestRetirable(t *testing.T) {
	for reason, want := range map[string]bool{
		ReasonNotRegistered:   true,
		ReasonInvalidToken:    true,
		ReasonInvalidArgument: false,
		ReasonInternal:        false,
		ReasonQuotaExceeded:   false,
		ReasonUnavailable:     false,
		"":                    false,
	} {
		if Retirable(reason) != want {
			t.Errorf("Retirable(%q) = %v; want %v", reason, !want, want)
		}
	}
}

// Payload problems reported as INVALID_ARGUMENT must not retire endpoints.
func TestInvalidArgumentReason(t *testing.T) {
	cases := map[string]string{
		"The registration token is not a valid FCM registration token": ReasonInvalidToken,
		"Invalid registration token provided":                          ReasonInvalidToken,
		"Message payload exceeds the maximum size":                     ReasonInvalidArgument,
		"Invalid data payload key: from":                               ReasonInvalidArgument,
	}
	for msg, want := range cases {
		got := invalidArgumentReason(errors.New(msg))
		if got != want {
			t.Errorf("invalidArgumentReason(%q) = %q; want %q", msg, got, want)
		}
		if Retirable(got) != (want == ReasonInvalidToken) {
			t.Errorf("Retirable(%q) mismatch for %q", got, msg)
		}
	}
}

func TestBuildMulticast_DeliveryHints(t *testing.T) {
	m := buildMulticast(Message{Title: "t", Body: "b", Data: map[string]string{"k": "v"}}, []string{"a", "b"})
	if m.Android == nil || m.Android.Priority != "high" || m.Android.Notification.Sound != "default" {
		t.Fatalf("android hints missing: %+v", m.Android)
	}
	if m.APNS == nil || m.APNS.Payload.Aps.Sound != "default" {
		t.Fatalf("apns hints missing: %+v", m.APNS)
	}
	if m.Notification.Title != "t" || m.Data["k"] != "v" || len(m.Tokens) != 2 {
		t.Fatalf("unexpected message %+v", m)
	}
	if classify(nil) != ReasonUnknown {
		t.Fatalf("nil error should classify as unknown")
	}
}

func TestLogGateway_AllSucceed(t *testing.T) {
	res, err := LogGateway{}.SendMulticast(context.Background(), Message{}, []string{"a", "b"})
	if err != nil || len(res) != 2 || !res[0].Success || res[1].Token != "b" {
		t.Fatalf("unexpected %v %v", res, err)
	}
}
