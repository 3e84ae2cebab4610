package socket

import (
	"reflect"
	"testing"

	"github.com/EgorLis/screepsws/internal/sockjs"
)

func TestChannelTopics(t *testing.T) {
	cases := []struct {
		ch   Channel
		want string
	}{
		{ServerMessages(), "server-message"},
		{UserCPU("u1"), "user:u1/cpu"},
		{UserMessages("u1"), "user:u1/newMessage"},
		{UserConversation("u1", "u2"), "user:u1/message:u2"},
		{UserCredits("u1"), "user:u1/money"},
		{UserMemoryPath("u1", "creeps.harvester"), "user:u1/memory/creeps.harvester"},
		{UserConsole("u1"), "user:u1/console"},
		{UserActiveBranch("u1"), "user:u1/set-active-branch"},
		{MapRoomUpdates("E5N39"), "roomMap2:E5N39"},
		{RoomUpdates("E5N39"), "room:E5N39"},
	}
	for _, c := range cases {
		if got := c.ch.Topic(); got != c.want {
			t.Errorf("%v: Topic()=%q want %q", c.ch.Kind(), got, c.want)
		}
		if c.ch.String() != c.want {
			t.Errorf("String()=%q want %q", c.ch.String(), c.want)
		}
	}
}

func TestRetryTableIssuesSmallestFreeHandle(t *testing.T) {
	r := newRetryTable()
	a := r.reserve(FailLogin)
	b := r.reserve(FailLogin)
	c := r.reserve(FailLogin)
	if a != 0 || b != 1 || c != 2 {
		t.Fatalf("handles = %d %d %d, want 0 1 2", a, b, c)
	}

	if st, ok := r.release(b); !ok || st != FailLogin {
		t.Fatalf("release(%d) = %v, %v", b, st, ok)
	}
	if got := r.reserve(FailLogin); got != b {
		t.Fatalf("reuse: got %d want %d", got, b)
	}
	if r.pending() != 3 {
		t.Fatalf("pending = %d, want 3", r.pending())
	}
}

func TestRetryTableReleaseUnknown(t *testing.T) {
	r := newRetryTable()
	if _, ok := r.release(7); ok {
		t.Fatal("unknown handle released")
	}
	h := r.reserve(FailLogin)
	r.release(h)
	if _, ok := r.release(h); ok {
		t.Fatal("double release must fail")
	}
}

func TestFailStateString(t *testing.T) {
	if FailLogin.String() != "login" {
		t.Fatalf("got %q", FailLogin.String())
	}
	if FailState(9).String() != "failstate(9)" {
		t.Fatalf("got %q", FailState(9).String())
	}
}

func TestSenderCommands(t *testing.T) {
	out := &fakeOut{}
	s := NewSender(out, nil)

	steps := []func() error{
		func() error { return s.Subscribe(RoomUpdates("E5N39")) },
		func() error { return s.Unsubscribe(UserCPU("u1")) },
		func() error { return s.SetGzip(true) },
		func() error { return s.SetGzip(false) },
		func() error { return s.SendRaw(`say "hi"`) },
		s.SendEmptyFrame,
		func() error { return s.authenticate("tok123") },
	}
	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}

	want := []string{
		`["subscribe room:E5N39"]`,
		`["unsubscribe user:u1/cpu"]`,
		`["gzip on"]`,
		`["gzip off"]`,
		`["say \"hi\""]`,
		`[]`,
		`["auth tok123"]`,
	}
	if !reflect.DeepEqual(out.sent, want) {
		t.Fatalf("sent:\n got %q\nwant %q", out.sent, want)
	}
}

func TestAuthReplies(t *testing.T) {
	cases := []struct {
		msg     sockjs.Message
		ok      bool
		fresh   string
		matched bool
	}{
		{"auth ok", true, "", true},
		{"auth ok abc", true, "abc", true},
		{"auth failed", false, "", true},
		{"auth okay", false, "", false},
		{`["user:u1/cpu",{"cpu":1}]`, false, "", false},
	}
	for _, c := range cases {
		ok, fresh, matched := parseAuthReply(c.msg)
		if ok != c.ok || string(fresh) != c.fresh || matched != c.matched {
			t.Errorf("%q: got (%v,%q,%v)", c.msg, ok, fresh, matched)
		}
		if AuthSucceeded(c.msg) != (c.ok && c.matched) {
			t.Errorf("%q: AuthSucceeded mismatch", c.msg)
		}
	}
}

func TestDispatchIgnoresControlFrames(t *testing.T) {
	h := &spy{}
	for _, res := range []sockjs.Result{
		{Kind: sockjs.KindOpen},
		{Kind: sockjs.KindHeartbeat},
		{Kind: sockjs.KindClose, Code: 3000, Reason: "bye"},
	} {
		if err := Dispatch(h, res); err != nil {
			t.Fatal(err)
		}
	}
	if len(h.msgs) != 0 {
		t.Fatalf("msgs = %q", h.msgs)
	}
}
