package channel

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestRecordingSenderLogsOnlyChannelAndRecipient(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	s := NewRecordingSender(logger)

	res, err := s.Send(context.Background(), Message{Kind: KindEmail, Recipient: "bob@example.com", Subject: "hello", Body: "secret body text"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if !strings.HasPrefix(res.ExternalID, "mock-") || res.Status != "sent" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if strings.Contains(buf.String(), "secret body text") || strings.Contains(buf.String(), "hello") {
		t.Fatalf("message content leaked into log: %s", buf.String())
	}
	if got := s.Sent(); len(got) != 1 || got[0].Recipient != "bob@example.com" {
		t.Fatalf("unexpected recorded messages: %+v", got)
	}

	call, _ := s.Send(context.Background(), Message{Kind: KindCall, Recipient: "+15550001"})
	if call.Status != "completed" {
		t.Fatalf("expected completed call status, got %q", call.Status)
	}
}

func TestRecordingSenderKeepsBoundedHistory(t *testing.T) {
	s := NewRecordingSender(slog.New(slog.NewTextHandler(io.Discard, nil)))
	for i := 0; i < recordingCapacity+10; i++ {
		_, _ = s.Send(context.Background(), Message{Kind: KindSMS, Recipient: "+1"})
	}
	if got := len(s.Sent()); got != recordingCapacity {
		t.Fatalf("expected %d recorded messages, got %d", recordingCapacity, got)
	}
}

func TestTwilioSMSSenderPostsForm(t *testing.T) {
	var gotPath, gotUser, gotPass string
	var gotForm url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUser, gotPass, _ = r.BasicAuth()
		_ = r.ParseForm()
		gotForm = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"sid":"SM123","status":"queued"}`))
	}))
	defer srv.Close()

	s := NewTwilioSMSSender(srv.Client(), TwilioSettings{APIBaseURL: srv.URL, AccountSID: "AC1", AuthToken: "tok", FromNumber: "+15550000"})
	res, err := s.Send(context.Background(), Message{Kind: KindSMS, Recipient: "+15551234", Body: "hi"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if res.ExternalID != "SM123" || res.Status != "sent" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if gotPath != "/2010-04-01/Accounts/AC1/Messages.json" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotUser != "AC1" || gotPass != "tok" {
		t.Fatalf("unexpected basic auth %q/%q", gotUser, gotPass)
	}
	if gotForm.Get("To") != "+15551234" || gotForm.Get("From") != "+15550000" || gotForm.Get("Body") != "hi" {
		t.Fatalf("unexpected form %v", gotForm)
	}
}

func TestTwilioCallSenderEscapesTwiML(t *testing.T) {
	var twiml string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		twiml = r.PostForm.Get("Twiml")
		_, _ = w.Write([]byte(`{"sid":"CA9","status":"queued"}`))
	}))
	defer srv.Close()

	s := NewTwilioCallSender(srv.Client(), TwilioSettings{APIBaseURL: srv.URL, AccountSID: "AC1", AuthToken: "tok", FromNumber: "+1"})
	res, err := s.Send(context.Background(), Message{Kind: KindCall, Recipient: "+2", Body: "a < b & c"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if res.ExternalID != "CA9" || res.Status != "completed" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if twiml != "<Response><Say>a &lt; b &amp; c</Say></Response>" {
		t.Fatalf("unexpected twiml %q", twiml)
	}
}

func TestTwilioSenderSurfacesProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":21211,"message":"invalid To number"}`))
	}))
	defer srv.Close()

	s := NewTwilioSMSSender(srv.Client(), TwilioSettings{APIBaseURL: srv.URL, AccountSID: "AC1"})
	_, err := s.Send(context.Background(), Message{Kind: KindSMS, Recipient: "bad"})
	if err == nil || !strings.Contains(err.Error(), "21211") {
		t.Fatalf("expected provider error, got %v", err)
	}
}

func TestSMTPEmailSender(t *testing.T) {
	srv := newFakeSMTPServer(t)
	s := NewSMTPEmailSender(srv.settings("crm@example.com"))

	res, err := s.Send(context.Background(), Message{Kind: KindEmail, Recipient: "bob@example.com", Subject: "Hi", Body: "line1\nline2"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	from, to, data := srv.received()
	if from != "<crm@example.com>" || len(to) != 1 || to[0] != "<bob@example.com>" {
		t.Fatalf("unexpected envelope from=%q to=%v", from, to)
	}
	if !strings.Contains(data, "Subject: Hi\r\n") || !strings.Contains(data, "line1\r\nline2") {
		t.Fatalf("unexpected message: %q", data)
	}
	if !strings.HasSuffix(res.ExternalID, "@127.0.0.1>") {
		t.Fatalf("unexpected message id %q", res.ExternalID)
	}

	if _, err := s.Send(context.Background(), Message{Recipient: "a@b.c\r\nBcc: x@y.z"}); err == nil {
		t.Fatal("expected header injection to be rejected")
	}
}

func TestSMTPEmailSenderUnblocksOnCancel(t *testing.T) {
	settings := newSilentSMTPServer(t)
	s := NewSMTPEmailSender(settings)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)
	start := time.Now()
	if _, err := s.Send(ctx, Message{Recipient: "a@b.c"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("send stayed blocked for %s", elapsed)
	}
}

func TestSMTPEmailSenderTimesOutWithoutDeadline(t *testing.T) {
	settings := newSilentSMTPServer(t)
	s := NewSMTPEmailSender(settings)
	s.timeout = 50 * time.Millisecond

	start := time.Now()
	if _, err := s.Send(context.Background(), Message{Recipient: "a@b.c"}); err == nil {
		t.Fatal("expected a timeout against a silent server")
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("send stayed blocked for %s", elapsed)
	}
}

type fakeSMTPServer struct {
	addr string
	mu   sync.Mutex
	from string
	to   []string
	data string
}

// newFakeSMTPServer accepts sessions and answers the minimal command set
// net/smtp uses without STARTTLS or AUTH.
func newFakeSMTPServer(t *testing.T) *fakeSMTPServer {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { _ = ln.Close() })
	srv := &fakeSMTPServer{addr: ln.Addr().String()}
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go srv.serve(conn)
		}
	}()
	return srv
}

func (f *fakeSMTPServer) serve(conn net.Conn) {
	defer conn.Close()
	r := bufio.NewReader(conn)
	reply := func(s string) { _, _ = conn.Write([]byte(s + "\r\n")) }
	reply("220 fake.test ESMTP")
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimRight(line, "\r\n")
		cmd := strings.ToUpper(line)
		switch {
		case strings.HasPrefix(cmd, "EHLO"), strings.HasPrefix(cmd, "HELO"):
			reply("250 fake.test")
		case strings.HasPrefix(cmd, "MAIL FROM:"):
			f.mu.Lock()
			f.from = line[len("MAIL FROM:"):]
			f.mu.Unlock()
			reply("250 OK")
		case strings.HasPrefix(cmd, "RCPT TO:"):
			f.mu.Lock()
			f.to = append(f.to, line[len("RCPT TO:"):])
			f.mu.Unlock()
			reply("250 OK")
		case cmd == "DATA":
			reply("354 end with <CRLF>.<CRLF>")
			var b strings.Builder
			for {
				l, err := r.ReadString('\n')
				if err != nil {
					return
				}
				if l == ".\r\n" {
					break
				}
				b.WriteString(l)
			}
			f.mu.Lock()
			f.data = b.String()
			f.mu.Unlock()
			reply("250 queued")
		case cmd == "QUIT":
			reply("221 bye")
			return
		default:
			reply("250 OK")
		}
	}
}

func (f *fakeSMTPServer) settings(from string) SMTPSettings {
	host, port, _ := net.SplitHostPort(f.addr)
	p, _ := strconv.Atoi(port)
	return SMTPSettings{Host: host, Port: p, From: from}
}

func (f *fakeSMTPServer) received() (string, []string, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.from, append([]string(nil), f.to...), f.data
}

// newSilentSMTPServer accepts connections and never sends a greeting.
func newSilentSMTPServer(t *testing.T) SMTPSettings {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	var (
		mu    sync.Mutex
		conns []net.Conn
	)
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			mu.Lock()
			conns = append(conns, conn)
			mu.Unlock()
		}
	}()
	t.Cleanup(func() {
		_ = ln.Close()
		mu.Lock()
		defer mu.Unlock()
		for _, c := range conns {
			_ = c.Close()
		}
	})
	host, port, _ := net.SplitHostPort(ln.Addr().String())
	p, _ := strconv.Atoi(port)
	return SMTPSettings{Host: host, Port: p, From: "f@h"}
}

func TestNewSendersSelectsByMode(t *testing.T) {
	senders, err := NewSenders(Settings{EmailMode: "mock", SMSMode: "twilio", CallMode: "mock"}, nil, nil)
	if err != nil {
		t.Fatalf("new senders: %v", err)
	}
	if Mode(senders.Email) != "mock" || Mode(senders.SMS) != "twilio" || Mode(senders.Call) != "mock" {
		t.Fatalf("unexpected modes %s/%s/%s", Mode(senders.Email), Mode(senders.SMS), Mode(senders.Call))
	}
	if senders.Email != senders.Call {
		t.Fatal("expected mock channels to share one recorder")
	}
	if _, err := NewSenders(Settings{EmailMode: "pigeon", SMSMode: "mock", CallMode: "mock"}, nil, nil); !errors.Is(err, ErrUnsupportedMode) {
		t.Fatalf("expected ErrUnsupportedMode, got %v", err)
	}
}
