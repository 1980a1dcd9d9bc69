package login

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// xmlrpcSuccessTmpl renders a minimal login_to_simulator success response
// with the fields this package's parser reads.
const xmlrpcSuccessTmpl = `<?xml version="1.0"?>
<methodResponse><params><param><value><struct>
<member><name>login</name><value><string>true</string></value></member>
<member><name>agent_id</name><value><string>%s</string></value></member>
<member><name>session_id</name><value><string>%s</string></value></member>
<member><name>secure_session_id</name><value><string>%s</string></value></member>
<member><name>circuit_code</name><value><i4>%d</i4></value></member>
<member><name>sim_ip</name><value><string>127.0.0.1</string></value></member>
<member><name>sim_port</name><value><i4>9000</i4></value></member>
<member><name>seed_capability</name><value><string>http://127.0.0.1/seed</string></value></member>
<member><name>start_location</name><value><string>last</string></value></member>
<member><name>region_x</name><value><i4>256</i4></value></member>
<member><name>region_y</name><value><i4>256</i4></value></member>
<member><name>message</name><value><string>welcome</string></value></member>
</struct></value></param></params></methodResponse>`

const xmlrpcRejectTmpl = `<?xml version="1.0"?>
<methodResponse><params><param><value><struct>
<member><name>login</name><value><string>false</string></value></member>
<member><name>reason</name><value><string>key</string></value></member>
<member><name>message</name><value><string>Invalid password.</string></value></member>
</struct></value></param></params></methodResponse>`

func TestLoginSuccess(t *testing.T) {
	agentID := "45b5a67d-0000-0000-0000-000000000001"
	sessionID := "45b5a67d-0000-0000-0000-000000000002"
	secure := "45b5a67d-0000-0000-0000-000000000003"

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/xml; charset=utf-8")
		fmt.Fprintf(w, xmlrpcSuccessTmpl, agentID, sessionID, secure, 0xABCDEF)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	resp, err := c.Login(context.Background(), Credentials{
		FirstName: "Test", LastName: "User", Password: "hunter2",
		Start: "last", Channel: "test-viewer",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.AgentID.String() != agentID {
		t.Errorf("agent id = %s, want %s", resp.AgentID, agentID)
	}
	if resp.CircuitCode != 0xABCDEF {
		t.Errorf("circuit code = %x, want %x", resp.CircuitCode, 0xABCDEF)
	}
	if resp.SimAddress() != "127.0.0.1:9000" {
		t.Errorf("sim address = %s, want 127.0.0.1:9000", resp.SimAddress())
	}
	if resp.SeedCapability != "http://127.0.0.1/seed" {
		t.Errorf("seed capability = %s", resp.SeedCapability)
	}
}

func TestLoginRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/xml; charset=utf-8")
		fmt.Fprint(w, xmlrpcRejectTmpl)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Login(context.Background(), Credentials{FirstName: "Test", LastName: "User", Password: "wrong"})
	if err == nil {
		t.Fatal("expected an error")
	}
	var rej *RejectError
	if !asRejectError(err, &rej) {
		t.Fatalf("expected *RejectError, got %T: %v", err, err)
	}
	if rej.Reason != RejectCredentials {
		t.Errorf("reason = %v, want %v", rej.Reason, RejectCredentials)
	}
}

func TestLoginConnectionFailure(t *testing.T) {
	c := NewClient("http://127.0.0.1:1/nonexistent")
	_, err := c.Login(context.Background(), Credentials{FirstName: "a", LastName: "b", Password: "c"})
	if err == nil {
		t.Fatal("expected a connection error")
	}
}

func TestHashPasswordFormat(t *testing.T) {
	h := hashPassword("hunter2")
	if !strings.HasPrefix(h, "$1$") {
		t.Fatalf("hash %q missing $1$ prefix", h)
	}
	if len(h) != len("$1$")+32 {
		t.Fatalf("hash %q has unexpected length", h)
	}
}

// asRejectError is a small errors.As wrapper kept local to the test so the
// package itself need not import errors just for this.
func asRejectError(err error, target **RejectError) bool {
	for err != nil {
		if rej, ok := err.(*RejectError); ok {
			*target = rej
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
