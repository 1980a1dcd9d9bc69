package session

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/benthic-mmo/metaverse-client-sub001/codec"
	"github.com/benthic-mmo/metaverse-client-sub001/internal/log"
	"github.com/benthic-mmo/metaverse-client-sub001/messages"
	"github.com/benthic-mmo/metaverse-client-sub001/messages/chat"
	"github.com/benthic-mmo/metaverse-client-sub001/messages/core"
	"github.com/benthic-mmo/metaverse-client-sub001/login"
	"github.com/benthic-mmo/metaverse-client-sub001/transport"
)

const xmlrpcSuccessTmpl = `<?xml version="1.0"?>
<methodResponse><params><param><value><struct>
<member><name>login</name><value><string>true</string></value></member>
<member><name>agent_id</name><value><string>%s</string></value></member>
<member><name>session_id</name><value><string>%s</string></value></member>
<member><name>circuit_code</name><value><i4>%d</i4></value></member>
<member><name>sim_ip</name><value><string>%s</string></value></member>
<member><name>sim_port</name><value><i4>%d</i4></value></member>
</struct></value></param></params></methodResponse>`

// TestLoginThenChatRoundTrip drives spec scenario S1: a mock XML-RPC login
// endpoint hands out an agent/session/circuit identity and a datagram echo
// port; after logging in, UseCircuitCode and CompleteAgentMovement must
// appear on the wire, and a ChatFromViewer sent afterward must come back
// off the echo socket unchanged.
func TestLoginThenChatRoundTrip(t *testing.T) {
	echoConn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatal(err)
	}
	defer echoConn.Close()
	echoAddr := echoConn.LocalAddr().(*net.UDPAddr)

	agentID := "45b5a67d-0000-0000-0000-000000000001"
	sessionID := "45b5a67d-0000-0000-0000-000000000002"

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/xml; charset=utf-8")
		fmt.Fprintf(w, xmlrpcSuccessTmpl, agentID, sessionID, 0xABCDEF, echoAddr.IP.String(), echoAddr.Port)
	}))
	defer srv.Close()

	loginClient := login.NewClient(srv.URL)
	resp, err := loginClient.Login(context.Background(), login.Credentials{
		FirstName: "Test", LastName: "User", Password: "hunter2", Start: "last",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	logger := log.NewDiscardLogger()
	sock, err := transport.Dial(context.Background(), resp.SimAddress(), transport.DefaultConfig(), logger)
	if err != nil {
		t.Fatal(err)
	}

	identity := Identity{AgentID: resp.AgentID, SessionID: resp.SessionID, CircuitCode: resp.CircuitCode}
	sess := New(sock, identity, logger)
	inbound := sess.Subscribe()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sess.Start(ctx)
	defer sess.Stop()

	if err := sess.Send(core.UseCircuitCode{
		Code: identity.CircuitCode, SessionID: identity.SessionID, AgentID: identity.AgentID,
	}, true); err != nil {
		t.Fatalf("UseCircuitCode send: %v", err)
	}
	if err := sess.Send(core.CompleteAgentMovement{
		AgentID: identity.AgentID, SessionID: identity.SessionID, CircuitCode: identity.CircuitCode,
	}, true); err != nil {
		t.Fatalf("CompleteAgentMovement send: %v", err)
	}

	buf := make([]byte, 2048)
	echoConn.SetReadDeadline(time.Now().Add(2 * time.Second))

	n, clientAddr, err := echoConn.ReadFromUDP(buf)
	if err != nil {
		t.Fatalf("expected UseCircuitCode on the wire: %v", err)
	}
	first, err := codec.DecodeRaw(buf[:n])
	if err != nil {
		t.Fatal(err)
	}
	firstBody, err := messages.Decode(first.Frequency, first.ID, first.Body)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := firstBody.(core.UseCircuitCode); !ok {
		t.Fatalf("expected UseCircuitCode first, got %T", firstBody)
	}

	n, _, err = echoConn.ReadFromUDP(buf)
	if err != nil {
		t.Fatalf("expected CompleteAgentMovement on the wire: %v", err)
	}
	second, err := codec.DecodeRaw(buf[:n])
	if err != nil {
		t.Fatal(err)
	}
	secondBody, err := messages.Decode(second.Frequency, second.ID, second.Body)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := secondBody.(core.CompleteAgentMovement); !ok {
		t.Fatalf("expected CompleteAgentMovement second, got %T", secondBody)
	}

	if err := sess.Send(chat.ChatFromViewer{
		AgentID: identity.AgentID, SessionID: identity.SessionID,
		Message: "hello", Type: chat.ChatTypeNormal, Channel: 0,
	}, true); err != nil {
		t.Fatalf("chat send: %v", err)
	}

	n, _, err = echoConn.ReadFromUDP(buf)
	if err != nil {
		t.Fatalf("expected chat packet on the wire: %v", err)
	}
	third, err := codec.DecodeRaw(buf[:n])
	if err != nil {
		t.Fatal(err)
	}
	chatBody, err := messages.Decode(third.Frequency, third.ID, third.Body)
	if err != nil {
		t.Fatal(err)
	}
	viewerChat, ok := chatBody.(chat.ChatFromViewer)
	if !ok {
		t.Fatalf("expected ChatFromViewer, got %T", chatBody)
	}
	if viewerChat.Message != "hello" {
		t.Fatalf("message = %q, want %q", viewerChat.Message, "hello")
	}

	echoRaw := codec.RawPacket{
		Prefix:    third.Prefix,
		Frequency: third.Frequency,
		ID:        third.ID,
		Body:      third.Body,
	}
	if _, err := echoConn.WriteToUDP(codec.EncodeRaw(echoRaw), clientAddr); err != nil {
		t.Fatal(err)
	}

	select {
	case body := <-inbound:
		echoed, ok := body.(chat.ChatFromViewer)
		if !ok {
			t.Fatalf("expected echoed ChatFromViewer, got %T", body)
		}
		if echoed.Message != "hello" {
			t.Fatalf("echoed message = %q, want %q", echoed.Message, "hello")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for chat echo")
	}
}
