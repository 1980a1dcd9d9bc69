// Package login implements the XML-RPC login_to_simulator handshake
// (spec §4.4): submitting credentials to a grid login endpoint, parsing
// the response into a session identity plus simulator address and seed
// capability URL, and classifying the structured failure modes a caller
// needs to distinguish (connection, fault, rejection reason).
//
// Grounded on the teacher's habit of wrapping a narrow third-party
// client behind a small typed API (ingest's use of external transports
// behind IngestMuxer) rather than calling the RPC library directly from
// call sites; the RPC client itself is github.com/kolo/xmlrpc, already a
// direct dependency of the teacher.
package login

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kolo/xmlrpc"
)

// Timeout bounds the whole login round trip per spec §5 ("login <= 30s").
const Timeout = 30 * time.Second

// Credentials are the viewer-supplied login fields.
type Credentials struct {
	FirstName   string
	LastName    string
	Password    string // plaintext; hashed before leaving this package
	Start       string // "last", "home", or a region URI
	Channel     string // viewer fingerprint / channel name
	Version     string
	Platform    string
	MAC         string
	ID0         string
	Options     []string // requested-option list, e.g. "inventory-root", "buddy-list"
}

// RejectReason enumerates the structured reasons a grid can refuse a
// login, per spec §7 ("Login rejection ... carries a reason code").
type RejectReason int

const (
	RejectUnknown RejectReason = iota
	RejectCredentials
	RejectTOS
	RejectMaintenance
	RejectRegionFull
	RejectAlreadyLoggedIn
	RejectConnection
)

func (r RejectReason) String() string {
	switch r {
	case RejectCredentials:
		return "credentials"
	case RejectTOS:
		return "tos"
	case RejectMaintenance:
		return "maintenance"
	case RejectRegionFull:
		return "region_full"
	case RejectAlreadyLoggedIn:
		return "already_logged_in"
	case RejectConnection:
		return "connection"
	}
	return "unknown"
}

// RejectError is returned when the grid answers the call but declines to
// log the agent in (as opposed to a transport-level or XML-RPC fault).
type RejectError struct {
	Reason  RejectReason
	Message string
}

func (e *RejectError) Error() string {
	return fmt.Sprintf("login rejected (%s): %s", e.Reason, e.Message)
}

// Response is the parsed form of a successful login_to_simulator reply.
type Response struct {
	AgentID        uuid.UUID
	SessionID      uuid.UUID
	SecureSessionID uuid.UUID
	CircuitCode    uint32
	SimIP          string
	SimPort        uint16
	SeedCapability string
	InventoryRoot  uuid.UUID
	StartLocation  string
	RegionX        uint32
	RegionY        uint32
	HomeSimURI     string
	MessageOfDay   string
}

// SimAddress is the "host:port" dial string for the datagram circuit.
func (r Response) SimAddress() string {
	return fmt.Sprintf("%s:%d", r.SimIP, r.SimPort)
}

// Client issues login_to_simulator calls against a single grid endpoint.
type Client struct {
	LoginURI string
	HTTP     *http.Client
}

func NewClient(loginURI string) *Client {
	return &Client{
		LoginURI: loginURI,
		HTTP:     &http.Client{Timeout: Timeout},
	}
}

// hashPassword reproduces the protocol's canonical "$1$<md5 hex>" password
// digest form.
func hashPassword(plain string) string {
	sum := md5.Sum([]byte(plain))
	return "$1$" + hex.EncodeToString(sum[:])
}

// Login performs the XML-RPC round trip and parses the response. Three
// distinct failure shapes are returned, matching spec §7: a plain error
// for connection failure or XML-RPC fault, and *RejectError for an
// authenticated-but-refused login.
func (c *Client) Login(ctx context.Context, creds Credentials) (Response, error) {
	client, err := xmlrpc.NewClient(c.LoginURI, c.HTTP.Transport)
	if err != nil {
		return Response{}, fmt.Errorf("login: %w", &RejectError{Reason: RejectConnection, Message: err.Error()})
	}
	defer client.Close()

	options := creds.Options
	if options == nil {
		options = []string{}
	}
	params := map[string]interface{}{
		"first":        creds.FirstName,
		"last":         creds.LastName,
		"passwd":       hashPassword(creds.Password),
		"start":        creds.Start,
		"channel":      creds.Channel,
		"version":      creds.Version,
		"platform":     creds.Platform,
		"mac":          creds.MAC,
		"id0":          creds.ID0,
		"agree_to_tos": "true",
		"read_critical": "true",
		"options":      options,
	}

	reply := map[string]interface{}{}
	done := make(chan error, 1)
	go func() { done <- client.Call("login_to_simulator", params, &reply) }()

	select {
	case <-ctx.Done():
		return Response{}, fmt.Errorf("login: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return Response{}, fmt.Errorf("login: xmlrpc call failed: %w", err)
		}
	}

	return parseReply(reply)
}

func parseReply(reply map[string]interface{}) (Response, error) {
	login, _ := reply["login"].(string)
	if login != "true" {
		return Response{}, classifyReject(reply)
	}

	var resp Response
	resp.AgentID = parseUUID(reply["agent_id"])
	resp.SessionID = parseUUID(reply["session_id"])
	resp.SecureSessionID = parseUUID(reply["secure_session_id"])
	resp.CircuitCode = uint32(parseInt(reply["circuit_code"]))
	resp.SimIP, _ = reply["sim_ip"].(string)
	resp.SimPort = uint16(parseInt(reply["sim_port"]))
	resp.SeedCapability, _ = reply["seed_capability"].(string)
	resp.InventoryRoot = parseInventoryRoot(reply["inventory-root"])
	resp.StartLocation, _ = reply["start_location"].(string)
	resp.RegionX = uint32(parseInt(reply["region_x"]))
	resp.RegionY = uint32(parseInt(reply["region_y"]))
	resp.HomeSimURI, _ = reply["home"].(string)
	resp.MessageOfDay, _ = reply["message"].(string)
	return resp, nil
}

// classifyReject maps the grid's free-text "message"/"reason" pair to a
// structured RejectReason, since XML-RPC carries no error taxonomy of its
// own.
func classifyReject(reply map[string]interface{}) error {
	reason, _ := reply["reason"].(string)
	message, _ := reply["message"].(string)
	r := RejectUnknown
	switch strings.ToLower(reason) {
	case "key", "presence", "login":
		r = RejectCredentials
	case "tos":
		r = RejectTOS
	case "disabled", "maintenance":
		r = RejectMaintenance
	case "full", "noinventory":
		r = RejectRegionFull
	case "presenceissue", "duplicate":
		r = RejectAlreadyLoggedIn
	}
	if r == RejectUnknown {
		lower := strings.ToLower(message)
		switch {
		case strings.Contains(lower, "password") || strings.Contains(lower, "name"):
			r = RejectCredentials
		case strings.Contains(lower, "terms"):
			r = RejectTOS
		case strings.Contains(lower, "maintenance") || strings.Contains(lower, "down for"):
			r = RejectMaintenance
		case strings.Contains(lower, "full"):
			r = RejectRegionFull
		case strings.Contains(lower, "already") || strings.Contains(lower, "logged in"):
			r = RejectAlreadyLoggedIn
		}
	}
	return &RejectError{Reason: r, Message: message}
}

func parseUUID(v interface{}) uuid.UUID {
	s, _ := v.(string)
	id, _ := uuid.Parse(s)
	return id
}

// parseInventoryRoot unwraps the login reply's "inventory-root" shape,
// which is an array containing a single {"folder_id": "..."} map.
func parseInventoryRoot(v interface{}) uuid.UUID {
	arr, ok := v.([]interface{})
	if !ok || len(arr) == 0 {
		return uuid.UUID{}
	}
	m, ok := arr[0].(map[string]interface{})
	if !ok {
		return uuid.UUID{}
	}
	return parseUUID(m["folder_id"])
}

func parseInt(v interface{}) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case int64:
		return n
	case float64:
		return int64(n)
	case string:
		var i int64
		fmt.Sscanf(n, "%d", &i)
		return i
	}
	return 0
}
