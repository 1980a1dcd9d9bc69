// Command metaverse-client-sub001 wires the session runtime end to end:
// load config, log in, establish the datagram circuit, negotiate
// capabilities, and relay simulator traffic to the loopback UI socket
// until the circuit ends. It is the thin consumer described in spec §1 —
// all of the hard engineering lives in the packages it imports.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/benthic-mmo/metaverse-client-sub001/avatar"
	"github.com/benthic-mmo/metaverse-client-sub001/capability"
	"github.com/benthic-mmo/metaverse-client-sub001/internal/config"
	"github.com/benthic-mmo/metaverse-client-sub001/internal/invdb"
	"github.com/benthic-mmo/metaverse-client-sub001/internal/log"
	"github.com/benthic-mmo/metaverse-client-sub001/internal/meshcache"
	"github.com/benthic-mmo/metaverse-client-sub001/internal/userdata"
	"github.com/benthic-mmo/metaverse-client-sub001/login"
	"github.com/benthic-mmo/metaverse-client-sub001/messages"
	"github.com/benthic-mmo/metaverse-client-sub001/messages/agent"
	"github.com/benthic-mmo/metaverse-client-sub001/messages/appearance"
	"github.com/benthic-mmo/metaverse-client-sub001/messages/chat"
	"github.com/benthic-mmo/metaverse-client-sub001/messages/core"
	"github.com/benthic-mmo/metaverse-client-sub001/messages/environment"
	"github.com/benthic-mmo/metaverse-client-sub001/messages/object"
	"github.com/benthic-mmo/metaverse-client-sub001/messages/teleport"
	"github.com/benthic-mmo/metaverse-client-sub001/objects"
	"github.com/benthic-mmo/metaverse-client-sub001/region"
	"github.com/benthic-mmo/metaverse-client-sub001/session"
	"github.com/benthic-mmo/metaverse-client-sub001/terrain"
	"github.com/benthic-mmo/metaverse-client-sub001/transport"
	"github.com/benthic-mmo/metaverse-client-sub001/uiproto"
)

func main() {
	cfgPath := flag.String("config", "", "path to session config file")
	password := flag.String("password", "", "account password (overrides config)")
	flag.Parse()

	if *cfgPath == "" {
		fmt.Fprintln(os.Stderr, "usage: metaverse-client-sub001 -config <path> [-password <pw>]")
		os.Exit(2)
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()
	_ = logger.SetLevelString(cfg.Log_Level)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, *password, logger); err != nil {
		logger.Fatalf("fatal: %v", err)
	}
}

func newLogger(cfg *config.Global) (*log.Logger, error) {
	if cfg.Log_File == "" {
		return log.NewDiscardLogger(), nil
	}
	return log.NewFile(cfg.Log_File)
}

// run drives one full session lifecycle: login, circuit establishment,
// capability negotiation, and the inbound relay loop, per the pipeline
// spec §2 describes ("Data flow").
func run(ctx context.Context, cfg *config.Global, password string, logger *log.Logger) error {
	dataDir := cfg.User_Data_Dir
	if dataDir == "" {
		home, _ := os.UserHomeDir()
		dataDir = home + "/.metaverse-client-sub001"
	}

	loginClient := login.NewClient(cfg.Grid_Login_URL)
	loginCtx, loginCancel := context.WithTimeout(ctx, login.Timeout)
	resp, err := loginClient.Login(loginCtx, login.Credentials{
		FirstName: cfg.First_Name,
		LastName:  cfg.Last_Name,
		Password:  password,
		Start:     "last",
		Channel:   cfg.Viewer_Fingerprint,
		Options:   []string{"inventory-root", "buddy-list"},
	})
	loginCancel()
	if err != nil {
		logger.Errorf("login failed: %v", err)
		return err
	}
	logger.Infof("login succeeded: agent=%s sim=%s", resp.AgentID, resp.SimAddress())

	userDir, err := userdata.Open(dataDir, resp.AgentID.String())
	if err != nil {
		return fmt.Errorf("opening user data dir: %w", err)
	}
	defer userDir.Close()

	db, err := invdb.Open(dataDir)
	if err != nil {
		return fmt.Errorf("opening inventory db: %w", err)
	}
	defer db.Close()

	sock, err := transport.Dial(ctx, resp.SimAddress(), transport.DefaultConfig(), logger)
	if err != nil {
		return fmt.Errorf("dialing circuit: %w", err)
	}

	identity := session.Identity{
		AgentID:     resp.AgentID,
		SessionID:   resp.SessionID,
		CircuitCode: resp.CircuitCode,
	}
	sess := session.New(sock, identity, logger)
	sess.Start(ctx)

	// Subscribe before any outbound traffic so neither consumer can miss
	// a body that arrives while the circuit is still being established;
	// region and the relay loop each get their own fan-out channel from
	// the mailbox rather than competing over a single shared one.
	regionCtl := region.NewController(sess, identity, logger)
	relayCh := sess.Subscribe()
	go regionCtl.Run(ctx)

	if err := establishCircuit(sess, identity, cfg); err != nil {
		sess.Stop()
		return fmt.Errorf("establishing circuit: %w", err)
	}

	capClient := capability.NewClient()
	if resp.SeedCapability != "" {
		capCtx, capCancel := context.WithTimeout(ctx, capability.Timeout)
		err := capClient.Negotiate(capCtx, resp.SeedCapability, capability.Names)
		capCancel()
		if err != nil {
			logger.Warnf("capability negotiation failed: %v", err)
		}
	}

	uiConn, err := openUIPublisher(cfg.UI_Publish_Address)
	if err != nil {
		logger.Warnf("ui publisher unavailable: %v", err)
	}
	if uiConn != nil {
		defer uiConn.Close()
		go publishUIFrames(ctx, sess, uiConn, logger)
	}

	if cfg.UI_Listen_Address != "" {
		uiListener, err := net.ListenPacket("udp", cfg.UI_Listen_Address)
		if err != nil {
			logger.Warnf("ui request listener unavailable: %v", err)
		} else {
			defer uiListener.Close()
			go listenUIRequests(ctx, sess, identity, uiListener, logger)
		}
	}

	hsCtx, hsCancel := context.WithTimeout(ctx, 30*time.Second)
	hs, err := regionCtl.WaitForHandshake(hsCtx)
	hsCancel()
	if err != nil {
		sess.SendUI(uiproto.KindSessionError, uiproto.SessionErrorEvent{
			Kind: "handshake_timeout", Message: err.Error(), Fatal: true,
		})
		sess.Stop()
		return fmt.Errorf("waiting for region handshake: %w", err)
	}
	logger.Infof("region handshake complete: %s", hs.Raw.SimName)

	if resp.InventoryRoot != (uuid.UUID{}) {
		go fetchRootInventory(ctx, capClient, db, resp.AgentID, resp.InventoryRoot, logger)
	}

	sess.SendUI(uiproto.KindLoginResponse, uiproto.LoginResponseEvent{
		Success: true, AgentID: resp.AgentID.String(), SessionID: resp.SessionID.String(),
	})
	sess.SendUI(uiproto.KindLandUpdate, uiproto.LandUpdateEvent{
		RegionX: resp.RegionX, RegionY: resp.RegionY, RegionName: hs.Raw.SimName, Flags: hs.Flags,
	})

	avatars := avatar.NewRegistry()
	terrainCache := terrain.NewCache()

	go sendAgentUpdates(ctx, sess, identity, logger)

	relay(ctx, relayCh, sess, db, userDir, avatars, terrainCache, logger)
	return sess.Stop()
}

// sendAgentUpdates keeps the circuit's interest list alive with a neutral,
// unmoving AgentUpdate at a modest cadence. A headless core has no camera
// or movement input of its own; UI-driven input would replace this with
// real control-flag/rotation values, but the simulator expects to keep
// hearing from the agent regardless.
func sendAgentUpdates(ctx context.Context, sess *session.Session, id session.Identity, logger *log.Logger) {
	ticker := time.NewTicker(3 * time.Second)
	defer ticker.Stop()
	identity := [4]float32{0, 0, 0, 1}
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			err := sess.Send(agent.AgentUpdate{
				AgentID: id.AgentID, SessionID: id.SessionID,
				BodyRotation: identity, HeadRotation: identity,
				Far: 64,
			}, false)
			if err != nil {
				logger.Warnf("agent update send failed: %v", err)
			}
		}
	}
}

// establishCircuit issues the three reliable setup packets spec §4.4
// requires, in order, before anything else on the circuit is trusted.
func establishCircuit(sess *session.Session, id session.Identity, cfg *config.Global) error {
	if err := sess.Send(core.UseCircuitCode{
		Code: id.CircuitCode, SessionID: id.SessionID, AgentID: id.AgentID,
	}, true); err != nil {
		return fmt.Errorf("UseCircuitCode: %w", err)
	}
	if err := sess.Send(core.CompleteAgentMovement{
		AgentID: id.AgentID, SessionID: id.SessionID, CircuitCode: id.CircuitCode,
	}, true); err != nil {
		return fmt.Errorf("CompleteAgentMovement: %w", err)
	}

	total := float32(cfg.Throttle_Total_Kbps) * 1024 / 8
	per := total / 7
	if err := sess.SendZC(core.AgentThrottle{
		AgentID: id.AgentID, SessionID: id.SessionID, GenCounter: 0,
		Throttles: [7]float32{per, per, per, per, per, per, per},
	}, true); err != nil {
		return fmt.Errorf("AgentThrottle: %w", err)
	}
	return nil
}

// fetchRootInventory walks the inventory tree once at login and persists
// every folder/item into the local embedded database (spec §4.8, §6
// "Persisted state"). It runs off the main relay path since a large
// inventory's recursive fetch can take a while and nothing else in the
// session depends on it completing first.
func fetchRootInventory(ctx context.Context, capClient *capability.Client, db *invdb.DB, ownerID, rootFolder uuid.UUID, logger *log.Logger) {
	result, err := capClient.FetchInventory(ctx, rootFolder, ownerID)
	if err != nil {
		logger.Warnf("inventory fetch failed: %v", err)
		return
	}
	persistInventory(db, result, logger)
}

func persistInventory(db *invdb.DB, r capability.InventoryResult, logger *log.Logger) {
	if err := db.PutFolder(r.Folder); err != nil {
		logger.Warnf("storing folder %s: %v", r.Folder.FolderID, err)
	}
	for _, it := range r.Items {
		if err := db.PutItem(it); err != nil {
			logger.Warnf("storing item %s: %v", it.ItemID, err)
		}
	}
	for _, sub := range r.Subs {
		persistInventory(db, sub, logger)
	}
}

func openUIPublisher(addr string) (net.Conn, error) {
	if addr == "" {
		return nil, nil
	}
	return net.Dial("udp", addr)
}

func publishUIFrames(ctx context.Context, sess *session.Session, conn net.Conn, logger *log.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case f, ok := <-sess.UIOut():
			if !ok {
				return
			}
			if _, err := conn.Write(uiproto.EncodeFrame(f)); err != nil {
				logger.Warnf("ui publish failed: %v", err)
			}
		}
	}
}

// listenUIRequests reads the UI's outbound-chat requests off the
// loopback "core reads UI requests" socket (spec §6) and relays them as
// ChatFromViewer. Every datagram's payload is treated as one chat line,
// sent on the public channel at normal volume.
func listenUIRequests(ctx context.Context, sess *session.Session, id session.Identity, conn net.PacketConn, logger *log.Logger) {
	buf := make([]byte, 2048)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		n, _, err := conn.ReadFrom(buf)
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
			}
			logger.Warnf("ui request read failed: %v", err)
			continue
		}
		err = sess.Send(chat.ChatFromViewer{
			AgentID: id.AgentID, SessionID: id.SessionID,
			Message: string(buf[:n]), Type: chat.ChatTypeNormal, Channel: 0,
		}, true)
		if err != nil {
			logger.Warnf("relaying ui chat request failed: %v", err)
		}
	}
}

// relay consumes decoded inbound bodies for the remainder of the session
// lifetime, dispatching each to the subsystem that owns it (spec §2's
// "Data flow"): terrain, avatar appearance, chat, object classification.
func relay(ctx context.Context, inbound <-chan messages.Body, sess *session.Session, db *invdb.DB, userDir *userdata.Dir, avatars *avatar.Registry, terrainCache *terrain.Cache, logger *log.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case body, ok := <-inbound:
			if !ok {
				return
			}
			dispatchInbound(sess, db, userDir, avatars, terrainCache, body, logger)
		}
	}
}

func dispatchInbound(sess *session.Session, db *invdb.DB, userDir *userdata.Dir, avatars *avatar.Registry, terrainCache *terrain.Cache, body messages.Body, logger *log.Logger) {
	switch m := body.(type) {
	case chat.ChatFromSimulator:
		sess.SendUI(uiproto.KindChat, uiproto.ChatEvent{
			FromName: m.FromName, Message: m.Message,
			SourceType: uint8(m.SourceType), ChatType: uint8(m.ChatType),
		})
	case environment.LayerData:
		handleLayerData(sess, terrainCache, userDir, m, logger)
	case appearance.AvatarAppearance:
		handleAppearance(avatars, m, logger)
	case object.ObjectUpdate:
		handleObjectUpdate(avatars, m)
	case agent.CoarseLocationUpdate:
		logger.Debugf("coarse location update: %d avatars tracked", len(m.Locations))
	case agent.AgentWearablesUpdate:
		logger.Infof("agent wearables update: serial=%d wearables=%d", m.SerialNum, len(m.Wearables))
	case teleport.TeleportStart:
		logger.Infof("teleport starting, flags=%d", m.Flags)
	case teleport.TeleportProgress:
		logger.Infof("teleport progress: %s", m.Message)
	case teleport.TeleportFinish:
		// A full teleport would tear down this circuit and dial the new
		// region's sim address/seed capability; reconnecting the running
		// session is region package scope, not this relay loop's.
		logger.Infof("teleport finished: new region handle=%d", m.RegionHandle)
	}
}

func handleLayerData(sess *session.Session, cache *terrain.Cache, userDir *userdata.Dir, m environment.LayerData, logger *log.Logger) {
	if m.Type != environment.LayerLand {
		return // spec §1 non-goals: wind/cloud/water rendering is UI territory, not core
	}
	patches, err := terrain.DecodeLayerBody(m.Data, 16)
	if err != nil {
		logger.Warnf("terrain decode failed: %v", err)
		return
	}
	for _, p := range patches {
		if !p.WithinRange() {
			logger.Warnf("patch (%d,%d) decoded outside its declared range", p.Header.Coord.X, p.Header.Coord.Y)
		}
		for _, mesh := range cache.Add(p) {
			verts := make([]float32, 0, len(mesh.Vertices)*3)
			for _, v := range mesh.Vertices {
				verts = append(verts, v.X, v.Y, v.Z)
			}
			sess.SendUI(uiproto.KindMeshUpdate, uiproto.MeshUpdateEvent{
				CoordX: int32(mesh.Coord.X), CoordY: int32(mesh.Coord.Y),
				Vertices: verts, Indices: mesh.Indices,
			})
			if userDir != nil {
				name := fmt.Sprintf("mesh-%d-%d", mesh.Coord.X, mesh.Coord.Y)
				if err := meshcache.Put(userDir.ScratchDir(), name, encodeMeshJSON(mesh)); err != nil {
					logger.Warnf("mesh cache write failed: %v", err)
				}
			}
		}
	}
}

func handleAppearance(avatars *avatar.Registry, m appearance.AvatarAppearance, logger *log.Logger) {
	if _, err := avatar.DecodeTextureEntry(m.TextureEntry); err != nil {
		logger.Warnf("texture entry decode failed for %s: %v", m.Sender, err)
		return
	}
	avatars.Get(m.Sender) // ensures a skeleton exists once appearance is seen
}

func handleObjectUpdate(avatars *avatar.Registry, m object.ObjectUpdate) {
	for _, o := range m.Objects {
		if objects.TypeFromByte(o.PCode) == objects.TypeAvatar {
			avatars.Get(o.FullID)
		}
	}
}

func encodeMeshJSON(m terrain.MeshUpdate) []byte {
	type jsonVertex struct{ X, Y, Z float32 }
	type jsonMesh struct {
		CoordX, CoordY int
		Vertices       []jsonVertex
		Indices        []uint32
	}
	jm := jsonMesh{CoordX: m.Coord.X, CoordY: m.Coord.Y, Indices: m.Indices}
	for _, v := range m.Vertices {
		jm.Vertices = append(jm.Vertices, jsonVertex{v.X, v.Y, v.Z})
	}
	b, _ := json.Marshal(jm)
	return b
}
