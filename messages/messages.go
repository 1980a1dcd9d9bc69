// Package messages defines the closed message-body union (spec §4.1, §9
// "Dynamic dispatch") and dispatches on (frequency, id) to the concrete
// decoder. It imports every message subpackage; none of them import it
// back, so there is no cycle — a message type satisfies Body structurally,
// without ever naming this package.
package messages

import (
	"errors"

	"github.com/benthic-mmo/metaverse-client-sub001/codec"
	"github.com/benthic-mmo/metaverse-client-sub001/messages/agent"
	"github.com/benthic-mmo/metaverse-client-sub001/messages/appearance"
	"github.com/benthic-mmo/metaverse-client-sub001/messages/chat"
	"github.com/benthic-mmo/metaverse-client-sub001/messages/core"
	"github.com/benthic-mmo/metaverse-client-sub001/messages/environment"
	"github.com/benthic-mmo/metaverse-client-sub001/messages/object"
	"github.com/benthic-mmo/metaverse-client-sub001/messages/teleport"
)

var ErrUnknownMessage = errors.New("messages: unknown (frequency, id) combination")

// Body is implemented by every message type. Encode returns the message's
// own body bytes only — framing (header, zero-coding, acks) is codec's
// job, not a message's.
type Body interface {
	Frequency() codec.Frequency
	MessageID() uint32
	Encode() []byte
}

type key struct {
	fr codec.Frequency
	id uint32
}

type decodeFunc func([]byte) (Body, error)

var registry = map[key]decodeFunc{}

func register(fr codec.Frequency, id uint32, fn decodeFunc) {
	registry[key{fr, id}] = fn
}

// Decode dispatches on (frequency, id) to the matching message decoder.
// An unrecognized combination returns ErrUnknownMessage rather than
// panicking — per spec §7, malformed/unknown wire input is dropped, not
// fatal.
func Decode(fr codec.Frequency, id uint32, body []byte) (Body, error) {
	fn, ok := registry[key{fr, id}]
	if !ok {
		return nil, ErrUnknownMessage
	}
	return fn(body)
}

func init() {
	register(codec.Low, core.IDUseCircuitCode, func(b []byte) (Body, error) { return core.DecodeUseCircuitCode(b) })
	register(codec.Low, core.IDCompleteAgentMovement, func(b []byte) (Body, error) { return core.DecodeCompleteAgentMovement(b) })
	register(codec.Low, core.IDAgentThrottle, func(b []byte) (Body, error) { return core.DecodeAgentThrottle(b) })
	register(codec.Low, core.IDRegionHandshake, func(b []byte) (Body, error) { return core.DecodeRegionHandshake(b) })
	register(codec.Low, core.IDRegionHandshakeReply, func(b []byte) (Body, error) { return core.DecodeRegionHandshakeReply(b) })
	register(codec.High, core.IDStartPingCheck, func(b []byte) (Body, error) { return core.DecodeStartPingCheck(b) })
	register(codec.High, core.IDCompletePingCheck, func(b []byte) (Body, error) { return core.DecodeCompletePingCheck(b) })
	register(codec.High, core.IDPacketAck, func(b []byte) (Body, error) { return core.DecodePacketAck(b) })

	register(codec.Medium, agent.IDAgentUpdate, func(b []byte) (Body, error) { return agent.DecodeAgentUpdate(b) })
	register(codec.Medium, agent.IDCoarseLocationUpdate, func(b []byte) (Body, error) { return agent.DecodeCoarseLocationUpdate(b) })
	register(codec.Low, agent.IDAgentWearablesUpdate, func(b []byte) (Body, error) { return agent.DecodeAgentWearablesUpdate(b) })

	register(codec.Low, chat.IDChatFromSimulator, func(b []byte) (Body, error) { return chat.DecodeChatFromSimulator(b) })
	register(codec.Low, chat.IDChatFromViewer, func(b []byte) (Body, error) { return chat.DecodeChatFromViewer(b) })

	register(codec.Low, environment.IDLayerData, func(b []byte) (Body, error) { return environment.DecodeLayerData(b) })

	register(codec.Low, object.IDObjectUpdate, func(b []byte) (Body, error) { return object.DecodeObjectUpdate(b) })
	register(codec.Low, object.IDDisableSimulator, func(b []byte) (Body, error) { return object.DecodeDisableSimulator(b) })

	register(codec.Low, teleport.IDTeleportStart, func(b []byte) (Body, error) { return teleport.DecodeTeleportStart(b) })
	register(codec.Low, teleport.IDTeleportProgress, func(b []byte) (Body, error) { return teleport.DecodeTeleportProgress(b) })
	register(codec.Low, teleport.IDTeleportFinish, func(b []byte) (Body, error) { return teleport.DecodeTeleportFinish(b) })

	register(codec.Low, appearance.IDAvatarAppearance, func(b []byte) (Body, error) { return appearance.DecodeAvatarAppearance(b) })
}
