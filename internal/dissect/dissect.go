package dissect

import (
	"errors"
	"log/slog"

	"github.com/tacsight/takwire/internal/node"
	"github.com/tacsight/takwire/internal/omni"
	"github.com/tacsight/takwire/internal/ports"
	"github.com/tacsight/takwire/internal/tak"
)

// Result is the outcome of one decode call. Consumed is zero when the
// payload was rejected; Anomaly carries a reportable integrity failure
// (currently only a stream-frame length mismatch) without implying the
// payload belonged to another protocol.
type Result struct {
	Protocol ports.Family
	Variant  string
	Consumed int
	Root     *node.Node
	Summary  string
	Anomaly  error
}

// Decoder routes payloads to the protocol decoders. The decode path keeps
// no mutable state; a single Decoder serves concurrent callers.
type Decoder struct {
	registry *ports.Registry
	logger   *slog.Logger
}

// NewDecoder returns a Decoder routing by the given registry.
func NewDecoder(registry *ports.Registry, logger *slog.Logger) *Decoder {
	return &Decoder{registry: registry, logger: logger}
}

// Decode decodes one payload received on the given local port. The port's
// registered family is tried first; an unregistered port falls through the
// classifier chain (TAK framing, then the OMNI heuristic).
func (d *Decoder) Decode(buf []byte, port int) (res Result) {
	// A decoder bug on adversarial bytes must not take down the capture
	// loop; reject the payload instead.
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("decode panic recovered",
				slog.Int("port", port),
				slog.Int("payload_size", len(buf)),
				slog.Any("panic", r),
			)
			res = Result{Variant: "unrecognized"}
		}
	}()

	family := d.registry.Lookup(port)
	switch family {
	case ports.FamilyTAK:
		if res, ok := decodeTAK(buf); ok {
			return res
		}
	case ports.FamilyOMNI:
		if res, ok := decodeOMNI(buf); ok {
			return res
		}
	}

	// Unregistered port, or the registered family rejected the payload:
	// classify by content, skipping the family already tried. TAK framing
	// is checked before the OMNI heuristic because the magic byte is the
	// stronger signal.
	if family != ports.FamilyTAK {
		if res, ok := decodeTAK(buf); ok {
			return res
		}
	}
	if family != ports.FamilyOMNI {
		if res, ok := decodeOMNI(buf); ok {
			return res
		}
	}
	return Result{Variant: "unrecognized"}
}

func decodeTAK(buf []byte) (Result, bool) {
	r, err := tak.Decode(buf)
	if err != nil {
		if errors.Is(err, tak.ErrLengthMismatch) {
			return Result{
				Protocol: ports.FamilyTAK,
				Variant:  tak.StreamFramed.String(),
				Anomaly:  err,
			}, true
		}
		return Result{}, false
	}
	if r == nil {
		return Result{}, false
	}
	return Result{
		Protocol: ports.FamilyTAK,
		Variant:  r.Variant.String(),
		Consumed: r.Consumed,
		Root:     r.Root,
		Summary:  r.Summary,
	}, true
}

func decodeOMNI(buf []byte) (Result, bool) {
	r := omni.Decode(buf)
	if r == nil {
		return Result{}, false
	}
	return Result{
		Protocol: ports.FamilyOMNI,
		Variant:  "protobuf",
		Consumed: r.Consumed,
		Root:     r.Root,
		Summary:  r.Summary,
	}, true
}
