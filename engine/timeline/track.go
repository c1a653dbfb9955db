package timeline

import (
	"encoding/json"
	"slices"

	"github.com/Carmen-Shannon/oxy-stage/engine/params"
)

type keyframe struct {
	position       float64
	number         float64
	asset          params.AssetRef
	connectedRight bool
	hold           bool
	handles        [4]float64
}

// track is a keyframed curve for one leaf parameter. Keyframes are sorted by position.
type track struct {
	kind      params.Kind
	keyframes []keyframe
}

// newTrack decodes the keyframes of a track whose values match kind; keyframes with
// values of the wrong shape are dropped.
func newTrack(kind params.Kind, doc trackDoc) *track {
	t := &track{kind: kind}
	for _, kd := range doc.Keyframes {
		kf := keyframe{
			position:       kd.Position,
			connectedRight: kd.ConnectedRight,
			hold:           kd.Type == "hold",
			handles:        kd.Handles,
		}
		switch kind {
		case params.KindNumber:
			if err := json.Unmarshal(kd.Value, &kf.number); err != nil {
				continue
			}
		case params.KindImage:
			if err := json.Unmarshal(kd.Value, &kf.asset); err != nil || kf.asset.IsZero() {
				continue
			}
		default:
			continue
		}
		t.keyframes = append(t.keyframes, kf)
	}
	slices.SortStableFunc(t.keyframes, func(a, b keyframe) int {
		switch {
		case a.position < b.position:
			return -1
		case a.position > b.position:
			return 1
		}
		return 0
	})
	return t
}

// sample returns the track value at pos: the first keyframe's value before it, the last
// keyframe's value after it, and between two keyframes either the left value (hold,
// disconnected or asset segments) or the bezier-eased interpolation.
func (t *track) sample(pos float64) (any, bool) {
	n := len(t.keyframes)
	if n == 0 {
		return nil, false
	}
	if pos <= t.keyframes[0].position {
		return t.keyframes[0].value(t.kind), true
	}
	if pos >= t.keyframes[n-1].position {
		return t.keyframes[n-1].value(t.kind), true
	}

	i, _ := slices.BinarySearchFunc(t.keyframes, pos, func(k keyframe, p float64) int {
		switch {
		case k.position < p:
			return -1
		case k.position > p:
			return 1
		}
		return 0
	})
	// keyframes[i] is the first keyframe at or after pos.
	if t.keyframes[i].position == pos {
		return t.keyframes[i].value(t.kind), true
	}
	left, right := t.keyframes[i-1], t.keyframes[i]
	if t.kind != params.KindNumber || !left.connectedRight || left.hold {
		return left.value(t.kind), true
	}

	span := right.position - left.position
	progress := (pos - left.position) / span
	curve := newCubicBezier(left.handles[2], left.handles[3], right.handles[0], right.handles[1])
	eased := curve.ease(progress)
	return left.number + (right.number-left.number)*eased, true
}

func (k keyframe) value(kind params.Kind) any {
	if kind == params.KindImage {
		return k.asset
	}
	return k.number
}
