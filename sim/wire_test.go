package sim

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitResponseUnmarshal(t *testing.T) {
	raw := []byte(`{
		"pos": {"x": 1.5, "y": -2},
		"detections": {
			"north": {"class": "TARGET", "distance": 5},
			"east": {"class": 0, "distance": 3.5}
		},
		"messages": [{"src": "2", "value": "1 2 3"}]
	}`)
	var resp UnitResponse
	require.NoError(t, json.Unmarshal(raw, &resp))

	assert.Equal(t, WireVec{1.5, -2}, resp.Pos)
	require.Len(t, resp.Messages, 1)
	assert.Equal(t, "2", resp.Messages[0].Src)

	dets := resp.ParseDetections()
	require.Len(t, dets, 2)
	// 遍历顺序固定：north 在 east 之前
	assert.Equal(t, DirNorth, dets[0].Direction)
	assert.Equal(t, ClassTarget, dets[0].Class)
	assert.Equal(t, DirEast, dets[1].Direction)
	assert.Equal(t, ClassObstacle, dets[1].Class)
}

func TestDetectionClassCodings(t *testing.T) {
	cases := map[string]DetectionClass{
		`0`:          ClassObstacle,
		`1`:          ClassTarget,
		`"OBSTACLE"`: ClassObstacle,
		`"TARGET"`:   ClassTarget,
		`"target"`:   ClassTarget,
		`"LASER"`:    ClassUnknown,
		`7`:          ClassUnknown,
		`null`:       ClassUnknown,
	}
	for raw, want := range cases {
		var c WireClass
		require.NoError(t, json.Unmarshal([]byte(raw), &c), "coding %s", raw)
		assert.Equal(t, want, c.Value, "coding %s", raw)
	}
}

func TestParseDetectionsSkipsInvalid(t *testing.T) {
	resp := UnitResponse{Detections: map[Direction]*WireDetection{
		"sideways": {Class: WireClass{ClassTarget}, Distance: 5},
		DirSouth:   {Class: WireClass{ClassUnknown}, Distance: 5},
		DirWest:    {Class: WireClass{ClassTarget}, Distance: -1},
		DirNorth:   {Class: WireClass{ClassTarget}, Distance: 2},
	}}
	dets := resp.ParseDetections()
	require.Len(t, dets, 1)
	assert.Equal(t, DirNorth, dets[0].Direction)
}

func TestUnitCommandMarshal(t *testing.T) {
	b, err := json.Marshal(NewThrustCommand(Vec2{1, -2}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"thrust":{"impulse":{"x":1,"y":-2}}}`, string(b))

	b, err = json.Marshal(NewBroadcastCommand("1 2 3"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"msg":{"value":"1 2 3"}}`, string(b))
}
