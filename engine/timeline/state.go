package timeline

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Carmen-Shannon/oxy-stage/common"
	"github.com/mitchellh/go-homedir"
)

// ProjectState is a previously saved project document, kept as raw JSON until the project parses it.
type ProjectState json.RawMessage

// LoadProjectState reads a saved project document from disk. The path may start with "~".
//
// Parameters:
//   - path: file path of the JSON document
//
// Returns:
//   - ProjectState: the raw document
//   - error: an error wrapping common.ErrConfiguration if the file is missing or not JSON
func LoadProjectState(path string) (ProjectState, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("%w: project state path %q: %v", common.ErrConfiguration, path, err)
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		return nil, fmt.Errorf("%w: reading project state: %v", common.ErrConfiguration, err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("%w: project state %q is not valid JSON", common.ErrConfiguration, path)
	}
	return ProjectState(data), nil
}

type stateDoc struct {
	SheetsByID        map[string]sheetDoc `json:"sheetsById"`
	DefinitionVersion string              `json:"definitionVersion"`
}

type sheetDoc struct {
	StaticOverrides struct {
		ByObject map[string]map[string]any `json:"byObject"`
	} `json:"staticOverrides"`
	Sequence *sequenceDoc `json:"sequence"`
}

type sequenceDoc struct {
	Length          float64                    `json:"length"`
	SubUnitsPerUnit int                        `json:"subUnitsPerUnit"`
	Type            string                     `json:"type"`
	TracksByObject  map[string]objectTracksDoc `json:"tracksByObject"`
}

type objectTracksDoc struct {
	TrackIDByPropPath map[string]string   `json:"trackIdByPropPath"`
	TrackData         map[string]trackDoc `json:"trackData"`
}

type trackDoc struct {
	Type      string        `json:"type"`
	Keyframes []keyframeDoc `json:"keyframes"`
}

type keyframeDoc struct {
	ID             string          `json:"id"`
	Position       float64         `json:"position"`
	Value          json.RawMessage `json:"value"`
	ConnectedRight bool            `json:"connectedRight"`
	Handles        [4]float64      `json:"handles"`
	Type           string          `json:"type"`
}

func parseState(state ProjectState) (*stateDoc, error) {
	doc := &stateDoc{}
	if len(state) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(state, doc); err != nil {
		return nil, fmt.Errorf("%w: parsing project state: %v", common.ErrConfiguration, err)
	}
	for sheetName, sheet := range doc.SheetsByID {
		if sheet.Sequence == nil {
			continue
		}
		if sheet.Sequence.Length < 0 {
			return nil, fmt.Errorf("%w: sheet %q: negative sequence length", common.ErrConfiguration, sheetName)
		}
		for objName, tracks := range sheet.Sequence.TracksByObject {
			for key := range tracks.TrackIDByPropPath {
				if _, err := parsePropPath(key); err != nil {
					return nil, fmt.Errorf("%w: sheet %q object %q: %v", common.ErrConfiguration, sheetName, objName, err)
				}
			}
		}
	}
	return doc, nil
}

// parsePropPath decodes a track key such as `["rotation","x"]`.
func parsePropPath(key string) ([]string, error) {
	var path []string
	if err := json.Unmarshal([]byte(key), &path); err != nil {
		return nil, fmt.Errorf("invalid prop path %q: %v", key, err)
	}
	if len(path) == 0 {
		return nil, fmt.Errorf("empty prop path %q", key)
	}
	return path, nil
}
