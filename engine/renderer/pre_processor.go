package renderer

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-stage/engine/camera"
	"github.com/Carmen-Shannon/oxy-stage/engine/geometry"
	"github.com/Carmen-Shannon/oxy-stage/engine/light"
	"github.com/Carmen-Shannon/oxy-stage/engine/material"
	"github.com/Carmen-Shannon/oxy-stage/engine/mesh"
)

// includePrefix marks a WGSL comment line that is replaced by a registered struct source.
//
// Syntax: //@oxy:include <struct_type>
const includePrefix = "@oxy:include"

// structRegistry maps include keys to the WGSL struct sources embedded by the GPU type packages.
var structRegistry = map[string]string{
	"vertex":          geometry.GPUVertexSource,
	"camera":          camera.GPUCameraUniformSource,
	"light":           light.GPULightSource,
	"light_header":    light.GPULightHeaderSource,
	"shadow_data":     light.GPUShadowDataSource,
	"mesh":            mesh.GPUMeshUniformSource,
	"material_params": material.GPUMaterialParamsSource,
}

// preProcess replaces every include annotation in source with the registered struct source.
// Each key is injected at most once; repeated includes of the same key are dropped.
//
// Parameters:
//   - source: raw WGSL containing include annotations
//
// Returns:
//   - string: the WGSL with annotations expanded
//   - error: an error if an annotation is malformed or names an unknown struct
func preProcess(source string) (string, error) {
	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))
	included := make(map[string]bool)

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		comment, ok := strings.CutPrefix(trimmed, "//")
		if !ok {
			out = append(out, line)
			continue
		}
		rest, ok := strings.CutPrefix(strings.TrimSpace(comment), includePrefix)
		if !ok {
			out = append(out, line)
			continue
		}

		args := strings.Fields(rest)
		if len(args) != 1 {
			return "", fmt.Errorf("line %d: %s expects 1 argument, got %d", i+1, includePrefix, len(args))
		}
		src, ok := structRegistry[args[0]]
		if !ok {
			return "", fmt.Errorf("line %d: unknown %s argument %q", i+1, includePrefix, args[0])
		}
		if included[args[0]] {
			continue
		}
		included[args[0]] = true
		out = append(out, src)
	}
	return strings.Join(out, "\n"), nil
}
