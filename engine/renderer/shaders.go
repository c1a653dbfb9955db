package renderer

import (
	_ "embed"
	"fmt"
)

//go:embed assets/lit.wgsl
var litSource string

//go:embed assets/shadow.wgsl
var shadowSource string

// Shader entry points.
const (
	litVertexEntry    = "vs_main"
	litFragmentEntry  = "fs_main"
	shadowVertexEntry = "vs_shadow"
)

// litShaderSource returns the forward lit shader with its struct includes expanded.
func litShaderSource() (string, error) {
	src, err := preProcess(litSource)
	if err != nil {
		return "", fmt.Errorf("lit shader: %w", err)
	}
	return src, nil
}

// shadowShaderSource returns the depth-only shadow shader with its struct includes expanded.
func shadowShaderSource() (string, error) {
	src, err := preProcess(shadowSource)
	if err != nil {
		return "", fmt.Errorf("shadow shader: %w", err)
	}
	return src, nil
}
