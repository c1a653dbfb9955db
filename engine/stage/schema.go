package stage

import "github.com/Carmen-Shannon/oxy-stage/engine/params"

// SubjectSchema declares the animatable properties of the textured mesh.
func SubjectSchema() params.Schema {
	axis := params.Range{Min: -2, Max: 2}
	offset := params.Range{Min: -4, Max: 4}
	return params.NewSchema(map[string]params.Prop{
		"rotation": params.Compound(map[string]params.Prop{
			"x": params.Number(0, axis),
			"y": params.Number(0, axis),
			"z": params.Number(0, axis),
		}),
		"scale": params.Compound(map[string]params.Prop{
			"z_scale": params.Number(1, params.Range{Min: 0, Max: 4}),
		}),
		"texture": params.Image("1.png", "TEXTURE"),
		"position": params.Compound(map[string]params.Prop{
			"x_axis": params.Number(0, offset),
			"y_axis": params.Number(0, offset),
			"z_axis": params.Number(0, offset),
		}),
	})
}

// DirectionalLightSchema declares the animatable intensity of the directional light.
func DirectionalLightSchema() params.Schema {
	return params.NewSchema(map[string]params.Prop{
		"intensity": params.Number(30, params.Range{Min: 0, Max: 30}),
	})
}
