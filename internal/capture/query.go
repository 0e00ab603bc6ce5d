package capture

import (
	"github.com/interborough/transit/pkg/core"
	"github.com/interborough/transit/pkg/raster"
)

// Primitives returns everything captured since the last Reset.
func (r *Recorder) Primitives() []Primitive {
	return r.primitives
}

// Vertices flattens all captured primitives.
func (r *Recorder) Vertices() []Vertex {
	var out []Vertex
	for _, p := range r.primitives {
		out = append(out, p.Vertices...)
	}
	return out
}

// Quads splits every Quads primitive into groups of four vertices.
func (r *Recorder) Quads() [][4]Vertex {
	var out [][4]Vertex
	for _, p := range r.primitives {
		if p.Mode != raster.Quads {
			continue
		}
		for i := 0; i+3 < len(p.Vertices); i += 4 {
			out = append(out, [4]Vertex{p.Vertices[i], p.Vertices[i+1], p.Vertices[i+2], p.Vertices[i+3]})
		}
	}
	return out
}

// Lights returns the state of every light unit touched so far.
func (r *Recorder) Lights() map[raster.LightUnit]*Light {
	return r.lights
}

// EnabledLights counts the units currently enabled.
func (r *Recorder) EnabledLights() int {
	n := 0
	for _, l := range r.lights {
		if l.Enabled {
			n++
		}
	}
	return n
}

// Stats summarizes the captured frame.
func (r *Recorder) Stats() core.FrameStats {
	s := core.FrameStats{Lights: r.EnabledLights()}
	for _, p := range r.primitives {
		s.Vertices += len(p.Vertices)
		if p.Mode == raster.Quads {
			s.Quads += len(p.Vertices) / 4
		}
	}
	return s
}
