package parts

import (
	"fmt"

	"github.com/chazu/spanloft/pkg/kernel"
	"github.com/chazu/spanloft/pkg/span"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultBladeYaw turns the blade's chord from X onto Y, across the body.
const DefaultBladeYaw = 90.0

// BladeAssembly is the LPT blade: root body plus a twisted blade standing
// on the body's top face.
type BladeAssembly struct {
	Body  BodyParams  `yaml:"body"`
	Blade span.Params `yaml:"blade"`
	Yaw   float64     `yaml:"yaw"` // degrees about Z, applied before placement
}

// DefaultAssembly returns the LPT blade assembly.
func DefaultAssembly() BladeAssembly {
	return BladeAssembly{
		Body:  DefaultBodyParams(),
		Blade: span.DefaultParams(),
		Yaw:   DefaultBladeYaw,
	}
}

// Validate checks both halves of the assembly. The blade base is ignored;
// Assembly replaces it with the body's top centre.
func (a BladeAssembly) Validate() error {
	if err := a.Body.Validate(); err != nil {
		return err
	}
	return a.Blade.Validate()
}

// AssemblyResult holds the solids of a built assembly.
type AssemblyResult struct {
	Body     kernel.Solid
	Blade    kernel.Solid
	Sections []span.Section // blade sections before yaw and placement
	Anchor   r3.Vec         // top centre of the body
}

// Assembly builds the body, grows the blade from the body's top centre,
// yaws it about Z and seats its base on that centre.
func Assembly(k kernel.Kernel, a BladeAssembly, log zerolog.Logger) (*AssemblyResult, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	body, err := RootBody(k, a.Body, log)
	if err != nil {
		return nil, err
	}
	anchor := kernel.TopCenter(body)
	log.Debug().
		Float64("x", anchor.X).Float64("y", anchor.Y).Float64("z", anchor.Z).
		Msg("blade anchor")

	bp := a.Blade
	bp.Base = anchor
	blade, sections, err := Blade(k, bp)
	if err != nil {
		return nil, fmt.Errorf("parts: assembly blade: %w", err)
	}
	if a.Yaw != 0 {
		blade = k.Rotate(blade, r3.Vec{}, axisZ, a.Yaw)
	}
	blade = PlaceOn(k, blade, anchor)

	log.Info().Int("sections", len(sections)).Float64("yaw", a.Yaw).Msg("assembly built")
	return &AssemblyResult{Body: body, Blade: blade, Sections: sections, Anchor: anchor}, nil
}
