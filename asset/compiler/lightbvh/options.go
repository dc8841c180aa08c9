package lightbvh

// Selects how the root node reports the power of the whole light set.
type RootPowerMode uint8

const (
	// The root stores the summed power of all lights.
	RawPower RootPowerMode = iota

	// The root stores the summed power divided by the light count.
	PowerPerLight
)

func (m RootPowerMode) String() string {
	switch m {
	case PowerPerLight:
		return "power-per-light"
	}
	return "raw"
}

const (
	defaultBoxEpsilon        float32 = 1e-4
	defaultLeafAxisScale     float32 = 1
	defaultMaxLobeAxisLength float32 = 1 - 1e-4
)

// Build options.
type Options struct {
	// Also build the parallel tree of merged emission lobes.
	BuildLobeTree bool

	// Units of the root node power and root lobe intensity.
	RootPower RootPowerMode

	// Triangle light boxes thinner than this value along an axis are
	// inflated by it on both sides.
	BoxEpsilon float32

	// Length of the axis assigned to triangle leaf lobes.
	LeafAxisScale float32

	// Lobe axis lengths are clamped to this value before computing the
	// lobe sharpness which diverges as the length approaches 1.
	MaxLobeAxisLength float32
}

// Get the default build options.
func DefaultOptions() Options {
	return Options{
		BuildLobeTree:     true,
		RootPower:         RawPower,
		BoxEpsilon:        defaultBoxEpsilon,
		LeafAxisScale:     defaultLeafAxisScale,
		MaxLobeAxisLength: defaultMaxLobeAxisLength,
	}
}

// Replace out of range values with their defaults.
func (opts Options) normalize() Options {
	if opts.BoxEpsilon < 0 {
		opts.BoxEpsilon = 0
	}
	if opts.LeafAxisScale <= 0 {
		opts.LeafAxisScale = defaultLeafAxisScale
	}
	if opts.MaxLobeAxisLength <= 0 || opts.MaxLobeAxisLength >= 1 {
		opts.MaxLobeAxisLength = defaultMaxLobeAxisLength
	}
	return opts
}
